package helpers

// Ptr returns a pointer to a copy of v. Flag tables use it for optional env names and shorthands.
func Ptr[T any](v T) *T {
	return &v
}
