//go:build !govips || !cgo

package codec

// Startup is a no-op without libvips.
func Startup() error {
	return nil
}

// Shutdown is a no-op without libvips.
func Shutdown() {}

func newTranscoder(o options) (Transcoder, error) {
	return stdlibTranscoder{maxPixels: o.maxPixels}, nil
}
