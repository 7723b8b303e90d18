package models

import (
	"net/http"
	"strings"
)

// HeaderEntry is a single CloudFront header value with its display key.
type HeaderEntry struct {
	Key   string `json:"key,omitempty"`
	Value string `json:"value"`
}

// Headers is the CloudFront header multimap: lowercase header names mapped to ordered entries.
type Headers map[string][]HeaderEntry

// Values returns every value recorded under name, in order. The lookup is case-insensitive.
func (h Headers) Values(name string) []string {
	entries := h[strings.ToLower(name)]
	if len(entries) == 0 {
		return nil
	}
	values := make([]string, 0, len(entries))
	for _, e := range entries {
		values = append(values, e.Value)
	}
	return values
}

// Get returns the first value recorded under name.
func (h Headers) Get(name string) string {
	entries := h[strings.ToLower(name)]
	if len(entries) == 0 {
		return ""
	}
	return entries[0].Value
}

// Has reports whether at least one entry is recorded under name.
func (h Headers) Has(name string) bool {
	return len(h[strings.ToLower(name)]) > 0
}

// Set replaces all entries for key with a single entry. key is kept as the display key.
func (h Headers) Set(key, value string) {
	h[strings.ToLower(key)] = []HeaderEntry{{Key: key, Value: value}}
}

// Del removes every entry recorded under name.
func (h Headers) Del(name string) {
	delete(h, strings.ToLower(name))
}

// Clone returns a deep copy. A nil receiver yields an empty, non-nil map.
func (h Headers) Clone() Headers {
	out := make(Headers, len(h))
	for k, entries := range h {
		out[k] = append([]HeaderEntry(nil), entries...)
	}
	return out
}

// FromHTTP converts a net/http header into the CloudFront representation.
func FromHTTP(header http.Header) Headers {
	out := make(Headers, len(header))
	for k, values := range header {
		name := strings.ToLower(k)
		for _, v := range values {
			out[name] = append(out[name], HeaderEntry{Key: k, Value: v})
		}
	}
	return out
}

// ToHTTP converts the headers into a net/http header, preserving duplicate values.
func (h Headers) ToHTTP() http.Header {
	out := make(http.Header, len(h))
	for name, entries := range h {
		for _, e := range entries {
			key := e.Key
			if key == "" {
				key = name
			}
			out.Add(key, e.Value)
		}
	}
	return out
}
