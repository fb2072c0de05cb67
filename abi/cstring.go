package abi

import (
	"bytes"
	"fmt"
	"unicode/utf8"
)

// Str encodes a Go string as a NUL-terminated boundary string.
// It panics if s contains an interior NUL: such a string cannot be
// represented at the boundary and producing one is a caller bug.
func Str(s string) []byte {
	if i := bytes.IndexByte([]byte(s), 0); i >= 0 {
		panic(fmt.Sprintf("abi: interior NUL at byte %d in %q", i, s))
	}
	b := make([]byte, len(s)+1)
	copy(b, s)
	return b
}

// GoBytes returns the content of a NUL-terminated boundary string, without
// the terminator. It panics if b has no terminator: a boundary string
// without one is malformed and continuing would read past its end.
func GoBytes(b []byte) []byte {
	i := bytes.IndexByte(b, 0)
	if i < 0 {
		panic(fmt.Sprintf("abi: boundary string of %d bytes has no NUL terminator", len(b)))
	}
	return b[:i]
}

// GoStr decodes a NUL-terminated boundary string into a Go string. The
// second result reports whether the content is valid UTF-8; callers that
// filter (dictionary iteration) check it, callers that require it
// (interface names) treat false as a mismatch. A missing terminator panics,
// as in GoBytes.
func GoStr(b []byte) (string, bool) {
	raw := GoBytes(b)
	if !utf8.Valid(raw) {
		return "", false
	}
	return string(raw), true
}

// StrEq reports whether the NUL-terminated boundary string b spells exactly
// the Go string s. It never allocates and tolerates a missing terminator
// (no match) so it can be used on unvalidated input.
func StrEq(b []byte, s string) bool {
	i := bytes.IndexByte(b, 0)
	if i < 0 || i != len(s) {
		return false
	}
	return string(b[:i]) == s
}
