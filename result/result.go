package result

import (
	"fmt"
	"syscall"
)

const (
	// asyncFlag marks a non-negative code as an in-progress operation.
	// Bit 30 keeps the flag clear of the sign bit so error codes stay
	// plain negative numbers.
	asyncFlag = int32(1) << 30

	// MaxPayload is the largest value or sequence number a code can carry.
	// Payloads occupy bits 0..29; bit 30 is the async flag and bit 31 the sign.
	MaxPayload = asyncFlag - 1
)

// Code is a three-state operation result in a single int32, the form it
// crosses the service boundary in.
//
// The three states partition the int32 range:
//   - success: non-negative with bit 30 clear, payload in bits 0..29
//   - pending: non-negative with bit 30 set, sequence number in bits 0..29
//   - error: negative, the magnitude is an OS error number
//
// Exactly one of IsOK, IsPending and IsError is true for every value.
type Code int32

// OK encodes a successful result carrying v.
// It panics if v is negative or does not fit in the 30-bit payload range;
// such a value cannot be represented without colliding with the async flag.
func OK(v int32) Code {
	if v < 0 || v > MaxPayload {
		panic(fmt.Sprintf("result: success payload %d outside [0, %d]", v, MaxPayload))
	}
	return Code(v)
}

// Pending encodes an in-progress result carrying the sequence number seq.
// It panics if seq is negative or does not fit in the 30-bit payload range.
func Pending(seq int32) Code {
	if seq < 0 || seq > MaxPayload {
		panic(fmt.Sprintf("result: sequence number %d outside [0, %d]", seq, MaxPayload))
	}
	return Code(seq | asyncFlag)
}

// Errno encodes a failed result carrying the OS error number e.
// It panics if e is zero: zero is the success payload, not an error.
func Errno(e syscall.Errno) Code {
	if e == 0 {
		panic("result: errno 0 is not an error")
	}
	return Code(-int32(e))
}

// FromRaw reinterprets a raw boundary value as a Code. Decoding is total:
// every int32 is one of the three states, so no validation happens here.
func FromRaw(raw int32) Code {
	return Code(raw)
}

// Raw returns the code in its boundary representation.
func (c Code) Raw() int32 {
	return int32(c)
}

// IsOK reports whether c is a completed successful result.
func (c Code) IsOK() bool {
	return c >= 0 && int32(c)&asyncFlag == 0
}

// IsPending reports whether c is an in-progress result.
func (c Code) IsPending() bool {
	return c >= 0 && int32(c)&asyncFlag != 0
}

// IsError reports whether c is a failed result.
func (c Code) IsError() bool {
	return c < 0
}

// Value returns the success payload.
// It panics unless c is a successful result.
func (c Code) Value() int32 {
	if !c.IsOK() {
		panic(fmt.Sprintf("result: Value called on %v", c))
	}
	return int32(c)
}

// Seq returns the sequence number of an in-progress result.
// It panics unless c is pending.
func (c Code) Seq() int32 {
	if !c.IsPending() {
		panic(fmt.Sprintf("result: Seq called on %v", c))
	}
	return int32(c) &^ asyncFlag
}

// Errno returns the OS error number of a failed result.
// It panics unless c is an error.
func (c Code) Errno() syscall.Errno {
	if !c.IsError() {
		panic(fmt.Sprintf("result: Errno called on %v", c))
	}
	return syscall.Errno(-int32(c))
}

// Sync interprets c in a context where the operation completed synchronously.
// A successful code yields its payload, an error code yields its errno, and a
// pending code panics: the caller declared the operation synchronous, so an
// in-progress result is a programming error, not a runtime condition.
func (c Code) Sync() (int32, error) {
	switch {
	case c.IsPending():
		panic(fmt.Sprintf("result: Sync called on %v", c))
	case c.IsError():
		return 0, c.Errno()
	default:
		return int32(c), nil
	}
}

// Async interprets c in a context where the operation was issued
// asynchronously. A pending code yields its sequence number, an error code
// yields its errno, and a synchronous success panics for the same reason
// Sync panics on pending.
func (c Code) Async() (int32, error) {
	switch {
	case c.IsOK():
		panic(fmt.Sprintf("result: Async called on %v", c))
	case c.IsError():
		return 0, c.Errno()
	default:
		return int32(c) &^ asyncFlag, nil
	}
}

// String renders the code for diagnostics.
func (c Code) String() string {
	switch {
	case c.IsPending():
		return fmt.Sprintf("pending(seq=%d)", int32(c)&^asyncFlag)
	case c.IsError():
		return fmt.Sprintf("error(%v)", syscall.Errno(-int32(c)))
	default:
		return fmt.Sprintf("ok(%d)", int32(c))
	}
}
