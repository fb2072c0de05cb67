// Package result implements the three-state return code used on every
// boundary call that may complete asynchronously.
//
// A [Code] is a single int32 in the representation services exchange:
// non-negative values with bit 30 clear are completed successes carrying a
// payload, non-negative values with bit 30 set are in-progress operations
// carrying a sequence number, and negative values are errors whose magnitude
// is an OS error number.
//
// # Encoding and decoding
//
// The constructors validate their payloads; values of 2^30 or more cannot be
// represented and panic at the encoding edge:
//
//	code := result.Pending(seq) // panics if seq >= 1<<30
//	raw := code.Raw()           // ships as int32
//
// Decoding is total. Any int32 received from a peer maps onto exactly one
// state:
//
//	code := result.FromRaw(raw)
//	switch {
//	case code.IsPending():
//	    wait(code.Seq())
//	case code.IsError():
//	    return code.Errno()
//	default:
//	    use(code.Value())
//	}
//
// # Declared completion contexts
//
// Call sites usually know whether the operation they issued completes
// synchronously. [Code.Sync] and [Code.Async] encode that knowledge: each
// converts the two states the caller can handle into (value, error) and
// panics on the state the caller declared impossible.
//
//	code := result.FromRaw(methods.EnumParams(data, 7, paramID, 0, 0))
//	seq, err := code.Async()
//	if err != nil {
//	    return err
//	}
//
// # Unwrap accessors
//
// [Code.Value], [Code.Seq] and [Code.Errno] extract a single state and panic
// when invoked on any other. They are for call sites that already checked
// the predicate, typically in tests and dispatch code.
package result
