// Package solo contains single-value, synchronous primitives that produce
// rop.Result values.
//
// Highlights:
// - Succeed/Fail/Cancel: construct Result[T]
// - Try: call a function (Out, error) and convert error to failure
// - Guard: like Try on a plain value, but also recovers panics so one bad
//   callback cannot take down the goroutine running it
package solo
