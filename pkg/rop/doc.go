// Package rop holds the Result type shared by the pipeline stages together
// with a few error helpers. A Result is either a success carrying a value, a
// failure carrying an error, or a cancellation caused by the context.
package rop
