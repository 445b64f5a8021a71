// Package history stores pipeline reports in a bbolt database so past
// scans can be listed and compared.
package history
