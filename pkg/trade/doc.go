// Package trade defines Day, one row of daily price data, and the parser
// that turns a CSV line into it.
package trade
