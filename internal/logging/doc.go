// Package logging builds the zap logger used by the command line tool:
// JSON in production, coloured console output in development.
package logging
