// Package source opens the line streams read by the pipeline producer:
// plain and gzip compressed CSV files, standard input, and PostgreSQL tables
// rendered as CSV lines.
package source
