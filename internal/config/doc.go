// Package config loads tradescan settings from an optional .env file and
// the environment. Command line flags override what is loaded here.
//
// Environment Variables:
//   - TRADESCAN_WORKERS, TRADESCAN_SOURCE, TRADESCAN_WHERE, TRADESCAN_SCREENS
//   - TRADESCAN_TABLE, TRADESCAN_TIMEOUT, TRADESCAN_DRAIN
//   - TRADESCAN_LOG_LEVEL, TRADESCAN_LOG_DEV
//   - TRADESCAN_HISTORY, TRADESCAN_METRICS_FILE
package config
