// Package config loads the lendingctl configuration from defaults, an optional
// lending.yaml file and LENDING_* environment variables, and validates it.
//
// It also builds the Postgres connection pools the configured adapter needs.
package config
