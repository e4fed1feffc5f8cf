// Package config handles configuration loading, parsing, and validation
// from environment variables and an optional yaml file. It provides type-safe
// access to the settings of the HTTP server, the diary store, the remote
// analysis client and the rate-limited analysis pipeline.
package config
