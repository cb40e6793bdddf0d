// Package config loads runtime settings for the sealdrop CLI from defaults,
// an optional JSON file and command-line flags, in that order of precedence.
package config
