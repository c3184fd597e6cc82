// Package config loads imgrename's layered configuration: embedded
// defaults, the user file, an optional project file, environment variables
// and command-line overrides, decoded into a typed Config.
package config
