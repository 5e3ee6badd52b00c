// Package config loads and validates gateway configuration from a YAML file
// and environment variables.
package config
