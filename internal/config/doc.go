// Package config loads service settings from a .env file, TASKHUB_*
// environment variables, an optional config.yaml and the legacy unprefixed
// variables, and validates the result before the server starts.
package config
