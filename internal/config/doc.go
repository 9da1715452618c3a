// Package config defines the application configuration structure and
// loads it from a config file and STOCKPIX_-prefixed environment
// variables, validating the result at startup.
package config
