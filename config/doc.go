// Package config loads service configuration from YAML files and environment
// variables, with .env support for development. Precedence: environment
// variables over .env over the YAML file.
package config
