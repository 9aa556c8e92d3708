// Package logger provides structured logging built on zerolog.
//
// A single global logger is initialized once at startup via Init; packages
// either use the package-level helpers or derive a component-tagged logger
// with WithComponent for correlated output.
package logger
