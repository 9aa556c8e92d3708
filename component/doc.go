// Package component defines the lifecycle contract for infrastructure
// components (HTTP server, event hub, janitor) and a registry that starts
// them in order and stops them in reverse.
package component
