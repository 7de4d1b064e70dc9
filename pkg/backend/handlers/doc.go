// Package handlers provides the HTTP handlers of the debug server: health
// and version endpoints, routes that fail on purpose to exercise the
// plain-text error reports, and helpers for the standard JSON envelope.
package handlers
