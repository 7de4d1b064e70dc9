// Package backendtypes defines the JSON types exchanged by the debug server.
//
// It is kept apart from the server and handler packages so middleware and
// clients can share the wire format without importing the implementation:
//
//   - APIResponse and APIError: the envelope of every JSON response
//   - HealthResponse and PlainErrorsStatus: health endpoint payloads
//   - MiddlewareInfo: entries of the middleware listing endpoint
package backendtypes
