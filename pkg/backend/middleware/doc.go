// Package middleware provides the HTTP middleware of the debug server: the
// PlainErrors interceptor that swaps failed responses for plain-text error
// reports, the captured-error slot it reads, and the request ID, access
// logging and panic recovery layers around it.
//
// A typical chain, outermost first:
//
//	RequestID -> Logging -> PlainErrors -> Recovery -> handlers
//
// Recovery writes the usual JSON 500 response and attaches the panic to the
// slot; PlainErrors then decides whether the client gets that JSON or a
// plain-text report.
package middleware
