// Package backend provides the debug HTTP server that hosts the PlainErrors
// middleware, and a small client for probing a server the way a machine
// client would.
//
// # Architecture
//
// The backend package is organized into two sub-packages:
//
//   - handlers: health endpoints and routes that fail on purpose
//   - middleware: the PlainErrors interceptor plus request ID, logging and recovery
//
// # Example
//
//	cfg, err := config.Load("plain-errors.yaml", nil)
//	if err != nil {
//	    return err
//	}
//	server := backend.NewServer(*cfg, nil)
//	server.Start()
//
// Then:
//
//	curl -H 'X-Plain-Errors: 1' http://127.0.0.1:8080/debug/error
package backend
