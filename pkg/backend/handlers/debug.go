package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/cecil-the-coder/plain-errors-kit/pkg/backend/middleware"
	"github.com/cecil-the-coder/plain-errors-kit/pkg/backendtypes"
	"github.com/cecil-the-coder/plain-errors-kit/pkg/trace"
)

// ErrValidation is returned by the captured-error demo route.
var ErrValidation = errors.New("validation failed")

// DebugError is the error raised by the Error route.
type DebugError struct {
	Route string
}

func (e *DebugError) Error() string {
	return "this is a test error raised by " + e.Route + " to verify plain-text reports"
}

type debugUser struct {
	Email string
}

// DebugHandler serves routes that fail on purpose so the error reports can
// be tried out.
type DebugHandler struct {
	chain []backendtypes.MiddlewareInfo
}

func NewDebugHandler(chain []backendtypes.MiddlewareInfo) *DebugHandler {
	return &DebugHandler{chain: chain}
}

// Error panics with a DebugError
func (h *DebugHandler) Error(w http.ResponseWriter, r *http.Request) {
	panic(&DebugError{Route: r.URL.Path})
}

// Nil dereferences a nil pointer
func (h *DebugHandler) Nil(w http.ResponseWriter, r *http.Request) {
	var user *debugUser
	fmt.Fprint(w, user.Email)
}

// Captured attaches an error to the request and answers 422 without panicking
func (h *DebugHandler) Captured(w http.ResponseWriter, r *http.Request) {
	err := trace.WithStack(fmt.Errorf("check order %q: %w", r.URL.Query().Get("order"), ErrValidation))
	middleware.AttachError(r.Context(), err)
	SendError(w, r, "VALIDATION_FAILED", err.Error(), http.StatusUnprocessableEntity)
}

// Middleware lists the middleware chain, outermost first
func (h *DebugHandler) Middleware(w http.ResponseWriter, r *http.Request) {
	SendSuccess(w, r, h.chain)
}
