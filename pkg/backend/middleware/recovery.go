package middleware

import (
	"encoding/json"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/cecil-the-coder/plain-errors-kit/pkg/backendtypes"
	"github.com/cecil-the-coder/plain-errors-kit/pkg/trace"
)

// Recovery turns a panic into a JSON 500 response. The panic is attached to
// the request's captured-error slot so an outer PlainErrors can report it.
func Recovery(logger logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				v := recover()
				if v == nil {
					return
				}
				if v == http.ErrAbortHandler {
					panic(v)
				}

				captured := trace.FromPanic(v)
				AttachCaptured(r.Context(), captured)

				requestID := GetRequestID(r.Context())
				logger.WithFields(logrus.Fields{
					"request_id": requestID,
					"error_type": captured.Type,
				}).Errorf("PANIC: %v\n%s", v, debug.Stack())

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_ = json.NewEncoder(w).Encode(backendtypes.APIResponse{
					Success: false,
					Error: &backendtypes.APIError{
						Code:    "INTERNAL_ERROR",
						Message: "An internal error occurred",
					},
					RequestID: requestID,
					Timestamp: time.Now(),
				})
			}()

			next.ServeHTTP(w, r)
		})
	}
}
