package handlers

import (
	"net/http"
	"slices"
	"time"

	"github.com/cecil-the-coder/plain-errors-kit/pkg/backendtypes"
	"github.com/cecil-the-coder/plain-errors-kit/pkg/config"
)

type HealthHandler struct {
	plainErrors config.Config
	version     string
	startTime   time.Time
}

func NewHealthHandler(plainErrors config.Config, version string) *HealthHandler {
	return &HealthHandler{
		plainErrors: plainErrors,
		version:     version,
		startTime:   time.Now(),
	}
}

// Status returns simple liveness status
func (h *HealthHandler) Status(w http.ResponseWriter, r *http.Request) {
	SendSuccess(w, r, map[string]string{"status": "ok"})
}

// Health returns detailed health with the interception settings in effect
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	response := backendtypes.HealthResponse{
		Status:  "healthy",
		Version: h.version,
		Uptime:  time.Since(h.startTime).String(),
		PlainErrors: &backendtypes.PlainErrorsStatus{
			Enabled:            h.plainErrors.Enabled,
			TriggerHeaders:     slices.Clone(h.plainErrors.TriggerHeaders),
			MaxStackTraceLines: h.plainErrors.MaxStackTraceLines,
			CodeLinesContext:   h.plainErrors.CodeLinesContext,
			ClientErrors:       string(h.plainErrors.ClientErrors),
		},
	}

	SendSuccess(w, r, response)
}

// Version returns version information
func (h *HealthHandler) Version(w http.ResponseWriter, r *http.Request) {
	SendSuccess(w, r, map[string]string{
		"version": h.version,
	})
}
