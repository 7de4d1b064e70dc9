package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

// Helper function to create a simple test handler
func testHandler(statusCode int, body string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(statusCode)
		w.Write([]byte(body))
	})
}

// Helper function to create a panic handler
func panicHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("test panic")
	})
}

// TestRequestID_GeneratesNewID tests that a new request ID is generated when none is provided
func TestRequestID_GeneratesNewID(t *testing.T) {
	handler := RequestID(testHandler(http.StatusOK, "OK"))

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	requestID := w.Header().Get("X-Request-ID")
	if requestID == "" {
		t.Error("Expected X-Request-ID header to be set")
	}

	// A UUID without dashes is 32 hex characters
	if len(requestID) != 32 {
		t.Errorf("Expected request ID length 32, got %d", len(requestID))
	}
}

// TestRequestID_UsesExistingHeader tests that existing X-Request-ID header is preserved
func TestRequestID_UsesExistingHeader(t *testing.T) {
	expectedID := "existing-request-id-12345"
	handler := RequestID(testHandler(http.StatusOK, "OK"))

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("X-Request-ID", expectedID)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if got := w.Header().Get("X-Request-ID"); got != expectedID {
		t.Errorf("Expected request ID %s, got %s", expectedID, got)
	}
}

// TestRequestID_StoresInContext tests that the request ID is available to handlers
func TestRequestID_StoresInContext(t *testing.T) {
	var seen string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("X-Request-ID", "ctx-id")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if seen != "ctx-id" {
		t.Errorf("Expected request ID in context to be ctx-id, got %q", seen)
	}
}

// TestGetRequestID_EmptyContext tests GetRequestID with a context that has no ID
func TestGetRequestID_EmptyContext(t *testing.T) {
	if id := GetRequestID(context.Background()); id != "" {
		t.Errorf("Expected empty request ID, got %s", id)
	}
}

// TestLogging_LogsRequestInfo tests that the access log entry carries the request fields
func TestLogging_LogsRequestInfo(t *testing.T) {
	logger, hook := test.NewNullLogger()

	handler := RequestID(Logging(logger)(testHandler(http.StatusCreated, "Created")))

	req := httptest.NewRequest(http.MethodPost, "/api/test", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("Expected status code %d, got %d", http.StatusCreated, w.Code)
	}

	entry := hook.LastEntry()
	if entry == nil {
		t.Fatal("Expected an access log entry")
	}
	if entry.Level != logrus.InfoLevel {
		t.Errorf("Expected info level, got %s", entry.Level)
	}
	if entry.Data["method"] != http.MethodPost {
		t.Errorf("Expected method POST, got %v", entry.Data["method"])
	}
	if entry.Data["path"] != "/api/test" {
		t.Errorf("Expected path /api/test, got %v", entry.Data["path"])
	}
	if entry.Data["status"] != http.StatusCreated {
		t.Errorf("Expected status 201, got %v", entry.Data["status"])
	}
	if entry.Data["size"] != len("Created") {
		t.Errorf("Expected size %d, got %v", len("Created"), entry.Data["size"])
	}
	if entry.Data["request_id"] != w.Header().Get("X-Request-ID") {
		t.Errorf("Expected request_id to match the response header, got %v", entry.Data["request_id"])
	}
}

// TestLogging_DefaultStatusCode tests that default status code is 200
func TestLogging_DefaultStatusCode(t *testing.T) {
	logger, hook := test.NewNullLogger()

	handler := Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Don't explicitly set status code
		w.Write([]byte("OK"))
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/test", nil))

	if got := hook.LastEntry().Data["status"]; got != http.StatusOK {
		t.Errorf("Expected default status code 200, got %v", got)
	}
}

// TestRecovery_CatchesPanic tests that recovery middleware catches panics
func TestRecovery_CatchesPanic(t *testing.T) {
	logger, hook := test.NewNullLogger()

	handler := RequestID(Recovery(logger)(panicHandler()))

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("Expected status code %d, got %d", http.StatusInternalServerError, w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected Content-Type application/json, got %s", ct)
	}

	var response map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if success, ok := response["success"].(bool); !ok || success {
		t.Error("Expected success to be false")
	}
	errorMap, ok := response["error"].(map[string]interface{})
	if !ok {
		t.Fatal("Expected error object in response")
	}
	if errorMap["code"] != "INTERNAL_ERROR" {
		t.Errorf("Expected error code INTERNAL_ERROR, got %v", errorMap["code"])
	}
	if response["request_id"] != w.Header().Get("X-Request-ID") {
		t.Errorf("Expected request_id in body, got %v", response["request_id"])
	}

	entry := hook.LastEntry()
	if entry == nil || entry.Level != logrus.ErrorLevel {
		t.Fatal("Expected an error log entry")
	}
	if !strings.Contains(entry.Message, "PANIC") || !strings.Contains(entry.Message, "test panic") {
		t.Errorf("Expected log to contain the panic, got: %s", entry.Message)
	}
	if entry.Data["error_type"] != "panic" {
		t.Errorf("Expected error_type panic, got %v", entry.Data["error_type"])
	}
}

// TestRecovery_AttachesCapturedError tests that the panic is left in the slot for PlainErrors
func TestRecovery_AttachesCapturedError(t *testing.T) {
	logger, _ := test.NewNullLogger()
	handler := Recovery(logger)(panicHandler())

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	ctx := WithErrorSlot(req.Context())
	handler.ServeHTTP(httptest.NewRecorder(), req.WithContext(ctx))

	captured := CapturedError(ctx)
	if captured == nil {
		t.Fatal("Expected a captured error in the slot")
	}
	if captured.Message != "test panic" {
		t.Errorf("Expected message 'test panic', got %q", captured.Message)
	}
	if len(captured.Frames) == 0 || !strings.Contains(captured.Frames[0].Function, "panicHandler") {
		t.Errorf("Expected the first frame to be the panic site, got %+v", captured.Frames)
	}
}

// TestRecovery_ContinuesForNonPanic tests that recovery allows normal requests
func TestRecovery_ContinuesForNonPanic(t *testing.T) {
	logger, hook := test.NewNullLogger()
	handler := Recovery(logger)(testHandler(http.StatusOK, "OK"))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	if w.Code != http.StatusOK {
		t.Errorf("Expected status code %d, got %d", http.StatusOK, w.Code)
	}
	if w.Body.String() != "OK" {
		t.Errorf("Expected body 'OK', got %s", w.Body.String())
	}
	if len(hook.AllEntries()) != 0 {
		t.Error("Expected no log entries")
	}
}

// TestRecovery_ReraisesAbortHandler tests that http.ErrAbortHandler is not swallowed
func TestRecovery_ReraisesAbortHandler(t *testing.T) {
	logger, _ := test.NewNullLogger()
	handler := Recovery(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	defer func() {
		if r := recover(); r != http.ErrAbortHandler {
			t.Errorf("Expected http.ErrAbortHandler to propagate, got %v", r)
		}
	}()
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/test", nil))
}

// Benchmark tests
func BenchmarkRequestID(b *testing.B) {
	handler := RequestID(testHandler(http.StatusOK, "OK"))
	req := httptest.NewRequest(http.MethodGet, "/test", nil)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
	}
}

func BenchmarkRecovery(b *testing.B) {
	logger, _ := test.NewNullLogger()
	handler := Recovery(logger)(testHandler(http.StatusOK, "OK"))
	req := httptest.NewRequest(http.MethodGet, "/test", nil)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
	}
}
