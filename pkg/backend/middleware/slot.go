package middleware

import (
	"context"
	"sync"

	"github.com/cecil-the-coder/plain-errors-kit/pkg/trace"
)

type slotKey struct{}

// errorSlot carries the error captured for a request from the component that
// caught it to the PlainErrors interceptor.
type errorSlot struct {
	mu       sync.Mutex
	captured *trace.CapturedError
}

// WithErrorSlot returns ctx with an empty captured-error slot installed. A
// context that already has a slot is returned unchanged.
func WithErrorSlot(ctx context.Context) context.Context {
	if slotFrom(ctx) != nil {
		return ctx
	}
	return context.WithValue(ctx, slotKey{}, &errorSlot{})
}

// AttachError records err as the failure of the request owning ctx. The stack
// is taken from err when it carries one, otherwise from the caller. It
// reports false when ctx has no slot or err is nil.
func AttachError(ctx context.Context, err error) bool {
	if err == nil {
		return false
	}
	return AttachCaptured(ctx, trace.FromError(err, 1))
}

// AttachCaptured records an already captured error. A later attach replaces
// an earlier one.
func AttachCaptured(ctx context.Context, c *trace.CapturedError) bool {
	s := slotFrom(ctx)
	if s == nil || c == nil {
		return false
	}
	s.mu.Lock()
	s.captured = c
	s.mu.Unlock()
	return true
}

// CapturedError returns the error attached to ctx, or nil.
func CapturedError(ctx context.Context) *trace.CapturedError {
	s := slotFrom(ctx)
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.captured
}

func slotFrom(ctx context.Context) *errorSlot {
	if ctx == nil {
		return nil
	}
	s, _ := ctx.Value(slotKey{}).(*errorSlot)
	return s
}
