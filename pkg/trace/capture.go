package trace

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

const maxDepth = 64

// CapturedError is the error being reported.
type CapturedError struct {
	// Type is the dynamic Go type of the error, or "panic" for panic values
	// that are not errors.
	Type    string
	Message string
	Frames  []Frame

	// Err is the original error, if the failure was an error value.
	Err error
	// Value is the original panic value, if the failure was a panic.
	Value any
}

// Error implements error so a CapturedError can travel through error paths.
func (c *CapturedError) Error() string {
	return c.Type + ": " + c.Message
}

func (c *CapturedError) Unwrap() error {
	return c.Err
}

// StackTracer is implemented by errors that carry the program counters of
// the place where they were created.
type StackTracer interface {
	Callers() []uintptr
}

// FromPanic builds a CapturedError for a recovered panic value. It must be
// called from the deferred function that recovered, so the stack still
// contains the panicking frames.
func FromPanic(v any) *CapturedError {
	c := describe(v)
	c.Value = v
	if c.Frames == nil {
		c.Frames = panicFrames(callers(1))
	}
	return c
}

// FromError builds a CapturedError for err. When err carries no stack of its
// own, the caller's stack is used, skipping skip additional frames.
func FromError(err error, skip int) *CapturedError {
	if err == nil {
		return nil
	}
	c := describe(err)
	if c.Frames == nil {
		c.Frames = resolve(callers(skip + 1))
	}
	return c
}

// Capture returns the stack of its caller, skipping skip additional frames.
func Capture(skip int) []Frame {
	return resolve(callers(skip + 1))
}

func describe(v any) *CapturedError {
	if c, ok := v.(*CapturedError); ok && c != nil {
		out := *c
		out.Frames = append([]Frame(nil), c.Frames...)
		return &out
	}

	err, isErr := v.(error)
	if !isErr {
		return &CapturedError{Type: "panic", Message: fmt.Sprint(v)}
	}

	identity := err
	if se, ok := err.(*stackError); ok {
		identity = se.err
	}
	c := &CapturedError{
		Type:    fmt.Sprintf("%T", identity),
		Message: err.Error(),
		Err:     err,
	}
	var st StackTracer
	if errors.As(err, &st) {
		c.Frames = resolve(st.Callers())
	}
	return c
}

// WithStack annotates err with the stack of its caller. The returned error
// reports err's message and unwraps to err.
func WithStack(err error) error {
	if err == nil {
		return nil
	}
	return &stackError{err: err, pcs: callers(1)}
}

type stackError struct {
	err error
	pcs []uintptr
}

func (e *stackError) Error() string      { return e.err.Error() }
func (e *stackError) Unwrap() error      { return e.err }
func (e *stackError) Callers() []uintptr { return e.pcs }

// callers returns the program counters starting at the function that called
// callers, skipping skip more frames.
func callers(skip int) []uintptr {
	pc := make([]uintptr, maxDepth)
	// +2 skips runtime.Callers and callers itself.
	n := runtime.Callers(skip+2, pc)
	return pc[:n]
}

func resolve(pcs []uintptr) []Frame {
	if len(pcs) == 0 {
		return nil
	}
	frames := runtime.CallersFrames(pcs)
	out := make([]Frame, 0, len(pcs))
	for {
		fr, more := frames.Next()
		if fr.File != "" {
			out = append(out, NewFrame(fr.File, fr.Line, fr.Function))
		}
		if !more {
			break
		}
	}
	return out
}

// panicFrames drops everything up to and including runtime.gopanic, plus the
// runtime helpers that raised the panic (index, nil dereference, ...), so the
// first frame is the code that panicked.
func panicFrames(pcs []uintptr) []Frame {
	frames := resolve(pcs)
	for i, f := range frames {
		if f.Function != "runtime.gopanic" {
			continue
		}
		rest := frames[i+1:]
		for len(rest) > 0 && strings.HasPrefix(rest[0].Function, "runtime.") {
			rest = rest[1:]
		}
		return rest
	}
	return frames
}
