// Package trace models the error being reported: its identity and the call
// stack that led to it. It also provides the backtrace cleaner used to
// shorten and filter frames before they are rendered.
package trace

import (
	"regexp"
	"strconv"
	"strings"
)

// Frame is one stack entry. Raw is always set; File and Line are only set
// when Raw could be decomposed.
type Frame struct {
	Raw      string
	File     string
	Line     int
	Function string
}

var frameLocation = regexp.MustCompile(`^(.+):(\d+)`)

// ParseFrame decomposes raw text of the form "<file>:<line>...". Text that
// does not match is kept verbatim with no location.
func ParseFrame(raw string) Frame {
	f := Frame{Raw: raw}
	m := frameLocation.FindStringSubmatch(raw)
	if m == nil {
		return f
	}
	line, err := strconv.Atoi(m[2])
	if err != nil || line <= 0 {
		return f
	}
	f.File = m[1]
	f.Line = line
	if _, fn, ok := strings.Cut(raw[len(m[0]):], " in "); ok {
		f.Function = fn
	}
	return f
}

// ParseFrames parses every raw line.
func ParseFrames(raw []string) []Frame {
	frames := make([]Frame, len(raw))
	for i, r := range raw {
		frames[i] = ParseFrame(r)
	}
	return frames
}

// NewFrame builds a frame from resolved runtime information.
func NewFrame(file string, line int, function string) Frame {
	raw := file + ":" + strconv.Itoa(line)
	if function != "" {
		raw += " in " + function
	}
	return Frame{Raw: raw, File: file, Line: line, Function: function}
}

// HasLocation reports whether the frame points at a file and a positive line.
func (f Frame) HasLocation() bool {
	return f.File != "" && f.Line > 0
}

// WithFile returns f with its file portion replaced, keeping Raw in sync.
func (f Frame) WithFile(file string) Frame {
	if !f.HasLocation() || file == f.File {
		return f
	}
	f.Raw = file + strings.TrimPrefix(f.Raw, f.File)
	f.File = file
	return f
}

func (f Frame) String() string {
	return f.Raw
}
