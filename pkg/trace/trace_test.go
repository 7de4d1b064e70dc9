package trace

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type boomError struct{ msg string }

func (e *boomError) Error() string { return e.msg }

func TestParseFrame(t *testing.T) {
	tests := []struct {
		raw      string
		file     string
		line     int
		function string
	}{
		{"/app/handlers/user.go:42 in main.(*Users).Show", "/app/handlers/user.go", 42, "main.(*Users).Show"},
		{"/app/models/user.rb:42:in `find_user'", "/app/models/user.rb", 42, ""},
		{"C:/src/app/main.go:7", "C:/src/app/main.go", 7, ""},
		{"invalid backtrace format", "", 0, ""},
		{"/app/x.go:0 in main.f", "", 0, ""},
		{"", "", 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			f := ParseFrame(tt.raw)
			assert.Equal(t, tt.raw, f.Raw)
			assert.Equal(t, tt.file, f.File)
			assert.Equal(t, tt.line, f.Line)
			assert.Equal(t, tt.function, f.Function)
			assert.Equal(t, tt.file != "", f.HasLocation())
		})
	}
}

func TestNewFrameRoundTrip(t *testing.T) {
	f := NewFrame("/app/main.go", 12, "main.main")
	assert.Equal(t, "/app/main.go:12 in main.main", f.String())
	assert.Equal(t, f, ParseFrame(f.Raw))

	assert.Equal(t, "/app/main.go:3", NewFrame("/app/main.go", 3, "").Raw)
}

func TestFrameWithFile(t *testing.T) {
	f := NewFrame("/app/models/user.go", 42, "models.Find")
	short := f.WithFile("./models/user.go")
	assert.Equal(t, "./models/user.go:42 in models.Find", short.Raw)
	assert.Equal(t, "./models/user.go", short.File)

	unparsed := ParseFrame("garbage")
	assert.Equal(t, unparsed, unparsed.WithFile("./x"))
}

func panicWith(v any) (c *CapturedError) {
	defer func() {
		if r := recover(); r != nil {
			c = FromPanic(r)
		}
	}()
	panic(v)
}

func nilDeref() (c *CapturedError) {
	defer func() {
		if r := recover(); r != nil {
			c = FromPanic(r)
		}
	}()
	var p *boomError
	return &CapturedError{Message: p.msg}
}

func TestFromPanic_Error(t *testing.T) {
	err := &boomError{msg: "boom"}
	c := panicWith(err)

	require.NotNil(t, c)
	assert.Equal(t, "*trace.boomError", c.Type)
	assert.Equal(t, "boom", c.Message)
	assert.Same(t, err, c.Err)
	assert.Same(t, err, c.Value)
	require.NotEmpty(t, c.Frames)
	assert.Contains(t, c.Frames[0].Function, "panicWith", "first frame is the panic site")
	assert.True(t, strings.HasSuffix(c.Frames[0].File, "trace_test.go"))
}

func TestFromPanic_NonError(t *testing.T) {
	c := panicWith("something odd")

	assert.Equal(t, "panic", c.Type)
	assert.Equal(t, "something odd", c.Message)
	assert.Nil(t, c.Err)
	assert.Equal(t, "something odd", c.Value)
}

func TestFromPanic_RuntimeError(t *testing.T) {
	c := nilDeref()

	require.NotNil(t, c)
	assert.Equal(t, "runtime.errorString", c.Type)
	assert.Contains(t, c.Message, "nil pointer dereference")
	require.NotEmpty(t, c.Frames)
	assert.Contains(t, c.Frames[0].Function, "nilDeref")
	for _, f := range c.Frames {
		assert.NotEqual(t, "runtime.gopanic", f.Function)
	}
}

func TestFromError(t *testing.T) {
	c := FromError(errors.New("plain"), 0)

	require.NotNil(t, c)
	assert.Equal(t, "*errors.errorString", c.Type)
	require.NotEmpty(t, c.Frames)
	assert.Contains(t, c.Frames[0].Function, "TestFromError")

	assert.Nil(t, FromError(nil, 0))
}

func createdHere() error {
	return WithStack(&boomError{msg: "deep"})
}

func TestFromError_UsesCarriedStack(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", createdHere())
	c := FromError(err, 0)

	assert.Equal(t, "*fmt.wrapError", c.Type)
	assert.Equal(t, "wrapped: deep", c.Message)
	require.NotEmpty(t, c.Frames)
	assert.Contains(t, c.Frames[0].Function, "createdHere")

	direct := FromError(createdHere(), 0)
	assert.Equal(t, "*trace.boomError", direct.Type, "WithStack keeps the identity of the wrapped error")

	var be *boomError
	assert.True(t, errors.As(direct, &be))
}

func TestCapturedErrorIsError(t *testing.T) {
	c := &CapturedError{Type: "*x.E", Message: "bad", Err: errors.ErrUnsupported}
	assert.Equal(t, "*x.E: bad", c.Error())
	assert.ErrorIs(t, c, errors.ErrUnsupported)
}

func TestCapture(t *testing.T) {
	frames := Capture(0)
	require.NotEmpty(t, frames)
	assert.Contains(t, frames[0].Function, "TestCapture")
}

func TestFilterCleaner(t *testing.T) {
	frames := []Frame{
		NewFrame("/app/handlers/user.go", 10, "handlers.Show"),
		NewFrame("/home/dev/go/pkg/mod/github.com/acme/router@v1.2.0/mux.go", 88, "router.(*Mux).ServeHTTP"),
		ParseFrame("???"),
		NewFrame("/usr/local/go/src/net/http/server.go", 2100, "net/http.HandlerFunc.ServeHTTP"),
		NewFrame("/app/main.go", 5, "main.main"),
	}

	c := NewCleaner(
		WithFilter(CollapseModulePaths),
		WithFilter(func(f string) string { return strings.Replace(f, "/app/", "./", 1) }),
		WithSilencedPatterns("/usr/local/go/src/**"),
	)
	got := c.Clean(frames)

	require.Len(t, got, 4)
	assert.Equal(t, "./handlers/user.go:10 in handlers.Show", got[0].Raw)
	assert.Equal(t, "mod/github.com/acme/router@v1.2.0/mux.go:88 in router.(*Mux).ServeHTTP", got[1].Raw)
	assert.Equal(t, "???", got[2].Raw)
	assert.Equal(t, "./main.go:5 in main.main", got[3].Raw)

	assert.Equal(t, "/app/handlers/user.go", frames[0].File, "input is not modified")
}

func TestCleanerFunc(t *testing.T) {
	var c Cleaner = CleanerFunc(func(f []Frame) []Frame { return f[:1] })
	assert.Len(t, c.Clean([]Frame{{Raw: "a"}, {Raw: "b"}}), 1)
}

func TestCollapseModulePaths(t *testing.T) {
	assert.Equal(t, "mod/golang.org/x/net@v0.1.0/http2/server.go",
		CollapseModulePaths("/root/go/pkg/mod/golang.org/x/net@v0.1.0/http2/server.go"))
	assert.Equal(t, "/app/main.go", CollapseModulePaths("/app/main.go"))
}
