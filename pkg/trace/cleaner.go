package trace

import (
	"regexp"

	"github.com/bmatcuk/doublestar/v4"
)

// Cleaner turns a raw frame sequence into a shorter one for display.
// Implementations may drop and rewrite frames but must keep relative order.
type Cleaner interface {
	Clean(frames []Frame) []Frame
}

// CleanerFunc adapts a function to Cleaner.
type CleanerFunc func([]Frame) []Frame

func (f CleanerFunc) Clean(frames []Frame) []Frame { return f(frames) }

// Filter rewrites a file path. Filters run in the order they were added.
type Filter func(file string) string

// Silencer reports whether a frame should be dropped.
type Silencer func(Frame) bool

// FilterCleaner applies filters to every frame's file, then drops frames
// matched by any silencer.
type FilterCleaner struct {
	filters   []Filter
	silencers []Silencer
}

// CleanerOption configures a FilterCleaner.
type CleanerOption func(*FilterCleaner)

// NewCleaner builds a FilterCleaner.
func NewCleaner(opts ...CleanerOption) *FilterCleaner {
	c := &FilterCleaner{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithFilter adds a path filter.
func WithFilter(f Filter) CleanerOption {
	return func(c *FilterCleaner) { c.filters = append(c.filters, f) }
}

// WithSilencer adds a silencer.
func WithSilencer(s Silencer) CleanerOption {
	return func(c *FilterCleaner) { c.silencers = append(c.silencers, s) }
}

// WithSilencedPatterns drops frames whose original file matches any of the
// doublestar patterns. Invalid patterns never match.
func WithSilencedPatterns(patterns ...string) CleanerOption {
	return WithSilencer(func(f Frame) bool {
		if !f.HasLocation() {
			return false
		}
		for _, p := range patterns {
			if ok, _ := doublestar.Match(p, f.File); ok {
				return true
			}
		}
		return false
	})
}

var moduleCachePrefix = regexp.MustCompile(`^.+?/pkg/mod/`)

// CollapseModulePaths rewrites Go module cache paths such as
// /home/u/go/pkg/mod/github.com/x/y@v1.2.0/z.go to mod/github.com/x/y@v1.2.0/z.go.
func CollapseModulePaths(file string) string {
	return moduleCachePrefix.ReplaceAllString(file, "mod/")
}

// Clean implements Cleaner.
func (c *FilterCleaner) Clean(frames []Frame) []Frame {
	out := make([]Frame, 0, len(frames))
	for _, f := range frames {
		if c.silenced(f) {
			continue
		}
		if f.HasLocation() {
			file := f.File
			for _, filter := range c.filters {
				file = filter(file)
			}
			f = f.WithFile(file)
		}
		out = append(out, f)
	}
	return out
}

func (c *FilterCleaner) silenced(f Frame) bool {
	for _, s := range c.silencers {
		if s(f) {
			return true
		}
	}
	return false
}
