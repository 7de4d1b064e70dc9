package report

import (
	"fmt"
	"strconv"

	"github.com/cecil-the-coder/plain-errors-kit/pkg/config"
	"github.com/cecil-the-coder/plain-errors-kit/pkg/trace"
)

const noStackTrace = "No stack trace available"

// FormatStackTrace renders frames as indexed lines. With a cleaner the
// frames are cleaned by it; without one only the application root is
// abbreviated. When cfg.MaxStackTraceLines is set the trace is cut to that
// many lines and a summary line reports how many were left out.
func FormatStackTrace(frames []trace.Frame, cfg config.Config, cleaner trace.Cleaner) []string {
	if len(frames) == 0 {
		return []string{noStackTrace}
	}

	var cleaned []trace.Frame
	if cleaner != nil {
		cleaned = cleaner.Clean(frames)
	} else {
		cleaned = make([]trace.Frame, len(frames))
		for i, f := range frames {
			cleaned[i] = f.WithFile(Abbreviate(f.File, cfg.ApplicationRoot))
		}
	}
	if len(cleaned) == 0 {
		return []string{noStackTrace}
	}

	shown := cleaned
	if limit := cfg.MaxStackTraceLines; limit > 0 && len(shown) > limit {
		shown = shown[:limit]
	}

	width := len(strconv.Itoa(len(shown)))
	out := make([]string, 0, len(shown)+1)
	for i, f := range shown {
		out = append(out, padLeft(strconv.Itoa(i), width)+": "+f.String())
	}
	if omitted := len(cleaned) - len(shown); omitted > 0 {
		out = append(out, fmt.Sprintf("(%d more lines omitted)", omitted))
	}
	return out
}
