package report

import (
	"bufio"
	"errors"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
)

// ExtractSnippet renders the lines of path within contextLines of
// targetLine (1-indexed), each prefixed with its right-justified line
// number. Whitespace-only lines at either edge of the window are dropped.
// Failures are reported as a single sentinel line; ExtractSnippet never
// returns an error.
func ExtractSnippet(path string, targetLine, contextLines int) []string {
	if contextLines < 0 {
		contextLines = 0
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{"Source file not found: " + path}
		}
		return []string{"Error reading source file: " + err.Error()}
	}
	defer f.Close()

	start := max(targetLine-contextLines, 1)
	last := targetLine + contextLines

	var window []string
	r := bufio.NewReader(f)
	for n := 1; n <= last; n++ {
		line, err := r.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return []string{"Error reading source file: " + err.Error()}
		}
		if line == "" && err != nil {
			break
		}
		if n >= start {
			window = append(window, strings.TrimRight(line, "\r\n"))
		}
		if err != nil {
			break
		}
	}

	return renderWindow(window, start)
}

func renderWindow(window []string, start int) []string {
	if len(window) == 0 {
		return nil
	}
	end := start + len(window) - 1
	width := len(strconv.Itoa(end))

	lo, hi := 0, len(window)
	for lo < hi && isBlank(window[lo]) {
		lo++
	}
	for hi > lo && isBlank(window[hi-1]) {
		hi--
	}

	out := make([]string, 0, hi-lo)
	for i := lo; i < hi; i++ {
		num := padLeft(strconv.Itoa(start+i), width)
		if window[i] == "" {
			out = append(out, num+":")
		} else {
			out = append(out, num+": "+window[i])
		}
	}
	return out
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func padLeft(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat(" ", width-len(s)) + s
}
