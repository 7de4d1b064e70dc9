package report

import (
	"os"
	"strings"
)

// Abbreviate shortens path to "./<rest>" when it lives under root. Paths
// outside root, or any path when root is empty, are returned unchanged.
func Abbreviate(path, root string) string {
	if root == "" {
		return path
	}
	root = strings.TrimRight(root, "/"+string(os.PathSeparator))
	for _, sep := range separators() {
		if rest, ok := strings.CutPrefix(path, root+sep); ok {
			return "./" + rest
		}
	}
	return path
}

// Go reports frame paths with forward slashes on every platform.
func separators() []string {
	if os.PathSeparator == '/' {
		return []string{"/"}
	}
	return []string{"/", string(os.PathSeparator)}
}
