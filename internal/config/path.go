package config

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandPath resolves a leading "~" to the home directory and expands
// $VAR references. Paths like "~user/x" are left alone.
func ExpandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
		}
	}
	return os.ExpandEnv(path)
}
