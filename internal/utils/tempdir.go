package utils

import (
	"os"
)

// CreateTempDir creates a fresh scratch directory under the system temp root
// and returns its path. Each conversion batch gets its own directory so
// predicted output names cannot collide across runs.
func CreateTempDir() (string, error) {
	return os.MkdirTemp("", "pdfuse-*")
}
