package util

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"
)

// WriteFileAtomic writes the given content to path, replacing any existing file
// only once the new content has been written completely.
func WriteFileAtomic(path string, content []byte) error {
	parentDir := filepath.Dir(path)
	if _, err := os.Stat(parentDir); errors.Is(err, os.ErrNotExist) {
		if err := os.MkdirAll(parentDir, 0755); err != nil {
			return err
		}
	}
	return atomic.WriteFile(path, bytes.NewReader(content))
}
