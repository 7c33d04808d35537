package backup

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// TimestampLayout is appended to backed-up file names (MM-DD-YYYY_HH-MM-SS)
const TimestampLayout = "01-02-2006_15-04-05"

// Path returns where file would be moved when backed up at the given time:
// <dir>/<base>_as_of_<timestamp><ext>
func Path(file, dir string, at time.Time) string {
	ext := filepath.Ext(file)
	base := strings.TrimSuffix(filepath.Base(file), ext)
	return filepath.Join(dir, fmt.Sprintf("%s_as_of_%s%s", base, at.Format(TimestampLayout), ext))
}

// Rotate moves an existing file into dir under a timestamped name.
// It returns the new path, or "" when there was nothing to back up.
func Rotate(file, dir string, at time.Time) (string, error) {
	if _, err := os.Stat(file); errors.Is(err, fs.ErrNotExist) {
		return "", nil
	} else if err != nil {
		return "", fmt.Errorf("failed to stat %s: %w", file, err)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	target := Path(file, dir, at)
	if err := os.Rename(file, target); err != nil {
		return "", fmt.Errorf("failed to back up %s: %w", file, err)
	}

	return target, nil
}
