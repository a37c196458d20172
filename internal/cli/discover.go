package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Veraticus/chargeback/internal/common"
)

// FindLatestInput returns the most recently modified file in dir matching
// pattern.
func FindLatestInput(dir, pattern string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return "", fmt.Errorf("invalid input pattern %q: %w", pattern, err)
	}

	var (
		latest   string
		latestAt int64
	)
	for _, m := range matches {
		info, statErr := os.Stat(m)
		if statErr != nil || info.IsDir() {
			continue
		}
		if mod := info.ModTime().UnixNano(); latest == "" || mod > latestAt {
			latest, latestAt = m, mod
		}
	}

	if latest == "" {
		return "", common.NewUserError(
			fmt.Sprintf("No work-order export matching %q found in %s", pattern, dir), common.ErrLoad)
	}
	return latest, nil
}
