package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Veraticus/chargeback/internal/common"
)

// AppendErrorLog records a failed run in the error log at path as
// "<RFC3339 timestamp>: <message>" followed by the full error chain.
func AppendErrorLog(path string, now time.Time, runErr error) error {
	if path == "" || runErr == nil {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create error log directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600) // #nosec G304
	if err != nil {
		return fmt.Errorf("failed to open error log: %w", err)
	}
	defer func() { _ = f.Close() }()

	entry := fmt.Sprintf("%s: %s\n\t%v\n", now.Format(time.RFC3339), common.Describe(runErr), runErr)
	if _, err := f.WriteString(entry); err != nil {
		return fmt.Errorf("failed to write error log: %w", err)
	}
	return nil
}
