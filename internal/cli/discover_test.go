package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Veraticus/chargeback/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string, mod time.Time) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))
	require.NoError(t, os.Chtimes(path, mod, mod))
}

func TestFindLatestInput(t *testing.T) {
	dir := t.TempDir()
	base := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)

	touch(t, filepath.Join(dir, "WO Report.xlsx"), base)
	touch(t, filepath.Join(dir, "WO Report (2).xlsx"), base.Add(48*time.Hour))
	touch(t, filepath.Join(dir, "WO Report (1).xlsx"), base.Add(24*time.Hour))
	touch(t, filepath.Join(dir, "Other.xlsx"), base.Add(72*time.Hour))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "WO Report archive.xlsx"), 0o750))

	got, err := FindLatestInput(dir, "WO Report*.xlsx*")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "WO Report (2).xlsx"), got)
}

func TestFindLatestInput_NoMatch(t *testing.T) {
	dir := t.TempDir()

	_, err := FindLatestInput(dir, "WO Report*.xlsx*")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrLoad)
	assert.Contains(t, common.Describe(err), "No work-order export matching")
}

func TestFindLatestInput_BadPattern(t *testing.T) {
	_, err := FindLatestInput(t.TempDir(), "[")
	assert.ErrorContains(t, err, "invalid input pattern")
}
