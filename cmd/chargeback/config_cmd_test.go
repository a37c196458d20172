package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Veraticus/chargeback/internal/config"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteDefaultConfig_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chargeback", "config.yaml")
	require.NoError(t, writeDefaultConfig(path, false))

	v := viper.New()
	config.SetDefaults(v)
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	cfg, err := config.Load(v)
	require.NoError(t, err)
	assert.Len(t, cfg.Actions, 5)
	assert.Empty(t, cfg.MissingRates())
	assert.Equal(t, "2122", cfg.Filter.ExcludedCustomer)
}

func TestWriteDefaultConfig_RefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("custom: true\n"), 0o600))

	err := writeDefaultConfig(path, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	data, readErr := os.ReadFile(path)
	require.NoError(t, readErr)
	assert.Equal(t, "custom: true\n", string(data))

	require.NoError(t, writeDefaultConfig(path, true))
	data, readErr = os.ReadFile(path)
	require.NoError(t, readErr)
	assert.Contains(t, string(data), "closure_code: Request fulfilled successfully")
}

func TestMaskSecrets(t *testing.T) {
	file := config.DefaultFile()
	file.Notify.SMTP.Password = "hunter2"
	file.Notify.Slack.Token = "xoxb-secret"
	file.Notify.Sheets.RefreshToken = "refresh"

	masked := maskSecrets(file)
	assert.Equal(t, "********", masked.Notify.SMTP.Password)
	assert.Equal(t, "********", masked.Notify.Slack.Token)
	assert.Equal(t, "********", masked.Notify.Sheets.RefreshToken)
	assert.Empty(t, masked.Notify.Sheets.ClientSecret, "empty secrets stay empty")
	assert.Equal(t, "hunter2", file.Notify.SMTP.Password, "input is not modified")
}
