package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSheetsConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		errMsg  string
		config  SheetsConfig
		wantErr bool
	}{
		{
			name:   "valid oauth config",
			config: SheetsConfig{ClientID: "id", ClientSecret: "secret", RefreshToken: "token", BatchSize: 100},
		},
		{
			name:   "valid service account config",
			config: SheetsConfig{ServiceAccountPath: "/path/to/key.json", BatchSize: 100},
		},
		{
			name: "partial oauth credentials",
			config: SheetsConfig{
				ClientID:     "id",
				ClientSecret: "", // Missing secret
				RefreshToken: "token",
				BatchSize:    100,
			},
			wantErr: true,
			errMsg:  "no authentication method configured",
		},
		{
			name: "multiple auth methods",
			config: SheetsConfig{
				ClientID:           "id",
				ClientSecret:       "secret",
				RefreshToken:       "token",
				ServiceAccountPath: "/path/to/key.json",
				BatchSize:          100,
			},
			wantErr: true,
			errMsg:  "multiple authentication methods configured",
		},
		{
			name:    "invalid batch size",
			config:  SheetsConfig{ServiceAccountPath: "/path/to/key.json"},
			wantErr: true,
			errMsg:  "batch size must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSMTPConfig_Validate(t *testing.T) {
	valid := func() SMTPConfig {
		c := DefaultSMTPConfig()
		c.Host = "smtp.example.com"
		c.From = "billing@example.com"
		return c
	}

	tests := []struct {
		mutate func(*SMTPConfig)
		name   string
		errMsg string
	}{
		{name: "defaults with host and sender", mutate: func(*SMTPConfig) {}},
		{name: "missing host", mutate: func(c *SMTPConfig) { c.Host = "" }, errMsg: "smtp host is required"},
		{name: "missing sender", mutate: func(c *SMTPConfig) { c.From = "" }, errMsg: "smtp from address is required"},
		{name: "bad port", mutate: func(c *SMTPConfig) { c.Port = 70000 }, errMsg: "port"},
		{name: "username without password", mutate: func(c *SMTPConfig) { c.Username = "me" }, errMsg: "password is required"},
		{name: "unknown tls policy", mutate: func(c *SMTPConfig) { c.TLSPolicy = "sometimes" }, errMsg: "unknown smtp tls policy"},
		{name: "negative timeout", mutate: func(c *SMTPConfig) { c.Timeout = -time.Second }, errMsg: "timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			err := c.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.errMsg)
		})
	}
}

func TestSMTPConfig_Recipients(t *testing.T) {
	c := SMTPConfig{From: "me@example.com"}
	assert.Equal(t, []string{"me@example.com"}, c.Recipients())

	c.To = []string{"a@example.com", "b@example.com"}
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, c.Recipients())
}

func TestSlackConfig_Validate(t *testing.T) {
	assert.ErrorContains(t, (&SlackConfig{Channel: "C1"}).Validate(), "slack token is required")
	assert.ErrorContains(t, (&SlackConfig{Token: "xoxb"}).Validate(), "slack channel is required")
	assert.NoError(t, (&SlackConfig{Token: "xoxb", Channel: "C1"}).Validate())
}
