package notify

import (
	"fmt"
	"strings"
	"time"
)

// Channel names accepted in notify.channels.
const (
	ChannelSMTP   = "smtp"
	ChannelSlack  = "slack"
	ChannelSheets = "sheets"
)

// KnownChannels lists every supported delivery channel.
var KnownChannels = []string{ChannelSMTP, ChannelSlack, ChannelSheets}

// SMTPConfig holds the mail relay settings for the email notifier.
type SMTPConfig struct {
	Host      string
	Username  string
	Password  string
	From      string
	TLSPolicy string // mandatory, opportunistic or none
	To        []string
	Port      int
	Timeout   time.Duration
}

// DefaultSMTPConfig returns an SMTPConfig with sensible defaults.
func DefaultSMTPConfig() SMTPConfig {
	return SMTPConfig{
		Port:      587,
		TLSPolicy: "mandatory",
		Timeout:   30 * time.Second,
	}
}

// Recipients returns the configured recipients, falling back to the sender's
// own mailbox when none are set.
func (c *SMTPConfig) Recipients() []string {
	if len(c.To) > 0 {
		return c.To
	}
	return []string{c.From}
}

// Validate checks if the configuration is valid.
func (c *SMTPConfig) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("smtp host is required")
	}
	if c.From == "" {
		return fmt.Errorf("smtp from address is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("smtp port must be between 1 and 65535")
	}
	if c.Username != "" && c.Password == "" {
		return fmt.Errorf("smtp password is required when a username is set")
	}
	switch strings.ToLower(c.TLSPolicy) {
	case "mandatory", "opportunistic", "none", "":
	default:
		return fmt.Errorf("unknown smtp tls policy: %s", c.TLSPolicy)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("smtp timeout cannot be negative")
	}
	return nil
}

// SlackConfig holds the bot token and target channel for the Slack notifier.
type SlackConfig struct {
	Token   string
	Channel string
	APIURL  string // optional override, mainly for tests
}

// Validate checks if the configuration is valid.
func (c *SlackConfig) Validate() error {
	if c.Token == "" {
		return fmt.Errorf("slack token is required")
	}
	if c.Channel == "" {
		return fmt.Errorf("slack channel is required")
	}
	return nil
}

// SheetsConfig holds the configuration for publishing to Google Sheets.
type SheetsConfig struct {
	ClientID           string
	ClientSecret       string
	RefreshToken       string
	ServiceAccountPath string
	SpreadsheetID      string
	SpreadsheetName    string
	TimeZone           string
	BatchSize          int
	EnableFormatting   bool
}

// DefaultSheetsConfig returns a SheetsConfig with sensible defaults.
func DefaultSheetsConfig() SheetsConfig {
	return SheetsConfig{
		EnableFormatting: true,
		SpreadsheetName:  "Chargeback Reports",
		TimeZone:         "America/New_York",
		BatchSize:        1000,
	}
}

// Validate checks if the configuration is valid.
func (c *SheetsConfig) Validate() error {
	hasOAuth := c.ClientID != "" && c.ClientSecret != "" && c.RefreshToken != ""
	hasServiceAccount := c.ServiceAccountPath != ""

	if !hasOAuth && !hasServiceAccount {
		return fmt.Errorf("no authentication method configured")
	}

	if hasOAuth && hasServiceAccount {
		return fmt.Errorf("multiple authentication methods configured; use either OAuth2 or service account")
	}

	if c.BatchSize <= 0 {
		return fmt.Errorf("batch size must be positive")
	}

	return nil
}
