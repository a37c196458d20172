package config

import (
	"os"
	"strings"

	"github.com/Veraticus/chargeback/internal/notify"
)

// applyEnvFallbacks fills secrets that were not set through the config file
// or CHARGEBACK_ variables from their conventional environment variables.
// Precedence:
// 1. Viper configuration (config file or CHARGEBACK_ env vars)
// 2. Direct environment variables (SMTP_*, SLACK_*, GOOGLE_SHEETS_*)
func applyEnvFallbacks(n *NotifyConfig) {
	fillSMTP(&n.SMTP)
	fillSlack(&n.Slack)
	fillSheets(&n.Sheets)
}

func fillSMTP(c *notify.SMTPConfig) {
	setIfEmpty(&c.Host, "SMTP_HOST")
	setIfEmpty(&c.Username, "SMTP_USERNAME")
	setIfEmpty(&c.Password, "SMTP_PASSWORD")
	setIfEmpty(&c.From, "SMTP_FROM")
	if len(c.To) == 0 {
		if v := os.Getenv("SMTP_TO"); v != "" {
			for _, addr := range strings.Split(v, ",") {
				if addr = strings.TrimSpace(addr); addr != "" {
					c.To = append(c.To, addr)
				}
			}
		}
	}
}

func fillSlack(c *notify.SlackConfig) {
	setIfEmpty(&c.Token, "SLACK_BOT_TOKEN")
	setIfEmpty(&c.Channel, "SLACK_CHANNEL")
}

func fillSheets(c *notify.SheetsConfig) {
	if c.ServiceAccountPath == "" {
		if v := os.Getenv("GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH"); v != "" {
			c.ServiceAccountPath = ExpandPath(v)
		}
	}
	setIfEmpty(&c.ClientID, "GOOGLE_SHEETS_CLIENT_ID")
	setIfEmpty(&c.ClientSecret, "GOOGLE_SHEETS_CLIENT_SECRET")
	setIfEmpty(&c.RefreshToken, "GOOGLE_SHEETS_REFRESH_TOKEN")
	setIfEmpty(&c.SpreadsheetID, "GOOGLE_SHEETS_SPREADSHEET_ID")
}

func setIfEmpty(dst *string, key string) {
	if *dst != "" {
		return
	}
	*dst = os.Getenv(key)
}
