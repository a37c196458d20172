package notify

import (
	"context"
	"fmt"
	"log/slog"
)

// Channels bundles the settings of every delivery channel.
type Channels struct {
	Slack  SlackConfig
	Sheets SheetsConfig
	SMTP   SMTPConfig
}

// Build creates a Fanout over the named channels, in order. No names yields
// an empty Fanout.
func Build(ctx context.Context, names []string, channels Channels, logger *slog.Logger) (*Fanout, error) {
	notifiers := make([]Notifier, 0, len(names))
	for _, name := range names {
		var (
			n   Notifier
			err error
		)
		switch name {
		case ChannelSMTP:
			n, err = NewSMTPNotifier(channels.SMTP)
		case ChannelSlack:
			n, err = NewSlackNotifier(channels.Slack)
		case ChannelSheets:
			n, err = NewSheetsNotifier(ctx, channels.Sheets, logger)
		default:
			err = fmt.Errorf("unknown notification channel %q", name)
		}
		if err != nil {
			return nil, err
		}
		notifiers = append(notifiers, n)
	}
	return NewFanout(logger, notifiers...), nil
}
