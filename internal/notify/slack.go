package notify

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/slack-go/slack"
)

// fileUploader is the part of *slack.Client the Slack notifier uses.
type fileUploader interface {
	UploadFileV2Context(ctx context.Context, params slack.UploadFileV2Parameters) (*slack.FileSummary, error)
}

// SlackNotifier uploads the report file to a channel.
type SlackNotifier struct {
	client  fileUploader
	channel string
}

// NewSlackNotifier creates a Slack notifier.
func NewSlackNotifier(config SlackConfig) (*SlackNotifier, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid slack config: %w", err)
	}

	var opts []slack.Option
	if config.APIURL != "" {
		opts = append(opts, slack.OptionAPIURL(config.APIURL))
	}

	return &SlackNotifier{
		client:  slack.New(config.Token, opts...),
		channel: config.Channel,
	}, nil
}

// Name implements Notifier.
func (s *SlackNotifier) Name() string {
	return ChannelSlack
}

// Notify implements Notifier.
func (s *SlackNotifier) Notify(ctx context.Context, n Notification) error {
	fi, err := os.Stat(n.ReportPath)
	if err != nil {
		return fmt.Errorf("failed to stat report: %w", err)
	}
	if fi.Size() <= 0 {
		return fmt.Errorf("report file is empty: %s", n.ReportPath)
	}

	_, err = s.client.UploadFileV2Context(ctx, slack.UploadFileV2Parameters{
		File:           n.ReportPath,
		FileSize:       int(fi.Size()),
		Filename:       filepath.Base(n.ReportPath),
		Channel:        s.channel,
		Title:          n.Subject,
		InitialComment: n.Body,
	})
	if err != nil {
		return fmt.Errorf("failed to upload report to %s: %w", s.channel, err)
	}
	return nil
}
