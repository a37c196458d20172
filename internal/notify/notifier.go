// Package notify delivers a written chargeback report over the configured
// channels.
package notify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"text/template"

	"github.com/Veraticus/chargeback/internal/common"
	"github.com/Veraticus/chargeback/internal/model"
)

// Notification is a report ready for delivery.
type Notification struct {
	Report     *model.Report
	ReportPath string
	Subject    string
	Body       string
}

// Notifier delivers a notification over one channel.
type Notifier interface {
	Name() string
	Notify(ctx context.Context, n Notification) error
}

// TemplateData is the data available to subject and body templates.
type TemplateData struct {
	Month   string
	Period  string
	Total   string
	Year    int
	Entries int
}

// NewTemplateData derives template data from report. Month and Year are
// taken from the report's generation time.
func NewTemplateData(report *model.Report) TemplateData {
	return TemplateData{
		Month:   report.GeneratedAt.Month().String(),
		Year:    report.GeneratedAt.Year(),
		Period:  report.Period,
		Entries: len(report.Entries),
		Total:   model.FormatCurrency(report.Total()),
	}
}

// Render executes a text/template against data.
func Render(name, text string, data TemplateData) (string, error) {
	tmpl, err := template.New(name).Option("missingkey=error").Parse(text)
	if err != nil {
		return "", fmt.Errorf("failed to parse %s template: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render %s template: %w", name, err)
	}
	return buf.String(), nil
}

// NewNotification renders the subject and body templates for report.
func NewNotification(report *model.Report, path, subject, body string) (Notification, error) {
	data := NewTemplateData(report)

	renderedSubject, err := Render("subject", subject, data)
	if err != nil {
		return Notification{}, err
	}
	renderedBody, err := Render("body", body, data)
	if err != nil {
		return Notification{}, err
	}

	return Notification{
		Report:     report,
		ReportPath: path,
		Subject:    renderedSubject,
		Body:       renderedBody,
	}, nil
}

// Fanout delivers to several notifiers in order. Every notifier is tried;
// failures are collected into one NotificationError.
type Fanout struct {
	logger    *slog.Logger
	notifiers []Notifier
}

// NewFanout creates a fanout over notifiers.
func NewFanout(logger *slog.Logger, notifiers ...Notifier) *Fanout {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fanout{logger: logger, notifiers: notifiers}
}

// Name implements Notifier.
func (f *Fanout) Name() string {
	return "fanout"
}

// Names returns the channel names in delivery order.
func (f *Fanout) Names() []string {
	names := make([]string, 0, len(f.notifiers))
	for _, n := range f.notifiers {
		names = append(names, n.Name())
	}
	return names
}

// Notify implements Notifier.
func (f *Fanout) Notify(ctx context.Context, n Notification) error {
	var errs []error
	for _, notifier := range f.notifiers {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := notifier.Notify(ctx, n); err != nil {
			common.LogError(f.logger, err, "Notification failed", common.Fields{"channel": notifier.Name()})
			errs = append(errs, fmt.Errorf("%s: %w", notifier.Name(), err))
			continue
		}
		f.logger.Info("Notification sent", "channel", notifier.Name())
	}

	if len(errs) > 0 {
		return common.NewNotificationError("report was written but not delivered", errors.Join(errs...))
	}
	return nil
}
