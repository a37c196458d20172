// Package engine runs the chargeback pipeline from an input path to a
// written and delivered report.
package engine

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Veraticus/chargeback/internal/chargeback"
	"github.com/Veraticus/chargeback/internal/common"
	"github.com/Veraticus/chargeback/internal/config"
	"github.com/Veraticus/chargeback/internal/filter"
	"github.com/Veraticus/chargeback/internal/model"
	"github.com/Veraticus/chargeback/internal/notify"
	"github.com/Veraticus/chargeback/internal/report"
)

// Pipeline stages reported to Progress.
var stages = []string{
	"Loading work orders",
	"Filtering",
	"Extracting chargebacks",
	"Aggregating",
	"Writing report",
	"Sending notification",
}

// Engine orchestrates one chargeback run.
type Engine struct {
	loader    Loader
	writer    ReportWriter
	notifier  notify.Notifier
	progress  Progress
	now       func() time.Time
	logger    *slog.Logger
	config    *config.Config
	extractor *chargeback.Extractor
	dryRun    bool
}

// Options tune an Engine.
type Options struct {
	Now      func() time.Time
	Progress Progress
	Logger   *slog.Logger
	DryRun   bool
}

// DefaultOptions returns the options used by New.
func DefaultOptions() Options {
	return Options{
		Now:      time.Now,
		Progress: noopProgress{},
		Logger:   slog.Default(),
	}
}

// New creates an engine with default options. A nil notifier disables
// notification.
func New(cfg *config.Config, loader Loader, writer ReportWriter, notifier notify.Notifier) *Engine {
	return NewWithOptions(cfg, loader, writer, notifier, DefaultOptions())
}

// NewWithOptions creates an engine with custom options.
func NewWithOptions(cfg *config.Config, loader Loader, writer ReportWriter, notifier notify.Notifier, opts Options) *Engine {
	defaults := DefaultOptions()
	if opts.Now == nil {
		opts.Now = defaults.Now
	}
	if opts.Progress == nil {
		opts.Progress = defaults.Progress
	}
	if opts.Logger == nil {
		opts.Logger = defaults.Logger
	}

	return &Engine{
		config:    cfg,
		loader:    loader,
		writer:    writer,
		notifier:  notifier,
		now:       opts.Now,
		progress:  opts.Progress,
		logger:    opts.Logger,
		dryRun:    opts.DryRun,
		extractor: chargeback.NewExtractor(cfg.Rates, opts.Logger),
	}
}

// Result describes a run.
type Result struct {
	Report     *model.Report
	RunID      string
	InputPath  string
	OutputPath string
	Skipped    []model.Skip
	Channels   []string
	Loaded     int
	Filtered   int
	Written    bool
	Notified   bool
}

// Run executes the full pipeline for the workbook at inputPath. When the
// report was written but delivery failed, Run returns both the Result and a
// NotificationError.
func (e *Engine) Run(ctx context.Context, inputPath string) (*Result, error) {
	logger, runID := common.RunLogger(e.logger)
	now := e.now().In(e.config.Location)

	e.progress.Start(len(stages))
	defer e.progress.Done()

	logger.Info("Starting chargeback run", "input", inputPath, "dry_run", e.dryRun)

	e.progress.Step(stages[0])
	table, err := e.loader.Load(ctx, inputPath)
	if err != nil {
		return nil, err
	}

	result := &Result{
		RunID:     runID,
		InputPath: inputPath,
		Loaded:    table.Len(),
	}

	rep, skipped, filtered, err := e.build(ctx, logger, table, now)
	result.Skipped = skipped
	result.Filtered = filtered
	if err != nil {
		return result, err
	}
	result.Report = rep
	result.OutputPath = report.OutputPath(e.config.Report.OutputDir, now, e.config.Report.BillingYear)

	if e.dryRun {
		logger.Info("Dry run, report not written", "path", result.OutputPath, "entries", len(rep.Entries))
		return result, nil
	}

	e.progress.Step(stages[4])
	if err := e.writer.Write(ctx, rep, result.OutputPath); err != nil {
		return result, err
	}
	result.Written = true

	e.progress.Step(stages[5])
	channels, err := e.notify(ctx, logger, rep, result.OutputPath)
	result.Channels = channels
	if err != nil {
		return result, err
	}
	result.Notified = len(channels) > 0

	logger.Info("Chargeback run complete",
		"entries", len(rep.Entries),
		"total", model.FormatCurrency(rep.Total()),
		"path", result.OutputPath)
	return result, nil
}

// BuildReport filters table and prices it for a run at now. It touches
// neither the filesystem nor the notifier.
func (e *Engine) BuildReport(ctx context.Context, table model.WorkOrderTable, now time.Time) (*model.Report, []model.Skip, error) {
	rep, skipped, _, err := e.build(ctx, e.logger, table, now.In(e.config.Location))
	return rep, skipped, err
}

func (e *Engine) build(ctx context.Context, logger *slog.Logger, table model.WorkOrderTable, now time.Time) (*model.Report, []model.Skip, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, 0, err
	}

	e.progress.Step(stages[1])
	window := filter.PreviousMonth(now)
	logger.Info("Filtering work orders",
		"window_start", window.Start.Format(time.DateTime),
		"window_end", window.End.Format(time.DateTime))
	filtered := filter.Apply(logger, table,
		filter.Standard(window, e.config.Filter.ClosureCode, e.config.Filter.ExcludedCustomer)...)

	e.progress.Step(stages[2])
	extractor := e.extractor.WithLogger(logger)
	extractions := extractor.ExtractAll(filtered, e.config.Actions)
	skipped := chargeback.Skipped(extractions)

	e.progress.Step(stages[3])
	rep, err := chargeback.Aggregate(extractions, e.periodLabel(now, window))
	if err != nil {
		return nil, skipped, filtered.Len(), err
	}
	rep.GeneratedAt = now
	rep.Window = window

	logger.Info("Report aggregated", "entries", len(rep.Entries), "skipped", len(skipped))
	return rep, skipped, filtered.Len(), nil
}

// periodLabel stamps the run month unless the report is configured to carry
// the billed month.
func (e *Engine) periodLabel(now time.Time, window model.Window) string {
	if e.config.Report.LabelBillingMonth {
		return chargeback.PeriodLabel(window.Start)
	}
	return chargeback.PeriodLabel(now)
}

func (e *Engine) notify(ctx context.Context, logger *slog.Logger, rep *model.Report, path string) ([]string, error) {
	channels := channelNames(e.notifier)
	if len(channels) == 0 {
		logger.Info("No notification channels configured, skipping notification")
		return nil, nil
	}

	n, err := notify.NewNotification(rep, path, e.config.Notify.Subject, e.config.Notify.Body)
	if err != nil {
		return nil, common.NewNotificationError("cannot render notification", err)
	}

	if err := e.notifier.Notify(ctx, n); err != nil {
		if errors.Is(err, common.ErrNotification) {
			return nil, err
		}
		return nil, common.NewNotificationError("report was written but not delivered", err)
	}
	return channels, nil
}

func channelNames(n notify.Notifier) []string {
	if n == nil {
		return nil
	}
	if fanout, ok := n.(interface{ Names() []string }); ok {
		return fanout.Names()
	}
	return []string{n.Name()}
}
