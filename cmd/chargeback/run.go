package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/Veraticus/chargeback/internal/cli"
	"github.com/Veraticus/chargeback/internal/common"
	"github.com/Veraticus/chargeback/internal/config"
	"github.com/Veraticus/chargeback/internal/engine"
	"github.com/Veraticus/chargeback/internal/notify"
	"github.com/Veraticus/chargeback/internal/report"
	"github.com/Veraticus/chargeback/internal/workorder"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func runCmd() *cobra.Command {
	var (
		noNotify bool
		dryRun   bool
		quiet    bool
	)

	cmd := &cobra.Command{
		Use:   "run [input.xlsx]",
		Short: "Build, write and send the chargeback report for the previous month",
		Long: `Build the chargeback report from a work-order export.

Without an argument the newest export matching input.pattern in
input.search_dir (default ~/Downloads) is used. Rows resolved in the previous
calendar month with the configured closure code are priced per email address
found in their solution text.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(viper.GetViper())
			if err != nil {
				recordFailure(config.ExpandPath(viper.GetString("logging.error_log")), err)
				return err
			}

			err = runReport(cmd, cfg, args, runOptions{noNotify: noNotify, dryRun: dryRun, quiet: quiet})
			if err != nil {
				recordFailure(cfg.Logging.ErrorLog, err)
			}
			return err
		},
	}

	cmd.Flags().String("output-dir", "", "directory for the report workbook")
	cmd.Flags().String("excluded-customer", "", "customer id never billed")
	cmd.Flags().Int("billing-year", 0, "year used in the report file name (default: current year)")
	cmd.Flags().String("timezone", "", "IANA zone for resolution times and the billing window")
	cmd.Flags().BoolVar(&noNotify, "no-notify", false, "write the report but do not send it")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "build and show the report without writing or sending it")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "hide the progress bar")

	_ = viper.BindPFlag("report.output_dir", cmd.Flags().Lookup("output-dir"))
	_ = viper.BindPFlag("filter.excluded_customer", cmd.Flags().Lookup("excluded-customer"))
	_ = viper.BindPFlag("report.billing_year", cmd.Flags().Lookup("billing-year"))
	_ = viper.BindPFlag("filter.timezone", cmd.Flags().Lookup("timezone"))

	return cmd
}

type runOptions struct {
	noNotify bool
	dryRun   bool
	quiet    bool
}

func runReport(cmd *cobra.Command, cfg *config.Config, args []string, opts runOptions) error {
	ctx := cmd.Context()
	logger := slog.Default()

	inputPath, err := resolveInput(cfg, args)
	if err != nil {
		return err
	}

	if missing := cfg.MissingRates(); len(missing) > 0 {
		logger.Warn("Actions without a rate will be skipped", "rate_keys", missing)
	}

	var notifier notify.Notifier
	if !opts.noNotify && !opts.dryRun {
		fanout, buildErr := notify.Build(ctx, cfg.Notify.Channels, notify.Channels{
			SMTP:   cfg.Notify.SMTP,
			Slack:  cfg.Notify.Slack,
			Sheets: cfg.Notify.Sheets,
		}, logger)
		if buildErr != nil {
			return fmt.Errorf("failed to set up notifications: %w", buildErr)
		}
		notifier = fanout
	}

	var progress engine.Progress
	if !opts.quiet {
		progress = cli.NewProgressBar(cmd.ErrOrStderr())
	}

	eng := engine.NewWithOptions(cfg,
		workorder.NewLoader(cfg.Input.Sheet, cfg.Location, logger),
		report.NewWriter(cfg.Report.Sheet, logger),
		notifier,
		engine.Options{
			Progress: progress,
			Logger:   logger,
			DryRun:   opts.dryRun,
		})

	result, runErr := eng.Run(ctx, inputPath)
	if result != nil && result.Report != nil {
		if err := cli.RenderSummary(cmd.OutOrStdout(), result); err != nil {
			logger.Warn("Failed to render summary", "error", err)
		}
	}
	if runErr != nil {
		if errors.Is(runErr, common.ErrNotification) {
			fmt.Fprintln(cmd.ErrOrStderr(), cli.FormatWarning("The report was written but could not be sent."))
		}
		return runErr
	}
	return nil
}

func resolveInput(cfg *config.Config, args []string) (string, error) {
	if len(args) == 1 {
		return config.ExpandPath(args[0]), nil
	}

	path, err := cli.FindLatestInput(cfg.Input.SearchDir, cfg.Input.Pattern)
	if err != nil {
		return "", err
	}
	slog.Info("Using latest work-order export", "path", path)
	return path, nil
}

func recordFailure(errorLog string, err error) {
	common.LogError(slog.Default(), err, "Chargeback run failed", common.Fields{"error_log": errorLog})
	if logErr := cli.AppendErrorLog(errorLog, time.Now(), err); logErr != nil {
		fmt.Fprintln(os.Stderr, cli.FormatWarning(fmt.Sprintf("Could not write error log: %v", logErr)))
	}
}
