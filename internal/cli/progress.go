package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/schollz/progressbar/v3"
)

// ProgressBar renders pipeline stages as a progress bar.
type ProgressBar struct {
	writer io.Writer
	bar    *progressbar.ProgressBar
}

// NewProgressBar creates a progress bar writing to w.
func NewProgressBar(w io.Writer) *ProgressBar {
	return &ProgressBar{writer: w}
}

// Start implements engine.Progress.
func (p *ProgressBar) Start(stages int) {
	p.bar = progressbar.NewOptions(stages,
		progressbar.OptionSetWriter(p.writer),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionSetDescription("[cyan][bold]Starting...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			if _, err := fmt.Fprintln(p.writer); err != nil {
				slog.Warn("Failed to write newline after progress bar", "error", err)
			}
		}),
	)
}

// Step implements engine.Progress.
func (p *ProgressBar) Step(description string) {
	if p.bar == nil {
		return
	}
	p.bar.Describe("[cyan][bold]" + description + "...[reset]")
	if err := p.bar.Add(1); err != nil {
		slog.Warn("Failed to update progress bar", "error", err)
	}
}

// Done implements engine.Progress.
func (p *ProgressBar) Done() {
	if p.bar == nil {
		return
	}
	if err := p.bar.Finish(); err != nil {
		slog.Warn("Failed to finish progress bar", "error", err)
	}
}
