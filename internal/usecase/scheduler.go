package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"PaperCast/internal/ports"
)

// DailyRun wires the scheduler driver with a recurring pipeline execution
// that renders the report to a fixed audio artifact.
type DailyRun struct {
	driver      ports.Scheduler
	pipeline    *Pipeline
	synth       ports.Synthesizer
	notifier    ports.Notifier
	prompt      string
	maxArticles int
	output      string
	logger      *slog.Logger
}

// NewDailyRun returns a helper to start/stop the recurring job.
func NewDailyRun(driver ports.Scheduler, pipeline *Pipeline, synth ports.Synthesizer, notifier ports.Notifier,
	prompt string, maxArticles int, output string, logger *slog.Logger) *DailyRun {
	if logger == nil {
		logger = slog.Default()
	}
	return &DailyRun{
		driver:      driver,
		pipeline:    pipeline,
		synth:       synth,
		notifier:    notifier,
		prompt:      prompt,
		maxArticles: maxArticles,
		output:      output,
		logger:      logger,
	}
}

// Start registers the recurring job with the driver.
func (d *DailyRun) Start(ctx context.Context) error {
	if d.driver == nil || d.pipeline == nil {
		return nil
	}
	if strings.TrimSpace(d.prompt) == "" {
		return fmt.Errorf("daily run prompt is empty")
	}

	job := func(trigger time.Time) {
		d.runOnce(ctx, trigger)
	}
	return d.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying driver.
func (d *DailyRun) Stop(ctx context.Context) error {
	if d.driver == nil {
		return nil
	}
	return d.driver.Stop(ctx)
}

func (d *DailyRun) runOnce(ctx context.Context, trigger time.Time) {
	d.logger.Info("scheduled run starting", "trigger", trigger.Format(time.RFC3339))

	report, err := d.pipeline.Process(ctx, Request{
		UserInfo:    d.prompt,
		MaxArticles: d.maxArticles,
		NewOnly:     true,
	})
	if err != nil {
		d.logger.Error("scheduled run failed", "error", err)
		return
	}

	if d.synth != nil {
		if err := d.synth.Synthesize(ctx, report, d.output); err != nil {
			d.logger.Error("scheduled synthesis failed", "error", err)
			return
		}
	}
	if d.notifier != nil {
		if err := d.notifier.Publish(ctx, fmt.Sprintf("daily report ready at %s", d.output)); err != nil {
			d.logger.Debug("daily notification failed", "error", err)
		}
	}
	d.logger.Info("scheduled run complete", "output", d.output)
}
