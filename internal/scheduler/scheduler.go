// Package scheduler wires up the cron jobs that drive recurring cycles,
// the daily summary and the nightly prune.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"jobwatch/monitor-service/internal/monitor"
)

const (
	summarySpec = "0 9 * * *" // daily summary at 09:00
	pruneSpec   = "0 2 * * *" // prune during the quiet hours
)

// Scheduler wraps robfig/cron and manages the recurring monitor loop.
type Scheduler struct {
	cron    *cron.Cron
	monitor *monitor.Monitor
	spec    string // cycle spec, e.g. "@every 30m"
}

// New creates a Scheduler that runs a cycle every intervalMinutes.
func New(m *monitor.Monitor, intervalMinutes int) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		monitor: m,
		spec:    fmt.Sprintf("@every %dm", intervalMinutes),
	}
}

// Start registers the jobs and starts the scheduler. Also runs one
// cycle immediately so discovery begins without waiting for the first
// tick.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.spec, func() { s.runCycle(ctx) }); err != nil {
		return fmt.Errorf("cron.AddFunc cycle: %w", err)
	}
	if _, err := s.cron.AddFunc(summarySpec, func() {
		if err := s.monitor.SendDailySummary(ctx); err != nil {
			slog.Error("daily summary failed", "err", err)
		}
	}); err != nil {
		return fmt.Errorf("cron.AddFunc summary: %w", err)
	}
	if _, err := s.cron.AddFunc(pruneSpec, func() {
		if err := s.monitor.PruneOld(ctx); err != nil {
			slog.Error("prune failed", "err", err)
		}
	}); err != nil {
		return fmt.Errorf("cron.AddFunc prune: %w", err)
	}

	s.cron.Start()
	slog.Info("scheduler started", "cycleSpec", s.spec)

	go s.runCycle(ctx)

	return nil
}

// Stop gracefully shuts down the scheduler, waiting for a running job.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	slog.Info("scheduler stopped")
}

// runCycle executes one cycle. An overlapping tick is coalesced: the
// monitor refuses to run two cycles at once and we simply skip.
func (s *Scheduler) runCycle(ctx context.Context) {
	result, err := s.monitor.RunCycle(ctx)
	switch {
	case errors.Is(err, monitor.ErrCycleInFlight):
		slog.Warn("previous cycle still running, skipping tick")
	case err != nil:
		slog.Error("cycle failed", "err", err)
	default:
		slog.Info("scheduled cycle done", "new", result.TotalNew, "sent", result.TotalSent)
	}
}
