// Package scheduler runs the periodic background passes: the overdue task
// sweep and the firm-wide risk scan.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"lekha/internal/firm"
	"lekha/internal/platform/config"
	id "lekha/pkg/domain"
)

// TaskSweeper flips past-due open tasks to overdue.
type TaskSweeper interface {
	SweepOverdue(ctx context.Context) (int, error)
}

// RiskScanner runs the risk detectors across firms.
type RiskScanner interface {
	ScanFirms(ctx context.Context, firmIDs []id.FirmID) (int, error)
}

// Scheduler owns the background tickers. Run blocks until the context is
// cancelled; each pass is independent and a failed pass only logs.
type Scheduler struct {
	cfg     config.SchedulerConfig
	sweeper TaskSweeper
	scanner RiskScanner
	firms   firm.Store
	logger  *slog.Logger
}

type Option func(*Scheduler)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) { s.logger = logger }
}

func New(cfg config.SchedulerConfig, sweeper TaskSweeper, scanner RiskScanner, firms firm.Store, opts ...Option) (*Scheduler, error) {
	if sweeper == nil {
		return nil, fmt.Errorf("task sweeper is required")
	}
	if scanner == nil {
		return nil, fmt.Errorf("risk scanner is required")
	}
	if firms == nil {
		return nil, fmt.Errorf("firm store is required")
	}
	s := &Scheduler{cfg: cfg, sweeper: sweeper, scanner: scanner, firms: firms, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Run starts both tickers and blocks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	sweep := time.NewTicker(s.cfg.OverdueInterval)
	defer sweep.Stop()
	scan := time.NewTicker(s.cfg.RiskScanInterval)
	defer scan.Stop()

	s.logger.InfoContext(ctx, "scheduler started",
		"overdue_interval", s.cfg.OverdueInterval.String(),
		"risk_scan_interval", s.cfg.RiskScanInterval.String(),
	)

	for {
		select {
		case <-ctx.Done():
			s.logger.InfoContext(ctx, "scheduler stopped")
			return
		case <-sweep.C:
			s.runSweep(ctx)
		case <-scan.C:
			s.runScan(ctx)
		}
	}
}

func (s *Scheduler) runSweep(ctx context.Context) {
	marked, err := s.sweeper.SweepOverdue(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "overdue sweep failed", "error", err)
		return
	}
	if marked > 0 {
		s.logger.InfoContext(ctx, "overdue sweep completed", "tasks_marked", marked)
	}
}

func (s *Scheduler) runScan(ctx context.Context) {
	firmIDs, err := s.firms.ListIDs(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "risk scan failed listing firms", "error", err)
		return
	}
	if len(firmIDs) == 0 {
		return
	}

	detected, err := s.scanner.ScanFirms(ctx, firmIDs)
	if err != nil {
		s.logger.ErrorContext(ctx, "risk scan failed", "error", err)
		return
	}
	s.logger.InfoContext(ctx, "risk scan completed",
		"firms_scanned", len(firmIDs),
		"risks_detected", detected,
	)
}
