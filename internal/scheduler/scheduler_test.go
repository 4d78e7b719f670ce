package scheduler_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"lekha/internal/firm"
	firmStore "lekha/internal/firm/store/memory"
	"lekha/internal/platform/config"
	"lekha/internal/scheduler"
	id "lekha/pkg/domain"
)

type fakeSweeper struct {
	calls atomic.Int32
}

func (f *fakeSweeper) SweepOverdue(context.Context) (int, error) {
	f.calls.Add(1)
	return 2, nil
}

type fakeScanner struct {
	calls atomic.Int32
	firms atomic.Int32
}

func (f *fakeScanner) ScanFirms(_ context.Context, firmIDs []id.FirmID) (int, error) {
	f.calls.Add(1)
	f.firms.Store(int32(len(firmIDs)))
	return 1, nil
}

// ============================================================
// Scheduler Suite
// ============================================================

type SchedulerSuite struct {
	suite.Suite
	firms *firmStore.InMemoryStore
}

func TestSchedulerSuite(t *testing.T) {
	suite.Run(t, new(SchedulerSuite))
}

func (s *SchedulerSuite) SetupTest() {
	s.firms = firmStore.NewInMemoryStore()
}

func (s *SchedulerSuite) TestConstructorRequiresDependencies() {
	cfg := config.SchedulerConfig{OverdueInterval: time.Hour, RiskScanInterval: time.Hour}

	_, err := scheduler.New(cfg, nil, &fakeScanner{}, s.firms)
	s.Require().ErrorContains(err, "task sweeper is required")

	_, err = scheduler.New(cfg, &fakeSweeper{}, nil, s.firms)
	s.Require().ErrorContains(err, "risk scanner is required")

	_, err = scheduler.New(cfg, &fakeSweeper{}, &fakeScanner{}, nil)
	s.Require().ErrorContains(err, "firm store is required")
}

func (s *SchedulerSuite) TestRunFiresBothPasses() {
	err := s.firms.Upsert(context.Background(), &firm.Profile{ID: id.NewFirmID()})
	s.Require().NoError(err)

	sweeper := &fakeSweeper{}
	scanner := &fakeScanner{}
	cfg := config.SchedulerConfig{
		OverdueInterval:  10 * time.Millisecond,
		RiskScanInterval: 10 * time.Millisecond,
	}

	sched, err := scheduler.New(cfg, sweeper, scanner, s.firms)
	s.Require().NoError(err)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	sched.Run(ctx)

	s.Positive(sweeper.calls.Load())
	s.Positive(scanner.calls.Load())
	s.EqualValues(1, scanner.firms.Load())
}

func (s *SchedulerSuite) TestScanSkippedWithNoFirms() {
	sweeper := &fakeSweeper{}
	scanner := &fakeScanner{}
	cfg := config.SchedulerConfig{
		OverdueInterval:  time.Hour,
		RiskScanInterval: 10 * time.Millisecond,
	}

	sched, err := scheduler.New(cfg, sweeper, scanner, s.firms)
	s.Require().NoError(err)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()
	sched.Run(ctx)

	s.Zero(scanner.calls.Load())
}
