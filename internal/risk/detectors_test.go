package risk

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lekha/internal/tasks"
	id "lekha/pkg/domain"
)

func TestDetectGSTRMismatch(t *testing.T) {
	tests := []struct {
		name         string
		gstr1        float64
		gstr3b       float64
		wantDetected bool
		wantSeverity Severity
	}{
		{name: "identical totals are clean", gstr1: 100000, gstr3b: 100000, wantDetected: false},
		{name: "variance under 5% is clean", gstr1: 100000, gstr3b: 96000, wantDetected: false},
		{name: "6% variance is medium", gstr1: 100000, gstr3b: 94000, wantDetected: true, wantSeverity: SeverityMedium},
		{name: "12% variance is high", gstr1: 100000, gstr3b: 88000, wantDetected: true, wantSeverity: SeverityHigh},
		{name: "over-reported 3B also flags", gstr1: 100000, gstr3b: 108000, wantDetected: true, wantSeverity: SeverityMedium},
		{name: "zero GSTR-1 turnover is skipped", gstr1: 0, gstr3b: 50000, wantDetected: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			detected, ok := DetectGSTRMismatch(GSTRFilingFacts{
				Period:      "01-2024",
				GSTR1Total:  tt.gstr1,
				GSTR3BTotal: tt.gstr3b,
			})
			assert.Equal(t, tt.wantDetected, ok)
			if tt.wantDetected {
				assert.Equal(t, TypeGSTRMismatch, detected.Type)
				assert.Equal(t, tt.wantSeverity, detected.Severity)
				assert.Greater(t, detected.Action.EstimatedPenalty, 0.0)
			}
		})
	}
}

func TestDetectITCShortfall(t *testing.T) {
	tests := []struct {
		name         string
		claimed      float64
		available    float64
		wantDetected bool
		wantSeverity Severity
	}{
		{name: "claim equal to available is clean", claimed: 60000, available: 60000, wantDetected: false},
		{name: "claim above available is clean", claimed: 63000, available: 60000, wantDetected: false},
		{name: "small shortfall is medium", claimed: 58000, available: 60000, wantDetected: true, wantSeverity: SeverityMedium},
		{name: "shortfall above 10% of available is high", claimed: 50000, available: 60000, wantDetected: true, wantSeverity: SeverityHigh},
		{name: "nothing claimed leaves the full credit unavailed", claimed: 0, available: 60000, wantDetected: true, wantSeverity: SeverityHigh},
		{name: "nothing available is clean", claimed: 10000, available: 0, wantDetected: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			detected, ok := DetectITCShortfall(ITCFacts{
				Period:       "01-2024",
				ITCClaimed:   tt.claimed,
				ITCAvailable: tt.available,
			})
			assert.Equal(t, tt.wantDetected, ok)
			if tt.wantDetected {
				assert.Equal(t, TypeITCShortfall, detected.Type)
				assert.Equal(t, tt.wantSeverity, detected.Severity)
				assert.Equal(t, tt.available-tt.claimed, detected.Details["shortfall"])
			}
		})
	}
}

func TestDetectDelayedFiling(t *testing.T) {
	now := time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC)

	newTask := func(status tasks.Status, due time.Time) *tasks.Instance {
		return &tasks.Instance{
			ID:      id.NewTaskID(),
			RuleID:  id.RuleID("gstr3b_monthly"),
			Name:    "File GSTR-3B",
			Status:  status,
			DueDate: due,
		}
	}

	t.Run("40 days late is critical", func(t *testing.T) {
		detected, ok := DetectDelayedFiling(newTask(tasks.StatusPending, now.AddDate(0, 0, -40)), now)
		require.True(t, ok)
		assert.Equal(t, SeverityCritical, detected.Severity)
		assert.Equal(t, 40*50.0, detected.Action.EstimatedPenalty)
	})

	t.Run("20 days late is high", func(t *testing.T) {
		detected, ok := DetectDelayedFiling(newTask(tasks.StatusOverdue, now.AddDate(0, 0, -20)), now)
		require.True(t, ok)
		assert.Equal(t, SeverityHigh, detected.Severity)
	})

	t.Run("5 days late is medium", func(t *testing.T) {
		detected, ok := DetectDelayedFiling(newTask(tasks.StatusInProgress, now.AddDate(0, 0, -5)), now)
		require.True(t, ok)
		assert.Equal(t, SeverityMedium, detected.Severity)
	})

	t.Run("hours past due already flags", func(t *testing.T) {
		detected, ok := DetectDelayedFiling(newTask(tasks.StatusPending, now.Add(-6*time.Hour)), now)
		require.True(t, ok)
		assert.Equal(t, SeverityMedium, detected.Severity)
		assert.Equal(t, 1, detected.Details["days_late"])
	})

	t.Run("not yet due is clean", func(t *testing.T) {
		_, ok := DetectDelayedFiling(newTask(tasks.StatusPending, now.AddDate(0, 0, 5)), now)
		assert.False(t, ok)
	})

	t.Run("filed task is never late", func(t *testing.T) {
		_, ok := DetectDelayedFiling(newTask(tasks.StatusFiled, now.AddDate(0, 0, -40)), now)
		assert.False(t, ok)
	})
}

func TestDetectMissingDocuments(t *testing.T) {
	now := time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC)

	newTask := func(due time.Time, slots ...tasks.DocumentSlot) *tasks.Instance {
		return &tasks.Instance{
			ID:        id.NewTaskID(),
			Name:      "File GSTR-1",
			Status:    tasks.StatusPending,
			DueDate:   due,
			Documents: slots,
		}
	}

	t.Run("mandatory slot empty near due date is medium", func(t *testing.T) {
		detected, ok := DetectMissingDocuments(newTask(now.AddDate(0, 0, 3),
			tasks.DocumentSlot{DocumentType: "sales_register", Mandatory: true}), now)
		require.True(t, ok)
		assert.Equal(t, SeverityMedium, detected.Severity)
	})

	t.Run("past due escalates to high", func(t *testing.T) {
		detected, ok := DetectMissingDocuments(newTask(now.AddDate(0, 0, -2),
			tasks.DocumentSlot{DocumentType: "sales_register", Mandatory: true}), now)
		require.True(t, ok)
		assert.Equal(t, SeverityHigh, detected.Severity)
	})

	t.Run("optional slot empty is clean", func(t *testing.T) {
		_, ok := DetectMissingDocuments(newTask(now.AddDate(0, 0, 3),
			tasks.DocumentSlot{DocumentType: "bank_statement", Mandatory: false}), now)
		assert.False(t, ok)
	})

	t.Run("uploaded slot is clean", func(t *testing.T) {
		_, ok := DetectMissingDocuments(newTask(now.AddDate(0, 0, 3),
			tasks.DocumentSlot{DocumentType: "sales_register", Mandatory: true, Uploaded: true}), now)
		assert.False(t, ok)
	})

	t.Run("due date far out still flags", func(t *testing.T) {
		detected, ok := DetectMissingDocuments(newTask(now.AddDate(0, 0, 30),
			tasks.DocumentSlot{DocumentType: "sales_register", Mandatory: true}), now)
		require.True(t, ok)
		assert.Equal(t, SeverityMedium, detected.Severity)
	})
}
