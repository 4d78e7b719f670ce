package trigger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"lekha/internal/firm"
	"lekha/internal/rules"
	"lekha/internal/tasks"
	"lekha/internal/trigger/metrics"
	id "lekha/pkg/domain"
	dErrors "lekha/pkg/domain-errors"
	"lekha/pkg/platform/audit"
	"lekha/pkg/platform/sentinel"
	"lekha/pkg/requestcontext"
)

// TaskCreator is the slice of the task orchestrator the trigger needs.
type TaskCreator interface {
	Create(ctx context.Context, in tasks.CreateInput) (*tasks.Instance, error)
}

// AuditPort appends entries to the audit trail.
type AuditPort interface {
	Append(ctx context.Context, entry audit.Entry) error
}

// Reservation TTLs bound dedupe keys to their compliance window.
var windowTTLs = map[id.ComplianceFrequency]time.Duration{
	id.FrequencyOneTime:   48 * time.Hour,
	id.FrequencyMonthly:   32 * 24 * time.Hour,
	id.FrequencyQuarterly: 93 * 24 * time.Hour,
	id.FrequencyAnnual:    366 * 24 * time.Hour,
}

// Service derives compliance tasks from system events.
type Service struct {
	graph   *rules.Graph
	firms   firm.Store
	tasks   TaskCreator
	events  EventStore
	dedupe  Deduper
	auditor AuditPort
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func New(graph *rules.Graph, firms firm.Store, taskCreator TaskCreator, events EventStore, dedupe Deduper, auditor AuditPort, opts ...Option) (*Service, error) {
	if graph == nil {
		return nil, fmt.Errorf("rule graph is required")
	}
	if firms == nil {
		return nil, fmt.Errorf("firm store is required")
	}
	if taskCreator == nil {
		return nil, fmt.Errorf("task creator is required")
	}
	if events == nil {
		return nil, fmt.Errorf("event store is required")
	}
	if dedupe == nil {
		return nil, fmt.Errorf("deduper is required")
	}
	if auditor == nil {
		return nil, fmt.Errorf("audit writer is required")
	}
	s := &Service{
		graph:   graph,
		firms:   firms,
		tasks:   taskCreator,
		events:  events,
		dedupe:  dedupe,
		auditor: auditor,
		logger:  slog.Default(),
		tracer:  otel.Tracer("lekha/trigger"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// EventInput is one system event to process.
type EventInput struct {
	UserID  id.UserID
	FirmID  id.FirmID
	Type    id.SystemEventType
	Payload map[string]any
}

// ProcessComplianceEvent persists the event, resolves the rule graph, and
// derives one task per surviving rule. Derivation is best-effort per rule:
// a single rule failing is recorded in its outcome and does not stop the
// others. The event is marked processed even when some rules failed; the
// outcome list is the record of what happened.
func (s *Service) ProcessComplianceEvent(ctx context.Context, in EventInput) (*Result, error) {
	ctx, span := s.tracer.Start(ctx, "trigger.ProcessComplianceEvent",
		trace.WithAttributes(attribute.String("event.type", in.Type.String())))
	defer span.End()
	start := time.Now()

	if in.FirmID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "firm_id is required")
	}
	if !in.Type.IsValid() {
		return nil, dErrors.Newf(dErrors.CodeInvalidInput, "unknown event type %q", in.Type)
	}

	// A firm without a profile has no entity type to resolve rules against.
	// The event is dropped quietly so callers can fire and forget.
	profile, err := s.firms.Get(ctx, in.FirmID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.logger.WarnContext(ctx, "event dropped, firm profile not found",
				"firm_id", in.FirmID,
				"event_type", in.Type,
			)
			return &Result{}, nil
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load firm profile")
	}

	now := requestcontext.Now(ctx)
	event := &ComplianceEvent{
		ID:        id.NewEventID(),
		UserID:    in.UserID,
		FirmID:    in.FirmID,
		Type:      in.Type,
		Payload:   in.Payload,
		CreatedAt: now,
	}
	if err := s.events.Create(ctx, event); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist event")
	}

	resolution := s.graph.Resolve(in.Type, profile.EntityType, in.Payload)
	span.SetAttributes(
		attribute.Int("rules.matched", len(resolution.Rules)),
		attribute.Int("rules.cycles", len(resolution.Cycles)),
	)
	s.metrics.AddMatched(len(resolution.Rules))
	s.metrics.AddCycles(len(resolution.Cycles))
	for _, cycle := range resolution.Cycles {
		s.logger.WarnContext(ctx, "rule dependency cycle skipped",
			"event_id", event.ID,
			"from", cycle.From,
			"to", cycle.To,
		)
	}

	result := &Result{EventID: event.ID, Cycles: resolution.Cycles}
	duplicates := 0
	failures := 0
	for _, rule := range resolution.Rules {
		outcome := s.deriveTask(ctx, event, rule, now)
		result.Outcomes = append(result.Outcomes, outcome)
		switch {
		case outcome.Created():
			result.TasksCreated++
		case outcome.Err != nil:
			failures++
			s.metrics.IncFailure()
			span.RecordError(outcome.Err)
			s.logger.ErrorContext(ctx, "task derivation failed",
				"event_id", event.ID,
				"rule_id", rule.ID,
				"error", outcome.Err,
			)
		case outcome.SkipReason == SkipDuplicateWindow:
			duplicates++
			s.metrics.IncDuplicate()
		}
	}

	if err := s.events.MarkProcessed(ctx, event.ID, requestcontext.Now(ctx)); err != nil {
		return result, dErrors.Wrap(err, dErrors.CodeInternal, "failed to mark event processed")
	}

	if err := s.auditor.Append(ctx, audit.Entry{
		UserID:     event.UserID,
		FirmID:     event.FirmID,
		Action:     audit.ActionEventTriggered,
		EntityType: audit.EntityEvent,
		EntityID:   event.ID.String(),
		Details: map[string]any{
			"event_type":         event.Type.String(),
			"rules_matched":      len(resolution.Rules),
			"tasks_created":      result.TasksCreated,
			"duplicates_skipped": duplicates,
			"failures":           failures,
			"cycles":             len(resolution.Cycles),
		},
	}); err != nil {
		return result, err
	}

	s.metrics.IncProcessed(event.Type.String())
	s.metrics.ObserveDuration(float64(time.Since(start).Microseconds()) / 1000.0)
	s.logger.InfoContext(ctx, "compliance event processed",
		"event_id", event.ID,
		"event_type", event.Type,
		"firm_id", event.FirmID,
		"rules_matched", len(resolution.Rules),
		"tasks_created", result.TasksCreated,
		"duplicates_skipped", duplicates,
		"failures", failures,
	)
	return result, nil
}

// deriveTask creates the task for one matched rule, guarded by the window
// dedupe key. The key is claimed before the task is created and released if
// creation fails so a retry can claim it again.
func (s *Service) deriveTask(ctx context.Context, event *ComplianceEvent, rule rules.ComplianceRule, now time.Time) RuleOutcome {
	outcome := RuleOutcome{RuleID: rule.ID}

	window := rule.Frequency.Window(now)
	key := fmt.Sprintf("%s:%s:%s", event.FirmID, rule.ID, window)
	ttl, ok := windowTTLs[rule.Frequency]
	if !ok {
		ttl = windowTTLs[id.FrequencyOneTime]
	}

	reserved, err := s.dedupe.Reserve(ctx, key, ttl)
	if err != nil {
		outcome.Err = fmt.Errorf("reserve dedupe key: %w", err)
		return outcome
	}
	if !reserved {
		outcome.SkipReason = SkipDuplicateWindow
		return outcome
	}

	documents := make([]tasks.DocumentSlot, 0, len(rule.RequiredDocuments))
	for _, doc := range rule.RequiredDocuments {
		documents = append(documents, tasks.DocumentSlot{
			DocumentType: doc.DocumentType,
			Mandatory:    doc.Mandatory,
		})
	}
	priority := rule.TaskConfig.Priority
	if !priority.IsValid() {
		priority = id.PriorityMedium
	}

	task, err := s.tasks.Create(ctx, tasks.CreateInput{
		UserID:           event.UserID,
		FirmID:           event.FirmID,
		RuleID:           rule.ID,
		EventID:          event.ID,
		Name:             rule.Name,
		Description:      rule.Description,
		Category:         rule.Category,
		Frequency:        rule.Frequency,
		DueDate:          rules.CalculateDueDate(rule, now),
		Priority:         priority,
		RequiresCAReview: rule.TaskConfig.RequiresCAReview,
		Documents:        documents,
	})
	if err != nil {
		if releaseErr := s.dedupe.Release(ctx, key); releaseErr != nil {
			s.logger.WarnContext(ctx, "failed to release dedupe key",
				"key", key,
				"error", releaseErr,
			)
		}
		outcome.Err = err
		return outcome
	}

	outcome.TaskID = task.ID
	return outcome
}
