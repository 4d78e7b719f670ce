package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"lekha/internal/trigger"
	id "lekha/pkg/domain"
	dErrors "lekha/pkg/domain-errors"
	"lekha/pkg/platform/httputil"
	"lekha/pkg/platform/sentinel"
	"lekha/pkg/requestcontext"
)

// Service defines the interface for event processing operations.
type Service interface {
	ProcessComplianceEvent(ctx context.Context, in trigger.EventInput) (*trigger.Result, error)
	RegistrationCompleted(ctx context.Context, userID id.UserID, firmID id.FirmID) (*trigger.Result, error)
	EmployeeCountChanged(ctx context.Context, userID id.UserID, firmID id.FirmID, employeeCount int) (*trigger.Result, error)
	MonthEnd(ctx context.Context, userID id.UserID, firmID id.FirmID) (*trigger.Result, error)
	QuarterEnd(ctx context.Context, userID id.UserID, firmID id.FirmID) (*trigger.Result, error)
	FiscalYearEnd(ctx context.Context, userID id.UserID, firmID id.FirmID) (*trigger.Result, error)
	PayrollExecuted(ctx context.Context, userID id.UserID, firmID id.FirmID, payload map[string]any) (*trigger.Result, error)
	InvoiceGenerated(ctx context.Context, userID id.UserID, firmID id.FirmID, payload map[string]any) (*trigger.Result, error)
	SubscriptionActivated(ctx context.Context, userID id.UserID, firmID id.FirmID) (*trigger.Result, error)
}

// EventReader lists persisted events.
type EventReader interface {
	Get(ctx context.Context, eventID id.EventID) (*trigger.ComplianceEvent, error)
	ListByFirm(ctx context.Context, firmID id.FirmID, limit int) ([]*trigger.ComplianceEvent, error)
}

// Handler wires event endpoints to the trigger service.
type Handler struct {
	service Service
	events  EventReader
	logger  *slog.Logger
}

// New constructs an event handler with its dependencies.
func New(service Service, events EventReader, logger *slog.Logger) *Handler {
	return &Handler{service: service, events: events, logger: logger}
}

// Register mounts event endpoints on the router. The named routes wrap the
// generic one so callers do not hand-build event payloads for the common
// lifecycle moments.
func (h *Handler) Register(r chi.Router) {
	r.Post("/events", h.HandleProcess)
	r.Get("/events", h.HandleList)
	r.Get("/events/{eventID}", h.HandleGet)

	r.Post("/events/registration-completed", h.handleNamed(h.service.RegistrationCompleted))
	r.Post("/events/month-end", h.handleNamed(h.service.MonthEnd))
	r.Post("/events/quarter-end", h.handleNamed(h.service.QuarterEnd))
	r.Post("/events/fiscal-year-end", h.handleNamed(h.service.FiscalYearEnd))
	r.Post("/events/subscription-activated", h.handleNamed(h.service.SubscriptionActivated))
	r.Post("/events/employee-count", h.HandleEmployeeCount)
	r.Post("/events/payroll", h.handlePayload(h.service.PayrollExecuted))
	r.Post("/events/invoice", h.handlePayload(h.service.InvoiceGenerated))
}

// caller extracts the authenticated user and firm or writes a 401.
func caller(w http.ResponseWriter, r *http.Request) (id.UserID, id.FirmID, bool) {
	ctx := r.Context()
	userID := requestcontext.UserID(ctx)
	if userID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return id.UserID{}, id.FirmID{}, false
	}
	firmID := requestcontext.FirmID(ctx)
	if firmID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "firm context required"))
		return id.UserID{}, id.FirmID{}, false
	}
	return userID, firmID, true
}

func (h *Handler) handleNamed(process func(ctx context.Context, userID id.UserID, firmID id.FirmID) (*trigger.Result, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID, firmID, ok := caller(w, r)
		if !ok {
			return
		}

		result, err := process(ctx, userID, firmID)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, FromResult(result))
	}
}

func (h *Handler) handlePayload(process func(ctx context.Context, userID id.UserID, firmID id.FirmID, payload map[string]any) (*trigger.Result, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		requestID := requestcontext.RequestID(ctx)
		userID, firmID, ok := caller(w, r)
		if !ok {
			return
		}

		req, ok := httputil.DecodeAndPrepare[PayloadEventRequest](w, r, h.logger, ctx, requestID)
		if !ok {
			return
		}

		result, err := process(ctx, userID, firmID, req.Payload)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, FromResult(result))
	}
}

// HandleEmployeeCount handles POST /events/employee-count.
func (h *Handler) HandleEmployeeCount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	userID, firmID, ok := caller(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[EmployeeCountRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := h.service.EmployeeCountChanged(ctx, userID, firmID, req.EmployeeCount)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromResult(result))
}

// HandleProcess handles POST /events.
func (h *Handler) HandleProcess(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	userID := requestcontext.UserID(ctx)
	if userID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}
	firmID := requestcontext.FirmID(ctx)
	if firmID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "firm context required"))
		return
	}

	req, ok := httputil.DecodeAndPrepare[ProcessEventRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := h.service.ProcessComplianceEvent(ctx, trigger.EventInput{
		UserID:  userID,
		FirmID:  firmID,
		Type:    req.ParsedType(),
		Payload: req.Payload,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "event processing failed",
			"request_id", requestID,
			"event_type", req.EventType,
			"firm_id", firmID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "event processed",
		"request_id", requestID,
		"event_type", req.EventType,
		"tasks_created", result.TasksCreated,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, FromResult(result))
}

// HandleList handles GET /events for the authenticated firm.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	firmID := requestcontext.FirmID(ctx)
	if firmID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "firm context required"))
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "limit must be a non-negative integer"))
			return
		}
		limit = parsed
	}

	events, err := h.events.ListByFirm(ctx, firmID, limit)
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list events"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromEvents(events))
}

// HandleGet handles GET /events/{eventID}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	eventID, err := id.ParseEventID(chi.URLParam(r, "eventID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid event id"))
		return
	}

	event, err := h.events.Get(ctx, eventID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "event not found"))
			return
		}
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to get event"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromEvent(event))
}
