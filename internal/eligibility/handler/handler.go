package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"lekha/internal/eligibility"
	id "lekha/pkg/domain"
	dErrors "lekha/pkg/domain-errors"
	"lekha/pkg/platform/httputil"
	"lekha/pkg/requestcontext"
)

// Service defines the interface for eligibility operations.
type Service interface {
	PerformEligibilityCheck(ctx context.Context, userID id.UserID, firmID id.FirmID) ([]*eligibility.PlanRecommendation, error)
	ListByFirm(ctx context.Context, firmID id.FirmID) ([]*eligibility.PlanRecommendation, error)
	SetStatus(ctx context.Context, recID id.RecommendationID, status eligibility.Status) (*eligibility.PlanRecommendation, error)
}

// Handler wires eligibility endpoints to the eligibility service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs an eligibility handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts eligibility endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/eligibility/check", h.HandleCheck)
	r.Get("/recommendations", h.HandleList)
	r.Post("/recommendations/{recommendationID}/status", h.HandleSetStatus)
}

// HandleCheck handles POST /eligibility/check.
func (h *Handler) HandleCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID := requestcontext.UserID(ctx)
	firmID := requestcontext.FirmID(ctx)
	if firmID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "firm context required"))
		return
	}

	created, err := h.service.PerformEligibilityCheck(ctx, userID, firmID)
	if err != nil {
		h.logger.ErrorContext(ctx, "eligibility check failed",
			"firm_id", firmID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, CheckResponse{
		RecommendationsPresented: len(created),
		Recommendations:          FromRecommendations(created),
	})
}

// HandleList handles GET /recommendations for the authenticated firm.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	firmID := requestcontext.FirmID(ctx)
	if firmID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "firm context required"))
		return
	}

	list, err := h.service.ListByFirm(ctx, firmID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromRecommendations(list))
}

// HandleSetStatus handles POST /recommendations/{recommendationID}/status.
func (h *Handler) HandleSetStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	recID, err := id.ParseRecommendationID(chi.URLParam(r, "recommendationID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid recommendation id"))
		return
	}

	req, ok := httputil.DecodeAndPrepare[SetStatusRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	rec, err := h.service.SetStatus(ctx, recID, eligibility.Status(req.Status))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromRecommendation(rec))
}
