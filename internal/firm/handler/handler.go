package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"lekha/internal/firm"
	id "lekha/pkg/domain"
	dErrors "lekha/pkg/domain-errors"
	"lekha/pkg/platform/httputil"
	"lekha/pkg/requestcontext"
)

// Service defines the interface for firm profile operations.
type Service interface {
	Upsert(ctx context.Context, userID id.UserID, firmID id.FirmID, input firm.UpsertInput) (*firm.Profile, error)
	Get(ctx context.Context, firmID id.FirmID) (*firm.Profile, error)
}

// Handler wires firm profile endpoints to the firm service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a firm handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts firm profile endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Put("/firm", h.HandleUpsert)
	r.Get("/firm", h.HandleGet)
}

// HandleUpsert handles PUT /firm for the authenticated firm.
func (h *Handler) HandleUpsert(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	userID := requestcontext.UserID(ctx)
	firmID := requestcontext.FirmID(ctx)
	if userID.IsNil() || firmID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "firm context required"))
		return
	}

	req, ok := httputil.DecodeAndPrepare[UpsertProfileRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	profile, err := h.service.Upsert(ctx, userID, firmID, firm.UpsertInput{
		Name:           req.Name,
		EntityType:     req.ParsedEntityType(),
		GSTIN:          req.GSTIN,
		PAN:            req.PAN,
		TAN:            req.TAN,
		EmployeeCount:  req.EmployeeCount,
		AnnualTurnover: req.AnnualTurnover,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "firm profile upsert failed",
			"firm_id", firmID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromProfile(profile))
}

// HandleGet handles GET /firm for the authenticated firm.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	firmID := requestcontext.FirmID(ctx)
	if firmID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "firm context required"))
		return
	}

	profile, err := h.service.Get(ctx, firmID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromProfile(profile))
}
