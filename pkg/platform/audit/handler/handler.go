// Package handler exposes the audit trail read API.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	dErrors "lekha/pkg/domain-errors"
	"lekha/pkg/platform/audit"
	"lekha/pkg/platform/httputil"
	"lekha/pkg/requestcontext"
)

const defaultListLimit = 100

// Reader lists audit entries. The write path stays internal to services.
type Reader interface {
	List(ctx context.Context, filter audit.Filter) ([]audit.Entry, error)
}

// Handler wires the audit read endpoint to the audit writer.
type Handler struct {
	reader Reader
	logger *slog.Logger
}

// New constructs an audit handler with its dependencies.
func New(reader Reader, logger *slog.Logger) *Handler {
	return &Handler{reader: reader, logger: logger}
}

// Register mounts the audit endpoint on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/audit", h.HandleList)
}

// HandleList handles GET /audit for the authenticated firm. Results are
// newest first; the firm scope always comes from the token, never the query.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	firmID := requestcontext.FirmID(ctx)
	if firmID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "firm context required"))
		return
	}

	filter := audit.Filter{
		FirmID:     firmID.String(),
		EntityType: audit.EntityType(r.URL.Query().Get("entity_type")),
		EntityID:   r.URL.Query().Get("entity_id"),
		Action:     audit.Action(r.URL.Query().Get("action")),
		Limit:      defaultListLimit,
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "limit must be a positive integer"))
			return
		}
		filter.Limit = limit
	}

	entries, err := h.reader.List(ctx, filter)
	if err != nil {
		h.logger.ErrorContext(ctx, "audit list failed",
			"firm_id", firmID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromEntries(entries))
}
