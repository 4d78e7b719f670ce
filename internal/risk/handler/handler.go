package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"lekha/internal/risk"
	id "lekha/pkg/domain"
	dErrors "lekha/pkg/domain-errors"
	"lekha/pkg/platform/httputil"
	"lekha/pkg/requestcontext"
)

// Service defines the interface for risk operations.
type Service interface {
	EvaluateGSTRFiling(ctx context.Context, userID id.UserID, firmID id.FirmID, facts risk.GSTRFilingFacts) (*risk.ComplianceRisk, error)
	EvaluateITCClaim(ctx context.Context, userID id.UserID, firmID id.FirmID, facts risk.ITCFacts) (*risk.ComplianceRisk, error)
	ScanFirm(ctx context.Context, firmID id.FirmID) ([]*risk.ComplianceRisk, error)
	Get(ctx context.Context, riskID id.RiskID) (*risk.ComplianceRisk, error)
	ListByFirm(ctx context.Context, firmID id.FirmID, filter risk.ListFilter) ([]*risk.ComplianceRisk, error)
	Resolve(ctx context.Context, riskID id.RiskID, performedBy string) (*risk.ComplianceRisk, error)
}

// Handler wires risk endpoints to the risk service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a risk handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts risk endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/risks", h.HandleList)
	r.Get("/risks/{riskID}", h.HandleGet)
	r.Post("/risks/{riskID}/resolve", h.HandleResolve)
	r.Post("/risks/evaluate/gstr", h.HandleEvaluateGSTR)
	r.Post("/risks/evaluate/itc", h.HandleEvaluateITC)
	r.Post("/risks/scan", h.HandleScan)
}

func (h *Handler) authFirm(w http.ResponseWriter, r *http.Request) (id.FirmID, bool) {
	firmID := requestcontext.FirmID(r.Context())
	if firmID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "firm context required"))
		return id.FirmID{}, false
	}
	return firmID, true
}

// HandleList handles GET /risks for the authenticated firm.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	firmID, ok := h.authFirm(w, r)
	if !ok {
		return
	}

	filter := risk.ListFilter{
		Status: risk.Status(r.URL.Query().Get("status")),
		Type:   risk.Type(r.URL.Query().Get("type")),
	}
	if filter.Type != "" && !filter.Type.IsValid() {
		httputil.WriteError(w, dErrors.Newf(dErrors.CodeInvalidInput, "unknown risk type %q", filter.Type))
		return
	}

	list, err := h.service.ListByFirm(ctx, firmID, filter)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromRisks(list))
}

// HandleGet handles GET /risks/{riskID}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	riskID, err := id.ParseRiskID(chi.URLParam(r, "riskID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid risk id"))
		return
	}

	detected, err := h.service.Get(ctx, riskID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromRisk(detected))
}

// HandleResolve handles POST /risks/{riskID}/resolve.
func (h *Handler) HandleResolve(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	riskID, err := id.ParseRiskID(chi.URLParam(r, "riskID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid risk id"))
		return
	}

	performedBy := ""
	if userID := requestcontext.UserID(ctx); !userID.IsNil() {
		performedBy = userID.String()
	}

	resolved, err := h.service.Resolve(ctx, riskID, performedBy)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromRisk(resolved))
}

// HandleEvaluateGSTR handles POST /risks/evaluate/gstr.
func (h *Handler) HandleEvaluateGSTR(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	firmID, ok := h.authFirm(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[EvaluateGSTRRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	detected, err := h.service.EvaluateGSTRFiling(ctx, requestcontext.UserID(ctx), firmID, risk.GSTRFilingFacts{
		Period:      req.Period,
		GSTR1Total:  req.GSTR1Total,
		GSTR3BTotal: req.GSTR3BTotal,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	writeEvaluation(w, detected)
}

// HandleEvaluateITC handles POST /risks/evaluate/itc.
func (h *Handler) HandleEvaluateITC(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	firmID, ok := h.authFirm(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[EvaluateITCRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	detected, err := h.service.EvaluateITCClaim(ctx, requestcontext.UserID(ctx), firmID, risk.ITCFacts{
		Period:       req.Period,
		ITCClaimed:   req.ITCClaimed,
		ITCAvailable: req.ITCAvailable,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	writeEvaluation(w, detected)
}

// HandleScan handles POST /risks/scan for the authenticated firm.
func (h *Handler) HandleScan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	firmID, ok := h.authFirm(w, r)
	if !ok {
		return
	}

	found, err := h.service.ScanFirm(ctx, firmID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ScanResponse{
		RisksDetected: len(found),
		Risks:         FromRisks(found),
	})
}

// writeEvaluation reports either the detected risk or a clean result.
func writeEvaluation(w http.ResponseWriter, detected *risk.ComplianceRisk) {
	if detected == nil {
		httputil.WriteJSON(w, http.StatusOK, EvaluationResponse{Detected: false})
		return
	}
	httputil.WriteJSON(w, http.StatusOK, EvaluationResponse{Detected: true, Risk: FromRisk(detected)})
}
