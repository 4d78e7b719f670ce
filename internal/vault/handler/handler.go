package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"lekha/internal/vault"
	id "lekha/pkg/domain"
	dErrors "lekha/pkg/domain-errors"
	"lekha/pkg/platform/httputil"
	"lekha/pkg/requestcontext"
)

// Service defines the interface for vault operations.
type Service interface {
	Register(ctx context.Context, input vault.RegisterInput) (*vault.Document, error)
	Get(ctx context.Context, docID id.DocumentID) (*vault.Document, error)
	ListByFirm(ctx context.Context, firmID id.FirmID, filter vault.ListFilter) ([]*vault.Document, error)
	Tag(ctx context.Context, docID id.DocumentID, tags []string, performedBy string) (*vault.Document, error)
	AttachToTask(ctx context.Context, docID id.DocumentID, taskID id.TaskID, performedBy string) (*vault.Document, error)
}

// Handler wires vault endpoints to the vault service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a vault handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts vault endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/documents", h.HandleRegister)
	r.Get("/documents", h.HandleList)
	r.Get("/documents/{documentID}", h.HandleGet)
	r.Post("/documents/{documentID}/tags", h.HandleTag)
	r.Post("/documents/{documentID}/attach", h.HandleAttach)
}

func documentID(w http.ResponseWriter, r *http.Request) (id.DocumentID, bool) {
	docID, err := id.ParseDocumentID(chi.URLParam(r, "documentID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid document id"))
		return id.DocumentID{}, false
	}
	return docID, true
}

// HandleRegister handles POST /documents.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	userID := requestcontext.UserID(ctx)
	firmID := requestcontext.FirmID(ctx)
	if userID.IsNil() || firmID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "firm context required"))
		return
	}

	req, ok := httputil.DecodeAndPrepare[RegisterDocumentRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	doc, err := h.service.Register(ctx, vault.RegisterInput{
		UserID:       userID,
		FirmID:       firmID,
		Name:         req.Name,
		DocumentType: req.DocumentType,
		ContentType:  req.ContentType,
		SizeBytes:    req.SizeBytes,
		StorageRef:   req.StorageRef,
		Tags:         req.Tags,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "document registration failed",
			"firm_id", firmID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, FromDocument(doc))
}

// HandleList handles GET /documents for the authenticated firm.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	firmID := requestcontext.FirmID(ctx)
	if firmID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "firm context required"))
		return
	}

	filter := vault.ListFilter{
		DocumentType: r.URL.Query().Get("document_type"),
		Tag:          r.URL.Query().Get("tag"),
	}
	docs, err := h.service.ListByFirm(ctx, firmID, filter)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromDocuments(docs))
}

// HandleGet handles GET /documents/{documentID}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	docID, ok := documentID(w, r)
	if !ok {
		return
	}

	doc, err := h.service.Get(ctx, docID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromDocument(doc))
}

// HandleTag handles POST /documents/{documentID}/tags.
func (h *Handler) HandleTag(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	docID, ok := documentID(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[TagDocumentRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	doc, err := h.service.Tag(ctx, docID, req.Tags, requestcontext.UserID(ctx).String())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromDocument(doc))
}

// HandleAttach handles POST /documents/{documentID}/attach.
func (h *Handler) HandleAttach(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	docID, ok := documentID(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[AttachDocumentRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	doc, err := h.service.AttachToTask(ctx, docID, req.ParsedTaskID(), requestcontext.UserID(ctx).String())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromDocument(doc))
}
