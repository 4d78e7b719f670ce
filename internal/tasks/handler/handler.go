package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"lekha/internal/tasks"
	id "lekha/pkg/domain"
	dErrors "lekha/pkg/domain-errors"
	"lekha/pkg/platform/httputil"
	"lekha/pkg/requestcontext"
)

// Service defines the interface for task orchestration operations.
type Service interface {
	Get(ctx context.Context, taskID id.TaskID) (*tasks.Instance, error)
	ListByFirm(ctx context.Context, firmID id.FirmID, filter tasks.ListFilter) ([]*tasks.Instance, error)
	TransitionStatus(ctx context.Context, taskID id.TaskID, to tasks.Status, performedBy string) (*tasks.Instance, error)
	AssignAssociate(ctx context.Context, taskID id.TaskID, associate id.UserID, performedBy string) (*tasks.Instance, error)
	AssignCAReviewer(ctx context.Context, taskID id.TaskID, reviewer id.UserID, performedBy string) (*tasks.Instance, error)
	LinkDocument(ctx context.Context, taskID id.TaskID, documentType string, docID id.DocumentID, performedBy string) (*tasks.Instance, error)
	RecordFiling(ctx context.Context, taskID id.TaskID, filing tasks.FilingDetails, performedBy string) (*tasks.Instance, error)
	SweepOverdue(ctx context.Context) (int, error)
}

// Handler wires task endpoints to the orchestrator.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a task handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts task endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/tasks", h.HandleList)
	r.Get("/tasks/{taskID}", h.HandleGet)
	r.Post("/tasks/{taskID}/status", h.HandleTransition)
	r.Post("/tasks/{taskID}/assign", h.HandleAssign)
	r.Post("/tasks/{taskID}/documents", h.HandleLinkDocument)
	r.Post("/tasks/{taskID}/filing", h.HandleRecordFiling)
	r.Post("/tasks/sweep", h.HandleSweep)
}

func (h *Handler) taskID(w http.ResponseWriter, r *http.Request) (id.TaskID, bool) {
	taskID, err := id.ParseTaskID(chi.URLParam(r, "taskID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid task id"))
		return id.TaskID{}, false
	}
	return taskID, true
}

func performer(ctx context.Context) string {
	userID := requestcontext.UserID(ctx)
	if userID.IsNil() {
		return ""
	}
	return userID.String()
}

// HandleList handles GET /tasks for the authenticated firm.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	firmID := requestcontext.FirmID(ctx)
	if firmID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "firm context required"))
		return
	}

	filter := tasks.ListFilter{
		Status:   tasks.Status(r.URL.Query().Get("status")),
		Category: r.URL.Query().Get("category"),
	}
	if filter.Status != "" && !filter.Status.IsValid() {
		httputil.WriteError(w, dErrors.Newf(dErrors.CodeInvalidInput, "unknown status %q", filter.Status))
		return
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "limit must be a non-negative integer"))
			return
		}
		filter.Limit = limit
	}

	list, err := h.service.ListByFirm(ctx, firmID, filter)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromInstances(list))
}

// HandleGet handles GET /tasks/{taskID}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	taskID, ok := h.taskID(w, r)
	if !ok {
		return
	}

	task, err := h.service.Get(ctx, taskID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromInstance(task))
}

// HandleTransition handles POST /tasks/{taskID}/status.
func (h *Handler) HandleTransition(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	taskID, ok := h.taskID(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[TransitionRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	task, err := h.service.TransitionStatus(ctx, taskID, req.ParsedStatus(), performer(ctx))
	if err != nil {
		h.logger.ErrorContext(ctx, "task transition failed",
			"request_id", requestID,
			"task_id", taskID,
			"target_status", req.Status,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromInstance(task))
}

// HandleAssign handles POST /tasks/{taskID}/assign.
func (h *Handler) HandleAssign(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	taskID, ok := h.taskID(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[AssignRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	var task *tasks.Instance
	var err error
	switch req.Role {
	case RoleAssociate:
		task, err = h.service.AssignAssociate(ctx, taskID, req.ParsedAssignee(), performer(ctx))
	case RoleCAReviewer:
		task, err = h.service.AssignCAReviewer(ctx, taskID, req.ParsedAssignee(), performer(ctx))
	}
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromInstance(task))
}

// HandleLinkDocument handles POST /tasks/{taskID}/documents.
func (h *Handler) HandleLinkDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	taskID, ok := h.taskID(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[LinkDocumentRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	task, err := h.service.LinkDocument(ctx, taskID, req.DocumentType, req.ParsedDocumentID(), performer(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromInstance(task))
}

// HandleRecordFiling handles POST /tasks/{taskID}/filing.
func (h *Handler) HandleRecordFiling(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()
	taskID, ok := h.taskID(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[RecordFilingRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	task, err := h.service.RecordFiling(ctx, taskID, tasks.FilingDetails{
		Reference:          req.Reference,
		Period:             req.Period,
		PortalSubmissionID: req.PortalSubmissionID,
	}, performer(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "filing recorded",
		"request_id", requestID,
		"task_id", taskID,
		"reference", req.Reference,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, FromInstance(task))
}

// HandleSweep handles POST /tasks/sweep. Normally driven by the scheduler;
// exposed for operational use.
func (h *Handler) HandleSweep(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	changed, err := h.service.SweepOverdue(ctx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, SweepResponse{TasksMarkedOverdue: changed})
}
