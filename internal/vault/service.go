package vault

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"lekha/internal/tasks"
	id "lekha/pkg/domain"
	dErrors "lekha/pkg/domain-errors"
	"lekha/pkg/platform/audit"
	"lekha/pkg/platform/sentinel"
	pstrings "lekha/pkg/platform/strings"
	"lekha/pkg/requestcontext"
)

// TaskLinker attaches a vault document to a compliance task's document slot.
type TaskLinker interface {
	LinkDocument(ctx context.Context, taskID id.TaskID, documentType string, docID id.DocumentID, performedBy string) (*tasks.Instance, error)
}

// AuditPort appends entries to the audit trail.
type AuditPort interface {
	Append(ctx context.Context, entry audit.Entry) error
}

const maxTagsPerDocument = 16

// Service maintains document metadata and bridges vault documents onto
// compliance tasks. File content never passes through here.
type Service struct {
	store   Store
	linker  TaskLinker
	auditor AuditPort
	logger  *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func New(store Store, linker TaskLinker, auditor AuditPort, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("document store is required")
	}
	if linker == nil {
		return nil, fmt.Errorf("task linker is required")
	}
	if auditor == nil {
		return nil, fmt.Errorf("audit writer is required")
	}
	s := &Service{store: store, linker: linker, auditor: auditor, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// RegisterInput describes a document whose bytes already live elsewhere.
type RegisterInput struct {
	UserID       id.UserID
	FirmID       id.FirmID
	Name         string
	DocumentType string
	ContentType  string
	SizeBytes    int64
	StorageRef   string
	Tags         []string
}

// Register records metadata for an uploaded document.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*Document, error) {
	if input.FirmID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "firm id is required")
	}
	if input.Name == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "document name is required")
	}
	if input.DocumentType == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "document type is required")
	}
	if input.SizeBytes < 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "size cannot be negative")
	}
	if len(input.Tags) > maxTagsPerDocument {
		return nil, dErrors.Newf(dErrors.CodeInvalidInput, "at most %d tags per document", maxTagsPerDocument)
	}

	now := requestcontext.Now(ctx)
	doc := &Document{
		ID:           id.NewDocumentID(),
		UserID:       input.UserID,
		FirmID:       input.FirmID,
		Name:         input.Name,
		DocumentType: input.DocumentType,
		ContentType:  input.ContentType,
		SizeBytes:    input.SizeBytes,
		StorageRef:   input.StorageRef,
		Tags:         pstrings.DedupeAndTrim(input.Tags),
		UploadedAt:   now,
		UpdatedAt:    now,
	}

	if err := s.store.Create(ctx, doc); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store document metadata")
	}

	entry := audit.Entry{
		UserID:     input.UserID,
		FirmID:     input.FirmID,
		Action:     audit.ActionDocumentUploaded,
		EntityType: audit.EntityDocument,
		EntityID:   doc.ID.String(),
		Details: map[string]any{
			"name":          doc.Name,
			"document_type": doc.DocumentType,
			"size_bytes":    doc.SizeBytes,
		},
		PerformedBy: input.UserID.String(),
		Timestamp:   now,
	}
	if err := s.auditor.Append(ctx, entry); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to audit document registration")
	}

	return doc, nil
}

// Get returns one document's metadata.
func (s *Service) Get(ctx context.Context, docID id.DocumentID) (*Document, error) {
	doc, err := s.store.Get(ctx, docID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "document not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load document")
	}
	return doc, nil
}

// ListByFirm returns the firm's documents, newest first.
func (s *Service) ListByFirm(ctx context.Context, firmID id.FirmID, filter ListFilter) ([]*Document, error) {
	docs, err := s.store.ListByFirm(ctx, firmID, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list documents")
	}
	return docs, nil
}

// Tag adds tags to a document. Tags already present are ignored.
func (s *Service) Tag(ctx context.Context, docID id.DocumentID, tags []string, performedBy string) (*Document, error) {
	if len(tags) == 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "at least one tag is required")
	}

	doc, err := s.Get(ctx, docID)
	if err != nil {
		return nil, err
	}

	var added []string
	for _, tag := range pstrings.DedupeAndTrim(tags) {
		if tag == "" || doc.HasTag(tag) {
			continue
		}
		doc.Tags = append(doc.Tags, tag)
		added = append(added, tag)
	}
	if len(doc.Tags) > maxTagsPerDocument {
		return nil, dErrors.Newf(dErrors.CodeInvalidInput, "at most %d tags per document", maxTagsPerDocument)
	}
	if len(added) == 0 {
		return doc, nil
	}

	now := requestcontext.Now(ctx)
	doc.UpdatedAt = now
	if err := s.store.Update(ctx, doc); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update document")
	}

	entry := audit.Entry{
		UserID:     doc.UserID,
		FirmID:     doc.FirmID,
		Action:     audit.ActionDocumentTagged,
		EntityType: audit.EntityDocument,
		EntityID:   doc.ID.String(),
		Details: map[string]any{
			"tags_added": added,
		},
		PerformedBy: performedBy,
		Timestamp:   now,
	}
	if err := s.auditor.Append(ctx, entry); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to audit document tagging")
	}

	return doc, nil
}

// AttachToTask links the document to a task's matching document slot and
// records the link on the document. The task side writes its own audit entry.
func (s *Service) AttachToTask(ctx context.Context, docID id.DocumentID, taskID id.TaskID, performedBy string) (*Document, error) {
	doc, err := s.Get(ctx, docID)
	if err != nil {
		return nil, err
	}
	if doc.TaskID != nil {
		return nil, dErrors.New(dErrors.CodeConflict, "document is already attached to a task")
	}

	if _, err := s.linker.LinkDocument(ctx, taskID, doc.DocumentType, doc.ID, performedBy); err != nil {
		return nil, err
	}

	doc.TaskID = &taskID
	doc.UpdatedAt = requestcontext.Now(ctx)
	if err := s.store.Update(ctx, doc); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update document")
	}

	s.logger.InfoContext(ctx, "document attached to task",
		"document_id", doc.ID.String(),
		"task_id", taskID.String(),
	)
	return doc, nil
}

