package handler

import (
	"strings"

	id "lekha/pkg/domain"
	dErrors "lekha/pkg/domain-errors"
)

// RegisterDocumentRequest is the HTTP request body for POST /documents.
type RegisterDocumentRequest struct {
	Name         string   `json:"name"`
	DocumentType string   `json:"document_type"`
	ContentType  string   `json:"content_type,omitempty"`
	SizeBytes    int64    `json:"size_bytes,omitempty"`
	StorageRef   string   `json:"storage_ref,omitempty"`
	Tags         []string `json:"tags,omitempty"`
}

// Validate validates the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *RegisterDocumentRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "name is required")
	}
	r.DocumentType = strings.TrimSpace(r.DocumentType)
	if r.DocumentType == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "document_type is required")
	}
	return nil
}

// TagDocumentRequest is the HTTP request body for
// POST /documents/{documentID}/tags.
type TagDocumentRequest struct {
	Tags []string `json:"tags"`
}

// Validate validates the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *TagDocumentRequest) Validate() error {
	if len(r.Tags) == 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "tags are required")
	}
	return nil
}

// AttachDocumentRequest is the HTTP request body for
// POST /documents/{documentID}/attach.
type AttachDocumentRequest struct {
	TaskID string `json:"task_id"`

	parsedTaskID id.TaskID
}

// Validate validates the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *AttachDocumentRequest) Validate() error {
	taskID, err := id.ParseTaskID(strings.TrimSpace(r.TaskID))
	if err != nil {
		return dErrors.New(dErrors.CodeInvalidInput, "task_id must be a valid UUID")
	}
	r.parsedTaskID = taskID
	return nil
}

// ParsedTaskID returns the task ID parsed during validation.
func (r *AttachDocumentRequest) ParsedTaskID() id.TaskID {
	return r.parsedTaskID
}
