package handler

import (
	"strings"

	"lekha/internal/tasks"
	id "lekha/pkg/domain"
	dErrors "lekha/pkg/domain-errors"
)

// TransitionRequest is the HTTP request body for POST /tasks/{taskID}/status.
type TransitionRequest struct {
	Status string `json:"status"`

	parsedStatus tasks.Status
}

// Validate validates and parses the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *TransitionRequest) Validate() error {
	r.Status = strings.TrimSpace(r.Status)
	if r.Status == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "status is required")
	}
	status := tasks.Status(r.Status)
	if !status.IsValid() {
		return dErrors.Newf(dErrors.CodeInvalidInput, "unknown status %q", r.Status)
	}
	r.parsedStatus = status
	return nil
}

func (r *TransitionRequest) ParsedStatus() tasks.Status { return r.parsedStatus }

// Assignment roles accepted by POST /tasks/{taskID}/assign.
const (
	RoleAssociate  = "associate"
	RoleCAReviewer = "ca_reviewer"
)

// AssignRequest is the HTTP request body for POST /tasks/{taskID}/assign.
type AssignRequest struct {
	Role   string `json:"role"`
	UserID string `json:"user_id"`

	parsedAssignee id.UserID
}

// Validate validates and parses the request.
func (r *AssignRequest) Validate() error {
	r.Role = strings.TrimSpace(r.Role)
	if r.Role != RoleAssociate && r.Role != RoleCAReviewer {
		return dErrors.Newf(dErrors.CodeInvalidInput, "role must be %q or %q", RoleAssociate, RoleCAReviewer)
	}
	assignee, err := id.ParseUserID(strings.TrimSpace(r.UserID))
	if err != nil {
		return dErrors.New(dErrors.CodeInvalidInput, "user_id must be a valid UUID")
	}
	r.parsedAssignee = assignee
	return nil
}

func (r *AssignRequest) ParsedAssignee() id.UserID { return r.parsedAssignee }

// LinkDocumentRequest is the HTTP request body for POST /tasks/{taskID}/documents.
type LinkDocumentRequest struct {
	DocumentType string `json:"document_type"`
	DocumentID   string `json:"document_id"`

	parsedDocumentID id.DocumentID
}

// Validate validates and parses the request.
func (r *LinkDocumentRequest) Validate() error {
	r.DocumentType = strings.TrimSpace(r.DocumentType)
	if r.DocumentType == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "document_type is required")
	}
	docID, err := id.ParseDocumentID(strings.TrimSpace(r.DocumentID))
	if err != nil {
		return dErrors.New(dErrors.CodeInvalidInput, "document_id must be a valid UUID")
	}
	r.parsedDocumentID = docID
	return nil
}

func (r *LinkDocumentRequest) ParsedDocumentID() id.DocumentID { return r.parsedDocumentID }

// RecordFilingRequest is the HTTP request body for POST /tasks/{taskID}/filing.
type RecordFilingRequest struct {
	Reference          string `json:"reference"`
	Period             string `json:"period"`
	PortalSubmissionID string `json:"portal_submission_id"`
}

// Validate validates the request.
func (r *RecordFilingRequest) Validate() error {
	r.Reference = strings.TrimSpace(r.Reference)
	if r.Reference == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "reference is required")
	}
	if len(r.Reference) > 64 {
		return dErrors.New(dErrors.CodeInvalidInput, "reference must be at most 64 characters")
	}
	return nil
}
