package handler

import (
	"time"

	"lekha/internal/tasks"
)

// TaskResponse is the HTTP representation of a task instance.
type TaskResponse struct {
	ID               string             `json:"id"`
	FirmID           string             `json:"firm_id"`
	RuleID           string             `json:"rule_id"`
	EventID          string             `json:"event_id"`
	Name             string             `json:"name"`
	Description      string             `json:"description,omitempty"`
	Category         string             `json:"category"`
	Frequency        string             `json:"frequency"`
	DueDate          string             `json:"due_date"`
	Priority         string             `json:"priority"`
	Status           string             `json:"status"`
	RequiresCAReview bool               `json:"requires_ca_review"`
	Associate        string             `json:"associate,omitempty"`
	CAReviewer       string             `json:"ca_reviewer,omitempty"`
	Documents        []DocumentResponse `json:"documents"`
	Filing           *FilingResponse    `json:"filing,omitempty"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
	CompletedAt      *time.Time         `json:"completed_at,omitempty"`
	FiledAt          *time.Time         `json:"filed_at,omitempty"`
}

// DocumentResponse is one required-document slot on a task.
type DocumentResponse struct {
	DocumentType string     `json:"document_type"`
	Mandatory    bool       `json:"mandatory"`
	DocumentID   string     `json:"document_id,omitempty"`
	Uploaded     bool       `json:"uploaded"`
	UploadedAt   *time.Time `json:"uploaded_at,omitempty"`
}

// FilingResponse is the filing portion of the response.
type FilingResponse struct {
	Reference          string `json:"reference"`
	Period             string `json:"period,omitempty"`
	PortalSubmissionID string `json:"portal_submission_id,omitempty"`
}

// SweepResponse is the HTTP response for POST /tasks/sweep.
type SweepResponse struct {
	TasksMarkedOverdue int `json:"tasks_marked_overdue"`
}

// FromInstance converts a domain task to an HTTP response.
func FromInstance(task *tasks.Instance) *TaskResponse {
	resp := &TaskResponse{
		ID:               task.ID.String(),
		FirmID:           task.FirmID.String(),
		RuleID:           task.RuleID.String(),
		EventID:          task.EventID.String(),
		Name:             task.Name,
		Description:      task.Description,
		Category:         task.Category,
		Frequency:        task.Frequency.String(),
		DueDate:          task.DueDate.Format("2006-01-02"),
		Priority:         task.Priority.String(),
		Status:           task.Status.String(),
		RequiresCAReview: task.RequiresCAReview,
		Documents:        make([]DocumentResponse, 0, len(task.Documents)),
		CreatedAt:        task.CreatedAt,
		UpdatedAt:        task.UpdatedAt,
		CompletedAt:      task.CompletedAt,
		FiledAt:          task.FiledAt,
	}
	if !task.Associate.IsNil() {
		resp.Associate = task.Associate.String()
	}
	if !task.CAReviewer.IsNil() {
		resp.CAReviewer = task.CAReviewer.String()
	}
	for _, slot := range task.Documents {
		doc := DocumentResponse{
			DocumentType: slot.DocumentType,
			Mandatory:    slot.Mandatory,
			Uploaded:     slot.Uploaded,
			UploadedAt:   slot.UploadedAt,
		}
		if !slot.DocumentID.IsNil() {
			doc.DocumentID = slot.DocumentID.String()
		}
		resp.Documents = append(resp.Documents, doc)
	}
	if task.Filing != nil {
		resp.Filing = &FilingResponse{
			Reference:          task.Filing.Reference,
			Period:             task.Filing.Period,
			PortalSubmissionID: task.Filing.PortalSubmissionID,
		}
	}
	return resp
}

// FromInstances converts a list of tasks.
func FromInstances(list []*tasks.Instance) []*TaskResponse {
	out := make([]*TaskResponse, 0, len(list))
	for _, task := range list {
		out = append(out, FromInstance(task))
	}
	return out
}
