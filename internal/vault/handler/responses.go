package handler

import (
	"time"

	"lekha/internal/vault"
)

// DocumentResponse is the HTTP representation of a vault document.
type DocumentResponse struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	DocumentType string   `json:"document_type"`
	ContentType  string   `json:"content_type,omitempty"`
	SizeBytes    int64    `json:"size_bytes"`
	StorageRef   string   `json:"storage_ref,omitempty"`
	Tags         []string `json:"tags,omitempty"`
	TaskID       string   `json:"task_id,omitempty"`
	UploadedAt   string   `json:"uploaded_at"`
	UpdatedAt    string   `json:"updated_at"`
}

// FromDocument converts a domain document to its HTTP representation.
func FromDocument(d *vault.Document) DocumentResponse {
	resp := DocumentResponse{
		ID:           d.ID.String(),
		Name:         d.Name,
		DocumentType: d.DocumentType,
		ContentType:  d.ContentType,
		SizeBytes:    d.SizeBytes,
		StorageRef:   d.StorageRef,
		Tags:         d.Tags,
		UploadedAt:   d.UploadedAt.Format(time.RFC3339),
		UpdatedAt:    d.UpdatedAt.Format(time.RFC3339),
	}
	if d.TaskID != nil {
		resp.TaskID = d.TaskID.String()
	}
	return resp
}

// FromDocuments converts a list of documents.
func FromDocuments(docs []*vault.Document) []DocumentResponse {
	out := make([]DocumentResponse, 0, len(docs))
	for _, d := range docs {
		out = append(out, FromDocument(d))
	}
	return out
}
