package handler

import (
	"strings"

	dErrors "lekha/pkg/domain-errors"
)

// SetStatusRequest is the HTTP request body for
// POST /recommendations/{recommendationID}/status.
type SetStatusRequest struct {
	Status string `json:"status"`
}

// Validate validates the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *SetStatusRequest) Validate() error {
	r.Status = strings.TrimSpace(r.Status)
	if r.Status == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "status is required")
	}
	return nil
}
