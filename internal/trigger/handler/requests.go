package handler

import (
	"strings"

	id "lekha/pkg/domain"
	dErrors "lekha/pkg/domain-errors"
)

// ProcessEventRequest is the HTTP request body for POST /events.
type ProcessEventRequest struct {
	EventType string         `json:"event_type"`
	Payload   map[string]any `json:"payload"`

	parsedType id.SystemEventType
}

// Validate validates and parses the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *ProcessEventRequest) Validate() error {
	r.EventType = strings.TrimSpace(r.EventType)
	if r.EventType == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "event_type is required")
	}
	eventType, err := id.ParseSystemEventType(r.EventType)
	if err != nil {
		return err
	}
	if len(r.Payload) > 64 {
		return dErrors.New(dErrors.CodeInvalidInput, "payload must have at most 64 fields")
	}
	r.parsedType = eventType
	return nil
}

func (r *ProcessEventRequest) ParsedType() id.SystemEventType { return r.parsedType }

// PayloadEventRequest is the HTTP request body for the named event routes
// that carry business facts (payroll, invoice).
type PayloadEventRequest struct {
	Payload map[string]any `json:"payload"`
}

// Validate validates the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *PayloadEventRequest) Validate() error {
	if len(r.Payload) > 64 {
		return dErrors.New(dErrors.CodeInvalidInput, "payload must have at most 64 fields")
	}
	return nil
}

// EmployeeCountRequest is the HTTP request body for POST /events/employee-count.
type EmployeeCountRequest struct {
	EmployeeCount int `json:"employee_count"`
}

// Validate validates the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *EmployeeCountRequest) Validate() error {
	if r.EmployeeCount < 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "employee_count cannot be negative")
	}
	return nil
}
