package handler

import (
	"time"

	"lekha/pkg/platform/audit"
)

// EntryResponse is the HTTP representation of one audit entry.
type EntryResponse struct {
	ID          string         `json:"id"`
	UserID      string         `json:"user_id"`
	FirmID      string         `json:"firm_id"`
	Action      string         `json:"action"`
	EntityType  string         `json:"entity_type"`
	EntityID    string         `json:"entity_id"`
	Details     map[string]any `json:"details,omitempty"`
	PerformedBy string         `json:"performed_by"`
	Timestamp   string         `json:"timestamp"`
}

// FromEntry converts a domain entry to its HTTP representation.
func FromEntry(e audit.Entry) EntryResponse {
	return EntryResponse{
		ID:          e.ID.String(),
		UserID:      e.UserID.String(),
		FirmID:      e.FirmID.String(),
		Action:      string(e.Action),
		EntityType:  string(e.EntityType),
		EntityID:    e.EntityID,
		Details:     e.Details,
		PerformedBy: e.PerformedBy,
		Timestamp:   e.Timestamp.Format(time.RFC3339),
	}
}

// FromEntries converts a list of entries.
func FromEntries(entries []audit.Entry) []EntryResponse {
	out := make([]EntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, FromEntry(e))
	}
	return out
}
