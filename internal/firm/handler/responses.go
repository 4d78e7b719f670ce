package handler

import (
	"time"

	"lekha/internal/firm"
)

// ProfileResponse is the HTTP representation of a firm profile.
type ProfileResponse struct {
	ID             string  `json:"id"`
	OwnerID        string  `json:"owner_id"`
	Name           string  `json:"name"`
	EntityType     string  `json:"entity_type"`
	GSTIN          string  `json:"gstin,omitempty"`
	PAN            string  `json:"pan,omitempty"`
	TAN            string  `json:"tan,omitempty"`
	EmployeeCount  int     `json:"employee_count"`
	AnnualTurnover float64 `json:"annual_turnover"`
	GSTRegistered  bool    `json:"gst_registered"`
	RegisteredAt   string  `json:"registered_at"`
	UpdatedAt      string  `json:"updated_at"`
}

// FromProfile converts a domain profile to its HTTP representation.
func FromProfile(p *firm.Profile) ProfileResponse {
	return ProfileResponse{
		ID:             p.ID.String(),
		OwnerID:        p.OwnerID.String(),
		Name:           p.Name,
		EntityType:     p.EntityType.String(),
		GSTIN:          p.GSTIN,
		PAN:            p.PAN,
		TAN:            p.TAN,
		EmployeeCount:  p.EmployeeCount,
		AnnualTurnover: p.AnnualTurnover,
		GSTRegistered:  p.GSTRegistered(),
		RegisteredAt:   p.RegisteredAt.Format(time.RFC3339),
		UpdatedAt:      p.UpdatedAt.Format(time.RFC3339),
	}
}
