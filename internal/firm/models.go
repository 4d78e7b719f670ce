// Package firm holds the firm profile read model the trigger and eligibility
// services consult: entity type, registrations, and headcount/turnover facts.
package firm

import (
	"time"

	id "lekha/pkg/domain"
)

// Profile is what the compliance engine knows about a firm.
type Profile struct {
	ID         id.FirmID
	OwnerID    id.UserID
	Name       string
	EntityType id.EntityType

	GSTIN string
	PAN   string
	TAN   string

	EmployeeCount  int
	AnnualTurnover float64

	RegisteredAt time.Time
	UpdatedAt    time.Time
}

// GSTRegistered reports whether the firm carries a GST registration.
func (p *Profile) GSTRegistered() bool {
	return p.GSTIN != ""
}
