package handler

import (
	"strings"

	id "lekha/pkg/domain"
)

// UpsertProfileRequest is the HTTP request body for PUT /firm.
type UpsertProfileRequest struct {
	Name           string  `json:"name"`
	EntityType     string  `json:"entity_type"`
	GSTIN          string  `json:"gstin,omitempty"`
	PAN            string  `json:"pan,omitempty"`
	TAN            string  `json:"tan,omitempty"`
	EmployeeCount  int     `json:"employee_count"`
	AnnualTurnover float64 `json:"annual_turnover"`

	parsedEntityType id.EntityType
}

// Validate validates the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *UpsertProfileRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)

	entityType, err := id.ParseEntityType(strings.TrimSpace(r.EntityType))
	if err != nil {
		return err
	}
	r.parsedEntityType = entityType

	r.GSTIN = strings.ToUpper(strings.TrimSpace(r.GSTIN))
	r.PAN = strings.ToUpper(strings.TrimSpace(r.PAN))
	r.TAN = strings.ToUpper(strings.TrimSpace(r.TAN))
	return nil
}

// ParsedEntityType returns the entity type parsed during validation.
func (r *UpsertProfileRequest) ParsedEntityType() id.EntityType {
	return r.parsedEntityType
}
