package domain

import dErrors "lekha/pkg/domain-errors"

// EntityType is the legal/organizational form of a business. Rules scope
// their applicability by entity type.
//
// Usage: construct via ParseEntityType at trust boundaries to enforce the
// allowlist; direct casting bypasses validation.
type EntityType string

const (
	EntityProprietorship   EntityType = "proprietorship"
	EntityPartnership      EntityType = "partnership"
	EntityLLP              EntityType = "llp"
	EntityPrivateLimited   EntityType = "private_limited"
	EntityPublicLimited    EntityType = "public_limited"
	EntityOnePersonCompany EntityType = "one_person_company"
)

// validEntityTypes is the single source of truth for supported entity types.
var validEntityTypes = map[EntityType]bool{
	EntityProprietorship:   true,
	EntityPartnership:      true,
	EntityLLP:              true,
	EntityPrivateLimited:   true,
	EntityPublicLimited:    true,
	EntityOnePersonCompany: true,
}

// ParseEntityType constructs an EntityType from external input.
//
// Errors: returns CodeInvalidInput when the value is empty or unsupported.
func ParseEntityType(s string) (EntityType, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "entity type cannot be empty")
	}
	e := EntityType(s)
	if !e.IsValid() {
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "unsupported entity type %q", s)
	}
	return e, nil
}

// IsValid checks if the entity type is one of the supported enum values.
func (e EntityType) IsValid() bool {
	return validEntityTypes[e]
}

func (e EntityType) String() string {
	return string(e)
}

// IsCorporate reports whether the entity is registered with the MCA and
// carries company-law obligations.
func (e EntityType) IsCorporate() bool {
	switch e {
	case EntityPrivateLimited, EntityPublicLimited, EntityOnePersonCompany:
		return true
	}
	return false
}
