// Package domain holds the typed identifiers and domain primitives shared
// across the engine. IDs are distinct UUID wrapper types so the compiler
// rejects cross-type assignment; construct them via the ParseX functions at
// trust boundaries.
package domain

import (
	"github.com/google/uuid"

	dErrors "lekha/pkg/domain-errors"
)

// Typed identifiers. FirmID identifies the business entity an obligation
// belongs to; UserID identifies the account acting on it.
type (
	UserID           uuid.UUID
	FirmID           uuid.UUID
	EventID          uuid.UUID
	TaskID           uuid.UUID
	RiskID           uuid.UUID
	RecommendationID uuid.UUID
	DocumentID       uuid.UUID
)

// RuleID identifies a rule in the static catalog. Unlike the UUID types it is
// authored by hand in configuration (e.g. "gstr1_monthly"), so it stays a
// plain string.
type RuleID string

func parseUUID(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id cannot be empty")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid id format")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id cannot be nil")
	}
	return u, nil
}

func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID(s)
	return UserID(u), err
}

func ParseFirmID(s string) (FirmID, error) {
	u, err := parseUUID(s)
	return FirmID(u), err
}

func ParseEventID(s string) (EventID, error) {
	u, err := parseUUID(s)
	return EventID(u), err
}

func ParseTaskID(s string) (TaskID, error) {
	u, err := parseUUID(s)
	return TaskID(u), err
}

func ParseRiskID(s string) (RiskID, error) {
	u, err := parseUUID(s)
	return RiskID(u), err
}

func ParseRecommendationID(s string) (RecommendationID, error) {
	u, err := parseUUID(s)
	return RecommendationID(u), err
}

func ParseDocumentID(s string) (DocumentID, error) {
	u, err := parseUUID(s)
	return DocumentID(u), err
}

func NewUserID() UserID                     { return UserID(uuid.New()) }
func NewFirmID() FirmID                     { return FirmID(uuid.New()) }
func NewEventID() EventID                   { return EventID(uuid.New()) }
func NewTaskID() TaskID                     { return TaskID(uuid.New()) }
func NewRiskID() RiskID                     { return RiskID(uuid.New()) }
func NewRecommendationID() RecommendationID { return RecommendationID(uuid.New()) }
func NewDocumentID() DocumentID             { return DocumentID(uuid.New()) }

func (id UserID) String() string           { return uuid.UUID(id).String() }
func (id FirmID) String() string           { return uuid.UUID(id).String() }
func (id EventID) String() string          { return uuid.UUID(id).String() }
func (id TaskID) String() string           { return uuid.UUID(id).String() }
func (id RiskID) String() string           { return uuid.UUID(id).String() }
func (id RecommendationID) String() string { return uuid.UUID(id).String() }
func (id DocumentID) String() string       { return uuid.UUID(id).String() }
func (id RuleID) String() string           { return string(id) }

func (id UserID) IsNil() bool           { return uuid.UUID(id) == uuid.Nil }
func (id FirmID) IsNil() bool           { return uuid.UUID(id) == uuid.Nil }
func (id EventID) IsNil() bool          { return uuid.UUID(id) == uuid.Nil }
func (id TaskID) IsNil() bool           { return uuid.UUID(id) == uuid.Nil }
func (id RiskID) IsNil() bool           { return uuid.UUID(id) == uuid.Nil }
func (id RecommendationID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id DocumentID) IsNil() bool       { return uuid.UUID(id) == uuid.Nil }
