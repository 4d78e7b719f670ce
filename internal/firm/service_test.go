package firm_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"lekha/internal/firm"
	firmStore "lekha/internal/firm/store/memory"
	id "lekha/pkg/domain"
	dErrors "lekha/pkg/domain-errors"
	"lekha/pkg/platform/audit"
	auditStore "lekha/pkg/platform/audit/store/memory"
	"lekha/pkg/requestcontext"
)

// ============================================================
// Firm Service Suite
// ============================================================

type FirmServiceSuite struct {
	suite.Suite
	store      *firmStore.InMemoryStore
	auditStore *auditStore.InMemoryStore
	service    *firm.Service

	userID id.UserID
	firmID id.FirmID
}

func TestFirmServiceSuite(t *testing.T) {
	suite.Run(t, new(FirmServiceSuite))
}

func (s *FirmServiceSuite) SetupTest() {
	s.store = firmStore.NewInMemoryStore()
	s.auditStore = auditStore.NewInMemoryStore()

	writer, err := audit.NewWriter(s.auditStore)
	s.Require().NoError(err)

	s.service, err = firm.New(s.store, writer)
	s.Require().NoError(err)

	s.userID = id.NewUserID()
	s.firmID = id.NewFirmID()
}

func (s *FirmServiceSuite) validInput() firm.UpsertInput {
	return firm.UpsertInput{
		Name:           "Sharma & Associates",
		EntityType:     id.EntityPrivateLimited,
		GSTIN:          "27AAPFU0939F1ZV",
		PAN:            "AAPFU0939F",
		TAN:            "MUMS12345A",
		EmployeeCount:  12,
		AnnualTurnover: 85_00_000,
	}
}

func (s *FirmServiceSuite) TestConstructorRequiresDependencies() {
	writer, err := audit.NewWriter(s.auditStore)
	s.Require().NoError(err)

	_, err = firm.New(nil, writer)
	s.Require().ErrorContains(err, "firm store is required")

	_, err = firm.New(s.store, nil)
	s.Require().ErrorContains(err, "audit writer is required")
}

func (s *FirmServiceSuite) TestUpsertCreatesProfile() {
	now := time.Date(2024, 4, 1, 10, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), now)

	profile, err := s.service.Upsert(ctx, s.userID, s.firmID, s.validInput())
	s.Require().NoError(err)
	s.Equal(s.firmID, profile.ID)
	s.Equal(s.userID, profile.OwnerID)
	s.Equal(now, profile.RegisteredAt)
	s.True(profile.GSTRegistered())

	entries, err := s.auditStore.List(ctx, audit.Filter{
		FirmID: s.firmID.String(),
		Action: audit.ActionFirmProfileUpdated,
	})
	s.Require().NoError(err)
	s.Require().Len(entries, 1)
	s.Equal(audit.EntityFirm, entries[0].EntityType)
	s.Equal(true, entries[0].Details["gst_registered"])
}

func (s *FirmServiceSuite) TestUpsertPreservesRegisteredAt() {
	first := time.Date(2024, 4, 1, 10, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), first)
	_, err := s.service.Upsert(ctx, s.userID, s.firmID, s.validInput())
	s.Require().NoError(err)

	later := first.AddDate(0, 2, 0)
	ctx = requestcontext.WithTime(context.Background(), later)
	input := s.validInput()
	input.EmployeeCount = 25

	profile, err := s.service.Upsert(ctx, s.userID, s.firmID, input)
	s.Require().NoError(err)
	s.Equal(first, profile.RegisteredAt)
	s.Equal(later, profile.UpdatedAt)
	s.Equal(25, profile.EmployeeCount)
}

func (s *FirmServiceSuite) TestUpsertValidation() {
	cases := []struct {
		name   string
		mutate func(*firm.UpsertInput)
	}{
		{"missing name", func(in *firm.UpsertInput) { in.Name = "" }},
		{"bad entity type", func(in *firm.UpsertInput) { in.EntityType = "trust" }},
		{"negative employees", func(in *firm.UpsertInput) { in.EmployeeCount = -1 }},
		{"negative turnover", func(in *firm.UpsertInput) { in.AnnualTurnover = -1 }},
		{"malformed gstin", func(in *firm.UpsertInput) { in.GSTIN = "NOT-A-GSTIN" }},
		{"malformed pan", func(in *firm.UpsertInput) { in.PAN = "12345" }},
		{"malformed tan", func(in *firm.UpsertInput) { in.TAN = "XYZ" }},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			input := s.validInput()
			tc.mutate(&input)

			_, err := s.service.Upsert(context.Background(), s.userID, s.firmID, input)
			s.Require().Error(err)
			s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
		})
	}
}

func (s *FirmServiceSuite) TestGetUnknownFirm() {
	_, err := s.service.Get(context.Background(), id.NewFirmID())
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}
