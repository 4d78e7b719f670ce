//go:build integration

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"lekha/internal/trigger"
	"lekha/internal/trigger/store/postgres"
	id "lekha/pkg/domain"
	"lekha/pkg/platform/sentinel"
	"lekha/pkg/testutil/containers"
)

type EventStorePostgresSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *postgres.Store
}

func TestEventStorePostgresSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(EventStorePostgresSuite))
}

func (s *EventStorePostgresSuite) SetupSuite() {
	s.pg = containers.GetManager().GetPostgres(s.T())
	s.store = postgres.New(s.pg.DB)
}

func (s *EventStorePostgresSuite) SetupTest() {
	s.Require().NoError(s.pg.TruncateTables(context.Background(), "compliance_events"))
}

func (s *EventStorePostgresSuite) newEvent(firmID id.FirmID) *trigger.ComplianceEvent {
	return &trigger.ComplianceEvent{
		ID:     id.NewEventID(),
		UserID: id.NewUserID(),
		FirmID: firmID,
		Type:   id.EventMonthEnd,
		Payload: map[string]any{
			"period": "2024-02",
		},
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
}

func (s *EventStorePostgresSuite) TestCreateGetRoundTrip() {
	ctx := context.Background()
	event := s.newEvent(id.NewFirmID())

	s.Require().NoError(s.store.Create(ctx, event))

	got, err := s.store.Get(ctx, event.ID)
	s.Require().NoError(err)
	s.Equal(id.EventMonthEnd, got.Type)
	s.Equal("2024-02", got.Payload["period"])
	s.False(got.Processed)
	s.Nil(got.ProcessedAt)
}

func (s *EventStorePostgresSuite) TestMarkProcessed() {
	ctx := context.Background()
	event := s.newEvent(id.NewFirmID())
	s.Require().NoError(s.store.Create(ctx, event))

	at := time.Now().UTC().Truncate(time.Microsecond)
	s.Require().NoError(s.store.MarkProcessed(ctx, event.ID, at))

	got, err := s.store.Get(ctx, event.ID)
	s.Require().NoError(err)
	s.True(got.Processed)
	s.Require().NotNil(got.ProcessedAt)
	s.True(got.ProcessedAt.Equal(at))
}

func (s *EventStorePostgresSuite) TestMarkProcessedUnknownEvent() {
	err := s.store.MarkProcessed(context.Background(), id.NewEventID(), time.Now())
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *EventStorePostgresSuite) TestListByFirmNewestFirst() {
	ctx := context.Background()
	firmID := id.NewFirmID()

	older := s.newEvent(firmID)
	newer := s.newEvent(firmID)
	newer.CreatedAt = older.CreatedAt.Add(time.Minute)
	s.Require().NoError(s.store.Create(ctx, older))
	s.Require().NoError(s.store.Create(ctx, newer))
	s.Require().NoError(s.store.Create(ctx, s.newEvent(id.NewFirmID())))

	events, err := s.store.ListByFirm(ctx, firmID, 10)
	s.Require().NoError(err)
	s.Require().Len(events, 2)
	s.Equal(newer.ID, events[0].ID)

	limited, err := s.store.ListByFirm(ctx, firmID, 1)
	s.Require().NoError(err)
	s.Len(limited, 1)
}
