//go:build integration

package postgres_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	id "lekha/pkg/domain"
	"lekha/pkg/platform/audit"
	"lekha/pkg/platform/audit/outbox"
	"lekha/pkg/platform/audit/store/postgres"
	"lekha/pkg/testutil/containers"
)

type fakeProducer struct {
	values [][]byte
	fail   bool
}

func (f *fakeProducer) Produce(_ context.Context, _ []byte, value []byte) error {
	if f.fail {
		return context.DeadlineExceeded
	}
	f.values = append(f.values, value)
	return nil
}

type AuditStorePostgresSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *postgres.Store
}

func TestAuditStorePostgresSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(AuditStorePostgresSuite))
}

func (s *AuditStorePostgresSuite) SetupSuite() {
	s.pg = containers.GetManager().GetPostgres(s.T())
	s.store = postgres.New(s.pg.DB)
}

func (s *AuditStorePostgresSuite) SetupTest() {
	s.Require().NoError(s.pg.TruncateTables(context.Background(), "audit_log", "audit_outbox"))
}

func (s *AuditStorePostgresSuite) newEntry(firmID id.FirmID, action audit.Action) audit.Entry {
	userID := id.NewUserID()
	return audit.Entry{
		ID:         id.NewEventID(),
		UserID:     userID,
		FirmID:     firmID,
		Action:     action,
		EntityType: audit.EntityTask,
		EntityID:   id.NewTaskID().String(),
		Details: map[string]any{
			"rule_id": "gstr1_monthly",
		},
		PerformedBy: userID.String(),
		Timestamp:   time.Now().UTC().Truncate(time.Microsecond),
	}
}

func (s *AuditStorePostgresSuite) TestAppendWritesLogAndOutbox() {
	ctx := context.Background()
	firmID := id.NewFirmID()

	entry := s.newEntry(firmID, audit.ActionTaskCreated)
	s.Require().NoError(s.store.Append(ctx, entry))

	entries, err := s.store.List(ctx, audit.Filter{FirmID: firmID.String()})
	s.Require().NoError(err)
	s.Require().Len(entries, 1)
	s.Equal(audit.ActionTaskCreated, entries[0].Action)
	s.Equal("gstr1_monthly", entries[0].Details["rule_id"])

	var pending int
	err = s.pg.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM audit_outbox WHERE published_at IS NULL`).Scan(&pending)
	s.Require().NoError(err)
	s.Equal(1, pending)
}

func (s *AuditStorePostgresSuite) TestListFiltersAndOrders() {
	ctx := context.Background()
	firmID := id.NewFirmID()

	first := s.newEntry(firmID, audit.ActionTaskCreated)
	second := s.newEntry(firmID, audit.ActionTaskStatusChanged)
	second.Timestamp = first.Timestamp.Add(time.Second)
	other := s.newEntry(id.NewFirmID(), audit.ActionTaskCreated)

	s.Require().NoError(s.store.Append(ctx, first))
	s.Require().NoError(s.store.Append(ctx, second))
	s.Require().NoError(s.store.Append(ctx, other))

	entries, err := s.store.List(ctx, audit.Filter{FirmID: firmID.String()})
	s.Require().NoError(err)
	s.Require().Len(entries, 2)
	s.Equal(audit.ActionTaskStatusChanged, entries[0].Action)

	entries, err = s.store.List(ctx, audit.Filter{
		FirmID: firmID.String(),
		Action: audit.ActionTaskCreated,
	})
	s.Require().NoError(err)
	s.Require().Len(entries, 1)
}

func (s *AuditStorePostgresSuite) TestRelayDrainPublishesAndMarks() {
	ctx := context.Background()
	firmID := id.NewFirmID()

	s.Require().NoError(s.store.Append(ctx, s.newEntry(firmID, audit.ActionTaskCreated)))
	s.Require().NoError(s.store.Append(ctx, s.newEntry(firmID, audit.ActionRiskDetected)))

	producer := &fakeProducer{}
	relay := outbox.NewRelay(s.pg.DB, producer, slog.Default(), time.Second, 10)

	published, err := relay.Drain(ctx)
	s.Require().NoError(err)
	s.Equal(2, published)
	s.Require().Len(producer.values, 2)

	var payload map[string]any
	s.Require().NoError(json.Unmarshal(producer.values[0], &payload))
	s.Equal(firmID.String(), payload["firm_id"])

	var pending int
	err = s.pg.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM audit_outbox WHERE published_at IS NULL`).Scan(&pending)
	s.Require().NoError(err)
	s.Zero(pending)

	// Second drain finds nothing new.
	published, err = relay.Drain(ctx)
	s.Require().NoError(err)
	s.Zero(published)
}

func (s *AuditStorePostgresSuite) TestRelayKeepsRowsOnProduceFailure() {
	ctx := context.Background()
	s.Require().NoError(s.store.Append(ctx, s.newEntry(id.NewFirmID(), audit.ActionTaskCreated)))

	relay := outbox.NewRelay(s.pg.DB, &fakeProducer{fail: true}, slog.Default(), time.Second, 10)

	published, err := relay.Drain(ctx)
	s.Require().Error(err)
	s.Zero(published)

	var pending int
	err = s.pg.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM audit_outbox WHERE published_at IS NULL`).Scan(&pending)
	s.Require().NoError(err)
	s.Equal(1, pending)
}
