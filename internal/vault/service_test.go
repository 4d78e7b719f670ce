package vault_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"lekha/internal/tasks"
	taskStore "lekha/internal/tasks/store/memory"
	"lekha/internal/vault"
	vaultStore "lekha/internal/vault/store/memory"
	id "lekha/pkg/domain"
	dErrors "lekha/pkg/domain-errors"
	"lekha/pkg/platform/audit"
	auditStore "lekha/pkg/platform/audit/store/memory"
	"lekha/pkg/requestcontext"
)

// ============================================================
// Vault Service Suite
// ============================================================

type VaultServiceSuite struct {
	suite.Suite
	store      *vaultStore.InMemoryStore
	tasks      *tasks.Service
	taskStore  *taskStore.InMemoryStore
	auditStore *auditStore.InMemoryStore
	service    *vault.Service

	ctx    context.Context
	now    time.Time
	userID id.UserID
	firmID id.FirmID
}

func TestVaultServiceSuite(t *testing.T) {
	suite.Run(t, new(VaultServiceSuite))
}

func (s *VaultServiceSuite) SetupTest() {
	s.store = vaultStore.NewInMemoryStore()
	s.taskStore = taskStore.NewInMemoryStore()
	s.auditStore = auditStore.NewInMemoryStore()

	writer, err := audit.NewWriter(s.auditStore)
	s.Require().NoError(err)

	s.tasks, err = tasks.New(s.taskStore, writer)
	s.Require().NoError(err)

	s.service, err = vault.New(s.store, s.tasks, writer)
	s.Require().NoError(err)

	s.now = time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
	s.userID = id.NewUserID()
	s.firmID = id.NewFirmID()
}

func (s *VaultServiceSuite) register(docType string, tags ...string) *vault.Document {
	doc, err := s.service.Register(s.ctx, vault.RegisterInput{
		UserID:       s.userID,
		FirmID:       s.firmID,
		Name:         "gstr1-march.pdf",
		DocumentType: docType,
		ContentType:  "application/pdf",
		SizeBytes:    2048,
		StorageRef:   "s3://vault/gstr1-march.pdf",
		Tags:         tags,
	})
	s.Require().NoError(err)
	return doc
}

func (s *VaultServiceSuite) TestRegisterRecordsMetadataAndAudit() {
	doc := s.register("sales_register", "gst", "fy24")

	s.False(doc.ID.IsNil())
	s.Equal(s.now, doc.UploadedAt)
	s.Equal([]string{"gst", "fy24"}, doc.Tags)

	entries, err := s.auditStore.List(s.ctx, audit.Filter{
		FirmID: s.firmID.String(),
		Action: audit.ActionDocumentUploaded,
	})
	s.Require().NoError(err)
	s.Require().Len(entries, 1)
	s.Equal(doc.ID.String(), entries[0].EntityID)
	s.Equal("sales_register", entries[0].Details["document_type"])
}

func (s *VaultServiceSuite) TestRegisterValidation() {
	_, err := s.service.Register(s.ctx, vault.RegisterInput{
		UserID: s.userID,
		FirmID: s.firmID,
		Name:   "orphan.pdf",
	})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func (s *VaultServiceSuite) TestTagAddsOnlyNewTags() {
	doc := s.register("sales_register", "gst")

	tagged, err := s.service.Tag(s.ctx, doc.ID, []string{"gst", "march", "march"}, s.userID.String())
	s.Require().NoError(err)
	s.Equal([]string{"gst", "march"}, tagged.Tags)

	entries, err := s.auditStore.List(s.ctx, audit.Filter{
		EntityID: doc.ID.String(),
		Action:   audit.ActionDocumentTagged,
	})
	s.Require().NoError(err)
	s.Require().Len(entries, 1)
	s.Equal([]string{"march"}, entries[0].Details["tags_added"])
}

func (s *VaultServiceSuite) TestTagNoChangeWritesNoAudit() {
	doc := s.register("sales_register", "gst")

	_, err := s.service.Tag(s.ctx, doc.ID, []string{"gst"}, s.userID.String())
	s.Require().NoError(err)

	entries, err := s.auditStore.List(s.ctx, audit.Filter{
		EntityID: doc.ID.String(),
		Action:   audit.ActionDocumentTagged,
	})
	s.Require().NoError(err)
	s.Empty(entries)
}

func (s *VaultServiceSuite) TestAttachToTaskFillsSlot() {
	task, err := s.tasks.Create(s.ctx, tasks.CreateInput{
		UserID:    s.userID,
		FirmID:    s.firmID,
		RuleID:    "gstr1_monthly",
		EventID:   id.NewEventID(),
		Name:      "File GSTR-1",
		Frequency: id.FrequencyMonthly,
		DueDate:   s.now.AddDate(0, 0, 11),
		Priority:  id.PriorityHigh,
		Documents: []tasks.DocumentSlot{{DocumentType: "sales_register", Mandatory: true}},
	})
	s.Require().NoError(err)

	doc := s.register("sales_register")

	attached, err := s.service.AttachToTask(s.ctx, doc.ID, task.ID, s.userID.String())
	s.Require().NoError(err)
	s.Require().NotNil(attached.TaskID)
	s.Equal(task.ID, *attached.TaskID)

	updated, err := s.tasks.Get(s.ctx, task.ID)
	s.Require().NoError(err)
	s.Require().Len(updated.Documents, 1)
	s.True(updated.Documents[0].Uploaded)
	s.Equal(doc.ID, updated.Documents[0].DocumentID)
}

func (s *VaultServiceSuite) TestAttachTwiceConflicts() {
	task, err := s.tasks.Create(s.ctx, tasks.CreateInput{
		UserID:    s.userID,
		FirmID:    s.firmID,
		RuleID:    "gstr1_monthly",
		EventID:   id.NewEventID(),
		Name:      "File GSTR-1",
		Frequency: id.FrequencyMonthly,
		DueDate:   s.now.AddDate(0, 0, 11),
		Priority:  id.PriorityHigh,
		Documents: []tasks.DocumentSlot{{DocumentType: "sales_register", Mandatory: true}},
	})
	s.Require().NoError(err)

	doc := s.register("sales_register")

	_, err = s.service.AttachToTask(s.ctx, doc.ID, task.ID, s.userID.String())
	s.Require().NoError(err)

	_, err = s.service.AttachToTask(s.ctx, doc.ID, task.ID, s.userID.String())
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
}

func (s *VaultServiceSuite) TestAttachWithoutMatchingSlot() {
	task, err := s.tasks.Create(s.ctx, tasks.CreateInput{
		UserID:    s.userID,
		FirmID:    s.firmID,
		RuleID:    "gstr1_monthly",
		EventID:   id.NewEventID(),
		Name:      "File GSTR-1",
		Frequency: id.FrequencyMonthly,
		DueDate:   s.now.AddDate(0, 0, 11),
		Priority:  id.PriorityHigh,
		Documents: []tasks.DocumentSlot{{DocumentType: "sales_register", Mandatory: true}},
	})
	s.Require().NoError(err)

	doc := s.register("bank_statement")

	_, err = s.service.AttachToTask(s.ctx, doc.ID, task.ID, s.userID.String())
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}
