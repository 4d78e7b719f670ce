package vault

import (
	"context"

	id "lekha/pkg/domain"
)

// ListFilter narrows document listings. Zero-valued fields are not applied.
type ListFilter struct {
	DocumentType string
	Tag          string
	Limit        int
}

// Store persists document metadata.
//
// Contract:
//   - Get and Update return sentinel.ErrNotFound when the document is unknown.
//   - ListByFirm orders by upload time, newest first.
type Store interface {
	Create(ctx context.Context, doc *Document) error
	Get(ctx context.Context, docID id.DocumentID) (*Document, error)
	Update(ctx context.Context, doc *Document) error
	ListByFirm(ctx context.Context, firmID id.FirmID, filter ListFilter) ([]*Document, error)
}
