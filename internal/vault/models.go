// Package vault keeps metadata for documents held in the client's document
// vault. The vault stores no file content; StorageRef points at wherever the
// bytes actually live.
package vault

import (
	"time"

	id "lekha/pkg/domain"
)

// Document is the metadata record for one vault document.
type Document struct {
	ID     id.DocumentID
	UserID id.UserID
	FirmID id.FirmID

	Name         string
	DocumentType string
	ContentType  string
	SizeBytes    int64
	StorageRef   string

	Tags []string

	// TaskID is set once the document has been linked to a compliance task.
	TaskID *id.TaskID

	UploadedAt time.Time
	UpdatedAt  time.Time
}

// HasTag reports whether the document already carries the tag.
func (d *Document) HasTag(tag string) bool {
	for _, t := range d.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
