package models

import "time"

// EvidenceFile records one uploaded proof file. Exactly one of CompletionID
// and BonusID must be set: the owning contributor is derived through that
// link, never stored on the file itself.
type EvidenceFile struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	FileName     string    `gorm:"size:255;not null" json:"file_name"`
	FilePath     string    `gorm:"size:1024;not null" json:"file_path"` // filesystem path of the stored bytes
	ContentType  string    `gorm:"size:128" json:"content_type"`
	SizeBytes    int64     `json:"size_bytes"`
	CompletionID *uint     `gorm:"index" json:"completion_id"`
	BonusID      *uint     `gorm:"index" json:"bonus_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Linked reports whether the file is attached to exactly one owner record.
func (e *EvidenceFile) Linked() bool {
	return (e.CompletionID != nil) != (e.BonusID != nil)
}
