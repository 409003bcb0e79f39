package model

import "time"

// Document statuses.
const (
	DocumentStatusPending = "pending"
	DocumentStatusIndexed = "indexed"
)

// Document represents an uploaded document owned by a user.
type Document struct {
	ID          uint64    `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID      uint64    `json:"user_id" gorm:"index:idx_doc_user;not null"`
	Filename    string    `json:"filename" gorm:"size:255;not null"`
	FileType    string    `json:"file_type" gorm:"size:16"`
	FileSize    int64     `json:"file_size" gorm:"default:0"`
	Status      string    `json:"status" gorm:"size:32;default:'pending'"`
	TotalChunks int       `json:"total_chunks" gorm:"default:0"`
	UploadTime  time.Time `json:"upload_time" gorm:"autoCreateTime"`
}

// DocumentList contains a list of documents and the total count.
type DocumentList struct {
	TotalCount int64       `json:"total_count"`
	Items      []*Document `json:"items"`
}

// TableName returns the table name for GORM.
func (Document) TableName() string {
	return "documents"
}
