package model

import "time"

// QueryLog is the audit record of one answered query. Response holds a
// truncated prefix of the generated answer.
type QueryLog struct {
	ID              uint64    `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID          uint64    `json:"user_id" gorm:"index:idx_qlog_user;not null"`
	QueryText       string    `json:"query_text" gorm:"type:text;not null"`
	Response        string    `json:"response" gorm:"size:500"`
	RetrievedChunks int       `json:"retrieved_chunks" gorm:"default:0"`
	ResponseTimeMs  int64     `json:"response_time_ms" gorm:"default:0"`
	CreatedAt       time.Time `json:"created_at" gorm:"autoCreateTime;index:idx_qlog_created"`
}

// QueryLogList contains a list of query logs and the total count.
type QueryLogList struct {
	TotalCount int64       `json:"total_count"`
	Items      []*QueryLog `json:"items"`
}

// TableName returns the table name for GORM.
func (QueryLog) TableName() string {
	return "query_logs"
}
