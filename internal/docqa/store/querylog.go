package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/kart-io/docqa/internal/model"
)

type queryLogs struct {
	db *gorm.DB
}

func newQueryLogs(db *gorm.DB) *queryLogs {
	return &queryLogs{db}
}

// Create records a query and its answer.
func (q *queryLogs) Create(ctx context.Context, log *model.QueryLog) error {
	return q.db.WithContext(ctx).Create(log).Error
}

// ListByUser returns the user's most recent queries, newest first.
func (q *queryLogs) ListByUser(ctx context.Context, userID uint64, limit int) ([]*model.QueryLog, error) {
	var logs []*model.QueryLog
	tx := q.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC, id DESC")
	if limit > 0 {
		tx = tx.Limit(limit)
	}
	if err := tx.Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}
