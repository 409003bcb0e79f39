package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/kart-io/docqa/internal/model"
)

type documents struct {
	db *gorm.DB
}

func newDocuments(db *gorm.DB) *documents {
	return &documents{db}
}

// Create creates a new document record.
func (d *documents) Create(ctx context.Context, doc *model.Document) error {
	return d.db.WithContext(ctx).Create(doc).Error
}

// Get retrieves a document by ID.
func (d *documents) Get(ctx context.Context, docID uint64) (*model.Document, error) {
	var doc model.Document
	if err := d.db.WithContext(ctx).First(&doc, docID).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}

// Update saves the document record.
func (d *documents) Update(ctx context.Context, doc *model.Document) error {
	return d.db.WithContext(ctx).Save(doc).Error
}

// Delete removes the document and cascades to its chunks.
func (d *documents) Delete(ctx context.Context, docID uint64) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("document_id = ?", docID).Delete(&model.Chunk{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Document{}, docID).Error
	})
}

// ListByUser lists a user's documents with pagination, newest first.
func (d *documents) ListByUser(ctx context.Context, userID uint64, offset, limit int) (int64, []*model.Document, error) {
	var count int64
	var items []*model.Document

	q := d.db.WithContext(ctx).Model(&model.Document{}).Where("user_id = ?", userID)
	if err := q.Count(&count).Error; err != nil {
		return 0, nil, err
	}

	if err := q.Order("upload_time DESC, id DESC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return 0, nil, err
	}

	return count, items, nil
}
