package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/kart-io/docqa/internal/model"
)

// datastore implements the Factory interface over gorm.
type datastore struct {
	db *gorm.DB
}

// NewStore creates a Factory backed by the given gorm database.
func NewStore(db *gorm.DB) Factory {
	return &datastore{db: db}
}

// Users returns the user store.
func (ds *datastore) Users() UserStore {
	return newUsers(ds.db)
}

// Documents returns the document store.
func (ds *datastore) Documents() DocumentStore {
	return newDocuments(ds.db)
}

// Chunks returns the chunk store.
func (ds *datastore) Chunks() ChunkStore {
	return newChunks(ds.db)
}

// QueryLogs returns the query log store.
func (ds *datastore) QueryLogs() QueryLogStore {
	return newQueryLogs(ds.db)
}

// Tx runs fn inside a transaction. The Factory handed to fn shares the
// transaction; returning an error rolls everything back.
func (ds *datastore) Tx(ctx context.Context, fn func(Factory) error) error {
	return ds.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&datastore{db: tx})
	})
}

// AutoMigrate migrates the database schema.
func (ds *datastore) AutoMigrate() error {
	return ds.db.AutoMigrate(
		&model.User{},
		&model.Document{},
		&model.Chunk{},
		&model.QueryLog{},
	)
}

// Close closes the factory and underlying connections.
func (ds *datastore) Close() error {
	sqlDB, err := ds.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
