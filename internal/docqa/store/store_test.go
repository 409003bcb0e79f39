package store

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/kart-io/docqa/internal/model"
	"github.com/kart-io/docqa/pkg/errors"
)

func newTestStore(t *testing.T) Factory {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	factory := NewStore(db)
	require.NoError(t, factory.AutoMigrate())
	t.Cleanup(func() { _ = factory.Close() })
	return factory
}

func mustVector(t *testing.T, v []float32) []byte {
	t.Helper()
	data, err := EncodeVector(v)
	require.NoError(t, err)
	return data
}

func TestUserStore(t *testing.T) {
	factory := newTestStore(t)
	ctx := context.Background()

	user := &model.User{Username: "alice", Email: "alice@example.com"}
	require.NoError(t, factory.Users().Create(ctx, user))
	assert.NotZero(t, user.ID)

	got, err := factory.Users().Get(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)

	byName, err := factory.Users().GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byName.ID)

	_, err = factory.Users().Get(ctx, 9999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	require.NoError(t, factory.Users().Create(ctx, &model.User{Username: "bob", Email: "bob@example.com"}))
	total, users, err := factory.Users().List(ctx, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, users, 2)

	require.NoError(t, factory.Users().Delete(ctx, user.ID))
	_, err = factory.Users().Get(ctx, user.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestChunkListByDocument(t *testing.T) {
	factory := newTestStore(t)
	ctx := context.Background()

	user := &model.User{Username: "alice", Email: "alice@example.com"}
	require.NoError(t, factory.Users().Create(ctx, user))
	doc := &model.Document{UserID: user.ID, Filename: "a.txt", FileType: "txt", Status: model.DocumentStatusIndexed}
	require.NoError(t, factory.Documents().Create(ctx, doc))

	// Insert out of index order; reads must come back sorted.
	for _, idx := range []int{2, 0, 1} {
		require.NoError(t, factory.Chunks().CreateBatch(ctx, []*model.Chunk{{
			DocumentID: doc.ID,
			ChunkIndex: idx,
			Content:    "chunk",
			Embedding:  mustVector(t, []float32{1, 0}),
		}}))
	}

	chunks, err := factory.Chunks().ListByDocument(ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, chunks, 3)
	for i, c := range chunks {
		assert.Equal(t, i, c.ChunkIndex)
	}
}

func TestDocumentDeleteCascadesChunks(t *testing.T) {
	factory := newTestStore(t)
	ctx := context.Background()

	user := &model.User{Username: "alice", Email: "alice@example.com"}
	require.NoError(t, factory.Users().Create(ctx, user))

	doc := &model.Document{UserID: user.ID, Filename: "a.txt", FileType: "txt", Status: model.DocumentStatusIndexed}
	require.NoError(t, factory.Documents().Create(ctx, doc))

	require.NoError(t, factory.Chunks().CreateBatch(ctx, []*model.Chunk{
		{DocumentID: doc.ID, ChunkIndex: 0, Content: "first", Embedding: mustVector(t, []float32{1, 0})},
		{DocumentID: doc.ID, ChunkIndex: 1, Content: "second", Embedding: mustVector(t, []float32{0, 1})},
	}))

	count, err := factory.Chunks().CountByDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	require.NoError(t, factory.Documents().Delete(ctx, doc.ID))

	count, err = factory.Chunks().CountByDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	_, err = factory.Documents().Get(ctx, doc.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestChunkSearch(t *testing.T) {
	factory := newTestStore(t)
	ctx := context.Background()

	alice := &model.User{Username: "alice", Email: "alice@example.com"}
	bob := &model.User{Username: "bob", Email: "bob@example.com"}
	require.NoError(t, factory.Users().Create(ctx, alice))
	require.NoError(t, factory.Users().Create(ctx, bob))

	aliceDoc := &model.Document{UserID: alice.ID, Filename: "a.txt", FileType: "txt", Status: model.DocumentStatusIndexed}
	bobDoc := &model.Document{UserID: bob.ID, Filename: "b.txt", FileType: "txt", Status: model.DocumentStatusIndexed}
	pendingDoc := &model.Document{UserID: alice.ID, Filename: "p.txt", FileType: "txt", Status: model.DocumentStatusPending}
	require.NoError(t, factory.Documents().Create(ctx, aliceDoc))
	require.NoError(t, factory.Documents().Create(ctx, bobDoc))
	require.NoError(t, factory.Documents().Create(ctx, pendingDoc))

	require.NoError(t, factory.Chunks().CreateBatch(ctx, []*model.Chunk{
		{DocumentID: aliceDoc.ID, ChunkIndex: 0, Content: "exact", Embedding: mustVector(t, []float32{1, 0})},
		{DocumentID: aliceDoc.ID, ChunkIndex: 1, Content: "close", Embedding: mustVector(t, []float32{1, 1})},
		{DocumentID: aliceDoc.ID, ChunkIndex: 2, Content: "orthogonal", Embedding: mustVector(t, []float32{0, 1})},
		{DocumentID: bobDoc.ID, ChunkIndex: 0, Content: "other user", Embedding: mustVector(t, []float32{1, 0})},
		{DocumentID: pendingDoc.ID, ChunkIndex: 0, Content: "not indexed", Embedding: mustVector(t, []float32{1, 0})},
	}))

	t.Run("scoped to user and indexed documents", func(t *testing.T) {
		results, err := factory.Chunks().Search(ctx, SearchParams{
			UserID: alice.ID,
			Query:  []float32{1, 0},
			TopK:   10,
		})
		require.NoError(t, err)
		require.Len(t, results, 3)
		assert.Equal(t, "exact", results[0].Chunk.Content)
		assert.InDelta(t, 1.0, results[0].Score, 1e-9)
	})

	t.Run("threshold filters low scores", func(t *testing.T) {
		results, err := factory.Chunks().Search(ctx, SearchParams{
			UserID:    alice.ID,
			Query:     []float32{1, 0},
			TopK:      10,
			Threshold: 0.5,
		})
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, "exact", results[0].Chunk.Content)
		assert.Equal(t, "close", results[1].Chunk.Content)
	})

	t.Run("topK truncates results", func(t *testing.T) {
		results, err := factory.Chunks().Search(ctx, SearchParams{
			UserID: alice.ID,
			Query:  []float32{1, 0},
			TopK:   1,
		})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "exact", results[0].Chunk.Content)
	})

	t.Run("document scope narrows search", func(t *testing.T) {
		results, err := factory.Chunks().Search(ctx, SearchParams{
			UserID:      bob.ID,
			DocumentIDs: []uint64{bobDoc.ID},
			Query:       []float32{1, 0},
			TopK:        10,
		})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "other user", results[0].Chunk.Content)
	})

	t.Run("equal scores order by chunk ID", func(t *testing.T) {
		carol := &model.User{Username: "carol", Email: "carol@example.com"}
		require.NoError(t, factory.Users().Create(ctx, carol))
		doc := &model.Document{UserID: carol.ID, Filename: "c.txt", FileType: "txt", Status: model.DocumentStatusIndexed}
		require.NoError(t, factory.Documents().Create(ctx, doc))
		ties := []*model.Chunk{
			{DocumentID: doc.ID, ChunkIndex: 0, Content: "tie-a", Embedding: mustVector(t, []float32{2, 0})},
			{DocumentID: doc.ID, ChunkIndex: 1, Content: "tie-b", Embedding: mustVector(t, []float32{3, 0})},
		}
		require.NoError(t, factory.Chunks().CreateBatch(ctx, ties))

		results, err := factory.Chunks().Search(ctx, SearchParams{
			UserID: carol.ID,
			Query:  []float32{1, 0},
			TopK:   10,
		})
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, "tie-a", results[0].Chunk.Content)
		assert.Equal(t, "tie-b", results[1].Chunk.Content)
		assert.Less(t, results[0].Chunk.ID, results[1].Chunk.ID)
	})
}

func TestChunkSearchDimensionMismatch(t *testing.T) {
	factory := newTestStore(t)
	ctx := context.Background()

	user := &model.User{Username: "alice", Email: "alice@example.com"}
	require.NoError(t, factory.Users().Create(ctx, user))
	doc := &model.Document{UserID: user.ID, Filename: "a.txt", FileType: "txt", Status: model.DocumentStatusIndexed}
	require.NoError(t, factory.Documents().Create(ctx, doc))

	// Vector stored by a different embedding model than the query's.
	require.NoError(t, factory.Chunks().CreateBatch(ctx, []*model.Chunk{{
		DocumentID:     doc.ID,
		ChunkIndex:     0,
		Content:        "stale",
		Embedding:      mustVector(t, []float32{1, 0, 0}),
		EmbeddingModel: "old-model",
	}}))

	results, err := factory.Chunks().Search(ctx, SearchParams{
		UserID: user.ID,
		Query:  []float32{1, 0},
		TopK:   10,
	})
	assert.Nil(t, results)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig.Code))
	assert.Contains(t, err.Error(), "old-model")
}

func TestQueryLogListByUser(t *testing.T) {
	factory := newTestStore(t)
	ctx := context.Background()

	user := &model.User{Username: "alice", Email: "alice@example.com"}
	require.NoError(t, factory.Users().Create(ctx, user))

	for _, q := range []string{"first", "second", "third"} {
		require.NoError(t, factory.QueryLogs().Create(ctx, &model.QueryLog{
			UserID:    user.ID,
			QueryText: q,
			Response:  "answer to " + q,
		}))
	}

	logs, err := factory.QueryLogs().ListByUser(ctx, user.ID, 2)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "third", logs[0].QueryText)
	assert.Equal(t, "second", logs[1].QueryText)
}

func TestTxRollback(t *testing.T) {
	factory := newTestStore(t)
	ctx := context.Background()

	user := &model.User{Username: "alice", Email: "alice@example.com"}
	require.NoError(t, factory.Users().Create(ctx, user))

	boom := stderrors.New("boom")
	err := factory.Tx(ctx, func(tx Factory) error {
		doc := &model.Document{UserID: user.ID, Filename: "a.txt", FileType: "txt", Status: model.DocumentStatusPending}
		if err := tx.Documents().Create(ctx, doc); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	total, _, err := factory.Documents().ListByUser(ctx, user.ID, 0, 10)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestVectorRoundTrip(t *testing.T) {
	data, err := EncodeVector([]float32{0.1, -2.5, 3})
	require.NoError(t, err)
	v, err := DecodeVector(data)
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, -2.5, 3}, v)
}
