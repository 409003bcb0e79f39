package biz

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/kart-io/docqa/internal/docqa/store"
	"github.com/kart-io/docqa/internal/model"
	"github.com/kart-io/docqa/pkg/errors"
	"github.com/kart-io/docqa/pkg/llm"
)

// fakeEmbedder maps each text to a deterministic vector so retrieval
// ordering is predictable in tests.
type fakeEmbedder struct {
	failWith error
	failOn   string // fail only batches containing this substring
	calls    int
}

func (f *fakeEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	f.calls++
	if f.failWith != nil {
		return nil, f.failWith
	}
	if f.failOn != "" {
		for _, text := range texts {
			if strings.Contains(text, f.failOn) {
				return nil, stderrors.New("poisoned batch")
			}
		}
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = fakeVector(text)
	}
	return out, nil
}

func (f *fakeEmbedder) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := f.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return embeddings[0], nil
}

func (f *fakeEmbedder) Name() string { return "fake" }

// fakeVector leans toward dimension 0 for texts mentioning "alpha" and
// dimension 1 for "beta".
func fakeVector(text string) []float32 {
	v := []float32{0.1, 0.1, 1}
	if strings.Contains(text, "alpha") {
		v[0] = 1
	}
	if strings.Contains(text, "beta") {
		v[1] = 1
	}
	return v
}

type fakeChat struct {
	answer   string
	failWith error
	prompts  []string
	systems  []string
}

func (f *fakeChat) Chat(ctx context.Context, messages []llm.Message) (string, error) {
	if f.failWith != nil {
		return "", f.failWith
	}
	return f.answer, nil
}

func (f *fakeChat) Generate(ctx context.Context, prompt, systemPrompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	f.systems = append(f.systems, systemPrompt)
	if f.failWith != nil {
		return "", f.failWith
	}
	return f.answer, nil
}

func (f *fakeChat) Name() string { return "fake" }

func newTestFactory(t *testing.T) store.Factory {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	factory := store.NewStore(db)
	require.NoError(t, factory.AutoMigrate())
	t.Cleanup(func() { _ = factory.Close() })
	return factory
}

func newTestEmbedder(t *testing.T, provider llm.EmbeddingProvider) *Embedder {
	t.Helper()
	embedder, err := NewEmbedder(provider, 2, 3)
	require.NoError(t, err)
	t.Cleanup(embedder.Close)
	return embedder
}

func createTestUser(t *testing.T, factory store.Factory, username string) *model.User {
	t.Helper()
	user := &model.User{Username: username, Email: username + "@example.com"}
	require.NoError(t, NewUserService(factory).Create(context.Background(), user))
	return user
}

func TestUserService_Create(t *testing.T) {
	factory := newTestFactory(t)
	svc := NewUserService(factory)
	ctx := context.Background()

	require.NoError(t, svc.Create(ctx, &model.User{Username: "alice", Email: "alice@example.com"}))

	err := svc.Create(ctx, &model.User{Username: "alice", Email: "other@example.com"})
	assert.True(t, errors.IsCode(err, errors.ErrAlreadyExists.Code))

	err = svc.Create(ctx, &model.User{Username: "  ", Email: "x@example.com"})
	assert.True(t, errors.IsCode(err, errors.ErrInvalidParam.Code))

	_, err = svc.Get(ctx, 9999)
	assert.True(t, errors.IsCode(err, errors.ErrUserNotFound.Code))
}

func TestDocumentService_Ingest(t *testing.T) {
	factory := newTestFactory(t)
	user := createTestUser(t, factory, "alice")
	embedder := newTestEmbedder(t, &fakeEmbedder{})
	svc := NewDocumentService(factory, embedder, &DocumentConfig{
		ChunkSize: 50, ChunkOverlap: 10, EmbeddingModel: "fake-embed",
	})
	ctx := context.Background()

	content := []byte(strings.Repeat("the alpha protocol handles retries. ", 10))
	doc, err := svc.Ingest(ctx, user.ID, "notes.txt", content)
	require.NoError(t, err)
	assert.Equal(t, model.DocumentStatusIndexed, doc.Status)
	assert.Equal(t, "txt", doc.FileType)
	assert.Equal(t, int64(len(content)), doc.FileSize)
	assert.Positive(t, doc.TotalChunks)

	count, err := factory.Chunks().CountByDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(doc.TotalChunks), count)

	chunks, err := factory.Chunks().ListByDocument(ctx, doc.ID)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)
	assert.Equal(t, "fake-embed", chunks[0].EmbeddingModel)
	assert.Positive(t, chunks[0].TokenCount)
}

func TestDocumentService_Ingest_ZeroChunks(t *testing.T) {
	factory := newTestFactory(t)
	user := createTestUser(t, factory, "alice")
	embedder := newTestEmbedder(t, &fakeEmbedder{})
	svc := NewDocumentService(factory, embedder, &DocumentConfig{ChunkSize: 50, ChunkOverlap: 10})
	ctx := context.Background()

	// Whitespace-only content indexes successfully with no chunks.
	doc, err := svc.Ingest(ctx, user.ID, "empty.txt", []byte("   \n\t "))
	require.NoError(t, err)
	assert.Equal(t, model.DocumentStatusIndexed, doc.Status)
	assert.Zero(t, doc.TotalChunks)
}

func TestDocumentService_Ingest_Errors(t *testing.T) {
	factory := newTestFactory(t)
	user := createTestUser(t, factory, "alice")
	embedder := newTestEmbedder(t, &fakeEmbedder{})
	svc := NewDocumentService(factory, embedder, &DocumentConfig{ChunkSize: 50, ChunkOverlap: 10})
	ctx := context.Background()

	_, err := svc.Ingest(ctx, 9999, "notes.txt", []byte("hello"))
	assert.True(t, errors.IsCode(err, errors.ErrUserNotFound.Code))

	_, err = svc.Ingest(ctx, user.ID, "image.png", []byte("hello"))
	assert.True(t, errors.IsCode(err, errors.ErrUnsupportedFormat.Code))

	// The unsupported upload must not leave a document row behind.
	list, err := svc.List(ctx, user.ID, 0, 10)
	require.NoError(t, err)
	assert.Zero(t, list.TotalCount)
}

func TestDocumentService_Ingest_CompensatingDelete(t *testing.T) {
	factory := newTestFactory(t)
	user := createTestUser(t, factory, "alice")
	embedder := newTestEmbedder(t, &fakeEmbedder{failWith: stderrors.New("provider down")})
	svc := NewDocumentService(factory, embedder, &DocumentConfig{ChunkSize: 50, ChunkOverlap: 10})
	ctx := context.Background()

	doc, err := svc.Ingest(ctx, user.ID, "notes.txt", []byte("some text to ingest"))
	assert.Nil(t, doc)
	assert.True(t, errors.IsCode(err, errors.ErrEmbeddingFailed.Code))

	// The pending document row must be gone.
	list, err := svc.List(ctx, user.ID, 0, 10)
	require.NoError(t, err)
	assert.Zero(t, list.TotalCount)
}

func TestDocumentService_Ingest_MidStreamEmbeddingFailure(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	factory := store.NewStore(db)
	require.NoError(t, factory.AutoMigrate())
	t.Cleanup(func() { _ = factory.Close() })

	user := createTestUser(t, factory, "alice")
	embedder := newTestEmbedder(t, &fakeEmbedder{failOn: "poison"})
	svc := NewDocumentService(factory, embedder, &DocumentConfig{ChunkSize: 50, ChunkOverlap: 0})
	ctx := context.Background()

	// Enough text for well over one embedding batch, with the failing
	// marker only near the end so earlier batches embed successfully.
	content := []byte(strings.Repeat("aaaa ", 200) + "poison word at the tail")

	doc, err := svc.Ingest(ctx, user.ID, "big.txt", content)
	assert.Nil(t, doc)
	assert.True(t, errors.IsCode(err, errors.ErrEmbeddingFailed.Code))

	// Neither the document nor any partially embedded chunks survive.
	list, err := svc.List(ctx, user.ID, 0, 10)
	require.NoError(t, err)
	assert.Zero(t, list.TotalCount)

	var chunkTotal int64
	require.NoError(t, db.Model(&model.Chunk{}).Count(&chunkTotal).Error)
	assert.Zero(t, chunkTotal)
}

func TestDocumentService_Delete(t *testing.T) {
	factory := newTestFactory(t)
	alice := createTestUser(t, factory, "alice")
	embedder := newTestEmbedder(t, &fakeEmbedder{})
	svc := NewDocumentService(factory, embedder, &DocumentConfig{ChunkSize: 50, ChunkOverlap: 10})
	ctx := context.Background()

	doc, err := svc.Ingest(ctx, alice.ID, "notes.txt", []byte("alpha content for deletion"))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, doc.ID))
	_, err = svc.Get(ctx, doc.ID)
	assert.True(t, errors.IsCode(err, errors.ErrDocumentNotFound.Code))

	count, err := factory.Chunks().CountByDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	err = svc.Delete(ctx, doc.ID)
	assert.True(t, errors.IsCode(err, errors.ErrDocumentNotFound.Code))
}

func newQueryFixture(t *testing.T, chat *fakeChat) (store.Factory, *model.User, *QueryService, *DocumentService) {
	t.Helper()
	factory := newTestFactory(t)
	user := createTestUser(t, factory, "alice")
	embedder := newTestEmbedder(t, &fakeEmbedder{})
	docs := NewDocumentService(factory, embedder, &DocumentConfig{ChunkSize: 100, ChunkOverlap: 0})
	retriever := NewRetriever(factory, embedder)
	queries := NewQueryService(factory, retriever, NewGenerator(chat), &QueryConfig{
		MaxQueryLength:             50,
		AnswerLogLength:            20,
		DefaultTopK:                3,
		DefaultSimilarityThreshold: 0.5,
	})
	return factory, user, queries, docs
}

func TestQueryService_Query(t *testing.T) {
	chat := &fakeChat{answer: "The alpha protocol retries failed requests three times."}
	factory, user, queries, docs := newQueryFixture(t, chat)
	ctx := context.Background()

	_, err := docs.Ingest(ctx, user.ID, "alpha.txt", []byte("the alpha protocol handles retries"))
	require.NoError(t, err)

	result, err := queries.Query(ctx, QueryParams{UserID: user.ID, QueryText: "how does alpha retry"})
	require.NoError(t, err)
	assert.Equal(t, chat.answer, result.Response)
	assert.Equal(t, "how does alpha retry", result.QueryText)
	assert.Equal(t, 1, result.RetrievedChunks)
	assert.GreaterOrEqual(t, result.ResponseTimeMs, int64(0))

	// The response carries the chunks the answer was grounded on.
	require.Len(t, result.Chunks, 1)
	assert.NotZero(t, result.Chunks[0].ID)
	assert.NotZero(t, result.Chunks[0].DocumentID)
	assert.Equal(t, 0, result.Chunks[0].ChunkIndex)
	assert.Equal(t, "the alpha protocol handles retries", result.Chunks[0].Content)
	assert.Positive(t, result.Chunks[0].TokenCount)
	assert.Greater(t, result.Chunks[0].Score, 0.5)

	require.Len(t, chat.prompts, 1)
	assert.Contains(t, chat.prompts[0], "the alpha protocol handles retries")
	assert.Contains(t, chat.prompts[0], "how does alpha retry")

	// Exactly one audit row, with a truncated answer.
	logs, err := factory.QueryLogs().ListByUser(ctx, user.ID, 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "how does alpha retry", logs[0].QueryText)
	assert.Len(t, []rune(logs[0].Response), 20)
	assert.Equal(t, 1, logs[0].RetrievedChunks)
}

func TestQueryService_Query_Overrides(t *testing.T) {
	chat := &fakeChat{answer: "ok"}
	_, user, queries, docs := newQueryFixture(t, chat)
	ctx := context.Background()

	_, err := docs.Ingest(ctx, user.ID, "a.txt", []byte("alpha one"))
	require.NoError(t, err)
	_, err = docs.Ingest(ctx, user.ID, "b.txt", []byte("alpha two"))
	require.NoError(t, err)

	topK := 1
	result, err := queries.Query(ctx, QueryParams{
		UserID:    user.ID,
		QueryText: "alpha question",
		TopK:      &topK,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.RetrievedChunks)
	require.Len(t, result.Chunks, 1)

	// A high threshold filters everything out.
	threshold := 0.999
	result, err = queries.Query(ctx, QueryParams{
		UserID:              user.ID,
		QueryText:           "unrelated gamma question",
		SimilarityThreshold: &threshold,
	})
	require.NoError(t, err)
	assert.Zero(t, result.RetrievedChunks)
	assert.Equal(t, NoInformationAnswer, result.Response)
}

func TestQueryService_Query_NoResults(t *testing.T) {
	chat := &fakeChat{answer: "should not be used"}
	_, user, queries, _ := newQueryFixture(t, chat)

	result, err := queries.Query(context.Background(), QueryParams{UserID: user.ID, QueryText: "anything at all"})
	require.NoError(t, err)
	assert.Equal(t, NoInformationAnswer, result.Response)
	assert.Zero(t, result.RetrievedChunks)
	assert.Empty(t, result.Chunks)
	assert.Empty(t, chat.prompts, "chat provider must not be called without context")
}

func TestQueryService_Query_Validation(t *testing.T) {
	chat := &fakeChat{}
	_, user, queries, _ := newQueryFixture(t, chat)
	ctx := context.Background()

	_, err := queries.Query(ctx, QueryParams{UserID: user.ID, QueryText: "  "})
	assert.True(t, errors.IsCode(err, errors.ErrInvalidParam.Code))

	_, err = queries.Query(ctx, QueryParams{UserID: user.ID, QueryText: strings.Repeat("q", 51)})
	assert.True(t, errors.IsCode(err, errors.ErrQueryTooLong.Code))

	_, err = queries.Query(ctx, QueryParams{UserID: 9999, QueryText: "valid question"})
	assert.True(t, errors.IsCode(err, errors.ErrUserNotFound.Code))
}

func TestQueryService_Query_GenerationDegrades(t *testing.T) {
	chat := &fakeChat{failWith: stderrors.New("model unavailable")}
	factory, user, queries, docs := newQueryFixture(t, chat)
	ctx := context.Background()

	_, err := docs.Ingest(ctx, user.ID, "alpha.txt", []byte("the alpha protocol handles retries"))
	require.NoError(t, err)

	result, err := queries.Query(ctx, QueryParams{UserID: user.ID, QueryText: "how does alpha retry"})
	require.NoError(t, err)
	assert.Equal(t, "Error generating response: model unavailable", result.Response)
	assert.Equal(t, 1, result.RetrievedChunks)

	// The degraded answer is still logged.
	logs, err := factory.QueryLogs().ListByUser(ctx, user.ID, 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Contains(t, logs[0].Response, "Error generating")
}

func TestQueryService_History(t *testing.T) {
	chat := &fakeChat{answer: "ok"}
	_, user, queries, docs := newQueryFixture(t, chat)
	ctx := context.Background()

	_, err := docs.Ingest(ctx, user.ID, "alpha.txt", []byte("the alpha protocol handles retries"))
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := queries.Query(ctx, QueryParams{UserID: user.ID, QueryText: fmt.Sprintf("alpha question %d", i)})
		require.NoError(t, err)
	}

	history, err := queries.History(ctx, user.ID, 2)
	require.NoError(t, err)
	require.Len(t, history.Items, 2)
	assert.Equal(t, "alpha question 2", history.Items[0].QueryText)

	_, err = queries.History(ctx, 9999, 10)
	assert.True(t, errors.IsCode(err, errors.ErrUserNotFound.Code))
}

func TestEmbedder_PreservesOrder(t *testing.T) {
	embedder := newTestEmbedder(t, &fakeEmbedder{})
	ctx := context.Background()

	texts := make([]string, 50)
	for i := range texts {
		if i%2 == 0 {
			texts[i] = fmt.Sprintf("alpha %d", i)
		} else {
			texts[i] = fmt.Sprintf("beta %d", i)
		}
	}

	embeddings, err := embedder.EmbedBatch(ctx, texts)
	require.NoError(t, err)
	require.Len(t, embeddings, 50)
	for i, e := range embeddings {
		assert.Equal(t, fakeVector(texts[i]), e, "embedding %d out of order", i)
	}
}

func TestEmbedder_RequiresProvider(t *testing.T) {
	_, err := NewEmbedder(nil, 2, 3)
	assert.True(t, errors.IsCode(err, errors.ErrProviderNotConfigured.Code))

	embedder := newTestEmbedder(t, &fakeEmbedder{})
	assert.Equal(t, 3, embedder.Dimension())
}

func TestGenerator_SystemPrompt(t *testing.T) {
	chat := &fakeChat{answer: "grounded"}
	gen := NewGenerator(chat)

	chunk := &model.ScoredChunk{
		Chunk: &model.Chunk{ID: 1, DocumentID: 7, ChunkIndex: 2, Content: "alpha details"},
		Score: 0.9,
	}
	answer := gen.Answer(context.Background(), "what is alpha", []*model.ScoredChunk{chunk})
	assert.Equal(t, "grounded", answer)
	require.Len(t, chat.prompts, 1)
	assert.Contains(t, chat.prompts[0], "[Document 7, Chunk 2]")
	require.Len(t, chat.systems, 1)
	assert.NotEmpty(t, chat.systems[0])
}
