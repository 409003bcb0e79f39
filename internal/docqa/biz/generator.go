package biz

import (
	"context"
	"fmt"
	"strings"

	"github.com/kart-io/logger"

	"github.com/kart-io/docqa/internal/model"
	"github.com/kart-io/docqa/pkg/llm"
)

// NoInformationAnswer is returned when retrieval finds nothing relevant.
// The chat provider is not called in that case.
const NoInformationAnswer = "No relevant information found in your documents."

const systemPrompt = "You are a helpful assistant that answers questions based on the provided document excerpts. " +
	"Only use information from the excerpts. If the excerpts do not contain the answer, say so."

// Generator synthesizes an answer from retrieved chunks.
type Generator struct {
	provider llm.ChatProvider
}

// NewGenerator creates a generator.
func NewGenerator(provider llm.ChatProvider) *Generator {
	return &Generator{provider: provider}
}

// Answer generates a grounded answer for the question. When generation
// fails the answer degrades to an error message instead of failing the
// whole query, so the caller still gets the retrieved sources.
func (g *Generator) Answer(ctx context.Context, question string, chunks []*model.ScoredChunk) string {
	if len(chunks) == 0 {
		return NoInformationAnswer
	}

	var b strings.Builder
	for _, sc := range chunks {
		fmt.Fprintf(&b, "[Document %d, Chunk %d]:\n%s\n\n", sc.Chunk.DocumentID, sc.Chunk.ChunkIndex, sc.Chunk.Content)
	}

	prompt := fmt.Sprintf("Document excerpts:\n\n%sQuestion: %s\n\nAnswer based only on the excerpts above.",
		b.String(), question)

	answer, err := g.provider.Generate(ctx, prompt, systemPrompt)
	if err != nil {
		logger.Errorw("Answer generation failed", "error", err.Error())
		return fmt.Sprintf("Error generating response: %v", err)
	}

	logger.Infow("Answer generated", "length", len(answer), "chunks", len(chunks))
	return answer
}
