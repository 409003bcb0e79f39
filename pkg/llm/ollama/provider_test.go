package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.BaseURL != "http://localhost:11434" {
		t.Errorf("expected BaseURL http://localhost:11434, got %s", cfg.BaseURL)
	}
	if cfg.Timeout != 120*time.Second {
		t.Errorf("expected Timeout 120s, got %v", cfg.Timeout)
	}
	if cfg.MaxRetries != 3 {
		t.Errorf("expected MaxRetries 3, got %d", cfg.MaxRetries)
	}
}

func TestEmbed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embed" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}

		var req embedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}

		resp := embedResponse{
			Model:      req.Model,
			Embeddings: make([][]float32, len(req.Input)),
		}
		for i := range req.Input {
			resp.Embeddings[i] = []float32{0.1, 0.2, 0.3}
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	p := NewProviderWithConfig(&Config{
		BaseURL:    server.URL,
		Model:      "nomic-embed-text",
		Timeout:    5 * time.Second,
		MaxRetries: 0,
	})

	embeddings, err := p.Embed(context.Background(), []string{"hello", "world"})
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if len(embeddings) != 2 {
		t.Fatalf("expected 2 embeddings, got %d", len(embeddings))
	}
	if len(embeddings[0]) != 3 {
		t.Errorf("expected dimension 3, got %d", len(embeddings[0]))
	}
}

func TestEmbedEmpty(t *testing.T) {
	p := NewProviderWithConfig(DefaultConfig())

	embeddings, err := p.Embed(context.Background(), nil)
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if embeddings != nil {
		t.Errorf("expected nil embeddings for empty input")
	}
}

func TestGenerate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}

		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.System == "" {
			t.Error("expected system prompt to be forwarded")
		}

		_ = json.NewEncoder(w).Encode(generateResponse{
			Model:    req.Model,
			Response: "generated text",
			Done:     true,
		})
	}))
	defer server.Close()

	p := NewProviderWithConfig(&Config{
		BaseURL:    server.URL,
		Model:      "llama3.1:8b",
		Timeout:    5 * time.Second,
		MaxRetries: 0,
	})

	out, err := p.Generate(context.Background(), "question", "system prompt")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if out != "generated text" {
		t.Errorf("expected 'generated text', got %q", out)
	}
}

func TestGenerateServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer server.Close()

	p := NewProviderWithConfig(&Config{
		BaseURL:    server.URL,
		Model:      "missing",
		Timeout:    5 * time.Second,
		MaxRetries: 2,
	})

	if _, err := p.Generate(context.Background(), "question", ""); err == nil {
		t.Fatal("expected error for 404 response")
	}
}

func TestEmbedRetriesOn5xx(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts++
		if attempts < 3 {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(embedResponse{
			Embeddings: [][]float32{{0.1}},
		})
	}))
	defer server.Close()

	p := NewProviderWithConfig(&Config{
		BaseURL:    server.URL,
		Model:      "nomic-embed-text",
		Timeout:    5 * time.Second,
		MaxRetries: 3,
	})

	if _, err := p.EmbedSingle(context.Background(), "text"); err != nil {
		t.Fatalf("expected retries to succeed, got %v", err)
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
}
