package kb

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	logx "github.com/sharpchat/server/pkg/logger"
)

// EmbeddingConfig selects the embedding model and its dimension. The
// dimension must match the index; it is configured rather than probed so a
// sync pass does not burn a model call just to learn it.
type EmbeddingConfig struct {
	APIKey    string `envconfig:"OPENAI_API_KEY" required:"true"`
	Model     string `envconfig:"EMBEDDING_MODEL" default:"text-embedding-3-small"`
	Dimension int    `envconfig:"EMBEDDING_DIMENSION" default:"1536"`
}

// Embedder computes text embeddings for documents and queries.
type Embedder interface {
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	Dimension() int
}

// OpenAIEmbedder implements Embedder on the OpenAI embeddings API.
type OpenAIEmbedder struct {
	client    *openai.Client
	model     openai.EmbeddingModel
	dimension int
}

func NewOpenAIEmbedder(cfg EmbeddingConfig) *OpenAIEmbedder {
	return &OpenAIEmbedder{
		client:    openai.NewClient(cfg.APIKey),
		model:     openai.EmbeddingModel(cfg.Model),
		dimension: cfg.Dimension,
	}
}

func (e *OpenAIEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: e.model,
	})
	if err != nil {
		logx.Error().Err(err).Int("count", len(texts)).Msg("embedding request failed")
		return nil, err
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embedding count mismatch: want %d, got %d", len(texts), len(resp.Data))
	}
	out := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		out[i] = d.Embedding
	}
	return out, nil
}

func (e *OpenAIEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vecs, err := e.EmbedDocuments(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (e *OpenAIEmbedder) Dimension() int {
	return e.dimension
}

var _ Embedder = (*OpenAIEmbedder)(nil)
