package kb

import (
	"context"

	logx "github.com/sharpchat/server/pkg/logger"
)

// Passage is one retrieved grounding snippet with its similarity score.
type Passage struct {
	Text         string
	Score        float64
	BusinessID   string
	BusinessName string
	Category     string
}

// Retriever is the FAQ handler's port: top-K passages scoped strictly to one
// business.
type Retriever interface {
	Search(ctx context.Context, businessID, query string, topK int) ([]Passage, error)
}

// Searcher implements Retriever by embedding the query and running a
// business-scoped similarity query against the index.
type Searcher struct {
	embedder Embedder
	index    Index
}

func NewSearcher(embedder Embedder, index Index) *Searcher {
	return &Searcher{embedder: embedder, index: index}
}

func (s *Searcher) Search(ctx context.Context, businessID, query string, topK int) ([]Passage, error) {
	vector, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, err
	}

	matches, err := s.index.Query(ctx, vector, businessID, topK)
	if err != nil {
		return nil, err
	}

	passages := make([]Passage, 0, len(matches))
	for _, m := range matches {
		if m.Metadata.Text == "" {
			continue
		}
		passages = append(passages, Passage{
			Text:         m.Metadata.Text,
			Score:        m.Score,
			BusinessID:   m.Metadata.BusinessID,
			BusinessName: m.Metadata.BusinessName,
			Category:     m.Metadata.Category,
		})
	}

	logx.Debug().Str("business_id", businessID).Int("passages", len(passages)).Msg("knowledge retrieval complete")
	return passages, nil
}

var _ Retriever = (*Searcher)(nil)
