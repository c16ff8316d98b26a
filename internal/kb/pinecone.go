package kb

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	logx "github.com/sharpchat/server/pkg/logger"
)

// PineconeConfig carries the serverless index connection settings.
type PineconeConfig struct {
	Host    string `envconfig:"PINECONE_INDEX_HOST" required:"true"`
	APIKey  string `envconfig:"PINECONE_API_KEY" required:"true"`
	Timeout int    `envconfig:"PINECONE_TIMEOUT" default:"30"`
}

// PineconeIndex talks to a Pinecone serverless index over its REST data
// plane. Only the narrow Index contract is exposed; query semantics beyond
// the business_id equality filter belong to the backend.
type PineconeIndex struct {
	host   string
	apiKey string
	client *http.Client
}

func NewPineconeIndex(cfg PineconeConfig) *PineconeIndex {
	return &PineconeIndex{
		host:   "https://" + cfg.Host,
		apiKey: cfg.APIKey,
		client: &http.Client{Timeout: time.Duration(cfg.Timeout) * time.Second},
	}
}

func businessFilter(businessID string) map[string]any {
	return map[string]any{"business_id": map[string]any{"$eq": businessID}}
}

func (p *PineconeIndex) Upsert(ctx context.Context, vectors []Vector) error {
	return p.post(ctx, "/vectors/upsert", map[string]any{"vectors": vectors}, nil)
}

func (p *PineconeIndex) Query(ctx context.Context, vector []float32, businessID string, topK int) ([]Match, error) {
	var out struct {
		Matches []Match `json:"matches"`
	}
	err := p.post(ctx, "/query", map[string]any{
		"vector":          vector,
		"topK":            topK,
		"filter":          businessFilter(businessID),
		"includeMetadata": true,
	}, &out)
	if err != nil {
		return nil, err
	}
	return out.Matches, nil
}

func (p *PineconeIndex) DeleteByBusiness(ctx context.Context, businessID string) error {
	return p.post(ctx, "/vectors/delete", map[string]any{"filter": businessFilter(businessID)}, nil)
}

func (p *PineconeIndex) DeleteAll(ctx context.Context) error {
	return p.post(ctx, "/vectors/delete", map[string]any{"deleteAll": true}, nil)
}

func (p *PineconeIndex) Stats(ctx context.Context) (Stats, error) {
	var out Stats
	err := p.post(ctx, "/describe_index_stats", map[string]any{}, &out)
	return out, err
}

func (p *PineconeIndex) post(ctx context.Context, path string, body any, out any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.host+path, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Api-Key", p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		logx.Error().Err(err).Str("path", path).Msg("pinecone request failed")
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return errors.New("pinecone api error: " + resp.Status + " body=" + string(respBody))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode pinecone response for %s: %w", path, err)
	}
	return nil
}

var _ Index = (*PineconeIndex)(nil)
