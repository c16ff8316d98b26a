package kb

import (
	"context"
	"fmt"
	"time"

	"github.com/sharpchat/server/internal/business"
	errx "github.com/sharpchat/server/internal/core/error"
	logx "github.com/sharpchat/server/pkg/logger"
)

// SyncConfig bounds chunking and upsert batching.
type SyncConfig struct {
	ChunkSize    int `envconfig:"KB_CHUNK_SIZE" default:"750"`
	ChunkOverlap int `envconfig:"KB_CHUNK_OVERLAP" default:"150"`
	BatchSize    int `envconfig:"KB_BATCH_SIZE" default:"100"`
}

// SyncResult reports one reconciliation pass. Failed counts vectors whose
// batch upsert failed; partial success is reported, not retried.
type SyncResult struct {
	TotalBusinesses int `json:"total_businesses"`
	TotalVectors    int `json:"total_vectors"`
	Changed         int `json:"changed_businesses"`
	Skipped         int `json:"skipped_businesses"`
	Failed          int `json:"failed_vectors"`
}

// Engine reconciles the business dataset with the vector index using
// content-fingerprint change detection. It runs independently of the
// per-message loop and shares no mutable state with it.
type Engine struct {
	businesses business.Repository
	index      Index
	embedder   Embedder
	cfg        SyncConfig
}

func NewEngine(businesses business.Repository, index Index, embedder Embedder, cfg SyncConfig) *Engine {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 750
	}
	if cfg.ChunkOverlap < 0 {
		cfg.ChunkOverlap = 150
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	return &Engine{businesses: businesses, index: index, embedder: embedder, cfg: cfg}
}

// Sync reconciles every record matching the filter. Unchanged businesses are
// skipped via fingerprint comparison; changed ones are re-rendered, chunked,
// re-embedded and upserted in batches.
func (e *Engine) Sync(ctx context.Context, f business.Filter) (*SyncResult, error) {
	records, err := e.businesses.Find(ctx, f)
	if err != nil {
		return nil, err
	}

	result := &SyncResult{TotalBusinesses: len(records)}
	var pending []Vector

	for _, rec := range records {
		if e.hasChanged(ctx, rec) {
			pending = append(pending, e.buildVectors(rec)...)
			result.Changed++
		} else {
			result.Skipped++
		}
	}

	result.TotalVectors = len(pending)
	result.Failed = e.embedAndUpsert(ctx, pending)

	logx.Info().
		Int("total", result.TotalBusinesses).
		Int("changed", result.Changed).
		Int("skipped", result.Skipped).
		Int("vectors", result.TotalVectors).
		Int("failed", result.Failed).
		Msg("knowledge sync complete")
	return result, nil
}

// SyncBusiness reconciles a single record. It is idempotent and safe to call
// synchronously right after a record mutation. A missing business surfaces as
// the repository's not-found error.
func (e *Engine) SyncBusiness(ctx context.Context, businessID string) (*SyncResult, error) {
	rec, err := e.businesses.GetByID(ctx, businessID)
	if err != nil {
		return nil, err
	}

	result := &SyncResult{TotalBusinesses: 1}
	if !e.hasChanged(ctx, *rec) {
		result.Skipped = 1
		logx.Debug().Str("business_id", businessID).Msg("business unchanged, skipping sync")
		return result, nil
	}

	vectors := e.buildVectors(*rec)
	result.Changed = 1
	result.TotalVectors = len(vectors)
	result.Failed = e.embedAndUpsert(ctx, vectors)
	return result, nil
}

// DeleteBusiness removes every vector for the business from the index.
func (e *Engine) DeleteBusiness(ctx context.Context, businessID string) error {
	if _, err := e.businesses.GetByID(ctx, businessID); err != nil {
		if errx.StatusOf(err) != 404 {
			return err
		}
		// record already gone from the dataset; still purge the index
	}
	return e.index.DeleteByBusiness(ctx, businessID)
}

// Stats exposes index statistics for observability endpoints.
func (e *Engine) Stats(ctx context.Context) (Stats, error) {
	return e.index.Stats(ctx)
}

// hasChanged compares the stored fingerprint against the current record.
// Absent or mismatched means changed; any index failure also reports changed,
// because re-embedding an already-current business is merely wasted work while
// skipping a stale one is incorrect.
func (e *Engine) hasChanged(ctx context.Context, rec business.Record) bool {
	current := Fingerprint(rec)

	probe := make([]float32, e.embedder.Dimension())
	matches, err := e.index.Query(ctx, probe, rec.BusinessID, 1)
	if err != nil {
		logx.Error().Err(err).Str("business_id", rec.BusinessID).Msg("fingerprint lookup failed, assuming changed")
		return true
	}
	if len(matches) == 0 {
		logx.Debug().Str("business_id", rec.BusinessID).Msg("business not in index yet")
		return true
	}
	return matches[0].Metadata.ContentHash != current
}

// buildVectors renders the record to text, chunks it, and attaches metadata.
// Values are filled in later by embedAndUpsert.
func (e *Engine) buildVectors(rec business.Record) []Vector {
	text := RenderText(rec)
	hash := Fingerprint(rec)
	now := time.Now().UTC().Format(time.RFC3339)

	chunks := ChunkText(text, e.cfg.ChunkSize, e.cfg.ChunkOverlap)
	vectors := make([]Vector, 0, len(chunks))
	for i, chunk := range chunks {
		vectors = append(vectors, Vector{
			ID: fmt.Sprintf("%s-%d", hash, i),
			Metadata: Metadata{
				BusinessID:    rec.BusinessID,
				BusinessName:  rec.Name,
				Category:      rec.Category,
				BusinessEmail: rec.PublicEmail,
				ContentHash:   hash,
				Timestamp:     now,
				Text:          chunk,
			},
		})
	}
	return vectors
}

// embedAndUpsert processes vectors in batches; a failed batch is counted and
// the pass continues with the next batch.
func (e *Engine) embedAndUpsert(ctx context.Context, vectors []Vector) (failed int) {
	for start := 0; start < len(vectors); start += e.cfg.BatchSize {
		end := start + e.cfg.BatchSize
		if end > len(vectors) {
			end = len(vectors)
		}
		batch := vectors[start:end]

		texts := make([]string, len(batch))
		for i, v := range batch {
			texts[i] = v.Metadata.Text
		}

		embeddings, err := e.embedder.EmbedDocuments(ctx, texts)
		if err != nil {
			logx.Error().Err(err).Int("batch_start", start).Msg("failed to embed batch")
			failed += len(batch)
			continue
		}
		for i := range batch {
			batch[i].Values = embeddings[i]
		}

		if err := e.index.Upsert(ctx, batch); err != nil {
			logx.Error().Err(err).Int("batch_start", start).Msg("failed to upsert batch")
			failed += len(batch)
			continue
		}
		logx.Debug().Int("batch_start", start).Int("count", len(batch)).Msg("upserted batch")
	}
	return failed
}
