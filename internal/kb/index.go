package kb

import "context"

// Metadata travels with every stored vector. Text is stored alongside the
// embedding on purpose: it is the literal grounding passage for answer
// generation, not just a reference. ContentHash exists purely for change
// detection.
type Metadata struct {
	BusinessID    string `json:"business_id"`
	BusinessName  string `json:"business_name"`
	Category      string `json:"category"`
	BusinessEmail string `json:"business_email"`
	ContentHash   string `json:"content_hash"`
	Timestamp     string `json:"timestamp"`
	Text          string `json:"text"`
}

// Vector is one upsertable index entry.
type Vector struct {
	ID       string    `json:"id"`
	Values   []float32 `json:"values"`
	Metadata Metadata  `json:"metadata"`
}

// Match is one similarity hit.
type Match struct {
	ID       string   `json:"id"`
	Score    float64  `json:"score"`
	Metadata Metadata `json:"metadata"`
}

// Stats describes the index.
type Stats struct {
	Dimension        int `json:"dimension"`
	TotalVectorCount int `json:"totalVectorCount"`
}

// Index is the vector-store collaborator contract. Every query carries a
// mandatory business scope: cross-tenant retrieval is structurally prevented
// here rather than filtered after the fact.
type Index interface {
	Upsert(ctx context.Context, vectors []Vector) error
	Query(ctx context.Context, vector []float32, businessID string, topK int) ([]Match, error)
	DeleteByBusiness(ctx context.Context, businessID string) error
	DeleteAll(ctx context.Context) error
	Stats(ctx context.Context) (Stats, error)
}
