package knowledge

import (
	"context"
	"database/sql"
	"fmt"

	"plan_advisor/src/model"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/cloudwego/eino/components/retriever"
	"github.com/cloudwego/eino/schema"
	"github.com/lib/pq"
	pgvector "github.com/pgvector/pgvector-go"
)

// PGRetriever implements eino's retriever.Retriever over a pgvector table with
// columns (id, chunk_text, source, embedding vector)
type PGRetriever struct {
	db       *sql.DB
	embedder embedding.Embedder
	query    string
	topK     int
}

// NewPGRetriever opens the DSN and pings it
func NewPGRetriever(ctx context.Context, cfg model.KnowledgeConfig, embedder embedding.Embedder) (*PGRetriever, error) {
	db, err := sql.Open("postgres", cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	return newPGRetriever(db, cfg.Table, cfg.TopK, embedder), nil
}

func newPGRetriever(db *sql.DB, table string, topK int, embedder embedding.Embedder) *PGRetriever {
	if topK <= 0 {
		topK = 5
	}
	return &PGRetriever{
		db:       db,
		embedder: embedder,
		query:    searchQuery(table),
		topK:     topK,
	}
}

// searchQuery orders by cosine distance; the table name is quoted
func searchQuery(table string) string {
	return fmt.Sprintf(
		`SELECT id, chunk_text, source, embedding <=> $1 AS distance FROM %s ORDER BY distance LIMIT $2`,
		pq.QuoteIdentifier(table),
	)
}

func (r *PGRetriever) Retrieve(ctx context.Context, query string, opts ...retriever.Option) ([]*schema.Document, error) {
	topK := r.topK
	options := retriever.GetCommonOptions(&retriever.Options{TopK: &topK}, opts...)
	if options.TopK != nil && *options.TopK > 0 {
		topK = *options.TopK
	}

	vectors, err := r.embedder.EmbedStrings(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("expected 1 query embedding, got %d", len(vectors))
	}

	f32 := make([]float32, len(vectors[0]))
	for i, v := range vectors[0] {
		f32[i] = float32(v)
	}

	rows, err := r.db.QueryContext(ctx, r.query, pgvector.NewVector(f32), topK)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}
	defer rows.Close()

	var docs []*schema.Document
	for rows.Next() {
		var (
			id, text string
			source   sql.NullString
			distance float64
		)
		if err := rows.Scan(&id, &text, &source, &distance); err != nil {
			return nil, fmt.Errorf("failed to scan passage: %w", err)
		}
		docs = append(docs, &schema.Document{
			ID:      id,
			Content: text,
			MetaData: map[string]any{
				"source":   source.String,
				"distance": distance,
			},
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}
	return docs, nil
}

func (r *PGRetriever) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *PGRetriever) Close() error {
	return r.db.Close()
}
