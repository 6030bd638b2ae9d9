package repositories

import "context"

// Embedder converts text into fixed-dimension float vectors. All vectors
// produced for one dataset share the same dimensionality.
type Embedder interface {
	// EmbedDocuments embeds a batch of segment texts, one vector per text.
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	// EmbedQuery embeds a single query string.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}
