package repositories

import (
	"context"
	"errors"

	"github.com/voxdocs/voxdocs/domain/entities"
)

// ErrEmptyResult indicates an external call that produced no usable
// content (a search matching nothing, audio with no detectable speech).
var ErrEmptyResult = errors.New("empty result")

// DistanceMetric names the similarity metric used by the vector index.
type DistanceMetric string

// DistanceCosine is the only metric this system issues.
const DistanceCosine DistanceMetric = "cos"

// SearchParams configures one similarity search. FetchK is the candidate
// pool width fetched before reranking; K is the number of segments
// returned to the answer stage.
type SearchParams struct {
	Metric DistanceMetric
	FetchK int
	MMR    bool
	K      int
}

// ScoredSegment is one search hit with its similarity score.
type ScoredSegment struct {
	Segment entities.DocumentSegment
	Score   float32
}

// VectorStore persists embedded segments in a remote index and supports
// nearest-neighbor search. Upsert is the only write path.
type VectorStore interface {
	// EnsureReady prepares the index for vectors of the given dimension,
	// creating the backing collection when missing.
	EnsureReady(ctx context.Context, dimension int) error
	// Upsert writes (segment, vector) pairs. Lengths must match.
	Upsert(ctx context.Context, segments []entities.DocumentSegment, vectors [][]float32) error
	// Search returns the top hits for the query vector per params.
	Search(ctx context.Context, vector []float32, params SearchParams) ([]ScoredSegment, error)
	Close() error
}
