package repositories

import (
	"context"

	"github.com/voxdocs/voxdocs/domain/entities"
)

// Answerer synthesizes an answer to a query conditioned on retrieved
// passages. Generation is not deterministic; callers must not depend on
// exact answer text.
type Answerer interface {
	Answer(ctx context.Context, query string, passages []entities.DocumentSegment) (string, error)
}
