// Package usecase contains the application services orchestrating the
// ingestion and conversation flows across the adapter boundaries.
package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/voxdocs/voxdocs/domain/entities"
	"github.com/voxdocs/voxdocs/domain/repositories"
)

// embedBatchSize bounds how many segments go to the embedding service in
// one request.
const embedBatchSize = 64

// IngestionService embeds document segments and writes them into the
// vector index.
type IngestionService struct {
	embedder repositories.Embedder
	store    repositories.VectorStore
	logger   *zap.Logger
}

// NewIngestionService creates a new ingestion service.
func NewIngestionService(
	embedder repositories.Embedder,
	store repositories.VectorStore,
	logger *zap.Logger,
) *IngestionService {
	return &IngestionService{
		embedder: embedder,
		store:    store,
		logger:   logger,
	}
}

// Ingest embeds the segments batch by batch and upserts them. An empty
// segment list is a no-op: nothing is embedded and nothing is written.
func (s *IngestionService) Ingest(ctx context.Context, segments []entities.DocumentSegment) error {
	if len(segments) == 0 {
		s.logger.Warn("No segments to ingest")
		return nil
	}

	ready := false
	total := 0
	for start := 0; start < len(segments); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(segments) {
			end = len(segments)
		}
		batch := segments[start:end]

		texts := make([]string, len(batch))
		for i, segment := range batch {
			texts[i] = segment.Text
		}

		vectors, err := s.embedder.EmbedDocuments(ctx, texts)
		if err != nil {
			return fmt.Errorf("failed to embed segments %d-%d: %w", start, end, err)
		}
		if len(vectors) != len(batch) {
			return fmt.Errorf("embedding service returned %d vectors for %d segments", len(vectors), len(batch))
		}

		if !ready {
			if err := s.store.EnsureReady(ctx, len(vectors[0])); err != nil {
				return fmt.Errorf("failed to prepare vector index: %w", err)
			}
			ready = true
		}

		if err := s.store.Upsert(ctx, batch, vectors); err != nil {
			return fmt.Errorf("failed to upsert segments %d-%d: %w", start, end, err)
		}
		total += len(batch)
	}

	s.logger.Info("Ingestion completed", zap.Int("segments", total))
	return nil
}
