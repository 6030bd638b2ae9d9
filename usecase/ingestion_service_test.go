package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/voxdocs/voxdocs/domain/entities"
)

func TestIngestEmptyCorpus(t *testing.T) {
	embedder := &fakeEmbedder{dimension: 4}
	store := &fakeStore{}
	service := NewIngestionService(embedder, store, zaptest.NewLogger(t))

	require.NoError(t, service.Ingest(context.Background(), nil))

	assert.Zero(t, embedder.documentCalls, "empty corpus must not be embedded")
	assert.Zero(t, store.upsertCalls, "empty corpus must not be written")
}

func TestIngestWritesAllSegments(t *testing.T) {
	embedder := &fakeEmbedder{dimension: 8}
	store := &fakeStore{}
	service := NewIngestionService(embedder, store, zaptest.NewLogger(t))

	segments := make([]entities.DocumentSegment, 150)
	for i := range segments {
		segments[i] = entities.DocumentSegment{Text: "chunk", Source: "content.txt", Index: i}
	}

	require.NoError(t, service.Ingest(context.Background(), segments))

	assert.Equal(t, 150, embedder.embedded)
	assert.Equal(t, 150, store.upserted)
	assert.Equal(t, 8, store.readyDimension, "index prepared for the embedding dimension")
	// 150 segments at a batch size of 64 means three round trips.
	assert.Equal(t, 3, embedder.documentCalls)
	assert.Equal(t, 3, store.upsertCalls)
}

func TestIngestPropagatesEmbeddingFailure(t *testing.T) {
	embedder := &fakeEmbedder{dimension: 4, failDocuments: true}
	store := &fakeStore{}
	service := NewIngestionService(embedder, store, zaptest.NewLogger(t))

	err := service.Ingest(context.Background(), []entities.DocumentSegment{{Text: "chunk"}})
	require.Error(t, err)
	assert.Zero(t, store.upsertCalls, "nothing reaches the index when embedding fails")
}
