package usecase

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/voxdocs/voxdocs/domain/entities"
	"github.com/voxdocs/voxdocs/domain/repositories"
)

// Retrieval parameters of the answering chain. A wide candidate pool is
// fetched and reranked for diversity before the top segments reach the
// language model.
const (
	retrievalFetchK = 100
	retrievalTopK   = 4
)

// AnswerService turns a free-form question into a grounded answer:
// embed the query, retrieve supporting segments, generate.
type AnswerService struct {
	embedder repositories.Embedder
	store    repositories.VectorStore
	answerer repositories.Answerer
	logger   *zap.Logger
}

// NewAnswerService creates a new answer service.
func NewAnswerService(
	embedder repositories.Embedder,
	store repositories.VectorStore,
	answerer repositories.Answerer,
	logger *zap.Logger,
) *AnswerService {
	return &AnswerService{
		embedder: embedder,
		store:    store,
		answerer: answerer,
		logger:   logger,
	}
}

// Answer runs the retrieval-augmented answering chain for one question.
func (s *AnswerService) Answer(ctx context.Context, query string) (*entities.RetrievalResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("query cannot be empty")
	}

	vector, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	hits, err := s.store.Search(ctx, vector, repositories.SearchParams{
		Metric: repositories.DistanceCosine,
		FetchK: retrievalFetchK,
		MMR:    true,
		K:      retrievalTopK,
	})
	if err != nil {
		return nil, fmt.Errorf("retrieval failed: %w", err)
	}

	passages := make([]entities.DocumentSegment, 0, len(hits))
	for _, hit := range hits {
		passages = append(passages, hit.Segment)
	}

	answer, err := s.answerer.Answer(ctx, query, passages)
	if err != nil {
		return nil, fmt.Errorf("answer generation failed: %w", err)
	}

	s.logger.Info("Answer generated",
		zap.Int("passages", len(passages)),
		zap.Int("answerLength", len(answer)))

	return &entities.RetrievalResult{
		Answer:  answer,
		Sources: passages,
	}, nil
}
