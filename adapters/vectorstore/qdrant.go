// Package vectorstore adapts the Qdrant vector database to the
// repositories.VectorStore interface. The index is addressed by a dataset
// path of the form hub://<org>/<dataset>, mapped onto one collection.
package vectorstore

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/keepalive"

	"github.com/voxdocs/voxdocs/domain/entities"
	"github.com/voxdocs/voxdocs/domain/repositories"
)

const (
	defaultHost = "localhost"
	defaultPort = 6334

	// mmrLambda balances query relevance against diversity when
	// maximal-marginal-relevance reranking is requested.
	mmrLambda = 0.5
)

// collectionNamePattern constrains collection names derived from dataset
// paths. Lowercase letters, digits and underscores, 1-64 characters.
var collectionNamePattern = regexp.MustCompile(`^[a-z0-9_]{1,64}$`)

var invalidCollectionChars = regexp.MustCompile(`[^a-z0-9_]+`)

// QdrantConfig holds configuration for the Qdrant store.
// Required fields:
// - DatasetPath: the index namespace, e.g. "hub://myorg/voice-assistant"
// Optional fields with defaults:
// - Host: Qdrant hostname (default: "localhost")
// - Port: Qdrant gRPC port (default: 6334)
// - APIKey: Qdrant API key for managed deployments
// - UseTLS: enable TLS for the gRPC connection
type QdrantConfig struct {
	DatasetPath string
	Host        string
	Port        int
	APIKey      string
	UseTLS      bool
}

// CollectionFromDatasetPath derives the Qdrant collection name from a
// dataset path. "hub://myorg/voice-assistant" becomes
// "myorg_voice_assistant".
func CollectionFromDatasetPath(datasetPath string) (string, error) {
	name := strings.TrimPrefix(datasetPath, "hub://")
	name = strings.ToLower(name)
	name = invalidCollectionChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, "_")
	if !collectionNamePattern.MatchString(name) {
		return "", fmt.Errorf("dataset path %q yields no valid collection name", datasetPath)
	}
	return name, nil
}

// QdrantStore implements VectorStore over Qdrant's native gRPC client.
type QdrantStore struct {
	client     *qdrant.Client
	collection string
	logger     *zap.Logger
}

var _ repositories.VectorStore = (*QdrantStore)(nil)

// NewQdrantStore connects to Qdrant and resolves the collection for the
// configured dataset path.
func NewQdrantStore(config QdrantConfig, logger *zap.Logger) (*QdrantStore, error) {
	collection, err := CollectionFromDatasetPath(config.DatasetPath)
	if err != nil {
		return nil, err
	}

	host := config.Host
	if host == "" {
		host = defaultHost
	}
	port := config.Port
	if port == 0 {
		port = defaultPort
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: config.APIKey,
		UseTLS: config.UseTLS,
		GrpcOptions: []grpc.DialOption{
			grpc.WithKeepaliveParams(keepalive.ClientParameters{
				Time:                30 * time.Second,
				Timeout:             10 * time.Second,
				PermitWithoutStream: true,
			}),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	logger.Info("Connected to vector index",
		zap.String("host", host),
		zap.Int("port", port),
		zap.String("collection", collection))

	return &QdrantStore{
		client:     client,
		collection: collection,
		logger:     logger,
	}, nil
}

// EnsureReady creates the backing collection for the given vector
// dimension when it does not exist yet. Cosine is the only distance the
// collection is ever created with.
func (s *QdrantStore) EnsureReady(ctx context.Context, dimension int) error {
	if dimension <= 0 {
		return fmt.Errorf("invalid vector dimension %d", dimension)
	}

	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("failed to check collection %s: %w", s.collection, err)
	}
	if exists {
		return nil
	}

	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(dimension),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection %s: %w", s.collection, err)
	}

	s.logger.Info("Created collection",
		zap.String("collection", s.collection),
		zap.Int("dimension", dimension))
	return nil
}

// Upsert writes (segment, vector) pairs into the collection. Zero
// segments is a no-op. Any service error fails the whole batch.
func (s *QdrantStore) Upsert(ctx context.Context, segments []entities.DocumentSegment, vectors [][]float32) error {
	if len(segments) != len(vectors) {
		return fmt.Errorf("segments and vectors length mismatch: %d vs %d", len(segments), len(vectors))
	}
	if len(segments) == 0 {
		return nil
	}

	points := make([]*qdrant.PointStruct, len(segments))
	for i, segment := range segments {
		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewIDUUID(uuid.New().String()),
			Vectors: qdrant.NewVectors(vectors[i]...),
			Payload: map[string]*qdrant.Value{
				"text":   {Kind: &qdrant.Value_StringValue{StringValue: segment.Text}},
				"source": {Kind: &qdrant.Value_StringValue{StringValue: segment.Source}},
				"index":  {Kind: &qdrant.Value_IntegerValue{IntegerValue: int64(segment.Index)}},
			},
		}
	}

	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collection,
		Points:         points,
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("failed to upsert %d points: %w", len(points), err)
	}

	s.logger.Info("Upserted segments",
		zap.String("collection", s.collection),
		zap.Int("count", len(points)))
	return nil
}

// Search fetches a candidate pool of params.FetchK hits and narrows it to
// params.K, reranking with maximal marginal relevance when requested.
func (s *QdrantStore) Search(ctx context.Context, vector []float32, params repositories.SearchParams) ([]repositories.ScoredSegment, error) {
	if params.Metric != repositories.DistanceCosine {
		return nil, fmt.Errorf("unsupported distance metric %q", params.Metric)
	}
	if params.K <= 0 {
		return nil, fmt.Errorf("k must be positive, got %d", params.K)
	}
	fetchK := params.FetchK
	if fetchK < params.K {
		fetchK = params.K
	}

	hits, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(fetchK)),
		WithPayload:    qdrant.NewWithPayload(true),
		WithVectors:    qdrant.NewWithVectors(params.MMR),
	})
	if err != nil {
		return nil, fmt.Errorf("similarity search failed: %w", err)
	}

	candidates := make([]candidate, 0, len(hits))
	for _, hit := range hits {
		candidates = append(candidates, candidate{
			segment: segmentFromPayload(hit.Payload),
			score:   hit.Score,
			vector:  extractVector(hit.Vectors),
		})
	}

	var selected []candidate
	if params.MMR {
		selected = rerankMMR(vector, candidates, params.K, mmrLambda)
	} else if len(candidates) > params.K {
		selected = candidates[:params.K]
	} else {
		selected = candidates
	}

	results := make([]repositories.ScoredSegment, 0, len(selected))
	for _, c := range selected {
		results = append(results, repositories.ScoredSegment{
			Segment: c.segment,
			Score:   c.score,
		})
	}

	s.logger.Debug("Similarity search completed",
		zap.Int("fetched", len(candidates)),
		zap.Int("returned", len(results)))
	return results, nil
}

// Close closes the gRPC connection.
func (s *QdrantStore) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

func segmentFromPayload(payload map[string]*qdrant.Value) entities.DocumentSegment {
	var segment entities.DocumentSegment
	if v, ok := payload["text"]; ok {
		segment.Text = v.GetStringValue()
	}
	if v, ok := payload["source"]; ok {
		segment.Source = v.GetStringValue()
	}
	if v, ok := payload["index"]; ok {
		segment.Index = int(v.GetIntegerValue())
	}
	return segment
}

func extractVector(vectors *qdrant.VectorsOutput) []float32 {
	if vectors == nil {
		return nil
	}
	vec := vectors.GetVector()
	if vec == nil {
		return nil
	}
	if dense := vec.GetDense(); dense != nil {
		return dense.GetData()
	}
	return vec.GetData()
}
