package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/voxdocs/voxdocs/domain/entities"
	"github.com/voxdocs/voxdocs/domain/repositories"
)

// fakeEmbedder produces fixed-dimension vectors and counts calls.
type fakeEmbedder struct {
	dimension     int
	documentCalls int
	embedded      int
	failDocuments bool
}

func (f *fakeEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	f.documentCalls++
	if f.failDocuments {
		return nil, errors.New("embedding service down")
	}
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = make([]float32, f.dimension)
		vectors[i][0] = 1
	}
	f.embedded += len(texts)
	return vectors, nil
}

func (f *fakeEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vector := make([]float32, f.dimension)
	vector[0] = 1
	return vector, nil
}

// fakeStore records the calls made against it and serves canned hits.
type fakeStore struct {
	readyDimension int
	upsertCalls    int
	upserted       int
	lastParams     repositories.SearchParams
	hits           []repositories.ScoredSegment
	searchErr      error
}

func (f *fakeStore) EnsureReady(ctx context.Context, dimension int) error {
	f.readyDimension = dimension
	return nil
}

func (f *fakeStore) Upsert(ctx context.Context, segments []entities.DocumentSegment, vectors [][]float32) error {
	if len(segments) != len(vectors) {
		return errors.New("length mismatch")
	}
	f.upsertCalls++
	f.upserted += len(segments)
	return nil
}

func (f *fakeStore) Search(ctx context.Context, vector []float32, params repositories.SearchParams) ([]repositories.ScoredSegment, error) {
	f.lastParams = params
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.hits, nil
}

func (f *fakeStore) Close() error { return nil }

// fakeAnswerer echoes how many passages it saw.
type fakeAnswerer struct {
	err error
}

func (f *fakeAnswerer) Answer(ctx context.Context, query string, passages []entities.DocumentSegment) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return fmt.Sprintf("answer from %d passages", len(passages)), nil
}

// fakeSTT returns a fixed transcript or a fixed error.
type fakeSTT struct {
	transcript string
	err        error
}

func (f *fakeSTT) TranscribeAudio(ctx context.Context, audioData []byte, config repositories.AudioConfig) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.transcript, nil
}

// fakeTTS serves a canned catalog and synthesis result.
type fakeTTS struct {
	voices        []entities.Voice
	catalogErr    error
	synthesisErr  error
	lastVoiceID   string
	synthesisDone int
}

func (f *fakeTTS) SynthesizeSpeech(ctx context.Context, text string, voiceID string) (*repositories.Synthesis, error) {
	f.lastVoiceID = voiceID
	if f.synthesisErr != nil {
		return nil, f.synthesisErr
	}
	f.synthesisDone++
	return &repositories.Synthesis{Audio: []byte("mp3-bytes"), Format: "mp3", BillableCharacters: len(text)}, nil
}

func (f *fakeTTS) ListVoices(ctx context.Context) ([]entities.Voice, error) {
	if f.catalogErr != nil {
		return nil, f.catalogErr
	}
	return f.voices, nil
}
