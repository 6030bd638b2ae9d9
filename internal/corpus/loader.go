// Package corpus loads the scraped corpus artifact and splits it into
// bounded-length segments for embedding. A missing or unreadable corpus
// yields zero segments rather than an error; callers treat an empty
// segment set as a valid outcome.
package corpus

import (
	"fmt"
	"os"
	"strings"

	"github.com/tmc/langchaingo/textsplitter"
	"go.uber.org/zap"

	"github.com/voxdocs/voxdocs/domain/entities"
)

const (
	// DefaultChunkSize is the target window length in characters.
	DefaultChunkSize = 1000
	// DefaultChunkOverlap keeps windows non-overlapping.
	DefaultChunkOverlap = 0
)

// Loader reads a corpus file and chunks its pages.
type Loader struct {
	chunkSize    int
	chunkOverlap int
	logger       *zap.Logger
}

// NewLoader creates a Loader. Non-positive size or negative overlap fall
// back to the defaults.
func NewLoader(chunkSize, chunkOverlap int, logger *zap.Logger) *Loader {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if chunkOverlap < 0 {
		chunkOverlap = DefaultChunkOverlap
	}
	return &Loader{
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
		logger:       logger,
	}
}

// Load reads the corpus file, one page per line. Missing or unreadable
// files yield zero pages.
func (l *Loader) Load(filename string) []string {
	data, err := os.ReadFile(filename)
	if err != nil {
		l.logger.Warn("Corpus file not loadable, treating as empty",
			zap.String("filename", filename),
			zap.Error(err))
		return nil
	}

	var pages []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			pages = append(pages, line)
		}
	}
	return pages
}

// Split chunks pages into segments. The same pages and parameters always
// produce the same ordered segment sequence.
func (l *Loader) Split(pages []string, source string) ([]entities.DocumentSegment, error) {
	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(l.chunkSize),
		textsplitter.WithChunkOverlap(l.chunkOverlap),
	)

	var segments []entities.DocumentSegment
	for _, page := range pages {
		chunks, err := splitter.SplitText(page)
		if err != nil {
			return nil, fmt.Errorf("failed to split page: %w", err)
		}
		for _, chunk := range chunks {
			segments = append(segments, entities.DocumentSegment{
				Text:   chunk,
				Source: source,
				Index:  len(segments),
			})
		}
	}
	return segments, nil
}

// LoadAndSplit is the combined ingestion read path.
func (l *Loader) LoadAndSplit(filename string) ([]entities.DocumentSegment, error) {
	pages := l.Load(filename)
	return l.Split(pages, filename)
}
