// Command ingest builds the documentation index: scrape the manual,
// split it into segments, embed them, and upsert into the vector store.
// The intermediate corpus file is removed once the index is written.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/voxdocs/voxdocs/adapters/embedding"
	"github.com/voxdocs/voxdocs/adapters/vectorstore"
	"github.com/voxdocs/voxdocs/internal/config"
	"github.com/voxdocs/voxdocs/internal/corpus"
	"github.com/voxdocs/voxdocs/internal/scraper"
	"github.com/voxdocs/voxdocs/usecase"
)

func main() {
	var (
		baseURL    = flag.String("base-url", scraper.DefaultBaseURL, "documentation site to scrape")
		corpusFile = flag.String("corpus", "content.txt", "intermediate corpus file")
		keepCorpus = flag.Bool("keep-corpus", false, "keep the corpus file after indexing")
		timeout    = flag.Duration("timeout", 30*time.Minute, "overall ingestion deadline")
	)
	flag.Parse()

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Invalid configuration", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	// Scrape the manual into one corpus file, one page per line.
	pages := scraper.New(*baseURL, logger).ScrapeAll(scraper.DefaultDocumentationPaths())
	if err := scraper.WriteCorpus(*corpusFile, pages); err != nil {
		logger.Fatal("Failed to write corpus", zap.Error(err))
	}
	logger.Info("Corpus written", zap.String("file", *corpusFile), zap.Int("pages", len(pages)))

	segments, err := corpus.NewLoader(corpus.DefaultChunkSize, corpus.DefaultChunkOverlap, logger).LoadAndSplit(*corpusFile)
	if err != nil {
		logger.Fatal("Failed to split corpus", zap.Error(err))
	}

	embedder, err := embedding.NewOpenAIEmbedder(embedding.NewOpenAIConfigFromEnv(), logger)
	if err != nil {
		logger.Fatal("Failed to initialize embedder", zap.Error(err))
	}

	store, err := vectorstore.NewQdrantStore(vectorstore.QdrantConfig{
		DatasetPath: cfg.DatasetPath(),
		Host:        cfg.QdrantHost,
		Port:        cfg.QdrantPort,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to connect to vector index", zap.Error(err))
	}
	defer store.Close()

	if err := usecase.NewIngestionService(embedder, store, logger).Ingest(ctx, segments); err != nil {
		logger.Fatal("Ingestion failed", zap.Error(err))
	}

	if !*keepCorpus {
		if err := os.Remove(*corpusFile); err != nil {
			logger.Warn("Failed to remove corpus file", zap.Error(err))
		}
	}

	logger.Info("Index built", zap.Int("segments", len(segments)))
}
