// Package main provides the corpus ingest tool. It loads scraped chunk and
// curated Q&A JSON files into the SQLite corpus database and generates
// document embeddings for them.
//
// Usage:
//
//	ingest -chunks data/chunks.json -qa data/qa_pairs.json
//	ingest -chunks data/chunks.json -skip-embeddings
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/carequery/wac-search-go/internal/config"
	"github.com/carequery/wac-search-go/internal/corpus"
	"github.com/carequery/wac-search-go/internal/embedding"
	"github.com/carequery/wac-search-go/internal/logger"
	"github.com/carequery/wac-search-go/internal/ratelimit"
	"github.com/carequery/wac-search-go/internal/storage"
)

func main() {
	chunksPath := flag.String("chunks", "", "path to the chunks JSON file (required)")
	qaPath := flag.String("qa", "", "path to the curated Q&A JSON file")
	skipEmbeddings := flag.Bool("skip-embeddings", false, "load content only, keep existing embeddings off")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel).WithModule("ingest")

	if *chunksPath == "" {
		log.Error("-chunks is required")
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log, *chunksPath, *qaPath, *skipEmbeddings); err != nil {
		log.WithError(err).Error("Ingest failed")
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *logger.Logger, chunksPath, qaPath string, skipEmbeddings bool) error {
	chunks, err := readJSON[[]corpus.Chunk](chunksPath)
	if err != nil {
		return fmt.Errorf("read chunks: %w", err)
	}

	var pairs []corpus.QAPair
	if qaPath != "" {
		pairs, err = readJSON[[]corpus.QAPair](qaPath)
		if err != nil {
			return fmt.Errorf("read qa pairs: %w", err)
		}
	}

	db, err := storage.New(cfg.SQLitePath())
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() { _ = db.Close() }()

	if err := db.ReplaceCorpus(ctx, chunks, pairs); err != nil {
		return fmt.Errorf("replace corpus: %w", err)
	}
	log.WithField("chunks", len(chunks)).
		WithField("qa_pairs", len(pairs)).
		Info("Corpus content loaded")

	if skipEmbeddings {
		log.Info("Skipping embedding generation")
		return nil
	}
	if !cfg.HasEmbeddingProvider() {
		return fmt.Errorf("no embedding provider configured; pass -skip-embeddings to load content only")
	}

	provider, err := embedding.NewFromConfig(cfg, log)
	if err != nil {
		return fmt.Errorf("create embedder: %w", err)
	}

	embedder := embedding.NewRetrying(provider, embedding.RetryConfig{
		MaxAttempts:  cfg.IngestMaxRetries,
		InitialDelay: 2 * time.Second,
		MaxDelay:     30 * time.Second,
	}, ratelimit.NewPerMinute(cfg.EmbeddingRateLimit))

	log.WithField("provider", cfg.EmbeddingProvider).
		WithField("model", provider.Model()).
		WithField("dimensions", provider.Dimensions()).
		Info("Generating embeddings")

	start := time.Now()
	if err := embedChunks(ctx, db, embedder, chunks, cfg.IngestEmbedBatchSize, log); err != nil {
		return err
	}
	if err := embedQuestions(ctx, db, embedder, pairs, cfg.IngestEmbedBatchSize, log); err != nil {
		return err
	}

	// Record how this embedding set was produced so the server refuses to
	// load it with a mismatched model or dimension.
	meta := corpus.EmbeddingMeta{
		SchemaVersion: corpus.SchemaVersion,
		Model:         provider.Model(),
		Dimensions:    provider.Dimensions(),
		DocPrefix:     embedding.TaskDocument,
		QueryPrefix:   embedding.TaskQuery,
	}
	if err := db.SetEmbeddingMeta(ctx, meta); err != nil {
		return fmt.Errorf("set embedding meta: %w", err)
	}

	log.WithField("duration", time.Since(start).Round(time.Second).String()).
		Info("Ingest complete")
	return nil
}

func embedChunks(ctx context.Context, db *storage.DB, embedder embedding.Embedder, chunks []corpus.Chunk, batchSize int, log *logger.Logger) error {
	for i := range chunks {
		text := chunks[i].EnrichedText
		if text == "" {
			text = chunks[i].Text
		}

		vec, err := embedder.EmbedDocument(ctx, text)
		if err != nil {
			return fmt.Errorf("embed chunk %s: %w", chunks[i].ID, err)
		}
		if err := db.UpsertChunkEmbedding(ctx, chunks[i].ID, vec); err != nil {
			return fmt.Errorf("store chunk embedding %s: %w", chunks[i].ID, err)
		}

		if batchSize > 0 && (i+1)%batchSize == 0 {
			log.WithField("done", i+1).WithField("total", len(chunks)).Info("Chunk embeddings progress")
		}
	}

	log.WithField("count", len(chunks)).Info("Chunk embeddings generated")
	return nil
}

func embedQuestions(ctx context.Context, db *storage.DB, embedder embedding.Embedder, pairs []corpus.QAPair, batchSize int, log *logger.Logger) error {
	for i := range pairs {
		vec, err := embedder.EmbedDocument(ctx, pairs[i].Question)
		if err != nil {
			return fmt.Errorf("embed question %q: %w", pairs[i].Question, err)
		}
		if err := db.UpsertQuestionEmbedding(ctx, pairs[i].Question, vec); err != nil {
			return fmt.Errorf("store question embedding %q: %w", pairs[i].Question, err)
		}

		if batchSize > 0 && (i+1)%batchSize == 0 {
			log.WithField("done", i+1).WithField("total", len(pairs)).Info("Question embeddings progress")
		}
	}

	log.WithField("count", len(pairs)).Info("Question embeddings generated")
	return nil
}

func readJSON[T any](path string) (T, error) {
	var out T

	data, err := os.ReadFile(path)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("parse %s: %w", path, err)
	}
	return out, nil
}
