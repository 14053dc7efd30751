package storage

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/carequery/wac-search-go/internal/corpus"
	apperrors "github.com/carequery/wac-search-go/internal/errors"
)

// ReplaceCorpus replaces all chunks and Q&A pairs in a single transaction.
// Existing embeddings are dropped via cascade; ingest re-embeds afterwards,
// so the store never holds vectors from a previous corpus generation.
func (db *DB) ReplaceCorpus(ctx context.Context, chunks []corpus.Chunk, pairs []corpus.QAPair) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM chunks"); err != nil {
		return fmt.Errorf("clear chunks: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM qa_pairs"); err != nil {
		return fmt.Errorf("clear qa_pairs: %w", err)
	}

	chunkStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, section_id, section_title, subsection, text, full_text, source_url, category, enriched_text)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare chunk insert: %w", err)
	}
	defer func() { _ = chunkStmt.Close() }()

	for _, c := range chunks {
		if c.ID == "" {
			return apperrors.NewValidationError("id", "chunk ID cannot be empty")
		}
		if _, err := chunkStmt.ExecContext(ctx, c.ID, c.SectionID, c.SectionTitle, c.Subsection,
			c.Text, c.FullText, c.SourceURL, c.Category, c.EnrichedText); err != nil {
			return fmt.Errorf("insert chunk %s: %w", c.ID, err)
		}
	}

	qaStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO qa_pairs (question, answer, section_id, section_title, source_url)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare qa insert: %w", err)
	}
	defer func() { _ = qaStmt.Close() }()

	for _, p := range pairs {
		if p.Question == "" {
			return apperrors.NewValidationError("question", "question cannot be empty")
		}
		if _, err := qaStmt.ExecContext(ctx, p.Question, p.Answer, p.SectionID, p.SectionTitle, p.SourceURL); err != nil {
			return fmt.Errorf("insert qa pair %q: %w", p.Question, err)
		}
	}

	return tx.Commit()
}

// SetEmbeddingMeta records how the stored embedding sets were produced.
func (db *DB) SetEmbeddingMeta(ctx context.Context, meta corpus.EmbeddingMeta) error {
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO embedding_meta (id, schema_version, model, dimensions, doc_prefix, query_prefix)
		VALUES (1, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			schema_version = excluded.schema_version,
			model          = excluded.model,
			dimensions     = excluded.dimensions,
			doc_prefix     = excluded.doc_prefix,
			query_prefix   = excluded.query_prefix`,
		meta.SchemaVersion, meta.Model, meta.Dimensions, meta.DocPrefix, meta.QueryPrefix)
	if err != nil {
		return fmt.Errorf("set embedding meta: %w", err)
	}
	return nil
}

// GetEmbeddingMeta returns the stored embedding metadata.
// Returns ErrNotFound if no embeddings have ever been generated.
func (db *DB) GetEmbeddingMeta(ctx context.Context) (corpus.EmbeddingMeta, error) {
	var meta corpus.EmbeddingMeta
	err := db.conn.QueryRowContext(ctx, `
		SELECT schema_version, model, dimensions, doc_prefix, query_prefix
		FROM embedding_meta WHERE id = 1`).
		Scan(&meta.SchemaVersion, &meta.Model, &meta.Dimensions, &meta.DocPrefix, &meta.QueryPrefix)
	if err == sql.ErrNoRows {
		return meta, apperrors.ErrNotFound
	}
	if err != nil {
		return meta, fmt.Errorf("get embedding meta: %w", err)
	}
	return meta, nil
}

// UpsertChunkEmbedding stores the vector for a chunk.
func (db *DB) UpsertChunkEmbedding(ctx context.Context, chunkID string, vector []float32) error {
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO chunk_embeddings (chunk_id, vector) VALUES (?, ?)
		ON CONFLICT(chunk_id) DO UPDATE SET vector = excluded.vector`,
		chunkID, encodeVector(vector))
	if err != nil {
		return fmt.Errorf("upsert chunk embedding %s: %w", chunkID, err)
	}
	return nil
}

// UpsertQuestionEmbedding stores the vector for a curated question.
func (db *DB) UpsertQuestionEmbedding(ctx context.Context, question string, vector []float32) error {
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO question_embeddings (question, vector) VALUES (?, ?)
		ON CONFLICT(question) DO UPDATE SET vector = excluded.vector`,
		question, encodeVector(vector))
	if err != nil {
		return fmt.Errorf("upsert question embedding: %w", err)
	}
	return nil
}

// LoadCorpus loads the full corpus and both embedding maps into memory.
//
// wantDims is the configured embedding dimension; the stored embedding_meta
// must match it and the current schema version, otherwise loading fails with
// ErrEmbeddingMismatch. A corpus with no embeddings at all loads fine (the
// engine degrades to lexical-only scoring) — meta validation only applies
// when vectors exist.
func (db *DB) LoadCorpus(ctx context.Context, wantDims int) (*corpus.Corpus, error) {
	c := &corpus.Corpus{
		ChunkEmbeddings:    make(map[string][]float32),
		QuestionEmbeddings: make(map[string][]float32),
	}

	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, section_id, section_title, subsection, text, full_text, source_url, category, enriched_text
		FROM chunks ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("load chunks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var ch corpus.Chunk
		if err := rows.Scan(&ch.ID, &ch.SectionID, &ch.SectionTitle, &ch.Subsection,
			&ch.Text, &ch.FullText, &ch.SourceURL, &ch.Category, &ch.EnrichedText); err != nil {
			return nil, fmt.Errorf("scan chunk: %w", err)
		}
		c.Chunks = append(c.Chunks, ch)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chunks: %w", err)
	}

	qaRows, err := db.conn.QueryContext(ctx, `
		SELECT question, answer, section_id, section_title, source_url
		FROM qa_pairs ORDER BY question`)
	if err != nil {
		return nil, fmt.Errorf("load qa pairs: %w", err)
	}
	defer func() { _ = qaRows.Close() }()

	for qaRows.Next() {
		var p corpus.QAPair
		if err := qaRows.Scan(&p.Question, &p.Answer, &p.SectionID, &p.SectionTitle, &p.SourceURL); err != nil {
			return nil, fmt.Errorf("scan qa pair: %w", err)
		}
		c.QAPairs = append(c.QAPairs, p)
	}
	if err := qaRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate qa pairs: %w", err)
	}

	if err := db.loadEmbeddings(ctx, c); err != nil {
		return nil, err
	}

	if len(c.ChunkEmbeddings) > 0 || len(c.QuestionEmbeddings) > 0 {
		meta, err := db.GetEmbeddingMeta(ctx)
		if err != nil {
			return nil, fmt.Errorf("embeddings present but meta missing: %w", apperrors.ErrEmbeddingMismatch)
		}
		if meta.SchemaVersion != corpus.SchemaVersion {
			return nil, fmt.Errorf("stored schema version %d, want %d: %w",
				meta.SchemaVersion, corpus.SchemaVersion, apperrors.ErrEmbeddingMismatch)
		}
		if meta.Dimensions != wantDims {
			return nil, fmt.Errorf("stored embeddings have %d dimensions, configured %d: %w",
				meta.Dimensions, wantDims, apperrors.ErrEmbeddingMismatch)
		}
		c.Meta = meta
	}

	return c, nil
}

// loadEmbeddings fills both embedding maps.
func (db *DB) loadEmbeddings(ctx context.Context, c *corpus.Corpus) error {
	rows, err := db.conn.QueryContext(ctx, "SELECT chunk_id, vector FROM chunk_embeddings")
	if err != nil {
		return fmt.Errorf("load chunk embeddings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var id string
		var blob []byte
		if err := rows.Scan(&id, &blob); err != nil {
			return fmt.Errorf("scan chunk embedding: %w", err)
		}
		vec, err := decodeVector(blob)
		if err != nil {
			return fmt.Errorf("decode chunk embedding %s: %w", id, err)
		}
		c.ChunkEmbeddings[id] = vec
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate chunk embeddings: %w", err)
	}

	qRows, err := db.conn.QueryContext(ctx, "SELECT question, vector FROM question_embeddings")
	if err != nil {
		return fmt.Errorf("load question embeddings: %w", err)
	}
	defer func() { _ = qRows.Close() }()

	for qRows.Next() {
		var question string
		var blob []byte
		if err := qRows.Scan(&question, &blob); err != nil {
			return fmt.Errorf("scan question embedding: %w", err)
		}
		vec, err := decodeVector(blob)
		if err != nil {
			return fmt.Errorf("decode question embedding: %w", err)
		}
		c.QuestionEmbeddings[question] = vec
	}
	return qRows.Err()
}

// CountChunks returns the number of stored chunks.
func (db *DB) CountChunks(ctx context.Context) (int, error) {
	var n int
	err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM chunks").Scan(&n)
	return n, err
}

// CountQAPairs returns the number of stored Q&A pairs.
func (db *DB) CountQAPairs(ctx context.Context) (int, error) {
	var n int
	err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM qa_pairs").Scan(&n)
	return n, err
}

// CountChunkEmbeddings returns the number of stored chunk vectors.
func (db *DB) CountChunkEmbeddings(ctx context.Context) (int, error) {
	var n int
	err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM chunk_embeddings").Scan(&n)
	return n, err
}

// encodeVector serializes a float32 vector as little-endian bytes.
func encodeVector(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

// decodeVector deserializes a little-endian float32 vector.
func decodeVector(blob []byte) ([]float32, error) {
	if len(blob)%4 != 0 {
		return nil, fmt.Errorf("vector blob length %d is not a multiple of 4", len(blob))
	}
	vec := make([]float32, len(blob)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[i*4:]))
	}
	return vec, nil
}
