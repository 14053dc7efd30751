package storage

import "database/sql"

// InitSchema creates all tables if they do not exist.
//
// Chunk IDs are only stable within one corpus generation; ingest rewrites
// chunks and their embeddings in a single transaction, so the two tables
// never mix generations.
func InitSchema(conn *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS chunks (
		id            TEXT PRIMARY KEY,
		section_id    TEXT NOT NULL,
		section_title TEXT NOT NULL,
		subsection    TEXT NOT NULL DEFAULT '',
		text          TEXT NOT NULL,
		full_text     TEXT NOT NULL DEFAULT '',
		source_url    TEXT NOT NULL DEFAULT '',
		category      TEXT NOT NULL DEFAULT '',
		enriched_text TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_chunks_section ON chunks(section_id);

	CREATE TABLE IF NOT EXISTS qa_pairs (
		question      TEXT PRIMARY KEY,
		answer        TEXT NOT NULL,
		section_id    TEXT NOT NULL,
		section_title TEXT NOT NULL DEFAULT '',
		source_url    TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS chunk_embeddings (
		chunk_id TEXT PRIMARY KEY REFERENCES chunks(id) ON DELETE CASCADE,
		vector   BLOB NOT NULL
	);

	CREATE TABLE IF NOT EXISTS question_embeddings (
		question TEXT PRIMARY KEY REFERENCES qa_pairs(question) ON DELETE CASCADE,
		vector   BLOB NOT NULL
	);

	CREATE TABLE IF NOT EXISTS embedding_meta (
		id             INTEGER PRIMARY KEY CHECK (id = 1),
		schema_version INTEGER NOT NULL,
		model          TEXT NOT NULL,
		dimensions     INTEGER NOT NULL,
		doc_prefix     TEXT NOT NULL,
		query_prefix   TEXT NOT NULL
	);
	`

	_, err := conn.Exec(schema)
	return err
}
