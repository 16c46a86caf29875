// Package vectorindex implements the vector index (C6): a durable,
// per-base SQLite file with a columnar chunks table (structured metadata
// columns plus a metadata_extra JSON blob) and a sqlite-vec chunks_vec
// virtual table for cosine-similarity ANN search. Grounded on the teacher's
// internal/storage/vector_index.go (vec0 table + vec_distance_cosine),
// encoding.go (float32 blob serialization), and file_writer.go's squirrel
// query construction.
package vectorindex

import (
	"database/sql"
	"fmt"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"
)

func init() {
	sqlite_vec.Auto()
}

const createChunksTable = `
CREATE TABLE IF NOT EXISTS chunks (
	id TEXT PRIMARY KEY,
	source_id TEXT NOT NULL,
	position INTEGER NOT NULL,
	text TEXT NOT NULL,
	content_type TEXT NOT NULL,
	file_type TEXT NOT NULL,
	language TEXT NOT NULL,
	programming_language TEXT NOT NULL DEFAULT '',
	source_path TEXT NOT NULL,
	file_name TEXT NOT NULL,
	content_hash TEXT NOT NULL,
	byte_start INTEGER NOT NULL,
	byte_end INTEGER NOT NULL,
	line_start INTEGER,
	line_end INTEGER,
	char_count INTEGER NOT NULL,
	token_count INTEGER NOT NULL DEFAULT 0,
	tags TEXT NOT NULL DEFAULT '[]',
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL,
	splitter_used TEXT NOT NULL,
	metadata_extra TEXT NOT NULL DEFAULT '{}'
)
`

const createIndexes = `
CREATE INDEX IF NOT EXISTS idx_chunks_source_id ON chunks(source_id);
CREATE INDEX IF NOT EXISTS idx_chunks_file_type ON chunks(file_type);
CREATE INDEX IF NOT EXISTS idx_chunks_language ON chunks(language);
CREATE INDEX IF NOT EXISTS idx_chunks_created_at ON chunks(created_at);
`

const metaTable = `
CREATE TABLE IF NOT EXISTS index_metadata (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
)
`

// Open opens (creating if absent) the SQLite file at path and ensures the
// chunks table exists. The chunks_vec virtual table is created lazily by
// ensureVectorTable once the embedding dimensionality is known (on first
// upsert), since vec0 tables are fixed-dimension at creation time.
func Open(path string) (*Index, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("vectorindex: open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1) // sqlite3 + cgo vec0: single writer, matches per-base exclusive lock

	if _, err := db.Exec(createChunksTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("vectorindex: create chunks table: %w", err)
	}
	if _, err := db.Exec(createIndexes); err != nil {
		db.Close()
		return nil, fmt.Errorf("vectorindex: create indexes: %w", err)
	}
	if _, err := db.Exec(metaTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("vectorindex: create metadata table: %w", err)
	}

	idx := &Index{db: db, path: path}
	idx.dimensions, _ = idx.loadDimensions()
	if idx.dimensions > 0 {
		if err := idx.ensureVectorTable(idx.dimensions); err != nil {
			db.Close()
			return nil, err
		}
	}
	return idx, nil
}

func (idx *Index) loadDimensions() (int, error) {
	var raw string
	err := idx.db.QueryRow("SELECT value FROM index_metadata WHERE key = 'dimensions'").Scan(&raw)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	var dims int
	_, err = fmt.Sscanf(raw, "%d", &dims)
	return dims, err
}

func (idx *Index) ensureVectorTable(dimensions int) error {
	ddl := fmt.Sprintf(`CREATE VIRTUAL TABLE IF NOT EXISTS chunks_vec USING vec0(chunk_id TEXT PRIMARY KEY, embedding FLOAT[%d])`, dimensions)
	if _, err := idx.db.Exec(ddl); err != nil {
		return fmt.Errorf("vectorindex: create chunks_vec: %w", err)
	}
	_, err := idx.db.Exec(
		`INSERT INTO index_metadata (key, value) VALUES ('dimensions', ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, fmt.Sprintf("%d", dimensions))
	return err
}
