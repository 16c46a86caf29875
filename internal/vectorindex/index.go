package vectorindex

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	sq "github.com/Masterminds/squirrel"
	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"

	"github.com/mvp-joe/ragctl/internal/knowledge"
)

// Index is one base's durable vector store: a SQLite file holding the
// chunks table and its chunks_vec companion. Not shared across flows — each
// learn/ask opens its own handle, per the ownership model in spec §9.
type Index struct {
	db         *sql.DB
	path       string
	dimensions int
}

// Close releases the underlying SQLite connection.
func (idx *Index) Close() error { return idx.db.Close() }

// Flush forces durability of in-memory writes. SQLite in rollback-journal
// mode is durable on commit already; this exists so callers don't need to
// know that and can still call flush() per the C6 contract.
func (idx *Index) Flush() error {
	_, err := idx.db.Exec("PRAGMA wal_checkpoint(FULL)")
	return err
}

// Result is one scored hit from Search.
type Result struct {
	Chunk knowledge.Chunk
	Score float32
}

// UpsertChunks atomically appends (or replaces, by id) a batch of chunks.
// The first call on a fresh index fixes the store's embedding dimension;
// subsequent upserts with a different dimension fail until Reset.
func (idx *Index) UpsertChunks(chunks []knowledge.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	dim := len(chunks[0].Embedding)
	if idx.dimensions == 0 {
		if err := idx.ensureVectorTable(dim); err != nil {
			return err
		}
		idx.dimensions = dim
	}
	for _, c := range chunks {
		if len(c.Embedding) != idx.dimensions {
			return knowledge.NewError(knowledge.KindErrIndex,
				fmt.Sprintf("chunk %s has %d-dim embedding, index is fixed at %d — reset required to change dimensions", c.ID, len(c.Embedding), idx.dimensions), nil)
		}
	}

	tx, err := idx.db.Begin()
	if err != nil {
		return fmt.Errorf("vectorindex: begin upsert tx: %w", err)
	}
	defer tx.Rollback()

	insert := sq.Insert("chunks").
		Columns("id", "source_id", "position", "text", "content_type", "file_type", "language",
			"programming_language", "source_path", "file_name", "content_hash",
			"byte_start", "byte_end", "line_start", "line_end", "char_count", "token_count",
			"tags", "created_at", "updated_at", "splitter_used", "metadata_extra").
		RunWith(tx)

	for _, c := range chunks {
		m := c.Metadata
		tagsJSON, _ := json.Marshal(m.Tags)
		extraJSON, _ := json.Marshal(m.Extra)
		var lineStart, lineEnd any
		if m.LineRange != nil {
			lineStart, lineEnd = m.LineRange.Start, m.LineRange.End
		}

		if _, err := sq.Delete("chunks").Where(sq.Eq{"id": c.ID}).RunWith(tx).Exec(); err != nil {
			return fmt.Errorf("vectorindex: delete existing chunk %s: %w", c.ID, err)
		}
		if _, err := sq.Delete("chunks_vec").Where(sq.Eq{"chunk_id": c.ID}).RunWith(tx).Exec(); err != nil {
			return fmt.Errorf("vectorindex: delete existing vector %s: %w", c.ID, err)
		}

		insert = insert.Values(c.ID, c.SourceID, c.Position, c.Text, m.ContentType, m.FileType, string(m.Language),
			string(m.ProgrammingLanguage), m.SourcePath, m.FileName, m.ContentHash,
			m.ByteRange.Start, m.ByteRange.End, lineStart, lineEnd, m.CharCount, m.TokenCount,
			string(tagsJSON), m.CreatedAt, m.UpdatedAt, string(m.SplitterUsed), string(extraJSON))

		blob, err := sqlite_vec.SerializeFloat32(c.Embedding)
		if err != nil {
			return fmt.Errorf("vectorindex: serialize embedding for %s: %w", c.ID, err)
		}
		if _, err := tx.Exec("INSERT INTO chunks_vec (chunk_id, embedding) VALUES (?, ?)", c.ID, blob); err != nil {
			return fmt.Errorf("vectorindex: insert vector %s: %w", c.ID, err)
		}
	}

	if _, err := insert.Exec(); err != nil {
		return fmt.Errorf("vectorindex: insert chunks: %w", err)
	}

	return tx.Commit()
}

// Filters restricts Search to metadata matching every non-empty field.
type Filters = knowledge.SearchFilters

// Search returns the top_k nearest neighbors to embedding by cosine
// similarity among rows passing filters, tie-broken by lower source_id then
// lower position for determinism.
func (idx *Index) Search(embedding []float32, topK int, filters Filters) ([]Result, error) {
	if idx.dimensions == 0 {
		return nil, nil
	}
	if len(embedding) != idx.dimensions {
		return nil, knowledge.NewError(knowledge.KindErrRetrieval,
			fmt.Sprintf("query embedding has %d dims, index expects %d", len(embedding), idx.dimensions), nil)
	}
	if topK <= 0 {
		topK = 10
	}

	allowed, err := idx.candidateIDs(filters)
	if err != nil {
		return nil, err
	}
	if allowed != nil && len(allowed) == 0 {
		return nil, nil
	}

	blob, err := sqlite_vec.SerializeFloat32(embedding)
	if err != nil {
		return nil, fmt.Errorf("vectorindex: serialize query embedding: %w", err)
	}

	// Over-fetch beyond topK so the candidate filter (applied in Go, since
	// vec0 KNN doesn't join structured-column predicates) still yields topK
	// results when the filter excludes some of the nearest rows.
	fetchLimit := topK
	if allowed != nil {
		fetchLimit = topK + len(allowed)
	} else {
		fetchLimit = topK * 4
		if fetchLimit < topK {
			fetchLimit = topK
		}
	}

	rows, err := idx.db.Query(
		`SELECT chunk_id, distance FROM chunks_vec WHERE embedding MATCH ? AND k = ? ORDER BY distance`,
		blob, fetchLimit)
	if err != nil {
		return nil, fmt.Errorf("vectorindex: knn query: %w", err)
	}
	defer rows.Close()

	type hit struct {
		id       string
		distance float64
	}
	var hits []hit
	for rows.Next() {
		var h hit
		if err := rows.Scan(&h.id, &h.distance); err != nil {
			return nil, err
		}
		if allowed != nil && !allowed[h.id] {
			continue
		}
		hits = append(hits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(hits))
	for _, h := range hits {
		c, err := idx.loadChunk(h.id)
		if err != nil {
			continue
		}
		// sqlite-vec's vec_distance_cosine is a distance (0 = identical);
		// the index contract wants a similarity score in [-1, 1].
		results = append(results, Result{Chunk: c, Score: float32(1 - h.distance)})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		if results[i].Chunk.SourceID != results[j].Chunk.SourceID {
			return results[i].Chunk.SourceID < results[j].Chunk.SourceID
		}
		return results[i].Chunk.Position < results[j].Chunk.Position
	})

	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// candidateIDs evaluates the structured-column metadata pre-filter and
// returns the allowed chunk ids, or nil when filters is empty (meaning "no
// restriction").
func (idx *Index) candidateIDs(filters Filters) (map[string]bool, error) {
	if filters.IsZero() {
		return nil, nil
	}

	q := sq.Select("id", "tags").From("chunks")
	if len(filters.FileType) > 0 {
		q = q.Where(sq.Eq{"file_type": filters.FileType})
	}
	if len(filters.Language) > 0 {
		q = q.Where(sq.Eq{"language": filters.Language})
	}
	if filters.CreatedAfter > 0 {
		q = q.Where(sq.Gt{"created_at": filters.CreatedAfter})
	}

	rows, err := q.RunWith(idx.db).Query()
	if err != nil {
		return nil, fmt.Errorf("vectorindex: filter query: %w", err)
	}
	defer rows.Close()

	out := make(map[string]bool)
	for rows.Next() {
		var id, tagsJSON string
		if err := rows.Scan(&id, &tagsJSON); err != nil {
			return nil, err
		}
		if len(filters.Tags) > 0 {
			var tags []string
			_ = json.Unmarshal([]byte(tagsJSON), &tags)
			if !containsAll(tags, filters.Tags) {
				continue
			}
		}
		out[id] = true
	}
	return out, rows.Err()
}

func containsAll(haystack, needles []string) bool {
	set := make(map[string]bool, len(haystack))
	for _, h := range haystack {
		set[h] = true
	}
	for _, n := range needles {
		if !set[n] {
			return false
		}
	}
	return true
}

func (idx *Index) loadChunk(id string) (knowledge.Chunk, error) {
	row := idx.db.QueryRow(`
		SELECT id, source_id, position, text, content_type, file_type, language, programming_language,
		       source_path, file_name, content_hash, byte_start, byte_end, line_start, line_end,
		       char_count, token_count, tags, created_at, updated_at, splitter_used, metadata_extra
		FROM chunks WHERE id = ?`, id)

	var c knowledge.Chunk
	var m knowledge.ChunkMetadata
	var lang, progLang, tagsJSON, extraJSON, splitter string
	var lineStart, lineEnd sql.NullInt64

	err := row.Scan(&c.ID, &c.SourceID, &c.Position, &c.Text, &m.ContentType, &m.FileType, &lang, &progLang,
		&m.SourcePath, &m.FileName, &m.ContentHash, &m.ByteRange.Start, &m.ByteRange.End, &lineStart, &lineEnd,
		&m.CharCount, &m.TokenCount, &tagsJSON, &m.CreatedAt, &m.UpdatedAt, &splitter, &extraJSON)
	if err != nil {
		return c, err
	}

	m.Language = knowledge.Language(lang)
	m.ProgrammingLanguage = knowledge.ProgrammingLanguage(progLang)
	m.SplitterUsed = knowledge.SplitterUsed(splitter)
	if lineStart.Valid && lineEnd.Valid {
		m.LineRange = &knowledge.LineRange{Start: int(lineStart.Int64), End: int(lineEnd.Int64)}
	}
	_ = json.Unmarshal([]byte(tagsJSON), &m.Tags)
	_ = json.Unmarshal([]byte(extraJSON), &m.Extra)
	c.Metadata = m
	return c, nil
}

// Stats returns total chunk count and distinct source_id count.
type Stats struct {
	TotalChunks  int
	TotalSources int
	Dimensions   int
}

func (idx *Index) Stats() (Stats, error) {
	var s Stats
	s.Dimensions = idx.dimensions
	if err := idx.db.QueryRow("SELECT COUNT(*) FROM chunks").Scan(&s.TotalChunks); err != nil {
		return s, err
	}
	if err := idx.db.QueryRow("SELECT COUNT(DISTINCT source_id) FROM chunks").Scan(&s.TotalSources); err != nil {
		return s, err
	}
	return s, nil
}

// Reset drops all rows and the chunks_vec table schema so a subsequent
// UpsertChunks can rebuild with a different dimensionality.
func (idx *Index) Reset() error {
	if _, err := idx.db.Exec("DELETE FROM chunks"); err != nil {
		return fmt.Errorf("vectorindex: reset chunks: %w", err)
	}
	if _, err := idx.db.Exec("DROP TABLE IF EXISTS chunks_vec"); err != nil {
		return fmt.Errorf("vectorindex: reset chunks_vec: %w", err)
	}
	if _, err := idx.db.Exec("DELETE FROM index_metadata"); err != nil {
		return fmt.Errorf("vectorindex: reset metadata: %w", err)
	}
	idx.dimensions = 0
	return nil
}

// DeleteFile removes the underlying SQLite file entirely, used by the
// orchestrator's clean flow (which keeps the base's config.yaml).
func DeleteFile(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
