// Package sourcetracker implements the append-only source log (C7):
// sources.jsonl grows one line per ingested source, and a small stats.json
// document is overwritten on every learn via the teacher's
// write-temp-then-rename idiom (internal/indexer/writer.go's AtomicWriter).
package sourcetracker

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mvp-joe/ragctl/internal/knowledge"
)

// Tracker owns one base's sources.jsonl and stats.json files.
type Tracker struct {
	sourcesPath string
	statsPath   string
}

func New(baseDir string) *Tracker {
	return &Tracker{
		sourcesPath: filepath.Join(baseDir, "sources.jsonl"),
		statsPath:   filepath.Join(baseDir, "stats.json"),
	}
}

// TrackSource appends one line to sources.jsonl: open, write the full line
// (including its trailing newline), flush, close — never a partial line is
// left if the process dies mid-write.
func (t *Tracker) TrackSource(source knowledge.KnowledgeSource) error {
	line, err := json.Marshal(source)
	if err != nil {
		return fmt.Errorf("sourcetracker: marshal source: %w", err)
	}

	f, err := os.OpenFile(t.sourcesPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("sourcetracker: open %s: %w", t.sourcesPath, err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("sourcetracker: append source: %w", err)
	}
	return f.Sync()
}

// ListSources parses every line of sources.jsonl, in file order (which is
// learn-pass order, per the ordering invariant P2). A missing file is an
// empty list, not an error.
func (t *Tracker) ListSources() ([]knowledge.KnowledgeSource, error) {
	f, err := os.Open(t.sourcesPath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("sourcetracker: open %s: %w", t.sourcesPath, err)
	}
	defer f.Close()

	var sources []knowledge.KnowledgeSource
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var s knowledge.KnowledgeSource
		if err := json.Unmarshal(line, &s); err != nil {
			return nil, fmt.Errorf("sourcetracker: parse source line: %w", err)
		}
		sources = append(sources, s)
	}
	return sources, scanner.Err()
}

// Clear deletes the source log. Deleting an absent file is a no-op, so
// clean() is idempotent (P4).
func (t *Tracker) Clear() error {
	if err := os.Remove(t.sourcesPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("sourcetracker: clear %s: %w", t.sourcesPath, err)
	}
	return nil
}

// WriteStats overwrites stats.json atomically: write to a temp file in the
// same directory, then rename over the target, so a reader never observes a
// partially written document.
func (t *Tracker) WriteStats(stats knowledge.BaseStats) error {
	data, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return fmt.Errorf("sourcetracker: marshal stats: %w", err)
	}

	dir := filepath.Dir(t.statsPath)
	tmp, err := os.CreateTemp(dir, ".stats-*.json.tmp")
	if err != nil {
		return fmt.Errorf("sourcetracker: create temp stats file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("sourcetracker: write temp stats file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sourcetracker: sync temp stats file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("sourcetracker: close temp stats file: %w", err)
	}
	if err := os.Rename(tmpPath, t.statsPath); err != nil {
		return fmt.Errorf("sourcetracker: rename stats file into place: %w", err)
	}
	return nil
}

// ReadStats reads stats.json. A missing file returns the zero value and no
// error — a base that has never completed a learn has no stats yet.
func (t *Tracker) ReadStats() (knowledge.BaseStats, error) {
	data, err := os.ReadFile(t.statsPath)
	if os.IsNotExist(err) {
		return knowledge.BaseStats{}, nil
	}
	if err != nil {
		return knowledge.BaseStats{}, fmt.Errorf("sourcetracker: read stats: %w", err)
	}
	var stats knowledge.BaseStats
	if err := json.Unmarshal(data, &stats); err != nil {
		return knowledge.BaseStats{}, fmt.Errorf("sourcetracker: parse stats: %w", err)
	}
	return stats, nil
}

// ClearStats deletes stats.json; part of the clean flow alongside Clear.
func (t *Tracker) ClearStats() error {
	if err := os.Remove(t.statsPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("sourcetracker: clear stats: %w", err)
	}
	return nil
}
