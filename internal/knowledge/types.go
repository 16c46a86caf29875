// Package knowledge holds the data model shared across the chunking,
// embedding, indexing, and orchestration packages: content types, chunks,
// base configuration, and the RAG response shape returned to callers.
package knowledge

import "encoding/json"

// ProgrammingLanguage is the closed set of languages the code splitter
// understands. Code content whose language cannot be determined from its
// extension still carries ProgLangUnknown rather than failing detection.
type ProgrammingLanguage string

const (
	ProgLangRust       ProgrammingLanguage = "rust"
	ProgLangTypeScript ProgrammingLanguage = "typescript"
	ProgLangJavaScript ProgrammingLanguage = "javascript"
	ProgLangPython     ProgrammingLanguage = "python"
	ProgLangGo         ProgrammingLanguage = "go"
	ProgLangUnknown    ProgrammingLanguage = "unknown"
)

// ContentKind is the closed variant discriminant for ContentType.
type ContentKind string

const (
	KindText     ContentKind = "text"
	KindMarkdown ContentKind = "markdown"
	KindHtml     ContentKind = "html"
	KindPdf      ContentKind = "pdf"
	KindCode     ContentKind = "code"
	KindJson     ContentKind = "json"
	KindYaml     ContentKind = "yaml"
	KindUnknown  ContentKind = "unknown"
)

// ContentType classifies a source's bytes. Lang is only meaningful when
// Kind == KindCode; it is empty otherwise.
type ContentType struct {
	Kind ContentKind
	Lang ProgrammingLanguage
}

func (c ContentType) String() string {
	if c.Kind == KindCode {
		return string(KindCode) + "(" + string(c.Lang) + ")"
	}
	return string(c.Kind)
}

// Code builds a Code(lang) content type.
func Code(lang ProgrammingLanguage) ContentType { return ContentType{Kind: KindCode, Lang: lang} }

var (
	Text     = ContentType{Kind: KindText}
	Markdown = ContentType{Kind: KindMarkdown}
	Html     = ContentType{Kind: KindHtml}
	Pdf      = ContentType{Kind: KindPdf}
	Json     = ContentType{Kind: KindJson}
	Yaml     = ContentType{Kind: KindYaml}
	Unknown  = ContentType{Kind: KindUnknown}
)

// Language is the natural-language tag used for filtering, distinct from
// ProgrammingLanguage.
type Language string

const (
	LanguagePortuguese Language = "portuguese"
	LanguageEnglish    Language = "english"
	LanguageSpanish    Language = "spanish"
	LanguageUnknown    Language = "unknown"
)

// SplitterUsed records which splitter produced a chunk, for provenance.
type SplitterUsed string

const (
	SplitterText     SplitterUsed = "text"
	SplitterCode     SplitterUsed = "code"
	SplitterFallback SplitterUsed = "fallback"
)

// ByteRange is a half-open byte interval within a source's raw bytes.
type ByteRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// LineRange is a 1-indexed, inclusive line interval.
type LineRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// ChunkMetadata is stored both as structured columns in the vector index and
// as a JSON extension blob (Extra) for fields that don't need to be
// queryable.
type ChunkMetadata struct {
	ContentType         string       `json:"content_type"`
	FileType            string       `json:"file_type"`
	Language            Language     `json:"language"`
	ProgrammingLanguage  ProgrammingLanguage `json:"programming_language,omitempty"`
	SourcePath          string       `json:"source_path"`
	FileName            string       `json:"file_name"`
	ContentHash         string       `json:"content_hash"`
	ByteRange           ByteRange    `json:"byte_range"`
	LineRange           *LineRange   `json:"line_range,omitempty"`
	CharCount           int          `json:"char_count"`
	TokenCount          int          `json:"token_count,omitempty"`
	FileSizeBytes       int64        `json:"file_size_bytes"`
	FileLineCount       int          `json:"file_line_count"`
	FileModifiedAt       int64        `json:"file_modified_at"`
	Tags                []string     `json:"tags"`
	CreatedAt           int64        `json:"created_at"`
	UpdatedAt           int64        `json:"updated_at"`
	SplitterUsed        SplitterUsed `json:"splitter_used"`
	Extra               map[string]any `json:"extra,omitempty"`
}

// Chunk is a contiguous piece of a source's text with identity and metadata.
// Embedding is populated once the embedding engine has processed the chunk;
// it is nil beforehand.
type Chunk struct {
	ID        string        `json:"id"`
	SourceID  string        `json:"source_id"`
	Position  int           `json:"position"`
	Text      string        `json:"text"`
	Embedding []float32     `json:"embedding,omitempty"`
	Metadata  ChunkMetadata `json:"metadata"`
}

// SourceKind is the closed set of ingestible source types.
type SourceKind string

const (
	SourceFile SourceKind = "file"
	SourceURL  SourceKind = "url"
	SourceZip  SourceKind = "zip"
)

// KnowledgeSource is an append-only record of one ingested source.
type KnowledgeSource struct {
	SourceID   string     `json:"source_id"`
	PathOrURL  string     `json:"path"`
	SourceType SourceKind `json:"type"`
	IndexedAt  string     `json:"indexed_at"`
	ChunkCount int        `json:"chunk_count"`
	ByteCount  int64      `json:"byte_count"`
}

// EmbeddingConfig is the embedding half of a BaseConfig.
type EmbeddingConfig struct {
	Provider       string         `yaml:"provider"`
	Model          string         `yaml:"model"`
	Dimensions     int            `yaml:"dimensions"`
	Normalize      bool           `yaml:"normalize"`
	BatchSize      int            `yaml:"batch_size"`
	ProviderConfig map[string]any `yaml:"provider_config,omitempty"`
}

// BaseConfig is immutable once an index exists for the base, except via
// clean + re-learn.
type BaseConfig struct {
	Name             string          `yaml:"name"`
	Embedding        EmbeddingConfig `yaml:"embedding"`
	ChunkSize        int             `yaml:"chunk_size"`
	ChunkOverlap     int             `yaml:"chunk_overlap"`
	MaxContextTokens int             `yaml:"max_context_tokens"`
}

// BaseStats is the aggregate, overwritten-each-learn summary for a base.
type BaseStats struct {
	BaseName          string `json:"base_name"`
	LastLearnAt       string `json:"last_learn_at"`
	TotalSources      int    `json:"total_sources"`
	TotalChunks       int    `json:"total_chunks"`
	TotalBytes        int64  `json:"total_bytes"`
	EmbeddingProvider string `json:"embedding_provider"`
	EmbeddingModel    string `json:"embedding_model"`
}

// RagSourceRef is one entry in a RagResponse's sources list.
type RagSourceRef struct {
	Source   string `json:"source"`
	Location string `json:"location"`
	Snippet  string `json:"snippet"`
}

// RagResponse is the result of an ask flow. MaxScore and LowConfidence are
// diagnostics and are excluded from the user-visible JSON form (see
// MarshalUserJSON).
type RagResponse struct {
	Answer        string         `json:"answer"`
	Sources       []RagSourceRef `json:"sources"`
	MaxScore      float32        `json:"max_score"`
	LowConfidence bool           `json:"low_confidence"`
}

// userRagResponse is the shape cmd/ragctl prints to end users: just the
// answer and its sources, without the internal scoring diagnostics.
type userRagResponse struct {
	Answer  string         `json:"answer"`
	Sources []RagSourceRef `json:"sources"`
}

// MarshalUserJSON renders the user-visible subset of a RagResponse (answer
// and sources only), dropping MaxScore/LowConfidence which exist for
// logging and the low-confidence UI hint, not for the API response body.
func (r RagResponse) MarshalUserJSON() ([]byte, error) {
	return json.Marshal(userRagResponse{Answer: r.Answer, Sources: r.Sources})
}

// SearchFilters restricts a vector-index search to a metadata subset.
type SearchFilters struct {
	FileType     []string
	Language     []string
	Tags         []string
	CreatedAfter int64
}

// IsZero reports whether the caller supplied no filters at all, which is
// the signal the orchestrator's Ask path uses to derive defaults instead.
func (f SearchFilters) IsZero() bool {
	return len(f.FileType) == 0 && len(f.Language) == 0 && len(f.Tags) == 0 && f.CreatedAfter == 0
}
