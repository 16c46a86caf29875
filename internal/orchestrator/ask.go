package orchestrator

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/mvp-joe/ragctl/internal/collab"
	"github.com/mvp-joe/ragctl/internal/content"
	"github.com/mvp-joe/ragctl/internal/embed"
	"github.com/mvp-joe/ragctl/internal/knowledge"
	"github.com/mvp-joe/ragctl/internal/vectorindex"
)

// noRelevantChunksAnswer is the canonical response body when nothing in the
// index clears minRelevanceScore — a fixed string instead of handing an
// empty context block to the LLM, which would otherwise be free to
// hallucinate an answer with no grounding at all.
const noRelevantChunksAnswer = "I could not find this information in the available documents."

// AskRequest is one retrieval-augmented query against a base.
type AskRequest struct {
	Base    string
	Query   string
	TopK    int
	Filters knowledge.SearchFilters
}

// Ask does not take the per-base exclusive lock: retrieval is read-only and
// concurrent with an in-progress learn is acceptable (spec §9's ownership
// model), SQLite's own locking serializes actual disk access.
func (o *Orchestrator) Ask(ctx context.Context, req AskRequest) (knowledge.RagResponse, error) {
	cfg, err := o.baseStore.LoadBaseConfig(req.Base)
	if err != nil {
		return knowledge.RagResponse{}, knowledge.NewError(knowledge.KindErrConfig, fmt.Sprintf("base %q has not been learned yet", req.Base), err)
	}

	topK := req.TopK
	if topK <= 0 {
		topK = defaultTopK
	}

	filters := req.Filters
	if filters.IsZero() {
		filters = deriveDefaultFilters(req.Query)
	}

	queryVecs, err := o.engine.EmbedTexts(ctx, req.Base, cfg.Embedding, []string{req.Query}, embed.ModeQuery)
	if err != nil {
		return knowledge.RagResponse{}, err
	}

	idx, err := vectorindex.Open(o.layout.IndexDBPath(req.Base))
	if err != nil {
		return knowledge.RagResponse{}, knowledge.NewError(knowledge.KindErrIndex, fmt.Sprintf("opening index for base %q", req.Base), err)
	}
	defer idx.Close()

	results, err := idx.Search(queryVecs[0], topK, filters)
	if err != nil {
		return knowledge.RagResponse{}, err
	}

	relevant := make([]vectorindex.Result, 0, len(results))
	for _, r := range results {
		if r.Score >= minRelevanceScore {
			relevant = append(relevant, r)
		}
	}

	var maxScore float32
	if len(relevant) > 0 {
		maxScore = relevant[0].Score
	}
	lowConfidence := maxScore < lowConfidenceThreshold

	if len(relevant) == 0 {
		return knowledge.RagResponse{
			Answer:        noRelevantChunksAnswer,
			Sources:       nil,
			MaxScore:      maxScore,
			LowConfidence: true,
		}, nil
	}

	sources := dedupeSourceRefs(relevant)

	rendered, err := o.renderer.Render(ctx, "rag-synthesis", map[string]any{
		"query":          req.Query,
		"context":        buildContextBlock(relevant),
		"low_confidence": lowConfidence,
	})
	if err != nil {
		return knowledge.RagResponse{}, knowledge.NewError(knowledge.KindErrTemplate, "rendering rag-synthesis prompt", err)
	}

	completion, err := o.llm.Complete(ctx, collab.CompletionRequest{
		System:      rendered.System,
		User:        rendered.User,
		MaxTokens:   cfg.MaxContextTokens,
		Temperature: 0.2,
	})
	if err != nil {
		return knowledge.RagResponse{}, knowledge.NewError(knowledge.KindErrLlm, "completing rag-synthesis prompt", err)
	}

	return knowledge.RagResponse{
		Answer:        completion.Content,
		Sources:       sources,
		MaxScore:      maxScore,
		LowConfidence: lowConfidence,
	}, nil
}

// buildContextBlock concatenates relevant chunks, highest-scoring first, as
// the context the template renderer hands the LLM.
func buildContextBlock(results []vectorindex.Result) string {
	var b strings.Builder
	for i, r := range results {
		if i > 0 {
			b.WriteString("\n\n---\n\n")
		}
		fmt.Fprintf(&b, "[%s]\n%s", r.Chunk.Metadata.SourcePath, r.Chunk.Text)
	}
	return b.String()
}

// dedupeSourceRefs collapses multiple chunk hits from the same
// (source, location) into a single RagSourceRef, keeping the
// highest-scoring snippet, and returns them sorted by descending score.
func dedupeSourceRefs(results []vectorindex.Result) []knowledge.RagSourceRef {
	type scored struct {
		ref   knowledge.RagSourceRef
		score float32
	}
	seen := make(map[string]int) // key -> index into out
	var out []scored

	for _, r := range results {
		location := locationFor(r.Chunk)
		key := r.Chunk.Metadata.SourcePath + "#" + location
		if idx, ok := seen[key]; ok {
			if r.Score > out[idx].score {
				out[idx].ref.Snippet = truncateSnippet(r.Chunk.Text)
				out[idx].score = r.Score
			}
			continue
		}
		seen[key] = len(out)
		out = append(out, scored{
			ref: knowledge.RagSourceRef{
				Source:   r.Chunk.Metadata.SourcePath,
				Location: location,
				Snippet:  truncateSnippet(r.Chunk.Text),
			},
			score: r.Score,
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].score > out[j].score })

	refs := make([]knowledge.RagSourceRef, len(out))
	for i, s := range out {
		refs[i] = s.ref
	}
	return refs
}

func locationFor(c knowledge.Chunk) string {
	if c.Metadata.LineRange != nil {
		return fmt.Sprintf("L%d-%d", c.Metadata.LineRange.Start, c.Metadata.LineRange.End)
	}
	return fmt.Sprintf("bytes %d-%d", c.Metadata.ByteRange.Start, c.Metadata.ByteRange.End)
}

// truncateSnippet bounds a chunk's echoed text to snippetMaxChars runes,
// cutting on a rune boundary so multi-byte UTF-8 text is never mangled.
func truncateSnippet(text string) string {
	runes := []rune(text)
	if len(runes) <= snippetMaxChars {
		return text
	}
	return string(runes[:snippetMaxChars]) + "…"
}

// codeTokenMarker matches punctuation and keywords common to source code
// but rare in natural-language questions — enough signal to prefer code
// chunks without needing a real tokenizer.
var codeTokenMarker = regexp.MustCompile(`[(){};]|=>|::|\bfunc\b|\bdef\b|\bclass\b|\bimport\b|\breturn\b|\bconst\b`)

// codeFileTypes lists every ContentType.String() form a code chunk can
// carry, for filtering retrieval down to "any programming language" when a
// query looks code-like.
var codeFileTypes = []string{
	knowledge.Code(knowledge.ProgLangRust).String(),
	knowledge.Code(knowledge.ProgLangTypeScript).String(),
	knowledge.Code(knowledge.ProgLangJavaScript).String(),
	knowledge.Code(knowledge.ProgLangPython).String(),
	knowledge.Code(knowledge.ProgLangGo).String(),
	knowledge.Code(knowledge.ProgLangUnknown).String(),
}

// deriveDefaultFilters implements the "no filters supplied" default: prefer
// documents in the query's own natural language, and prefer code chunks
// when the query itself looks code-like. Only called when the caller left
// req.Filters at its zero value — an explicit filter always wins.
func deriveDefaultFilters(query string) knowledge.SearchFilters {
	var filters knowledge.SearchFilters
	if lang := content.DetectLanguage([]byte(query)); lang != knowledge.LanguageUnknown {
		filters.Language = []string{string(lang)}
	}
	if codeTokenMarker.MatchString(query) {
		filters.FileType = codeFileTypes
	}
	return filters
}
