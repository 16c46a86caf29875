package collab

import (
	"context"
	"fmt"
	"strings"
)

// FakeTemplateRenderer renders a minimal deterministic prompt without a real
// template engine, used in tests and by cmd/ragctl's smoke-test mode. It
// understands exactly one template id, "rag-synthesis", matching the
// variables the ask flow passes (§4.7 step 7).
type FakeTemplateRenderer struct{}

func (FakeTemplateRenderer) Render(_ context.Context, templateID string, variables map[string]any) (RenderedPrompt, error) {
	if templateID != "rag-synthesis" {
		return RenderedPrompt{}, fmt.Errorf("fake template renderer: unknown template %q", templateID)
	}
	query, _ := variables["query"].(string)
	context_, _ := variables["context"].(string)
	lowConfidence, _ := variables["low_confidence"].(bool)

	var sys strings.Builder
	sys.WriteString("Answer the question using only the provided context. ")
	if lowConfidence {
		sys.WriteString("The retrieved context has low relevance; avoid inventing specifics not present in it. ")
	}

	user := fmt.Sprintf("Context:\n%s\n\nQuestion: %s", context_, query)
	return RenderedPrompt{System: sys.String(), User: user}, nil
}

// FakeLLMClient returns a deterministic, context-derived answer without
// calling any real model — useful for exercising the orchestrator's ask
// flow end-to-end in tests.
type FakeLLMClient struct {
	Answer string
}

func (f FakeLLMClient) Complete(_ context.Context, req CompletionRequest) (CompletionResult, error) {
	answer := f.Answer
	if answer == "" {
		answer = "Based on the provided context: " + firstLine(req.User)
	}
	return CompletionResult{Content: answer, Usage: Usage{PromptTokens: len(req.User) / 4, CompletionTokens: len(answer) / 4}}, nil
}

func (f FakeLLMClient) CompleteStream(ctx context.Context, req CompletionRequest, sink func(StreamChunk)) (CompletionResult, error) {
	result, err := f.Complete(ctx, req)
	if err != nil {
		return result, err
	}
	sink(StreamChunk{Text: result.Content})
	sink(StreamChunk{Done: true, Usage: result.Usage})
	return result, nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
