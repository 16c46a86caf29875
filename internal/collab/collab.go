// Package collab defines the external collaborator contracts the
// orchestrator depends on but does not implement: the prompt-template
// renderer and the LLM completion client. Both are out of scope per spec
// §1 — this package only states the interfaces, the way the teacher's
// internal/mcp package depends on an injected EmbeddingProvider interface
// rather than owning a concrete implementation.
package collab

import "context"

// RenderedPrompt is what a TemplateRenderer produces: an optional system
// message and a required user message.
type RenderedPrompt struct {
	System string
	User   string
}

// TemplateRenderer materializes a system+user payload from a named template
// and a variable map.
type TemplateRenderer interface {
	Render(ctx context.Context, templateID string, variables map[string]any) (RenderedPrompt, error)
}

// CompletionRequest is the input to a non-streaming LLM completion.
type CompletionRequest struct {
	System      string
	User        string
	Model       string
	MaxTokens   int
	Temperature float64
}

// Usage reports token accounting for a completion.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
}

// CompletionResult is the output of a non-streaming LLM completion.
type CompletionResult struct {
	Content string
	Usage   Usage
}

// StreamChunk is one piece of a streaming completion; the terminal chunk
// carries Done=true and the final Usage.
type StreamChunk struct {
	Text  string
	Done  bool
	Usage Usage
}

// LLMClient produces completions, buffered or streamed.
type LLMClient interface {
	Complete(ctx context.Context, req CompletionRequest) (CompletionResult, error)
	CompleteStream(ctx context.Context, req CompletionRequest, sink func(StreamChunk)) (CompletionResult, error)
}
