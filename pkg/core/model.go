package core

import "context"

// Model generates responses for prompts. Implementations wrap a single LLM
// provider and are safe for concurrent use by extraction workers.
type Model interface {
	Name() string
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (Response, error)
}
