package model

import (
	"context"
	"time"

	"clinex/pkg/core"
)

// MockModel returns a fixed reply, or an empty JSON object when none is set.
// Used for dry runs and tests.
type MockModel struct {
	NameValue    string
	ResponseText string
}

func (m MockModel) Name() string {
	if m.NameValue == "" {
		return "mock"
	}
	return m.NameValue
}

func (m MockModel) Generate(_ context.Context, _ string, _ core.GenerateOptions) (core.Response, error) {
	start := time.Now()
	content := m.ResponseText
	if content == "" {
		content = "{}"
	}
	return core.Response{
		Content: content,
		Latency: time.Since(start),
	}, nil
}
