package testutil

import (
	"context"
	"sync"

	"github.com/alexanderramin/planpilot/internal/llm"
)

// FakeLLMClient returns a canned reply and records every request.
type FakeLLMClient struct {
	Text  string
	Model string
	Err   error
	// Nil makes Generate return (nil, nil), which real clients never do.
	Nil bool

	mu       sync.Mutex
	requests []llm.GenerateRequest
}

func (f *FakeLLMClient) Generate(_ context.Context, req llm.GenerateRequest) (*llm.GenerateResponse, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	if f.Err != nil {
		return nil, f.Err
	}
	if f.Nil {
		return nil, nil
	}
	model := f.Model
	if model == "" {
		model = "fake-model"
	}
	return &llm.GenerateResponse{Text: f.Text, Model: model}, nil
}

func (f *FakeLLMClient) Available(context.Context) bool {
	return f.Err == nil
}

// Requests returns the requests received so far.
func (f *FakeLLMClient) Requests() []llm.GenerateRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]llm.GenerateRequest(nil), f.requests...)
}
