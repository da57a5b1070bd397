package profileinator

import (
	"context"
	"sync/atomic"
)

// MockProvider is a mock implementation of Provider.
type MockProvider struct {
	AnalyzeFunc  func(ctx context.Context, image InputImage, instruction string) (string, error)
	GenerateFunc func(ctx context.Context, prompt string) (*GeneratedImage, error)
	CloseFunc    func() error

	analyzeCalls  atomic.Int64
	generateCalls atomic.Int64
}

func (m *MockProvider) Analyze(ctx context.Context, image InputImage, instruction string) (string, error) {
	m.analyzeCalls.Add(1)
	if m.AnalyzeFunc != nil {
		return m.AnalyzeFunc(ctx, image, instruction)
	}
	return `{"prompts": []}`, nil
}

func (m *MockProvider) Generate(ctx context.Context, prompt string) (*GeneratedImage, error) {
	m.generateCalls.Add(1)
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, prompt)
	}
	return &GeneratedImage{Data: []byte("fake-image"), MIMEType: "image/png"}, nil
}

func (m *MockProvider) Close() error {
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

func (m *MockProvider) AnalyzeCalls() int {
	return int(m.analyzeCalls.Load())
}

func (m *MockProvider) GenerateCalls() int {
	return int(m.generateCalls.Load())
}
