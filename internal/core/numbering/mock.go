package numbering

import "context"

// MockGenerator is a test implementation of Generator.
// Use in unit tests to avoid storage dependencies.
type MockGenerator struct {
	GenerateFunc func(ctx context.Context, req Request) (string, error)
}

// Generate implements Generator.
func (m *MockGenerator) Generate(ctx context.Context, req Request) (string, error) {
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, req)
	}
	// Default: return predictable mock number
	return "MOCK-2026-001", nil
}

// Ensure compile-time interface compliance.
var _ Generator = (*MockGenerator)(nil)
