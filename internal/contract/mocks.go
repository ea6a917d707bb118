package contract

import (
	"context"

	"github.com/huangsam/gitgrade/schema"
	"github.com/stretchr/testify/mock"
)

// MockHostingClient is a mock implementation of the HostingClient interface.
type MockHostingClient struct {
	mock.Mock
}

var _ HostingClient = &MockHostingClient{} // Compile-time check

// FetchRepository mocks the FetchRepository method.
func (m *MockHostingClient) FetchRepository(ctx context.Context, owner, repo string) (schema.RepositoryMetadata, error) {
	args := m.Called(ctx, owner, repo)
	return args.Get(0).(schema.RepositoryMetadata), args.Error(1)
}

// FetchCommits mocks the FetchCommits method.
func (m *MockHostingClient) FetchCommits(ctx context.Context, owner, repo string, limit int) ([]schema.Commit, error) {
	args := m.Called(ctx, owner, repo, limit)
	commits, _ := args.Get(0).([]schema.Commit)
	return commits, args.Error(1)
}

// MockSemanticProvider is a mock implementation of the SemanticProvider interface.
type MockSemanticProvider struct {
	mock.Mock
}

var _ SemanticProvider = &MockSemanticProvider{} // Compile-time check

// Name mocks the Name method.
func (m *MockSemanticProvider) Name() string {
	return m.Called().String(0)
}

// AnalyzeBatch mocks the AnalyzeBatch method.
func (m *MockSemanticProvider) AnalyzeBatch(ctx context.Context, items []schema.SemanticItem) (BatchResponse, error) {
	args := m.Called(ctx, items)
	return args.Get(0).(BatchResponse), args.Error(1)
}
