package controllers

import (
	"context"
	"errors"

	"zoblogs/internal/models"
	"zoblogs/internal/providers"
	"zoblogs/internal/services"
)

// --- local mocks (scoped to controller tests) ---

type mockLogger struct{}

func (m *mockLogger) Errorf(_ providers.TypeEnum, _ string, _ ...interface{}) {}
func (m *mockLogger) Warnf(_ providers.TypeEnum, _ string, _ ...interface{})  {}
func (m *mockLogger) Debugf(_ providers.TypeEnum, _ string, _ ...interface{}) {}
func (m *mockLogger) Infof(_ providers.TypeEnum, _ string, _ ...interface{})  {}
func (m *mockLogger) Fatalf(_ providers.TypeEnum, _ string, _ ...interface{}) {}
func (m *mockLogger) Close()                                                  {}

type mockCache struct {
	data map[string][]byte
	gen  uint64
}

func newMockCache() *mockCache                     { return &mockCache{data: make(map[string][]byte)} }
func (m *mockCache) Get(key string) ([]byte, bool) { v, ok := m.data[key]; return v, ok }
func (m *mockCache) Set(key string, value []byte)  { m.data[key] = value }
func (m *mockCache) Del(key string)                { m.gen++; delete(m.data, key) }
func (m *mockCache) Generation() uint64            { return m.gen }

func (m *mockCache) SetIfGeneration(key string, value []byte, gen uint64) bool {
	if gen != m.gen {
		return false
	}
	m.data[key] = value
	return true
}

type mockReader struct {
	details      map[string]*models.PostDetails
	detailsErr   error
	posts        []models.PlatformPost
	postsCalls   int
	userPosts    []models.PlatformPost
	userErr      error
	recent       []models.PlatformCoin
	total        int
	recentErr    error
	lastUserAddr string
	postsFn      func(ctx context.Context) []models.PlatformPost
}

func (m *mockReader) FetchPostDetails(_ context.Context, address string) (*models.PostDetails, error) {
	if m.detailsErr != nil {
		return nil, m.detailsErr
	}
	if d, ok := m.details[address]; ok {
		return d, nil
	}
	return nil, services.ErrCoinNotFound
}

func (m *mockReader) FetchPlatformPosts(ctx context.Context) []models.PlatformPost {
	m.postsCalls++
	if m.postsFn != nil {
		return m.postsFn(ctx)
	}
	return m.posts
}

func (m *mockReader) FetchUserPosts(_ context.Context, wallet string) ([]models.PlatformPost, error) {
	m.lastUserAddr = wallet
	return m.userPosts, m.userErr
}

func (m *mockReader) RecentCoins(_ context.Context, limit int) ([]models.PlatformCoin, int, error) {
	if m.recentErr != nil {
		return nil, 0, m.recentErr
	}
	if len(m.recent) > limit {
		return m.recent[:limit], m.total, nil
	}
	return m.recent, m.total, nil
}

type mockLegacy struct {
	uploaded []models.PostDocument
	cid      string
	err      error
	docs     map[string]*models.PostDocument
	previews []models.PostPreview
}

func (m *mockLegacy) Upload(_ context.Context, doc models.PostDocument) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	if doc.Title == "" || doc.Content == "" {
		return "", services.ErrValidation
	}
	m.uploaded = append(m.uploaded, doc)
	return m.cid, nil
}

func (m *mockLegacy) GetPost(_ context.Context, cid string) (*models.PostDocument, error) {
	if d, ok := m.docs[cid]; ok {
		return d, nil
	}
	return nil, errors.Join(services.ErrUpstream, errors.New("gateway status 404"))
}

func (m *mockLegacy) Previews(_ context.Context) []models.PostPreview {
	return m.previews
}

type mockPosts struct {
	input  services.CreatePostInput
	result *services.CreatePostResult
	err    error
}

func (m *mockPosts) CreatePost(_ context.Context, in services.CreatePostInput) (*services.CreatePostResult, error) {
	m.input = in
	return m.result, m.err
}

type mockTrades struct {
	req    models.TradeRequest
	result *models.TradeResult
	err    error
}

func (m *mockTrades) Trade(_ context.Context, req models.TradeRequest) (*models.TradeResult, error) {
	m.req = req
	return m.result, m.err
}
