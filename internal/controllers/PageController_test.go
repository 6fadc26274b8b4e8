package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zoblogs/internal/models"
	"zoblogs/internal/services"
	"zoblogs/internal/structures"
)

func newTestPageController(reader *mockReader, legacy *mockLegacy, cache *mockCache) *PageController {
	conf := &structures.Config{Platform: structures.PlatformConfig{Name: "zo-blogs", ChainID: 8453}}
	return NewPageController(conf, &mockLogger{}, reader, legacy, cache)
}

// --- Home tests ---

func TestHome_ReturnsSummary(t *testing.T) {
	reader := &mockReader{
		recent: []models.PlatformCoin{{Address: "0x3"}, {Address: "0x2"}},
		total:  7,
	}
	pc := newTestPageController(reader, &mockLegacy{}, newMockCache())

	rr := httptest.NewRecorder()
	pc.Home(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp homeResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "zo-blogs", resp.Platform)
	assert.Equal(t, int64(8453), resp.ChainID)
	assert.Equal(t, 7, resp.CoinCount)
	assert.Len(t, resp.RecentCoins, 2)
}

func TestHome_RegistryError(t *testing.T) {
	pc := newTestPageController(&mockReader{recentErr: errors.New("down")}, &mockLegacy{}, newMockCache())

	rr := httptest.NewRecorder()
	pc.Home(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

// --- Discover tests ---

func TestDiscover_CachesListing(t *testing.T) {
	reader := &mockReader{posts: []models.PlatformPost{{Address: "0xa", Name: "Post: A", Synthetic: true}}}
	cache := newMockCache()
	pc := newTestPageController(reader, &mockLegacy{}, cache)

	for i := 0; i < 2; i++ {
		rr := httptest.NewRecorder()
		pc.Discover(rr, httptest.NewRequest(http.MethodGet, "/discover", nil))
		assert.Equal(t, http.StatusOK, rr.Code)

		var resp discoverResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		require.Len(t, resp.Posts, 1)
		assert.True(t, resp.Posts[0].Synthetic)
	}

	assert.Equal(t, 1, reader.postsCalls)
	assert.Contains(t, cache.data, services.DiscoverCacheKey)
}

// liveOrZeroed mimics the reader: live stats while ctx is usable, zeroed
// synthetic nodes once it is cancelled.
func liveOrZeroed(ctx context.Context) []models.PlatformPost {
	if ctx.Err() != nil {
		return []models.PlatformPost{{Address: "0xa", MarketCap: "0", Synthetic: true}}
	}
	return []models.PlatformPost{{Address: "0xa", MarketCap: "5000"}}
}

func TestDiscover_DisconnectedClientDoesNotPoisonCache(t *testing.T) {
	reader := &mockReader{postsFn: liveOrZeroed}
	cache := newMockCache()
	pc := newTestPageController(reader, &mockLegacy{}, cache)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rr := httptest.NewRecorder()
	pc.Discover(rr, httptest.NewRequest(http.MethodGet, "/discover", nil).WithContext(ctx))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	pc.Discover(rr, httptest.NewRequest(http.MethodGet, "/discover", nil))

	var resp discoverResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.Posts, 1)
	assert.Equal(t, "5000", resp.Posts[0].MarketCap)
	assert.False(t, resp.Posts[0].Synthetic)
}

func TestDiscover_InvalidationDuringComputeSkipsCache(t *testing.T) {
	cache := newMockCache()
	reader := &mockReader{}
	reader.postsFn = func(context.Context) []models.PlatformPost {
		// a post is created while the listing is being built
		cache.Del(services.DiscoverCacheKey)
		return []models.PlatformPost{{Address: "0xa"}}
	}
	pc := newTestPageController(reader, &mockLegacy{}, cache)

	rr := httptest.NewRecorder()
	pc.Discover(rr, httptest.NewRequest(http.MethodGet, "/discover", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NotContains(t, cache.data, services.DiscoverCacheKey)
}

func TestDiscover_EmptyListingIsArray(t *testing.T) {
	pc := newTestPageController(&mockReader{posts: []models.PlatformPost{}}, &mockLegacy{}, newMockCache())

	rr := httptest.NewRecorder()
	pc.Discover(rr, httptest.NewRequest(http.MethodGet, "/discover", nil))

	assert.JSONEq(t, `{"posts":[]}`, rr.Body.String())
}

func TestDiscover_Legacy(t *testing.T) {
	legacy := &mockLegacy{previews: []models.PostPreview{{Cid: "bafy1", Title: "T", Excerpt: "E..."}}}
	reader := &mockReader{}
	pc := newTestPageController(reader, legacy, newMockCache())

	rr := httptest.NewRecorder()
	pc.Discover(rr, httptest.NewRequest(http.MethodGet, "/discover?legacy=1", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"posts":[{"cid":"bafy1","title":"T","excerpt":"E..."}]}`, rr.Body.String())
	assert.Zero(t, reader.postsCalls)
}

func TestDiscover_LegacyFlagSpellings(t *testing.T) {
	for _, q := range []string{"true", "TRUE", "t"} {
		legacy := &mockLegacy{previews: []models.PostPreview{}}
		reader := &mockReader{}
		pc := newTestPageController(reader, legacy, newMockCache())

		rr := httptest.NewRecorder()
		pc.Discover(rr, httptest.NewRequest(http.MethodGet, "/discover?legacy="+q, nil))
		assert.Zero(t, reader.postsCalls, q)
	}

	reader := &mockReader{}
	pc := newTestPageController(reader, &mockLegacy{}, newMockCache())
	rr := httptest.NewRecorder()
	pc.Discover(rr, httptest.NewRequest(http.MethodGet, "/discover?legacy=nope", nil))
	assert.Equal(t, 1, reader.postsCalls)
}

func TestWarm_CancelledRunLeavesCacheUntouched(t *testing.T) {
	reader := &mockReader{postsFn: liveOrZeroed}
	cache := newMockCache()
	cache.data[services.DiscoverCacheKey] = []byte(`{"posts":[{"address":"0xa","marketCap":"4000"}]}`)
	pc := newTestPageController(reader, &mockLegacy{}, cache)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := pc.Warm(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.JSONEq(t, `{"posts":[{"address":"0xa","marketCap":"4000"}]}`, string(cache.data[services.DiscoverCacheKey]))
}

func TestWarm_InvalidationDuringRunSkipsCache(t *testing.T) {
	cache := newMockCache()
	reader := &mockReader{}
	reader.postsFn = func(context.Context) []models.PlatformPost {
		cache.Del(services.DiscoverCacheKey)
		return []models.PlatformPost{{Address: "0xa"}}
	}
	pc := newTestPageController(reader, &mockLegacy{}, cache)

	n, err := pc.Warm(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.NotContains(t, cache.data, services.DiscoverCacheKey)
}

func TestWarm_FillsCache(t *testing.T) {
	reader := &mockReader{posts: []models.PlatformPost{{Address: "0xa"}, {Address: "0xb"}}}
	cache := newMockCache()
	pc := newTestPageController(reader, &mockLegacy{}, cache)

	n, err := pc.Warm(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	rr := httptest.NewRecorder()
	pc.Discover(rr, httptest.NewRequest(http.MethodGet, "/discover", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1, reader.postsCalls, "served from warmed cache")
}
