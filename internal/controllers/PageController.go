package controllers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
	"github.com/spf13/cast"

	"zoblogs/internal/models"
	"zoblogs/internal/providers"
	"zoblogs/internal/services"
	"zoblogs/internal/structures"
)

const (
	recentCoinsLimit = 5

	// The cached listing is built detached from the request that triggered
	// it, bounded by this timeout instead.
	listingTimeout = 30 * time.Second
)

type homeResponse struct {
	Platform    string                `json:"platform"`
	ChainID     int64                 `json:"chainId"`
	CoinCount   int                   `json:"coinCount"`
	RecentCoins []models.PlatformCoin `json:"recentCoins"`
}

type discoverResponse struct {
	Posts []models.PlatformPost `json:"posts"`
}

type legacyDiscoverResponse struct {
	Posts []models.PostPreview `json:"posts"`
}

// PageController serves the read-mostly listing pages through the response
// cache.
type PageController struct {
	platformName string
	chainID      int64
	logger       providers.Logger
	reader       services.ReaderServiceInterface
	legacy       services.LegacyServiceInterface
	cache        providers.CacheProviderInterface
}

func NewPageController(conf *structures.Config, logger providers.Logger, reader services.ReaderServiceInterface, legacy services.LegacyServiceInterface, cache providers.CacheProviderInterface) *PageController {
	return &PageController{
		platformName: conf.Platform.Name,
		chainID:      conf.Platform.ChainID,
		logger:       logger,
		reader:       reader,
		legacy:       legacy,
		cache:        cache,
	}
}

func (pc *PageController) Home(w http.ResponseWriter, r *http.Request) {
	serveFromCacheOrCompute(w, pc.cache, services.HomeCacheKey, func() (any, bool, error) {
		recent, total, err := pc.reader.RecentCoins(r.Context(), recentCoinsLimit)
		if err != nil {
			pc.logger.Errorf(providers.TypeGet, "Failed to load registry: %s", err)
			return nil, false, err
		}
		return homeResponse{
			Platform:    pc.platformName,
			ChainID:     pc.chainID,
			CoinCount:   total,
			RecentCoins: recent,
		}, true, nil
	})
}

func (pc *PageController) Discover(w http.ResponseWriter, r *http.Request) {
	if cast.ToBool(r.URL.Query().Get("legacy")) {
		writeJSON(w, http.StatusOK, legacyDiscoverResponse{Posts: pc.legacy.Previews(r.Context())})
		return
	}
	serveFromCacheOrCompute(w, pc.cache, services.DiscoverCacheKey, func() (any, bool, error) {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), listingTimeout)
		defer cancel()

		resp := discoverResponse{Posts: pc.reader.FetchPlatformPosts(ctx)}
		if ctx.Err() != nil {
			pc.logger.Warnf(providers.TypeGet, "Discover listing cut short (%s), not caching it", ctx.Err())
			return resp, false, nil
		}
		return resp, true, nil
	})
}

// Warm rebuilds the discover listing into the cache ahead of requests and
// returns the number of posts listed. A listing cut short by ctx is not
// cached, nor is one that an invalidation raced with.
func (pc *PageController) Warm(ctx context.Context) (int, error) {
	gen := pc.cache.Generation()
	resp := discoverResponse{Posts: pc.reader.FetchPlatformPosts(ctx)}
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("discover listing incomplete: %w", err)
	}

	gson, err := json.Marshal(resp)
	if err != nil {
		return 0, err
	}
	if !pc.cache.SetIfGeneration(services.DiscoverCacheKey, gson, gen) {
		pc.logger.Debugf(providers.TypeApp, "Registry changed during warm-up, listing left uncached")
	}
	return len(resp.Posts), nil
}
