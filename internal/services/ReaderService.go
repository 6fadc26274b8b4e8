package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/alitto/pond/v2"
	"github.com/ethereum/go-ethereum/common"

	"zoblogs/internal/ipfs"
	"zoblogs/internal/models"
	"zoblogs/internal/protocol"
	"zoblogs/internal/providers"
	"zoblogs/internal/registry"
	"zoblogs/internal/structures"
)

type ReaderServiceInterface interface {
	FetchPostDetails(ctx context.Context, address string) (*models.PostDetails, error)
	FetchPlatformPosts(ctx context.Context) []models.PlatformPost
	FetchUserPosts(ctx context.Context, wallet string) ([]models.PlatformPost, error)
	RecentCoins(ctx context.Context, limit int) ([]models.PlatformCoin, int, error)
}

// ReaderService joins registry entries with live indexer data. When the
// indexer has nothing for a registered coin, a synthetic record built from
// the registry entry stands in.
type ReaderService struct {
	platformName string
	registry     registry.RegistryInterface
	indexer      protocol.IndexerInterface
	storage      ipfs.ClientInterface
	logger       providers.Logger
	pool         pond.Pool
}

func NewReaderService(conf *structures.Config, reg registry.RegistryInterface, indexer protocol.IndexerInterface, storage ipfs.ClientInterface, pool pond.Pool, logger providers.Logger) ReaderServiceInterface {
	return &ReaderService{
		platformName: conf.Platform.Name,
		registry:     reg,
		indexer:      indexer,
		storage:      storage,
		logger:       logger,
		pool:         pool,
	}
}

// FetchPostDetails resolves a coin address into a post. Metadata is
// best-effort. See fallback for what happens when the indexer misses.
func (rs *ReaderService) FetchPostDetails(ctx context.Context, address string) (*models.PostDetails, error) {
	if !common.IsHexAddress(address) {
		return nil, fmt.Errorf("%w: invalid coin address %q", ErrValidation, address)
	}

	coin, err := rs.indexer.GetCoin(ctx, address)
	if err != nil {
		return rs.fallback(ctx, address, err)
	}

	var meta *models.CoinMetadata
	if coin.TokenUri != "" {
		var m models.CoinMetadata
		if err := rs.storage.FetchJSON(ctx, coin.TokenUri, &m); err != nil {
			rs.logger.Warnf(providers.TypeGet, "Failed to fetch metadata for %s: %s", address, err)
		} else {
			meta = &m
		}
	}

	post := models.Post{
		Title:     models.TitleFromCoinName(coin.Name),
		Content:   coin.Description,
		Author:    coin.CreatorAddress,
		CreatedAt: coin.CreatedAt,
	}
	if meta != nil {
		if meta.Name != "" {
			post.Title = models.TitleFromCoinName(meta.Name)
		}
		if meta.Description != "" {
			post.Content = meta.Description
		}
		post.Image = meta.Image
	}

	return &models.PostDetails{
		Post: post,
		Coin: models.CoinData{
			Address:     coin.Address,
			Symbol:      coin.Symbol,
			MarketCap:   coin.MarketCap,
			Volume24h:   coin.Volume24h,
			Holders:     coin.UniqueHolders,
			TotalSupply: coin.TotalSupply,
			Uri:         coin.TokenUri,
		},
	}, nil
}

// fallback handles an indexer miss or failure for a single coin. Registered
// coins degrade to a synthetic record; unknown ones surface the failure.
func (rs *ReaderService) fallback(ctx context.Context, address string, indexErr error) (*models.PostDetails, error) {
	pc, ok, err := rs.registry.FindPlatformCoin(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("lookup %s in registry: %w", address, err)
	}

	if ok {
		rs.logger.Warnf(providers.TypeGet, "Indexer has no data for %s (%s), serving registry entry", address, indexErr)
		node := rs.syntheticNode(pc)
		return &models.PostDetails{
			Post: models.Post{
				Title:     pc.Title,
				Content:   node.Description,
				Author:    pc.Creator,
				CreatedAt: pc.CreatedAt,
			},
			Coin: models.CoinData{
				Address:     pc.Address,
				Symbol:      pc.Symbol,
				MarketCap:   node.MarketCap,
				Volume24h:   node.Volume24h,
				Holders:     node.UniqueHolders,
				TotalSupply: node.TotalSupply,
			},
			Synthetic: true,
		}, nil
	}

	if protocol.IsNotFound(indexErr) {
		return nil, fmt.Errorf("%w: %s", ErrCoinNotFound, address)
	}
	return nil, fmt.Errorf("%w: %w", ErrUpstream, indexErr)
}

// FetchPlatformPosts lists every registered coin in registry order. It
// never fails: a registry error yields an empty listing.
func (rs *ReaderService) FetchPlatformPosts(ctx context.Context) []models.PlatformPost {
	coins, err := rs.registry.GetPlatformCoins(ctx)
	if err != nil {
		rs.logger.Errorf(providers.TypeGet, "Failed to fetch platform posts: %s", err)
		return []models.PlatformPost{}
	}
	return rs.fetchNodes(ctx, coins)
}

func (rs *ReaderService) FetchUserPosts(ctx context.Context, wallet string) ([]models.PlatformPost, error) {
	if !common.IsHexAddress(wallet) {
		return nil, fmt.Errorf("%w: invalid wallet address %q", ErrValidation, wallet)
	}

	// creators are indexed by checksum address
	wallet = common.HexToAddress(wallet).Hex()
	addresses, err := rs.registry.GetUserPostCoins(ctx, wallet)
	if err != nil {
		return nil, err
	}
	if len(addresses) == 0 {
		return []models.PlatformPost{}, nil
	}

	reg, err := rs.registry.GetPlatformRegistry(ctx)
	if err != nil {
		return nil, err
	}

	coins := make([]models.PlatformCoin, 0, len(addresses))
	for _, a := range addresses {
		pc, ok := reg.Find(a)
		if !ok {
			// Index entry without a registry entry: only live data can describe it.
			pc = models.PlatformCoin{Address: a, Creator: wallet}
		}
		coins = append(coins, pc)
	}
	return rs.fetchNodes(ctx, coins), nil
}

// RecentCoins returns up to limit of the newest registry entries, newest
// first, plus the total count.
func (rs *ReaderService) RecentCoins(ctx context.Context, limit int) ([]models.PlatformCoin, int, error) {
	coins, err := rs.registry.GetPlatformCoins(ctx)
	if err != nil {
		return nil, 0, err
	}

	recent := make([]models.PlatformCoin, 0, min(limit, len(coins)))
	for i := len(coins) - 1; i >= 0 && len(recent) < limit; i-- {
		recent = append(recent, coins[i])
	}
	return recent, len(coins), nil
}

// fetchNodes queries the indexer for every coin on the worker pool.
// Results keep the order of coins. Entries with neither live data nor a
// registered title are dropped.
func (rs *ReaderService) fetchNodes(ctx context.Context, coins []models.PlatformCoin) []models.PlatformPost {
	nodes := make([]*models.PlatformPost, len(coins))

	group := rs.pool.NewGroupContext(ctx)
	groupCtx := group.Context()
	for i, pc := range coins {
		group.Submit(func() {
			coin, err := rs.indexer.GetCoin(groupCtx, pc.Address)
			switch {
			case err == nil:
				nodes[i] = liveNode(coin, pc)
			case pc.Title == "":
				rs.logger.Warnf(providers.TypeGet, "No data for unregistered coin %s: %s", pc.Address, err)
			default:
				if !protocol.IsNotFound(err) {
					rs.logger.Errorf(providers.TypeGet, "Error fetching coin %s: %s", pc.Address, err)
				} else {
					rs.logger.Warnf(providers.TypeGet, "No data found for coin: %s", pc.Address)
				}
				node := rs.syntheticNode(pc)
				nodes[i] = &node
			}
		})
	}
	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, pond.ErrGroupStopped) {
		rs.logger.Warnf(providers.TypeGet, "Platform listing fetch encountered error: %s", err)
	}

	out := make([]models.PlatformPost, 0, len(nodes))
	for i, n := range nodes {
		if n == nil {
			// Cancelled before the task ran.
			if coins[i].Title == "" {
				continue
			}
			node := rs.syntheticNode(coins[i])
			n = &node
		}
		out = append(out, *n)
	}
	return out
}

func liveNode(coin *protocol.Coin, pc models.PlatformCoin) *models.PlatformPost {
	node := &models.PlatformPost{
		Address:        coin.Address,
		Name:           coin.Name,
		Symbol:         coin.Symbol,
		Description:    coin.Description,
		CreatorAddress: coin.CreatorAddress,
		CreatedAt:      coin.CreatedAt,
		MarketCap:      coin.MarketCap,
		Volume24h:      coin.Volume24h,
		UniqueHolders:  coin.UniqueHolders,
		TotalSupply:    coin.TotalSupply,
		Uri:            coin.TokenUri,
	}
	if node.Name == "" && pc.Title != "" {
		node.Name = models.CoinName(pc.Title)
	}
	if node.CreatedAt == "" {
		node.CreatedAt = pc.CreatedAt
	}
	return node
}

func (rs *ReaderService) syntheticNode(pc models.PlatformCoin) models.PlatformPost {
	return models.PlatformPost{
		Address:        pc.Address,
		Name:           models.CoinName(pc.Title),
		Symbol:         pc.Symbol,
		Description:    pc.Title + " | Published on " + rs.platformName,
		CreatorAddress: pc.Creator,
		CreatedAt:      pc.CreatedAt,
		MarketCap:      "0",
		Volume24h:      "0",
		UniqueHolders:  0,
		TotalSupply:    "0",
		Synthetic:      true,
	}
}
