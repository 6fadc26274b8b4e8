package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"zoblogs/internal/metadata"
	"zoblogs/internal/models"
	"zoblogs/internal/protocol"
	"zoblogs/internal/providers"
	"zoblogs/internal/registry"
	"zoblogs/internal/structures"
)

// Response cache keys dropped whenever the registry gains a coin.
const (
	HomeCacheKey     = "page:home"
	DiscoverCacheKey = "page:discover"
)

type CreatePostInput struct {
	Title   string
	Content string
	Author  string
	Image   *metadata.Image
}

type CreatePostResult struct {
	Address string `json:"address"`
	Hash    string `json:"hash"`
	Uri     string `json:"uri"`
	Symbol  string `json:"symbol"`
}

type PostServiceInterface interface {
	CreatePost(ctx context.Context, in CreatePostInput) (*CreatePostResult, error)
}

type PostService struct {
	platformAddress string
	chainID         int64
	walletProjectId string
	builder         metadata.BuilderInterface
	deployer        protocol.DeployerInterface
	registry        registry.RegistryInterface
	cache           providers.CacheProviderInterface
	logger          providers.Logger
	now             func() time.Time
}

func NewPostService(conf *structures.Config, builder metadata.BuilderInterface, deployer protocol.DeployerInterface, reg registry.RegistryInterface, cache providers.CacheProviderInterface, logger providers.Logger) PostServiceInterface {
	return &PostService{
		platformAddress: conf.Platform.Address,
		chainID:         conf.Platform.ChainID,
		walletProjectId: conf.Wallet.ConnectProjectId,
		builder:         builder,
		deployer:        deployer,
		registry:        reg,
		cache:           cache,
		logger:          logger,
		now:             time.Now,
	}
}

// CreatePost builds and uploads the coin metadata, deploys the coin and
// records it. A registry failure after deployment returns the result
// together with an ErrRegistryWrite error since the coin exists on chain.
func (ps *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*CreatePostResult, error) {
	if ps.walletProjectId == "" {
		return nil, ErrCreationDisabled
	}
	if err := validatePost(in); err != nil {
		return nil, err
	}
	author := common.HexToAddress(in.Author).Hex()

	built, err := ps.builder.Build(ctx, metadata.BuildInput{
		Title:   in.Title,
		Content: in.Content,
		Author:  author,
		Image:   in.Image,
	})
	if err != nil {
		ps.logger.Errorf(providers.TypePost, "Failed to create metadata for %q: %s", in.Title, err)
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}

	deployment, err := ps.deployer.CreateCoin(ctx, protocol.CreateCoinParams{
		Name:             built.Metadata.Name,
		Symbol:           built.Metadata.Symbol,
		Uri:              built.URI,
		PayoutRecipient:  author,
		PlatformReferrer: ps.platformAddress,
		Currency:         protocol.CurrencyETH,
		ChainID:          ps.chainID,
	})
	if err != nil {
		ps.logger.Errorf(providers.TypePost, "Failed to create post coin %q: %s", in.Title, err)
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	ps.logger.Infof(providers.TypePost, "Coin created for %q: %s (%s)", in.Title, deployment.Address, deployment.Hash)

	result := &CreatePostResult{
		Address: deployment.Address,
		Hash:    deployment.Hash,
		Uri:     built.URI,
		Symbol:  built.Metadata.Symbol,
	}

	coin := models.PlatformCoin{
		Address:         deployment.Address,
		Creator:         author,
		Title:           in.Title,
		CreatedAt:       ps.now().UTC().Format(time.RFC3339Nano),
		Symbol:          built.Metadata.Symbol,
		TransactionHash: deployment.Hash,
	}
	if err := ps.registry.AddPlatformCoin(ctx, coin); err != nil {
		ps.logger.Errorf(providers.TypePost, "Coin %s deployed but not registered: %s", deployment.Address, err)
		return result, fmt.Errorf("%w: %w", ErrRegistryWrite, err)
	}
	ps.cache.Del(HomeCacheKey)
	ps.cache.Del(DiscoverCacheKey)

	if err := ps.registry.AddUserPostCoin(ctx, author, deployment.Address); err != nil {
		ps.logger.Errorf(providers.TypePost, "Coin %s not added to creator index of %s: %s", deployment.Address, author, err)
		return result, fmt.Errorf("%w: %w", ErrRegistryWrite, err)
	}

	return result, nil
}

func validatePost(in CreatePostInput) error {
	switch {
	case strings.TrimSpace(in.Title) == "":
		return fmt.Errorf("%w: title is required", ErrValidation)
	case strings.TrimSpace(in.Content) == "":
		return fmt.Errorf("%w: content is required", ErrValidation)
	case !common.IsHexAddress(in.Author):
		return fmt.Errorf("%w: connect a wallet to publish", ErrValidation)
	}
	return nil
}
