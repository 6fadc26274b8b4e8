// Package registry keeps the discovery index of coins minted through the
// service. The on-chain deployment is the source of truth; an entry missing
// here only hides a coin from listings.
package registry

import (
	"context"
	"errors"
	"fmt"
	"time"

	json "github.com/goccy/go-json"

	"zoblogs/internal/models"
	"zoblogs/internal/providers"
	"zoblogs/internal/storage"
	"zoblogs/internal/structures"
)

// Storage keys. They match the names the browser client used, so exported
// blobs can be imported as-is.
const (
	KeyPlatformRegistry = "platformRegistry"
	KeyUserPostCoins    = "userPostCoins"
	KeyPostCids         = "postCids"
)

const defaultMaxAttempts = 5

type RegistryInterface interface {
	GetPlatformRegistry(ctx context.Context) (*models.PlatformRegistry, error)
	AddPlatformCoin(ctx context.Context, coin models.PlatformCoin) error
	GetPlatformCoins(ctx context.Context) ([]models.PlatformCoin, error)
	FindPlatformCoin(ctx context.Context, address string) (models.PlatformCoin, bool, error)
	GetUserPostCoins(ctx context.Context, wallet string) ([]string, error)
	AddUserPostCoin(ctx context.Context, wallet, coinAddress string) error
	GetPostCids(ctx context.Context) ([]string, error)
	AddPostCid(ctx context.Context, cid string) error
}

type Registry struct {
	store       storage.Store
	logger      providers.Logger
	metrics     providers.MetricsProviderInterface
	maxAttempts int
	now         func() time.Time
}

func NewRegistry(conf *structures.Config, store storage.Store, logger providers.Logger, metrics providers.MetricsProviderInterface) RegistryInterface {
	attempts := conf.Registry.MaxAttempts
	if attempts <= 0 {
		attempts = defaultMaxAttempts
	}
	return &Registry{
		store:       store,
		logger:      logger,
		metrics:     metrics,
		maxAttempts: attempts,
		now:         time.Now,
	}
}

// GetPlatformRegistry never fails on a malformed blob: it is logged and an
// empty registry is returned instead. Backend errors are returned.
func (r *Registry) GetPlatformRegistry(ctx context.Context) (*models.PlatformRegistry, error) {
	reg, _, err := read(ctx, r, KeyPlatformRegistry, r.decodeRegistry)
	return reg, err
}

// AddPlatformCoin appends coin unless its address is already registered.
func (r *Registry) AddPlatformCoin(ctx context.Context, coin models.PlatformCoin) error {
	var added bool
	reg, err := modify(ctx, r, KeyPlatformRegistry, r.decodeRegistry, func(reg *models.PlatformRegistry) bool {
		added = reg.Add(coin, r.now())
		return added
	})
	if err != nil {
		return err
	}

	if !added {
		r.logger.Infof(providers.TypeApp, "Coin already exists in platform registry: %s", coin.Address)
		return nil
	}
	r.metrics.SetRegistryCoins(len(reg.Coins))
	r.logger.Infof(providers.TypeApp, "Added coin %s (%s) to platform registry", coin.Address, coin.Symbol)
	return nil
}

func (r *Registry) GetPlatformCoins(ctx context.Context) ([]models.PlatformCoin, error) {
	reg, err := r.GetPlatformRegistry(ctx)
	if err != nil {
		return nil, err
	}
	return reg.Coins, nil
}

func (r *Registry) FindPlatformCoin(ctx context.Context, address string) (models.PlatformCoin, bool, error) {
	reg, err := r.GetPlatformRegistry(ctx)
	if err != nil {
		return models.PlatformCoin{}, false, err
	}
	coin, ok := reg.Find(address)
	return coin, ok, nil
}

func (r *Registry) GetUserPostCoins(ctx context.Context, wallet string) ([]string, error) {
	coins, _, err := read(ctx, r, KeyUserPostCoins, r.decodeUserCoins)
	if err != nil {
		return nil, err
	}
	return coins.Get(wallet), nil
}

func (r *Registry) AddUserPostCoin(ctx context.Context, wallet, coinAddress string) error {
	_, err := modify(ctx, r, KeyUserPostCoins, r.decodeUserCoins, func(u models.UserPostCoins) bool {
		return u.Add(wallet, coinAddress, r.now())
	})
	return err
}

func (r *Registry) GetPostCids(ctx context.Context) ([]string, error) {
	cids, _, err := read(ctx, r, KeyPostCids, r.decodeCids)
	if err != nil {
		return nil, err
	}
	return *cids, nil
}

func (r *Registry) AddPostCid(ctx context.Context, cid string) error {
	_, err := modify(ctx, r, KeyPostCids, r.decodeCids, func(cids *[]string) bool {
		for _, c := range *cids {
			if c == cid {
				return false
			}
		}
		*cids = append(*cids, cid)
		return true
	})
	return err
}

func (r *Registry) decodeRegistry(data []byte) (*models.PlatformRegistry, error) {
	if data == nil {
		return models.NewPlatformRegistry(r.now()), nil
	}
	var reg models.PlatformRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, err
	}
	if reg.Coins == nil {
		reg.Coins = []models.PlatformCoin{}
	}
	return &reg, nil
}

func (r *Registry) decodeUserCoins(data []byte) (models.UserPostCoins, error) {
	coins := models.UserPostCoins{}
	if data == nil {
		return coins, nil
	}
	if err := json.Unmarshal(data, &coins); err != nil {
		return nil, err
	}
	if coins == nil {
		coins = models.UserPostCoins{}
	}
	return coins, nil
}

func (r *Registry) decodeCids(data []byte) (*[]string, error) {
	cids := []string{}
	if data == nil {
		return &cids, nil
	}
	if err := json.Unmarshal(data, &cids); err != nil {
		return nil, err
	}
	if cids == nil {
		cids = []string{}
	}
	return &cids, nil
}

// read loads key and decodes it. A missing key decodes from nil; a blob that
// fails to decode is logged and also treated as missing, keeping its version
// so the next write replaces it.
func read[T any](ctx context.Context, r *Registry, key string, decode func([]byte) (T, error)) (T, int64, error) {
	var zero T

	entry, err := r.store.Get(ctx, key)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return zero, 0, fmt.Errorf("read %s: %w", key, err)
	}

	val, decodeErr := decode(entry.Value)
	if decodeErr != nil {
		r.logger.Errorf(providers.TypeApp, "Error parsing %s, treating as empty: %s", key, decodeErr)
		val, _ = decode(nil)
	}
	return val, entry.Version, nil
}

// modify applies mutate to the current value of key and writes it back with
// the version it was read at. On a concurrent write it starts over from a
// fresh read, up to maxAttempts times.
func modify[T any](ctx context.Context, r *Registry, key string, decode func([]byte) (T, error), mutate func(T) bool) (T, error) {
	var zero T

	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		val, version, err := read(ctx, r, key, decode)
		if err != nil {
			return zero, err
		}
		if !mutate(val) {
			return val, nil
		}

		data, err := json.Marshal(val)
		if err != nil {
			return zero, fmt.Errorf("encode %s: %w", key, err)
		}

		_, err = r.store.Put(ctx, key, data, version)
		if err == nil {
			return val, nil
		}
		if !errors.Is(err, storage.ErrVersionConflict) {
			return zero, fmt.Errorf("write %s: %w", key, err)
		}
		r.logger.Warnf(providers.TypeApp, "Concurrent update of %s, retrying (%d/%d)", key, attempt, r.maxAttempts)
	}
	return zero, fmt.Errorf("write %s: %w", key, storage.ErrVersionConflict)
}
