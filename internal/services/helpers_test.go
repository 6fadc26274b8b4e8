package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/alitto/pond/v2"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"zoblogs/internal/metadata"
	"zoblogs/internal/models"
	"zoblogs/internal/protocol"
	"zoblogs/internal/registry"
	"zoblogs/internal/storage/memory"
	"zoblogs/internal/structures"
	"zoblogs/internal/testutil"
)

const (
	authorAddr = "0xAbCdEf0000000000000000000000000000000001"
	coinA      = "0x00000000000000000000000000000000000000a1"
	coinB      = "0x00000000000000000000000000000000000000b2"
	coinC      = "0x00000000000000000000000000000000000000c3"
	senderAddr = "0x5e4de40000000000000000000000000000000005"
)

var authorChecksum = common.HexToAddress(authorAddr).Hex()

func testConfig() *structures.Config {
	return &structures.Config{
		Platform: structures.PlatformConfig{
			Name:    "zo-blogs",
			Address: "0x0000000000000000000000000000000000000000",
			ChainID: 8453,
		},
		Wallet:   structures.WalletConfig{ConnectProjectId: "project"},
		Registry: structures.RegistryConfig{MaxAttempts: 5},
		Trade: structures.TradeConfig{
			MinAmount:       "0.000001",
			MaxAmount:       "10",
			DefaultSlippage: 0.05,
			MaxSlippage:     0.5,
			LowMarketCap:    "1000",
			LowVolume:       "10",
		},
		Reader: structures.ReaderConfig{Concurrency: 4},
	}
}

func newTestPool(t *testing.T) pond.Pool {
	pool := pond.NewPool(4)
	t.Cleanup(pool.StopAndWait)
	return pool
}

func newTestRegistry() registry.RegistryInterface {
	return registry.NewRegistry(testConfig(), memory.NewStore(), &testutil.MockLogger{}, &testutil.MockMetrics{})
}

func registerCoin(t *testing.T, reg registry.RegistryInterface, address, title string) {
	require.NoError(t, reg.AddPlatformCoin(context.Background(), models.PlatformCoin{
		Address:         address,
		Creator:         authorAddr,
		Title:           title,
		CreatedAt:       "2024-05-01T00:00:00Z",
		Symbol:          "SYM",
		TransactionHash: "0xtx",
	}))
}

// fakeIndexer serves coins by address; errs overrides per address.
type fakeIndexer struct {
	mu    sync.Mutex
	coins map[string]*protocol.Coin
	errs  map[string]error
	calls int
}

func (f *fakeIndexer) GetCoin(_ context.Context, address string) (*protocol.Coin, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if err, ok := f.errs[address]; ok {
		return nil, err
	}
	if c, ok := f.coins[address]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, protocol.ErrNotFound
}

func liveCoin(address, name string) *protocol.Coin {
	return &protocol.Coin{
		Address:        address,
		Name:           name,
		Symbol:         "LIVE",
		Description:    "on-chain description",
		CreatorAddress: authorAddr,
		CreatedAt:      "2024-05-02T00:00:00Z",
		MarketCap:      "25000",
		Volume24h:      "1200",
		UniqueHolders:  12,
		TotalSupply:    "1000000000",
		TokenUri:       "ipfs://bafymeta",
	}
}

type fakeStorage struct {
	mu      sync.Mutex
	docs    map[string]any
	pinned  map[string]any
	pinErr  error
	fetches int
}

func (f *fakeStorage) PinJSON(_ context.Context, name string, content any) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pinErr != nil {
		return "", f.pinErr
	}
	if f.pinned == nil {
		f.pinned = make(map[string]any)
	}
	f.pinned[name] = content
	return "bafy" + name, nil
}

func (f *fakeStorage) PinFile(context.Context, string, string, []byte) (string, error) {
	return "", errors.New("not implemented")
}

// FetchJSON copies docs[uri] into out; only the two document types used by
// the services are supported.
func (f *fakeStorage) FetchJSON(_ context.Context, uri string, out any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches++
	doc, ok := f.docs[uri]
	if !ok {
		return errors.New("gateway status 404")
	}
	switch dst := out.(type) {
	case *models.CoinMetadata:
		*dst = doc.(models.CoinMetadata)
	case *models.PostDocument:
		*dst = doc.(models.PostDocument)
	default:
		return errors.New("unsupported document type")
	}
	return nil
}

type fakeBuilder struct {
	err   error
	input metadata.BuildInput
}

func (f *fakeBuilder) Build(_ context.Context, in metadata.BuildInput) (*metadata.Result, error) {
	f.input = in
	if f.err != nil {
		return nil, f.err
	}
	return &metadata.Result{
		Metadata: models.CoinMetadata{
			Name:        models.CoinName(in.Title),
			Symbol:      metadata.GenerateCoinSymbol(in.Title, in.Author),
			Description: "desc",
			Image:       "ipfs://bafyimg",
		},
		URI: "ipfs://bafymeta",
	}, nil
}

type fakeDeployer struct {
	params  protocol.CreateCoinParams
	address string
	err     error
}

func (f *fakeDeployer) CreateCoin(_ context.Context, params protocol.CreateCoinParams) (*protocol.Deployment, error) {
	f.params = params
	if f.err != nil {
		return nil, f.err
	}
	return &protocol.Deployment{Address: f.address, Hash: "0xdeploy"}, nil
}

type fakeTrader struct {
	submitted []models.TradeDescriptor
	err       error
}

func (f *fakeTrader) SubmitTrade(_ context.Context, d models.TradeDescriptor) (*models.TradeReceipt, error) {
	f.submitted = append(f.submitted, d)
	if f.err != nil {
		return nil, f.err
	}
	return &models.TradeReceipt{Hash: "0xtrade", Status: "success"}, nil
}
