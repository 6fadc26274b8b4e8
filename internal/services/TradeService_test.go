package services

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zoblogs/internal/models"
	"zoblogs/internal/protocol"
	"zoblogs/internal/testutil"
)

type tradeFixture struct {
	svc     TradeServiceInterface
	indexer *fakeIndexer
	trader  *fakeTrader
	metrics *testutil.MockMetrics
}

func newTradeFixture(t *testing.T, coin *protocol.Coin) *tradeFixture {
	idx := &fakeIndexer{coins: map[string]*protocol.Coin{}}
	if coin != nil {
		idx.coins[coin.Address] = coin
	}
	reader := NewReaderService(testConfig(), newTestRegistry(), idx, &fakeStorage{}, newTestPool(t), &testutil.MockLogger{})
	f := &tradeFixture{indexer: idx, trader: &fakeTrader{}, metrics: &testutil.MockMetrics{}}

	svc, err := NewTradeService(testConfig(), reader, f.trader, &testutil.MockLogger{}, f.metrics)
	require.NoError(t, err)
	f.svc = svc
	return f
}

func buyRequest(amount string) models.TradeRequest {
	return models.TradeRequest{
		Direction:   models.TradeBuy,
		CoinAddress: coinA,
		Amount:      amount,
		Sender:      senderAddr,
	}
}

func TestTrade_Buy(t *testing.T) {
	f := newTradeFixture(t, liveCoin(coinA, "Post: A"))

	res, err := f.svc.Trade(context.Background(), buyRequest("0.01"))
	require.NoError(t, err)

	require.Len(t, f.trader.submitted, 1)
	assert.Equal(t, models.TradeDescriptor{
		Sell:     models.TradeLeg{Type: models.AssetNative},
		Buy:      models.TradeLeg{Type: models.AssetErc20, Address: coinA},
		AmountIn: "10000000000000000",
		Slippage: 0.05,
		Sender:   senderAddr,
	}, f.trader.submitted[0])

	assert.Equal(t, "0xtrade", res.Receipt.Hash)
	require.NotNil(t, res.Coin)
	assert.Equal(t, "25000", res.Coin.MarketCap)
	assert.Empty(t, res.Warnings)
	assert.Equal(t, 2, f.indexer.calls, "coin data refreshed after the trade")
	assert.Equal(t, 1, f.metrics.Trades["buy:success"])
}

func TestTrade_SellReversesLegs(t *testing.T) {
	f := newTradeFixture(t, liveCoin(coinA, "Post: A"))
	req := buyRequest("2.5")
	req.Direction = models.TradeSell
	req.Slippage = 0.1

	_, err := f.svc.Trade(context.Background(), req)
	require.NoError(t, err)

	d := f.trader.submitted[0]
	assert.Equal(t, models.TradeLeg{Type: models.AssetErc20, Address: coinA}, d.Sell)
	assert.Equal(t, models.TradeLeg{Type: models.AssetNative}, d.Buy)
	assert.Equal(t, "2500000000000000000", d.AmountIn)
	assert.Equal(t, 0.1, d.Slippage)
}

func TestTrade_AmountBounds(t *testing.T) {
	f := newTradeFixture(t, liveCoin(coinA, "Post: A"))

	for _, amount := range []string{"0.0000009", "0", "10.000001", "100"} {
		_, err := f.svc.Trade(context.Background(), buyRequest(amount))
		assert.ErrorIs(t, err, ErrAmountOutOfRange, amount)
	}
	for _, amount := range []string{"0.000001", "10"} {
		_, err := f.svc.Trade(context.Background(), buyRequest(amount))
		assert.NoError(t, err, amount)
	}
	assert.Len(t, f.trader.submitted, 2)
}

func TestTrade_ValidationHappensBeforeNetwork(t *testing.T) {
	f := newTradeFixture(t, liveCoin(coinA, "Post: A"))
	bad := []func(*models.TradeRequest){
		func(r *models.TradeRequest) { r.Direction = "hold" },
		func(r *models.TradeRequest) { r.CoinAddress = "nope" },
		func(r *models.TradeRequest) { r.Sender = "" },
		func(r *models.TradeRequest) { r.Amount = "abc" },
		func(r *models.TradeRequest) { r.Slippage = 0.9 },
		func(r *models.TradeRequest) { r.Slippage = -0.1 },
	}
	for _, mutate := range bad {
		req := buyRequest("1")
		mutate(&req)
		_, err := f.svc.Trade(context.Background(), req)
		assert.ErrorIs(t, err, ErrValidation)
	}
	assert.Zero(t, f.indexer.calls)
	assert.Empty(t, f.trader.submitted)
}

func TestTrade_LowLiquidityNeedsConfirmation(t *testing.T) {
	thin := liveCoin(coinA, "Post: A")
	thin.MarketCap = "500"
	thin.Volume24h = "2"
	f := newTradeFixture(t, thin)

	_, err := f.svc.Trade(context.Background(), buyRequest("1"))
	require.ErrorIs(t, err, ErrConfirmationRequired)
	var ce *ConfirmationError
	require.ErrorAs(t, err, &ce)
	assert.Len(t, ce.Warnings, 2)
	assert.Empty(t, f.trader.submitted)

	req := buyRequest("1")
	req.ConfirmLowLiquidity = true
	res, err := f.svc.Trade(context.Background(), req)
	require.NoError(t, err)
	assert.Len(t, res.Warnings, 2)
	assert.Len(t, f.trader.submitted, 1)
}

func TestTrade_UnknownCoin(t *testing.T) {
	f := newTradeFixture(t, nil)

	_, err := f.svc.Trade(context.Background(), buyRequest("1"))
	assert.ErrorIs(t, err, ErrCoinNotFound)
	assert.Empty(t, f.trader.submitted)
}

func TestTrade_ProtocolErrorIsCounted(t *testing.T) {
	f := newTradeFixture(t, liveCoin(coinA, "Post: A"))
	f.trader.err = &protocol.Error{Kind: protocol.KindSlippageExceeded, Op: "submit_trade", Message: "too much slippage"}

	_, err := f.svc.Trade(context.Background(), buyRequest("1"))
	assert.Equal(t, protocol.KindSlippageExceeded, protocol.KindOf(err))
	assert.Equal(t, 1, f.metrics.Trades["buy:slippage_exceeded"])
}

func TestTrade_PlainErrorCountsAsUnknown(t *testing.T) {
	f := newTradeFixture(t, liveCoin(coinA, "Post: A"))
	f.trader.err = errors.New("boom")

	_, err := f.svc.Trade(context.Background(), buyRequest("1"))
	require.Error(t, err)
	assert.Equal(t, 1, f.metrics.Trades["buy:unknown"])
}

func TestNewTradeService_RejectsBadBounds(t *testing.T) {
	conf := testConfig()
	conf.Trade.MinAmount = "20"
	_, err := NewTradeService(conf, nil, nil, &testutil.MockLogger{}, &testutil.MockMetrics{})
	assert.Error(t, err)

	conf = testConfig()
	conf.Trade.LowVolume = "ten"
	_, err = NewTradeService(conf, nil, nil, &testutil.MockLogger{}, &testutil.MockMetrics{})
	assert.Error(t, err)
}

func TestBuildTradeDescriptor_TruncatesDust(t *testing.T) {
	amount := decimal.RequireFromString("0.0000000000000000015")
	d := BuildTradeDescriptor(models.TradeBuy, coinA, amount, 0.05, senderAddr)
	assert.Equal(t, "1", d.AmountIn)
}
