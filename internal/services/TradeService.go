package services

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/params"
	"github.com/shopspring/decimal"

	"zoblogs/internal/models"
	"zoblogs/internal/protocol"
	"zoblogs/internal/providers"
	"zoblogs/internal/structures"
)

const tradeOutcomeSuccess = "success"

type TradeServiceInterface interface {
	Trade(ctx context.Context, req models.TradeRequest) (*models.TradeResult, error)
}

type TradeService struct {
	minAmount       decimal.Decimal
	maxAmount       decimal.Decimal
	defaultSlippage float64
	maxSlippage     float64
	lowMarketCap    decimal.Decimal
	lowVolume       decimal.Decimal
	reader          ReaderServiceInterface
	trader          protocol.TraderInterface
	logger          providers.Logger
	metrics         providers.MetricsProviderInterface
}

func NewTradeService(conf *structures.Config, reader ReaderServiceInterface, trader protocol.TraderInterface, logger providers.Logger, metrics providers.MetricsProviderInterface) (TradeServiceInterface, error) {
	ts := &TradeService{
		defaultSlippage: conf.Trade.DefaultSlippage,
		maxSlippage:     conf.Trade.MaxSlippage,
		reader:          reader,
		trader:          trader,
		logger:          logger,
		metrics:         metrics,
	}

	bounds := []struct {
		name  string
		value string
		dst   *decimal.Decimal
	}{
		{"trade.minAmount", conf.Trade.MinAmount, &ts.minAmount},
		{"trade.maxAmount", conf.Trade.MaxAmount, &ts.maxAmount},
		{"trade.lowMarketCap", conf.Trade.LowMarketCap, &ts.lowMarketCap},
		{"trade.lowVolume", conf.Trade.LowVolume, &ts.lowVolume},
	}
	for _, b := range bounds {
		d, err := decimal.NewFromString(b.value)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", b.name, b.value, err)
		}
		*b.dst = d
	}
	if ts.minAmount.GreaterThan(ts.maxAmount) {
		return nil, fmt.Errorf("trade.minAmount %s exceeds trade.maxAmount %s", ts.minAmount, ts.maxAmount)
	}
	return ts, nil
}

// Trade checks req, warns about thin markets, submits the trade and returns
// the receipt with refreshed coin data. Nothing is submitted when the
// request is out of bounds or unconfirmed warnings exist.
func (ts *TradeService) Trade(ctx context.Context, req models.TradeRequest) (*models.TradeResult, error) {
	amount, slippage, err := ts.validate(req)
	if err != nil {
		return nil, err
	}

	details, err := ts.reader.FetchPostDetails(ctx, req.CoinAddress)
	if err != nil {
		return nil, err
	}

	warnings := ts.liquidityWarnings(details.Coin)
	if len(warnings) > 0 && !req.ConfirmLowLiquidity {
		return nil, &ConfirmationError{Warnings: warnings}
	}

	descriptor := BuildTradeDescriptor(req.Direction, req.CoinAddress, amount, slippage, req.Sender)

	receipt, err := ts.trader.SubmitTrade(ctx, descriptor)
	if err != nil {
		kind := protocol.KindOf(err)
		ts.metrics.IncTrades(string(req.Direction), string(kind))
		ts.logger.Errorf(providers.TypePost, "Trade %s %s %s failed (%s): %s", req.Direction, amount, req.CoinAddress, kind, err)
		return nil, err
	}
	ts.metrics.IncTrades(string(req.Direction), tradeOutcomeSuccess)
	ts.logger.Infof(providers.TypePost, "Trade %s %s %s submitted: %s", req.Direction, amount, req.CoinAddress, receipt.Hash)

	result := &models.TradeResult{
		Receipt:    *receipt,
		Descriptor: descriptor,
		Warnings:   warnings,
	}
	if refreshed, err := ts.reader.FetchPostDetails(ctx, req.CoinAddress); err != nil {
		ts.logger.Warnf(providers.TypePost, "Failed to refresh coin %s after trade: %s", req.CoinAddress, err)
	} else {
		result.Coin = &refreshed.Coin
	}
	return result, nil
}

func (ts *TradeService) validate(req models.TradeRequest) (decimal.Decimal, float64, error) {
	if req.Direction != models.TradeBuy && req.Direction != models.TradeSell {
		return decimal.Zero, 0, fmt.Errorf("%w: direction must be buy or sell", ErrValidation)
	}
	if !common.IsHexAddress(req.CoinAddress) {
		return decimal.Zero, 0, fmt.Errorf("%w: invalid coin address", ErrValidation)
	}
	if !common.IsHexAddress(req.Sender) {
		return decimal.Zero, 0, fmt.Errorf("%w: connect a wallet to trade", ErrValidation)
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return decimal.Zero, 0, fmt.Errorf("%w: invalid amount %q", ErrValidation, req.Amount)
	}
	if amount.LessThan(ts.minAmount) {
		return decimal.Zero, 0, fmt.Errorf("%w: minimum amount is %s", ErrAmountOutOfRange, ts.minAmount)
	}
	if amount.GreaterThan(ts.maxAmount) {
		return decimal.Zero, 0, fmt.Errorf("%w: maximum amount is %s", ErrAmountOutOfRange, ts.maxAmount)
	}

	slippage := req.Slippage
	if slippage == 0 {
		slippage = ts.defaultSlippage
	}
	if slippage <= 0 || slippage > ts.maxSlippage {
		return decimal.Zero, 0, fmt.Errorf("%w: slippage must be in (0, %g]", ErrValidation, ts.maxSlippage)
	}
	return amount, slippage, nil
}

func (ts *TradeService) liquidityWarnings(coin models.CoinData) []string {
	var warnings []string
	if marketCap, err := decimal.NewFromString(coin.MarketCap); err == nil && marketCap.LessThan(ts.lowMarketCap) {
		warnings = append(warnings, fmt.Sprintf("Low market cap ($%s): this trade may move the price significantly", marketCap.StringFixed(2)))
	}
	if volume, err := decimal.NewFromString(coin.Volume24h); err == nil && volume.LessThan(ts.lowVolume) {
		warnings = append(warnings, fmt.Sprintf("Low 24h volume ($%s): there may not be enough liquidity", volume.StringFixed(2)))
	}
	return warnings
}

// BuildTradeDescriptor lays out the two legs of a trade. Buying spends ETH
// for the coin; selling spends the coin for ETH. Both assets use 18
// decimals, so amount is scaled by one ether.
func BuildTradeDescriptor(direction models.TradeDirection, coinAddress string, amount decimal.Decimal, slippage float64, sender string) models.TradeDescriptor {
	native := models.TradeLeg{Type: models.AssetNative}
	coin := models.TradeLeg{Type: models.AssetErc20, Address: coinAddress}

	d := models.TradeDescriptor{
		Sell:     native,
		Buy:      coin,
		AmountIn: amount.Mul(decimal.NewFromInt(params.Ether)).Truncate(0).String(),
		Slippage: slippage,
		Sender:   sender,
	}
	if direction == models.TradeSell {
		d.Sell, d.Buy = coin, native
	}
	return d
}
