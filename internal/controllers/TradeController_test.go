package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zoblogs/internal/models"
	"zoblogs/internal/protocol"
	"zoblogs/internal/services"
)

func tradeRequest(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/post/"+testCoin+"/trade", strings.NewReader(body))
	req.SetPathValue("id", testCoin)
	return req
}

func TestTrade_OK(t *testing.T) {
	trades := &mockTrades{result: &models.TradeResult{Receipt: models.TradeReceipt{Hash: "0xtrade", Status: "success"}}}
	tc := NewTradeController(&mockLogger{}, trades)

	rr := httptest.NewRecorder()
	tc.Trade(rr, tradeRequest(`{"direction":"buy","amount":"0.1","sender":"0xs","coinAddress":"0xignored"}`))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, testCoin, trades.req.CoinAddress, "path wins over body")
	assert.Equal(t, models.TradeBuy, trades.req.Direction)
	assert.Equal(t, "0.1", trades.req.Amount)

	var resp models.TradeResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "0xtrade", resp.Receipt.Hash)
}

func TestTrade_ConfirmationRequired(t *testing.T) {
	trades := &mockTrades{err: &services.ConfirmationError{Warnings: []string{"Low market cap", "Low volume"}}}
	tc := NewTradeController(&mockLogger{}, trades)

	rr := httptest.NewRecorder()
	tc.Trade(rr, tradeRequest(`{"direction":"buy","amount":"1"}`))

	assert.Equal(t, http.StatusConflict, rr.Code)
	var resp errorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, []string{"Low market cap", "Low volume"}, resp.Warnings)
}

func TestTrade_AmountOutOfRange(t *testing.T) {
	tc := NewTradeController(&mockLogger{}, &mockTrades{err: fmt.Errorf("%w: minimum amount is 0.000001", services.ErrAmountOutOfRange)})

	rr := httptest.NewRecorder()
	tc.Trade(rr, tradeRequest(`{"direction":"buy","amount":"0"}`))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestTrade_ProtocolErrorCarriesKind(t *testing.T) {
	err := &protocol.Error{Kind: protocol.KindInsufficientBalance, Op: "submit_trade", Message: "insufficient funds"}
	tc := NewTradeController(&mockLogger{}, &mockTrades{err: err})

	rr := httptest.NewRecorder()
	tc.Trade(rr, tradeRequest(`{"direction":"buy","amount":"1"}`))

	assert.Equal(t, http.StatusBadGateway, rr.Code)
	var resp errorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "insufficient_balance", resp.Kind)
	assert.Equal(t, protocol.KindInsufficientBalance.Message(), resp.Error)
}

func TestTrade_BadBody(t *testing.T) {
	trades := &mockTrades{}
	tc := NewTradeController(&mockLogger{}, trades)

	rr := httptest.NewRecorder()
	tc.Trade(rr, tradeRequest(`{"amount":`))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Empty(t, trades.req.CoinAddress)
}
