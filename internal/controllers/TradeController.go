package controllers

import (
	"net/http"

	"zoblogs/internal/models"
	"zoblogs/internal/providers"
	"zoblogs/internal/services"
)

type TradeController struct {
	logger providers.Logger
	trades services.TradeServiceInterface
}

func NewTradeController(logger providers.Logger, trades services.TradeServiceInterface) *TradeController {
	return &TradeController{
		logger: logger,
		trades: trades,
	}
}

// Trade executes a buy or sell of the coin in the path. A 409 response
// lists liquidity warnings; resend with confirmLowLiquidity to proceed.
func (tc *TradeController) Trade(w http.ResponseWriter, r *http.Request) {
	var req models.TradeRequest
	if err := decodeBody(w, r, maxRequestBodySize, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Bad Request")
		return
	}
	req.CoinAddress = r.PathValue("id")

	result, err := tc.trades.Trade(r.Context(), req)
	if err != nil {
		writeServiceError(w, tc.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
