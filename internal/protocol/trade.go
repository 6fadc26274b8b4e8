package protocol

import (
	"context"
	"fmt"
	"net/http"

	"zoblogs/internal/models"
)

// SubmitTrade hands descriptor to the trade relay. Failures come back as
// *Error with a classified Kind.
func (c *Client) SubmitTrade(ctx context.Context, descriptor models.TradeDescriptor) (*models.TradeReceipt, error) {
	var receipt models.TradeReceipt
	err := c.do(ctx, "submit_trade", http.MethodPost, c.tradeUrl+"/trades", descriptor, &receipt)
	if err != nil {
		if IsNotFound(err) {
			return nil, &Error{Kind: KindUnknown, Op: "submit_trade", Status: http.StatusNotFound, Err: err}
		}
		return nil, err
	}
	if receipt.Hash == "" {
		return nil, &Error{Kind: KindUnknown, Op: "submit_trade", Err: fmt.Errorf("%w: empty transaction hash", ErrInvalidRecord)}
	}
	return &receipt, nil
}
