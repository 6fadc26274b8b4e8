package models

type TradeDirection string

const (
	TradeBuy  TradeDirection = "buy"
	TradeSell TradeDirection = "sell"
)

const (
	AssetNative = "eth"
	AssetErc20  = "erc20"
)

type TradeRequest struct {
	Direction           TradeDirection `json:"direction"`
	CoinAddress         string         `json:"coinAddress"`
	Amount              string         `json:"amount"`
	Slippage            float64        `json:"slippage"`
	Sender              string         `json:"sender"`
	ConfirmLowLiquidity bool           `json:"confirmLowLiquidity"`
}

type TradeLeg struct {
	Type    string `json:"type"`
	Address string `json:"address,omitempty"`
}

// TradeDescriptor is what gets submitted for execution. AmountIn is in base
// units of the sold asset.
type TradeDescriptor struct {
	Sell     TradeLeg `json:"sell"`
	Buy      TradeLeg `json:"buy"`
	AmountIn string   `json:"amountIn"`
	Slippage float64  `json:"slippage"`
	Sender   string   `json:"sender"`
}

type TradeReceipt struct {
	Hash   string `json:"hash"`
	Status string `json:"status"`
}

type TradeResult struct {
	Receipt    TradeReceipt    `json:"receipt"`
	Descriptor TradeDescriptor `json:"descriptor"`
	Coin       *CoinData       `json:"coin,omitempty"`
	Warnings   []string        `json:"warnings,omitempty"`
}
