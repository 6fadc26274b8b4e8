package protocol

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// Coin is a validated indexer record. Numeric fields are decimal strings.
type Coin struct {
	Address        string
	Name           string
	Symbol         string
	Description    string
	CreatorAddress string
	CreatedAt      string
	MarketCap      string
	Volume24h      string
	UniqueHolders  int
	TotalSupply    string
	TokenUri       string
}

type rawCoin struct {
	Address        string `json:"address"`
	Name           string `json:"name"`
	Symbol         string `json:"symbol"`
	Description    string `json:"description"`
	CreatorAddress string `json:"creatorAddress"`
	CreatedAt      string `json:"createdAt"`
	MarketCap      string `json:"marketCap"`
	Volume24h      string `json:"volume24h"`
	UniqueHolders  int    `json:"uniqueHolders"`
	TotalSupply    string `json:"totalSupply"`
	TokenUri       string `json:"tokenUri"`
}

type coinResponse struct {
	Zora20Token *rawCoin `json:"zora20Token"`
}

// GetCoin queries the indexer for address on the configured chain. A null
// token or a 404 yields ErrNotFound.
func (c *Client) GetCoin(ctx context.Context, address string) (*Coin, error) {
	q := url.Values{}
	q.Set("address", address)
	q.Set("chain", strconv.FormatInt(c.chainID, 10))

	var resp coinResponse
	if err := c.do(ctx, "get_coin", http.MethodGet, c.apiUrl+"/coin?"+q.Encode(), nil, &resp); err != nil {
		return nil, err
	}
	if resp.Zora20Token == nil {
		return nil, ErrNotFound
	}
	return parseCoin(resp.Zora20Token)
}

// parseCoin validates a raw record. Empty numeric fields become "0".
func parseCoin(raw *rawCoin) (*Coin, error) {
	if !common.IsHexAddress(raw.Address) {
		return nil, fmt.Errorf("%w: coin address %q", ErrInvalidRecord, raw.Address)
	}
	if raw.UniqueHolders < 0 {
		return nil, fmt.Errorf("%w: negative holder count %d", ErrInvalidRecord, raw.UniqueHolders)
	}

	coin := &Coin{
		Address:        raw.Address,
		Name:           raw.Name,
		Symbol:         raw.Symbol,
		Description:    raw.Description,
		CreatorAddress: raw.CreatorAddress,
		CreatedAt:      raw.CreatedAt,
		UniqueHolders:  raw.UniqueHolders,
		TokenUri:       raw.TokenUri,
	}

	var err error
	if coin.MarketCap, err = decimalField("marketCap", raw.MarketCap); err != nil {
		return nil, err
	}
	if coin.Volume24h, err = decimalField("volume24h", raw.Volume24h); err != nil {
		return nil, err
	}
	if coin.TotalSupply, err = decimalField("totalSupply", raw.TotalSupply); err != nil {
		return nil, err
	}
	return coin, nil
}

func decimalField(name, value string) (string, error) {
	if value == "" {
		return "0", nil
	}
	if _, err := decimal.NewFromString(value); err != nil {
		return "", fmt.Errorf("%w: %s %q", ErrInvalidRecord, name, value)
	}
	return value, nil
}

// CreateCoinParams is the deployment request. Currency is always ETH.
type CreateCoinParams struct {
	Name             string `json:"name"`
	Symbol           string `json:"symbol"`
	Uri              string `json:"uri"`
	PayoutRecipient  string `json:"payoutRecipient"`
	PlatformReferrer string `json:"platformReferrer"`
	Currency         string `json:"currency"`
	ChainID          int64  `json:"chainId"`
}

type Deployment struct {
	Address string `json:"address"`
	Hash    string `json:"hash"`
}

const CurrencyETH = "ETH"

// CreateCoin asks the deployer relay to deploy a coin and waits for its
// address.
func (c *Client) CreateCoin(ctx context.Context, params CreateCoinParams) (*Deployment, error) {
	params.Currency = CurrencyETH
	if params.ChainID == 0 {
		params.ChainID = c.chainID
	}

	var d Deployment
	if err := c.do(ctx, "create_coin", http.MethodPost, c.deployerUrl+"/coins", params, &d); err != nil {
		return nil, err
	}
	if !common.IsHexAddress(d.Address) {
		return nil, fmt.Errorf("create_coin: %w: deployed address %q", ErrInvalidRecord, d.Address)
	}
	if d.Hash == "" {
		return nil, fmt.Errorf("create_coin: %w: empty transaction hash", ErrInvalidRecord)
	}
	return &d, nil
}
