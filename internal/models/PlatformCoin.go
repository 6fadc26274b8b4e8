package models

import "time"

// CoinNamePrefix is prepended to a post title to form the coin name.
const CoinNamePrefix = "Post: "

// PlatformCoin is a coin minted through this service. Entries are never
// changed once written to the registry.
type PlatformCoin struct {
	Address         string `json:"address"`
	Creator         string `json:"creator"`
	Title           string `json:"title"`
	CreatedAt       string `json:"createdAt"`
	Symbol          string `json:"symbol"`
	TransactionHash string `json:"transactionHash"`
}

type PlatformRegistry struct {
	Coins       []PlatformCoin `json:"coins"`
	LastUpdated string         `json:"lastUpdated"`
}

func NewPlatformRegistry(now time.Time) *PlatformRegistry {
	return &PlatformRegistry{
		Coins:       []PlatformCoin{},
		LastUpdated: now.UTC().Format(time.RFC3339Nano),
	}
}

// Find looks a coin up by exact address match.
func (r *PlatformRegistry) Find(address string) (PlatformCoin, bool) {
	for _, c := range r.Coins {
		if c.Address == address {
			return c, true
		}
	}
	return PlatformCoin{}, false
}

// Add appends coin unless its address is already present. It reports
// whether the registry changed.
func (r *PlatformRegistry) Add(coin PlatformCoin, now time.Time) bool {
	if _, ok := r.Find(coin.Address); ok {
		return false
	}
	r.Coins = append(r.Coins, coin)
	r.LastUpdated = now.UTC().Format(time.RFC3339Nano)
	return true
}

type UserCoins struct {
	CreatedCoins []string `json:"createdCoins"`
	LastUpdated  string   `json:"lastUpdated"`
}

// UserPostCoins indexes created coin addresses by wallet. It is kept apart
// from PlatformRegistry and is not updated atomically with it.
type UserPostCoins map[string]*UserCoins

func (u UserPostCoins) Get(wallet string) []string {
	if uc, ok := u[wallet]; ok && uc != nil {
		return uc.CreatedCoins
	}
	return []string{}
}

func (u UserPostCoins) Add(wallet, coinAddress string, now time.Time) bool {
	uc, ok := u[wallet]
	if !ok || uc == nil {
		uc = &UserCoins{CreatedCoins: []string{}}
		u[wallet] = uc
	}
	for _, c := range uc.CreatedCoins {
		if c == coinAddress {
			return false
		}
	}
	uc.CreatedCoins = append(uc.CreatedCoins, coinAddress)
	uc.LastUpdated = now.UTC().Format(time.RFC3339Nano)
	return true
}
