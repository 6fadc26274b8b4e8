package models

import "strings"

// Post is rebuilt on every read from the indexer record and the metadata
// document; it is never stored.
type Post struct {
	Title     string `json:"title"`
	Content   string `json:"content"`
	Author    string `json:"author"`
	CreatedAt string `json:"createdAt"`
	Image     string `json:"image,omitempty"`
}

type CoinData struct {
	Address     string `json:"address"`
	Symbol      string `json:"symbol"`
	MarketCap   string `json:"marketCap"`
	Volume24h   string `json:"volume24h"`
	Holders     int    `json:"holders"`
	TotalSupply string `json:"totalSupply"`
	Uri         string `json:"uri"`
}

type PostDetails struct {
	Post      Post     `json:"post"`
	Coin      CoinData `json:"coin"`
	Synthetic bool     `json:"synthetic,omitempty"`
}

// PlatformPost is one entry of the discover listing. Synthetic entries are
// built from the registry when the indexer has nothing for the address.
type PlatformPost struct {
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
	Uri            string `json:"uri,omitempty"`
	Synthetic      bool   `json:"synthetic"`
}

// PostDocument is the legacy post body pinned as-is to content storage.
type PostDocument struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type PostPreview struct {
	Cid     string `json:"cid"`
	Title   string `json:"title"`
	Excerpt string `json:"excerpt"`
}

func CoinName(title string) string {
	return CoinNamePrefix + title
}

func TitleFromCoinName(name string) string {
	return strings.TrimPrefix(name, CoinNamePrefix)
}
