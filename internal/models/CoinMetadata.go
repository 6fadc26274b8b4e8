package models

// CoinMetadata is the JSON document the coin URI points to.
type CoinMetadata struct {
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	Description string `json:"description"`
	Image       string `json:"image"`
}
