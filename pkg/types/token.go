package types

import "time"

// Token is a chain-qualified payable currency from the 1Click catalog
type Token struct {
	AssetID         string    `json:"assetId"`
	Decimals        int       `json:"decimals"`
	Blockchain      string    `json:"blockchain"`
	Symbol          string    `json:"symbol"`
	Price           float64   `json:"price"`
	PriceUpdatedAt  time.Time `json:"priceUpdatedAt"`
	ContractAddress string    `json:"contractAddress,omitempty"`
}
