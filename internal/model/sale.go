package model

import (
	"time"

	"github.com/google/uuid"
)

// AssetSale groups the assets sold in one transaction.
type AssetSale struct {
	ID          uuid.UUID `json:"id"`
	Buyer       string    `json:"buyer"`
	SaleDate    time.Time `json:"saleDate"`
	TotalAmount float64   `json:"totalAmount"`
	Notes       string    `json:"notes,omitempty"`
	CreatedBy   string    `json:"createdBy,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// AssetSaleItem is one asset's share of a sale.
type AssetSaleItem struct {
	ID      uuid.UUID `json:"id"`
	SaleID  uuid.UUID `json:"saleId"`
	AssetID string    `json:"assetId"`
	Amount  float64   `json:"amount"`
}
