package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest body para POST /api/products.
type CreateProductRequest struct {
	SKU           string          `json:"sku"`
	Name          string          `json:"name"`
	Description   string          `json:"description,omitempty"`
	Price         decimal.Decimal `json:"price"`
	PriceMode     string          `json:"price_mode,omitempty"` // manual | automatic
	MarginPercent decimal.Decimal `json:"margin_percent,omitempty"`
}

// ProductResponse representación HTTP de un producto.
type ProductResponse struct {
	ID               string          `json:"id"`
	SKU              string          `json:"sku"`
	Name             string          `json:"name"`
	Description      string          `json:"description,omitempty"`
	StockOnHand      int64           `json:"stock_on_hand"`
	LegacyQty        int64           `json:"legacy_qty"`
	AverageCost      decimal.Decimal `json:"average_cost"`
	LastPurchaseCost decimal.Decimal `json:"last_purchase_cost"`
	Price            decimal.Decimal `json:"price"`
	PriceMode        string          `json:"price_mode"`
	MarginPercent    decimal.Decimal `json:"margin_percent"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}
