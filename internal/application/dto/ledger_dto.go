package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// IngestStockRequest body para POST /api/inventory/ingest.
type IngestStockRequest struct {
	ProductID           string          `json:"product_id"`
	Qty                 int64           `json:"qty"`
	UnitCost            decimal.Decimal `json:"unit_cost"`
	ReceivedDate        *time.Time      `json:"received_date,omitempty"`
	ExpiryDate          *time.Time      `json:"expiry_date,omitempty"`
	LotNumber           string          `json:"lot_number,omitempty"`
	DocumentType        string          `json:"document_type,omitempty"` // purchase | reversal
	DocumentRef         string          `json:"document_ref,omitempty"`
	Note                string          `json:"note,omitempty"`
	ApplySuggestedPrice bool            `json:"apply_suggested_price,omitempty"`
}

// ConsumeStockRequest body para POST /api/inventory/consume.
type ConsumeStockRequest struct {
	ProductID   string `json:"product_id"`
	Qty         int64  `json:"qty"`
	DocumentRef string `json:"document_ref"`
	Note        string `json:"note,omitempty"`
}

// ConsumeLineRequest una línea de POST /api/inventory/consume-lines.
type ConsumeLineRequest struct {
	ProductID string `json:"product_id"`
	Qty       int64  `json:"qty"`
}

// ConsumeLinesRequest body para POST /api/inventory/consume-lines (una venta
// con varios productos, una sola transacción).
type ConsumeLinesRequest struct {
	DocumentRef string               `json:"document_ref"`
	Note        string               `json:"note,omitempty"`
	Lines       []ConsumeLineRequest `json:"lines"`
}

// AdjustStockRequest body para POST /api/inventory/adjust.
type AdjustStockRequest struct {
	ProductID string `json:"product_id"`
	Qty       int64  `json:"qty"`
	Direction string `json:"direction"` // increase | decrease
	Reason    string `json:"reason"`
}

// WriteOffLotRequest body para POST /api/lots/:id/write-off.
type WriteOffLotRequest struct {
	Qty    int64  `json:"qty"`
	Reason string `json:"reason"`
}

// AllocationDTO porción de un consumo asignada a un lote. lot_id vacío =
// stock legado sin lote.
type AllocationDTO struct {
	LotID    string          `json:"lot_id,omitempty"`
	Qty      int64           `json:"qty"`
	UnitCost decimal.Decimal `json:"unit_cost"`
}

// ConsumeResultDTO respuesta de un consumo por producto.
type ConsumeResultDTO struct {
	ProductID      string          `json:"product_id"`
	Allocations    []AllocationDTO `json:"allocations"`
	NewStockOnHand int64           `json:"new_stock_on_hand"`
}

// IngestStockResponse respuesta de una entrada de stock.
type IngestStockResponse struct {
	LotID          string          `json:"lot_id"`
	LotNumber      string          `json:"lot_number"`
	NewAverageCost decimal.Decimal `json:"new_average_cost"`
	NewStockOnHand int64           `json:"new_stock_on_hand"`
}

// KardexLineDTO una línea del reporte kardex.
type KardexLineDTO struct {
	EntryID        string          `json:"entry_id"`
	LotID          string          `json:"lot_id,omitempty"`
	Kind           string          `json:"kind"`
	QuantityIn     int64           `json:"quantity_in"`
	QuantityOut    int64           `json:"quantity_out"`
	ResultingStock int64           `json:"resulting_stock"`
	RunningBalance int64           `json:"running_balance"`
	UnitCost       decimal.Decimal `json:"unit_cost"`
	DocumentType   string          `json:"document_type"`
	DocumentRef    string          `json:"document_ref,omitempty"`
	OccurredAt     time.Time       `json:"occurred_at"`
	ActorID        string          `json:"actor_id,omitempty"`
	Note           string          `json:"note,omitempty"`
}

// KardexResponse reporte kardex de un producto.
type KardexResponse struct {
	ProductID string          `json:"product_id"`
	TotalIn   int64           `json:"total_in"`
	TotalOut  int64           `json:"total_out"`
	Lines     []KardexLineDTO `json:"lines"`
}

// LotDTO un lote con días a vencimiento calculados.
type LotDTO struct {
	ID           string          `json:"id"`
	ProductID    string          `json:"product_id"`
	LotNumber    string          `json:"lot_number"`
	InitialQty   int64           `json:"initial_qty"`
	RemainingQty int64           `json:"remaining_qty"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	ReceivedDate time.Time       `json:"received_date"`
	ExpiryDate   *time.Time      `json:"expiry_date,omitempty"`
	State        string          `json:"state"`
	DaysToExpiry *int            `json:"days_to_expiry,omitempty"`
}

// ValuationItemDTO valorización de un producto.
type ValuationItemDTO struct {
	ProductID   string          `json:"product_id"`
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	StockOnHand int64           `json:"stock_on_hand"`
	AverageCost decimal.Decimal `json:"average_cost"`
	TotalValue  decimal.Decimal `json:"total_value"`
}

// ValuationResponse valorización total del inventario.
type ValuationResponse struct {
	Items      []ValuationItemDTO `json:"items"`
	TotalValue decimal.Decimal    `json:"total_value"`
}
