package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/DumarMatamoros/proyecto-grupoC-sub002/internal/domain/entity"
)

// ValuationItem valorización de inventario de un producto:
// TotalValue = StockOnHand * AverageCost.
type ValuationItem struct {
	ProductID   string
	SKU         string
	Name        string
	StockOnHand int64
	AverageCost decimal.Decimal
	TotalValue  decimal.Decimal
}

// ProductRepository define el puerto de persistencia para Product (DIP).
// Los campos de stock y costo solo los escribe el motor de inventario vía
// UpdateStockAndCost dentro de una transacción.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	// GetByIDForUpdate bloquea la fila del producto (SELECT FOR UPDATE) para
	// serializar mutadores concurrentes del mismo producto.
	GetByIDForUpdate(ctx context.Context, id string) (*entity.Product, error)
	GetBySKU(ctx context.Context, sku string) (*entity.Product, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Product, error)
	// Update actualiza solo campos de catálogo (nombre, precio manual, modo, margen).
	Update(ctx context.Context, product *entity.Product) error
	// UpdateStockAndCost persiste stock_on_hand, legacy_qty, average_cost,
	// last_purchase_cost y price (usado por el motor de inventario).
	UpdateStockAndCost(ctx context.Context, product *entity.Product) error
	ListValuation(ctx context.Context) ([]ValuationItem, error)
}
