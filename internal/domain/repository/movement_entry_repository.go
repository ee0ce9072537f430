package repository

import (
	"context"
	"time"

	"github.com/DumarMatamoros/proyecto-grupoC-sub002/internal/domain/entity"
)

// MovementTotals acumulados de un producto en un rango.
type MovementTotals struct {
	TotalIn  int64
	TotalOut int64
}

// MovementEntryRepository define el puerto del kardex. Solo inserción: los
// asientos jamás se actualizan ni se borran.
type MovementEntryRepository interface {
	Create(ctx context.Context, entry *entity.MovementEntry) error
	// ListByProduct devuelve los asientos en orden cronológico ascendente
	// (el kardex se lee con saldo corrido). from/to opcionales.
	ListByProduct(ctx context.Context, productID string, from, to *time.Time, limit, offset int) ([]*entity.MovementEntry, error)
	TotalsByProduct(ctx context.Context, productID string, from, to *time.Time) (MovementTotals, error)
}
