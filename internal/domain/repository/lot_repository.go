package repository

import (
	"context"

	"github.com/DumarMatamoros/proyecto-grupoC-sub002/internal/domain/entity"
)

// LotFilter filtros de listado de lotes (consultas de solo lectura).
type LotFilter struct {
	OnlyActive         bool
	WithStock          bool
	OnlyExpired        bool
	ExpiringWithinDays *int
}

// LotRepository define el puerto de persistencia para lotes. Los lotes nunca
// se borran: los estados terminales son historia permanente.
type LotRepository interface {
	Create(ctx context.Context, lot *entity.Lot) error
	GetByID(ctx context.Context, id string) (*entity.Lot, error)
	// GetByIDForUpdate bloquea la fila del lote (SELECT FOR UPDATE).
	GetByIDForUpdate(ctx context.Context, id string) (*entity.Lot, error)
	ListByProduct(ctx context.Context, productID string, filter LotFilter) ([]*entity.Lot, error)
	// ListActiveForUpdate devuelve los lotes activos con stock del producto,
	// bloqueados para update, en orden estable (candidatos del asignador).
	ListActiveForUpdate(ctx context.Context, productID string) ([]*entity.Lot, error)
	// ListNumbersByProduct devuelve los números de lote existentes (para la
	// sugerencia del siguiente número).
	ListNumbersByProduct(ctx context.Context, productID string) ([]string, error)
	// Update persiste remaining_qty y state de un lote ya creado.
	Update(ctx context.Context, lot *entity.Lot) error
}
