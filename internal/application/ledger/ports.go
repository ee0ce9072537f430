package ledger

import (
	"context"

	"github.com/DumarMatamoros/proyecto-grupoC-sub002/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza atomicidad para el motor de
// inventario: o todas las mutaciones (producto, lotes, kardex) se confirman,
// o ninguna.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		productRepo repository.ProductRepository,
		lotRepo repository.LotRepository,
		entryRepo repository.MovementEntryRepository,
	) error) error
}
