// Package allocation decide qué lotes satisfacen una salida de stock y en qué
// orden. Es puro cómputo: no muta lotes ni producto; la mutación la aplica el
// caso de uso dentro de la transacción, lo que permite rollback atómico.
package allocation

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/DumarMatamoros/proyecto-grupoC-sub002/internal/domain"
	"github.com/DumarMatamoros/proyecto-grupoC-sub002/internal/domain/entity"
)

// Allocation es una porción del pedido asignada a un lote. LotID vacío indica
// una asignación sintética contra el stock legado sin lote del producto.
type Allocation struct {
	LotID    string
	Qty      int64
	UnitCost decimal.Decimal
}

// IsLegacy indica si la asignación descuenta del stock legado (sin lote).
func (a Allocation) IsLegacy() bool { return a.LotID == "" }

// Allocate reparte requestedQty entre los lotes candidatos del producto.
//
// Candidatos: state=active, RemainingQty>0 y sin vencimiento cumplido a now.
// Orden (regla de desempate, crítica): vencimiento ascendente con nulos al
// final, luego fecha de recepción, luego ID de lote para estabilidad. Así el
// stock próximo a vencer sale antes que stock más antiguo pero de mayor vida
// útil, y entre lotes de igual fecha rige el FIFO puro.
//
// Si los candidatos se agotan, el faltante se asigna contra legacyQty (stock
// legado del producto) con su costo promedio vigente. Si lotes + legado no
// alcanzan para el pedido completo, devuelve ErrInsufficientStock sin producir
// asignaciones parciales.
func Allocate(lots []*entity.Lot, legacyQty int64, legacyUnitCost decimal.Decimal, requestedQty int64, now time.Time) ([]Allocation, error) {
	if requestedQty <= 0 {
		return nil, domain.ErrInvalidQuantity
	}

	candidates := make([]*entity.Lot, 0, len(lots))
	for _, l := range lots {
		if l.State != entity.LotStateActive || l.RemainingQty <= 0 {
			continue
		}
		if l.IsExpiredAt(now) {
			continue
		}
		candidates = append(candidates, l)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		switch {
		case a.ExpiryDate == nil && b.ExpiryDate != nil:
			return false
		case a.ExpiryDate != nil && b.ExpiryDate == nil:
			return true
		case a.ExpiryDate != nil && b.ExpiryDate != nil && !a.ExpiryDate.Equal(*b.ExpiryDate):
			return a.ExpiryDate.Before(*b.ExpiryDate)
		}
		if !a.ReceivedDate.Equal(b.ReceivedDate) {
			return a.ReceivedDate.Before(b.ReceivedDate)
		}
		return a.ID < b.ID
	})

	remaining := requestedQty
	allocations := make([]Allocation, 0, len(candidates))
	for _, l := range candidates {
		if remaining == 0 {
			break
		}
		take := l.RemainingQty
		if take > remaining {
			take = remaining
		}
		allocations = append(allocations, Allocation{LotID: l.ID, Qty: take, UnitCost: l.UnitCost})
		remaining -= take
	}

	if remaining > 0 {
		if remaining > legacyQty {
			return nil, domain.ErrInsufficientStock
		}
		allocations = append(allocations, Allocation{LotID: "", Qty: remaining, UnitCost: legacyUnitCost})
	}

	return allocations, nil
}
