package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/DumarMatamoros/proyecto-grupoC-sub002/internal/domain"
)

// Clase del movimiento: entrada o salida. Exactamente una de QuantityIn /
// QuantityOut es distinta de cero por registro.
const (
	MovementKindEntry = "entry"
	MovementKindExit  = "exit"
)

// Tipos de documento que originan un movimiento (kardex).
const (
	DocumentTypePurchase   = "purchase"
	DocumentTypeSale       = "sale"
	DocumentTypeAdjustment = "adjustment"
	DocumentTypeWriteOff   = "write_off"
	DocumentTypeExpiry     = "expiry"
	DocumentTypeReversal   = "reversal"
)

// MovementEntry es una línea del kardex: registro inmutable, solo-inserción,
// de cada operación que afecta stock. ResultingStock es la foto de
// Product.StockOnHand inmediatamente después de aplicar la mutación pareada
// en la misma transacción. Nunca se actualiza ni se borra; una reversión son
// asientos compensatorios nuevos, no ediciones.
type MovementEntry struct {
	ID             string
	ProductID      string
	LotID          *string // nil para stock legado sin lote
	Kind           string  // entry | exit
	QuantityIn     int64
	QuantityOut    int64
	ResultingStock int64
	UnitCost       decimal.Decimal // costo unitario al momento del movimiento
	DocumentType   string
	DocumentRef    string
	OccurredAt     time.Time
	ActorID        *string // operador, nil en procesos automáticos
	Note           string
	CreatedAt      time.Time
}

// Validate rechaza asientos con ambas cantidades en cero o ambas distintas de
// cero, y verifica la coherencia entre Kind y la cantidad informada.
func (m *MovementEntry) Validate() error {
	if m.ProductID == "" || m.DocumentType == "" {
		return domain.ErrInvalidInput
	}
	if m.QuantityIn < 0 || m.QuantityOut < 0 {
		return domain.ErrInvalidQuantity
	}
	if (m.QuantityIn == 0) == (m.QuantityOut == 0) {
		return domain.ErrInvalidQuantity
	}
	switch m.Kind {
	case MovementKindEntry:
		if m.QuantityIn == 0 {
			return domain.ErrInvalidQuantity
		}
	case MovementKindExit:
		if m.QuantityOut == 0 {
			return domain.ErrInvalidQuantity
		}
	default:
		return domain.ErrInvalidInput
	}
	return nil
}

// Delta devuelve el efecto neto sobre el stock (entradas positivas).
func (m *MovementEntry) Delta() int64 {
	return m.QuantityIn - m.QuantityOut
}
