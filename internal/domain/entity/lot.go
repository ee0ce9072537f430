package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/DumarMatamoros/proyecto-grupoC-sub002/internal/domain"
)

// Estados de un lote. Los tres estados terminales son absorbentes: un lote
// agotado, dado de baja o vencido nunca vuelve a active.
const (
	LotStateActive     = "active"
	LotStateDepleted   = "depleted"
	LotStateWrittenOff = "written_off"
	LotStateExpired    = "expired"
)

// Lot representa un lote: una cantidad fechada y costeada de un producto
// recibida en conjunto. RemainingQty solo decrece después de la creación;
// los lotes nunca se borran, los estados terminales son historia permanente.
type Lot struct {
	ID           string
	ProductID    string
	LotNumber    string // legible, sugerido automáticamente, único por producto
	InitialQty   int64
	RemainingQty int64
	UnitCost     decimal.Decimal
	ReceivedDate time.Time
	ExpiryDate   *time.Time // nil = sin vencimiento
	State        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsTerminal indica si el lote está en un estado absorbente.
func (l *Lot) IsTerminal() bool {
	return l.State == LotStateDepleted || l.State == LotStateWrittenOff || l.State == LotStateExpired
}

// IsExpiredAt indica si el lote tiene fecha de vencimiento cumplida en t.
func (l *Lot) IsExpiredAt(t time.Time) bool {
	return l.ExpiryDate != nil && !l.ExpiryDate.After(t)
}

// DaysToExpiry devuelve los días que faltan para el vencimiento (negativo si ya
// venció). ok=false cuando el lote no tiene fecha de vencimiento.
func (l *Lot) DaysToExpiry(now time.Time) (days int, ok bool) {
	if l.ExpiryDate == nil {
		return 0, false
	}
	return int(l.ExpiryDate.Sub(now).Hours() / 24), true
}

// Deplete descuenta qty del remanente (salida por venta/consumo). Si el lote
// queda en cero pasa a depleted. Falla sin mutar ante cantidades fuera de rango
// o estados terminales.
func (l *Lot) Deplete(qty int64) error {
	if l.IsTerminal() {
		return domain.ErrAlreadyEmpty
	}
	if qty <= 0 || qty > l.RemainingQty {
		return domain.ErrInvalidQuantity
	}
	l.RemainingQty -= qty
	if l.RemainingQty == 0 {
		l.State = LotStateDepleted
	}
	return nil
}

// WriteOff descuenta qty por baja manual (merma, daño). Solo pasa a
// written_off cuando esta llamada agota el lote; una baja parcial sigue active.
func (l *Lot) WriteOff(qty int64) error {
	if l.IsTerminal() {
		return domain.ErrAlreadyEmpty
	}
	if qty <= 0 || qty > l.RemainingQty {
		return domain.ErrInvalidQuantity
	}
	l.RemainingQty -= qty
	if l.RemainingQty == 0 {
		l.State = LotStateWrittenOff
	}
	return nil
}

// Expire fuerza el remanente a cero y marca el lote como vencido. Devuelve la
// cantidad retirada. Falla con ErrAlreadyEmpty si ya no quedaban existencias.
func (l *Lot) Expire() (int64, error) {
	if l.IsTerminal() || l.RemainingQty == 0 {
		return 0, domain.ErrAlreadyEmpty
	}
	removed := l.RemainingQty
	l.RemainingQty = 0
	l.State = LotStateExpired
	return removed, nil
}
