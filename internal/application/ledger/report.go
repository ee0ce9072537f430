package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/DumarMatamoros/proyecto-grupoC-sub002/internal/domain"
	"github.com/DumarMatamoros/proyecto-grupoC-sub002/internal/domain/entity"
	"github.com/DumarMatamoros/proyecto-grupoC-sub002/internal/domain/repository"
)

// ReportUseCase superficies de solo lectura del motor: kardex con saldo
// corrido, listado de lotes, valorización y verificación de conciliación.
// Nunca muta; lee snapshots consistentes fuera de las transacciones de
// escritura.
type ReportUseCase struct {
	productRepo repository.ProductRepository
	lotRepo     repository.LotRepository
	entryRepo   repository.MovementEntryRepository
}

// NewReportUseCase construye el caso de uso de reportes.
func NewReportUseCase(
	productRepo repository.ProductRepository,
	lotRepo repository.LotRepository,
	entryRepo repository.MovementEntryRepository,
) *ReportUseCase {
	return &ReportUseCase{productRepo: productRepo, lotRepo: lotRepo, entryRepo: entryRepo}
}

// KardexLine un asiento del kardex con el saldo corrido del rango consultado.
type KardexLine struct {
	Entry *entity.MovementEntry
	// RunningBalance saldo acumulado dentro del rango consultado (arranca en
	// cero al inicio del rango; coincide con ResultingStock cuando el rango
	// cubre toda la historia).
	RunningBalance int64
}

// KardexReport kardex de un producto en un rango de fechas.
type KardexReport struct {
	ProductID string
	Lines     []KardexLine
	Totals    repository.MovementTotals
}

// Kardex devuelve los asientos del producto en orden cronológico con saldo
// corrido y los acumulados del rango.
func (uc *ReportUseCase) Kardex(ctx context.Context, productID string, from, to *time.Time, limit, offset int) (*KardexReport, error) {
	product, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	entries, err := uc.entryRepo.ListByProduct(ctx, productID, from, to, limit, offset)
	if err != nil {
		return nil, err
	}
	totals, err := uc.entryRepo.TotalsByProduct(ctx, productID, from, to)
	if err != nil {
		return nil, err
	}

	lines := make([]KardexLine, 0, len(entries))
	var balance int64
	for _, e := range entries {
		balance += e.Delta()
		lines = append(lines, KardexLine{Entry: e, RunningBalance: balance})
	}
	return &KardexReport{ProductID: productID, Lines: lines, Totals: totals}, nil
}

// LotView un lote con los días restantes hasta su vencimiento.
type LotView struct {
	Lot          *entity.Lot
	DaysToExpiry *int // nil = sin vencimiento
}

// Lots lista los lotes de un producto aplicando los filtros de consulta y
// calculando days_to_expiry contra la fecha actual.
func (uc *ReportUseCase) Lots(ctx context.Context, productID string, filter repository.LotFilter) ([]LotView, error) {
	product, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	lots, err := uc.lotRepo.ListByProduct(ctx, productID, filter)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	views := make([]LotView, 0, len(lots))
	for _, l := range lots {
		view := LotView{Lot: l}
		if days, ok := l.DaysToExpiry(now); ok {
			d := days
			view.DaysToExpiry = &d
		}
		views = append(views, view)
	}
	return views, nil
}

// ValuationReport valorización total del inventario.
type ValuationReport struct {
	Items      []repository.ValuationItem
	TotalValue decimal.Decimal
}

// Valuation devuelve stock_on_hand * average_cost por producto y el total.
func (uc *ReportUseCase) Valuation(ctx context.Context) (*ValuationReport, error) {
	items, err := uc.productRepo.ListValuation(ctx)
	if err != nil {
		return nil, err
	}
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.TotalValue)
	}
	return &ValuationReport{Items: items, TotalValue: total}, nil
}

// VerifyReconciliation comprueba la propiedad de conciliación: la suma de
// entradas menos salidas de todo el kardex debe igualar el stock actual del
// producto. Un desajuste no es error de usuario sino un bug del motor: se
// registra como alerta y se devuelve como error interno.
func (uc *ReportUseCase) VerifyReconciliation(ctx context.Context, productID string) error {
	product, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return err
	}
	if product == nil {
		return domain.ErrNotFound
	}
	totals, err := uc.entryRepo.TotalsByProduct(ctx, productID, nil, nil)
	if err != nil {
		return err
	}
	replayed := totals.TotalIn - totals.TotalOut
	if replayed != product.StockOnHand {
		log.Error().
			Str("product_id", productID).
			Int64("replayed", replayed).
			Int64("stock_on_hand", product.StockOnHand).
			Msg("desajuste de conciliación entre kardex y stock")
		return fmt.Errorf("conciliación: kardex=%d, stock=%d", replayed, product.StockOnHand)
	}
	return nil
}
