// Package ledger implementa el motor de inventario: la única superficie que
// muta stock. Cada operación es una transacción atómica que compone lotes,
// costeo promedio, asignación FIFO y el asiento de kardex correspondiente.
package ledger

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/DumarMatamoros/proyecto-grupoC-sub002/internal/domain"
	"github.com/DumarMatamoros/proyecto-grupoC-sub002/internal/domain/allocation"
	"github.com/DumarMatamoros/proyecto-grupoC-sub002/internal/domain/costing"
	"github.com/DumarMatamoros/proyecto-grupoC-sub002/internal/domain/entity"
	"github.com/DumarMatamoros/proyecto-grupoC-sub002/internal/domain/lotnumber"
	"github.com/DumarMatamoros/proyecto-grupoC-sub002/internal/domain/repository"
)

// Direcciones de un ajuste manual de stock.
const (
	AdjustIncrease = "increase"
	AdjustDecrease = "decrease"
)

// Config parámetros de costeo y política del motor, pasados explícitamente
// para mantener el costeo puro y testeable (nada de estado global).
type Config struct {
	// DefaultMarginPercent margen usado para el precio sugerido cuando el
	// producto no tiene margen propio configurado.
	DefaultMarginPercent decimal.Decimal
	// AllowZeroUnitCost permite ingresar lotes con costo unitario cero
	// (muestras, bonificaciones). Por defecto se rechaza.
	AllowZeroUnitCost bool
}

// UseCase es el motor de inventario (fachada del ledger). Toda mutación de
// stock pasa por aquí; los flujos de compra, venta, baja y ajuste son
// colaboradores externos que lo invocan.
type UseCase struct {
	txRunner TxRunner
	cfg      Config
}

// NewUseCase construye el motor.
func NewUseCase(txRunner TxRunner, cfg Config) *UseCase {
	return &UseCase{txRunner: txRunner, cfg: cfg}
}

// IngestStockInput entrada de stock (compra o reversión de venta).
type IngestStockInput struct {
	ProductID    string
	Qty          int64
	UnitCost     decimal.Decimal
	ReceivedDate time.Time  // cero = ahora
	ExpiryDate   *time.Time // nil = sin vencimiento
	// LotNumber opcional; vacío = se sugiere desde el historial del producto.
	LotNumber    string
	DocumentType string // purchase | reversal (vacío = purchase)
	DocumentRef  string
	ActorID      string
	Note         string
	// ApplySuggestedPrice recalcula el precio de venta desde el nuevo costo
	// promedio; solo surte efecto si el producto está en modo automático.
	ApplySuggestedPrice bool
}

// IngestStockResult resultado de una entrada.
type IngestStockResult struct {
	Lot            *entity.Lot
	NewAverageCost decimal.Decimal
	NewStockOnHand int64
}

// IngestStock crea un lote nuevo, recalcula el costo promedio ponderado, suma
// stock y registra el asiento de entrada, todo en una transacción.
func (uc *UseCase) IngestStock(ctx context.Context, in IngestStockInput) (*IngestStockResult, error) {
	if in.ProductID == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.Qty <= 0 {
		return nil, domain.ErrInvalidQuantity
	}
	if in.UnitCost.IsNegative() || (in.UnitCost.IsZero() && !uc.cfg.AllowZeroUnitCost) {
		return nil, domain.ErrInvalidQuantity
	}
	received := in.ReceivedDate
	if received.IsZero() {
		received = time.Now()
	}
	if in.ExpiryDate != nil && !in.ExpiryDate.After(received) {
		return nil, domain.ErrInvalidInput
	}
	docType := in.DocumentType
	if docType == "" {
		docType = entity.DocumentTypePurchase
	}
	if docType != entity.DocumentTypePurchase && docType != entity.DocumentTypeReversal {
		return nil, domain.ErrInvalidInput
	}

	var result IngestStockResult
	err := uc.txRunner.Run(ctx, func(
		productRepo repository.ProductRepository,
		lotRepo repository.LotRepository,
		entryRepo repository.MovementEntryRepository,
	) error {
		product, err := productRepo.GetByIDForUpdate(ctx, in.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrNotFound
		}

		lotNum := in.LotNumber
		if lotNum == "" {
			numbers, err := lotRepo.ListNumbersByProduct(ctx, in.ProductID)
			if err != nil {
				return err
			}
			lotNum = lotnumber.SuggestNext(numbers)
		}

		now := time.Now()
		lot := &entity.Lot{
			ProductID:    in.ProductID,
			LotNumber:    lotNum,
			InitialQty:   in.Qty,
			RemainingQty: in.Qty,
			UnitCost:     in.UnitCost,
			ReceivedDate: received,
			ExpiryDate:   in.ExpiryDate,
			State:        entity.LotStateActive,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := lotRepo.Create(ctx, lot); err != nil {
			return err
		}

		newAvg := costing.WeightedAverage(product.StockOnHand, product.AverageCost, in.Qty, in.UnitCost)
		product.StockOnHand += in.Qty
		product.AverageCost = newAvg
		product.LastPurchaseCost = in.UnitCost
		if in.ApplySuggestedPrice && product.PriceMode == entity.PriceModeAutomatic {
			margin := product.MarginPercent
			if margin.IsZero() {
				margin = uc.cfg.DefaultMarginPercent
			}
			product.Price = costing.SuggestPrice(newAvg, margin)
		}
		product.UpdatedAt = now
		if err := productRepo.UpdateStockAndCost(ctx, product); err != nil {
			return err
		}

		entry := &entity.MovementEntry{
			ProductID:      in.ProductID,
			LotID:          &lot.ID,
			Kind:           entity.MovementKindEntry,
			QuantityIn:     in.Qty,
			ResultingStock: product.StockOnHand,
			UnitCost:       in.UnitCost,
			DocumentType:   docType,
			DocumentRef:    in.DocumentRef,
			OccurredAt:     now,
			ActorID:        actorPtr(in.ActorID),
			Note:           in.Note,
		}
		if err := appendEntry(ctx, entryRepo, entry); err != nil {
			return err
		}

		result = IngestStockResult{Lot: lot, NewAverageCost: newAvg, NewStockOnHand: product.StockOnHand}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// ConsumeLine una línea de consumo (producto + cantidad).
type ConsumeLine struct {
	ProductID string
	Qty       int64
}

// ConsumeResult efecto de un consumo sobre un producto.
type ConsumeResult struct {
	ProductID      string
	Allocations    []allocation.Allocation
	NewStockOnHand int64
}

// ConsumeStock descuenta qty del producto asignando lotes en orden FIFO (con
// prioridad de vencimiento) y registra un asiento por lote tocado. Si el stock
// total (lotes + legado) no alcanza, falla con ErrInsufficientStock sin dejar
// efectos parciales.
func (uc *UseCase) ConsumeStock(ctx context.Context, productID string, qty int64, documentRef, actorID, note string) (*ConsumeResult, error) {
	results, err := uc.ConsumeStockLines(ctx, documentRef, actorID, note, []ConsumeLine{{ProductID: productID, Qty: qty}})
	if err != nil {
		return nil, err
	}
	return &results[0], nil
}

// ConsumeStockLines consume varias líneas (una venta con varios productos) en
// UNA transacción. Los productos se bloquean en orden ascendente de ID para
// evitar deadlocks entre ventas concurrentes.
func (uc *UseCase) ConsumeStockLines(ctx context.Context, documentRef, actorID, note string, lines []ConsumeLine) ([]ConsumeResult, error) {
	if len(lines) == 0 {
		return nil, domain.ErrInvalidInput
	}
	for _, ln := range lines {
		if ln.ProductID == "" {
			return nil, domain.ErrInvalidInput
		}
		if ln.Qty <= 0 {
			return nil, domain.ErrInvalidQuantity
		}
	}
	ordered := make([]ConsumeLine, len(lines))
	copy(ordered, lines)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ProductID < ordered[j].ProductID })

	var results []ConsumeResult
	err := uc.txRunner.Run(ctx, func(
		productRepo repository.ProductRepository,
		lotRepo repository.LotRepository,
		entryRepo repository.MovementEntryRepository,
	) error {
		results = results[:0]
		for _, ln := range ordered {
			res, err := uc.consumeOne(ctx, productRepo, lotRepo, entryRepo, ln, documentRef, actorID, note)
			if err != nil {
				return err
			}
			results = append(results, *res)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// consumeOne aplica el plan del asignador a un producto dentro de la tx del
// caller. Bloqueo: fila del producto primero, luego sus lotes.
func (uc *UseCase) consumeOne(
	ctx context.Context,
	productRepo repository.ProductRepository,
	lotRepo repository.LotRepository,
	entryRepo repository.MovementEntryRepository,
	line ConsumeLine,
	documentRef, actorID, note string,
) (*ConsumeResult, error) {
	product, err := productRepo.GetByIDForUpdate(ctx, line.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if product.StockOnHand < line.Qty {
		return nil, domain.ErrInsufficientStock
	}

	lots, err := lotRepo.ListActiveForUpdate(ctx, line.ProductID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	legacyCost := product.AverageCost
	if legacyCost.IsZero() {
		legacyCost = product.LastPurchaseCost
	}
	allocs, err := allocation.Allocate(lots, product.LegacyQty, legacyCost, line.Qty, now)
	if err != nil {
		return nil, err
	}

	lotsByID := make(map[string]*entity.Lot, len(lots))
	for _, l := range lots {
		lotsByID[l.ID] = l
	}

	running := product.StockOnHand
	for _, alloc := range allocs {
		var lotID *string
		if alloc.IsLegacy() {
			product.LegacyQty -= alloc.Qty
		} else {
			lot := lotsByID[alloc.LotID]
			if err := lot.Deplete(alloc.Qty); err != nil {
				return nil, err
			}
			lot.UpdatedAt = now
			if err := lotRepo.Update(ctx, lot); err != nil {
				return nil, err
			}
			id := lot.ID
			lotID = &id
		}

		running -= alloc.Qty
		entry := &entity.MovementEntry{
			ProductID:      line.ProductID,
			LotID:          lotID,
			Kind:           entity.MovementKindExit,
			QuantityOut:    alloc.Qty,
			ResultingStock: running,
			UnitCost:       alloc.UnitCost,
			DocumentType:   entity.DocumentTypeSale,
			DocumentRef:    documentRef,
			OccurredAt:     now,
			ActorID:        actorPtr(actorID),
			Note:           note,
		}
		if err := appendEntry(ctx, entryRepo, entry); err != nil {
			return nil, err
		}
	}

	product.StockOnHand -= line.Qty
	product.UpdatedAt = now
	if err := productRepo.UpdateStockAndCost(ctx, product); err != nil {
		return nil, err
	}

	return &ConsumeResult{
		ProductID:      line.ProductID,
		Allocations:    allocs,
		NewStockOnHand: product.StockOnHand,
	}, nil
}

// WriteOffLot da de baja qty unidades de un lote (merma, daño, disposición) y
// registra el asiento de salida correspondiente.
func (uc *UseCase) WriteOffLot(ctx context.Context, lotID string, qty int64, reason, actorID string) error {
	if lotID == "" {
		return domain.ErrInvalidInput
	}
	if qty <= 0 {
		return domain.ErrInvalidQuantity
	}
	return uc.txRunner.Run(ctx, func(
		productRepo repository.ProductRepository,
		lotRepo repository.LotRepository,
		entryRepo repository.MovementEntryRepository,
	) error {
		lot, product, err := lockLotAndProduct(ctx, productRepo, lotRepo, lotID)
		if err != nil {
			return err
		}
		if err := lot.WriteOff(qty); err != nil {
			return err
		}
		now := time.Now()
		lot.UpdatedAt = now
		if err := lotRepo.Update(ctx, lot); err != nil {
			return err
		}
		product.StockOnHand -= qty
		product.UpdatedAt = now
		if err := productRepo.UpdateStockAndCost(ctx, product); err != nil {
			return err
		}
		entry := &entity.MovementEntry{
			ProductID:      lot.ProductID,
			LotID:          &lot.ID,
			Kind:           entity.MovementKindExit,
			QuantityOut:    qty,
			ResultingStock: product.StockOnHand,
			UnitCost:       lot.UnitCost,
			DocumentType:   entity.DocumentTypeWriteOff,
			DocumentRef:    lot.LotNumber,
			OccurredAt:     now,
			ActorID:        actorPtr(actorID),
			Note:           reason,
		}
		return appendEntry(ctx, entryRepo, entry)
	})
}

// ExpireLot fuerza a cero el remanente de un lote vencido y registra la salida.
// Devuelve la cantidad retirada.
func (uc *UseCase) ExpireLot(ctx context.Context, lotID, actorID string) (int64, error) {
	if lotID == "" {
		return 0, domain.ErrInvalidInput
	}
	var removed int64
	err := uc.txRunner.Run(ctx, func(
		productRepo repository.ProductRepository,
		lotRepo repository.LotRepository,
		entryRepo repository.MovementEntryRepository,
	) error {
		lot, product, err := lockLotAndProduct(ctx, productRepo, lotRepo, lotID)
		if err != nil {
			return err
		}
		qty, err := lot.Expire()
		if err != nil {
			return err
		}
		now := time.Now()
		lot.UpdatedAt = now
		if err := lotRepo.Update(ctx, lot); err != nil {
			return err
		}
		product.StockOnHand -= qty
		product.UpdatedAt = now
		if err := productRepo.UpdateStockAndCost(ctx, product); err != nil {
			return err
		}
		entry := &entity.MovementEntry{
			ProductID:      lot.ProductID,
			LotID:          &lot.ID,
			Kind:           entity.MovementKindExit,
			QuantityOut:    qty,
			ResultingStock: product.StockOnHand,
			UnitCost:       lot.UnitCost,
			DocumentType:   entity.DocumentTypeExpiry,
			DocumentRef:    lot.LotNumber,
			OccurredAt:     now,
			ActorID:        actorPtr(actorID),
		}
		if err := appendEntry(ctx, entryRepo, entry); err != nil {
			return err
		}
		removed = qty
		return nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

// AdjustStock aplica una corrección manual directa sobre el pool legado (stock
// sin lote). Un ajuste negativo mayor que el pool legado falla con
// ErrInsufficientStock: nunca se recorta a cero en silencio, eso
// desincronizaría la conciliación del kardex.
func (uc *UseCase) AdjustStock(ctx context.Context, productID string, qty int64, direction, reason, actorID string) error {
	if productID == "" {
		return domain.ErrInvalidInput
	}
	if qty <= 0 {
		return domain.ErrInvalidQuantity
	}
	if direction != AdjustIncrease && direction != AdjustDecrease {
		return domain.ErrInvalidInput
	}
	return uc.txRunner.Run(ctx, func(
		productRepo repository.ProductRepository,
		lotRepo repository.LotRepository,
		entryRepo repository.MovementEntryRepository,
	) error {
		product, err := productRepo.GetByIDForUpdate(ctx, productID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrNotFound
		}

		now := time.Now()
		entry := &entity.MovementEntry{
			ProductID:    productID,
			UnitCost:     product.AverageCost,
			DocumentType: entity.DocumentTypeAdjustment,
			OccurredAt:   now,
			ActorID:      actorPtr(actorID),
			Note:         reason,
		}
		switch direction {
		case AdjustIncrease:
			product.LegacyQty += qty
			product.StockOnHand += qty
			entry.Kind = entity.MovementKindEntry
			entry.QuantityIn = qty
		case AdjustDecrease:
			if qty > product.LegacyQty {
				return domain.ErrInsufficientStock
			}
			product.LegacyQty -= qty
			product.StockOnHand -= qty
			entry.Kind = entity.MovementKindExit
			entry.QuantityOut = qty
		}
		entry.ResultingStock = product.StockOnHand

		product.UpdatedAt = now
		if err := productRepo.UpdateStockAndCost(ctx, product); err != nil {
			return err
		}
		return appendEntry(ctx, entryRepo, entry)
	})
}

// lockLotAndProduct carga el lote sin bloquear para conocer su producto, luego
// bloquea producto y lote en ese orden (el mismo orden que usa el consumo,
// evita deadlocks). Relee el lote ya bloqueado.
func lockLotAndProduct(
	ctx context.Context,
	productRepo repository.ProductRepository,
	lotRepo repository.LotRepository,
	lotID string,
) (*entity.Lot, *entity.Product, error) {
	peek, err := lotRepo.GetByID(ctx, lotID)
	if err != nil {
		return nil, nil, err
	}
	if peek == nil {
		return nil, nil, domain.ErrNotFound
	}
	product, err := productRepo.GetByIDForUpdate(ctx, peek.ProductID)
	if err != nil {
		return nil, nil, err
	}
	if product == nil {
		return nil, nil, domain.ErrNotFound
	}
	lot, err := lotRepo.GetByIDForUpdate(ctx, lotID)
	if err != nil {
		return nil, nil, err
	}
	if lot == nil {
		return nil, nil, domain.ErrNotFound
	}
	return lot, product, nil
}

func appendEntry(ctx context.Context, entryRepo repository.MovementEntryRepository, entry *entity.MovementEntry) error {
	if err := entry.Validate(); err != nil {
		return err
	}
	return entryRepo.Create(ctx, entry)
}

func actorPtr(actorID string) *string {
	if actorID == "" {
		return nil
	}
	return &actorID
}
