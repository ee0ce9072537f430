package ledger_test

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DumarMatamoros/proyecto-grupoC-sub002/internal/application/ledger"
	"github.com/DumarMatamoros/proyecto-grupoC-sub002/internal/domain"
	"github.com/DumarMatamoros/proyecto-grupoC-sub002/internal/domain/entity"
	"github.com/DumarMatamoros/proyecto-grupoC-sub002/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Tests del motor de inventario contra repositorios en memoria.
//
// El fakeTxRunner imita la semántica transaccional de PostgreSQL: toma un
// snapshot del estado antes de ejecutar la función y lo restaura ante error.
// Eso permite verificar la propiedad clave del motor: una operación que falla
// no deja NINGÚN efecto parcial (ni stock, ni lotes, ni asientos).
// ──────────────────────────────────────────────────────────────────────────────

// ── Ingreso de stock ──────────────────────────────────────────────────────────

func TestIngestStock_CreaLoteYRecalculaPromedio(t *testing.T) {
	store, uc := newEngine(t, ledger.Config{})
	p := seedProduct(store, "P1", 0, 0, "0")

	res, err := uc.IngestStock(ctx(), ledger.IngestStockInput{
		ProductID: p.ID,
		Qty:       10,
		UnitCost:  dec("2"),
	})
	require.NoError(t, err)

	assert.Equal(t, int64(10), res.NewStockOnHand)
	assert.True(t, dec("2").Equal(res.NewAverageCost))
	require.NotNil(t, res.Lot)
	assert.Equal(t, int64(10), res.Lot.RemainingQty)
	assert.Equal(t, entity.LotStateActive, res.Lot.State)
	assert.NotEmpty(t, res.Lot.LotNumber, "Sin número explícito el motor sugiere uno")

	// Asiento de entrada con la foto del stock resultante
	entries := store.entriesOf(p.ID)
	require.Len(t, entries, 1)
	assert.Equal(t, entity.MovementKindEntry, entries[0].Kind)
	assert.Equal(t, int64(10), entries[0].QuantityIn)
	assert.Equal(t, int64(10), entries[0].ResultingStock)
	assert.Equal(t, entity.DocumentTypePurchase, entries[0].DocumentType)
	require.NotNil(t, entries[0].LotID)
	assert.Equal(t, res.Lot.ID, *entries[0].LotID)
}

func TestIngestStock_PromedioPonderadoEntreDosLotes(t *testing.T) {
	store, uc := newEngine(t, ledger.Config{})
	p := seedProduct(store, "P1", 0, 0, "0")

	_, err := uc.IngestStock(ctx(), ledger.IngestStockInput{ProductID: p.ID, Qty: 10, UnitCost: dec("2")})
	require.NoError(t, err)
	res, err := uc.IngestStock(ctx(), ledger.IngestStockInput{ProductID: p.ID, Qty: 10, UnitCost: dec("4")})
	require.NoError(t, err)

	assert.True(t, dec("3").Equal(res.NewAverageCost),
		"10@2 + 10@4 debe promediar 3, obtuvo %s", res.NewAverageCost)
	assert.Equal(t, int64(20), res.NewStockOnHand)
	assert.True(t, dec("4").Equal(store.product(p.ID).LastPurchaseCost))
}

func TestIngestStock_SugiereNumeroDeLoteDelHistorial(t *testing.T) {
	store, uc := newEngine(t, ledger.Config{})
	p := seedProduct(store, "P1", 0, 0, "0")

	_, err := uc.IngestStock(ctx(), ledger.IngestStockInput{
		ProductID: p.ID, Qty: 5, UnitCost: dec("1"), LotNumber: "L-007",
	})
	require.NoError(t, err)

	res, err := uc.IngestStock(ctx(), ledger.IngestStockInput{ProductID: p.ID, Qty: 5, UnitCost: dec("1")})
	require.NoError(t, err)
	assert.Equal(t, "L-008", res.Lot.LotNumber,
		"El número sugerido continúa el patrón del historial")
}

func TestIngestStock_PrecioSugeridoSoloEnModoAutomatico(t *testing.T) {
	store, uc := newEngine(t, ledger.Config{DefaultMarginPercent: dec("30")})
	auto := seedProduct(store, "P-auto", 0, 0, "0")
	store.product(auto.ID).PriceMode = entity.PriceModeAutomatic
	manual := seedProduct(store, "P-manual", 0, 0, "0")
	store.product(manual.ID).Price = dec("50")

	_, err := uc.IngestStock(ctx(), ledger.IngestStockInput{
		ProductID: auto.ID, Qty: 10, UnitCost: dec("100"), ApplySuggestedPrice: true,
	})
	require.NoError(t, err)
	assert.True(t, dec("130").Equal(store.product(auto.ID).Price),
		"Modo automático: costo 100 con margen por defecto 30%% sugiere 130")

	_, err = uc.IngestStock(ctx(), ledger.IngestStockInput{
		ProductID: manual.ID, Qty: 10, UnitCost: dec("100"), ApplySuggestedPrice: true,
	})
	require.NoError(t, err)
	assert.True(t, dec("50").Equal(store.product(manual.ID).Price),
		"Modo manual: el precio nunca se toca aunque se solicite")
}

func TestIngestStock_ValidacionesDeEntrada(t *testing.T) {
	store, uc := newEngine(t, ledger.Config{})
	p := seedProduct(store, "P1", 0, 0, "0")
	received := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	before := received.Add(-24 * time.Hour)

	cases := []struct {
		name string
		in   ledger.IngestStockInput
		want error
	}{
		{"cantidad cero", ledger.IngestStockInput{ProductID: p.ID, Qty: 0, UnitCost: dec("1")}, domain.ErrInvalidQuantity},
		{"cantidad negativa", ledger.IngestStockInput{ProductID: p.ID, Qty: -5, UnitCost: dec("1")}, domain.ErrInvalidQuantity},
		{"costo negativo", ledger.IngestStockInput{ProductID: p.ID, Qty: 5, UnitCost: dec("-1")}, domain.ErrInvalidQuantity},
		{"costo cero sin política", ledger.IngestStockInput{ProductID: p.ID, Qty: 5, UnitCost: decimal.Zero}, domain.ErrInvalidQuantity},
		{"vencimiento anterior a recepción", ledger.IngestStockInput{
			ProductID: p.ID, Qty: 5, UnitCost: dec("1"), ReceivedDate: received, ExpiryDate: &before,
		}, domain.ErrInvalidInput},
		{"tipo de documento inválido", ledger.IngestStockInput{
			ProductID: p.ID, Qty: 5, UnitCost: dec("1"), DocumentType: entity.DocumentTypeSale,
		}, domain.ErrInvalidInput},
		{"producto inexistente", ledger.IngestStockInput{ProductID: "no-existe", Qty: 5, UnitCost: dec("1")}, domain.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uc.IngestStock(ctx(), tc.in)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	assert.Empty(t, store.entriesOf(p.ID), "Ninguna validación fallida deja asientos")
	assert.Equal(t, int64(0), store.product(p.ID).StockOnHand)
}

func TestIngestStock_CostoCeroConPolitica(t *testing.T) {
	store, uc := newEngine(t, ledger.Config{AllowZeroUnitCost: true})
	p := seedProduct(store, "P1", 0, 0, "0")

	res, err := uc.IngestStock(ctx(), ledger.IngestStockInput{
		ProductID: p.ID, Qty: 5, UnitCost: decimal.Zero, Note: "muestras sin costo",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5), res.NewStockOnHand)
	assert.True(t, res.NewAverageCost.IsZero())
}

// ── Consumo ───────────────────────────────────────────────────────────────────

func TestConsumeStock_FIFOConAsientoPorLote(t *testing.T) {
	store, uc := newEngine(t, ledger.Config{})
	p := seedProduct(store, "P1", 0, 0, "0")
	ingest(t, uc, p.ID, 10, "2", day(2026, 1, 1))
	ingest(t, uc, p.ID, 10, "4", day(2026, 2, 1))

	res, err := uc.ConsumeStock(ctx(), p.ID, 15, "FAC-001", "user-1", "")
	require.NoError(t, err)

	assert.Equal(t, int64(5), res.NewStockOnHand)
	require.Len(t, res.Allocations, 2)
	assert.Equal(t, int64(10), res.Allocations[0].Qty, "El lote más antiguo se agota primero")
	assert.True(t, dec("2").Equal(res.Allocations[0].UnitCost))
	assert.Equal(t, int64(5), res.Allocations[1].Qty)
	assert.True(t, dec("4").Equal(res.Allocations[1].UnitCost))

	// Un asiento de salida por lote tocado, con el stock corrido en cada foto
	exits := exitEntries(store.entriesOf(p.ID))
	require.Len(t, exits, 2)
	assert.Equal(t, int64(10), exits[0].ResultingStock, "20 - 10 del primer lote")
	assert.Equal(t, int64(5), exits[1].ResultingStock, "10 - 5 del segundo lote")
	assert.Equal(t, "FAC-001", exits[0].DocumentRef)

	// El primer lote quedó agotado, el segundo sigue activo
	lots := store.lotsOf(p.ID)
	assert.Equal(t, entity.LotStateDepleted, lots[0].State)
	assert.Equal(t, entity.LotStateActive, lots[1].State)
	assert.Equal(t, int64(5), lots[1].RemainingQty)
}

func TestConsumeStock_UsaPoolLegadoComoUltimoRecurso(t *testing.T) {
	store, uc := newEngine(t, ledger.Config{})
	p := seedProduct(store, "P1", 8, 8, "2.50") // 8 unidades legadas, sin lotes
	ingest(t, uc, p.ID, 3, "4", day(2026, 1, 1))

	res, err := uc.ConsumeStock(ctx(), p.ID, 6, "FAC-002", "", "")
	require.NoError(t, err)

	require.Len(t, res.Allocations, 2)
	assert.False(t, res.Allocations[0].IsLegacy())
	assert.Equal(t, int64(3), res.Allocations[0].Qty)
	assert.True(t, res.Allocations[1].IsLegacy(), "El faltante sale del pool legado")
	assert.Equal(t, int64(3), res.Allocations[1].Qty)

	got := store.product(p.ID)
	assert.Equal(t, int64(5), got.LegacyQty)
	assert.Equal(t, int64(5), got.StockOnHand)

	// El asiento legado no referencia lote
	exits := exitEntries(store.entriesOf(p.ID))
	require.Len(t, exits, 2)
	assert.Nil(t, exits[1].LotID)
}

func TestConsumeStock_InsuficienteNoDejaEfectosParciales(t *testing.T) {
	store, uc := newEngine(t, ledger.Config{})
	p := seedProduct(store, "P1", 2, 2, "1")
	ingest(t, uc, p.ID, 3, "2", day(2026, 1, 1))
	entriesBefore := len(store.entriesOf(p.ID))

	_, err := uc.ConsumeStock(ctx(), p.ID, 6, "FAC-003", "", "")
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	got := store.product(p.ID)
	assert.Equal(t, int64(5), got.StockOnHand, "El stock queda intacto tras el rollback")
	assert.Equal(t, int64(2), got.LegacyQty)
	assert.Len(t, store.entriesOf(p.ID), entriesBefore, "Ningún asiento parcial sobrevive")
	assert.Equal(t, int64(3), store.lotsOf(p.ID)[0].RemainingQty)
}

func TestConsumeStockLines_VariosProductosEnUnaTransaccion(t *testing.T) {
	store, uc := newEngine(t, ledger.Config{})
	pa := seedProduct(store, "PA", 0, 0, "0")
	pb := seedProduct(store, "PB", 0, 0, "0")
	ingest(t, uc, pa.ID, 10, "1", day(2026, 1, 1))
	ingest(t, uc, pb.ID, 10, "1", day(2026, 1, 1))

	results, err := uc.ConsumeStockLines(ctx(), "FAC-010", "user-1", "", []ledger.ConsumeLine{
		{ProductID: pb.ID, Qty: 4},
		{ProductID: pa.ID, Qty: 2},
	})
	require.NoError(t, err)
	require.Len(t, results, 2)

	// Las líneas se procesan en orden ascendente de ID de producto
	assert.Equal(t, int64(8), store.product(pa.ID).StockOnHand)
	assert.Equal(t, int64(6), store.product(pb.ID).StockOnHand)
}

func TestConsumeStockLines_UnaLineaInsuficienteRevierteTodas(t *testing.T) {
	store, uc := newEngine(t, ledger.Config{})
	pa := seedProduct(store, "PA", 0, 0, "0")
	pb := seedProduct(store, "PB", 0, 0, "0")
	ingest(t, uc, pa.ID, 10, "1", day(2026, 1, 1))
	ingest(t, uc, pb.ID, 1, "1", day(2026, 1, 1))

	_, err := uc.ConsumeStockLines(ctx(), "FAC-011", "", "", []ledger.ConsumeLine{
		{ProductID: pa.ID, Qty: 2},
		{ProductID: pb.ID, Qty: 5}, // insuficiente
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	assert.Equal(t, int64(10), store.product(pa.ID).StockOnHand,
		"La venta es atómica: la línea buena también se revierte")
	assert.Equal(t, int64(1), store.product(pb.ID).StockOnHand)
}

func TestConsumeStock_CantidadInvalida(t *testing.T) {
	store, uc := newEngine(t, ledger.Config{})
	p := seedProduct(store, "P1", 0, 0, "0")
	ingest(t, uc, p.ID, 10, "1", day(2026, 1, 1))

	_, err := uc.ConsumeStock(ctx(), p.ID, 0, "", "", "")
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
	_, err = uc.ConsumeStock(ctx(), p.ID, -2, "", "", "")
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
}

// ── Bajas y vencimientos ──────────────────────────────────────────────────────

func TestWriteOffLot_ParcialYTotal(t *testing.T) {
	store, uc := newEngine(t, ledger.Config{})
	p := seedProduct(store, "P1", 0, 0, "0")
	ingest(t, uc, p.ID, 10, "3", day(2026, 1, 1))
	lotID := store.lotsOf(p.ID)[0].ID

	require.NoError(t, uc.WriteOffLot(ctx(), lotID, 4, "rotura en bodega", "user-1"))
	l := store.lot(lotID)
	assert.Equal(t, int64(6), l.RemainingQty)
	assert.Equal(t, entity.LotStateActive, l.State, "La baja parcial deja el lote activo")
	assert.Equal(t, int64(6), store.product(p.ID).StockOnHand)

	require.NoError(t, uc.WriteOffLot(ctx(), lotID, 6, "resto dañado", "user-1"))
	l = store.lot(lotID)
	assert.Equal(t, entity.LotStateWrittenOff, l.State)
	assert.Equal(t, int64(0), store.product(p.ID).StockOnHand)

	exits := exitEntries(store.entriesOf(p.ID))
	require.Len(t, exits, 2)
	assert.Equal(t, entity.DocumentTypeWriteOff, exits[0].DocumentType)
	assert.Equal(t, "rotura en bodega", exits[0].Note)
}

func TestWriteOffLot_SobreLoteTerminalFalla(t *testing.T) {
	store, uc := newEngine(t, ledger.Config{})
	p := seedProduct(store, "P1", 0, 0, "0")
	ingest(t, uc, p.ID, 5, "1", day(2026, 1, 1))
	lotID := store.lotsOf(p.ID)[0].ID
	require.NoError(t, uc.WriteOffLot(ctx(), lotID, 5, "", ""))

	err := uc.WriteOffLot(ctx(), lotID, 1, "", "")
	assert.ErrorIs(t, err, domain.ErrAlreadyEmpty)
	assert.Equal(t, int64(0), store.product(p.ID).StockOnHand, "El fallo no toca el stock")
}

func TestWriteOffLot_MasDeLoQueQuedaNoMuta(t *testing.T) {
	store, uc := newEngine(t, ledger.Config{})
	p := seedProduct(store, "P1", 0, 0, "0")
	ingest(t, uc, p.ID, 5, "1", day(2026, 1, 1))
	lotID := store.lotsOf(p.ID)[0].ID

	err := uc.WriteOffLot(ctx(), lotID, 6, "", "")
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
	assert.Equal(t, int64(5), store.lot(lotID).RemainingQty)
	assert.Equal(t, int64(5), store.product(p.ID).StockOnHand)
}

func TestExpireLot_RetiraElRemanenteCompleto(t *testing.T) {
	store, uc := newEngine(t, ledger.Config{})
	p := seedProduct(store, "P1", 0, 0, "0")
	ingest(t, uc, p.ID, 10, "2", day(2026, 1, 1))
	lotID := store.lotsOf(p.ID)[0].ID
	require.NoError(t, uc.WriteOffLot(ctx(), lotID, 3, "", "")) // quedan 7

	removed, err := uc.ExpireLot(ctx(), lotID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(7), removed)
	assert.Equal(t, entity.LotStateExpired, store.lot(lotID).State)
	assert.Equal(t, int64(0), store.product(p.ID).StockOnHand)

	exits := exitEntries(store.entriesOf(p.ID))
	last := exits[len(exits)-1]
	assert.Equal(t, entity.DocumentTypeExpiry, last.DocumentType)
	assert.Equal(t, int64(7), last.QuantityOut)
}

func TestExpireLot_YaVacioFalla(t *testing.T) {
	store, uc := newEngine(t, ledger.Config{})
	p := seedProduct(store, "P1", 0, 0, "0")
	ingest(t, uc, p.ID, 5, "1", day(2026, 1, 1))
	lotID := store.lotsOf(p.ID)[0].ID
	_, err := uc.ExpireLot(ctx(), lotID, "")
	require.NoError(t, err)

	_, err = uc.ExpireLot(ctx(), lotID, "")
	assert.ErrorIs(t, err, domain.ErrAlreadyEmpty)
}

func TestExpireLot_Inexistente(t *testing.T) {
	_, uc := newEngine(t, ledger.Config{})
	_, err := uc.ExpireLot(ctx(), "no-existe", "")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ── Ajustes manuales ──────────────────────────────────────────────────────────

func TestAdjustStock_AumentoYDisminucionSobrePoolLegado(t *testing.T) {
	store, uc := newEngine(t, ledger.Config{})
	p := seedProduct(store, "P1", 0, 0, "0")

	require.NoError(t, uc.AdjustStock(ctx(), p.ID, 10, ledger.AdjustIncrease, "conteo inicial", "user-1"))
	got := store.product(p.ID)
	assert.Equal(t, int64(10), got.StockOnHand)
	assert.Equal(t, int64(10), got.LegacyQty, "El ajuste opera sobre el pool legado")

	require.NoError(t, uc.AdjustStock(ctx(), p.ID, 4, ledger.AdjustDecrease, "faltante en conteo", "user-1"))
	got = store.product(p.ID)
	assert.Equal(t, int64(6), got.StockOnHand)
	assert.Equal(t, int64(6), got.LegacyQty)

	entries := store.entriesOf(p.ID)
	require.Len(t, entries, 2)
	assert.Equal(t, entity.DocumentTypeAdjustment, entries[0].DocumentType)
	assert.Equal(t, entity.DocumentTypeAdjustment, entries[1].DocumentType)
	assert.Equal(t, "faltante en conteo", entries[1].Note)
}

func TestAdjustStock_DisminucionMayorQueElPoolFalla(t *testing.T) {
	store, uc := newEngine(t, ledger.Config{})
	p := seedProduct(store, "P1", 3, 3, "1")
	ingest(t, uc, p.ID, 10, "2", day(2026, 1, 1)) // stock 13, legado 3

	err := uc.AdjustStock(ctx(), p.ID, 5, ledger.AdjustDecrease, "", "")
	assert.ErrorIs(t, err, domain.ErrInsufficientStock,
		"El ajuste nunca recorta en silencio: falla aunque haya stock en lotes")

	got := store.product(p.ID)
	assert.Equal(t, int64(13), got.StockOnHand)
	assert.Equal(t, int64(3), got.LegacyQty)
}

func TestAdjustStock_DireccionInvalida(t *testing.T) {
	store, uc := newEngine(t, ledger.Config{})
	p := seedProduct(store, "P1", 0, 0, "0")

	err := uc.AdjustStock(ctx(), p.ID, 5, "sideways", "", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ── Conciliación del kardex ───────────────────────────────────────────────────

// TestConciliacionDelKardex ejercita una secuencia mixta de operaciones y
// verifica que la suma de entradas menos salidas del kardex iguala exactamente
// el stock del producto en todo momento, y que cada asiento fotografió el
// stock resultante correcto.
func TestConciliacionDelKardex(t *testing.T) {
	store, uc := newEngine(t, ledger.Config{})
	p := seedProduct(store, "P1", 0, 0, "0")

	ingest(t, uc, p.ID, 10, "2", day(2026, 1, 1))
	ingest(t, uc, p.ID, 20, "3", day(2026, 2, 1))
	_, err := uc.ConsumeStock(ctx(), p.ID, 12, "FAC-100", "", "")
	require.NoError(t, err)
	require.NoError(t, uc.AdjustStock(ctx(), p.ID, 5, ledger.AdjustIncrease, "sobrante", ""))
	require.NoError(t, uc.AdjustStock(ctx(), p.ID, 2, ledger.AdjustDecrease, "merma", ""))
	lots := store.lotsOf(p.ID)
	require.NoError(t, uc.WriteOffLot(ctx(), lots[1].ID, 3, "daño", ""))

	var replayed int64
	for _, e := range store.entriesOf(p.ID) {
		replayed += e.Delta()
		assert.Equal(t, replayed, e.ResultingStock,
			"Cada asiento debe fotografiar el stock inmediatamente posterior")
	}
	assert.Equal(t, store.product(p.ID).StockOnHand, replayed,
		"Re-sumar el kardex completo debe reproducir el stock actual")
	assert.Equal(t, int64(18), replayed) // 10+20-12+5-2-3
}

// ── fakes en memoria ──────────────────────────────────────────────────────────

type memStore struct {
	products map[string]*entity.Product
	lots     map[string]*entity.Lot
	entries  []*entity.MovementEntry
}

func newMemStore() *memStore {
	return &memStore{
		products: make(map[string]*entity.Product),
		lots:     make(map[string]*entity.Lot),
	}
}

func (s *memStore) clone() *memStore {
	c := newMemStore()
	for id, p := range s.products {
		cp := *p
		c.products[id] = &cp
	}
	for id, l := range s.lots {
		cl := *l
		c.lots[id] = &cl
	}
	c.entries = make([]*entity.MovementEntry, len(s.entries))
	copy(c.entries, s.entries)
	return c
}

func (s *memStore) restore(snap *memStore) {
	s.products = snap.products
	s.lots = snap.lots
	s.entries = snap.entries
}

func (s *memStore) product(id string) *entity.Product { return s.products[id] }
func (s *memStore) lot(id string) *entity.Lot         { return s.lots[id] }

func (s *memStore) lotsOf(productID string) []*entity.Lot {
	out := make([]*entity.Lot, 0)
	for _, l := range s.lots {
		if l.ProductID == productID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ReceivedDate.Equal(out[j].ReceivedDate) {
			return out[i].ReceivedDate.Before(out[j].ReceivedDate)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (s *memStore) entriesOf(productID string) []*entity.MovementEntry {
	out := make([]*entity.MovementEntry, 0)
	for _, e := range s.entries {
		if e.ProductID == productID {
			out = append(out, e)
		}
	}
	return out
}

// fakeTxRunner ejecuta la función contra el store y restaura el snapshot si
// falla, imitando el rollback de una transacción real.
type fakeTxRunner struct{ store *memStore }

func (r *fakeTxRunner) Run(ctx context.Context, fn func(
	repository.ProductRepository,
	repository.LotRepository,
	repository.MovementEntryRepository,
) error) error {
	snap := r.store.clone()
	err := fn(&fakeProductRepo{r.store}, &fakeLotRepo{r.store}, &fakeEntryRepo{r.store})
	if err != nil {
		r.store.restore(snap)
		return err
	}
	return nil
}

type fakeProductRepo struct{ s *memStore }

var _ repository.ProductRepository = (*fakeProductRepo)(nil)

func (r *fakeProductRepo) Create(_ context.Context, p *entity.Product) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	cp := *p
	r.s.products[p.ID] = &cp
	return nil
}

func (r *fakeProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	p, ok := r.s.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProductRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeProductRepo) GetBySKU(_ context.Context, sku string) (*entity.Product, error) {
	for _, p := range r.s.products {
		if p.SKU == sku {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeProductRepo) List(_ context.Context, _, _ int) ([]*entity.Product, error) {
	out := make([]*entity.Product, 0, len(r.s.products))
	for _, p := range r.s.products {
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeProductRepo) Update(_ context.Context, p *entity.Product) error {
	cp := *p
	r.s.products[p.ID] = &cp
	return nil
}

func (r *fakeProductRepo) UpdateStockAndCost(_ context.Context, p *entity.Product) error {
	cp := *p
	r.s.products[p.ID] = &cp
	return nil
}

func (r *fakeProductRepo) ListValuation(_ context.Context) ([]repository.ValuationItem, error) {
	items := make([]repository.ValuationItem, 0, len(r.s.products))
	for _, p := range r.s.products {
		items = append(items, repository.ValuationItem{
			ProductID:   p.ID,
			SKU:         p.SKU,
			Name:        p.Name,
			StockOnHand: p.StockOnHand,
			AverageCost: p.AverageCost,
			TotalValue:  p.AverageCost.Mul(decimal.NewFromInt(p.StockOnHand)),
		})
	}
	return items, nil
}

type fakeLotRepo struct{ s *memStore }

var _ repository.LotRepository = (*fakeLotRepo)(nil)

func (r *fakeLotRepo) Create(_ context.Context, l *entity.Lot) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	for _, other := range r.s.lots {
		if other.ProductID == l.ProductID && other.LotNumber == l.LotNumber {
			return domain.ErrDuplicate
		}
	}
	cl := *l
	r.s.lots[l.ID] = &cl
	return nil
}

func (r *fakeLotRepo) GetByID(_ context.Context, id string) (*entity.Lot, error) {
	l, ok := r.s.lots[id]
	if !ok {
		return nil, nil
	}
	cl := *l
	return &cl, nil
}

func (r *fakeLotRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.Lot, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeLotRepo) ListByProduct(_ context.Context, productID string, filter repository.LotFilter) ([]*entity.Lot, error) {
	out := make([]*entity.Lot, 0)
	now := time.Now()
	for _, l := range r.s.lots {
		if l.ProductID != productID {
			continue
		}
		if filter.OnlyActive && l.State != entity.LotStateActive {
			continue
		}
		if filter.WithStock && l.RemainingQty <= 0 {
			continue
		}
		if filter.OnlyExpired && !l.IsExpiredAt(now) {
			continue
		}
		cl := *l
		out = append(out, &cl)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeLotRepo) ListActiveForUpdate(_ context.Context, productID string) ([]*entity.Lot, error) {
	out := make([]*entity.Lot, 0)
	for _, l := range r.s.lots {
		if l.ProductID == productID && l.State == entity.LotStateActive && l.RemainingQty > 0 {
			cl := *l
			out = append(out, &cl)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ReceivedDate.Equal(out[j].ReceivedDate) {
			return out[i].ReceivedDate.Before(out[j].ReceivedDate)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *fakeLotRepo) ListNumbersByProduct(_ context.Context, productID string) ([]string, error) {
	out := make([]string, 0)
	for _, l := range r.s.lots {
		if l.ProductID == productID {
			out = append(out, l.LotNumber)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (r *fakeLotRepo) Update(_ context.Context, l *entity.Lot) error {
	stored, ok := r.s.lots[l.ID]
	if !ok {
		return domain.ErrNotFound
	}
	stored.RemainingQty = l.RemainingQty
	stored.State = l.State
	stored.UpdatedAt = l.UpdatedAt
	return nil
}

type fakeEntryRepo struct{ s *memStore }

var _ repository.MovementEntryRepository = (*fakeEntryRepo)(nil)

func (r *fakeEntryRepo) Create(_ context.Context, e *entity.MovementEntry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	ce := *e
	r.s.entries = append(r.s.entries, &ce)
	return nil
}

func (r *fakeEntryRepo) ListByProduct(_ context.Context, productID string, from, to *time.Time, limit, offset int) ([]*entity.MovementEntry, error) {
	out := make([]*entity.MovementEntry, 0)
	for _, e := range r.s.entries {
		if e.ProductID != productID {
			continue
		}
		if from != nil && e.OccurredAt.Before(*from) {
			continue
		}
		if to != nil && e.OccurredAt.After(*to) {
			continue
		}
		ce := *e
		out = append(out, &ce)
	}
	return out, nil
}

func (r *fakeEntryRepo) TotalsByProduct(ctx context.Context, productID string, from, to *time.Time) (repository.MovementTotals, error) {
	entries, _ := r.ListByProduct(ctx, productID, from, to, 0, 0)
	var totals repository.MovementTotals
	for _, e := range entries {
		totals.TotalIn += e.QuantityIn
		totals.TotalOut += e.QuantityOut
	}
	return totals, nil
}

// ── helpers ───────────────────────────────────────────────────────────────────

func newEngine(t *testing.T, cfg ledger.Config) (*memStore, *ledger.UseCase) {
	t.Helper()
	store := newMemStore()
	return store, ledger.NewUseCase(&fakeTxRunner{store: store}, cfg)
}

func seedProduct(store *memStore, sku string, stock, legacy int64, avgCost string) *entity.Product {
	p := &entity.Product{
		ID:          uuid.NewString(),
		SKU:         sku,
		Name:        fmt.Sprintf("Producto %s", sku),
		StockOnHand: stock,
		LegacyQty:   legacy,
		AverageCost: dec(avgCost),
		PriceMode:   entity.PriceModeManual,
	}
	store.products[p.ID] = p
	return p
}

func ingest(t *testing.T, uc *ledger.UseCase, productID string, qty int64, cost string, received time.Time) {
	t.Helper()
	_, err := uc.IngestStock(context.Background(), ledger.IngestStockInput{
		ProductID:    productID,
		Qty:          qty,
		UnitCost:     dec(cost),
		ReceivedDate: received,
	})
	require.NoError(t, err)
}

func exitEntries(entries []*entity.MovementEntry) []*entity.MovementEntry {
	out := make([]*entity.MovementEntry, 0, len(entries))
	for _, e := range entries {
		if e.Kind == entity.MovementKindExit {
			out = append(out, e)
		}
	}
	return out
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func ctx() context.Context { return context.Background() }
