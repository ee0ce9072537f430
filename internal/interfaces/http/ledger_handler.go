package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/DumarMatamoros/proyecto-grupoC-sub002/internal/application/dto"
	"github.com/DumarMatamoros/proyecto-grupoC-sub002/internal/application/ledger"
)

// LedgerHandler maneja las operaciones de escritura del motor de inventario
// (protegido). Cada endpoint es una transacción atómica del motor.
type LedgerHandler struct {
	uc *ledger.UseCase
}

// NewLedgerHandler construye el handler.
func NewLedgerHandler(uc *ledger.UseCase) *LedgerHandler {
	return &LedgerHandler{uc: uc}
}

// IngestStock registra una entrada de stock: crea el lote, recalcula el costo
// promedio y asienta el movimiento en el kardex.
func (h *LedgerHandler) IngestStock(c *fiber.Ctx) error {
	var in dto.IngestStockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	input := ledger.IngestStockInput{
		ProductID:           in.ProductID,
		Qty:                 in.Qty,
		UnitCost:            in.UnitCost,
		ExpiryDate:          in.ExpiryDate,
		LotNumber:           in.LotNumber,
		DocumentType:        in.DocumentType,
		DocumentRef:         in.DocumentRef,
		ActorID:             GetUserID(c),
		Note:                in.Note,
		ApplySuggestedPrice: in.ApplySuggestedPrice,
	}
	if in.ReceivedDate != nil {
		input.ReceivedDate = *in.ReceivedDate
	}
	result, err := h.uc.IngestStock(c.Context(), input)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.IngestStockResponse{
		LotID:          result.Lot.ID,
		LotNumber:      result.Lot.LotNumber,
		NewAverageCost: result.NewAverageCost,
		NewStockOnHand: result.NewStockOnHand,
	})
}

// ConsumeStock descuenta stock de un producto con asignación FIFO por lotes.
func (h *LedgerHandler) ConsumeStock(c *fiber.Ctx) error {
	var in dto.ConsumeStockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	result, err := h.uc.ConsumeStock(c.Context(), in.ProductID, in.Qty, in.DocumentRef, GetUserID(c), in.Note)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toConsumeResultDTO(*result))
}

// ConsumeStockLines descuenta varias líneas (una venta multi-producto) en una
// sola transacción.
func (h *LedgerHandler) ConsumeStockLines(c *fiber.Ctx) error {
	var in dto.ConsumeLinesRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	lines := make([]ledger.ConsumeLine, 0, len(in.Lines))
	for _, ln := range in.Lines {
		lines = append(lines, ledger.ConsumeLine{ProductID: ln.ProductID, Qty: ln.Qty})
	}
	results, err := h.uc.ConsumeStockLines(c.Context(), in.DocumentRef, GetUserID(c), in.Note, lines)
	if err != nil {
		return respondDomainError(c, err)
	}
	out := make([]dto.ConsumeResultDTO, 0, len(results))
	for _, r := range results {
		out = append(out, toConsumeResultDTO(r))
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"results": out})
}

// AdjustStock aplica una corrección manual sobre el stock sin lote.
func (h *LedgerHandler) AdjustStock(c *fiber.Ctx) error {
	var in dto.AdjustStockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := h.uc.AdjustStock(c.Context(), in.ProductID, in.Qty, in.Direction, in.Reason, GetUserID(c)); err != nil {
		return respondDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "ajuste registrado"})
}

// WriteOffLot da de baja unidades de un lote (merma, daño).
func (h *LedgerHandler) WriteOffLot(c *fiber.Ctx) error {
	lotID := c.Params("id")
	var in dto.WriteOffLotRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := h.uc.WriteOffLot(c.Context(), lotID, in.Qty, in.Reason, GetUserID(c)); err != nil {
		return respondDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "baja registrada"})
}

// ExpireLot fuerza a cero el remanente de un lote vencido.
func (h *LedgerHandler) ExpireLot(c *fiber.Ctx) error {
	lotID := c.Params("id")
	removed, err := h.uc.ExpireLot(c.Context(), lotID, GetUserID(c))
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "lote vencido", "qty_removed": removed})
}

func toConsumeResultDTO(r ledger.ConsumeResult) dto.ConsumeResultDTO {
	allocs := make([]dto.AllocationDTO, 0, len(r.Allocations))
	for _, a := range r.Allocations {
		allocs = append(allocs, dto.AllocationDTO{LotID: a.LotID, Qty: a.Qty, UnitCost: a.UnitCost})
	}
	return dto.ConsumeResultDTO{
		ProductID:      r.ProductID,
		Allocations:    allocs,
		NewStockOnHand: r.NewStockOnHand,
	}
}

// parseDateQuery parsea un parámetro de fecha RFC3339 o YYYY-MM-DD.
func parseDateQuery(value string) (*time.Time, bool) {
	if value == "" {
		return nil, true
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return &t, true
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return &t, true
	}
	return nil, false
}
