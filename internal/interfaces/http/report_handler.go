package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/DumarMatamoros/proyecto-grupoC-sub002/internal/application/dto"
	"github.com/DumarMatamoros/proyecto-grupoC-sub002/internal/application/ledger"
	"github.com/DumarMatamoros/proyecto-grupoC-sub002/internal/domain/repository"
)

// ReportHandler superficies de solo lectura: kardex, lotes y valorización.
type ReportHandler struct {
	uc *ledger.ReportUseCase
}

// NewReportHandler construye el handler.
func NewReportHandler(uc *ledger.ReportUseCase) *ReportHandler {
	return &ReportHandler{uc: uc}
}

// Kardex devuelve el kardex de un producto con saldo corrido.
// Query params: from, to (RFC3339 o YYYY-MM-DD), limit, offset.
func (h *ReportHandler) Kardex(c *fiber.Ctx) error {
	productID := c.Params("id")
	from, ok := parseDateQuery(c.Query("from"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from inválido"})
	}
	to, ok := parseDateQuery(c.Query("to"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "to inválido"})
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()

	report, err := h.uc.Kardex(c.Context(), productID, from, to, page.Limit, page.Offset)
	if err != nil {
		return respondDomainError(c, err)
	}

	lines := make([]dto.KardexLineDTO, 0, len(report.Lines))
	for _, ln := range report.Lines {
		e := ln.Entry
		line := dto.KardexLineDTO{
			EntryID:        e.ID,
			Kind:           e.Kind,
			QuantityIn:     e.QuantityIn,
			QuantityOut:    e.QuantityOut,
			ResultingStock: e.ResultingStock,
			RunningBalance: ln.RunningBalance,
			UnitCost:       e.UnitCost,
			DocumentType:   e.DocumentType,
			DocumentRef:    e.DocumentRef,
			OccurredAt:     e.OccurredAt,
			Note:           e.Note,
		}
		if e.LotID != nil {
			line.LotID = *e.LotID
		}
		if e.ActorID != nil {
			line.ActorID = *e.ActorID
		}
		lines = append(lines, line)
	}
	return c.JSON(dto.KardexResponse{
		ProductID: report.ProductID,
		TotalIn:   report.Totals.TotalIn,
		TotalOut:  report.Totals.TotalOut,
		Lines:     lines,
	})
}

// Lots lista los lotes de un producto con días a vencimiento.
// Query params: active, with_stock, expired, expiring_within_days.
func (h *ReportHandler) Lots(c *fiber.Ctx) error {
	productID := c.Params("id")
	filter := repository.LotFilter{
		OnlyActive:  c.QueryBool("active"),
		WithStock:   c.QueryBool("with_stock"),
		OnlyExpired: c.QueryBool("expired"),
	}
	if days := c.QueryInt("expiring_within_days", -1); days >= 0 {
		filter.ExpiringWithinDays = &days
	}

	views, err := h.uc.Lots(c.Context(), productID, filter)
	if err != nil {
		return respondDomainError(c, err)
	}
	lots := make([]dto.LotDTO, 0, len(views))
	for _, v := range views {
		l := v.Lot
		lots = append(lots, dto.LotDTO{
			ID:           l.ID,
			ProductID:    l.ProductID,
			LotNumber:    l.LotNumber,
			InitialQty:   l.InitialQty,
			RemainingQty: l.RemainingQty,
			UnitCost:     l.UnitCost,
			ReceivedDate: l.ReceivedDate,
			ExpiryDate:   l.ExpiryDate,
			State:        l.State,
			DaysToExpiry: v.DaysToExpiry,
		})
	}
	return c.JSON(fiber.Map{"total": len(lots), "lots": lots})
}

// VerifyReconciliation repite la suma del kardex y la compara contra el stock
// actual del producto. Pensado para monitoreo y auditorías.
func (h *ReportHandler) VerifyReconciliation(c *fiber.Ctx) error {
	productID := c.Params("id")
	if err := h.uc.VerifyReconciliation(c.Context(), productID); err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(fiber.Map{"product_id": productID, "reconciled": true})
}

// Valuation devuelve la valorización del inventario (stock * costo promedio).
func (h *ReportHandler) Valuation(c *fiber.Ctx) error {
	report, err := h.uc.Valuation(c.Context())
	if err != nil {
		return respondDomainError(c, err)
	}
	items := make([]dto.ValuationItemDTO, 0, len(report.Items))
	for _, it := range report.Items {
		items = append(items, dto.ValuationItemDTO{
			ProductID:   it.ProductID,
			SKU:         it.SKU,
			Name:        it.Name,
			StockOnHand: it.StockOnHand,
			AverageCost: it.AverageCost,
			TotalValue:  it.TotalValue,
		})
	}
	return c.JSON(dto.ValuationResponse{Items: items, TotalValue: report.TotalValue})
}
