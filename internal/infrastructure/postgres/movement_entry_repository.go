package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/DumarMatamoros/proyecto-grupoC-sub002/internal/domain/entity"
	"github.com/DumarMatamoros/proyecto-grupoC-sub002/internal/domain/repository"
)

var _ repository.MovementEntryRepository = (*MovementEntryRepo)(nil)

const entryColumns = `id, product_id, lot_id, kind, qty_in, qty_out, resulting_stock, unit_cost, document_type, document_ref, occurred_at, actor_id, note, created_at`

// MovementEntryRepo implementación del kardex sobre PostgreSQL (usable con
// pool o tx). Solo inserta: no existen Update ni Delete.
type MovementEntryRepo struct {
	q Querier
}

// NewMovementEntryRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementEntryRepository(q Querier) *MovementEntryRepo {
	return &MovementEntryRepo{q: q}
}

// Create persiste un asiento del kardex.
func (r *MovementEntryRepo) Create(ctx context.Context, entry *entity.MovementEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	query := `
		INSERT INTO movement_entries (` + entryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.q.Exec(ctx, query,
		entry.ID, entry.ProductID, entry.LotID, entry.Kind,
		entry.QuantityIn, entry.QuantityOut, entry.ResultingStock, entry.UnitCost,
		entry.DocumentType, entry.DocumentRef, entry.OccurredAt, entry.ActorID,
		entry.Note, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert movement entry: %w", err)
	}
	return nil
}

func scanEntry(row pgx.Row) (*entity.MovementEntry, error) {
	var m entity.MovementEntry
	err := row.Scan(
		&m.ID, &m.ProductID, &m.LotID, &m.Kind, &m.QuantityIn, &m.QuantityOut,
		&m.ResultingStock, &m.UnitCost, &m.DocumentType, &m.DocumentRef,
		&m.OccurredAt, &m.ActorID, &m.Note, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ListByProduct lista asientos del producto en orden cronológico ascendente
// (el kardex se lee con saldo corrido). from/to opcionales.
func (r *MovementEntryRepo) ListByProduct(ctx context.Context, productID string, from, to *time.Time, limit, offset int) ([]*entity.MovementEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM movement_entries WHERE product_id = $1`
	args := []any{productID}
	pos := 2
	if from != nil {
		query += fmt.Sprintf(" AND occurred_at >= $%d", pos)
		args = append(args, *from)
		pos++
	}
	if to != nil {
		query += fmt.Sprintf(" AND occurred_at <= $%d", pos)
		args = append(args, *to)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY occurred_at, created_at, id LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list entries by product: %w", err)
	}
	defer rows.Close()
	var list []*entity.MovementEntry
	for rows.Next() {
		m, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movement entry: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

// TotalsByProduct acumula entradas y salidas del producto en el rango.
func (r *MovementEntryRepo) TotalsByProduct(ctx context.Context, productID string, from, to *time.Time) (repository.MovementTotals, error) {
	query := `
		SELECT COALESCE(SUM(qty_in), 0), COALESCE(SUM(qty_out), 0)
		FROM movement_entries WHERE product_id = $1`
	args := []any{productID}
	pos := 2
	if from != nil {
		query += fmt.Sprintf(" AND occurred_at >= $%d", pos)
		args = append(args, *from)
		pos++
	}
	if to != nil {
		query += fmt.Sprintf(" AND occurred_at <= $%d", pos)
		args = append(args, *to)
	}
	var totals repository.MovementTotals
	if err := r.q.QueryRow(ctx, query, args...).Scan(&totals.TotalIn, &totals.TotalOut); err != nil {
		return repository.MovementTotals{}, fmt.Errorf("totals by product: %w", err)
	}
	return totals, nil
}
