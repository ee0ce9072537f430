package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/DumarMatamoros/proyecto-grupoC-sub002/internal/domain"
	"github.com/DumarMatamoros/proyecto-grupoC-sub002/internal/domain/entity"
	"github.com/DumarMatamoros/proyecto-grupoC-sub002/internal/domain/repository"
)

var _ repository.LotRepository = (*LotRepo)(nil)

const lotColumns = `id, product_id, lot_number, initial_qty, remaining_qty, unit_cost, received_date, expiry_date, state, created_at, updated_at`

// LotRepo implementación del puerto LotRepository sobre PostgreSQL (usable con pool o tx).
type LotRepo struct {
	q Querier
}

// NewLotRepository construye el adaptador de lotes. Pasar pool o tx (Querier).
func NewLotRepository(q Querier) *LotRepo {
	return &LotRepo{q: q}
}

func scanLot(row pgx.Row) (*entity.Lot, error) {
	var l entity.Lot
	err := row.Scan(
		&l.ID, &l.ProductID, &l.LotNumber, &l.InitialQty, &l.RemainingQty,
		&l.UnitCost, &l.ReceivedDate, &l.ExpiryDate, &l.State, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// Create persiste un lote nuevo. La unicidad de (product_id, lot_number) la
// impone la constraint: la sugerencia de número es solo mejor esfuerzo.
func (r *LotRepo) Create(ctx context.Context, lot *entity.Lot) error {
	if lot.ID == "" {
		lot.ID = uuid.New().String()
	}
	query := `
		INSERT INTO lots (` + lotColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		lot.ID, lot.ProductID, lot.LotNumber, lot.InitialQty, lot.RemainingQty,
		lot.UnitCost, lot.ReceivedDate, lot.ExpiryDate, lot.State, lot.CreatedAt, lot.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert lot: %w", err)
	}
	return nil
}

// GetByID obtiene un lote por ID.
func (r *LotRepo) GetByID(ctx context.Context, id string) (*entity.Lot, error) {
	query := `SELECT ` + lotColumns + ` FROM lots WHERE id = $1`
	l, err := scanLot(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get lot: %w", err)
	}
	return l, nil
}

// GetByIDForUpdate obtiene el lote y bloquea la fila (SELECT FOR UPDATE).
func (r *LotRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.Lot, error) {
	query := `SELECT ` + lotColumns + ` FROM lots WHERE id = $1 FOR UPDATE`
	l, err := scanLot(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get lot for update: %w", err)
	}
	return l, nil
}

// ListByProduct lista lotes del producto con filtros de consulta (solo lectura).
func (r *LotRepo) ListByProduct(ctx context.Context, productID string, filter repository.LotFilter) ([]*entity.Lot, error) {
	query := `SELECT ` + lotColumns + ` FROM lots WHERE product_id = $1`
	args := []any{productID}
	pos := 2
	if filter.OnlyActive {
		query += fmt.Sprintf(" AND state = $%d", pos)
		args = append(args, entity.LotStateActive)
		pos++
	}
	if filter.OnlyExpired {
		query += fmt.Sprintf(" AND state = $%d", pos)
		args = append(args, entity.LotStateExpired)
		pos++
	}
	if filter.WithStock {
		query += " AND remaining_qty > 0"
	}
	if filter.ExpiringWithinDays != nil {
		query += fmt.Sprintf(" AND expiry_date IS NOT NULL AND expiry_date <= now() + ($%d || ' days')::interval", pos)
		args = append(args, *filter.ExpiringWithinDays)
		pos++
	}
	query += " ORDER BY received_date, id"

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list lots by product: %w", err)
	}
	defer rows.Close()
	var list []*entity.Lot
	for rows.Next() {
		l, err := scanLot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lot: %w", err)
		}
		list = append(list, l)
	}
	return list, rows.Err()
}

// ListActiveForUpdate devuelve los lotes activos con stock del producto,
// bloqueados para update, en orden estable. El asignador decide el orden de
// consumo; aquí el ORDER BY fija el orden de adquisición de locks.
func (r *LotRepo) ListActiveForUpdate(ctx context.Context, productID string) ([]*entity.Lot, error) {
	query := `
		SELECT ` + lotColumns + `
		FROM lots
		WHERE product_id = $1 AND state = $2 AND remaining_qty > 0
		ORDER BY received_date, id
		FOR UPDATE`
	rows, err := r.q.Query(ctx, query, productID, entity.LotStateActive)
	if err != nil {
		return nil, fmt.Errorf("list active lots for update: %w", err)
	}
	defer rows.Close()
	var list []*entity.Lot
	for rows.Next() {
		l, err := scanLot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lot: %w", err)
		}
		list = append(list, l)
	}
	return list, rows.Err()
}

// ListNumbersByProduct devuelve los números de lote existentes del producto.
func (r *LotRepo) ListNumbersByProduct(ctx context.Context, productID string) ([]string, error) {
	rows, err := r.q.Query(ctx, `SELECT lot_number FROM lots WHERE product_id = $1 ORDER BY created_at`, productID)
	if err != nil {
		return nil, fmt.Errorf("list lot numbers: %w", err)
	}
	defer rows.Close()
	var numbers []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("scan lot number: %w", err)
		}
		numbers = append(numbers, n)
	}
	return numbers, rows.Err()
}

// Update persiste remaining_qty y state. initial_qty, costo y fechas son
// inmutables después de la creación.
func (r *LotRepo) Update(ctx context.Context, lot *entity.Lot) error {
	query := `
		UPDATE lots SET remaining_qty = $2, state = $3, updated_at = $4
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query, lot.ID, lot.RemainingQty, lot.State, lot.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update lot: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
