package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/clinicore/opd-emr/internal/model"
	"github.com/clinicore/opd-emr/internal/repository"
)

type labOrderRepository struct {
	db *sqlx.DB
}

func NewLabOrderRepository(db *sqlx.DB) repository.LabOrderRepository {
	return &labOrderRepository{db: db}
}

func (r *labOrderRepository) Create(ctx context.Context, order *model.LabOrder) error {
	query := `
		INSERT INTO lab_orders (order_number, patient_id, prescription_id, status, sample_type, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	now := time.Now()
	order.CreatedAt = now
	order.UpdatedAt = now

	result, err := r.db.ExecContext(ctx, query,
		order.OrderNumber,
		order.PatientID,
		order.PrescriptionID,
		order.Status,
		order.SampleType,
		order.Notes,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create lab order: %w", err)
	}
	order.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get lab order id: %w", err)
	}
	return nil
}

func (r *labOrderRepository) Get(ctx context.Context, id int64) (*model.LabOrder, error) {
	query := `SELECT * FROM lab_orders WHERE id = ?`
	var order model.LabOrder
	err := r.db.GetContext(ctx, &order, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get lab order: %w", err)
	}
	return &order, nil
}

// UpdateStatus applies the already-validated transition carried by order. The
// WHERE clause pins the prior status so two racing transitions cannot both
// succeed from the same starting state.
func (r *labOrderRepository) UpdateStatus(ctx context.Context, order *model.LabOrder, from model.LabOrderStatus) (bool, error) {
	query := `
		UPDATE lab_orders
		SET status = ?, collected_at = ?, resulted_at = ?, approved_at = ?, notes = ?, updated_at = ?
		WHERE id = ? AND status = ?
	`
	order.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		order.Status,
		order.CollectedAt,
		order.ResultedAt,
		order.ApprovedAt,
		order.Notes,
		order.UpdatedAt,
		order.ID,
		from,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update lab order status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows > 0, nil
}

func (r *labOrderRepository) List(ctx context.Context, filter model.LabOrderFilter) ([]*model.LabOrder, int, error) {
	where := ` WHERE 1=1`
	args := []interface{}{}

	if filter.PatientID != 0 {
		where += ` AND patient_id = ?`
		args = append(args, filter.PatientID)
	}
	if filter.Status != "" {
		where += ` AND status = ?`
		args = append(args, model.NormalizeStatus(filter.Status))
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM lab_orders`+where, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count lab orders: %w", err)
	}

	query := `SELECT * FROM lab_orders` + where + ` ORDER BY id DESC LIMIT ? OFFSET ?`
	args = append(args, filter.PageSize, filter.Offset())

	var orders []*model.LabOrder
	if err := r.db.SelectContext(ctx, &orders, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list lab orders: %w", err)
	}
	return orders, total, nil
}
