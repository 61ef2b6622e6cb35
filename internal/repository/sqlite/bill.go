package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/clinicore/opd-emr/internal/model"
	"github.com/clinicore/opd-emr/internal/repository"
)

type billRepository struct {
	BaseRepository
}

func NewBillRepository(db *sqlx.DB) repository.BillRepository {
	return &billRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *billRepository) Create(ctx context.Context, bill *model.Bill) error {
	now := time.Now()
	bill.CreatedAt = now
	bill.UpdatedAt = now

	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO bills (bill_number, patient_id, prescription_id, status, sub_total, discount, total, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`
		result, err := tx.ExecContext(ctx, query,
			bill.BillNumber,
			bill.PatientID,
			bill.PrescriptionID,
			bill.Status,
			bill.SubTotal,
			bill.Discount,
			bill.Total,
			bill.CreatedAt,
			bill.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create bill: %w", err)
		}
		bill.ID, err = result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get bill id: %w", err)
		}

		itemQuery := `
			INSERT INTO bill_items (bill_id, lab_test_id, description, quantity, unit_price, amount)
			VALUES (?, ?, ?, ?, ?, ?)
		`
		for i := range bill.Items {
			item := &bill.Items[i]
			item.BillID = bill.ID
			res, err := tx.ExecContext(ctx, itemQuery,
				item.BillID,
				item.LabTestID,
				item.Description,
				item.Quantity,
				item.UnitPrice,
				item.Amount,
			)
			if err != nil {
				return fmt.Errorf("failed to create bill item: %w", err)
			}
			item.ID, err = res.LastInsertId()
			if err != nil {
				return fmt.Errorf("failed to get bill item id: %w", err)
			}
		}
		return nil
	})
}

func (r *billRepository) Get(ctx context.Context, id int64) (*model.Bill, error) {
	query := `SELECT * FROM bills WHERE id = ?`
	var bill model.Bill
	err := r.GetDB().GetContext(ctx, &bill, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get bill: %w", err)
	}

	itemQuery := `SELECT * FROM bill_items WHERE bill_id = ? ORDER BY id`
	if err := r.GetDB().SelectContext(ctx, &bill.Items, itemQuery, id); err != nil {
		return nil, fmt.Errorf("failed to get bill items: %w", err)
	}
	return &bill, nil
}

// UpdateStatus persists a validated transition together with its payment or
// cancellation fields. Line items are left untouched: paying a bill does not
// rewrite its children.
func (r *billRepository) UpdateStatus(ctx context.Context, bill *model.Bill, from model.BillStatus) (bool, error) {
	query := `
		UPDATE bills
		SET status = ?, payment_method = ?, paid_at = ?, cancel_reason = ?, updated_at = ?
		WHERE id = ? AND status = ?
	`
	bill.UpdatedAt = time.Now()

	result, err := r.GetDB().ExecContext(ctx, query,
		bill.Status,
		bill.PaymentMethod,
		bill.PaidAt,
		bill.CancelReason,
		bill.UpdatedAt,
		bill.ID,
		from,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update bill status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows > 0, nil
}

func (r *billRepository) List(ctx context.Context, filter model.BillFilter) ([]*model.Bill, int, error) {
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
	if err := r.GetDB().GetContext(ctx, &total, `SELECT COUNT(*) FROM bills`+where, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count bills: %w", err)
	}

	query := `SELECT * FROM bills` + where + ` ORDER BY id DESC LIMIT ? OFFSET ?`
	args = append(args, filter.PageSize, filter.Offset())

	var bills []*model.Bill
	if err := r.GetDB().SelectContext(ctx, &bills, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list bills: %w", err)
	}
	return bills, total, nil
}

// ExistsForPrescription guards against double-billing a prescription;
// cancelled bills do not count.
func (r *billRepository) ExistsForPrescription(ctx context.Context, prescriptionID int64) (bool, error) {
	var exists bool
	err := r.GetDB().GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM bills WHERE prescription_id = ? AND status != 'cancelled')`, prescriptionID)
	if err != nil {
		return false, fmt.Errorf("failed to check bill existence: %w", err)
	}
	return exists, nil
}
