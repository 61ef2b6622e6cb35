package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/clinicore/opd-emr/internal/model"
	"github.com/clinicore/opd-emr/internal/repository"
)

type prescriptionRepository struct {
	BaseRepository
}

func NewPrescriptionRepository(db *sqlx.DB) repository.PrescriptionRepository {
	return &prescriptionRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *prescriptionRepository) Create(ctx context.Context, prescription *model.Prescription) error {
	now := time.Now()
	prescription.CreatedAt = now
	prescription.UpdatedAt = now

	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO prescriptions (rx_number, patient_id, doctor_id, status, diagnosis, notes, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`
		result, err := tx.ExecContext(ctx, query,
			prescription.RxNumber,
			prescription.PatientID,
			prescription.DoctorID,
			prescription.Status,
			prescription.Diagnosis,
			prescription.Notes,
			prescription.CreatedAt,
			prescription.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create prescription: %w", err)
		}
		prescription.ID, err = result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get prescription id: %w", err)
		}

		itemQuery := `
			INSERT INTO prescription_items (prescription_id, lab_test_id, medication, dosage, duration, instructions)
			VALUES (?, ?, ?, ?, ?, ?)
		`
		for i := range prescription.Items {
			item := &prescription.Items[i]
			item.PrescriptionID = prescription.ID
			res, err := tx.ExecContext(ctx, itemQuery,
				item.PrescriptionID,
				item.LabTestID,
				item.Medication,
				item.Dosage,
				item.Duration,
				item.Instructions,
			)
			if err != nil {
				return fmt.Errorf("failed to create prescription item: %w", err)
			}
			item.ID, err = res.LastInsertId()
			if err != nil {
				return fmt.Errorf("failed to get prescription item id: %w", err)
			}
		}
		return nil
	})
}

func (r *prescriptionRepository) Get(ctx context.Context, id int64) (*model.Prescription, error) {
	query := `SELECT * FROM prescriptions WHERE id = ?`
	var prescription model.Prescription
	err := r.GetDB().GetContext(ctx, &prescription, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get prescription: %w", err)
	}

	itemQuery := `SELECT * FROM prescription_items WHERE prescription_id = ? ORDER BY id`
	if err := r.GetDB().SelectContext(ctx, &prescription.Items, itemQuery, id); err != nil {
		return nil, fmt.Errorf("failed to get prescription items: %w", err)
	}
	return &prescription, nil
}

func (r *prescriptionRepository) UpdateStatus(ctx context.Context, id int64, from, to model.PrescriptionStatus) (bool, error) {
	query := `UPDATE prescriptions SET status = ?, updated_at = ? WHERE id = ? AND status = ?`
	result, err := r.GetDB().ExecContext(ctx, query, to, time.Now(), id, from)
	if err != nil {
		return false, fmt.Errorf("failed to update prescription status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows > 0, nil
}

func (r *prescriptionRepository) List(ctx context.Context, filter model.PrescriptionFilter) ([]*model.Prescription, int, error) {
	where := ` WHERE 1=1`
	args := []interface{}{}

	if filter.PatientID != 0 {
		where += ` AND patient_id = ?`
		args = append(args, filter.PatientID)
	}
	if filter.DoctorID != 0 {
		where += ` AND doctor_id = ?`
		args = append(args, filter.DoctorID)
	}
	if filter.Status != "" {
		where += ` AND status = ?`
		args = append(args, model.NormalizeStatus(filter.Status))
	}

	var total int
	if err := r.GetDB().GetContext(ctx, &total, `SELECT COUNT(*) FROM prescriptions`+where, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count prescriptions: %w", err)
	}

	query := `SELECT * FROM prescriptions` + where + ` ORDER BY id DESC LIMIT ? OFFSET ?`
	args = append(args, filter.PageSize, filter.Offset())

	var prescriptions []*model.Prescription
	if err := r.GetDB().SelectContext(ctx, &prescriptions, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list prescriptions: %w", err)
	}
	return prescriptions, total, nil
}

func (r *prescriptionRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.GetDB().GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM prescriptions WHERE id = ?)`, id)
	if err != nil {
		return false, fmt.Errorf("failed to check prescription existence: %w", err)
	}
	return exists, nil
}
