package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/clinicore/opd-emr/internal/model"
	"github.com/clinicore/opd-emr/internal/repository"
)

type patientRepository struct {
	db *sqlx.DB
}

func NewPatientRepository(db *sqlx.DB) repository.PatientRepository {
	return &patientRepository{db: db}
}

func (r *patientRepository) Create(ctx context.Context, patient *model.Patient) error {
	query := `
		INSERT INTO patients (patient_code, first_name, last_name, gender, date_of_birth, phone, email, address, blood_group, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	now := time.Now()
	patient.CreatedAt = now
	patient.UpdatedAt = now

	result, err := r.db.ExecContext(ctx, query,
		patient.PatientCode,
		patient.FirstName,
		patient.LastName,
		patient.Gender,
		patient.DateOfBirth,
		patient.Phone,
		patient.Email,
		patient.Address,
		patient.BloodGroup,
		patient.Status,
		patient.CreatedAt,
		patient.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create patient: %w", err)
	}
	patient.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get patient id: %w", err)
	}
	return nil
}

func (r *patientRepository) Get(ctx context.Context, id int64) (*model.Patient, error) {
	query := `SELECT * FROM patients WHERE id = ?`
	var patient model.Patient
	err := r.db.GetContext(ctx, &patient, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return &patient, nil
}

func (r *patientRepository) GetByCode(ctx context.Context, code string) (*model.Patient, error) {
	query := `SELECT * FROM patients WHERE patient_code = ?`
	var patient model.Patient
	err := r.db.GetContext(ctx, &patient, query, code)
	if err != nil {
		return nil, fmt.Errorf("failed to get patient by code: %w", err)
	}
	return &patient, nil
}

// Update persists mutable demographics. patient_code is immutable after
// assignment and is deliberately absent from the SET list.
func (r *patientRepository) Update(ctx context.Context, patient *model.Patient) error {
	query := `
		UPDATE patients
		SET first_name = ?, last_name = ?, gender = ?, date_of_birth = ?, phone = ?, email = ?, address = ?, blood_group = ?, status = ?, updated_at = ?
		WHERE id = ?
	`
	patient.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		patient.FirstName,
		patient.LastName,
		patient.Gender,
		patient.DateOfBirth,
		patient.Phone,
		patient.Email,
		patient.Address,
		patient.BloodGroup,
		patient.Status,
		patient.UpdatedAt,
		patient.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update patient: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("patient not found")
	}
	return nil
}

func (r *patientRepository) UpdateStatus(ctx context.Context, id int64, from, to model.PatientStatus) (bool, error) {
	query := `UPDATE patients SET status = ?, updated_at = ? WHERE id = ? AND status = ?`
	result, err := r.db.ExecContext(ctx, query, to, time.Now(), id, from)
	if err != nil {
		return false, fmt.Errorf("failed to update patient status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows > 0, nil
}

func (r *patientRepository) List(ctx context.Context, filter model.PatientFilter) ([]*model.Patient, int, error) {
	where := ` WHERE 1=1`
	args := []interface{}{}

	if filter.SearchTerm != "" {
		where += ` AND (first_name LIKE ? OR last_name LIKE ? OR patient_code LIKE ?)`
		term := "%" + filter.SearchTerm + "%"
		args = append(args, term, term, term)
	}
	if filter.Status != "" {
		where += ` AND status = ?`
		args = append(args, model.NormalizeStatus(filter.Status))
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM patients`+where, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count patients: %w", err)
	}

	query := `SELECT * FROM patients` + where + ` ORDER BY id DESC LIMIT ? OFFSET ?`
	args = append(args, filter.PageSize, filter.Offset())

	var patients []*model.Patient
	if err := r.db.SelectContext(ctx, &patients, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list patients: %w", err)
	}
	return patients, total, nil
}

func (r *patientRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM patients WHERE id = ?)`, id)
	if err != nil {
		return false, fmt.Errorf("failed to check patient existence: %w", err)
	}
	return exists, nil
}
