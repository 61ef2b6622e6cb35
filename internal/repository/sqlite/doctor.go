package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/clinicore/opd-emr/internal/model"
	"github.com/clinicore/opd-emr/internal/repository"
)

type doctorRepository struct {
	db *sqlx.DB
}

func NewDoctorRepository(db *sqlx.DB) repository.DoctorRepository {
	return &doctorRepository{db: db}
}

func (r *doctorRepository) Create(ctx context.Context, doctor *model.Doctor) error {
	query := `
		INSERT INTO doctors (name, specialization, qualification, phone, email, consultation_fee, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	now := time.Now()
	doctor.CreatedAt = now
	doctor.UpdatedAt = now

	result, err := r.db.ExecContext(ctx, query,
		doctor.Name,
		doctor.Specialization,
		doctor.Qualification,
		doctor.Phone,
		doctor.Email,
		doctor.ConsultationFee,
		doctor.IsActive,
		doctor.CreatedAt,
		doctor.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create doctor: %w", err)
	}
	doctor.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get doctor id: %w", err)
	}
	return nil
}

func (r *doctorRepository) Get(ctx context.Context, id int64) (*model.Doctor, error) {
	query := `SELECT * FROM doctors WHERE id = ?`
	var doctor model.Doctor
	err := r.db.GetContext(ctx, &doctor, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get doctor: %w", err)
	}
	return &doctor, nil
}

func (r *doctorRepository) Update(ctx context.Context, doctor *model.Doctor) error {
	query := `
		UPDATE doctors
		SET name = ?, specialization = ?, qualification = ?, phone = ?, email = ?, consultation_fee = ?, is_active = ?, updated_at = ?
		WHERE id = ?
	`
	doctor.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		doctor.Name,
		doctor.Specialization,
		doctor.Qualification,
		doctor.Phone,
		doctor.Email,
		doctor.ConsultationFee,
		doctor.IsActive,
		doctor.UpdatedAt,
		doctor.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update doctor: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("doctor not found")
	}
	return nil
}

func (r *doctorRepository) List(ctx context.Context, activeOnly bool) ([]*model.Doctor, error) {
	query := `SELECT * FROM doctors`
	if activeOnly {
		query += ` WHERE is_active = 1`
	}
	query += ` ORDER BY name`

	var doctors []*model.Doctor
	if err := r.db.SelectContext(ctx, &doctors, query); err != nil {
		return nil, fmt.Errorf("failed to list doctors: %w", err)
	}
	return doctors, nil
}

func (r *doctorRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM doctors WHERE id = ? AND is_active = 1)`, id)
	if err != nil {
		return false, fmt.Errorf("failed to check doctor existence: %w", err)
	}
	return exists, nil
}
