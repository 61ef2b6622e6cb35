package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/clinicore/opd-emr/internal/model"
	"github.com/clinicore/opd-emr/internal/repository"
)

type clinicRepository struct {
	db *sqlx.DB
}

func NewClinicRepository(db *sqlx.DB) repository.ClinicRepository {
	return &clinicRepository{db: db}
}

func (r *clinicRepository) Get(ctx context.Context) (*model.Clinic, error) {
	query := `SELECT * FROM clinic WHERE id = 1`
	var clinic model.Clinic
	err := r.db.GetContext(ctx, &clinic, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get clinic: %w", err)
	}
	return &clinic, nil
}

func (r *clinicRepository) Update(ctx context.Context, clinic *model.Clinic) error {
	query := `
		UPDATE clinic
		SET name = ?, address = ?, city = ?, phone = ?, email = ?, registration_number = ?, tax_id = ?, updated_at = ?
		WHERE id = 1
	`
	clinic.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		clinic.Name,
		clinic.Address,
		clinic.City,
		clinic.Phone,
		clinic.Email,
		clinic.RegistrationNumber,
		clinic.TaxID,
		clinic.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update clinic: %w", err)
	}
	return nil
}
