package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/clinicore/opd-emr/internal/model"
	"github.com/clinicore/opd-emr/internal/repository"
)

type seriesRepository struct {
	db *sqlx.DB
}

func NewSeriesRepository(db *sqlx.DB) repository.SeriesRepository {
	return &seriesRepository{db: db}
}

func (r *seriesRepository) Get(ctx context.Context, code string) (*model.Series, error) {
	query := `SELECT * FROM series WHERE code = ?`
	var series model.Series
	err := r.db.GetContext(ctx, &series, query, code)
	if err != nil {
		return nil, fmt.Errorf("failed to get series %q: %w", code, err)
	}
	return &series, nil
}

// Advance moves current_number from expected to next, but only if nobody got
// there first. The write lands before the caller ever sees the reserved
// number, so a crash on the caller's side can skip a number but never repeat
// one.
func (r *seriesRepository) Advance(ctx context.Context, code string, expected, next int64) (bool, error) {
	query := `
		UPDATE series
		SET current_number = ?, updated_at = ?
		WHERE code = ? AND current_number = ? AND is_active = 1
	`
	result, err := r.db.ExecContext(ctx, query, next, time.Now(), code, expected)
	if err != nil {
		return false, fmt.Errorf("failed to advance series %q: %w", code, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows > 0, nil
}

func (r *seriesRepository) Create(ctx context.Context, series *model.Series) error {
	query := `
		INSERT INTO series (code, prefix, suffix, padding, format, start_number, current_number, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	now := time.Now()
	series.CreatedAt = now
	series.UpdatedAt = now
	if series.CurrentNumber < series.StartNumber {
		series.CurrentNumber = series.StartNumber
	}

	result, err := r.db.ExecContext(ctx, query,
		series.Code,
		series.Prefix,
		series.Suffix,
		series.Padding,
		series.Format,
		series.StartNumber,
		series.CurrentNumber,
		series.IsActive,
		series.CreatedAt,
		series.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create series: %w", err)
	}
	series.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get series id: %w", err)
	}
	return nil
}

func (r *seriesRepository) List(ctx context.Context) ([]*model.Series, error) {
	query := `SELECT * FROM series ORDER BY code`
	var series []*model.Series
	err := r.db.SelectContext(ctx, &series, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list series: %w", err)
	}
	return series, nil
}
