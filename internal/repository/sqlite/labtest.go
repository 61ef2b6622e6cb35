package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/clinicore/opd-emr/internal/model"
	"github.com/clinicore/opd-emr/internal/repository"
)

type labTestRepository struct {
	db *sqlx.DB
}

func NewLabTestRepository(db *sqlx.DB) repository.LabTestRepository {
	return &labTestRepository{db: db}
}

func (r *labTestRepository) Create(ctx context.Context, test *model.LabTest) error {
	query := `
		INSERT INTO lab_tests (test_code, test_name, category, subcategory, price, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	now := time.Now()
	test.CreatedAt = now
	test.UpdatedAt = now

	result, err := r.db.ExecContext(ctx, query,
		test.TestCode,
		test.TestName,
		test.Category,
		test.Subcategory,
		test.Price,
		test.IsActive,
		test.CreatedAt,
		test.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create lab test: %w", err)
	}
	test.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get lab test id: %w", err)
	}
	return nil
}

func (r *labTestRepository) Get(ctx context.Context, id int64) (*model.LabTest, error) {
	query := `SELECT * FROM lab_tests WHERE id = ?`
	var test model.LabTest
	err := r.db.GetContext(ctx, &test, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get lab test: %w", err)
	}
	return &test, nil
}

func (r *labTestRepository) Update(ctx context.Context, test *model.LabTest) error {
	query := `
		UPDATE lab_tests
		SET test_code = ?, test_name = ?, category = ?, subcategory = ?, price = ?, is_active = ?, updated_at = ?
		WHERE id = ?
	`
	test.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		test.TestCode,
		test.TestName,
		test.Category,
		test.Subcategory,
		test.Price,
		test.IsActive,
		test.UpdatedAt,
		test.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update lab test: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("lab test not found")
	}
	return nil
}

// ListActive returns active catalog rows ordered by surrogate key so that
// duplicate grouping is deterministic.
func (r *labTestRepository) ListActive(ctx context.Context) ([]*model.LabTest, error) {
	query := `SELECT * FROM lab_tests WHERE is_active = 1 ORDER BY id`
	var tests []*model.LabTest
	if err := r.db.SelectContext(ctx, &tests, query); err != nil {
		return nil, fmt.Errorf("failed to list lab tests: %w", err)
	}
	return tests, nil
}

func (r *labTestRepository) Deactivate(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	query := fmt.Sprintf(`UPDATE lab_tests SET is_active = 0, updated_at = ? WHERE id IN (%s) AND is_active = 1`, placeholders)

	args := make([]interface{}, 0, len(ids)+1)
	args = append(args, time.Now())
	for _, id := range ids {
		args = append(args, id)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to deactivate lab tests: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows, nil
}

func (r *labTestRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM lab_tests WHERE id = ? AND is_active = 1)`, id)
	if err != nil {
		return false, fmt.Errorf("failed to check lab test existence: %w", err)
	}
	return exists, nil
}
