package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/clinicore/opd-emr/internal/model"
	"github.com/clinicore/opd-emr/internal/repository"
)

type pharmacyItemRepository struct {
	db *sqlx.DB
}

func NewPharmacyItemRepository(db *sqlx.DB) repository.PharmacyItemRepository {
	return &pharmacyItemRepository{db: db}
}

func (r *pharmacyItemRepository) Create(ctx context.Context, item *model.PharmacyItem) error {
	query := `
		INSERT INTO pharmacy_items (item_code, name, generic_name, item_type, unit_price, stock_quantity, reorder_level, prescription_required, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	now := time.Now()
	item.CreatedAt = now
	item.UpdatedAt = now

	result, err := r.db.ExecContext(ctx, query,
		item.ItemCode,
		item.Name,
		item.GenericName,
		item.ItemType,
		item.UnitPrice,
		item.StockQuantity,
		item.ReorderLevel,
		item.PrescriptionRequired,
		item.IsActive,
		item.CreatedAt,
		item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create pharmacy item: %w", err)
	}
	item.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get pharmacy item id: %w", err)
	}
	return nil
}

func (r *pharmacyItemRepository) Get(ctx context.Context, id int64) (*model.PharmacyItem, error) {
	query := `SELECT * FROM pharmacy_items WHERE id = ?`
	var item model.PharmacyItem
	err := r.db.GetContext(ctx, &item, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get pharmacy item: %w", err)
	}
	return &item, nil
}

func (r *pharmacyItemRepository) Update(ctx context.Context, item *model.PharmacyItem) error {
	query := `
		UPDATE pharmacy_items
		SET name = ?, generic_name = ?, item_type = ?, unit_price = ?, reorder_level = ?, prescription_required = ?, is_active = ?, updated_at = ?
		WHERE id = ?
	`
	item.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		item.Name,
		item.GenericName,
		item.ItemType,
		item.UnitPrice,
		item.ReorderLevel,
		item.PrescriptionRequired,
		item.IsActive,
		item.UpdatedAt,
		item.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update pharmacy item: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("pharmacy item not found")
	}
	return nil
}

// AdjustStock moves stock by delta in one guarded statement; the WHERE clause
// refuses adjustments that would drive stock negative.
func (r *pharmacyItemRepository) AdjustStock(ctx context.Context, id int64, delta int) (bool, error) {
	query := `
		UPDATE pharmacy_items
		SET stock_quantity = stock_quantity + ?, updated_at = ?
		WHERE id = ? AND stock_quantity + ? >= 0
	`
	result, err := r.db.ExecContext(ctx, query, delta, time.Now(), id, delta)
	if err != nil {
		return false, fmt.Errorf("failed to adjust stock: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows > 0, nil
}

func (r *pharmacyItemRepository) List(ctx context.Context, lowStockOnly bool) ([]*model.PharmacyItem, error) {
	query := `SELECT * FROM pharmacy_items WHERE is_active = 1`
	if lowStockOnly {
		query += ` AND stock_quantity <= reorder_level`
	}
	query += ` ORDER BY name`

	var items []*model.PharmacyItem
	if err := r.db.SelectContext(ctx, &items, query); err != nil {
		return nil, fmt.Errorf("failed to list pharmacy items: %w", err)
	}
	return items, nil
}
