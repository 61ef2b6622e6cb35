package pharmacy

import (
	"context"
	"database/sql"
	"errors"

	"github.com/clinicore/opd-emr/internal/model"
	"github.com/clinicore/opd-emr/internal/repository"
	"github.com/clinicore/opd-emr/internal/service/lifecycle"
	"github.com/clinicore/opd-emr/internal/service/sequence"
	apperrors "github.com/clinicore/opd-emr/pkg/errors"
)

type Service struct {
	repo repository.PharmacyItemRepository
	seq  *sequence.Service
}

func NewService(repo repository.PharmacyItemRepository, seq *sequence.Service) *Service {
	return &Service{repo: repo, seq: seq}
}

// CreateItem assigns the next PHARM item code and persists the item. This
// replaces the original per-table MAX()+1 scheme that lost updates under
// concurrent inserts.
func (s *Service) CreateItem(ctx context.Context, req *model.CreatePharmacyItemRequest) (*model.PharmacyItem, error) {
	code, _, err := s.seq.NextIdentifier(ctx, lifecycle.KindPharmacyItem.SeriesCode())
	if err != nil {
		return nil, err
	}

	item := &model.PharmacyItem{
		ItemCode:             code,
		Name:                 req.Name,
		GenericName:          req.GenericName,
		ItemType:             req.ItemType,
		UnitPrice:            req.UnitPrice,
		StockQuantity:        req.StockQuantity,
		ReorderLevel:         req.ReorderLevel,
		PrescriptionRequired: req.PrescriptionRequired,
		IsActive:             true,
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *Service) GetItem(ctx context.Context, id int64) (*model.PharmacyItem, error) {
	item, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFound("pharmacy item", err)
		}
		return nil, err
	}
	return item, nil
}

func (s *Service) UpdateItem(ctx context.Context, id int64, req *model.UpdatePharmacyItemRequest) (*model.PharmacyItem, error) {
	item, err := s.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		item.Name = *req.Name
	}
	if req.GenericName != nil {
		item.GenericName = *req.GenericName
	}
	if req.ItemType != nil {
		item.ItemType = *req.ItemType
	}
	if req.UnitPrice != nil {
		item.UnitPrice = *req.UnitPrice
	}
	if req.ReorderLevel != nil {
		item.ReorderLevel = *req.ReorderLevel
	}
	if req.PrescriptionRequired != nil {
		item.PrescriptionRequired = *req.PrescriptionRequired
	}
	if req.IsActive != nil {
		item.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// AdjustStock applies a signed stock delta. A delta that would drive the
// quantity negative is rejected without modifying the row.
func (s *Service) AdjustStock(ctx context.Context, id int64, req *model.AdjustStockRequest) (*model.PharmacyItem, error) {
	if _, err := s.GetItem(ctx, id); err != nil {
		return nil, err
	}

	ok, err := s.repo.AdjustStock(ctx, id, req.Delta)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.NewConflict("stock adjustment would make quantity negative", nil)
	}
	return s.GetItem(ctx, id)
}

func (s *Service) ListItems(ctx context.Context, lowStockOnly bool) ([]*model.PharmacyItem, error) {
	return s.repo.List(ctx, lowStockOnly)
}
