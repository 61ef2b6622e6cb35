package catalog

import (
	"context"
	"database/sql"
	"errors"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/clinicore/opd-emr/internal/model"
	"github.com/clinicore/opd-emr/internal/repository"
	apperrors "github.com/clinicore/opd-emr/pkg/errors"
	"github.com/clinicore/opd-emr/pkg/metrics"
)

const (
	activeTestsCacheKey = "lab_tests:active"
	cacheTTL            = 5 * time.Minute
)

// Service manages the lab-test catalog: CRUD, bulk import, and duplicate
// resolution. The active list is cached; every write invalidates the cache.
type Service struct {
	repo    repository.LabTestRepository
	cache   *gocache.Cache
	metrics *metrics.Metrics
}

// NewService creates the catalog service. metrics may be nil.
func NewService(repo repository.LabTestRepository, m *metrics.Metrics) *Service {
	return &Service{
		repo:    repo,
		cache:   gocache.New(cacheTTL, 10*time.Minute),
		metrics: m,
	}
}

func (s *Service) CreateTest(ctx context.Context, req *model.CreateLabTestRequest) (*model.LabTest, error) {
	test := &model.LabTest{
		TestCode:    req.TestCode,
		TestName:    req.TestName,
		Category:    req.Category,
		Subcategory: req.Subcategory,
		Price:       req.Price,
		IsActive:    true,
	}
	if err := s.repo.Create(ctx, test); err != nil {
		return nil, err
	}
	s.cache.Delete(activeTestsCacheKey)
	return test, nil
}

func (s *Service) GetTest(ctx context.Context, id int64) (*model.LabTest, error) {
	test, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFound("lab test", err)
		}
		return nil, err
	}
	return test, nil
}

func (s *Service) UpdateTest(ctx context.Context, id int64, req *model.UpdateLabTestRequest) (*model.LabTest, error) {
	test, err := s.GetTest(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.TestCode != nil {
		test.TestCode = *req.TestCode
	}
	if req.TestName != nil {
		test.TestName = *req.TestName
	}
	if req.Category != nil {
		test.Category = *req.Category
	}
	if req.Subcategory != nil {
		test.Subcategory = *req.Subcategory
	}
	if req.Price != nil {
		test.Price = *req.Price
	}
	if req.IsActive != nil {
		test.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, test); err != nil {
		return nil, err
	}
	s.cache.Delete(activeTestsCacheKey)
	return test, nil
}

// ListActiveTests serves from cache when possible; the list is read on every
// prescription and billing screen.
func (s *Service) ListActiveTests(ctx context.Context) ([]*model.LabTest, error) {
	if cached, ok := s.cache.Get(activeTestsCacheKey); ok {
		return cached.([]*model.LabTest), nil
	}
	tests, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.Set(activeTestsCacheKey, tests, cacheTTL)
	return tests, nil
}

// ImportTests inserts a batch of catalog rows. The import is deliberately
// non-idempotent (matching the historical bulk loaders); duplicates it creates
// are reconciled afterwards by ResolveAll.
func (s *Service) ImportTests(ctx context.Context, req *model.ImportLabTestsRequest) ([]*model.LabTest, error) {
	imported := make([]*model.LabTest, 0, len(req.Tests))
	for i := range req.Tests {
		test, err := s.CreateTest(ctx, &req.Tests[i])
		if err != nil {
			return imported, err
		}
		imported = append(imported, test)
	}
	return imported, nil
}
