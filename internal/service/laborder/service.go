package laborder

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/clinicore/opd-emr/internal/model"
	"github.com/clinicore/opd-emr/internal/repository"
	"github.com/clinicore/opd-emr/internal/service/lifecycle"
	"github.com/clinicore/opd-emr/internal/service/sequence"
	apperrors "github.com/clinicore/opd-emr/pkg/errors"
	"github.com/clinicore/opd-emr/pkg/metrics"
)

type Service struct {
	repo          repository.LabOrderRepository
	patients      repository.PatientRepository
	prescriptions repository.PrescriptionRepository
	seq           *sequence.Service
	metrics       *metrics.Metrics
}

func NewService(
	repo repository.LabOrderRepository,
	patients repository.PatientRepository,
	prescriptions repository.PrescriptionRepository,
	seq *sequence.Service,
	m *metrics.Metrics,
) *Service {
	return &Service{
		repo:          repo,
		patients:      patients,
		prescriptions: prescriptions,
		seq:           seq,
		metrics:       m,
	}
}

func (s *Service) CreateOrder(ctx context.Context, req *model.CreateLabOrderRequest) (*model.LabOrder, error) {
	if ok, err := s.patients.Exists(ctx, req.PatientID); err != nil {
		return nil, err
	} else if !ok {
		return nil, apperrors.NewReferentialIntegrity("patient", req.PatientID)
	}
	if req.PrescriptionID != nil {
		if ok, err := s.prescriptions.Exists(ctx, *req.PrescriptionID); err != nil {
			return nil, err
		} else if !ok {
			return nil, apperrors.NewReferentialIntegrity("prescription", *req.PrescriptionID)
		}
	}

	orderNumber, _, err := s.seq.NextIdentifier(ctx, lifecycle.KindLabOrder.SeriesCode())
	if err != nil {
		return nil, err
	}

	order := &model.LabOrder{
		OrderNumber:    orderNumber,
		PatientID:      req.PatientID,
		PrescriptionID: req.PrescriptionID,
		Status:         model.LabOrderStatus(lifecycle.InitialStatus(lifecycle.KindLabOrder)),
		SampleType:     req.SampleType,
		Notes:          req.Notes,
	}
	if err := s.repo.Create(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *Service) GetOrder(ctx context.Context, id int64) (*model.LabOrder, error) {
	order, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFound("lab order", err)
		}
		return nil, err
	}
	return order, nil
}

// TransitionStatus advances an order along the linear sample workflow.
// Skipping stages is rejected; the WHERE-guarded update catches races.
func (s *Service) TransitionStatus(ctx context.Context, id int64, target string) (*model.LabOrder, error) {
	order, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	kind := lifecycle.KindLabOrder
	if err := lifecycle.Validate(kind, string(order.Status), target); err != nil {
		if s.metrics != nil {
			s.metrics.TransitionRejected.WithLabelValues(string(kind), "invalid_transition").Inc()
		}
		return nil, err
	}

	from := order.Status
	order.Status = model.LabOrderStatus(model.NormalizeStatus(target))

	now := time.Now()
	switch order.Status {
	case model.LabOrderStatusCollected:
		order.CollectedAt = &now
	case model.LabOrderStatusResulted:
		order.ResultedAt = &now
	case model.LabOrderStatusApproved:
		order.ApprovedAt = &now
	}

	ok, err := s.repo.UpdateStatus(ctx, order, from)
	if err != nil {
		return nil, err
	}
	if !ok {
		if s.metrics != nil {
			s.metrics.TransitionRejected.WithLabelValues(string(kind), "concurrent_modification").Inc()
		}
		return nil, apperrors.NewConcurrentModification(string(kind), id)
	}

	if s.metrics != nil {
		s.metrics.StatusTransitions.WithLabelValues(string(kind), string(from), string(order.Status)).Inc()
	}
	return s.GetOrder(ctx, id)
}

func (s *Service) ListOrders(ctx context.Context, filter model.LabOrderFilter) ([]*model.LabOrder, int, error) {
	filter.Normalize()
	return s.repo.List(ctx, filter)
}
