package billing

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/clinicore/opd-emr/internal/model"
	"github.com/clinicore/opd-emr/internal/repository"
	"github.com/clinicore/opd-emr/internal/service/lifecycle"
	"github.com/clinicore/opd-emr/internal/service/sequence"
	apperrors "github.com/clinicore/opd-emr/pkg/errors"
	"github.com/clinicore/opd-emr/pkg/metrics"
)

type Service struct {
	repo          repository.BillRepository
	patients      repository.PatientRepository
	prescriptions repository.PrescriptionRepository
	tests         repository.LabTestRepository
	seq           *sequence.Service
	metrics       *metrics.Metrics
}

func NewService(
	repo repository.BillRepository,
	patients repository.PatientRepository,
	prescriptions repository.PrescriptionRepository,
	tests repository.LabTestRepository,
	seq *sequence.Service,
	m *metrics.Metrics,
) *Service {
	return &Service{
		repo:          repo,
		patients:      patients,
		prescriptions: prescriptions,
		tests:         tests,
		seq:           seq,
		metrics:       m,
	}
}

// CreateBill validates references, reserves a BILL number and persists the
// bill with its line items in status pending. Catalog items referenced by a
// line have their current price snapshotted into the item; ad-hoc lines keep
// the price supplied by the caller. If persistence fails after the number was
// reserved, the number is gone; a retry reserves a fresh one.
func (s *Service) CreateBill(ctx context.Context, req *model.CreateBillRequest) (*model.Bill, error) {
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
		billed, err := s.repo.ExistsForPrescription(ctx, *req.PrescriptionID)
		if err != nil {
			return nil, err
		}
		if billed {
			return nil, apperrors.NewConflict(
				fmt.Sprintf("prescription %d has already been billed", *req.PrescriptionID), nil)
		}
	}

	bill := &model.Bill{
		PatientID:      req.PatientID,
		PrescriptionID: req.PrescriptionID,
		Status:         model.BillStatus(lifecycle.InitialStatus(lifecycle.KindBill)),
		Discount:       req.Discount,
	}

	for _, line := range req.Items {
		item := model.BillItem{
			LabTestID:   line.LabTestID,
			Description: line.Description,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
		}
		if line.LabTestID != nil {
			test, err := s.tests.Get(ctx, *line.LabTestID)
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return nil, apperrors.NewReferentialIntegrity("lab test", *line.LabTestID)
				}
				return nil, err
			}
			item.UnitPrice = test.Price
			if item.Description == "" {
				item.Description = test.TestName
			}
		}
		item.Amount = item.UnitPrice * float64(item.Quantity)
		bill.SubTotal += item.Amount
		bill.Items = append(bill.Items, item)
	}

	bill.Total = bill.SubTotal - bill.Discount
	if bill.Total < 0 {
		return nil, apperrors.NewBadRequest("discount exceeds bill subtotal", nil)
	}

	billNumber, _, err := s.seq.NextIdentifier(ctx, lifecycle.KindBill.SeriesCode())
	if err != nil {
		return nil, err
	}
	bill.BillNumber = billNumber

	if err := s.repo.Create(ctx, bill); err != nil {
		return nil, err
	}
	return bill, nil
}

func (s *Service) GetBill(ctx context.Context, id int64) (*model.Bill, error) {
	bill, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFound("bill", err)
		}
		return nil, err
	}
	return bill, nil
}

// PayBill settles a pending bill. Paid is terminal.
func (s *Service) PayBill(ctx context.Context, id int64, req *model.PayBillRequest) (*model.Bill, error) {
	bill, err := s.GetBill(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Amount != bill.Total {
		return nil, apperrors.NewBadRequest(
			fmt.Sprintf("payment amount %.2f does not match bill total %.2f", req.Amount, bill.Total), nil)
	}

	now := time.Now()
	method := req.PaymentMethod
	bill.PaymentMethod = &method
	bill.PaidAt = &now
	return s.transition(ctx, bill, model.BillStatusPaid)
}

// CancelBill voids a pending bill. Cancelled is terminal; the reserved bill
// number stays consumed.
func (s *Service) CancelBill(ctx context.Context, id int64, req *model.CancelBillRequest) (*model.Bill, error) {
	bill, err := s.GetBill(ctx, id)
	if err != nil {
		return nil, err
	}
	reason := req.Reason
	bill.CancelReason = &reason
	return s.transition(ctx, bill, model.BillStatusCancelled)
}

func (s *Service) transition(ctx context.Context, bill *model.Bill, target model.BillStatus) (*model.Bill, error) {
	kind := lifecycle.KindBill
	if err := lifecycle.Validate(kind, string(bill.Status), string(target)); err != nil {
		if s.metrics != nil {
			s.metrics.TransitionRejected.WithLabelValues(string(kind), "invalid_transition").Inc()
		}
		return nil, err
	}

	from := bill.Status
	bill.Status = target

	ok, err := s.repo.UpdateStatus(ctx, bill, from)
	if err != nil {
		return nil, err
	}
	if !ok {
		if s.metrics != nil {
			s.metrics.TransitionRejected.WithLabelValues(string(kind), "concurrent_modification").Inc()
		}
		return nil, apperrors.NewConcurrentModification(string(kind), bill.ID)
	}

	if s.metrics != nil {
		s.metrics.StatusTransitions.WithLabelValues(string(kind), string(from), string(target)).Inc()
	}
	return s.GetBill(ctx, bill.ID)
}

func (s *Service) ListBills(ctx context.Context, filter model.BillFilter) ([]*model.Bill, int, error) {
	filter.Normalize()
	return s.repo.List(ctx, filter)
}
