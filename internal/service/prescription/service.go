package prescription

import (
	"context"
	"database/sql"
	"errors"

	"github.com/clinicore/opd-emr/internal/model"
	"github.com/clinicore/opd-emr/internal/repository"
	"github.com/clinicore/opd-emr/internal/service/lifecycle"
	"github.com/clinicore/opd-emr/internal/service/sequence"
	apperrors "github.com/clinicore/opd-emr/pkg/errors"
	"github.com/clinicore/opd-emr/pkg/metrics"
)

type Service struct {
	repo     repository.PrescriptionRepository
	patients repository.PatientRepository
	doctors  repository.DoctorRepository
	tests    repository.LabTestRepository
	seq      *sequence.Service
	metrics  *metrics.Metrics
}

func NewService(
	repo repository.PrescriptionRepository,
	patients repository.PatientRepository,
	doctors repository.DoctorRepository,
	tests repository.LabTestRepository,
	seq *sequence.Service,
	m *metrics.Metrics,
) *Service {
	return &Service{
		repo:     repo,
		patients: patients,
		doctors:  doctors,
		tests:    tests,
		seq:      seq,
		metrics:  m,
	}
}

// CreatePrescription validates all referenced entities, reserves an RX number
// and persists the prescription with its line items in status active.
func (s *Service) CreatePrescription(ctx context.Context, req *model.CreatePrescriptionRequest) (*model.Prescription, error) {
	if ok, err := s.patients.Exists(ctx, req.PatientID); err != nil {
		return nil, err
	} else if !ok {
		return nil, apperrors.NewReferentialIntegrity("patient", req.PatientID)
	}
	if ok, err := s.doctors.Exists(ctx, req.DoctorID); err != nil {
		return nil, err
	} else if !ok {
		return nil, apperrors.NewReferentialIntegrity("doctor", req.DoctorID)
	}
	for _, item := range req.Items {
		if item.LabTestID == nil {
			continue
		}
		if ok, err := s.tests.Exists(ctx, *item.LabTestID); err != nil {
			return nil, err
		} else if !ok {
			return nil, apperrors.NewReferentialIntegrity("lab test", *item.LabTestID)
		}
	}

	rxNumber, _, err := s.seq.NextIdentifier(ctx, lifecycle.KindPrescription.SeriesCode())
	if err != nil {
		return nil, err
	}

	prescription := &model.Prescription{
		RxNumber:  rxNumber,
		PatientID: req.PatientID,
		DoctorID:  req.DoctorID,
		Status:    model.PrescriptionStatus(lifecycle.InitialStatus(lifecycle.KindPrescription)),
		Diagnosis: req.Diagnosis,
		Notes:     req.Notes,
	}
	for _, item := range req.Items {
		prescription.Items = append(prescription.Items, model.PrescriptionItem{
			LabTestID:    item.LabTestID,
			Medication:   item.Medication,
			Dosage:       item.Dosage,
			Duration:     item.Duration,
			Instructions: item.Instructions,
		})
	}

	if err := s.repo.Create(ctx, prescription); err != nil {
		return nil, err
	}
	return prescription, nil
}

func (s *Service) GetPrescription(ctx context.Context, id int64) (*model.Prescription, error) {
	prescription, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFound("prescription", err)
		}
		return nil, err
	}
	return prescription, nil
}

// TransitionStatus moves a prescription along its lifecycle
// (active -> completed | cancelled) with an optimistic-concurrency guard.
func (s *Service) TransitionStatus(ctx context.Context, id int64, target string) (*model.Prescription, error) {
	prescription, err := s.GetPrescription(ctx, id)
	if err != nil {
		return nil, err
	}

	kind := lifecycle.KindPrescription
	if err := lifecycle.Validate(kind, string(prescription.Status), target); err != nil {
		if s.metrics != nil {
			s.metrics.TransitionRejected.WithLabelValues(string(kind), "invalid_transition").Inc()
		}
		return nil, err
	}

	from := prescription.Status
	to := model.PrescriptionStatus(model.NormalizeStatus(target))
	ok, err := s.repo.UpdateStatus(ctx, id, from, to)
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
		s.metrics.StatusTransitions.WithLabelValues(string(kind), string(from), string(to)).Inc()
	}
	return s.GetPrescription(ctx, id)
}

func (s *Service) ListPrescriptions(ctx context.Context, filter model.PrescriptionFilter) ([]*model.Prescription, int, error) {
	filter.Normalize()
	return s.repo.List(ctx, filter)
}
