package patient

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
	repo repository.PatientRepository
	seq  *sequence.Service
}

func NewService(repo repository.PatientRepository, seq *sequence.Service) *Service {
	return &Service{repo: repo, seq: seq}
}

// RegisterPatient assigns the next PAT identifier and persists the patient.
// If persistence fails after the reservation, the number is lost for good;
// the caller retries with a fresh registration.
func (s *Service) RegisterPatient(ctx context.Context, req *model.CreatePatientRequest) (*model.Patient, error) {
	code, _, err := s.seq.NextIdentifier(ctx, lifecycle.KindPatient.SeriesCode())
	if err != nil {
		return nil, err
	}

	patient := &model.Patient{
		PatientCode: code,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Gender:      req.Gender,
		DateOfBirth: req.DateOfBirth,
		Phone:       req.Phone,
		Email:       req.Email,
		Address:     req.Address,
		BloodGroup:  req.BloodGroup,
		Status:      model.PatientStatusActive,
	}
	if err := s.repo.Create(ctx, patient); err != nil {
		return nil, err
	}
	return patient, nil
}

func (s *Service) GetPatient(ctx context.Context, id int64) (*model.Patient, error) {
	patient, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFound("patient", err)
		}
		return nil, err
	}
	return patient, nil
}

func (s *Service) GetPatientByCode(ctx context.Context, code string) (*model.Patient, error) {
	patient, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFound("patient", err)
		}
		return nil, err
	}
	return patient, nil
}

func (s *Service) UpdatePatient(ctx context.Context, id int64, req *model.UpdatePatientRequest) (*model.Patient, error) {
	patient, err := s.GetPatient(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		patient.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		patient.LastName = *req.LastName
	}
	if req.Gender != nil {
		patient.Gender = *req.Gender
	}
	if req.DateOfBirth != nil {
		patient.DateOfBirth = req.DateOfBirth
	}
	if req.Phone != nil {
		patient.Phone = *req.Phone
	}
	if req.Email != nil {
		patient.Email = *req.Email
	}
	if req.Address != nil {
		patient.Address = *req.Address
	}
	if req.BloodGroup != nil {
		patient.BloodGroup = *req.BloodGroup
	}
	if req.Status != nil {
		patient.Status = model.PatientStatus(model.NormalizeStatus(*req.Status))
	}

	if err := s.repo.Update(ctx, patient); err != nil {
		return nil, err
	}
	return patient, nil
}

// DeactivatePatient is the administrative soft delete; patient rows are never
// physically removed outside maintenance.
func (s *Service) DeactivatePatient(ctx context.Context, id int64) (*model.Patient, error) {
	patient, err := s.GetPatient(ctx, id)
	if err != nil {
		return nil, err
	}
	if patient.Status == model.PatientStatusInactive {
		return patient, nil
	}

	ok, err := s.repo.UpdateStatus(ctx, id, model.PatientStatusActive, model.PatientStatusInactive)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.NewConcurrentModification("patient", id)
	}
	return s.GetPatient(ctx, id)
}

func (s *Service) ListPatients(ctx context.Context, filter model.PatientFilter) ([]*model.Patient, int, error) {
	filter.Normalize()
	return s.repo.List(ctx, filter)
}
