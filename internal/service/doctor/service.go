package doctor

import (
	"context"
	"database/sql"
	"errors"

	"github.com/clinicore/opd-emr/internal/model"
	"github.com/clinicore/opd-emr/internal/repository"
	apperrors "github.com/clinicore/opd-emr/pkg/errors"
)

type Service struct {
	repo repository.DoctorRepository
}

func NewService(repo repository.DoctorRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) CreateDoctor(ctx context.Context, req *model.CreateDoctorRequest) (*model.Doctor, error) {
	doctor := &model.Doctor{
		Name:            req.Name,
		Specialization:  req.Specialization,
		Qualification:   req.Qualification,
		Phone:           req.Phone,
		Email:           req.Email,
		ConsultationFee: req.ConsultationFee,
		IsActive:        true,
	}
	if err := s.repo.Create(ctx, doctor); err != nil {
		return nil, err
	}
	return doctor, nil
}

func (s *Service) GetDoctor(ctx context.Context, id int64) (*model.Doctor, error) {
	doctor, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFound("doctor", err)
		}
		return nil, err
	}
	return doctor, nil
}

func (s *Service) UpdateDoctor(ctx context.Context, id int64, req *model.UpdateDoctorRequest) (*model.Doctor, error) {
	doctor, err := s.GetDoctor(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		doctor.Name = *req.Name
	}
	if req.Specialization != nil {
		doctor.Specialization = *req.Specialization
	}
	if req.Qualification != nil {
		doctor.Qualification = *req.Qualification
	}
	if req.Phone != nil {
		doctor.Phone = *req.Phone
	}
	if req.Email != nil {
		doctor.Email = *req.Email
	}
	if req.ConsultationFee != nil {
		doctor.ConsultationFee = *req.ConsultationFee
	}
	if req.IsActive != nil {
		doctor.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, doctor); err != nil {
		return nil, err
	}
	return doctor, nil
}

func (s *Service) ListDoctors(ctx context.Context, activeOnly bool) ([]*model.Doctor, error) {
	return s.repo.List(ctx, activeOnly)
}
