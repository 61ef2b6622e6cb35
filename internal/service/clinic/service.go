package clinic

import (
	"context"

	"github.com/clinicore/opd-emr/internal/model"
	"github.com/clinicore/opd-emr/internal/repository"
)

type Service struct {
	repo repository.ClinicRepository
}

func NewService(repo repository.ClinicRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetClinic(ctx context.Context) (*model.Clinic, error) {
	return s.repo.Get(ctx)
}

func (s *Service) UpdateClinic(ctx context.Context, req *model.UpdateClinicRequest) (*model.Clinic, error) {
	clinic, err := s.repo.Get(ctx)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		clinic.Name = *req.Name
	}
	if req.Address != nil {
		clinic.Address = *req.Address
	}
	if req.City != nil {
		clinic.City = *req.City
	}
	if req.Phone != nil {
		clinic.Phone = *req.Phone
	}
	if req.Email != nil {
		clinic.Email = *req.Email
	}
	if req.RegistrationNumber != nil {
		clinic.RegistrationNumber = *req.RegistrationNumber
	}
	if req.TaxID != nil {
		clinic.TaxID = *req.TaxID
	}

	if err := s.repo.Update(ctx, clinic); err != nil {
		return nil, err
	}
	return clinic, nil
}
