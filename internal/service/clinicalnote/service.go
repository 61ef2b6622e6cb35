package clinicalnote

import (
	"context"
	"database/sql"
	"errors"

	"github.com/clinicore/opd-emr/internal/model"
	"github.com/clinicore/opd-emr/internal/repository"
	apperrors "github.com/clinicore/opd-emr/pkg/errors"
)

type Service struct {
	repo     repository.ClinicalNoteRepository
	patients repository.PatientRepository
	doctors  repository.DoctorRepository
}

func NewService(
	repo repository.ClinicalNoteRepository,
	patients repository.PatientRepository,
	doctors repository.DoctorRepository,
) *Service {
	return &Service{
		repo:     repo,
		patients: patients,
		doctors:  doctors,
	}
}

func (s *Service) CreateNote(ctx context.Context, req *model.CreateClinicalNoteRequest) (*model.ClinicalNote, error) {
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

	note := &model.ClinicalNote{
		PatientID:   req.PatientID,
		DoctorID:    req.DoctorID,
		NoteDate:    req.NoteDate,
		Subjective:  req.Subjective,
		Objective:   req.Objective,
		Assessment:  req.Assessment,
		Plan:        req.Plan,
		Diagnosis:   req.Diagnosis,
		Medications: req.Medications,
		FollowUp:    req.FollowUp,
		Notes:       req.Notes,
	}
	if err := s.repo.Create(ctx, note); err != nil {
		return nil, err
	}
	return note, nil
}

func (s *Service) GetNote(ctx context.Context, id int64) (*model.ClinicalNote, error) {
	note, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFound("clinical note", err)
		}
		return nil, err
	}
	return note, nil
}

func (s *Service) UpdateNote(ctx context.Context, id int64, req *model.UpdateClinicalNoteRequest) (*model.ClinicalNote, error) {
	note, err := s.GetNote(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.NoteDate != nil {
		note.NoteDate = *req.NoteDate
	}
	if req.Subjective != nil {
		note.Subjective = *req.Subjective
	}
	if req.Objective != nil {
		note.Objective = *req.Objective
	}
	if req.Assessment != nil {
		note.Assessment = *req.Assessment
	}
	if req.Plan != nil {
		note.Plan = *req.Plan
	}
	if req.Diagnosis != nil {
		note.Diagnosis = *req.Diagnosis
	}
	if req.Medications != nil {
		note.Medications = *req.Medications
	}
	if req.FollowUp != nil {
		note.FollowUp = *req.FollowUp
	}
	if req.Notes != nil {
		note.Notes = *req.Notes
	}

	if err := s.repo.Update(ctx, note); err != nil {
		return nil, err
	}
	return note, nil
}

// DeleteNote removes the note outright. Notes have no lifecycle and nothing
// references them, so there is no soft-delete state to keep.
func (s *Service) DeleteNote(ctx context.Context, id int64) error {
	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.NewNotFound("clinical note", nil)
	}
	return nil
}

func (s *Service) ListNotes(ctx context.Context, filter model.ClinicalNoteFilter) ([]*model.ClinicalNote, int, error) {
	filter.Normalize()
	return s.repo.List(ctx, filter)
}
