package appointment

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

const defaultDurationMinutes = 30

type Service struct {
	repo     repository.AppointmentRepository
	patients repository.PatientRepository
	doctors  repository.DoctorRepository
	seq      *sequence.Service
	metrics  *metrics.Metrics
}

func NewService(
	repo repository.AppointmentRepository,
	patients repository.PatientRepository,
	doctors repository.DoctorRepository,
	seq *sequence.Service,
	m *metrics.Metrics,
) *Service {
	return &Service{
		repo:     repo,
		patients: patients,
		doctors:  doctors,
		seq:      seq,
		metrics:  m,
	}
}

// CreateAppointment books a slot. The conflict check and the insert are not
// atomic, so the booked slot is best-effort exclusive; the schedule views
// filter out cancelled rows either way.
func (s *Service) CreateAppointment(ctx context.Context, req *model.CreateAppointmentRequest) (*model.Appointment, error) {
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

	if conflict, err := s.repo.HasConflict(ctx, req.DoctorID, req.ScheduledAt, 0); err != nil {
		return nil, err
	} else if conflict {
		return nil, apperrors.NewConflict("time slot already booked for this doctor", nil)
	}

	number, _, err := s.seq.NextIdentifier(ctx, lifecycle.KindAppointment.SeriesCode())
	if err != nil {
		return nil, err
	}

	appt := &model.Appointment{
		AppointmentNumber: number,
		PatientID:         req.PatientID,
		DoctorID:          req.DoctorID,
		ScheduledAt:       req.ScheduledAt,
		DurationMinutes:   req.DurationMinutes,
		AppointmentType:   req.AppointmentType,
		Priority:          req.Priority,
		Status:            model.AppointmentStatus(lifecycle.InitialStatus(lifecycle.KindAppointment)),
		Notes:             req.Notes,
	}
	if appt.DurationMinutes == 0 {
		appt.DurationMinutes = defaultDurationMinutes
	}
	if appt.Priority == "" {
		appt.Priority = "normal"
	}
	if err := s.repo.Create(ctx, appt); err != nil {
		return nil, err
	}
	return appt, nil
}

func (s *Service) GetAppointment(ctx context.Context, id int64) (*model.Appointment, error) {
	appt, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFound("appointment", err)
		}
		return nil, err
	}
	return appt, nil
}

// UpdateAppointment reschedules or annotates a booking. Only scheduled
// appointments can change; completed and cancelled ones are history.
func (s *Service) UpdateAppointment(ctx context.Context, id int64, req *model.UpdateAppointmentRequest) (*model.Appointment, error) {
	appt, err := s.GetAppointment(ctx, id)
	if err != nil {
		return nil, err
	}
	if appt.Status != model.AppointmentStatusScheduled {
		return nil, apperrors.NewBadRequest("only scheduled appointments can be updated", nil)
	}

	if req.ScheduledAt != nil {
		if conflict, err := s.repo.HasConflict(ctx, appt.DoctorID, *req.ScheduledAt, appt.ID); err != nil {
			return nil, err
		} else if conflict {
			return nil, apperrors.NewConflict("time slot already booked for this doctor", nil)
		}
		appt.ScheduledAt = *req.ScheduledAt
	}
	if req.DurationMinutes != nil {
		appt.DurationMinutes = *req.DurationMinutes
	}
	if req.AppointmentType != nil {
		appt.AppointmentType = *req.AppointmentType
	}
	if req.Priority != nil {
		appt.Priority = *req.Priority
	}
	if req.Notes != nil {
		appt.Notes = *req.Notes
	}

	if err := s.repo.Update(ctx, appt); err != nil {
		return nil, err
	}
	return appt, nil
}

// CompleteAppointment marks a kept appointment done.
func (s *Service) CompleteAppointment(ctx context.Context, id int64) (*model.Appointment, error) {
	return s.transition(ctx, id, string(model.AppointmentStatusCompleted), nil)
}

// CancelAppointment frees the slot. Cancellation is the soft delete: the row
// stays for the schedule history and the number is never reissued.
func (s *Service) CancelAppointment(ctx context.Context, id int64, reason string) (*model.Appointment, error) {
	var cancelReason *string
	if reason != "" {
		cancelReason = &reason
	}
	return s.transition(ctx, id, string(model.AppointmentStatusCancelled), cancelReason)
}

func (s *Service) transition(ctx context.Context, id int64, target string, cancelReason *string) (*model.Appointment, error) {
	appt, err := s.GetAppointment(ctx, id)
	if err != nil {
		return nil, err
	}

	kind := lifecycle.KindAppointment
	if err := lifecycle.Validate(kind, string(appt.Status), target); err != nil {
		if s.metrics != nil {
			s.metrics.TransitionRejected.WithLabelValues(string(kind), "invalid_transition").Inc()
		}
		return nil, err
	}

	from := appt.Status
	appt.Status = model.AppointmentStatus(model.NormalizeStatus(target))
	if cancelReason != nil {
		appt.CancelReason = cancelReason
	}

	ok, err := s.repo.UpdateStatus(ctx, appt, from)
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
		s.metrics.StatusTransitions.WithLabelValues(string(kind), string(from), string(appt.Status)).Inc()
	}
	return s.GetAppointment(ctx, id)
}

func (s *Service) ListAppointments(ctx context.Context, filter model.AppointmentFilter) ([]*model.Appointment, int, error) {
	filter.Normalize()
	return s.repo.List(ctx, filter)
}
