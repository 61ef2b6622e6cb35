package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/clinicore/opd-emr/internal/model"
	"github.com/clinicore/opd-emr/internal/repository"
)

type appointmentRepository struct {
	db *sqlx.DB
}

func NewAppointmentRepository(db *sqlx.DB) repository.AppointmentRepository {
	return &appointmentRepository{db: db}
}

func (r *appointmentRepository) Create(ctx context.Context, appt *model.Appointment) error {
	query := `
		INSERT INTO appointments (appointment_number, patient_id, doctor_id, scheduled_at, duration_minutes,
			appointment_type, priority, status, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	now := time.Now()
	appt.CreatedAt = now
	appt.UpdatedAt = now

	result, err := r.db.ExecContext(ctx, query,
		appt.AppointmentNumber,
		appt.PatientID,
		appt.DoctorID,
		appt.ScheduledAt,
		appt.DurationMinutes,
		appt.AppointmentType,
		appt.Priority,
		appt.Status,
		appt.Notes,
		appt.CreatedAt,
		appt.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	appt.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get appointment id: %w", err)
	}
	return nil
}

func (r *appointmentRepository) Get(ctx context.Context, id int64) (*model.Appointment, error) {
	query := `SELECT * FROM appointments WHERE id = ?`
	var appt model.Appointment
	if err := r.db.GetContext(ctx, &appt, query, id); err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &appt, nil
}

// Update rewrites the schedulable fields. The appointment number and status
// are deliberately left out; status moves only through UpdateStatus.
func (r *appointmentRepository) Update(ctx context.Context, appt *model.Appointment) error {
	query := `
		UPDATE appointments
		SET scheduled_at = ?, duration_minutes = ?, appointment_type = ?, priority = ?, notes = ?, updated_at = ?
		WHERE id = ?
	`
	appt.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		appt.ScheduledAt,
		appt.DurationMinutes,
		appt.AppointmentType,
		appt.Priority,
		appt.Notes,
		appt.UpdatedAt,
		appt.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update appointment: %w", err)
	}
	return nil
}

// UpdateStatus applies the already-validated transition carried by appt. The
// WHERE clause pins the prior status so racing transitions cannot both land.
func (r *appointmentRepository) UpdateStatus(ctx context.Context, appt *model.Appointment, from model.AppointmentStatus) (bool, error) {
	query := `
		UPDATE appointments
		SET status = ?, cancel_reason = ?, updated_at = ?
		WHERE id = ? AND status = ?
	`
	appt.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		appt.Status,
		appt.CancelReason,
		appt.UpdatedAt,
		appt.ID,
		from,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update appointment status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows > 0, nil
}

func (r *appointmentRepository) List(ctx context.Context, filter model.AppointmentFilter) ([]*model.Appointment, int, error) {
	where := ` WHERE 1=1`
	args := []interface{}{}

	if filter.PatientID != 0 {
		where += ` AND patient_id = ?`
		args = append(args, filter.PatientID)
	}
	if filter.DoctorID != 0 {
		where += ` AND doctor_id = ?`
		args = append(args, filter.DoctorID)
	}
	if filter.Status != "" {
		where += ` AND status = ?`
		args = append(args, model.NormalizeStatus(filter.Status))
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM appointments`+where, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count appointments: %w", err)
	}

	query := `SELECT * FROM appointments` + where + ` ORDER BY scheduled_at DESC LIMIT ? OFFSET ?`
	args = append(args, filter.PageSize, filter.Offset())

	var appts []*model.Appointment
	if err := r.db.SelectContext(ctx, &appts, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appts, total, nil
}

// HasConflict checks the doctor's slot. Cancelled appointments do not hold a
// slot, so a cancelled booking can be rebooked at the same time.
func (r *appointmentRepository) HasConflict(ctx context.Context, doctorID int64, at time.Time, excludeID int64) (bool, error) {
	query := `
		SELECT COUNT(*) FROM appointments
		WHERE doctor_id = ? AND scheduled_at = ? AND status != 'cancelled' AND id != ?
	`
	var count int
	if err := r.db.GetContext(ctx, &count, query, doctorID, at, excludeID); err != nil {
		return false, fmt.Errorf("failed to check appointment conflict: %w", err)
	}
	return count > 0, nil
}
