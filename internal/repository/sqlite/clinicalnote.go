package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/clinicore/opd-emr/internal/model"
	"github.com/clinicore/opd-emr/internal/repository"
)

type clinicalNoteRepository struct {
	db *sqlx.DB
}

func NewClinicalNoteRepository(db *sqlx.DB) repository.ClinicalNoteRepository {
	return &clinicalNoteRepository{db: db}
}

func (r *clinicalNoteRepository) Create(ctx context.Context, note *model.ClinicalNote) error {
	query := `
		INSERT INTO clinical_notes (patient_id, doctor_id, note_date, subjective, objective, assessment,
			plan, diagnosis, medications, follow_up, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	now := time.Now()
	note.CreatedAt = now
	note.UpdatedAt = now

	result, err := r.db.ExecContext(ctx, query,
		note.PatientID,
		note.DoctorID,
		note.NoteDate,
		note.Subjective,
		note.Objective,
		note.Assessment,
		note.Plan,
		note.Diagnosis,
		note.Medications,
		note.FollowUp,
		note.Notes,
		note.CreatedAt,
		note.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create clinical note: %w", err)
	}
	note.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get clinical note id: %w", err)
	}
	return nil
}

func (r *clinicalNoteRepository) Get(ctx context.Context, id int64) (*model.ClinicalNote, error) {
	query := `SELECT * FROM clinical_notes WHERE id = ?`
	var note model.ClinicalNote
	if err := r.db.GetContext(ctx, &note, query, id); err != nil {
		return nil, fmt.Errorf("failed to get clinical note: %w", err)
	}
	return &note, nil
}

func (r *clinicalNoteRepository) Update(ctx context.Context, note *model.ClinicalNote) error {
	query := `
		UPDATE clinical_notes
		SET note_date = ?, subjective = ?, objective = ?, assessment = ?, plan = ?, diagnosis = ?,
			medications = ?, follow_up = ?, notes = ?, updated_at = ?
		WHERE id = ?
	`
	note.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		note.NoteDate,
		note.Subjective,
		note.Objective,
		note.Assessment,
		note.Plan,
		note.Diagnosis,
		note.Medications,
		note.FollowUp,
		note.Notes,
		note.UpdatedAt,
		note.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update clinical note: %w", err)
	}
	return nil
}

func (r *clinicalNoteRepository) Delete(ctx context.Context, id int64) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM clinical_notes WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete clinical note: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows > 0, nil
}

func (r *clinicalNoteRepository) List(ctx context.Context, filter model.ClinicalNoteFilter) ([]*model.ClinicalNote, int, error) {
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

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM clinical_notes`+where, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count clinical notes: %w", err)
	}

	query := `SELECT * FROM clinical_notes` + where + ` ORDER BY note_date DESC, id DESC LIMIT ? OFFSET ?`
	args = append(args, filter.PageSize, filter.Offset())

	var notes []*model.ClinicalNote
	if err := r.db.SelectContext(ctx, &notes, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list clinical notes: %w", err)
	}
	return notes, total, nil
}
