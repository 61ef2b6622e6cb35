package clinicalnote

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicore/opd-emr/internal/model"
	apperrors "github.com/clinicore/opd-emr/pkg/errors"
)

type fakeNoteRepo struct {
	mu    sync.Mutex
	notes map[int64]*model.ClinicalNote
	next  int64
}

func newFakeNoteRepo() *fakeNoteRepo {
	return &fakeNoteRepo{notes: make(map[int64]*model.ClinicalNote), next: 1}
}

func (r *fakeNoteRepo) Create(_ context.Context, note *model.ClinicalNote) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	note.ID = r.next
	r.next++
	copied := *note
	r.notes[note.ID] = &copied
	return nil
}

func (r *fakeNoteRepo) Get(_ context.Context, id int64) (*model.ClinicalNote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.notes[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *n
	return &copied, nil
}

func (r *fakeNoteRepo) Update(_ context.Context, note *model.ClinicalNote) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *note
	r.notes[note.ID] = &copied
	return nil
}

func (r *fakeNoteRepo) Delete(_ context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.notes[id]; !ok {
		return false, nil
	}
	delete(r.notes, id)
	return true, nil
}

func (r *fakeNoteRepo) List(_ context.Context, filter model.ClinicalNoteFilter) ([]*model.ClinicalNote, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.ClinicalNote
	for _, n := range r.notes {
		if filter.PatientID != 0 && n.PatientID != filter.PatientID {
			continue
		}
		copied := *n
		out = append(out, &copied)
	}
	return out, len(out), nil
}

type fakePatientRepo struct{ existing map[int64]bool }

func (r *fakePatientRepo) Create(_ context.Context, _ *model.Patient) error { return nil }
func (r *fakePatientRepo) Get(_ context.Context, _ int64) (*model.Patient, error) {
	return nil, sql.ErrNoRows
}
func (r *fakePatientRepo) GetByCode(_ context.Context, _ string) (*model.Patient, error) {
	return nil, sql.ErrNoRows
}
func (r *fakePatientRepo) Update(_ context.Context, _ *model.Patient) error { return nil }
func (r *fakePatientRepo) UpdateStatus(_ context.Context, _ int64, _, _ model.PatientStatus) (bool, error) {
	return false, nil
}
func (r *fakePatientRepo) List(_ context.Context, _ model.PatientFilter) ([]*model.Patient, int, error) {
	return nil, 0, nil
}
func (r *fakePatientRepo) Exists(_ context.Context, id int64) (bool, error) {
	return r.existing[id], nil
}

type fakeDoctorRepo struct{ existing map[int64]bool }

func (r *fakeDoctorRepo) Create(_ context.Context, _ *model.Doctor) error { return nil }
func (r *fakeDoctorRepo) Get(_ context.Context, _ int64) (*model.Doctor, error) {
	return nil, sql.ErrNoRows
}
func (r *fakeDoctorRepo) Update(_ context.Context, _ *model.Doctor) error { return nil }
func (r *fakeDoctorRepo) List(_ context.Context, _ bool) ([]*model.Doctor, error) {
	return nil, nil
}
func (r *fakeDoctorRepo) Exists(_ context.Context, id int64) (bool, error) {
	return r.existing[id], nil
}

func newTestService() *Service {
	notes := newFakeNoteRepo()
	patients := &fakePatientRepo{existing: map[int64]bool{1: true}}
	doctors := &fakeDoctorRepo{existing: map[int64]bool{5: true}}
	return NewService(notes, patients, doctors)
}

func soapNote() *model.CreateClinicalNoteRequest {
	return &model.CreateClinicalNoteRequest{
		PatientID:  1,
		DoctorID:   5,
		NoteDate:   time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC),
		Subjective: "Fever for two days",
		Assessment: "Viral fever",
		Plan:       "Paracetamol, review in 3 days",
	}
}

func TestCreateNote(t *testing.T) {
	svc := newTestService()

	note, err := svc.CreateNote(context.Background(), soapNote())
	require.NoError(t, err)
	assert.Equal(t, int64(1), note.ID)
	assert.Equal(t, "Viral fever", note.Assessment)
}

func TestCreateNoteUnknownPatient(t *testing.T) {
	svc := newTestService()

	req := soapNote()
	req.PatientID = 999
	_, err := svc.CreateNote(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrReferentialIntegrity, apperrors.Code(err))
}

func TestCreateNoteUnknownDoctor(t *testing.T) {
	svc := newTestService()

	req := soapNote()
	req.DoctorID = 999
	_, err := svc.CreateNote(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrReferentialIntegrity, apperrors.Code(err))
}

func TestUpdateNotePartialFields(t *testing.T) {
	svc := newTestService()

	note, err := svc.CreateNote(context.Background(), soapNote())
	require.NoError(t, err)

	diagnosis := "Dengue suspected"
	updated, err := svc.UpdateNote(context.Background(), note.ID, &model.UpdateClinicalNoteRequest{
		Diagnosis: &diagnosis,
	})
	require.NoError(t, err)
	assert.Equal(t, "Dengue suspected", updated.Diagnosis)
	// Untouched fields survive.
	assert.Equal(t, "Viral fever", updated.Assessment)
}

func TestUpdateMissingNote(t *testing.T) {
	svc := newTestService()

	_, err := svc.UpdateNote(context.Background(), 42, &model.UpdateClinicalNoteRequest{})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrNotFound, apperrors.Code(err))
}

func TestDeleteNote(t *testing.T) {
	svc := newTestService()

	note, err := svc.CreateNote(context.Background(), soapNote())
	require.NoError(t, err)

	require.NoError(t, svc.DeleteNote(context.Background(), note.ID))

	_, err = svc.GetNote(context.Background(), note.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrNotFound, apperrors.Code(err))

	err = svc.DeleteNote(context.Background(), note.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrNotFound, apperrors.Code(err))
}

func TestListNotesFiltersByPatient(t *testing.T) {
	svc := newTestService()

	_, err := svc.CreateNote(context.Background(), soapNote())
	require.NoError(t, err)
	_, err = svc.CreateNote(context.Background(), soapNote())
	require.NoError(t, err)

	notes, total, err := svc.ListNotes(context.Background(), model.ClinicalNoteFilter{PatientID: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, notes, 2)

	notes, total, err = svc.ListNotes(context.Background(), model.ClinicalNoteFilter{PatientID: 2})
	require.NoError(t, err)
	assert.Equal(t, 0, total)
	assert.Empty(t, notes)
}
