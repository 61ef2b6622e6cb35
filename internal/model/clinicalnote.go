package model

import (
	"time"
)

// ClinicalNote is a SOAP-structured consultation note tied to a patient and
// the authoring doctor. Notes carry no status; they are plain records.
type ClinicalNote struct {
	Base
	PatientID   int64     `db:"patient_id" json:"patient_id"`
	DoctorID    int64     `db:"doctor_id" json:"doctor_id"`
	NoteDate    time.Time `db:"note_date" json:"note_date"`
	Subjective  string    `db:"subjective" json:"subjective"`
	Objective   string    `db:"objective" json:"objective"`
	Assessment  string    `db:"assessment" json:"assessment"`
	Plan        string    `db:"plan" json:"plan"`
	Diagnosis   string    `db:"diagnosis" json:"diagnosis"`
	Medications string    `db:"medications" json:"medications"`
	FollowUp    string    `db:"follow_up" json:"follow_up"`
	Notes       string    `db:"notes" json:"notes"`
}

type CreateClinicalNoteRequest struct {
	PatientID   int64     `json:"patient_id" binding:"required"`
	DoctorID    int64     `json:"doctor_id" binding:"required"`
	NoteDate    time.Time `json:"note_date" binding:"required"`
	Subjective  string    `json:"subjective" binding:"required"`
	Objective   string    `json:"objective"`
	Assessment  string    `json:"assessment" binding:"required"`
	Plan        string    `json:"plan" binding:"required"`
	Diagnosis   string    `json:"diagnosis"`
	Medications string    `json:"medications"`
	FollowUp    string    `json:"follow_up"`
	Notes       string    `json:"notes"`
}

type UpdateClinicalNoteRequest struct {
	NoteDate    *time.Time `json:"note_date"`
	Subjective  *string    `json:"subjective"`
	Objective   *string    `json:"objective"`
	Assessment  *string    `json:"assessment"`
	Plan        *string    `json:"plan"`
	Diagnosis   *string    `json:"diagnosis"`
	Medications *string    `json:"medications"`
	FollowUp    *string    `json:"follow_up"`
	Notes       *string    `json:"notes"`
}

type ClinicalNoteFilter struct {
	Pagination
	PatientID int64 `form:"patient_id"`
	DoctorID  int64 `form:"doctor_id"`
}
