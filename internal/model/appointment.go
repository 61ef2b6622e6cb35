package model

import (
	"time"
)

// Appointment books a patient with a doctor for a time slot. A slot is
// doctor + scheduled_at; two non-cancelled appointments can never share one.
type Appointment struct {
	Base
	AppointmentNumber string            `db:"appointment_number" json:"appointment_number"`
	PatientID         int64             `db:"patient_id" json:"patient_id"`
	DoctorID          int64             `db:"doctor_id" json:"doctor_id"`
	ScheduledAt       time.Time         `db:"scheduled_at" json:"scheduled_at"`
	DurationMinutes   int               `db:"duration_minutes" json:"duration_minutes"`
	AppointmentType   string            `db:"appointment_type" json:"appointment_type"`
	Priority          string            `db:"priority" json:"priority"`
	Status            AppointmentStatus `db:"status" json:"status"`
	Notes             string            `db:"notes" json:"notes"`
	CancelReason      *string           `db:"cancel_reason" json:"cancel_reason,omitempty"`
}

type CreateAppointmentRequest struct {
	PatientID       int64     `json:"patient_id" binding:"required"`
	DoctorID        int64     `json:"doctor_id" binding:"required"`
	ScheduledAt     time.Time `json:"scheduled_at" binding:"required"`
	DurationMinutes int       `json:"duration_minutes" binding:"omitempty,gte=5,lte=240"`
	AppointmentType string    `json:"appointment_type" binding:"required"`
	Priority        string    `json:"priority"`
	Notes           string    `json:"notes"`
}

// UpdateAppointmentRequest reschedules or annotates a scheduled appointment.
// Status changes go through the complete/cancel endpoints instead.
type UpdateAppointmentRequest struct {
	ScheduledAt     *time.Time `json:"scheduled_at"`
	DurationMinutes *int       `json:"duration_minutes" binding:"omitempty,gte=5,lte=240"`
	AppointmentType *string    `json:"appointment_type"`
	Priority        *string    `json:"priority"`
	Notes           *string    `json:"notes"`
}

type CancelAppointmentRequest struct {
	Reason string `json:"reason"`
}

type AppointmentFilter struct {
	Pagination
	PatientID int64  `form:"patient_id"`
	DoctorID  int64  `form:"doctor_id"`
	Status    string `form:"status"`
}
