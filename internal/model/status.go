package model

import (
	"strings"
)

// Statuses are stored lowercase. The original data had inconsistent casing
// ('PAID', 'Pending'), so every status crossing the boundary goes through
// NormalizeStatus before comparison or persistence.

type BillStatus string

const (
	BillStatusPending   BillStatus = "pending"
	BillStatusPaid      BillStatus = "paid"
	BillStatusCancelled BillStatus = "cancelled"
)

type LabOrderStatus string

const (
	LabOrderStatusPending    LabOrderStatus = "pending"
	LabOrderStatusCollected  LabOrderStatus = "collected"
	LabOrderStatusProcessing LabOrderStatus = "processing"
	LabOrderStatusResulted   LabOrderStatus = "resulted"
	LabOrderStatusApproved   LabOrderStatus = "approved"
)

type PrescriptionStatus string

const (
	PrescriptionStatusActive    PrescriptionStatus = "active"
	PrescriptionStatusCompleted PrescriptionStatus = "completed"
	PrescriptionStatusCancelled PrescriptionStatus = "cancelled"
)

type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "scheduled"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
)

type PatientStatus string

const (
	PatientStatusActive   PatientStatus = "active"
	PatientStatusInactive PatientStatus = "inactive"
)

// NormalizeStatus lowercases and trims a raw status value.
func NormalizeStatus(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
