package model

import (
	"time"
)

// LabOrder tracks a sample through the lab workflow:
// pending -> collected -> processing -> resulted -> approved.
type LabOrder struct {
	Base
	OrderNumber    string         `db:"order_number" json:"order_number"`
	PatientID      int64          `db:"patient_id" json:"patient_id"`
	PrescriptionID *int64         `db:"prescription_id" json:"prescription_id,omitempty"`
	Status         LabOrderStatus `db:"status" json:"status"`
	SampleType     string         `db:"sample_type" json:"sample_type"`
	CollectedAt    *time.Time     `db:"collected_at" json:"collected_at,omitempty"`
	ResultedAt     *time.Time     `db:"resulted_at" json:"resulted_at,omitempty"`
	ApprovedAt     *time.Time     `db:"approved_at" json:"approved_at,omitempty"`
	Notes          string         `db:"notes" json:"notes"`
}

type CreateLabOrderRequest struct {
	PatientID      int64  `json:"patient_id" binding:"required"`
	PrescriptionID *int64 `json:"prescription_id"`
	SampleType     string `json:"sample_type"`
	Notes          string `json:"notes"`
}

type TransitionLabOrderRequest struct {
	Status string `json:"status" binding:"required"`
}

type LabOrderFilter struct {
	Pagination
	PatientID int64  `form:"patient_id"`
	Status    string `form:"status"`
}
