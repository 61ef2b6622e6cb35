package model

type Prescription struct {
	Base
	RxNumber  string             `db:"rx_number" json:"rx_number"`
	PatientID int64              `db:"patient_id" json:"patient_id"`
	DoctorID  int64              `db:"doctor_id" json:"doctor_id"`
	Status    PrescriptionStatus `db:"status" json:"status"`
	Diagnosis string             `db:"diagnosis" json:"diagnosis"`
	Notes     string             `db:"notes" json:"notes"`
	Items     []PrescriptionItem `db:"-" json:"items,omitempty"`
}

// PrescriptionItem is either a medication line or a lab-test order line
// (LabTestID set), matching the original mixed prescription model.
type PrescriptionItem struct {
	ID             int64  `db:"id" json:"id"`
	PrescriptionID int64  `db:"prescription_id" json:"prescription_id"`
	LabTestID      *int64 `db:"lab_test_id" json:"lab_test_id,omitempty"`
	Medication     string `db:"medication" json:"medication"`
	Dosage         string `db:"dosage" json:"dosage"`
	Duration       string `db:"duration" json:"duration"`
	Instructions   string `db:"instructions" json:"instructions"`
}

type CreatePrescriptionRequest struct {
	PatientID int64                           `json:"patient_id" binding:"required"`
	DoctorID  int64                           `json:"doctor_id" binding:"required"`
	Diagnosis string                          `json:"diagnosis"`
	Notes     string                          `json:"notes"`
	Items     []CreatePrescriptionItemRequest `json:"items" binding:"omitempty,dive"`
}

type CreatePrescriptionItemRequest struct {
	LabTestID    *int64 `json:"lab_test_id"`
	Medication   string `json:"medication"`
	Dosage       string `json:"dosage"`
	Duration     string `json:"duration"`
	Instructions string `json:"instructions"`
}

type PrescriptionFilter struct {
	Pagination
	PatientID int64  `form:"patient_id"`
	DoctorID  int64  `form:"doctor_id"`
	Status    string `form:"status"`
}
