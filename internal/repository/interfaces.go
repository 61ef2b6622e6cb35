package repository

import (
	"context"
	"time"

	"github.com/clinicore/opd-emr/internal/model"
)

// SeriesRepository is the persistence side of the counter store. Advance is a
// compare-and-swap: it moves current_number from the expected value to the next
// one and reports whether the swap applied.
type SeriesRepository interface {
	Get(ctx context.Context, code string) (*model.Series, error)
	Advance(ctx context.Context, code string, expected, next int64) (bool, error)
	Create(ctx context.Context, series *model.Series) error
	List(ctx context.Context) ([]*model.Series, error)
}

type PatientRepository interface {
	Create(ctx context.Context, patient *model.Patient) error
	Get(ctx context.Context, id int64) (*model.Patient, error)
	GetByCode(ctx context.Context, code string) (*model.Patient, error)
	Update(ctx context.Context, patient *model.Patient) error
	UpdateStatus(ctx context.Context, id int64, from, to model.PatientStatus) (bool, error)
	List(ctx context.Context, filter model.PatientFilter) ([]*model.Patient, int, error)
	Exists(ctx context.Context, id int64) (bool, error)
}

type DoctorRepository interface {
	Create(ctx context.Context, doctor *model.Doctor) error
	Get(ctx context.Context, id int64) (*model.Doctor, error)
	Update(ctx context.Context, doctor *model.Doctor) error
	List(ctx context.Context, activeOnly bool) ([]*model.Doctor, error)
	Exists(ctx context.Context, id int64) (bool, error)
}

type LabTestRepository interface {
	Create(ctx context.Context, test *model.LabTest) error
	Get(ctx context.Context, id int64) (*model.LabTest, error)
	Update(ctx context.Context, test *model.LabTest) error
	ListActive(ctx context.Context) ([]*model.LabTest, error)
	Deactivate(ctx context.Context, ids []int64) (int64, error)
	Exists(ctx context.Context, id int64) (bool, error)
}

type PrescriptionRepository interface {
	Create(ctx context.Context, prescription *model.Prescription) error
	Get(ctx context.Context, id int64) (*model.Prescription, error)
	UpdateStatus(ctx context.Context, id int64, from, to model.PrescriptionStatus) (bool, error)
	List(ctx context.Context, filter model.PrescriptionFilter) ([]*model.Prescription, int, error)
	Exists(ctx context.Context, id int64) (bool, error)
}

type LabOrderRepository interface {
	Create(ctx context.Context, order *model.LabOrder) error
	Get(ctx context.Context, id int64) (*model.LabOrder, error)
	UpdateStatus(ctx context.Context, order *model.LabOrder, from model.LabOrderStatus) (bool, error)
	List(ctx context.Context, filter model.LabOrderFilter) ([]*model.LabOrder, int, error)
}

type BillRepository interface {
	Create(ctx context.Context, bill *model.Bill) error
	Get(ctx context.Context, id int64) (*model.Bill, error)
	UpdateStatus(ctx context.Context, bill *model.Bill, from model.BillStatus) (bool, error)
	List(ctx context.Context, filter model.BillFilter) ([]*model.Bill, int, error)
	ExistsForPrescription(ctx context.Context, prescriptionID int64) (bool, error)
}

type PharmacyItemRepository interface {
	Create(ctx context.Context, item *model.PharmacyItem) error
	Get(ctx context.Context, id int64) (*model.PharmacyItem, error)
	Update(ctx context.Context, item *model.PharmacyItem) error
	AdjustStock(ctx context.Context, id int64, delta int) (bool, error)
	List(ctx context.Context, lowStockOnly bool) ([]*model.PharmacyItem, error)
}

// AppointmentRepository persists bookings. HasConflict reports whether any
// non-cancelled appointment already occupies the doctor's slot; excludeID
// skips the appointment being rescheduled.
type AppointmentRepository interface {
	Create(ctx context.Context, appt *model.Appointment) error
	Get(ctx context.Context, id int64) (*model.Appointment, error)
	Update(ctx context.Context, appt *model.Appointment) error
	UpdateStatus(ctx context.Context, appt *model.Appointment, from model.AppointmentStatus) (bool, error)
	List(ctx context.Context, filter model.AppointmentFilter) ([]*model.Appointment, int, error)
	HasConflict(ctx context.Context, doctorID int64, at time.Time, excludeID int64) (bool, error)
}

type ClinicalNoteRepository interface {
	Create(ctx context.Context, note *model.ClinicalNote) error
	Get(ctx context.Context, id int64) (*model.ClinicalNote, error)
	Update(ctx context.Context, note *model.ClinicalNote) error
	Delete(ctx context.Context, id int64) (bool, error)
	List(ctx context.Context, filter model.ClinicalNoteFilter) ([]*model.ClinicalNote, int, error)
}

type ClinicRepository interface {
	Get(ctx context.Context) (*model.Clinic, error)
	Update(ctx context.Context, clinic *model.Clinic) error
}
