package lifecycle

import (
	"github.com/clinicore/opd-emr/internal/model"
	apperrors "github.com/clinicore/opd-emr/pkg/errors"
)

// Kind identifies an entity type that carries a document identifier and a
// status.
type Kind string

const (
	KindPatient      Kind = "patient"
	KindBill         Kind = "bill"
	KindLabOrder     Kind = "lab_order"
	KindPrescription Kind = "prescription"
	KindPharmacyItem Kind = "pharmacy_item"
	KindAppointment  Kind = "appointment"
)

// SeriesCode maps a kind to its identifier series.
func (k Kind) SeriesCode() string {
	switch k {
	case KindPatient:
		return model.SeriesPatient
	case KindBill:
		return model.SeriesBill
	case KindLabOrder:
		return model.SeriesLabOrder
	case KindPrescription:
		return model.SeriesPrescription
	case KindPharmacyItem:
		return model.SeriesPharmacyItem
	case KindAppointment:
		return model.SeriesAppointment
	}
	return ""
}

// transitions is the per-kind table of legal status edges. The graphs are
// forward-only: no edge ever leads back to an earlier state, so a cancelled
// bill stays cancelled and an approved lab order is final.
var transitions = map[Kind]map[string][]string{
	KindBill: {
		string(model.BillStatusPending): {
			string(model.BillStatusPaid),
			string(model.BillStatusCancelled),
		},
	},
	KindLabOrder: {
		string(model.LabOrderStatusPending):    {string(model.LabOrderStatusCollected)},
		string(model.LabOrderStatusCollected):  {string(model.LabOrderStatusProcessing)},
		string(model.LabOrderStatusProcessing): {string(model.LabOrderStatusResulted)},
		string(model.LabOrderStatusResulted):   {string(model.LabOrderStatusApproved)},
	},
	KindPrescription: {
		string(model.PrescriptionStatusActive): {
			string(model.PrescriptionStatusCompleted),
			string(model.PrescriptionStatusCancelled),
		},
	},
	KindAppointment: {
		string(model.AppointmentStatusScheduled): {
			string(model.AppointmentStatusCompleted),
			string(model.AppointmentStatusCancelled),
		},
	},
}

// InitialStatus returns the status a freshly created entity starts in.
func InitialStatus(kind Kind) string {
	switch kind {
	case KindPrescription:
		return string(model.PrescriptionStatusActive)
	case KindBill:
		return string(model.BillStatusPending)
	case KindLabOrder:
		return string(model.LabOrderStatusPending)
	case KindAppointment:
		return string(model.AppointmentStatusScheduled)
	}
	return ""
}

// CanTransition reports whether to is reachable from from in one step.
// Statuses are normalized before lookup since stored data historically mixed
// casing.
func CanTransition(kind Kind, from, to string) bool {
	from = model.NormalizeStatus(from)
	to = model.NormalizeStatus(to)
	for _, next := range transitions[kind][from] {
		if next == to {
			return true
		}
	}
	return false
}

// Validate returns a typed error when the edge is not in the table.
func Validate(kind Kind, from, to string) error {
	if !CanTransition(kind, from, to) {
		return apperrors.NewInvalidTransition(string(kind), model.NormalizeStatus(from), model.NormalizeStatus(to))
	}
	return nil
}

// Statuses returns every status that appears in the kind's transition table,
// as sources or targets. Used for request validation.
func Statuses(kind Kind) []string {
	seen := map[string]bool{}
	var out []string
	add := func(s string) {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	for from, tos := range transitions[kind] {
		add(from)
		for _, to := range tos {
			add(to)
		}
	}
	return out
}
