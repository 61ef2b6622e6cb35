package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/clinicore/opd-emr/pkg/errors"
)

func TestBillTransitions(t *testing.T) {
	assert.True(t, CanTransition(KindBill, "pending", "paid"))
	assert.True(t, CanTransition(KindBill, "pending", "cancelled"))

	// Paid and cancelled are terminal.
	assert.False(t, CanTransition(KindBill, "paid", "pending"))
	assert.False(t, CanTransition(KindBill, "paid", "cancelled"))
	assert.False(t, CanTransition(KindBill, "cancelled", "pending"))
	assert.False(t, CanTransition(KindBill, "cancelled", "paid"))
}

func TestLabOrderChainIsLinear(t *testing.T) {
	chain := []string{"pending", "collected", "processing", "resulted", "approved"}

	for i := 0; i < len(chain)-1; i++ {
		assert.True(t, CanTransition(KindLabOrder, chain[i], chain[i+1]),
			"%s -> %s should be legal", chain[i], chain[i+1])
	}

	// No skipping, no going back.
	assert.False(t, CanTransition(KindLabOrder, "pending", "processing"))
	assert.False(t, CanTransition(KindLabOrder, "pending", "approved"))
	assert.False(t, CanTransition(KindLabOrder, "collected", "resulted"))
	assert.False(t, CanTransition(KindLabOrder, "approved", "resulted"))
	assert.False(t, CanTransition(KindLabOrder, "resulted", "pending"))
}

func TestPrescriptionTransitions(t *testing.T) {
	assert.True(t, CanTransition(KindPrescription, "active", "completed"))
	assert.True(t, CanTransition(KindPrescription, "active", "cancelled"))
	assert.False(t, CanTransition(KindPrescription, "completed", "active"))
	assert.False(t, CanTransition(KindPrescription, "cancelled", "completed"))
}

func TestAppointmentTransitions(t *testing.T) {
	assert.True(t, CanTransition(KindAppointment, "scheduled", "completed"))
	assert.True(t, CanTransition(KindAppointment, "scheduled", "cancelled"))

	// Completed and cancelled are terminal.
	assert.False(t, CanTransition(KindAppointment, "completed", "scheduled"))
	assert.False(t, CanTransition(KindAppointment, "completed", "cancelled"))
	assert.False(t, CanTransition(KindAppointment, "cancelled", "scheduled"))
	assert.False(t, CanTransition(KindAppointment, "cancelled", "completed"))
}

func TestCanTransitionNormalizesCasing(t *testing.T) {
	assert.True(t, CanTransition(KindBill, "PENDING", "Paid"))
	assert.True(t, CanTransition(KindBill, "  pending  ", "paid"))
}

func TestSelfTransitionIsRejected(t *testing.T) {
	assert.False(t, CanTransition(KindBill, "pending", "pending"))
	assert.False(t, CanTransition(KindLabOrder, "collected", "collected"))
}

func TestValidateReturnsTypedError(t *testing.T) {
	err := Validate(KindBill, "paid", "pending")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrInvalidTransition, apperrors.Code(err))

	assert.NoError(t, Validate(KindBill, "pending", "paid"))
}

func TestInitialStatus(t *testing.T) {
	assert.Equal(t, "pending", InitialStatus(KindBill))
	assert.Equal(t, "pending", InitialStatus(KindLabOrder))
	assert.Equal(t, "active", InitialStatus(KindPrescription))
	assert.Equal(t, "scheduled", InitialStatus(KindAppointment))
}

func TestSeriesCode(t *testing.T) {
	assert.Equal(t, "PAT", KindPatient.SeriesCode())
	assert.Equal(t, "BILL", KindBill.SeriesCode())
	assert.Equal(t, "LAB", KindLabOrder.SeriesCode())
	assert.Equal(t, "RX", KindPrescription.SeriesCode())
	assert.Equal(t, "PHARM", KindPharmacyItem.SeriesCode())
	assert.Equal(t, "APT", KindAppointment.SeriesCode())
	assert.Equal(t, "", Kind("unknown").SeriesCode())
}

func TestStatuses(t *testing.T) {
	statuses := Statuses(KindLabOrder)
	assert.ElementsMatch(t, []string{"pending", "collected", "processing", "resulted", "approved"}, statuses)
}
