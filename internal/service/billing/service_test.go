package billing

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicore/opd-emr/internal/model"
	"github.com/clinicore/opd-emr/internal/service/sequence"
	apperrors "github.com/clinicore/opd-emr/pkg/errors"
)

type fakeSeriesRepo struct {
	mu     sync.Mutex
	series map[string]*model.Series
}

func (r *fakeSeriesRepo) Get(_ context.Context, code string) (*model.Series, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.series[code]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *s
	return &copied, nil
}

func (r *fakeSeriesRepo) Advance(_ context.Context, code string, expected, next int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.series[code]
	if !ok || s.CurrentNumber != expected {
		return false, nil
	}
	s.CurrentNumber = next
	return true, nil
}

func (r *fakeSeriesRepo) Create(_ context.Context, series *model.Series) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.series[series.Code] = series
	return nil
}

func (r *fakeSeriesRepo) List(_ context.Context) ([]*model.Series, error) {
	return nil, nil
}

type fakeBillRepo struct {
	mu    sync.Mutex
	bills map[int64]*model.Bill
	next  int64

	// forceStaleUpdate makes UpdateStatus report a lost race once.
	forceStaleUpdate bool
}

func newFakeBillRepo() *fakeBillRepo {
	return &fakeBillRepo{bills: make(map[int64]*model.Bill), next: 1}
}

func (r *fakeBillRepo) Create(_ context.Context, bill *model.Bill) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	bill.ID = r.next
	r.next++
	copied := *bill
	r.bills[bill.ID] = &copied
	return nil
}

func (r *fakeBillRepo) Get(_ context.Context, id int64) (*model.Bill, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bills[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *b
	return &copied, nil
}

func (r *fakeBillRepo) UpdateStatus(_ context.Context, bill *model.Bill, from model.BillStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.forceStaleUpdate {
		r.forceStaleUpdate = false
		return false, nil
	}
	stored, ok := r.bills[bill.ID]
	if !ok || stored.Status != from {
		return false, nil
	}
	copied := *bill
	r.bills[bill.ID] = &copied
	return true, nil
}

func (r *fakeBillRepo) List(_ context.Context, _ model.BillFilter) ([]*model.Bill, int, error) {
	return nil, 0, nil
}

func (r *fakeBillRepo) ExistsForPrescription(_ context.Context, prescriptionID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bills {
		if b.PrescriptionID != nil && *b.PrescriptionID == prescriptionID && b.Status != model.BillStatusCancelled {
			return true, nil
		}
	}
	return false, nil
}

type fakePatientRepo struct {
	existing map[int64]bool
}

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

type fakePrescriptionRepo struct {
	existing map[int64]bool
}

func (r *fakePrescriptionRepo) Create(_ context.Context, _ *model.Prescription) error { return nil }
func (r *fakePrescriptionRepo) Get(_ context.Context, _ int64) (*model.Prescription, error) {
	return nil, sql.ErrNoRows
}
func (r *fakePrescriptionRepo) UpdateStatus(_ context.Context, _ int64, _, _ model.PrescriptionStatus) (bool, error) {
	return false, nil
}
func (r *fakePrescriptionRepo) List(_ context.Context, _ model.PrescriptionFilter) ([]*model.Prescription, int, error) {
	return nil, 0, nil
}
func (r *fakePrescriptionRepo) Exists(_ context.Context, id int64) (bool, error) {
	return r.existing[id], nil
}

type fakeLabTestRepo struct {
	tests map[int64]*model.LabTest
}

func (r *fakeLabTestRepo) Create(_ context.Context, _ *model.LabTest) error { return nil }
func (r *fakeLabTestRepo) Get(_ context.Context, id int64) (*model.LabTest, error) {
	t, ok := r.tests[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *t
	return &copied, nil
}
func (r *fakeLabTestRepo) Update(_ context.Context, _ *model.LabTest) error { return nil }
func (r *fakeLabTestRepo) ListActive(_ context.Context) ([]*model.LabTest, error) {
	return nil, nil
}
func (r *fakeLabTestRepo) Deactivate(_ context.Context, _ []int64) (int64, error) { return 0, nil }
func (r *fakeLabTestRepo) Exists(_ context.Context, id int64) (bool, error) {
	_, ok := r.tests[id]
	return ok, nil
}

type fixture struct {
	svc   *Service
	bills *fakeBillRepo
}

func newFixture() *fixture {
	seriesRepo := &fakeSeriesRepo{series: map[string]*model.Series{
		model.SeriesBill: {Code: model.SeriesBill, Prefix: "BILL-", Padding: 6, StartNumber: 1, CurrentNumber: 1, IsActive: true},
	}}
	seq := sequence.NewService(seriesRepo, nil)

	bills := newFakeBillRepo()
	patients := &fakePatientRepo{existing: map[int64]bool{1: true}}
	prescriptions := &fakePrescriptionRepo{existing: map[int64]bool{10: true}}
	tests := &fakeLabTestRepo{tests: map[int64]*model.LabTest{
		100: {Base: model.Base{ID: 100}, TestCode: "CBC", TestName: "Complete Blood Count", Price: 300, IsActive: true},
	}}

	return &fixture{
		svc:   NewService(bills, patients, prescriptions, tests, seq, nil),
		bills: bills,
	}
}

func TestCreateBillSnapshotsCatalogPrice(t *testing.T) {
	f := newFixture()
	labTestID := int64(100)

	bill, err := f.svc.CreateBill(context.Background(), &model.CreateBillRequest{
		PatientID: 1,
		Items: []model.CreateBillItemRequest{
			{LabTestID: &labTestID, Quantity: 2, UnitPrice: 9999}, // caller price ignored for catalog lines
			{Description: "Registration fee", Quantity: 1, UnitPrice: 50},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "BILL-000001", bill.BillNumber)
	assert.Equal(t, model.BillStatusPending, bill.Status)
	assert.Equal(t, 300.0, bill.Items[0].UnitPrice)
	assert.Equal(t, "Complete Blood Count", bill.Items[0].Description)
	assert.Equal(t, 600.0, bill.Items[0].Amount)
	assert.Equal(t, 50.0, bill.Items[1].Amount)
	assert.Equal(t, 650.0, bill.SubTotal)
	assert.Equal(t, 650.0, bill.Total)
}

func TestCreateBillUnknownPatient(t *testing.T) {
	f := newFixture()

	_, err := f.svc.CreateBill(context.Background(), &model.CreateBillRequest{
		PatientID: 999,
		Items:     []model.CreateBillItemRequest{{Description: "Consult", Quantity: 1, UnitPrice: 100}},
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrReferentialIntegrity, apperrors.Code(err))
}

func TestCreateBillRejectsDoubleBilling(t *testing.T) {
	f := newFixture()
	prescriptionID := int64(10)

	req := &model.CreateBillRequest{
		PatientID:      1,
		PrescriptionID: &prescriptionID,
		Items:          []model.CreateBillItemRequest{{Description: "Consult", Quantity: 1, UnitPrice: 100}},
	}

	_, err := f.svc.CreateBill(context.Background(), req)
	require.NoError(t, err)

	_, err = f.svc.CreateBill(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrConflict, apperrors.Code(err))
}

func TestCancelledBillAllowsRebilling(t *testing.T) {
	f := newFixture()
	prescriptionID := int64(10)

	req := &model.CreateBillRequest{
		PatientID:      1,
		PrescriptionID: &prescriptionID,
		Items:          []model.CreateBillItemRequest{{Description: "Consult", Quantity: 1, UnitPrice: 100}},
	}

	bill, err := f.svc.CreateBill(context.Background(), req)
	require.NoError(t, err)

	_, err = f.svc.CancelBill(context.Background(), bill.ID, &model.CancelBillRequest{Reason: "entered in error"})
	require.NoError(t, err)

	rebilled, err := f.svc.CreateBill(context.Background(), req)
	require.NoError(t, err)
	assert.NotEqual(t, bill.BillNumber, rebilled.BillNumber)
}

func TestCreateBillDiscountExceedsSubtotal(t *testing.T) {
	f := newFixture()

	_, err := f.svc.CreateBill(context.Background(), &model.CreateBillRequest{
		PatientID: 1,
		Discount:  200,
		Items:     []model.CreateBillItemRequest{{Description: "Consult", Quantity: 1, UnitPrice: 100}},
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrBadRequest, apperrors.Code(err))
}

func TestPayBill(t *testing.T) {
	f := newFixture()

	bill, err := f.svc.CreateBill(context.Background(), &model.CreateBillRequest{
		PatientID: 1,
		Items:     []model.CreateBillItemRequest{{Description: "Consult", Quantity: 1, UnitPrice: 100}},
	})
	require.NoError(t, err)

	paid, err := f.svc.PayBill(context.Background(), bill.ID, &model.PayBillRequest{
		PaymentMethod: "cash",
		Amount:        100,
	})
	require.NoError(t, err)
	assert.Equal(t, model.BillStatusPaid, paid.Status)
	require.NotNil(t, paid.PaymentMethod)
	assert.Equal(t, "cash", *paid.PaymentMethod)
	assert.NotNil(t, paid.PaidAt)
}

func TestPayBillWrongAmount(t *testing.T) {
	f := newFixture()

	bill, err := f.svc.CreateBill(context.Background(), &model.CreateBillRequest{
		PatientID: 1,
		Items:     []model.CreateBillItemRequest{{Description: "Consult", Quantity: 1, UnitPrice: 100}},
	})
	require.NoError(t, err)

	_, err = f.svc.PayBill(context.Background(), bill.ID, &model.PayBillRequest{
		PaymentMethod: "cash",
		Amount:        99,
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrBadRequest, apperrors.Code(err))
}

func TestPayBillTwiceRejected(t *testing.T) {
	f := newFixture()

	bill, err := f.svc.CreateBill(context.Background(), &model.CreateBillRequest{
		PatientID: 1,
		Items:     []model.CreateBillItemRequest{{Description: "Consult", Quantity: 1, UnitPrice: 100}},
	})
	require.NoError(t, err)

	_, err = f.svc.PayBill(context.Background(), bill.ID, &model.PayBillRequest{PaymentMethod: "cash", Amount: 100})
	require.NoError(t, err)

	_, err = f.svc.PayBill(context.Background(), bill.ID, &model.PayBillRequest{PaymentMethod: "cash", Amount: 100})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrInvalidTransition, apperrors.Code(err))
}

func TestCancelPaidBillRejected(t *testing.T) {
	f := newFixture()

	bill, err := f.svc.CreateBill(context.Background(), &model.CreateBillRequest{
		PatientID: 1,
		Items:     []model.CreateBillItemRequest{{Description: "Consult", Quantity: 1, UnitPrice: 100}},
	})
	require.NoError(t, err)

	_, err = f.svc.PayBill(context.Background(), bill.ID, &model.PayBillRequest{PaymentMethod: "cash", Amount: 100})
	require.NoError(t, err)

	_, err = f.svc.CancelBill(context.Background(), bill.ID, &model.CancelBillRequest{Reason: "too late"})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrInvalidTransition, apperrors.Code(err))
}

func TestPayBillConcurrentModification(t *testing.T) {
	f := newFixture()

	bill, err := f.svc.CreateBill(context.Background(), &model.CreateBillRequest{
		PatientID: 1,
		Items:     []model.CreateBillItemRequest{{Description: "Consult", Quantity: 1, UnitPrice: 100}},
	})
	require.NoError(t, err)

	f.bills.forceStaleUpdate = true
	_, err = f.svc.PayBill(context.Background(), bill.ID, &model.PayBillRequest{PaymentMethod: "cash", Amount: 100})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrConcurrentModification, apperrors.Code(err))

	// The bill is untouched; a retry after re-reading succeeds.
	paid, err := f.svc.PayBill(context.Background(), bill.ID, &model.PayBillRequest{PaymentMethod: "cash", Amount: 100})
	require.NoError(t, err)
	assert.Equal(t, model.BillStatusPaid, paid.Status)
}

func TestBillNumbersAreSequential(t *testing.T) {
	f := newFixture()

	for i := 1; i <= 3; i++ {
		bill, err := f.svc.CreateBill(context.Background(), &model.CreateBillRequest{
			PatientID: 1,
			Items:     []model.CreateBillItemRequest{{Description: "Consult", Quantity: 1, UnitPrice: 100}},
		})
		require.NoError(t, err)
		assert.Equal(t, int64(i), bill.ID)
	}

	first, err := f.svc.GetBill(context.Background(), 1)
	require.NoError(t, err)
	third, err := f.svc.GetBill(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, "BILL-000001", first.BillNumber)
	assert.Equal(t, "BILL-000003", third.BillNumber)
}
