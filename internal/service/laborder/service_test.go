package laborder

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

func (r *fakeSeriesRepo) Create(_ context.Context, series *model.Series) error { return nil }
func (r *fakeSeriesRepo) List(_ context.Context) ([]*model.Series, error)      { return nil, nil }

type fakeOrderRepo struct {
	mu     sync.Mutex
	orders map[int64]*model.LabOrder
	next   int64
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[int64]*model.LabOrder), next: 1}
}

func (r *fakeOrderRepo) Create(_ context.Context, order *model.LabOrder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	order.ID = r.next
	r.next++
	copied := *order
	r.orders[order.ID] = &copied
	return nil
}

func (r *fakeOrderRepo) Get(_ context.Context, id int64) (*model.LabOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *o
	return &copied, nil
}

func (r *fakeOrderRepo) UpdateStatus(_ context.Context, order *model.LabOrder, from model.LabOrderStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.orders[order.ID]
	if !ok || stored.Status != from {
		return false, nil
	}
	copied := *order
	r.orders[order.ID] = &copied
	return true, nil
}

func (r *fakeOrderRepo) List(_ context.Context, _ model.LabOrderFilter) ([]*model.LabOrder, int, error) {
	return nil, 0, nil
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

type fakePrescriptionRepo struct{ existing map[int64]bool }

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

func newTestService() (*Service, *fakeOrderRepo) {
	seriesRepo := &fakeSeriesRepo{series: map[string]*model.Series{
		model.SeriesLabOrder: {Code: model.SeriesLabOrder, Prefix: "LAB-", Padding: 6, StartNumber: 1, CurrentNumber: 1, IsActive: true},
	}}
	seq := sequence.NewService(seriesRepo, nil)
	orders := newFakeOrderRepo()
	patients := &fakePatientRepo{existing: map[int64]bool{1: true}}
	prescriptions := &fakePrescriptionRepo{existing: map[int64]bool{10: true}}
	return NewService(orders, patients, prescriptions, seq, nil), orders
}

func TestCreateOrder(t *testing.T) {
	svc, _ := newTestService()

	order, err := svc.CreateOrder(context.Background(), &model.CreateLabOrderRequest{
		PatientID:  1,
		SampleType: "blood",
	})
	require.NoError(t, err)
	assert.Equal(t, "LAB-000001", order.OrderNumber)
	assert.Equal(t, model.LabOrderStatusPending, order.Status)
	assert.Nil(t, order.CollectedAt)
}

func TestCreateOrderUnknownPatient(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.CreateOrder(context.Background(), &model.CreateLabOrderRequest{PatientID: 999})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrReferentialIntegrity, apperrors.Code(err))
}

func TestCreateOrderUnknownPrescription(t *testing.T) {
	svc, _ := newTestService()
	missing := int64(999)

	_, err := svc.CreateOrder(context.Background(), &model.CreateLabOrderRequest{
		PatientID:      1,
		PrescriptionID: &missing,
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrReferentialIntegrity, apperrors.Code(err))
}

func TestOrderWalksTheFullChain(t *testing.T) {
	svc, _ := newTestService()

	order, err := svc.CreateOrder(context.Background(), &model.CreateLabOrderRequest{PatientID: 1})
	require.NoError(t, err)

	for _, target := range []string{"collected", "processing", "resulted", "approved"} {
		order, err = svc.TransitionStatus(context.Background(), order.ID, target)
		require.NoError(t, err, "transition to %s", target)
		assert.Equal(t, target, string(order.Status))
	}

	assert.NotNil(t, order.CollectedAt)
	assert.NotNil(t, order.ResultedAt)
	assert.NotNil(t, order.ApprovedAt)
}

func TestOrderCannotSkipStages(t *testing.T) {
	svc, _ := newTestService()

	order, err := svc.CreateOrder(context.Background(), &model.CreateLabOrderRequest{PatientID: 1})
	require.NoError(t, err)

	_, err = svc.TransitionStatus(context.Background(), order.ID, "resulted")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrInvalidTransition, apperrors.Code(err))

	// The failed attempt left the order untouched.
	got, err := svc.GetOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.LabOrderStatusPending, got.Status)
}

func TestApprovedOrderIsFinal(t *testing.T) {
	svc, _ := newTestService()

	order, err := svc.CreateOrder(context.Background(), &model.CreateLabOrderRequest{PatientID: 1})
	require.NoError(t, err)

	for _, target := range []string{"collected", "processing", "resulted", "approved"} {
		order, err = svc.TransitionStatus(context.Background(), order.ID, target)
		require.NoError(t, err)
	}

	_, err = svc.TransitionStatus(context.Background(), order.ID, "pending")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrInvalidTransition, apperrors.Code(err))
}

func TestTransitionAcceptsMixedCasing(t *testing.T) {
	svc, _ := newTestService()

	order, err := svc.CreateOrder(context.Background(), &model.CreateLabOrderRequest{PatientID: 1})
	require.NoError(t, err)

	got, err := svc.TransitionStatus(context.Background(), order.ID, "Collected")
	require.NoError(t, err)
	assert.Equal(t, model.LabOrderStatusCollected, got.Status)
}

func TestConcurrentTransitionOnlyOneWins(t *testing.T) {
	svc, orders := newTestService()

	order, err := svc.CreateOrder(context.Background(), &model.CreateLabOrderRequest{PatientID: 1})
	require.NoError(t, err)

	// Simulate a racer that already moved the order along.
	stale, err := orders.Get(context.Background(), order.ID)
	require.NoError(t, err)
	stale.Status = model.LabOrderStatusCollected
	ok, err := orders.UpdateStatus(context.Background(), stale, model.LabOrderStatusPending)
	require.NoError(t, err)
	require.True(t, ok)

	// A second writer holding the stale pending read loses.
	held := *order
	held.Status = model.LabOrderStatusCollected
	ok, err = orders.UpdateStatus(context.Background(), &held, model.LabOrderStatusPending)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestOrderNumbersAreUniquePerOrder(t *testing.T) {
	svc, _ := newTestService()

	seen := make(map[string]bool)
	for i := 0; i < 5; i++ {
		order, err := svc.CreateOrder(context.Background(), &model.CreateLabOrderRequest{PatientID: 1})
		require.NoError(t, err)
		assert.False(t, seen[order.OrderNumber], "order number %s repeated", order.OrderNumber)
		seen[order.OrderNumber] = true
	}
}
