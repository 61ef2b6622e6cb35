package sequence

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicore/opd-emr/internal/model"
	apperrors "github.com/clinicore/opd-emr/pkg/errors"
)

// fakeSeriesRepo keeps counters in memory with the same compare-and-swap
// contract as the SQLite implementation.
type fakeSeriesRepo struct {
	mu     sync.Mutex
	series map[string]*model.Series

	// failAdvances makes the next n Advance calls lose the swap.
	failAdvances int
}

func newFakeSeriesRepo(series ...*model.Series) *fakeSeriesRepo {
	r := &fakeSeriesRepo{series: make(map[string]*model.Series)}
	for _, s := range series {
		r.series[s.Code] = s
	}
	return r
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
	if r.failAdvances > 0 {
		r.failAdvances--
		return false, nil
	}
	s, ok := r.series[code]
	if !ok || !s.IsActive || s.CurrentNumber != expected {
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
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.Series, 0, len(r.series))
	for _, s := range r.series {
		copied := *s
		out = append(out, &copied)
	}
	return out, nil
}

func labSeries() *model.Series {
	return &model.Series{
		Code:          model.SeriesLabOrder,
		Prefix:        "LAB-",
		Padding:       6,
		StartNumber:   1,
		CurrentNumber: 1,
		IsActive:      true,
	}
}

func TestReserveAdvancesBeforeReturning(t *testing.T) {
	repo := newFakeSeriesRepo(labSeries())
	svc := NewService(repo, nil)

	n, err := svc.Reserve(context.Background(), model.SeriesLabOrder)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	// The stored counter already points past the handed-out number.
	stored, err := repo.Get(context.Background(), model.SeriesLabOrder)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stored.CurrentNumber)
}

func TestNextIdentifierFormatsReservedNumber(t *testing.T) {
	repo := newFakeSeriesRepo(labSeries())
	svc := NewService(repo, nil)

	id, n, err := svc.NextIdentifier(context.Background(), model.SeriesLabOrder)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, "LAB-000001", id)

	id, n, err = svc.NextIdentifier(context.Background(), model.SeriesLabOrder)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Equal(t, "LAB-000002", id)
}

func TestReserveUnknownSeries(t *testing.T) {
	svc := NewService(newFakeSeriesRepo(), nil)

	_, err := svc.Reserve(context.Background(), "NOPE")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrUnknownSeries, apperrors.Code(err))
}

func TestReserveInactiveSeries(t *testing.T) {
	s := labSeries()
	s.IsActive = false
	svc := NewService(newFakeSeriesRepo(s), nil)

	_, err := svc.Reserve(context.Background(), model.SeriesLabOrder)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrUnknownSeries, apperrors.Code(err))
}

func TestReserveRetriesLostSwap(t *testing.T) {
	repo := newFakeSeriesRepo(labSeries())
	repo.failAdvances = 2
	svc := NewService(repo, nil)

	n, err := svc.Reserve(context.Background(), model.SeriesLabOrder)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestReserveGivesUpAfterMaxRetries(t *testing.T) {
	repo := newFakeSeriesRepo(labSeries())
	repo.failAdvances = maxAdvanceRetries
	svc := NewService(repo, nil)

	_, err := svc.Reserve(context.Background(), model.SeriesLabOrder)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrInternal, apperrors.Code(err))
}

func TestConcurrentReservesNeverRepeat(t *testing.T) {
	repo := newFakeSeriesRepo(labSeries())
	svc := NewService(repo, nil)

	const workers = 50
	const perWorker = 20

	var mu sync.Mutex
	seen := make(map[int64]bool)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				n, err := svc.Reserve(context.Background(), model.SeriesLabOrder)
				assert.NoError(t, err)
				mu.Lock()
				assert.False(t, seen[n], "number %d issued twice", n)
				seen[n] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, workers*perWorker)

	stored, err := repo.Get(context.Background(), model.SeriesLabOrder)
	require.NoError(t, err)
	assert.Equal(t, int64(workers*perWorker+1), stored.CurrentNumber)
}

func TestIndependentSeriesDoNotInterfere(t *testing.T) {
	bill := &model.Series{Code: model.SeriesBill, Prefix: "BILL-", Padding: 6, StartNumber: 1, CurrentNumber: 1, IsActive: true}
	repo := newFakeSeriesRepo(labSeries(), bill)
	svc := NewService(repo, nil)

	for i := 0; i < 3; i++ {
		_, err := svc.Reserve(context.Background(), model.SeriesLabOrder)
		require.NoError(t, err)
	}

	n, err := svc.Reserve(context.Background(), model.SeriesBill)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestCreateSeriesDefaultsStartNumber(t *testing.T) {
	repo := newFakeSeriesRepo()
	svc := NewService(repo, nil)

	series := &model.Series{Code: "VISIT", Prefix: "V-", Padding: 4, IsActive: true}
	require.NoError(t, svc.CreateSeries(context.Background(), series))
	assert.Equal(t, int64(1), series.StartNumber)
	assert.Equal(t, int64(1), series.CurrentNumber)

	n, err := svc.Reserve(context.Background(), "VISIT")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
