package sequence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/clinicore/opd-emr/internal/model"
	"github.com/clinicore/opd-emr/internal/repository"
	apperrors "github.com/clinicore/opd-emr/pkg/errors"
	"github.com/clinicore/opd-emr/pkg/metrics"
)

// maxAdvanceRetries bounds compare-and-swap retries against writers outside
// this process (another instance sharing the database file).
const maxAdvanceRetries = 5

// Service is the counter store: the single owner of current_number for every
// identifier series. All increment paths funnel through Reserve, which
// serializes per series and persists the advance before returning, so a
// reserved number can be skipped but never reissued.
type Service struct {
	repo    repository.SeriesRepository
	metrics *metrics.Metrics

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewService creates the counter store. metrics may be nil.
func NewService(repo repository.SeriesRepository, m *metrics.Metrics) *Service {
	return &Service{
		repo:    repo,
		metrics: m,
		locks:   make(map[string]*sync.Mutex),
	}
}

// lockFor returns the mutex guarding one series. Different series advance
// independently.
func (s *Service) lockFor(code string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[code]
	if !ok {
		l = &sync.Mutex{}
		s.locks[code] = l
	}
	return l
}

// Reserve returns the next number for the series and advances the stored
// counter before returning. The reservation is not rolled back if the caller
// later fails to use the number.
func (s *Service) Reserve(ctx context.Context, code string) (int64, error) {
	_, number, err := s.reserve(ctx, code)
	return number, err
}

// NextIdentifier reserves a number and renders it with the series template as
// read at reservation time.
func (s *Service) NextIdentifier(ctx context.Context, code string) (string, int64, error) {
	series, number, err := s.reserve(ctx, code)
	if err != nil {
		return "", 0, err
	}
	return FormatIdentifier(series, number), number, nil
}

func (s *Service) reserve(ctx context.Context, code string) (*model.Series, int64, error) {
	l := s.lockFor(code)
	l.Lock()
	defer l.Unlock()

	for attempt := 0; attempt < maxAdvanceRetries; attempt++ {
		series, err := s.repo.Get(ctx, code)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, 0, apperrors.NewUnknownSeries(code)
			}
			return nil, 0, err
		}
		if !series.IsActive {
			return nil, 0, apperrors.NewUnknownSeries(code)
		}

		number := series.CurrentNumber
		start := time.Now()
		ok, err := s.repo.Advance(ctx, code, number, number+1)
		s.observeAdvance(start, ok, err)
		if err != nil {
			return nil, 0, err
		}
		if ok {
			if s.metrics != nil {
				s.metrics.DocumentsIssued.WithLabelValues(code).Inc()
			}
			return series, number, nil
		}
		// Lost the swap to an external writer; re-read and try again.
	}

	if s.metrics != nil {
		s.metrics.ReserveFailures.WithLabelValues(code).Inc()
	}
	return nil, 0, apperrors.Internal(fmt.Errorf("series %q advance contended beyond %d attempts", code, maxAdvanceRetries))
}

// observeAdvance records the latency and outcome of one compare-and-swap
// against the series table. The advance is the hot write of the whole
// subsystem, so it is the one repository call worth instrumenting.
func (s *Service) observeAdvance(start time.Time, ok bool, err error) {
	if s.metrics == nil {
		return
	}
	status := "ok"
	switch {
	case err != nil:
		status = "error"
	case !ok:
		status = "conflict"
	}
	s.metrics.DatabaseOperations.WithLabelValues("series_advance", status).Inc()
	s.metrics.DatabaseLatency.WithLabelValues("series_advance").Observe(time.Since(start).Seconds())
}

// CreateSeries registers a new identifier series.
func (s *Service) CreateSeries(ctx context.Context, series *model.Series) error {
	if series.StartNumber < 1 {
		series.StartNumber = 1
	}
	if series.CurrentNumber < series.StartNumber {
		series.CurrentNumber = series.StartNumber
	}
	return s.repo.Create(ctx, series)
}

// ListSeries returns all configured series.
func (s *Service) ListSeries(ctx context.Context) ([]*model.Series, error) {
	return s.repo.List(ctx)
}
