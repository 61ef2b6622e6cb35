package catalog

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicore/opd-emr/internal/model"
)

type fakeLabTestRepo struct {
	mu    sync.Mutex
	tests map[int64]*model.LabTest
	next  int64
}

func newFakeLabTestRepo() *fakeLabTestRepo {
	return &fakeLabTestRepo{tests: make(map[int64]*model.LabTest), next: 1}
}

func (r *fakeLabTestRepo) Create(_ context.Context, test *model.LabTest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	test.ID = r.next
	r.next++
	copied := *test
	r.tests[test.ID] = &copied
	return nil
}

func (r *fakeLabTestRepo) Get(_ context.Context, id int64) (*model.LabTest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tests[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *t
	return &copied, nil
}

func (r *fakeLabTestRepo) Update(_ context.Context, test *model.LabTest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *test
	r.tests[test.ID] = &copied
	return nil
}

func (r *fakeLabTestRepo) ListActive(_ context.Context) ([]*model.LabTest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.LabTest
	for _, t := range r.tests {
		if t.IsActive {
			copied := *t
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeLabTestRepo) Deactivate(_ context.Context, ids []int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, id := range ids {
		if t, ok := r.tests[id]; ok && t.IsActive {
			t.IsActive = false
			n++
		}
	}
	return n, nil
}

func (r *fakeLabTestRepo) Exists(_ context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tests[id]
	return ok && t.IsActive, nil
}

func seedCatalog(t *testing.T, svc *Service, entries ...model.CreateLabTestRequest) {
	t.Helper()
	for i := range entries {
		_, err := svc.CreateTest(context.Background(), &entries[i])
		require.NoError(t, err)
	}
}

func TestParseGroupKey(t *testing.T) {
	key, err := ParseGroupKey("code")
	require.NoError(t, err)
	assert.Equal(t, GroupByCode, key)

	key, err = ParseGroupKey(" Code_Name ")
	require.NoError(t, err)
	assert.Equal(t, GroupByCodeAndName, key)

	// Empty defaults to the strictest grouping.
	key, err = ParseGroupKey("")
	require.NoError(t, err)
	assert.Equal(t, GroupByCodeAndName, key)

	_, err = ParseGroupKey("price")
	assert.Error(t, err)
}

func TestFindDuplicatesGroupsByCodeAndName(t *testing.T) {
	svc := NewService(newFakeLabTestRepo(), nil)
	seedCatalog(t, svc,
		model.CreateLabTestRequest{TestCode: "CBC", TestName: "Complete Blood Count", Price: 300},
		model.CreateLabTestRequest{TestCode: "CBC", TestName: "Complete Blood Count", Price: 350},
		model.CreateLabTestRequest{TestCode: "cbc", TestName: "complete blood count", Price: 320},
		model.CreateLabTestRequest{TestCode: "LFT", TestName: "Liver Function Test", Price: 500},
	)

	groups, err := svc.FindDuplicates(context.Background(), GroupByCodeAndName)
	require.NoError(t, err)
	require.Len(t, groups, 1)

	group := groups[0]
	assert.Len(t, group.Items, 3)
	// Members are sorted by surrogate key ascending.
	assert.Equal(t, int64(1), group.Items[0].ID)
	assert.Equal(t, int64(2), group.Items[1].ID)
	assert.Equal(t, int64(3), group.Items[2].ID)
}

func TestFindDuplicatesByNameOnly(t *testing.T) {
	svc := NewService(newFakeLabTestRepo(), nil)
	seedCatalog(t, svc,
		model.CreateLabTestRequest{TestCode: "CBC", TestName: "Complete Blood Count", Price: 300},
		model.CreateLabTestRequest{TestCode: "CBC01", TestName: "Complete Blood Count", Price: 350},
	)

	// Different codes, so no code_name duplicates.
	groups, err := svc.FindDuplicates(context.Background(), GroupByCodeAndName)
	require.NoError(t, err)
	assert.Empty(t, groups)

	// Grouping by name alone finds them.
	groups, err = svc.FindDuplicates(context.Background(), GroupByName)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Len(t, groups[0].Items, 2)
}

func TestResolveKeepsLowestID(t *testing.T) {
	svc := NewService(newFakeLabTestRepo(), nil)
	seedCatalog(t, svc,
		model.CreateLabTestRequest{TestCode: "CBC", TestName: "Complete Blood Count", Price: 300},
		model.CreateLabTestRequest{TestCode: "CBC", TestName: "Complete Blood Count", Price: 350},
		model.CreateLabTestRequest{TestCode: "CBC", TestName: "Complete Blood Count", Price: 320},
	)

	groups, err := svc.FindDuplicates(context.Background(), GroupByCodeAndName)
	require.NoError(t, err)
	require.Len(t, groups, 1)

	res, err := svc.Resolve(context.Background(), groups[0])
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Survivor)
	assert.ElementsMatch(t, []int64{2, 3}, res.Deactivated)

	// The survivor stays active, the losers do not.
	active, err := svc.ListActiveTests(context.Background())
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, int64(1), active[0].ID)
}

func TestResolveAllIsIdempotent(t *testing.T) {
	svc := NewService(newFakeLabTestRepo(), nil)
	seedCatalog(t, svc,
		model.CreateLabTestRequest{TestCode: "CBC", TestName: "Complete Blood Count", Price: 300},
		model.CreateLabTestRequest{TestCode: "CBC", TestName: "Complete Blood Count", Price: 350},
		model.CreateLabTestRequest{TestCode: "LFT", TestName: "Liver Function Test", Price: 500},
		model.CreateLabTestRequest{TestCode: "LFT", TestName: "Liver Function Test", Price: 550},
	)

	first, err := svc.ResolveAll(context.Background(), GroupByCodeAndName)
	require.NoError(t, err)
	assert.Len(t, first, 2)

	second, err := svc.ResolveAll(context.Background(), GroupByCodeAndName)
	require.NoError(t, err)
	assert.Empty(t, second)
}

func TestResolveSingletonDeactivatesNothing(t *testing.T) {
	svc := NewService(newFakeLabTestRepo(), nil)
	seedCatalog(t, svc,
		model.CreateLabTestRequest{TestCode: "CBC", TestName: "Complete Blood Count", Price: 300},
	)

	groups, err := svc.FindDuplicates(context.Background(), GroupByCodeAndName)
	require.NoError(t, err)
	assert.Empty(t, groups)
}

func TestImportThenSweep(t *testing.T) {
	svc := NewService(newFakeLabTestRepo(), nil)

	// The same import run twice, the way the historical bulk loaders were.
	req := &model.ImportLabTestsRequest{Tests: []model.CreateLabTestRequest{
		{TestCode: "CBC", TestName: "Complete Blood Count", Price: 300},
		{TestCode: "LFT", TestName: "Liver Function Test", Price: 500},
	}}
	_, err := svc.ImportTests(context.Background(), req)
	require.NoError(t, err)
	_, err = svc.ImportTests(context.Background(), req)
	require.NoError(t, err)

	active, err := svc.repo.ListActive(context.Background())
	require.NoError(t, err)
	assert.Len(t, active, 4)

	_, err = svc.ResolveAll(context.Background(), GroupByCodeAndName)
	require.NoError(t, err)

	active, err = svc.repo.ListActive(context.Background())
	require.NoError(t, err)
	assert.Len(t, active, 2)
}

func TestListActiveTestsCacheInvalidatedByWrite(t *testing.T) {
	svc := NewService(newFakeLabTestRepo(), nil)
	seedCatalog(t, svc,
		model.CreateLabTestRequest{TestCode: "CBC", TestName: "Complete Blood Count", Price: 300},
	)

	active, err := svc.ListActiveTests(context.Background())
	require.NoError(t, err)
	assert.Len(t, active, 1)

	seedCatalog(t, svc,
		model.CreateLabTestRequest{TestCode: "LFT", TestName: "Liver Function Test", Price: 500},
	)

	active, err = svc.ListActiveTests(context.Background())
	require.NoError(t, err)
	assert.Len(t, active, 2)
}
