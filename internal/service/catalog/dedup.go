package catalog

import (
	"context"
	"sort"
	"strings"

	"github.com/clinicore/opd-emr/internal/model"
	apperrors "github.com/clinicore/opd-emr/pkg/errors"
)

// GroupKey selects which column tuple defines "duplicate".
type GroupKey string

const (
	GroupByCode        GroupKey = "code"
	GroupByName        GroupKey = "name"
	GroupByCodeAndName GroupKey = "code_name"
)

// ParseGroupKey validates a raw key from a request.
func ParseGroupKey(s string) (GroupKey, error) {
	switch GroupKey(strings.ToLower(strings.TrimSpace(s))) {
	case GroupByCode:
		return GroupByCode, nil
	case GroupByName:
		return GroupByName, nil
	case GroupByCodeAndName, "":
		return GroupByCodeAndName, nil
	}
	return "", apperrors.NewBadRequest("grouping key must be one of code, name, code_name", nil)
}

// DuplicateGroup is a set of active catalog rows sharing the same key value,
// sorted by surrogate key ascending.
type DuplicateGroup struct {
	Key   GroupKey         `json:"key"`
	Value string           `json:"value"`
	Items []*model.LabTest `json:"items"`
}

// Resolution records the outcome of resolving one group.
type Resolution struct {
	Key         GroupKey `json:"key"`
	Value       string   `json:"value"`
	Survivor    int64    `json:"survivor"`
	Deactivated []int64  `json:"deactivated"`
}

func (k GroupKey) valueOf(t *model.LabTest) string {
	code := strings.ToLower(strings.TrimSpace(t.TestCode))
	name := strings.ToLower(strings.TrimSpace(t.TestName))
	switch k {
	case GroupByCode:
		return code
	case GroupByName:
		return name
	default:
		return code + "\x00" + name
	}
}

// FindDuplicates groups active catalog rows by the key and returns every group
// with more than one member. Groups produced by different keys are independent;
// no transitive closure across keys is attempted.
func (s *Service) FindDuplicates(ctx context.Context, key GroupKey) ([]DuplicateGroup, error) {
	tests, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	byValue := make(map[string][]*model.LabTest)
	for _, t := range tests {
		v := key.valueOf(t)
		byValue[v] = append(byValue[v], t)
	}

	var groups []DuplicateGroup
	for v, members := range byValue {
		if len(members) < 2 {
			continue
		}
		sort.Slice(members, func(i, j int) bool { return members[i].ID < members[j].ID })
		groups = append(groups, DuplicateGroup{Key: key, Value: v, Items: members})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Items[0].ID < groups[j].Items[0].ID })

	if s.metrics != nil {
		s.metrics.DedupGroupsFound.Add(float64(len(groups)))
	}
	return groups, nil
}

// Resolve collapses one duplicate group: the member with the lowest surrogate
// key survives, the rest are deactivated. The tie-break is stable, so running
// a sweep twice picks the same survivor and the second run deactivates
// nothing.
func (s *Service) Resolve(ctx context.Context, group DuplicateGroup) (*Resolution, error) {
	if len(group.Items) == 0 {
		return nil, apperrors.NewBadRequest("duplicate group is empty", nil)
	}

	survivor := group.Items[0]
	losers := make([]int64, 0, len(group.Items)-1)
	for _, t := range group.Items {
		if t.ID < survivor.ID {
			survivor = t
		}
	}
	for _, t := range group.Items {
		if t.ID != survivor.ID {
			losers = append(losers, t.ID)
		}
	}

	if len(losers) > 0 {
		n, err := s.repo.Deactivate(ctx, losers)
		if err != nil {
			return nil, err
		}
		if s.metrics != nil {
			s.metrics.DedupDeactivated.Add(float64(n))
		}
		s.cache.Delete(activeTestsCacheKey)
	}

	return &Resolution{
		Key:         group.Key,
		Value:       group.Value,
		Survivor:    survivor.ID,
		Deactivated: losers,
	}, nil
}

// ResolveAll sweeps the whole catalog for one grouping key. Idempotent: a
// second sweep finds no groups and deactivates nothing.
func (s *Service) ResolveAll(ctx context.Context, key GroupKey) ([]Resolution, error) {
	if s.metrics != nil {
		s.metrics.DedupSweeps.Inc()
	}

	groups, err := s.FindDuplicates(ctx, key)
	if err != nil {
		return nil, err
	}

	resolutions := make([]Resolution, 0, len(groups))
	for _, g := range groups {
		res, err := s.Resolve(ctx, g)
		if err != nil {
			return resolutions, err
		}
		resolutions = append(resolutions, *res)
	}
	return resolutions, nil
}
