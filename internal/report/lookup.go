package report

import (
	"sort"
	"strings"
)

// Class resolves a class by map key, then by simple name, then by package.name.
func (r *Report) Class(id string) (ClassInfo, bool) {
	if r == nil {
		return ClassInfo{}, false
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return ClassInfo{}, false
	}
	if c, ok := r.Classes[id]; ok {
		return c, true
	}
	for _, key := range r.classKeys() {
		c := r.Classes[key]
		if c.Name == id || c.QualifiedName() == id {
			return c, true
		}
	}
	return ClassInfo{}, false
}

func (r *Report) classKeys() []string {
	keys := make([]string, 0, len(r.Classes))
	for k := range r.Classes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

type SortBy string

const (
	SortByName SortBy = "name"
	SortByRisk SortBy = "bugProbability"
)

// ParseSortBy defaults to risk ordering, the class list's initial sort.
func ParseSortBy(s string) SortBy {
	if strings.EqualFold(strings.TrimSpace(s), string(SortByName)) {
		return SortByName
	}
	return SortByRisk
}

type ClassSummary struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Package        string  `json:"package"`
	BugProbability float64 `json:"bugProbability"`
	Complexity     float64 `json:"complexity"`
}

// ClassSummaries lists classes whose name or package contains query
// (case-insensitive), ordered by name or by descending bug probability.
func (r *Report) ClassSummaries(query string, sortBy SortBy) []ClassSummary {
	if r == nil {
		return nil
	}
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]ClassSummary, 0, len(r.Classes))
	for _, key := range r.classKeys() {
		c := r.Classes[key]
		if q != "" && !strings.Contains(strings.ToLower(c.Name), q) && !strings.Contains(strings.ToLower(c.Package), q) {
			continue
		}
		out = append(out, ClassSummary{
			ID:             key,
			Name:           c.Name,
			Package:        c.Package,
			BugProbability: c.Risk(),
			Complexity:     complexityOf(c),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if sortBy == SortByName {
			return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
		}
		return out[i].BugProbability > out[j].BugProbability
	})
	return out
}

func complexityOf(c ClassInfo) float64 {
	for _, key := range []string{"complexity", "NOM"} {
		if v, ok := c.Metrics[key]; ok && v.Kind == MetricNumber {
			return v.Number
		}
	}
	return 0
}
