package metrics

import (
	"sort"
	"strings"

	"codelens/internal/graph"
	"codelens/internal/report"
)

// Card is one rendered metric.
type Card struct {
	Key         string   `json:"key"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Category    Category `json:"category"`
	Value       float64  `json:"value"`
	Display     string   `json:"display"`
	Normalized  float64  `json:"normalized"`
	Max         float64  `json:"max,omitempty"`
	Percent     bool     `json:"percent,omitempty"`
	// Count is the number of classes behind a distribution entry, when known.
	Count float64 `json:"count,omitempty"`
}

func card(d Descriptor, key string, v float64) Card {
	return Card{
		Key:         key,
		Name:        d.Name,
		Description: d.Description,
		Category:    d.Category,
		Value:       v,
		Display:     Display(d, v),
		Normalized:  normalize(d, v),
		Max:         d.Max,
		Percent:     d.Percent,
	}
}

type Group struct {
	Category Category `json:"category"`
	Title    string   `json:"title"`
	Cards    []Card   `json:"cards"`
}

// ClassMetrics is the class metric view.
type ClassMetrics struct {
	ClassID string  `json:"classId"`
	Name    string  `json:"name"`
	Package string  `json:"package"`
	Groups  []Group `json:"groups"`
	NoData  bool    `json:"noData"`
}

// ClassView groups a class's numeric metrics by category in CategoryOrder.
// Categories without a metric are left out.
func ClassView(c report.ClassInfo) ClassMetrics {
	view := ClassMetrics{ClassID: c.ID, Name: c.Name, Package: c.Package, Groups: []Group{}}

	byCat := make(map[Category][]Card)
	keys := make([]string, 0, len(c.Metrics))
	for k := range c.Metrics {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := c.Metrics[k]
		if v.Kind != report.MetricNumber {
			continue
		}
		d := Describe(k)
		byCat[d.Category] = append(byCat[d.Category], card(d, k, v.Number))
	}

	for _, cat := range CategoryOrder {
		cards := byCat[cat]
		if len(cards) == 0 {
			continue
		}
		view.Groups = append(view.Groups, Group{Category: cat, Title: cat.Title(), Cards: cards})
	}
	view.NoData = len(view.Groups) == 0
	return view
}

type SystemViewKind string

const (
	ViewQuality    SystemViewKind = "quality"
	ViewComplexity SystemViewKind = "complexity"
	ViewVisibility SystemViewKind = "visibility"
	ViewOverview   SystemViewKind = "overview"
	ViewRisk       SystemViewKind = "risk"
)

// ParseSystemView reports false for anything but the known views.
func ParseSystemView(s string) (SystemViewKind, bool) {
	switch v := SystemViewKind(strings.ToLower(strings.TrimSpace(s))); v {
	case ViewQuality, ViewComplexity, ViewVisibility, ViewOverview, ViewRisk:
		return v, true
	default:
		return "", false
	}
}

func (v SystemViewKind) Title() string {
	switch v {
	case ViewQuality:
		return "Quality Metrics"
	case ViewComplexity:
		return "Complexity Distribution"
	case ViewVisibility:
		return "Method Visibility"
	case ViewOverview:
		return "System Overview"
	case ViewRisk:
		return "Bug Risk Distribution"
	default:
		return ""
	}
}

type SystemMetrics struct {
	View   SystemViewKind `json:"view"`
	Title  string         `json:"title"`
	Cards  []Card         `json:"cards"`
	NoData bool           `json:"noData"`
}

var standardQualityKeys = []string{"MHF", "AHF", "PF", "U", "S"}

// SystemView extracts the cards of one system-wide view from the report's
// systemMetrics. An unknown view or a report without matching metrics
// yields NoData.
func SystemView(r *report.Report, view SystemViewKind) SystemMetrics {
	out := SystemMetrics{View: view, Title: view.Title(), Cards: []Card{}}
	if r == nil || len(r.SystemMetrics) == 0 {
		out.NoData = true
		return out
	}
	sm := r.SystemMetrics
	switch view {
	case ViewQuality:
		out.Cards = qualityCards(sm)
	case ViewComplexity:
		out.Cards = patternCards(sm, "complexity", []string{"complexity", "wmc", "cc"}, false)
	case ViewVisibility:
		out.Cards = patternCards(sm, "visibility", []string{"public", "private", "protected", "visibility"}, true)
	case ViewOverview:
		out.Cards = overviewCards(sm)
	case ViewRisk:
		out.Cards = riskCards(sm)
	}
	out.NoData = len(out.Cards) == 0
	return out
}

func sortedKeys(m map[string]report.MetricValue) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func qualityCards(sm map[string]report.MetricValue) []Card {
	cards := []Card{}
	standard := make(map[string]bool, len(standardQualityKeys))
	for _, k := range standardQualityKeys {
		standard[k] = true
		if v, ok := sm[k]; ok && v.Kind == report.MetricNumber {
			cards = append(cards, card(DescribeSystem(k), k, v.Number))
		}
	}
	if nested, ok := sm["quality"]; ok && nested.Kind == report.MetricDistribution {
		for _, k := range nested.DistributionKeys() {
			if _, isRisk := riskKeys[k]; isRisk {
				continue
			}
			v := nested.Distribution[k]
			d := DescribeSystem(k)
			d.Category = CategoryQuality
			if !d.Known {
				d.Description = k + " quality metric"
				d.Percent, d.Max = true, 100
				if v <= 1 {
					d.Max = 1
				}
			}
			c := card(d, k, v)
			c.Count = nested.Counts[k]
			cards = append(cards, c)
		}
	}
	for _, k := range sortedKeys(sm) {
		v := sm[k]
		if standard[k] || v.Kind != report.MetricNumber || !containsAny(k, "quality", "factor", "ratio") {
			continue
		}
		d := DescribeSystem(k)
		d.Category = CategoryQuality
		if !d.Known {
			d.Description = k + " quality metric"
			// Ratios at or below one are fractions.
			if v.Number <= 1 {
				d.Percent, d.Max = true, 1
			}
		}
		cards = append(cards, card(d, k, v.Number))
	}
	return cards
}

// patternCards collects the entries of the nested distribution named nested
// (values already in percent) followed by top-level numbers whose key
// contains one of the patterns.
func patternCards(sm map[string]report.MetricValue, nested string, patterns []string, topLevelPercent bool) []Card {
	cards := []Card{}
	if dist, ok := sm[nested]; ok && dist.Kind == report.MetricDistribution {
		for _, k := range dist.DistributionKeys() {
			d := DescribeSystem(k)
			if !d.Known {
				d.Description = k + " " + nested + " distribution"
			}
			d.Percent, d.Max = true, 100
			cards = append(cards, card(d, k, dist.Distribution[k]))
		}
	}
	for _, k := range sortedKeys(sm) {
		v := sm[k]
		if v.Kind != report.MetricNumber || !containsAny(k, patterns...) {
			continue
		}
		d := DescribeSystem(k)
		if !d.Known {
			d.Description = k + " " + nested + " metric"
			if topLevelPercent {
				d.Percent, d.Max = true, 100
			}
		}
		cards = append(cards, card(d, k, v.Number))
	}
	return cards
}

func containsAny(key string, patterns ...string) bool {
	lk := strings.ToLower(key)
	for _, p := range patterns {
		if strings.Contains(lk, p) {
			return true
		}
	}
	return false
}

var overviewKeys = []string{"NOC", "NOI", "NOM", "TLOC"}

// nestedViews are the distributions read by the other views.
var nestedViews = map[string]bool{"quality": true, "complexity": true, "visibility": true}

// overviewCards lists the system size totals followed by any other top-level
// number above one. Ratios stay in the quality view.
func overviewCards(sm map[string]report.MetricValue) []Card {
	cards := []Card{}
	seen := make(map[string]bool, len(overviewKeys))
	for _, k := range overviewKeys {
		seen[k] = true
		if v, ok := sm[k]; ok && v.Kind == report.MetricNumber {
			cards = append(cards, card(DescribeSystem(k), k, v.Number))
		}
	}
	for _, k := range sortedKeys(sm) {
		v := sm[k]
		if seen[k] || nestedViews[k] || v.Kind != report.MetricNumber || v.Number <= 1 {
			continue
		}
		d := DescribeSystem(k)
		if !d.Known {
			d.Category = CategorySize
		}
		cards = append(cards, card(d, k, v.Number))
	}
	return cards
}

var riskKeys = map[string]graph.RiskBucket{
	"highRisk":   graph.RiskHigh,
	"mediumRisk": graph.RiskMedium,
	"lowRisk":    graph.RiskLow,
}

var riskOrder = []string{"highRisk", "mediumRisk", "lowRisk"}

// riskCards reads the bug-risk distribution from quality.{high,medium,low}Risk,
// or else from bugRisk or riskDistribution. Values are percentages of classes.
func riskCards(sm map[string]report.MetricValue) []Card {
	cards := []Card{}
	if q, ok := sm["quality"]; ok && q.Kind == report.MetricDistribution {
		for _, k := range riskOrder {
			if v, ok := q.Distribution[k]; ok {
				cards = append(cards, riskCard(k, riskKeys[k].Label(), v, q.Counts[k]))
			}
		}
		if len(cards) > 0 {
			return cards
		}
	}
	for _, name := range []string{"bugRisk", "riskDistribution"} {
		dist, ok := sm[name]
		if !ok || dist.Kind != report.MetricDistribution || len(dist.Distribution) == 0 {
			continue
		}
		keys := dist.DistributionKeys()
		sort.SliceStable(keys, func(i, j int) bool { return riskRank(keys[i]) < riskRank(keys[j]) })
		for _, k := range keys {
			label := FormatName(k)
			if b, ok := graph.BucketForKey(k); ok {
				label = b.Label()
			}
			cards = append(cards, riskCard(k, label, dist.Distribution[k], dist.Counts[k]))
		}
		return cards
	}
	return cards
}

func riskRank(key string) int {
	b, ok := graph.BucketForKey(key)
	if !ok {
		return 3
	}
	switch b {
	case graph.RiskHigh:
		return 0
	case graph.RiskMedium:
		return 1
	default:
		return 2
	}
}

func riskCard(key, label string, pct, count float64) Card {
	d := Descriptor{
		Key:         key,
		Name:        label,
		Description: "Share of classes in this bug probability range",
		Category:    CategoryQuality,
		Max:         100,
		Percent:     true,
	}
	c := card(d, key, pct)
	c.Count = count
	return c
}
