package report

import (
	"bytes"
	"encoding/json"
	"sort"
)

type MetricKind int

const (
	MetricUnknown MetricKind = iota
	MetricNumber
	MetricDistribution
)

// MetricValue is a metric that is either a single number, a nested
// distribution of named numbers, or something else kept verbatim.
// Distribution entries may also be objects such as {"value":18,"NOC":12};
// the value lands in Distribution and the class count in Counts.
type MetricValue struct {
	Kind         MetricKind
	Number       float64
	Distribution map[string]float64
	Counts       map[string]float64
	Raw          json.RawMessage
}

func Number(v float64) MetricValue {
	return MetricValue{Kind: MetricNumber, Number: v}
}

func Distribution(d map[string]float64) MetricValue {
	return MetricValue{Kind: MetricDistribution, Distribution: d}
}

// DistributionKeys returns the distribution keys in sorted order.
func (m MetricValue) DistributionKeys() []string {
	keys := make([]string, 0, len(m.Distribution))
	for k := range m.Distribution {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (m *MetricValue) UnmarshalJSON(b []byte) error {
	raw := bytes.TrimSpace(b)
	if bytes.Equal(raw, []byte("null")) {
		*m = MetricValue{Kind: MetricUnknown}
		return nil
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		*m = Number(n)
		return nil
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err == nil && obj != nil {
		dist := make(map[string]float64, len(obj))
		var counts map[string]float64
		for k, v := range obj {
			if f, ok := decodeFloat(v); ok {
				dist[k] = f
				continue
			}
			entry := decodeObject(v)
			f, ok := firstFloat(entry, "value", "percentage")
			if !ok {
				continue
			}
			dist[k] = f
			if n, ok := firstFloat(entry, "NOC", "count"); ok {
				if counts == nil {
					counts = make(map[string]float64)
				}
				counts[k] = n
			}
		}
		*m = Distribution(dist)
		m.Counts = counts
		m.Raw = append(json.RawMessage(nil), raw...)
		return nil
	}
	*m = MetricValue{Kind: MetricUnknown, Raw: append(json.RawMessage(nil), raw...)}
	return nil
}

func (m MetricValue) MarshalJSON() ([]byte, error) {
	switch m.Kind {
	case MetricNumber:
		return json.Marshal(m.Number)
	case MetricDistribution:
		if len(m.Raw) > 0 {
			return m.Raw, nil
		}
		return json.Marshal(m.Distribution)
	default:
		if len(m.Raw) == 0 {
			return []byte("null"), nil
		}
		return m.Raw, nil
	}
}

func firstFloat(obj map[string]json.RawMessage, keys ...string) (float64, bool) {
	for _, k := range keys {
		if f, ok := decodeFloat(obj[k]); ok {
			return f, true
		}
	}
	return 0, false
}
