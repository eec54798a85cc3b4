package report

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/cockroachdb/errors"
)

// ErrNotObject is returned when a document is valid JSON but not an object.
var ErrNotObject = errors.New("report is not a JSON object")

type rawReport struct {
	ProjectName   json.RawMessage `json:"projectName"`
	Classes       json.RawMessage `json:"classes"`
	SystemMetrics json.RawMessage `json:"systemMetrics"`
	Inheritance   json.RawMessage `json:"inheritance"`
}

// Decode parses a report document. Only a syntax error or a non-object
// top level fails; sections with the wrong shape decode as empty.
func Decode(raw []byte) (*Report, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		if !json.Valid(trimmed) {
			return nil, errors.New("report is not valid JSON")
		}
		return nil, ErrNotObject
	}
	var top rawReport
	if err := json.Unmarshal(trimmed, &top); err != nil {
		return nil, errors.Wrap(err, "decode report")
	}

	r := &Report{
		ProjectName:   decodeString(top.ProjectName),
		Classes:       decodeClasses(top.Classes),
		SystemMetrics: decodeMetrics(top.SystemMetrics),
		Inheritance:   decodeInheritance(top.Inheritance),
		Raw:           append(json.RawMessage(nil), trimmed...),
	}
	return r, nil
}

func decodeString(raw json.RawMessage) string {
	var s string
	if json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

func decodeFloat(raw json.RawMessage) (float64, bool) {
	raw = bytes.TrimSpace(raw)
	var f float64
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) || json.Unmarshal(raw, &f) != nil {
		return 0, false
	}
	return f, true
}

func decodeObject(raw json.RawMessage) map[string]json.RawMessage {
	var obj map[string]json.RawMessage
	if len(raw) == 0 || json.Unmarshal(raw, &obj) != nil || obj == nil {
		return map[string]json.RawMessage{}
	}
	return obj
}

func decodeMetrics(raw json.RawMessage) map[string]MetricValue {
	obj := decodeObject(raw)
	out := make(map[string]MetricValue, len(obj))
	for k, v := range obj {
		var m MetricValue
		_ = m.UnmarshalJSON(v)
		out[k] = m
	}
	return out
}

func decodeInheritance(raw json.RawMessage) map[string]InheritanceEntry {
	obj := decodeObject(raw)
	out := make(map[string]InheritanceEntry, len(obj))
	for name, v := range obj {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		fields := decodeObject(v)
		entry := InheritanceEntry{Kind: parseEntityKind(decodeString(fields["type"]))}
		var list []json.RawMessage
		if json.Unmarshal(fields["list"], &list) == nil {
			for _, item := range list {
				entry.Relations = append(entry.Relations, decodeRelation(item))
			}
		}
		out[name] = entry
	}
	return out
}

func decodeRelation(raw json.RawMessage) Relation {
	fields := decodeObject(raw)
	target := decodeString(fields["name"])
	kind := decodeString(fields["type"])
	rel := Relation{Target: target, RawKind: kind}
	switch {
	case target == "" || kind == "":
		rel.Kind = RelationMalformed
	case strings.EqualFold(kind, string(RelationExtends)):
		rel.Kind = RelationExtends
	case strings.EqualFold(kind, string(RelationImplements)):
		rel.Kind = RelationImplements
	default:
		rel.Kind = RelationOther
	}
	return rel
}

func decodeClasses(raw json.RawMessage) map[string]ClassInfo {
	obj := decodeObject(raw)
	out := make(map[string]ClassInfo, len(obj))
	for id, v := range obj {
		fields := decodeObject(v)
		if len(fields) == 0 {
			continue
		}
		c := ClassInfo{
			ID:      id,
			Name:    firstNonEmpty(decodeString(fields["name"]), decodeString(fields["className"]), id),
			Package: decodeString(fields["package"]),
			Type:    parseEntityKind(decodeString(fields["type"])),
			Extends: decodeString(fields["extends"]),
			Metrics: decodeMetrics(fields["metrics"]),
		}
		if bp, ok := decodeFloat(fields["bugProbability"]); ok {
			c.BugProbability = &bp
		}
		var impl []string
		if json.Unmarshal(fields["implements"], &impl) == nil {
			c.Implements = impl
		}
		c.Methods = decodeMembers(fields["methods"])
		c.Attributes = decodeMembers(fields["attributes"])
		c.Dependencies, c.Calls = decodeDependencies(fields["dependencies"])
		out[id] = c
	}
	return out
}

func decodeMembers(raw json.RawMessage) []Member {
	var list []json.RawMessage
	if len(raw) == 0 || json.Unmarshal(raw, &list) != nil {
		return nil
	}
	out := make([]Member, 0, len(list))
	for _, item := range list {
		f := decodeObject(item)
		m := Member{
			UID:        decodeString(f["uid"]),
			Name:       decodeString(f["name"]),
			Type:       firstNonEmpty(decodeString(f["return"]), decodeString(f["type"])),
			Visibility: parseVisibility(firstNonEmpty(decodeString(f["visibility"]), decodeString(f["accessor"]))),
		}
		if bp, ok := decodeFloat(f["bugProbability"]); ok {
			m.BugProbability = bp
		}
		if m.ID() == "" {
			continue
		}
		out = append(out, m)
	}
	return out
}

// decodeDependencies accepts either the map form (method -> [{with, amount}])
// or the list form ([{from, to, target}]).
func decodeDependencies(raw json.RawMessage) (map[string][]Dependency, []Call) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, nil
	}
	if trimmed[0] == '[' {
		var list []json.RawMessage
		if json.Unmarshal(trimmed, &list) != nil {
			return nil, nil
		}
		calls := make([]Call, 0, len(list))
		for _, item := range list {
			f := decodeObject(item)
			c := Call{From: decodeString(f["from"]), To: decodeString(f["to"]), Target: decodeString(f["target"])}
			if c.From == "" || c.To == "" {
				continue
			}
			calls = append(calls, c)
		}
		return nil, calls
	}

	obj := decodeObject(trimmed)
	if len(obj) == 0 {
		return nil, nil
	}
	deps := make(map[string][]Dependency, len(obj))
	for method, v := range obj {
		var list []json.RawMessage
		if json.Unmarshal(v, &list) != nil {
			continue
		}
		entries := make([]Dependency, 0, len(list))
		for _, item := range list {
			f := decodeObject(item)
			with := decodeString(f["with"])
			if with == "" {
				continue
			}
			amount, _ := decodeFloat(f["amount"])
			entries = append(entries, Dependency{With: with, Amount: amount, Ref: ParseReference(with)})
		}
		deps[method] = entries
	}
	return deps, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
