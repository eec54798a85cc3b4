// Package report holds the typed form of an externally produced code-metrics
// document. Decoding is lenient: unexpected shapes become explicit "unknown"
// variants or empty collections instead of errors, so every lookup is total.
package report

import (
	"encoding/json"
	"strings"
)

// Report is the single analysis document loaded into the dashboard.
// It is read-only once decoded; views derive their own view-models from it.
type Report struct {
	ProjectName   string                      `json:"projectName"`
	Classes       map[string]ClassInfo        `json:"classes"`
	SystemMetrics map[string]MetricValue      `json:"systemMetrics"`
	Inheritance   map[string]InheritanceEntry `json:"inheritance"`

	// Raw is the document exactly as received.
	Raw json.RawMessage `json:"-"`
}

type EntityKind string

const (
	EntityClass     EntityKind = "CLASS"
	EntityInterface EntityKind = "INTERFACE"
	EntityUnknown   EntityKind = "UNKNOWN"
)

func parseEntityKind(s string) EntityKind {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(EntityClass):
		return EntityClass
	case string(EntityInterface):
		return EntityInterface
	default:
		return EntityUnknown
	}
}

type RelationKind string

const (
	RelationExtends    RelationKind = "extends"
	RelationImplements RelationKind = "implements"
	// RelationOther is a well-formed relation whose kind is not recognised.
	RelationOther RelationKind = "other"
	// RelationMalformed marks an entry missing its target or kind.
	RelationMalformed RelationKind = "malformed"
)

// Relation is one entry of an inheritance list: the declaring type relates to Target.
type Relation struct {
	Target  string       `json:"name"`
	Kind    RelationKind `json:"type"`
	RawKind string       `json:"-"`
}

// Valid reports whether the relation can produce an edge.
func (r Relation) Valid() bool {
	return r.Kind != RelationMalformed && strings.TrimSpace(r.Target) != ""
}

type InheritanceEntry struct {
	Kind      EntityKind `json:"type"`
	Relations []Relation `json:"list"`
}

type Visibility string

const (
	VisibilityPublic    Visibility = "public"
	VisibilityPrivate   Visibility = "private"
	VisibilityProtected Visibility = "protected"
	VisibilityUnknown   Visibility = "unknown"
)

func parseVisibility(s string) Visibility {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "public":
		return VisibilityPublic
	case "private":
		return VisibilityPrivate
	case "protected":
		return VisibilityProtected
	default:
		return VisibilityUnknown
	}
}

// Member is a method or attribute of a class.
type Member struct {
	UID            string     `json:"uid,omitempty"`
	Name           string     `json:"name"`
	Type           string     `json:"type,omitempty"`
	Visibility     Visibility `json:"visibility"`
	BugProbability float64    `json:"bugProbability"`
}

// ID returns the identifier used for graph nodes: the uid when present, else the name.
func (m Member) ID() string {
	if uid := strings.TrimSpace(m.UID); uid != "" {
		return uid
	}
	return strings.TrimSpace(m.Name)
}

type RefKind string

const (
	RefAttribute      RefKind = "attribute"
	RefInternalMethod RefKind = "internal_method"
	RefExternal       RefKind = "external"
)

// Reference is a classified dependency target.
type Reference struct {
	Kind RefKind `json:"kind"`
	// Name is the target without its serialization prefix.
	Name string `json:"name"`
}

// ParseReference classifies a dependency target written in the report's
// prefix convention: "@attr" is an attribute, "this.m" is a method of the
// same class, anything else is an external or utility reference.
func ParseReference(with string) Reference {
	w := strings.TrimSpace(with)
	switch {
	case strings.HasPrefix(w, "@"):
		return Reference{Kind: RefAttribute, Name: strings.TrimPrefix(w, "@")}
	case strings.HasPrefix(w, "this."):
		return Reference{Kind: RefInternalMethod, Name: strings.TrimPrefix(w, "this.")}
	default:
		return Reference{Kind: RefExternal, Name: w}
	}
}

// Dependency is one entry of a method's dependency list.
type Dependency struct {
	With   string    `json:"with"`
	Amount float64   `json:"amount"`
	Ref    Reference `json:"-"`
}

// Call is a method-to-method edge in the list form of "dependencies".
type Call struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Target string `json:"target,omitempty"`
}

type ClassInfo struct {
	ID             string                  `json:"-"`
	Name           string                  `json:"name"`
	Package        string                  `json:"package"`
	Type           EntityKind              `json:"type"`
	BugProbability *float64                `json:"bugProbability,omitempty"`
	Extends        string                  `json:"extends,omitempty"`
	Implements     []string                `json:"implements,omitempty"`
	Metrics        map[string]MetricValue  `json:"metrics"`
	Methods        []Member                `json:"methods,omitempty"`
	Attributes     []Member                `json:"attributes,omitempty"`
	Dependencies   map[string][]Dependency `json:"dependencies,omitempty"`
	Calls          []Call                  `json:"calls,omitempty"`
}

// QualifiedName is package.name, or just name when the package is empty.
func (c ClassInfo) QualifiedName() string {
	if c.Package == "" {
		return c.Name
	}
	return c.Package + "." + c.Name
}

// Risk returns the class bug probability, falling back to the
// "bugProbability" metric and finally to zero.
func (c ClassInfo) Risk() float64 {
	if c.BugProbability != nil {
		return *c.BugProbability
	}
	if v, ok := c.Metrics["bugProbability"]; ok && v.Kind == MetricNumber {
		return v.Number
	}
	return 0
}
