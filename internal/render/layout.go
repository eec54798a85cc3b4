package render

import (
	"context"
	"encoding/json"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
)

type View string

const (
	ViewInheritance  View = "inheritance"
	ViewDependencies View = "dependencies"
	ViewUsage        View = "usage"
)

func (v View) Title() string {
	switch v {
	case ViewInheritance:
		return "Inheritance Graph"
	case ViewDependencies:
		return "Class Dependencies"
	case ViewUsage:
		return "Class Usage"
	default:
		return string(v)
	}
}

type LayoutKind string

const (
	LayoutHierarchical LayoutKind = "hierarchical"
	LayoutForce        LayoutKind = "force"
)

// Layout carries the options a client-side graph library needs to place the
// scene. Hierarchical layouts use the node levels.
type Layout struct {
	Kind LayoutKind `json:"kind"`

	Direction       string `json:"direction,omitempty"`
	SortMethod      string `json:"sortMethod,omitempty"`
	LevelSeparation int    `json:"levelSeparation,omitempty"`
	NodeSpacing     int    `json:"nodeSpacing,omitempty"`

	Solver                  string  `json:"solver,omitempty"`
	GravitationalConstant   float64 `json:"gravitationalConstant,omitempty"`
	CentralGravity          float64 `json:"centralGravity,omitempty"`
	SpringLength            float64 `json:"springLength,omitempty"`
	SpringConstant          float64 `json:"springConstant,omitempty"`
	StabilizationIterations int     `json:"stabilizationIterations,omitempty"`
}

// Layouts maps each view to its layout.
type Layouts map[View]Layout

func DefaultLayouts() Layouts {
	force := Layout{
		Kind:                    LayoutForce,
		Solver:                  "forceAtlas2Based",
		GravitationalConstant:   -50,
		CentralGravity:          0.01,
		SpringLength:            100,
		SpringConstant:          0.08,
		StabilizationIterations: 100,
	}
	return Layouts{
		ViewInheritance: {
			Kind:            LayoutHierarchical,
			Direction:       "UD",
			SortMethod:      "directed",
			LevelSeparation: 120,
			NodeSpacing:     150,
		},
		ViewDependencies: force,
		ViewUsage:        force,
	}
}

// Loader prepares the layouts an Engine renders with.
type Loader func(ctx context.Context) (Layouts, error)

// DefaultLoader returns the built-in layouts.
func DefaultLoader(context.Context) (Layouts, error) {
	return DefaultLayouts(), nil
}

// FileLoader reads layout overrides from a JSON object keyed by view name.
// Views and fields missing from the file keep their defaults.
func FileLoader(path string) Loader {
	return func(ctx context.Context) (Layouts, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		layouts := DefaultLayouts()
		path = strings.TrimSpace(path)
		if path == "" {
			return layouts, nil
		}
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "read layout file %s", path)
		}
		var overrides map[View]json.RawMessage
		if err := json.Unmarshal(raw, &overrides); err != nil {
			return nil, errors.Wrapf(err, "parse layout file %s", path)
		}
		// Fields an override leaves out keep the view's default.
		for v, body := range overrides {
			l := layouts[v]
			if err := json.Unmarshal(body, &l); err != nil {
				return nil, errors.Wrapf(err, "parse layout for %s", v)
			}
			if l.Kind != LayoutHierarchical && l.Kind != LayoutForce {
				return nil, errors.Newf("layout for %s: unknown kind %q", v, l.Kind)
			}
			layouts[v] = l
		}
		return layouts, nil
	}
}
