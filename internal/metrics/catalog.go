// Package metrics turns raw metric values into labelled, categorized,
// normalized cards for the class and system metric views.
package metrics

import (
	"strings"
	"unicode"
)

type Category string

const (
	CategorySize        Category = "size"
	CategoryCoupling    Category = "coupling"
	CategoryCohesion    Category = "cohesion"
	CategoryInheritance Category = "inheritance"
	CategoryComplexity  Category = "complexity"
	CategoryQuality     Category = "quality"
	CategoryOther       Category = "other"
)

// CategoryOrder is the display order of class metric groups.
var CategoryOrder = []Category{
	CategorySize,
	CategoryCoupling,
	CategoryCohesion,
	CategoryInheritance,
	CategoryComplexity,
	CategoryQuality,
	CategoryOther,
}

// Title is the group heading, e.g. "Size Metrics".
func (c Category) Title() string {
	s := string(c)
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:] + " Metrics"
}

// Descriptor is the static description of one metric key.
type Descriptor struct {
	Key         string   `json:"key"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Category    Category `json:"category"`
	// Max bounds the metric for normalization; zero means unbounded.
	Max     float64 `json:"max,omitempty"`
	Percent bool    `json:"percent,omitempty"`
	// Known is false for descriptors synthesized for unknown keys.
	Known bool `json:"known"`
}

var classCatalog = []Descriptor{
	{Key: "NOM", Name: "Number of Methods", Description: "Number of methods in a class", Category: CategorySize, Max: 50},
	{Key: "NOA", Name: "Number of Attributes", Description: "Number of attributes in a class", Category: CategorySize, Max: 30},
	{Key: "TLOC", Name: "Total Lines of Code", Description: "Total lines of code in the class", Category: CategorySize, Max: 1000},
	{Key: "NLOC", Name: "Non-comment Lines of Code", Description: "Lines of code excluding comments", Category: CategorySize, Max: 800},

	{Key: "MPC", Name: "Message Passing Coupling", Description: "Sum of method calls inside all methods", Category: CategoryCoupling, Max: 100},
	{Key: "DAC", Name: "Data Abstraction Coupling", Description: "Number of fields that refer to other classes defined in the system", Category: CategoryCoupling, Max: 50},
	{Key: "EC", Name: "Efferent Coupling", Description: "Number of classes that this class depends on", Category: CategoryCoupling, Max: 30},
	{Key: "AC", Name: "Afferent Coupling", Description: "Number of classes that depend on this class", Category: CategoryCoupling, Max: 30},
	{Key: "CBO", Name: "Coupling Between Objects", Description: "Number of classes coupled to a given class", Category: CategoryCoupling, Max: 40},

	{Key: "LCOM", Name: "Lack of Cohesion in Methods", Description: "Number of connected elements in the dependency graph of the class", Category: CategoryCohesion, Max: 10},
	{Key: "LCC", Name: "Loose Class Cohesion", Description: "Measures how well the methods of a class are related to each other", Category: CategoryCohesion, Max: 1, Percent: true},
	{Key: "LCOM4", Name: "Lack of Cohesion in Methods 4", Description: "Number of connected components in the class", Category: CategoryCohesion, Max: 5},
	{Key: "TCC", Name: "Tight Class Cohesion", Description: "Relative number of directly connected methods", Category: CategoryCohesion, Max: 1, Percent: true},

	{Key: "DIT", Name: "Depth of Inheritance Tree", Description: "Maximum depth of the inheritance tree", Category: CategoryInheritance, Max: 10},
	{Key: "NOC", Name: "Number of Children", Description: "Number of immediate subclasses", Category: CategoryInheritance, Max: 20},
	{Key: "RFC", Name: "Response for Class", Description: "Number of methods that can be invoked in response to a message", Category: CategoryInheritance, Max: 100},

	{Key: "WMC", Name: "Weighted Methods per Class", Description: "Sum of complexities of all methods in a class", Category: CategoryComplexity, Max: 200},
	{Key: "CC", Name: "Cyclomatic Complexity", Description: "Measure of the complexity of a program", Category: CategoryComplexity, Max: 50},

	{Key: "bugProbability", Name: "Bug Probability", Description: "Probability that this class contains bugs", Category: CategoryQuality, Max: 1, Percent: true},
}

var systemCatalog = []Descriptor{
	{Key: "MHF", Name: "Method Hiding Factor", Description: "Ratio of private methods to total methods in the system", Category: CategoryQuality, Max: 1, Percent: true},
	{Key: "AHF", Name: "Attribute Hiding Factor", Description: "Ratio of private attributes to total attributes in the system", Category: CategoryQuality, Max: 1, Percent: true},
	{Key: "PF", Name: "Polymorphism Factor", Description: "Ratio of overridden methods to total methods", Category: CategoryQuality, Max: 1, Percent: true},
	{Key: "U", Name: "Reuse Factor", Description: "Ratio of reused classes to total classes", Category: CategoryQuality, Max: 1, Percent: true},
	{Key: "S", Name: "Specialization Factor", Description: "Ratio of specialized methods to total methods", Category: CategoryQuality, Max: 1, Percent: true},

	{Key: "NOC", Name: "Number of Classes", Description: "Total number of classes in the system", Category: CategorySize, Max: 1000},
	{Key: "NOI", Name: "Number of Interfaces", Description: "Total number of interfaces in the system", Category: CategorySize, Max: 200},
	{Key: "NOM", Name: "Number of Methods", Description: "Total number of methods in the system", Category: CategorySize, Max: 10000},
	{Key: "TLOC", Name: "Total Lines of Code", Description: "Total lines of code in the system", Category: CategorySize, Max: 100000},

	{Key: "lowComplexity", Name: "Low Complexity Methods", Description: "Methods with complexity 1-5", Category: CategoryComplexity, Max: 100, Percent: true},
	{Key: "mediumComplexity", Name: "Medium Complexity Methods", Description: "Methods with complexity 6-10", Category: CategoryComplexity, Max: 100, Percent: true},
	{Key: "highComplexity", Name: "High Complexity Methods", Description: "Methods with complexity 11+", Category: CategoryComplexity, Max: 100, Percent: true},

	{Key: "publicMethods", Name: "Public Methods", Description: "Percentage of public methods", Category: CategoryOther, Max: 100, Percent: true},
	{Key: "privateMethods", Name: "Private Methods", Description: "Percentage of private methods", Category: CategoryOther, Max: 100, Percent: true},
	{Key: "protectedMethods", Name: "Protected Methods", Description: "Percentage of protected methods", Category: CategoryOther, Max: 100, Percent: true},
}

var (
	classIndex  = indexCatalog(classCatalog)
	systemIndex = indexCatalog(systemCatalog)
)

func indexCatalog(list []Descriptor) map[string]Descriptor {
	idx := make(map[string]Descriptor, len(list))
	for _, d := range list {
		d.Known = true
		idx[strings.ToLower(d.Key)] = d
	}
	return idx
}

// Describe looks up a class metric key case-insensitively. Unknown keys get a
// name derived from the key and the "other" category.
func Describe(key string) Descriptor {
	return describe(classIndex, key)
}

// DescribeSystem is Describe for system-wide metric keys.
func DescribeSystem(key string) Descriptor {
	return describe(systemIndex, key)
}

func describe(idx map[string]Descriptor, key string) Descriptor {
	if d, ok := idx[strings.ToLower(strings.TrimSpace(key))]; ok {
		return d
	}
	return Descriptor{
		Key:         key,
		Name:        FormatName(key),
		Description: key + " metric",
		Category:    CategoryOther,
	}
}

// ClassCatalog returns a copy of the known class metric descriptors.
func ClassCatalog() []Descriptor {
	out := make([]Descriptor, len(classCatalog))
	for i, d := range classCatalog {
		d.Known = true
		out[i] = d
	}
	return out
}

// FormatName splits camelCase and snake_case keys into capitalized words:
// "customRatio" becomes "Custom Ratio", "line_count" becomes "Line count".
// Runs of capitals stay together, so "maxCBO" becomes "Max CBO".
func FormatName(key string) string {
	var b strings.Builder
	prev := rune(0)
	for _, r := range key {
		switch {
		case r == '_':
			b.WriteRune(' ')
		case unicode.IsUpper(r) && (unicode.IsLower(prev) || unicode.IsDigit(prev)):
			b.WriteRune(' ')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
		prev = r
	}
	s := strings.Join(strings.Fields(b.String()), " ")
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
