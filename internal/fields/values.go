// Package fields turns submitted form values into the immutable ValueSet the
// assembly engine consumes.
package fields

import (
	"maps"
	"slices"
	"strings"
)

// Names of the values held by a ValueSet.
const (
	Semester           = "Semester"
	CourseName         = "CourseName"
	CourseCode         = "CourseCode"
	CourseDescription  = "CourseDescription"
	Prerequisites      = "Prerequisites"
	CourseFormat       = "CourseFormat"
	AssessmentsGrading = "AssessmentsGrading"
	Assessments        = "Assessments"
	Grading            = "Grading"
	HasPractical       = "hasPractical"
	PracticalPeriods   = "PracticalPeriods"

	Objectives  = "objective"
	Outcomes    = "course_outcome"
	Textbooks   = "textbook"
	References  = "reference"
	Experiments = "experiments"
)

// UnitRecord is one numbered teaching unit.
type UnitRecord struct {
	Number  int    `json:"number" yaml:"number"`
	Title   string `json:"title" yaml:"title"`
	Content string `json:"content" yaml:"content"`
	Periods int    `json:"periods" yaml:"periods"`
}

// ValueSet is the read-only snapshot of everything a user submitted. Accessors
// return copies so a ValueSet can be shared between goroutines.
type ValueSet struct {
	scalars map[string]string
	lists   map[string][]string
	units   []UnitRecord
}

// NewValueSet copies its arguments into a ValueSet.
func NewValueSet(scalars map[string]string, lists map[string][]string, units []UnitRecord) ValueSet {
	vs := ValueSet{
		scalars: maps.Clone(scalars),
		lists:   make(map[string][]string, len(lists)),
		units:   slices.Clone(units),
	}
	for k, v := range lists {
		vs.lists[k] = slices.Clone(v)
	}
	return vs
}

// Scalar returns the named single value, or "" when it was not submitted.
func (v ValueSet) Scalar(name string) string { return v.scalars[name] }

// HasScalar reports whether a non-empty value was submitted for name.
func (v ValueSet) HasScalar(name string) bool { return v.scalars[name] != "" }

// List returns a copy of the named list in submission order.
func (v ValueSet) List(name string) []string { return slices.Clone(v.lists[name]) }

// Units returns a copy of the unit records, numbered from 1.
func (v ValueSet) Units() []UnitRecord { return slices.Clone(v.units) }

// TotalPeriods sums the periods of every unit.
func (v ValueSet) TotalPeriods() int {
	total := 0
	for _, u := range v.units {
		total += u.Periods
	}
	return total
}

// Practical reports whether the practical component was requested.
func (v ValueSet) Practical() bool { return truthy(v.scalars[HasPractical]) }

// ScalarNames lists the submitted scalar names in sorted order.
func (v ValueSet) ScalarNames() []string {
	return slices.Sorted(maps.Keys(v.scalars))
}

// ListNames lists the non-empty list names in sorted order.
func (v ValueSet) ListNames() []string {
	names := make([]string, 0, len(v.lists))
	for k, items := range v.lists {
		if len(items) > 0 {
			names = append(names, k)
		}
	}
	slices.Sort(names)
	return names
}

func truthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "0", "false", "off", "no":
		return false
	default:
		return true
	}
}
