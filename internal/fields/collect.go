package fields

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Normalizer cleans free text before it is stored.
type Normalizer interface {
	Clean(string) string
	CleanItem(string) string
}

type identity struct{}

func (identity) Clean(s string) string     { return strings.TrimSpace(s) }
func (identity) CleanItem(s string) string { return strings.TrimSpace(s) }

// Keys accepted for CourseFormat, in priority order.
var courseFormatKeys = []string{"CourseFormat", "courseformat", "course_format"}

// Keys accepted for each scalar that has legacy spellings.
var scalarAliases = map[string][]string{
	Assessments:      {"Assessments", "assessments"},
	Grading:          {"Grading", "grading"},
	PracticalPeriods: {"PracticalPeriods", "practical_periods"},
}

// Scalars collected verbatim apart from trimming.
var plainScalars = []string{Semester, CourseName, CourseCode, HasPractical}

// Lists collected from repeated keys, with or without a [] suffix.
var listKeys = []string{Objectives, Outcomes, Textbooks, References, Experiments}

// Collect builds a ValueSet from form values. Unknown keys are ignored. A nil
// normalizer only trims whitespace.
func Collect(form url.Values, n Normalizer) ValueSet {
	if n == nil {
		n = identity{}
	}
	scalars := make(map[string]string)
	put := func(name, value string) {
		if value != "" {
			scalars[name] = value
		}
	}

	for _, name := range plainScalars {
		put(name, strings.TrimSpace(form.Get(name)))
	}
	put(CourseDescription, n.Clean(form.Get(CourseDescription)))
	put(AssessmentsGrading, n.Clean(form.Get(AssessmentsGrading)))
	put(CourseFormat, n.Clean(first(form, courseFormatKeys...)))
	for name, keys := range scalarAliases {
		put(name, n.Clean(first(form, keys...)))
	}

	// Prerequisites is single-valued; repeated legacy values are joined.
	var prereqs []string
	for _, raw := range multi(form, Prerequisites) {
		if c := n.Clean(raw); c != "" {
			prereqs = append(prereqs, c)
		}
	}
	put(Prerequisites, strings.Join(prereqs, "\n"))

	lists := make(map[string][]string, len(listKeys))
	for _, name := range listKeys {
		var items []string
		for _, raw := range multi(form, name) {
			if c := n.CleanItem(raw); c != "" {
				items = append(items, c)
			}
		}
		if len(items) > 0 {
			lists[name] = items
		}
	}

	return NewValueSet(scalars, lists, collectUnits(form, n))
}

// collectUnits scans unit_title_1, unit_title_2, ... and stops at the first
// index whose title or content is blank.
func collectUnits(form url.Values, n Normalizer) []UnitRecord {
	var units []UnitRecord
	for i := 1; ; i++ {
		title := n.Clean(form.Get(fmt.Sprintf("unit_title_%d", i)))
		content := n.Clean(form.Get(fmt.Sprintf("unit_content_%d", i)))
		if title == "" || content == "" {
			return units
		}
		units = append(units, UnitRecord{
			Number:  i,
			Title:   title,
			Content: content,
			Periods: ParsePeriods(form.Get(fmt.Sprintf("unit_periods_%d", i))),
		})
	}
}

// ParsePeriods reads a period count; anything that is not a non-negative
// integer counts as zero.
func ParsePeriods(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func first(form url.Values, keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(form.Get(k)); v != "" {
			return v
		}
	}
	return ""
}

// multi returns the values for key and key[] in that order.
func multi(form url.Values, key string) []string {
	out := append([]string(nil), form[key]...)
	return append(out, form[key+"[]"]...)
}
