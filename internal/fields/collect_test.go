package fields

import (
	"net/url"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/syllabusbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/syllabusbuilder/internal/textnorm"
)

func TestCollect_Scalars(t *testing.T) {
	form := url.Values{
		"Semester":          {" V "},
		"CourseName":        {"Operating Systems"},
		"CourseCode":        {"CS301"},
		"CourseDescription": {"Processes\nand   threads"},
		"course_format":     {"Lectures"},
		"grading":           {"Final exam"},
		"Unknown":           {"ignored"},
	}
	vs := Collect(form, textnorm.Normalizer{})

	require.Equal(t, "V", vs.Scalar(Semester))
	require.Equal(t, "Operating Systems", vs.Scalar(CourseName))
	require.Equal(t, "Processes and threads", vs.Scalar(CourseDescription))
	require.Equal(t, "Lectures", vs.Scalar(CourseFormat))
	require.Equal(t, "Final exam", vs.Scalar(Grading))
	require.False(t, vs.HasScalar(Assessments))
	require.Empty(t, vs.Scalar("Unknown"))
}

func TestCollect_CourseFormatKeyPriority(t *testing.T) {
	vs := Collect(url.Values{"courseformat": {"b"}, "CourseFormat": {"a"}}, nil)
	require.Equal(t, "a", vs.Scalar(CourseFormat))
}

func TestCollect_PrerequisitesJoinsLegacyValues(t *testing.T) {
	vs := Collect(url.Values{"Prerequisites[]": {"Data structures", " ", "Discrete maths"}}, nil)
	require.Equal(t, "Data structures\nDiscrete maths", vs.Scalar(Prerequisites))
}

func TestCollect_Lists(t *testing.T) {
	form := url.Values{
		"objective[]":    {"Understand X", "", "Apply Y"},
		"objective":      {"Plain key"},
		"course_outcome": {"Explain scheduling"},
	}
	vs := Collect(form, nil)

	if diff := cmp.Diff([]string{"Plain key", "Understand X", "Apply Y"}, vs.List(Objectives)); diff != "" {
		t.Fatalf("objectives mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, []string{"Explain scheduling"}, vs.List(Outcomes))
	require.Nil(t, vs.List(Textbooks))
	require.Equal(t, []string{Outcomes, Objectives}, vs.ListNames())
}

func TestCollect_UnitsStopAtFirstGap(t *testing.T) {
	form := url.Values{
		"unit_title_1": {"Intro"}, "unit_content_1": {"Basics"}, "unit_periods_1": {"3"},
		"unit_title_2": {"Memory"}, "unit_content_2": {"Paging"}, "unit_periods_2": {"abc"},
		"unit_title_3": {"Files"}, "unit_content_3": {""}, "unit_periods_3": {"5"},
		"unit_title_4": {"Never"}, "unit_content_4": {"reached"}, "unit_periods_4": {"9"},
	}
	vs := Collect(form, nil)

	want := []UnitRecord{
		{Number: 1, Title: "Intro", Content: "Basics", Periods: 3},
		{Number: 2, Title: "Memory", Content: "Paging", Periods: 0},
	}
	if diff := cmp.Diff(want, vs.Units()); diff != "" {
		t.Fatalf("units mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, 3, vs.TotalPeriods())
}

func TestParsePeriods(t *testing.T) {
	cases := map[string]int{"4": 4, " 7 ": 7, "": 0, "x": 0, "-2": 0, "2.5": 0}
	for in, want := range cases {
		require.Equal(t, want, ParsePeriods(in), "input %q", in)
	}
}

func TestValueSet_Practical(t *testing.T) {
	for _, v := range []string{"on", "true", "1", "yes"} {
		require.True(t, Collect(url.Values{"hasPractical": {v}}, nil).Practical(), v)
	}
	for _, v := range []string{"", "0", "false", "off"} {
		require.False(t, Collect(url.Values{"hasPractical": {v}}, nil).Practical(), v)
	}
}

func TestValueSet_AccessorsReturnCopies(t *testing.T) {
	vs := NewValueSet(nil, map[string][]string{Textbooks: {"A"}}, []UnitRecord{{Number: 1, Title: "T"}})

	list := vs.List(Textbooks)
	list[0] = "mutated"
	units := vs.Units()
	units[0].Title = "mutated"

	require.Equal(t, []string{"A"}, vs.List(Textbooks))
	require.Equal(t, "T", vs.Units()[0].Title)
}

func TestParseFile(t *testing.T) {
	data := []byte(`
CourseName: Operating Systems
CourseCode: CS301
hasPractical: true
PracticalPeriods: 30
objective:
  - Understand X
  - Apply Y
units:
  - title: Intro
    content: Basics
    periods: 3
  - title: Memory
    content: Paging
`)
	form, err := ParseFile(data)
	require.NoError(t, err)

	vs := Collect(form, nil)
	require.Equal(t, "Operating Systems", vs.Scalar(CourseName))
	require.True(t, vs.Practical())
	require.Equal(t, "30", vs.Scalar(PracticalPeriods))
	require.Equal(t, []string{"Understand X", "Apply Y"}, vs.List(Objectives))
	require.Len(t, vs.Units(), 2)
	require.Equal(t, 0, vs.Units()[1].Periods)
}

func TestParseFile_Invalid(t *testing.T) {
	_, err := ParseFile([]byte("objective: {nested: map}"))
	require.Error(t, err)
	require.True(t, errors.HasCategory(err, errors.CategoryValidation))

	_, err = ParseFile([]byte("objective: [unclosed"))
	require.Error(t, err)
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(t.TempDir() + "/missing.yaml")
	require.True(t, errors.HasCategory(err, errors.CategoryNotFound))
}
