package prompt

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"git.home.luguber.info/inful/syllabusbuilder/internal/fields"
)

type listQuestion struct {
	key   string
	label string
}

var listQuestions = []listQuestion{
	{fields.Objectives, "Course objective"},
	{fields.Outcomes, "Course outcome"},
	{fields.Textbooks, "Textbook"},
	{fields.References, "Reference"},
}

const blankToFinish = "Leave blank to finish."

// Ask walks the user through every syllabus field and returns the answers
// as form values accepted by fields.Collect.
func Ask(ctx context.Context, d Driver) (url.Values, error) {
	form := url.Values{}

	for _, q := range []struct{ key, msg string }{
		{fields.Semester, "Semester"},
		{fields.CourseName, "Course name"},
		{fields.CourseCode, "Course code"},
	} {
		v, err := d.Input(ctx, InputConfig{Message: q.msg})
		if err != nil {
			return nil, err
		}
		setIfPresent(form, q.key, v)
	}

	for _, q := range []struct{ key, msg string }{
		{fields.CourseDescription, "Course description"},
		{fields.Prerequisites, "Prerequisites"},
		{fields.CourseFormat, "Course format"},
		{fields.AssessmentsGrading, "Assessments and grading"},
	} {
		v, err := d.TextArea(ctx, TextAreaConfig{Message: q.msg, Help: "Leave empty to drop the section."})
		if err != nil {
			return nil, err
		}
		setIfPresent(form, q.key, v)
	}

	for _, q := range listQuestions {
		if err := askList(ctx, d, form, q); err != nil {
			return nil, err
		}
	}

	if err := askUnits(ctx, d, form); err != nil {
		return nil, err
	}

	practical, err := d.Confirm(ctx, ConfirmConfig{Message: "Does the course have a practical component?"})
	if err != nil {
		return nil, err
	}
	if practical {
		form.Set(fields.HasPractical, "on")
		periods, err := d.Input(ctx, InputConfig{Message: "Practical periods", Validator: validatePeriods})
		if err != nil {
			return nil, err
		}
		setIfPresent(form, "practical_periods", periods)
		if err := askList(ctx, d, form, listQuestion{fields.Experiments, "Experiment"}); err != nil {
			return nil, err
		}
	}

	return form, nil
}

func askList(ctx context.Context, d Driver, form url.Values, q listQuestion) error {
	for i := 1; ; i++ {
		v, err := d.Input(ctx, InputConfig{Message: fmt.Sprintf("%s %d", q.label, i), Help: blankToFinish})
		if err != nil {
			return err
		}
		if strings.TrimSpace(v) == "" {
			return nil
		}
		form.Add(q.key, v)
	}
}

func askUnits(ctx context.Context, d Driver, form url.Values) error {
	for i := 1; ; i++ {
		title, err := d.Input(ctx, InputConfig{Message: fmt.Sprintf("Unit %d title", i), Help: blankToFinish})
		if err != nil {
			return err
		}
		if strings.TrimSpace(title) == "" {
			return nil
		}
		content, err := d.TextArea(ctx, TextAreaConfig{Message: fmt.Sprintf("Unit %d content", i)})
		if err != nil {
			return err
		}
		periods, err := d.Input(ctx, InputConfig{Message: fmt.Sprintf("Unit %d periods", i), Default: "0", Validator: validatePeriods})
		if err != nil {
			return err
		}
		form.Set(fmt.Sprintf("unit_title_%d", i), title)
		form.Set(fmt.Sprintf("unit_content_%d", i), content)
		form.Set(fmt.Sprintf("unit_periods_%d", i), periods)
		if strings.TrimSpace(content) == "" {
			// Collection stops at the first unit without content.
			return nil
		}
	}
}

func validatePeriods(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return fmt.Errorf("%q is not a whole number of periods", s)
	}
	return nil
}

func setIfPresent(form url.Values, key, value string) {
	if strings.TrimSpace(value) != "" {
		form.Set(key, value)
	}
}
