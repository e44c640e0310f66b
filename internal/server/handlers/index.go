package handlers

import (
	"html/template"
	"log/slog"
	"net/http"

	"git.home.luguber.info/inful/syllabusbuilder/internal/fields"
	"git.home.luguber.info/inful/syllabusbuilder/internal/logfields"
)

type formField struct {
	Name  string
	Label string
	Area  bool
	Slots []int // repeated inputs sharing Name
}

var listSlots = []int{1, 2, 3, 4, 5, 6}

var formFields = []formField{
	{Name: fields.Semester, Label: "Semester"},
	{Name: fields.CourseName, Label: "Course name"},
	{Name: fields.CourseCode, Label: "Course code"},
	{Name: fields.CourseDescription, Label: "Course description", Area: true},
	{Name: fields.Prerequisites, Label: "Prerequisites", Area: true},
	{Name: fields.CourseFormat, Label: "Course format", Area: true},
	{Name: fields.AssessmentsGrading, Label: "Assessments and grading", Area: true},
	{Name: fields.Objectives + "[]", Label: "Course objectives", Slots: listSlots},
	{Name: fields.Outcomes + "[]", Label: "Course outcomes", Slots: listSlots},
	{Name: fields.Textbooks + "[]", Label: "Textbooks", Slots: listSlots},
	{Name: fields.References + "[]", Label: "References", Slots: listSlots},
	{Name: "practical_periods", Label: "Practical periods"},
	{Name: fields.Experiments + "[]", Label: "Experiments", Slots: listSlots},
}

var indexPage = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>Syllabus builder</title></head>
<body>
<h1>Syllabus builder</h1>
<form method="post" action="/generate">
{{range .Fields}}<p><label>{{.Label}}<br>
{{if .Slots}}{{$name := .Name}}{{range .Slots}}<input name="{{$name}}" size="80"><br>
{{end}}{{else if .Area}}<textarea name="{{.Name}}" rows="4" cols="80"></textarea>{{else}}<input name="{{.Name}}" size="60">{{end}}
</label></p>
{{end}}<p><label><input type="checkbox" name="hasPractical"> Course has a practical component</label></p>
<fieldset><legend>Units</legend>
{{range .Units}}<p>Unit {{.}}: <input name="unit_title_{{.}}" placeholder="Title">
<input name="unit_periods_{{.}}" size="4" placeholder="Periods"><br>
<textarea name="unit_content_{{.}}" rows="3" cols="80" placeholder="Content"></textarea></p>
{{end}}</fieldset>
<p><button type="submit">Generate</button>
<button type="submit" formaction="/preview?format=html">Preview</button></p>
</form>
</body>
</html>
`))

// HandleIndex renders the submission form.
func HandleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	data := map[string]any{"Fields": formFields, "Units": []int{1, 2, 3, 4, 5}}
	if err := indexPage.Execute(w, data); err != nil {
		slog.Error("failed rendering index page", logfields.Error(err))
	}
}
