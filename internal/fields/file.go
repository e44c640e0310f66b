package fields

import (
	"fmt"
	"net/url"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/syllabusbuilder/internal/foundation/errors"
)

// fileUnit is a unit as written in a fields file.
type fileUnit struct {
	Title   string `yaml:"title"`
	Content string `yaml:"content"`
	Periods any    `yaml:"periods"`
}

// LoadFile reads a YAML fields file and returns it as form values, so the CLI
// and the HTTP form share one collection path. Top-level keys are form keys;
// sequences become repeated values and "units" holds the unit records.
func LoadFile(path string) (url.Values, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFoundError("fields file not found").
				WithContext("path", path).
				Build()
		}
		return nil, errors.FileSystemError("failed to read fields file").
			WithCause(err).
			WithContext("path", path).
			Build()
	}
	return ParseFile(data)
}

// ParseFile decodes fields-file YAML into form values.
func ParseFile(data []byte) (url.Values, error) {
	var doc map[string]yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.ValidationError("invalid fields file").WithCause(err).Build()
	}

	form := url.Values{}
	for key, node := range doc {
		if key == "units" {
			var units []fileUnit
			if err := node.Decode(&units); err != nil {
				return nil, errors.ValidationError("invalid units list").WithCause(err).Build()
			}
			for i, u := range units {
				n := strconv.Itoa(i + 1)
				form.Set("unit_title_"+n, u.Title)
				form.Set("unit_content_"+n, u.Content)
				if u.Periods != nil {
					form.Set("unit_periods_"+n, fmt.Sprint(u.Periods))
				}
			}
			continue
		}

		switch node.Kind {
		case yaml.SequenceNode:
			var items []any
			if err := node.Decode(&items); err != nil {
				return nil, errors.ValidationError("invalid list value").
					WithCause(err).
					WithContext("field", key).
					Build()
			}
			for _, item := range items {
				form.Add(key, fmt.Sprint(item))
			}
		case yaml.ScalarNode:
			var v any
			if err := node.Decode(&v); err != nil {
				return nil, errors.ValidationError("invalid value").
					WithCause(err).
					WithContext("field", key).
					Build()
			}
			switch b := v.(type) {
			case nil:
			case bool:
				if b {
					form.Set(key, "on")
				}
			default:
				form.Set(key, fmt.Sprint(v))
			}
		default:
			return nil, errors.ValidationError("unsupported value shape").
				WithContext("field", key).
				Build()
		}
	}
	return form, nil
}
