// Package errors provides the classified error primitives used across syllabusbuilder.
//
// Every error that crosses a package boundary carries a category (what kind of
// failure), a severity (how bad it is) and a retry strategy, plus free-form
// context. Adapters turn classified errors into HTTP responses and CLI exit codes.
//
// Example usage:
//
//	err := errors.NewError(errors.CategoryNotFound, "template.docx not found").
//		WithContext("path", templatePath).
//		WithCause(statErr).
//		Build()
package errors
