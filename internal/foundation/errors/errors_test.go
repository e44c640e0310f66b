package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestClassifiedError(t *testing.T) {
	t.Run("Basic error creation", func(t *testing.T) {
		err := NewError(CategoryConfig, "invalid configuration").
			WithSeverity(SeverityFatal).
			WithContext("file", "config.yaml").
			Build()

		if err.Category() != CategoryConfig {
			t.Errorf("expected category %s, got %s", CategoryConfig, err.Category())
		}
		if err.Severity() != SeverityFatal {
			t.Errorf("expected severity %s, got %s", SeverityFatal, err.Severity())
		}
		file, exists := err.Context().GetString("file")
		if !exists || file != "config.yaml" {
			t.Errorf("expected context file=config.yaml, got %v", file)
		}
	})

	t.Run("Error detection through wrapping", func(t *testing.T) {
		inner := NotFoundError("template.docx not found").Build()
		wrapped := fmt.Errorf("generate: %w", inner)

		if !IsClassified(wrapped) {
			t.Error("expected wrapped error to be classified")
		}
		if !HasCategory(wrapped, CategoryNotFound) {
			t.Error("expected not_found category")
		}
		if inner.CanRetry() {
			t.Error("expected not-found error to require user action")
		}
	})

	t.Run("WithContext does not mutate the original", func(t *testing.T) {
		base := TemplateError("bad template").Build()
		derived := base.WithContext("path", "a.docx")

		if _, ok := base.Context().Get("path"); ok {
			t.Error("expected base context to stay untouched")
		}
		if p, _ := derived.Context().GetString("path"); p != "a.docx" {
			t.Errorf("expected derived path context, got %q", p)
		}
	})
}

func TestErrorBuilder(t *testing.T) {
	originalErr := errors.New("disk full")
	err := WrapError(originalErr, CategoryStorage, "append history event").
		Warning().
		Retryable().
		WithContext("request_id", "abc").
		Build()

	if err.RetryStrategy() != RetryBackoff {
		t.Errorf("expected retry strategy %s, got %s", RetryBackoff, err.RetryStrategy())
	}
	if !errors.Is(err, originalErr) {
		t.Error("expected error to wrap original error")
	}
	if !errors.Is(err, NewError(CategoryStorage, "append history event").Build()) {
		t.Error("expected Is to match on category and message")
	}
	if GetCategory(originalErr) != CategoryInternal {
		t.Error("expected unclassified errors to report internal category")
	}
}
