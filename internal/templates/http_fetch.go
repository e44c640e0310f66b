package templates

import (
	"context"
	stderrors "errors"
	"io"
	"net/http"
	"net/url"
	"time"

	"git.home.luguber.info/inful/syllabusbuilder/internal/foundation/errors"
)

// DefaultMaxBytes caps the size of a template.
const DefaultMaxBytes = 32 << 20

// NewHTTPClient creates an HTTP client with safe defaults for template
// downloads: a timeout and same-host redirects only.
func NewHTTPClient() *http.Client {
	return &http.Client{
		Timeout: 10 * time.Second,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) == 0 {
				return nil
			}
			if req.URL.Host != via[0].URL.Host {
				return stderrors.New("redirect to different host blocked")
			}
			if len(via) >= 5 {
				return stderrors.New("too many redirects")
			}
			return nil
		},
	}
}

func fetch(ctx context.Context, rawURL string, client *http.Client, maxBytes int64) ([]byte, error) {
	if _, err := validateURL(rawURL); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, errors.ConfigError("invalid template URL").WithCause(err).WithContext("url", rawURL).Build()
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, errors.TemplateError("failed to fetch template").
			WithCause(err).
			WithContext("url", rawURL).
			Retryable().
			Build()
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusNotFound {
		return nil, notFound(rawURL)
	}
	if resp.StatusCode >= 500 {
		return nil, errors.TemplateError("failed to fetch template").
			WithContext("url", rawURL).
			WithContext("status", resp.StatusCode).
			Retryable().
			Build()
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.TemplateError("failed to fetch template").
			WithContext("url", rawURL).
			WithContext("status", resp.StatusCode).
			Build()
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBytes+1))
	if err != nil {
		return nil, errors.TemplateError("failed to read template response").WithCause(err).Build()
	}
	if int64(len(data)) > maxBytes {
		return nil, errors.TemplateError("template too large").
			WithContext("url", rawURL).
			WithContext("limit", maxBytes).
			Build()
	}
	return data, nil
}

func validateURL(raw string) (*url.URL, error) {
	parsed, err := url.Parse(raw)
	if err != nil {
		return nil, errors.ConfigError("invalid template URL").WithCause(err).Build()
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, errors.ConfigError("unsupported template URL scheme").
			WithContext("scheme", parsed.Scheme).
			Build()
	}
	return parsed, nil
}
