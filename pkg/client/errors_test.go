package client

import (
	"errors"
	"fmt"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		err        error
		expected   ErrorClass
	}{
		{name: "ok", statusCode: 200, expected: ""},
		{name: "redirect", statusCode: 304, expected: ""},
		{name: "bad request", statusCode: 400, expected: ErrorClassClient},
		{name: "unauthorized", statusCode: 401, expected: ErrorClassAuth},
		{name: "forbidden", statusCode: 403, expected: ErrorClassAuth},
		{name: "not found", statusCode: 404, expected: ErrorClassClient},
		{name: "too many requests", statusCode: 429, expected: ErrorClassRateLimit},
		{name: "internal", statusCode: 500, expected: ErrorClassServer},
		{name: "bad gateway", statusCode: 502, expected: ErrorClassServer},
		{name: "transport error", statusCode: 0, err: errors.New("dial tcp: refused"), expected: ErrorClassNetwork},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classify(tt.statusCode, tt.err); got != tt.expected {
				t.Errorf("classify(%d, %v) = %q, want %q", tt.statusCode, tt.err, got, tt.expected)
			}
		})
	}
}

func TestAPIError_Error(t *testing.T) {
	tests := []struct {
		name     string
		apiError *APIError
		expected string
	}{
		{
			name: "error with wrapped error",
			apiError: &APIError{
				StatusCode: 0,
				ErrorClass: ErrorClassNetwork,
				Message:    "request failed",
				Err:        errors.New("connection refused"),
			},
			expected: "ethos network error (status 0): request failed: connection refused",
		},
		{
			name: "error without wrapped error",
			apiError: &APIError{
				StatusCode: 404,
				ErrorClass: ErrorClassClient,
				Message:    "404 Not Found",
			},
			expected: "ethos client error (status 404): 404 Not Found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := tt.apiError.Error(); result != tt.expected {
				t.Errorf("Error() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestAPIError_Unwrap(t *testing.T) {
	wrappedErr := errors.New("wrapped error")
	apiError := &APIError{
		StatusCode: 500,
		ErrorClass: ErrorClassServer,
		Message:    "server error",
		Err:        wrappedErr,
	}

	if !errors.Is(apiError, wrappedErr) {
		t.Error("errors.Is should work with wrapped error")
	}
	if (&APIError{}).Unwrap() != nil {
		t.Error("Unwrap() of empty error should be nil")
	}
}

func TestIsStatus(t *testing.T) {
	err := fmt.Errorf("fetch persons: %w", &APIError{StatusCode: 404, ErrorClass: ErrorClassClient})

	if !IsStatus(err, 404) {
		t.Error("IsStatus(wrapped 404, 404) = false, want true")
	}
	if IsStatus(err, 500) {
		t.Error("IsStatus(wrapped 404, 500) = true, want false")
	}
	if IsStatus(errors.New("plain"), 404) {
		t.Error("IsStatus(plain error) = true, want false")
	}
}

func TestVersionMediaType(t *testing.T) {
	tests := []struct {
		version  string
		expected string
	}{
		{version: "", expected: "application/json"},
		{version: "  ", expected: "application/json"},
		{version: "12", expected: "application/vnd.hedtech.integration.v12+json"},
		{version: "v12.1.0", expected: "application/vnd.hedtech.integration.v12.1.0+json"},
		{version: "application/vnd.hedtech.integration.v6+json", expected: "application/vnd.hedtech.integration.v6+json"},
	}

	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			if got := VersionMediaType(tt.version); got != tt.expected {
				t.Errorf("VersionMediaType(%q) = %q, want %q", tt.version, got, tt.expected)
			}
		})
	}

	headers := ContentTypeHeaders("12")
	if headers["Accept"] != headers["Content-Type"] {
		t.Errorf("ContentTypeHeaders() Accept %q != Content-Type %q", headers["Accept"], headers["Content-Type"])
	}
}
