package dispatch

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/rabbithole-ai/warren/pkg/api"
)

func newResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestMapHTTPErrorExtractsBackendMessage(t *testing.T) {
	resp := newResponse(http.StatusBadRequest, `{"error":{"message":"model not found","type":"invalid_request_error"}}`)

	apiErr := MapHTTPError(resp)
	if apiErr.Type != api.ErrorTypeDispatch {
		t.Errorf("Type = %q, want %q", apiErr.Type, api.ErrorTypeDispatch)
	}
	if apiErr.Message != "model not found" {
		t.Errorf("Message = %q, want %q", apiErr.Message, "model not found")
	}
}

func TestMapHTTPErrorFallbackMessages(t *testing.T) {
	tests := []struct {
		status int
		want   string
	}{
		{http.StatusBadRequest, "backend rejected the request"},
		{http.StatusUnauthorized, "backend authentication failed"},
		{http.StatusForbidden, "backend authentication failed"},
		{http.StatusNotFound, "backend resource not found"},
		{http.StatusTooManyRequests, "backend rate limit exceeded"},
		{http.StatusInternalServerError, "backend error (HTTP 500)"},
		{http.StatusBadGateway, "backend error (HTTP 502)"},
	}
	for _, tt := range tests {
		apiErr := MapHTTPError(newResponse(tt.status, "not json"))
		if apiErr.Message != tt.want {
			t.Errorf("status %d: Message = %q, want %q", tt.status, apiErr.Message, tt.want)
		}
		if apiErr.Type != api.ErrorTypeDispatch {
			t.Errorf("status %d: Type = %q, want %q", tt.status, apiErr.Type, api.ErrorTypeDispatch)
		}
	}
}

func TestMapNetworkError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"deadline", context.DeadlineExceeded, "backend call timed out"},
		{"canceled", context.Canceled, "backend call canceled"},
		{"refused", errors.New("dial tcp 127.0.0.1:9: connection refused"), "backend connection error: dial tcp 127.0.0.1:9: connection refused"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apiErr := MapNetworkError(tt.err)
			if apiErr.Type != api.ErrorTypeDispatch {
				t.Errorf("Type = %q, want %q", apiErr.Type, api.ErrorTypeDispatch)
			}
			if apiErr.Message != tt.want {
				t.Errorf("Message = %q, want %q", apiErr.Message, tt.want)
			}
		})
	}
}

func TestExtractErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		body io.Reader
		want string
	}{
		{"valid envelope", strings.NewReader(`{"error":{"message":"boom"}}`), "boom"},
		{"not json", strings.NewReader("<html>gateway timeout</html>"), ""},
		{"empty body", strings.NewReader(""), ""},
		{"nil body", nil, ""},
		{"empty message", strings.NewReader(`{"error":{"message":""}}`), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractErrorMessage(tt.body); got != tt.want {
				t.Errorf("ExtractErrorMessage = %q, want %q", got, tt.want)
			}
		})
	}
}
