package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/rabbithole-ai/warren/pkg/api"
)

// backendErrorResponse is the error envelope OpenAI-compatible backends
// return alongside non-2xx status codes.
type backendErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// MapHTTPError converts a non-2xx backend response into an APIError.
// It parses the body for a descriptive message when one is present.
// Backend stack traces and process state never make it into the result.
func MapHTTPError(resp *http.Response) *api.APIError {
	message := ExtractErrorMessage(resp.Body)

	switch {
	case resp.StatusCode == http.StatusBadRequest:
		if message == "" {
			message = "backend rejected the request"
		}
		return api.NewDispatchError(message)

	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		if message == "" {
			message = "backend authentication failed"
		}
		return api.NewDispatchError(message)

	case resp.StatusCode == http.StatusNotFound:
		if message == "" {
			message = "backend resource not found"
		}
		return api.NewDispatchError(message)

	case resp.StatusCode == http.StatusTooManyRequests:
		if message == "" {
			message = "backend rate limit exceeded"
		}
		return api.NewDispatchError(message)

	default:
		if message == "" {
			message = fmt.Sprintf("backend error (HTTP %d)", resp.StatusCode)
		}
		return api.NewDispatchError(message)
	}
}

// MapNetworkError converts a network-level error (connection refused,
// timeout, DNS failure) into an APIError.
func MapNetworkError(err error) *api.APIError {
	if errors.Is(err, context.DeadlineExceeded) {
		return api.NewDispatchError("backend call timed out")
	}
	if errors.Is(err, context.Canceled) {
		return api.NewDispatchError("backend call canceled")
	}
	return api.NewDispatchError("backend connection error: " + err.Error())
}

// ExtractErrorMessage tries to parse the response body as a backend
// error envelope and returns the message if found.
func ExtractErrorMessage(body io.Reader) string {
	if body == nil {
		return ""
	}

	data, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil || len(data) == 0 {
		return ""
	}

	var errResp backendErrorResponse
	if err := json.Unmarshal(data, &errResp); err == nil && errResp.Error.Message != "" {
		return errResp.Error.Message
	}

	return ""
}
