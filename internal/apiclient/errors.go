package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Error is returned for transport failures (Status 0) and non-2xx
// responses. Message is the server-provided text when there is one.
type Error struct {
	Status  int
	Message string
	Fields  map[string][]string
	Err     error
}

func (e *Error) Error() string {
	if e.Status == 0 {
		if e.Err != nil {
			return "network error: " + e.Err.Error()
		}
		return "network error"
	}
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func IsNotFound(err error) bool {
	return StatusOf(err) == http.StatusNotFound
}

func IsUnauthorized(err error) bool {
	return StatusOf(err) == http.StatusUnauthorized
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// Message turns any error from this package, a validation failure or a
// cancellation into the string shown to the user.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		if apiErr.Status == 0 {
			if errors.Is(apiErr.Err, context.Canceled) {
				return "Request cancelled"
			}
			if errors.Is(apiErr.Err, context.DeadlineExceeded) {
				return "Request timed out"
			}
			return "Network error, please check your connection"
		}
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return http.StatusText(apiErr.Status)
	}
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		return verrs.Error()
	}
	if errors.Is(err, context.Canceled) {
		return "Request cancelled"
	}
	return err.Error()
}

// parseError builds an Error from a failed response body. The backend
// answers with {"message"}, {"detail"}, {"error"} or a field map such as
// {"name": ["This field is required."]}.
func parseError(status int, body []byte) *Error {
	apiErr := &Error{Status: status}
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		apiErr.Message = http.StatusText(status)
		return apiErr
	}
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		if len(trimmed) <= 200 && !strings.HasPrefix(trimmed, "<") {
			apiErr.Message = trimmed
		} else {
			apiErr.Message = http.StatusText(status)
		}
		return apiErr
	}
	for _, key := range []string{"message", "detail", "error"} {
		var text string
		if raw, ok := payload[key]; ok && json.Unmarshal(raw, &text) == nil && text != "" {
			apiErr.Message = text
			return apiErr
		}
	}
	fields := map[string][]string{}
	for key, raw := range payload {
		var list []string
		if json.Unmarshal(raw, &list) == nil && len(list) > 0 {
			fields[key] = list
			continue
		}
		var text string
		if json.Unmarshal(raw, &text) == nil && text != "" {
			fields[key] = []string{text}
		}
	}
	if len(fields) == 0 {
		apiErr.Message = http.StatusText(status)
		return apiErr
	}
	apiErr.Fields = fields
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	first := keys[0]
	if _, ok := fields["non_field_errors"]; ok {
		first = "non_field_errors"
	}
	if first == "non_field_errors" {
		apiErr.Message = fields[first][0]
	} else {
		apiErr.Message = first + ": " + fields[first][0]
	}
	return apiErr
}
