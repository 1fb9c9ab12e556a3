package upstream

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/noah-isme/pharmacy-desk/internal/common"
)

// GenericMessage is shown when an error body carries nothing readable.
const GenericMessage = "Something went wrong while talking to the order service. Please try again."

// NormalizeError turns a non-2xx response from the order service into an
// AppError carrying the most specific human message it can find.
func NormalizeError(status int, body []byte) *common.AppError {
	msg := extractMessage(body)
	if msg == "" {
		msg = GenericMessage
	}
	code, httpStatus := classify(status)
	return common.NewAppError(code, msg, httpStatus, &StatusError{Status: status, Body: truncate(body)})
}

// StatusError keeps the raw upstream status for logs.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return "upstream: " + http.StatusText(e.Status) + ": " + e.Body
}

func classify(status int) (string, int) {
	switch {
	case status == http.StatusUnauthorized:
		return "UPSTREAM_UNAUTHORIZED", http.StatusUnauthorized
	case status == http.StatusForbidden:
		return "UPSTREAM_FORBIDDEN", http.StatusForbidden
	case status == http.StatusNotFound:
		return "UPSTREAM_NOT_FOUND", http.StatusNotFound
	case status == http.StatusConflict:
		return "UPSTREAM_CONFLICT", http.StatusConflict
	case status == http.StatusTooManyRequests:
		return "UPSTREAM_RATE_LIMITED", http.StatusTooManyRequests
	case status >= 400 && status < 500:
		return "UPSTREAM_REJECTED", http.StatusUnprocessableEntity
	default:
		return "UPSTREAM_UNAVAILABLE", http.StatusBadGateway
	}
}

// extractMessage checks the envelope shapes in a fixed order and returns the
// first non-blank message.
func extractMessage(body []byte) string {
	var env map[string]json.RawMessage
	if len(body) == 0 || json.Unmarshal(body, &env) != nil {
		return ""
	}
	if msg := stringField(env, "message"); msg != "" {
		return msg
	}
	if msg := stringField(env, "errorMessage"); msg != "" {
		return msg
	}
	if raw, ok := env["error"]; ok {
		var s string
		if json.Unmarshal(raw, &s) == nil && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
		var nested map[string]json.RawMessage
		if json.Unmarshal(raw, &nested) == nil {
			if msg := stringField(nested, "message"); msg != "" {
				return msg
			}
		}
	}
	if raw, ok := env["errors"]; ok {
		if msg := firstListMessage(raw); msg != "" {
			return msg
		}
	}
	if msg := stringField(env, "detail"); msg != "" {
		return msg
	}
	return stringField(env, "msg")
}

func stringField(m map[string]json.RawMessage, key string) string {
	raw, ok := m[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

func firstListMessage(raw json.RawMessage) string {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return ""
	}
	for _, item := range items {
		var s string
		if json.Unmarshal(item, &s) == nil && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
		var obj map[string]json.RawMessage
		if json.Unmarshal(item, &obj) == nil {
			if msg := stringField(obj, "message"); msg != "" {
				return msg
			}
		}
	}
	return ""
}

func truncate(body []byte) string {
	const max = 512
	s := strings.TrimSpace(string(body))
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
