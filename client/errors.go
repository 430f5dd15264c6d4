package client

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/trezcool/dashboard/core/business"
)

// APIError is any non-2xx answer of the API.
// Fields holds the per-field messages of a validation failure.
type APIError struct {
	StatusCode int
	Message    string
	Fields     map[string]string
}

func (err *APIError) Error() string {
	msg := err.Message
	if msg == "" && len(err.Fields) > 0 {
		keys := make([]string, 0, len(err.Fields))
		for k := range err.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + ": " + err.Fields[k]
		}
		msg = strings.Join(parts, "; ")
	}
	if msg == "" {
		msg = http.StatusText(err.StatusCode)
	}
	return fmt.Sprintf("api: %d %s", err.StatusCode, msg)
}

// DependencyError is a 409 sent when deleting a business entity still referenced by payment milestones.
type DependencyError struct {
	APIError
	EntityName        string
	PaymentMilestones []business.PaymentMilestone
}

func (err *DependencyError) Error() string {
	return fmt.Sprintf("api: %d cannot delete %q: %d payment milestone(s) depend on it",
		err.StatusCode, err.EntityName, len(err.PaymentMilestones))
}

// decodeError builds the error matching an API error body.
func decodeError(status int, body string) error {
	apiErr := APIError{StatusCode: status}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		apiErr.Message = strings.TrimSpace(body)
		return &apiErr
	}

	if msg, ok := raw["error"]; ok {
		_ = json.Unmarshal(msg, &apiErr.Message)
	}

	_, hasName := raw["entity_name"]
	_, hasMilestones := raw["payment_milestones"]
	if status == http.StatusConflict && hasName && hasMilestones {
		depErr := DependencyError{APIError: apiErr}
		if err := json.Unmarshal(raw["entity_name"], &depErr.EntityName); err == nil {
			if err = json.Unmarshal(raw["payment_milestones"], &depErr.PaymentMilestones); err == nil {
				return &depErr
			}
		}
	}

	if apiErr.Message == "" {
		for field, msg := range raw {
			var s string
			if err := json.Unmarshal(msg, &s); err == nil {
				if apiErr.Fields == nil {
					apiErr.Fields = make(map[string]string, len(raw))
				}
				apiErr.Fields[field] = s
			}
		}
	}
	return &apiErr
}
