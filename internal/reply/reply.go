// Package reply reads the fields a host usually wants out of a
// chat-completion document returned by the bridge. The bridge itself never
// interprets the document; these helpers are for its callers.
package reply

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

// NoContent is shown when a document carries no assistant message.
const NoContent = "No response content received"

// Text returns choices[0].message.content. ok is false when the path is
// missing or null.
func Text(doc json.RawMessage) (text string, ok bool) {
	r := gjson.GetBytes(doc, "choices.0.message.content")
	if !r.Exists() || r.Type == gjson.Null {
		return "", false
	}
	return r.String(), true
}

// TextOrDefault is Text with NoContent substituted for a missing reply.
func TextOrDefault(doc json.RawMessage) string {
	if text, ok := Text(doc); ok {
		return text
	}
	return NoContent
}

// APIError is the error object the endpoint returns alongside a non-2xx
// status.
type APIError struct {
	Message string `json:"message"`
	Type    string `json:"type,omitempty"`
	Code    string `json:"code,omitempty"`
}

func (e *APIError) Error() string {
	switch {
	case e.Code != "":
		return fmt.Sprintf("api error (%s): %s", e.Code, e.Message)
	case e.Type != "":
		return fmt.Sprintf("api error (%s): %s", e.Type, e.Message)
	default:
		return "api error: " + e.Message
	}
}

// ParseAPIError extracts the top-level "error" object, if the document has one.
// A string-valued "error" is accepted as the message.
func ParseAPIError(doc json.RawMessage) (*APIError, bool) {
	r := gjson.GetBytes(doc, "error")
	switch {
	case r.IsObject():
		return &APIError{
			Message: r.Get("message").String(),
			Type:    r.Get("type").String(),
			Code:    r.Get("code").String(),
		}, true
	case r.Type == gjson.String:
		return &APIError{Message: r.String()}, true
	default:
		return nil, false
	}
}
