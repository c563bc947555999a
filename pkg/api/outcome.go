package api

import (
	"encoding/json"

	"github.com/tidwall/gjson"
)

// OutcomeKind tags the three result flavors ArgoCD responses collapse into
type OutcomeKind int

const (
	// OutcomeOK is a 2xx response; Body holds whatever the server returned
	OutcomeOK OutcomeKind = iota
	// OutcomeSoftFailure is a non-2xx status without a permission-denial
	// payload. Soft failures are reported as data, never thrown.
	OutcomeSoftFailure
	// OutcomeHardFailure is a response body carrying an error/message pair.
	// Message holds the server's message verbatim.
	OutcomeHardFailure
)

// Outcome is the tagged result of classifying one HTTP exchange
type Outcome struct {
	Kind       OutcomeKind
	StatusCode int
	Body       json.RawMessage
	Message    string
}

// Classify applies the single classification rule for ArgoCD's inconsistent
// error shapes, at the HTTP boundary. The server reports failures three
// ways: plain HTTP status, a top-level {error, message} body, or a nested
// {response: {status, error, message}} body. The latter two are hard
// failures carrying the server's message; everything else non-2xx is soft.
func Classify(resp *Response) Outcome {
	out := Outcome{StatusCode: resp.StatusCode, Body: resp.Body}

	if resp.OK() {
		out.Kind = OutcomeOK
		return out
	}

	if msg, ok := denialMessage(resp.Body); ok {
		out.Kind = OutcomeHardFailure
		out.Message = msg
		return out
	}

	out.Kind = OutcomeSoftFailure
	return out
}

// HasErrorField reports whether a body carries an application-level error,
// in either the top-level or the nested response shape. Create operations
// pass their bodies through untouched; composite callers use this to decide
// whether a step failed.
func HasErrorField(body []byte) bool {
	if gjson.GetBytes(body, "error").Exists() {
		return true
	}
	return gjson.GetBytes(body, "response.error").Exists()
}

// ErrorMessage extracts the human-readable message from an error body,
// preferring "message" over "error" and the top-level shape over the
// nested one. Empty when the body carries no error at all.
func ErrorMessage(body []byte) string {
	if gjson.GetBytes(body, "error").Exists() {
		if m := gjson.GetBytes(body, "message"); m.Exists() && m.String() != "" {
			return m.String()
		}
		return gjson.GetBytes(body, "error").String()
	}
	if r := gjson.GetBytes(body, "response"); r.Exists() {
		if r.Get("error").Exists() || r.Get("message").Exists() {
			if m := r.Get("message"); m.Exists() && m.String() != "" {
				return m.String()
			}
			return r.Get("error").String()
		}
	}
	return ""
}

// denialMessage reports the permission-denial message when the body carries
// an error/message pair
func denialMessage(body []byte) (string, bool) {
	if gjson.GetBytes(body, "error").Exists() && gjson.GetBytes(body, "message").Exists() {
		return gjson.GetBytes(body, "message").String(), true
	}
	if r := gjson.GetBytes(body, "response"); r.Exists() {
		if r.Get("error").Exists() && r.Get("message").Exists() {
			return r.Get("message").String(), true
		}
	}
	return "", false
}
