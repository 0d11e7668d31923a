package cloudflare

import (
	"fmt"
	"strings"
)

// ResponseError is one entry of the errors array in the API envelope.
type ResponseError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// APIError covers all gateway failures: transport errors, non-2xx
// responses, malformed bodies, and success:false envelopes. StatusCode is
// zero when the request never produced a response.
type APIError struct {
	Message    string
	StatusCode int
	Errors     []ResponseError
}

func (e *APIError) Error() string {
	if len(e.Errors) == 0 {
		return e.Message
	}
	parts := make([]string, 0, len(e.Errors))
	for _, re := range e.Errors {
		parts = append(parts, fmt.Sprintf("%d: %s", re.Code, re.Message))
	}
	return fmt.Sprintf("%s (%s)", e.Message, strings.Join(parts, "; "))
}
