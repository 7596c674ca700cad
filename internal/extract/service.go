// Package extract wraps calls to the document-understanding service.
package extract

import (
	"context"
	"encoding/json"
	"fmt"
)

// Request describes one extraction call. Constructed fresh per call and
// never mutated after construction.
type Request struct {
	// Instructions set the assistant persona.
	Instructions string
	// Attachments are local file paths made available to the service.
	Attachments []string
	// OutputSchema, when set, constrains the answer to a JSON schema.
	OutputSchema json.RawMessage
	// Question is the user prompt.
	Question string
}

// Result is the normalized service response. Citations[i] corresponds to
// the marker [i] substituted into Text.
type Result struct {
	Text      string   `json:"text"`
	Citations []string `json:"citations"`
}

// Service runs extraction requests.
type Service interface {
	Run(ctx context.Context, req *Request) (*Result, error)
}

// Error reports a failed or malformed extraction service call.
type Error struct {
	// Stage identifies the part of the call that failed ("upload",
	// "completion", "response").
	Stage string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("extraction %s failed: %v", e.Stage, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
