package notion

import (
	"encoding/json"
	"fmt"
	"strings"
)

// APIError is a non-success response from the host.
type APIError struct {
	Status  int
	Code    string
	Message string
	Body    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Notion API error (%d): %s", e.Status, e.Body)
}

type errorBody struct {
	Object  string `json:"object"`
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func newAPIError(status int, body []byte) *APIError {
	e := &APIError{Status: status, Body: strings.TrimSpace(string(body))}
	var parsed errorBody
	if json.Unmarshal(body, &parsed) == nil {
		e.Code = parsed.Code
		e.Message = strings.TrimSpace(parsed.Message)
	}
	return e
}

// PartialPublishError reports an append failure after the page was created.
// The page stays on the host with the first Delivered blocks.
type PartialPublishError struct {
	PageID    string
	URL       string
	Delivered int
	Total     int
	Err       error
}

func (e *PartialPublishError) Error() string {
	return fmt.Sprintf("page %s created but only %d of %d blocks were delivered: %v", e.URL, e.Delivered, e.Total, e.Err)
}

func (e *PartialPublishError) Unwrap() error { return e.Err }
