package reservations

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrMissingToken is returned when the auth endpoint answers without a token.
	ErrMissingToken = errors.New("reservation api: no token in auth response")
	// ErrRejected is returned when the reservation API does not report success.
	ErrRejected = errors.New("reservation api: request not successful")
)

// returnIDCancelled marks a reservation that the API cancelled.
const returnIDCancelled = 2

// APIError is returned for non-2xx responses.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("reservation api: status %d: %s", e.Status, e.Body)
}

// RejectedError wraps ErrRejected with the body the API returned.
type RejectedError struct {
	Body string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("%v: %s", ErrRejected, e.Body)
}

func (e *RejectedError) Unwrap() error { return ErrRejected }

// Response is the reservation API answer. Raw is relayed to the webhook caller.
type Response struct {
	ReturnID     string
	Confirmation string
	Raw          json.RawMessage
}

// Cancelled reports returnId == 2.
func (r *Response) Cancelled() bool {
	if r.ReturnID == "" {
		return false
	}
	f, err := strconv.ParseFloat(r.ReturnID, 64)
	return err == nil && f == returnIDCancelled
}

type wireResponse struct {
	Exitoso      *bool      `json:"exitoso"`
	ReturnID     flexString `json:"returnId"`
	Confirmacion flexString `json:"confirmacion"`
}

// flexString accepts a JSON string or number.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", data)
	}
	*f = flexString(n.String())
	return nil
}

func decodeResponse(body []byte) (*Response, error) {
	var w wireResponse
	if err := json.Unmarshal(body, &w); err != nil {
		return nil, fmt.Errorf("decode reservation response: %w", err)
	}
	if w.Exitoso == nil || !*w.Exitoso {
		return nil, &RejectedError{Body: string(body)}
	}
	return &Response{
		ReturnID:     string(w.ReturnID),
		Confirmation: string(w.Confirmacion),
		Raw:          json.RawMessage(body),
	}, nil
}
