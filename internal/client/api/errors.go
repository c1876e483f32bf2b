package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
)

// Sentinel errors callers match with errors.Is.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrServer       = errors.New("server error")
	ErrUnavailable  = errors.New("server unavailable")
	ErrTimeout      = errors.New("request timed out")
)

// FieldError is one element of the backend's validation detail array.
type FieldError struct {
	Loc  []any  `json:"loc"`
	Msg  string `json:"msg"`
	Type string `json:"type"`
}

// Field renders the location path as a dotted field name, dropping the
// leading "body" segment the backend prefixes to request-body locations.
func (f FieldError) Field() string {
	parts := make([]string, 0, len(f.Loc))
	for i, loc := range f.Loc {
		switch v := loc.(type) {
		case string:
			if i == 0 && v == "body" {
				continue
			}
			parts = append(parts, v)
		case float64:
			parts = append(parts, strconv.Itoa(int(v)))
		}
	}
	return strings.Join(parts, ".")
}

// Error is a typed HTTP error from the auth service. It carries the status
// code and, when the server sent one, the decoded detail payload: either a
// plain message or a list of per-field validation errors.
type Error struct {
	Status int
	Detail string
	Fields []FieldError
}

func (e *Error) Error() string {
	switch {
	case e.Detail != "":
		return fmt.Sprintf("auth service: %d: %s", e.Status, e.Detail)
	case len(e.Fields) > 0:
		msgs := make([]string, len(e.Fields))
		for i, f := range e.Fields {
			msgs[i] = f.Field() + ": " + f.Msg
		}
		return fmt.Sprintf("auth service: %d: %s", e.Status, strings.Join(msgs, "; "))
	default:
		return fmt.Sprintf("auth service: status %d", e.Status)
	}
}

// Unwrap maps the status onto one of the package sentinels so callers can
// use errors.Is without looking at numeric codes.
func (e *Error) Unwrap() error {
	switch {
	case e.Status == http.StatusUnauthorized:
		return ErrUnauthorized
	case e.Status == http.StatusForbidden:
		return ErrForbidden
	case e.Status >= http.StatusInternalServerError:
		return ErrServer
	default:
		return nil
	}
}

// errorBody matches the backend's error envelope. Detail is either a string
// or an array of FieldError objects.
type errorBody struct {
	Detail json.RawMessage `json:"detail"`
}

func decodeError(resp *http.Response) *Error {
	apiErr := &Error{Status: resp.StatusCode}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil || len(data) == 0 {
		return apiErr
	}

	var body errorBody
	if err := json.Unmarshal(data, &body); err != nil || len(body.Detail) == 0 {
		return apiErr
	}

	var msg string
	if err := json.Unmarshal(body.Detail, &msg); err == nil {
		apiErr.Detail = msg
		return apiErr
	}

	var fields []FieldError
	if err := json.Unmarshal(body.Detail, &fields); err == nil {
		apiErr.Fields = fields
	}
	return apiErr
}

// mapTransportError classifies a failure that produced no HTTP response:
// exceeding the request budget becomes ErrTimeout, everything else
// ErrUnavailable.
func mapTransportError(err error) error {
	var ne net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}
