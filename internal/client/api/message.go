package api

import (
	"errors"
	"strings"
)

// Message renders err as a user-visible sentence.
//
// The taxonomy is deliberate: connectivity failures must not read like
// credential failures, validation details are surfaced per field, and server
// faults never leak internals. A 401 is phrased as session expiry here;
// views that just submitted credentials should map ErrUnauthorized to their
// own "incorrect email or password" wording before falling back to Message.
func Message(err error) string {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrTimeout):
		return "The request timed out. Please try again."
	case errors.Is(err, ErrUnavailable):
		return "Cannot reach the server. Check your connection and try again."
	}

	var apiErr *Error
	if errors.As(err, &apiErr) {
		if len(apiErr.Fields) == 1 {
			f := apiErr.Fields[0]
			return f.Field() + ": " + f.Msg
		}
		if len(apiErr.Fields) > 1 {
			msgs := make([]string, len(apiErr.Fields))
			for i, f := range apiErr.Fields {
				msgs[i] = f.Field() + ": " + f.Msg
			}
			return strings.Join(msgs, "; ")
		}

		switch {
		case errors.Is(err, ErrUnauthorized):
			return "Your session has expired. Please log in again."
		case errors.Is(err, ErrForbidden):
			return "You do not have permission to perform this action."
		case errors.Is(err, ErrServer):
			return "The server encountered an error. Please try again later."
		}
		if apiErr.Detail != "" {
			return apiErr.Detail
		}
	}

	return err.Error()
}
