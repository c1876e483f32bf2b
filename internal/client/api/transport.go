package api

import (
	"fmt"
	"net/http"

	"github.com/orbitapp/orbit-cli/internal/client/session"
	"github.com/orbitapp/orbit-cli/internal/logging"
)

// authTransport attaches the stored bearer token to every outgoing request
// and clears the store when the server answers 401, whichever endpoint
// produced the response. The 401 still propagates to the caller; redirect
// decisions belong to the route guards, not to the transport.
type authTransport struct {
	base  http.RoundTripper
	store session.Store
	log   logging.Logger
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	token, err := t.store.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read stored token: %w", err)
	}
	if token != "" {
		// RoundTrippers must not mutate the caller's request.
		req = req.Clone(ctx)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		if err := t.store.Clear(ctx); err != nil {
			t.log.Error(ctx, "failed to clear stored token after 401", "error", err)
		} else {
			t.log.Debug(ctx, "cleared stored token after 401", "url", req.URL.Path)
		}
	}
	return resp, nil
}
