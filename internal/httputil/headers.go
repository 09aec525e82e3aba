package httputil

import (
	"context"
	"net/http"
)

const UserAgent = "TariffMonitor/1.0"

// Accept values used by the upstream providers.
const (
	AcceptJSON = "application/json"
	AcceptSDMX = "application/vnd.sdmx.structure+xml;version=2.1"
	AcceptHTML = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
)

// NewGet builds a GET carrying the fixed User-Agent and the given Accept.
func NewGet(ctx context.Context, url, accept string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", UserAgent)
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	return req, nil
}

// OK reports whether resp carries a 2xx status.
func OK(resp *http.Response) bool {
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}
