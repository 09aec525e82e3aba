package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/kjannette/tariff-monitor/internal/httputil"
)

// Function names the server exposes under /functions/v1/.
const (
	FunctionTariffData = "fetch-tariff-data"
	FunctionTradeNews  = "fetch-trade-news"
)

// Invoker calls a named server function and decodes its JSON body into out.
type Invoker interface {
	Invoke(ctx context.Context, function string, out any) error
}

// StatusError reports a non-2xx answer from the server.
type StatusError struct {
	Function string
	Code     int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned HTTP %d", e.Function, e.Code)
}

type HTTPInvoker struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewHTTPInvoker(baseURL, apiKey string) *HTTPInvoker {
	return &HTTPInvoker{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (h *HTTPInvoker) Invoke(ctx context.Context, function string, out any) error {
	url := h.baseURL + "/functions/v1/" + function

	resp, err := httputil.Do(ctx, h.httpClient, httputil.SingleAttempt, func() (*http.Request, error) {
		req, err := httputil.NewGet(ctx, url, httputil.AcceptJSON)
		if err != nil {
			return nil, err
		}
		if h.apiKey != "" {
			req.Header.Set("apikey", h.apiKey)
			req.Header.Set("Authorization", "Bearer "+h.apiKey)
		}
		return req, nil
	})
	if err != nil {
		var hse *httputil.StatusError
		if errors.As(err, &hse) {
			return &StatusError{Function: function, Code: hse.Code}
		}
		return fmt.Errorf("%s: %w", function, err)
	}
	defer resp.Body.Close()

	if !httputil.OK(resp) {
		return &StatusError{Function: function, Code: resp.StatusCode}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", function, err)
	}
	return nil
}
