package clients

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/maastricht-university/diarize-pipeline/errs"
)

const maxErrBody = 4096

// HTTP talks to the external model services (VAD, embedding, clustering).
type HTTP struct{ c *http.Client }

// NewHTTP returns a client with the given per-request timeout.
func NewHTTP(timeout time.Duration) *HTTP {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &HTTP{c: &http.Client{Timeout: timeout}}
}

func NewHTTPWithClient(c *http.Client) *HTTP { return &HTTP{c: c} }

func (h *HTTP) do(req *http.Request, op string) (*http.Response, error) {
	resp, err := h.c.Do(req)
	if err != nil {
		return nil, errs.Service(op, err, "request %s", req.URL.Path)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrBody))
		return nil, errs.Service(op, nil, "%s: %s", resp.Status, strings.TrimSpace(string(body)))
	}
	return resp, nil
}

// Health reports whether GET {url}/health answers 200.
func (h *HTTP) Health(ctx context.Context, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(url, "/")+"/health", nil)
	if err != nil {
		return fmt.Errorf("health request: %w", err)
	}
	resp, err := h.do(req, "health")
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}
