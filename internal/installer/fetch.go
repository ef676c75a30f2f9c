package installer

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/hashicorp/go-retryablehttp"

	"agent-bootstrap/internal/logger"
)

// Fetcher downloads an artifact to a local path.
type Fetcher interface {
	Fetch(ctx context.Context, url, dest string) error
}

// HTTPFetcher downloads over HTTP(S) and never retries.
type HTTPFetcher struct {
	client *retryablehttp.Client
}

// NewHTTPFetcher returns a fetcher whose transport fails on the first error.
func NewHTTPFetcher() *HTTPFetcher {
	client := retryablehttp.NewClient()
	client.RetryMax = 0
	client.Logger = nil // narration goes through the logger package
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler
	client.RequestLogHook = func(_ retryablehttp.Logger, req *http.Request, attempt int) {
		logger.Debug("[DEBUG] GET %s (attempt %d)\n", req.URL, attempt+1)
	}
	return &HTTPFetcher{client: client}
}

// Fetch downloads url into dest, creating or truncating it.
// Transport errors and non-2xx responses are reported as ErrDownload.
func (f *HTTPFetcher) Fetch(ctx context.Context, url, dest string) error {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%w: build request for %s: %v", ErrDownload, url, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: GET %s: %v", ErrDownload, url, err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			logger.Warn("[WARN] Failed to close response body: %v\n", cerr)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: GET %s: HTTP status %d", ErrDownload, url, resp.StatusCode)
	}

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("%w: create %s: %v", ErrDownload, dest, err)
	}
	n, err := io.Copy(out, resp.Body)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("%w: write %s: %v", ErrDownload, dest, err)
	}

	logger.Debug("[DEBUG] Downloaded %d bytes to %s\n", n, dest)
	return nil
}
