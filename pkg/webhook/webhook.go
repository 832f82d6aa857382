// Package webhook posts JSON documents to HTTP endpoints of collaborating services.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/opst/knitlabel/pkg/buildtime"
)

var ErrWebhookFailed = errors.New("webhook failed")

// Client posts JSON documents.
type Client struct {
	http *http.Client
}

// New creates a Client. When c is nil, http.DefaultClient is used.
func New(c *http.Client) *Client {
	if c == nil {
		c = http.DefaultClient
	}
	return &Client{http: c}
}

// Post sends value as JSON to url.
//
// When the response is 2xx and its Content-Type is application/json,
// the response body is decoded into R.
//
// # Returns
//
// - R: decoded response, or zero value of R.
//
// - error: ErrWebhookFailed wrapping the reason, when the request fails or the response is not 2xx.
func Post[R any](ctx context.Context, c *Client, url string, value any) (R, error) {
	var body io.Reader
	if value != nil {
		buf, err := json.Marshal(value)
		if err != nil {
			return *new(R), err
		}
		body = bytes.NewBuffer(buf)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return *new(R), errors.Join(err, ErrWebhookFailed)
	}
	req.Header.Set("User-Agent", buildtime.UserAgent())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return *new(R), errors.Join(err, ErrWebhookFailed)
	}
	defer resp.Body.Close()

	ctype := resp.Header.Get("Content-Type")
	if 200 <= resp.StatusCode && resp.StatusCode < 300 {
		if strings.HasPrefix(ctype, "application/json") {
			r := new(R)
			if err := json.NewDecoder(resp.Body).Decode(r); err != nil && !errors.Is(err, io.EOF) {
				return *r, errors.Join(err, ErrWebhookFailed)
			}
			return *r, nil
		}
		return *new(R), nil
	}

	if !strings.HasPrefix(ctype, "text/") && !(strings.HasPrefix(ctype, "application/") && strings.Contains(ctype, "json")) {
		return *new(R), fmt.Errorf(
			"%w (%s %d, Content-Type: %s)",
			ErrWebhookFailed, url, resp.StatusCode, ctype,
		)
	}

	msg, _ := io.ReadAll(resp.Body)
	return *new(R), fmt.Errorf(
		"%w (%s %d, Content-Type: %s): %s",
		ErrWebhookFailed, url, resp.StatusCode, ctype, string(msg),
	)
}

// Join concatenates a base URL and path elements with single slashes.
func Join(base string, elem ...string) string {
	out := strings.TrimRight(base, "/")
	for _, e := range elem {
		out += "/" + strings.Trim(e, "/")
	}
	return out
}
