package hook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	cfg_hook "github.com/opst/knitsim/pkg/configs/hook"
)

// DefaultTimeout bounds each request of Web hooks built by Build.
const DefaultTimeout = 5 * time.Second

// Web is a webhook for before/after hooks.
type Web[T any, R any] struct {
	// BeforeURL is a list of URLs to call before processing the value T.
	//
	// The value T is sent as a JSON payload for each URL, in order.
	//
	// If and only if all of the URLs return a 2xx status code, the hook proceeds.
	// Otherwise, the hook fails and the rest are not called.
	BeforeURL []*url.URL

	// AfterURL is a list of URLs to call after processing the value T.
	//
	// Same as BeforeURL, responses are ignored.
	AfterURL []*url.URL

	// Merge combines JSON responses of BeforeURL. When nil, the last response wins.
	Merge func(a, b R) R

	// Client sends requests. When nil, http.DefaultClient is used.
	Client *http.Client

	// Timeout bounds each request. Zero means no timeout.
	Timeout time.Duration
}

// Build creates a Web hook from the configuration.
func Build[T any](cfg cfg_hook.WebHook) Web[T, struct{}] {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return Web[T, struct{}]{
		BeforeURL: cfg.Before,
		AfterURL:  cfg.After,
		Timeout:   timeout,
	}
}

func (w Web[T, R]) client() *http.Client {
	if w.Client == nil {
		return http.DefaultClient
	}
	return w.Client
}

func (w Web[T, R]) sendRequest(url string, payload []byte) (R, error) {
	ctx := context.Background()
	if 0 < w.Timeout {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return *new(R), errors.Join(err, ErrHookFailed)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client().Do(req)
	if err != nil {
		return *new(R), errors.Join(err, ErrHookFailed)
	}
	defer resp.Body.Close()

	ctype := resp.Header.Get("Content-Type")
	if 200 <= resp.StatusCode && resp.StatusCode < 300 {
		if strings.HasPrefix(ctype, "application/json") {
			r := new(R)
			if err := json.NewDecoder(resp.Body).Decode(r); err != nil {
				return *r, errors.Join(err, ErrHookFailed)
			}
			return *r, nil
		}
		return *new(R), nil
	}

	if !strings.HasPrefix(ctype, "text/") && !(strings.HasPrefix(ctype, "application/") && strings.Contains(ctype, "json")) {
		return *new(R), fmt.Errorf(
			"%w (%s %d, Content-Type: %s)",
			ErrHookFailed, url, resp.StatusCode, ctype,
		)
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return *new(R), fmt.Errorf(
		"%w (%s %d, Content-Type: %s): %s",
		ErrHookFailed, url, resp.StatusCode, ctype, string(body),
	)
}

func (w Web[T, R]) hook(value T, urls []*url.URL) (R, error) {
	if len(urls) == 0 {
		return *new(R), nil
	}

	buf, err := json.Marshal(value)
	if err != nil {
		return *new(R), errors.Join(err, ErrHookFailed)
	}

	var ret R
	for i, u := range urls {
		r, err := w.sendRequest(u.String(), buf)
		if err != nil {
			return *new(R), err
		}
		if i == 0 || w.Merge == nil {
			ret = r
			continue
		}
		ret = w.Merge(ret, r)
	}
	return ret, nil
}

func (w Web[T, R]) Before(value T) (R, error) {
	return w.hook(value, w.BeforeURL)
}

func (w Web[T, R]) After(value T) error {
	_, err := w.hook(value, w.AfterURL)
	return err
}
