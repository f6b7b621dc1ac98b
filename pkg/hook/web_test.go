package hook_test

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	cfg_hook "github.com/opst/knitsim/pkg/configs/hook"
	"github.com/opst/knitsim/pkg/hook"
)

type payload struct {
	Analysis string `json:"analysis"`
}

type response struct {
	status      int
	contentType string
	body        string
}

// receiver is a hook endpoint which records payloads it received.
type receiver struct {
	*httptest.Server

	mu       sync.Mutex
	received []payload
}

func newReceiver(t *testing.T, resp response) *receiver {
	t.Helper()
	r := &receiver{}
	r.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPost {
			t.Errorf("method: actual=%s, expect=%s", req.Method, http.MethodPost)
		}
		if ct := req.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type: actual=%s, expect=application/json", ct)
		}
		var got payload
		if err := json.NewDecoder(req.Body).Decode(&got); err != nil {
			t.Errorf("payload is not JSON: %v", err)
		}
		r.mu.Lock()
		r.received = append(r.received, got)
		r.mu.Unlock()

		if resp.contentType != "" {
			w.Header().Set("Content-Type", resp.contentType)
		}
		w.WriteHeader(resp.status)
		io.WriteString(w, resp.body)
	}))
	t.Cleanup(r.Close)
	return r
}

func (r *receiver) Received() []payload {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]payload{}, r.received...)
}

func (r *receiver) URL(t *testing.T) *url.URL {
	return mustParseURL(t, r.Server.URL)
}

func mergeLabels(a, b map[string]string) map[string]string {
	ret := map[string]string{}
	for k, v := range a {
		ret[k] = v
	}
	for k, v := range b {
		ret[k] = v
	}
	return ret
}

func TestWeb_Before(t *testing.T) {
	ok := func(body string) response {
		return response{status: http.StatusOK, contentType: "application/json", body: body}
	}

	for name, testcase := range map[string]struct {
		first, second response

		thenCalled []int
		thenResult map[string]string
		thenErr    error
	}{
		"When both hooks accept, Then JSON responses are merged": {
			first:      ok(`{"queue": "a"}`),
			second:     ok(`{"priority": "high"}`),
			thenCalled: []int{1, 1},
			thenResult: map[string]string{"queue": "a", "priority": "high"},
		},
		"When a hook responds in plain text, Then its response is ignored": {
			first:      ok(`{"queue": "a"}`),
			second:     response{status: http.StatusNoContent, contentType: "text/plain"},
			thenCalled: []int{1, 1},
			thenResult: map[string]string{"queue": "a"},
		},
		"When the first hook rejects, Then the second is not called": {
			first:      response{status: http.StatusForbidden},
			second:     ok(`{"queue": "b"}`),
			thenCalled: []int{1, 0},
			thenErr:    hook.ErrHookFailed,
		},
		"When the second hook rejects, Then nothing is returned": {
			first:      ok(`{"queue": "a"}`),
			second:     response{status: http.StatusInternalServerError},
			thenCalled: []int{1, 1},
			thenErr:    hook.ErrHookFailed,
		},
		"When a hook responds broken JSON, Then it fails": {
			first:      ok(`{"queue": `),
			second:     ok(`{}`),
			thenCalled: []int{1, 0},
			thenErr:    hook.ErrHookFailed,
		},
	} {
		t.Run(name, func(t *testing.T) {
			first := newReceiver(t, testcase.first)
			second := newReceiver(t, testcase.second)

			testee := hook.Web[payload, map[string]string]{
				BeforeURL: []*url.URL{first.URL(t), second.URL(t)},
				Merge:     mergeLabels,
			}
			actual, err := testee.Before(payload{Analysis: "insulation"})

			if !errors.Is(err, testcase.thenErr) {
				t.Errorf("error: actual=%+v, expect=%+v", err, testcase.thenErr)
			}
			if !cmp.Equal(actual, testcase.thenResult, cmpopts.EquateEmpty()) {
				t.Errorf("result: actual=%+v, expect=%+v", actual, testcase.thenResult)
			}
			called := []int{len(first.Received()), len(second.Received())}
			if !cmp.Equal(called, testcase.thenCalled) {
				t.Errorf("called: actual=%+v, expect=%+v", called, testcase.thenCalled)
			}
			for _, p := range append(first.Received(), second.Received()...) {
				if p.Analysis != "insulation" {
					t.Errorf("payload: actual=%+v", p)
				}
			}
		})
	}

	t.Run("When Merge is nil, Then the last response wins", func(t *testing.T) {
		first := newReceiver(t, ok(`{"queue": "a"}`))
		second := newReceiver(t, ok(`{"queue": "b"}`))

		testee := hook.Web[payload, map[string]string]{
			BeforeURL: []*url.URL{first.URL(t), second.URL(t)},
		}
		actual, err := testee.Before(payload{Analysis: "insulation"})
		if err != nil {
			t.Fatal(err)
		}
		if expect := map[string]string{"queue": "b"}; !cmp.Equal(actual, expect) {
			t.Errorf("actual=%+v, expect=%+v", actual, expect)
		}
	})

	t.Run("When a hook rejects with a message, Then the error tells it", func(t *testing.T) {
		r := newReceiver(t, response{
			status: http.StatusServiceUnavailable, contentType: "text/plain", body: "cluster is busy",
		})
		testee := hook.Web[payload, struct{}]{BeforeURL: []*url.URL{r.URL(t)}}

		_, err := testee.Before(payload{Analysis: "insulation"})
		if !errors.Is(err, hook.ErrHookFailed) {
			t.Fatalf("actual=%+v, expect=%+v", err, hook.ErrHookFailed)
		}
		if !strings.Contains(err.Error(), "cluster is busy") || !strings.Contains(err.Error(), "503") {
			t.Errorf("message is missing: %s", err)
		}
	})

	t.Run("When the hook is unreachable, Then it fails", func(t *testing.T) {
		testee := hook.Web[payload, struct{}]{
			BeforeURL: []*url.URL{mustParseURL(t, "http://somewhere.invalid")},
		}
		if _, err := testee.Before(payload{}); !errors.Is(err, hook.ErrHookFailed) {
			t.Errorf("actual=%+v, expect=%+v", err, hook.ErrHookFailed)
		}
	})

	t.Run("When the hook is slower than Timeout, Then it fails", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		testee := hook.Web[payload, struct{}]{
			BeforeURL: []*url.URL{mustParseURL(t, server.URL)},
			Timeout:   20 * time.Millisecond,
		}
		if _, err := testee.Before(payload{}); !errors.Is(err, hook.ErrHookFailed) {
			t.Errorf("actual=%+v, expect=%+v", err, hook.ErrHookFailed)
		}
	})

	t.Run("When no URL is given, Then it does nothing", func(t *testing.T) {
		testee := hook.Web[payload, map[string]string]{}
		actual, err := testee.Before(payload{})
		if err != nil || actual != nil {
			t.Errorf("actual=%+v, %+v", actual, err)
		}
	})
}

func TestWeb_After(t *testing.T) {
	t.Run("When hooks accept, Then all of them receive the payload", func(t *testing.T) {
		first := newReceiver(t, response{status: http.StatusOK, contentType: "application/json", body: `{"ignored": "yes"}`})
		second := newReceiver(t, response{status: http.StatusAccepted})

		testee := hook.Web[payload, map[string]string]{
			AfterURL: []*url.URL{first.URL(t), second.URL(t)},
		}
		if err := testee.After(payload{Analysis: "insulation"}); err != nil {
			t.Fatal(err)
		}
		expect := []payload{{Analysis: "insulation"}}
		if actual := first.Received(); !cmp.Equal(actual, expect) {
			t.Errorf("first: actual=%+v, expect=%+v", actual, expect)
		}
		if actual := second.Received(); !cmp.Equal(actual, expect) {
			t.Errorf("second: actual=%+v, expect=%+v", actual, expect)
		}
	})

	t.Run("When a hook rejects, Then the rest are not called", func(t *testing.T) {
		first := newReceiver(t, response{status: http.StatusBadRequest})
		second := newReceiver(t, response{status: http.StatusOK})

		testee := hook.Web[payload, struct{}]{
			AfterURL: []*url.URL{first.URL(t), second.URL(t)},
		}
		if err := testee.After(payload{Analysis: "insulation"}); !errors.Is(err, hook.ErrHookFailed) {
			t.Errorf("actual=%+v, expect=%+v", err, hook.ErrHookFailed)
		}
		if n := len(second.Received()); n != 0 {
			t.Errorf("second is called %d times", n)
		}
	})

	t.Run("When only before hooks are given, Then After does nothing", func(t *testing.T) {
		r := newReceiver(t, response{status: http.StatusOK})
		testee := hook.Web[payload, struct{}]{BeforeURL: []*url.URL{r.URL(t)}}
		if err := testee.After(payload{}); err != nil {
			t.Fatal(err)
		}
		if n := len(r.Received()); n != 0 {
			t.Errorf("before hook is called %d times", n)
		}
	})
}

func TestBuild(t *testing.T) {
	before := mustParseURL(t, "http://example.com/before")
	after := mustParseURL(t, "http://example.com/after")

	t.Run("When timeout is not configured, Then the default is used", func(t *testing.T) {
		actual := hook.Build[payload](cfg_hook.WebHook{
			Before: []*url.URL{before},
			After:  []*url.URL{after},
		})
		if actual.Timeout != hook.DefaultTimeout {
			t.Errorf("timeout: actual=%s, expect=%s", actual.Timeout, hook.DefaultTimeout)
		}
		if len(actual.BeforeURL) != 1 || actual.BeforeURL[0] != before || len(actual.AfterURL) != 1 || actual.AfterURL[0] != after {
			t.Errorf("urls: actual=%+v, %+v", actual.BeforeURL, actual.AfterURL)
		}
	})

	t.Run("When timeout is configured, Then it is used", func(t *testing.T) {
		actual := hook.Build[payload](cfg_hook.WebHook{Timeout: time.Minute})
		if actual.Timeout != time.Minute {
			t.Errorf("timeout: actual=%s, expect=%s", actual.Timeout, time.Minute)
		}
	})
}

func mustParseURL(t *testing.T, s string) *url.URL {
	t.Helper()
	u, err := url.Parse(s)
	if err != nil {
		t.Fatal(err)
	}
	return u
}
