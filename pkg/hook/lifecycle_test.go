package hook_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	driver "github.com/opst/knitsim/pkg/analysisdriver"
	config "github.com/opst/knitsim/pkg/configs/hook"
	"github.com/opst/knitsim/pkg/hook"
)

func TestLifecycle(t *testing.T) {
	summary := driver.Summary{ID: uuid.New(), Name: "doe", DataPoints: 6}

	t.Run("When an analysis starts and ends, Then hooks are called with the event", func(t *testing.T) {
		before := []hook.Event{}
		after := []hook.Event{}
		testee := hook.NewLifecycle(hook.Func[hook.Event, struct{}]{
			BeforeFn: func(e hook.Event) (struct{}, error) {
				before = append(before, e)
				return struct{}{}, nil
			},
			AfterFn: func(e hook.Event) error {
				after = append(after, e)
				return nil
			},
		}, nil)

		testee.AnalysisStarted(summary)
		testee.DataPointQueued(summary, uuid.New())
		testee.AnalysisComplete(summary)
		testee.AnalysisStopped(summary)

		if len(before) != 1 || before[0].Event != hook.Started {
			t.Errorf("before: actual=%+v", before)
		}
		actual := []hook.EventType{}
		for _, e := range after {
			actual = append(actual, e.Event)
			if e.Analysis != summary {
				t.Errorf("summary: actual=%+v, expect=%+v", e.Analysis, summary)
			}
		}
		if expect := []hook.EventType{hook.Complete, hook.Stopped}; !cmp.Equal(actual, expect) {
			t.Errorf("after: actual=%+v, expect=%+v", actual, expect)
		}
	})

	t.Run("When a hook fails, Then the listener does not panic", func(t *testing.T) {
		testee := hook.NewLifecycle(hook.Func[hook.Event, struct{}]{
			BeforeFn: func(hook.Event) (struct{}, error) { return struct{}{}, errors.New("fail") },
			AfterFn:  func(hook.Event) error { return errors.New("fail") },
		}, nil)
		testee.AnalysisStarted(summary)
		testee.AnalysisComplete(summary)
	})

	t.Run("When web hooks are built from config, Then events are posted as JSON", func(t *testing.T) {
		mu := sync.Mutex{}
		got := []hook.Event{}
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var e hook.Event
			if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
				t.Errorf("unexpected payload: %v", err)
			}
			if ctype := r.Header.Get("Content-Type"); ctype != "application/json" {
				t.Errorf("content type: actual=%s", ctype)
			}
			mu.Lock()
			got = append(got, e)
			mu.Unlock()
			w.WriteHeader(http.StatusNoContent)
		}))
		defer server.Close()

		u := mustParseURL(t, server.URL)
		web := hook.Build[hook.Event](config.WebHook{Before: []*url.URL{u}, After: []*url.URL{u}})
		if web.Timeout != hook.DefaultTimeout {
			t.Errorf("timeout: actual=%+v, expect=%+v", web.Timeout, hook.DefaultTimeout)
		}
		testee := hook.NewLifecycle(web, nil)
		testee.AnalysisStarted(summary)
		testee.AnalysisStopped(summary)

		mu.Lock()
		defer mu.Unlock()
		actual := []hook.EventType{}
		for _, e := range got {
			actual = append(actual, e.Event)
			if e.Analysis.ID != summary.ID {
				t.Errorf("analysis: actual=%+v, expect=%+v", e.Analysis.ID, summary.ID)
			}
		}
		if expect := []hook.EventType{hook.Started, hook.Stopped}; !cmp.Equal(actual, expect) {
			t.Errorf("actual=%+v, expect=%+v", actual, expect)
		}
	})
}

func TestFunc(t *testing.T) {
	t.Run("When functions are nil, Then it does nothing", func(t *testing.T) {
		testee := hook.Func[string, int]{}
		if r, err := testee.Before("x"); r != 0 || err != nil {
			t.Errorf("actual=(%d, %v)", r, err)
		}
		if err := testee.After("x"); err != nil {
			t.Errorf("actual=%v", err)
		}
	})

	t.Run("When a function fails, Then the error is ErrHookFailed", func(t *testing.T) {
		cause := errors.New("cause")
		testee := hook.Func[string, int]{
			AfterFn: func(string) error { return cause },
		}
		err := testee.After("x")
		if !errors.Is(err, hook.ErrHookFailed) || !errors.Is(err, cause) {
			t.Errorf("actual=%+v", err)
		}
	})
}
