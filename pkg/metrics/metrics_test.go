package metrics_test

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	driver "github.com/opst/knitsim/pkg/analysisdriver"
	"github.com/opst/knitsim/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollector(t *testing.T) {
	doe := driver.Summary{ID: uuid.New(), Name: "doe", Algorithm: "DesignOfExperiments"}
	opt := driver.Summary{ID: uuid.New(), Name: "opt", Algorithm: "DakotaAlgorithm"}

	t.Run("When analyses progress, Then metrics follow", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		testee := metrics.New(reg)

		testee.AnalysisStarted(doe)
		testee.AnalysisStarted(opt)
		testee.DataPointQueued(doe, uuid.New())
		testee.DataPointQueued(doe, uuid.New())
		testee.DataPointQueued(opt, uuid.New())
		testee.DataPointComplete(doe, uuid.New())
		testee.DataPointStopped(opt, uuid.New())
		testee.AnalysisComplete(doe)
		testee.AnalysisStopped(opt)

		for name, c := range map[string]struct {
			actual float64
			expect float64
		}{
			"running doe":      {testutil.ToFloat64(testee.AnalysesRunning.WithLabelValues("DesignOfExperiments")), 0},
			"running opt":      {testutil.ToFloat64(testee.AnalysesRunning.WithLabelValues("DakotaAlgorithm")), 0},
			"completed":        {testutil.ToFloat64(testee.AnalysesCompleted), 1},
			"stopped":          {testutil.ToFloat64(testee.AnalysesStopped), 1},
			"queued doe":       {testutil.ToFloat64(testee.DataPointsQueued.WithLabelValues("doe")), 2},
			"queued opt":       {testutil.ToFloat64(testee.DataPointsQueued.WithLabelValues("opt")), 1},
			"complete doe":     {testutil.ToFloat64(testee.DataPointsCompleted.WithLabelValues("doe")), 1},
			"stopped opt":      {testutil.ToFloat64(testee.DataPointsStopped.WithLabelValues("opt")), 1},
			"stopped doe none": {testutil.ToFloat64(testee.DataPointsStopped.WithLabelValues("doe")), 0},
		} {
			if c.actual != c.expect {
				t.Errorf("%s: actual=%+v, expect=%+v", name, c.actual, c.expect)
			}
		}
	})

	t.Run("When it is gathered, Then metrics are named under knitsim", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		testee := metrics.New(reg)
		testee.AnalysisStarted(doe)

		expect := `
# HELP knitsim_analyses_running Number of analyses being run, by algorithm
# TYPE knitsim_analyses_running gauge
knitsim_analyses_running{algorithm="DesignOfExperiments"} 1
`
		if err := testutil.GatherAndCompare(reg, strings.NewReader(expect), "knitsim_analyses_running"); err != nil {
			t.Error(err)
		}
	})

	t.Run("When it is registered twice, Then it panics", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		metrics.New(reg)
		defer func() {
			if recover() == nil {
				t.Errorf("expected panic")
			}
		}()
		metrics.New(reg)
	})
}
