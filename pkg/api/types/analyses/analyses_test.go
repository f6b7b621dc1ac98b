package analyses_test

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/opst/knitsim/pkg/analysis"
	driver "github.com/opst/knitsim/pkg/analysisdriver"
	"github.com/opst/knitsim/pkg/api/types/analyses"
)

func TestComposeDetail(t *testing.T) {
	id := uuid.New()
	dp := analysis.NewDataPoint(0.1, 2)
	dp.Status = analysis.Completed
	dp.Responses = []float64{120}

	actual := analyses.ComposeDetail(
		driver.Summary{ID: id, Name: "doe", Algorithm: "DesignOfExperiments", DataPoints: 1, Completed: 1},
		analysis.Problem{
			Variables: []analysis.Variable{{Name: "t"}, {Name: "c"}},
			Responses: []string{"eui"},
		},
		[]analysis.DataPoint{*dp},
	)

	expect := analyses.Detail{
		Summary: analyses.Summary{
			Id: id.String(), Name: "doe", Algorithm: "DesignOfExperiments",
			DataPoints: 1, Completed: 1,
		},
		Variables: []string{"t", "c"},
		Responses: []string{"eui"},
		DataPoints: []analyses.DataPoint{
			{Id: dp.ID.String(), Values: []float64{0.1, 2}, Status: "completed", Responses: []float64{120}},
		},
	}
	if !cmp.Equal(actual, expect) {
		t.Errorf("actual=%+v, expect=%+v", actual, expect)
	}
}

func TestDetail_JSON(t *testing.T) {
	t.Run("When a detail is encoded, Then both the count and the data points are kept", func(t *testing.T) {
		dp := analysis.NewDataPoint(0.1)
		detail := analyses.ComposeDetail(
			driver.Summary{ID: uuid.New(), Name: "doe", DataPoints: 2, Queued: 2},
			analysis.Problem{Variables: []analysis.Variable{{Name: "t"}}},
			[]analysis.DataPoint{*dp, *analysis.NewDataPoint(0.2)},
		)

		body, err := json.Marshal(detail)
		if err != nil {
			t.Fatal(err)
		}
		var actual analyses.Detail
		if err := json.Unmarshal(body, &actual); err != nil {
			t.Fatal(err)
		}
		if actual.Summary.DataPoints != 2 {
			t.Errorf("count: actual=%+v, expect=%+v", actual.Summary.DataPoints, 2)
		}
		if len(actual.DataPoints) != 2 || actual.DataPoints[0].Id != dp.ID.String() {
			t.Errorf("data points: actual=%+v", actual.DataPoints)
		}

		raw := map[string]json.RawMessage{}
		if err := json.Unmarshal(body, &raw); err != nil {
			t.Fatal(err)
		}
		for _, key := range []string{"summary", "variables", "responses", "dataPoints"} {
			if _, ok := raw[key]; !ok {
				t.Errorf("key %q is missing: %s", key, body)
			}
		}
	})
}
