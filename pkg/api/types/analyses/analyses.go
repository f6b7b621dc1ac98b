package analyses

import (
	"github.com/google/uuid"
	"github.com/opst/knitsim/pkg/analysis"
	driver "github.com/opst/knitsim/pkg/analysisdriver"
)

// Summary of an analysis.
type Summary struct {
	Id        string `json:"id"`
	Name      string `json:"name"`
	Algorithm string `json:"algorithm,omitempty"`

	DataPoints int `json:"dataPoints"`
	Queued     int `json:"queued"`
	Completed  int `json:"completed"`
	Failed     int `json:"failed"`

	Running       bool `json:"running"`
	DakotaRunning bool `json:"dakotaRunning"`
}

type DataPoint struct {
	Id            string    `json:"id"`
	Values        []float64 `json:"values"`
	Status        string    `json:"status"`
	Responses     []float64 `json:"responses,omitempty"`
	FailureReason string    `json:"failureReason,omitempty"`
}

// Detail of an analysis, with its data points.
//
// The summary is nested, since its count of data points and the data points themselves share the name.
type Detail struct {
	Summary    Summary     `json:"summary"`
	Variables  []string    `json:"variables"`
	Responses  []string    `json:"responses"`
	DataPoints []DataPoint `json:"dataPoints"`
}

// Stopped is returned when an analysis is stopped.
type Stopped struct {
	Id string `json:"id"`
}

func ComposeSummary(s driver.Summary) Summary {
	return Summary{
		Id:            s.ID.String(),
		Name:          s.Name,
		Algorithm:     s.Algorithm,
		DataPoints:    s.DataPoints,
		Queued:        s.Queued,
		Completed:     s.Completed,
		Failed:        s.Failed,
		Running:       s.Running,
		DakotaRunning: s.DakotaRunning,
	}
}

func ComposeDataPoint(dp analysis.DataPoint) DataPoint {
	return DataPoint{
		Id:            dp.ID.String(),
		Values:        dp.VariableValues,
		Status:        dp.Status.String(),
		Responses:     dp.Responses,
		FailureReason: dp.FailureReason,
	}
}

// ComposeDetail makes a detail from the summary, the problem and data points.
func ComposeDetail(s driver.Summary, problem analysis.Problem, dps []analysis.DataPoint) Detail {
	d := Detail{
		Summary:    ComposeSummary(s),
		Variables:  make([]string, len(problem.Variables)),
		Responses:  append([]string{}, problem.Responses...),
		DataPoints: make([]DataPoint, len(dps)),
	}
	for i, v := range problem.Variables {
		d.Variables[i] = v.Name
	}
	for i, dp := range dps {
		d.DataPoints[i] = ComposeDataPoint(dp)
	}
	return d
}

// ParseId parses an analysis id in a path.
func ParseId(id string) (uuid.UUID, error) {
	return uuid.Parse(id)
}
