// Package analysis is the parametric analysis: a problem, its data points, and the
// algorithm which makes them.
//
// Analysis knows what should be simulated and what has been simulated.
// Which jobs are in flight is not here; the analysis driver tracks them.
package analysis

import (
	"slices"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

type Analysis struct {
	ID   uuid.UUID
	Name string

	Problem Problem

	// Algorithm is optional. Without it, the data points are given up front.
	Algorithm Algorithm

	// Seed is the path to the seed model file.
	Seed string

	// WeatherFile is optional.
	WeatherFile string

	DataPoints []*DataPoint
}

func New(name string, problem Problem, seed string) *Analysis {
	return &Analysis{
		ID:      uuid.New(),
		Name:    name,
		Problem: problem,
		Seed:    seed,
	}
}

// DataPointsAreInvalid tells some data points do not fit to the problem.
//
// Such data points should be removed or fixed before running.
func (a *Analysis) DataPointsAreInvalid() bool {
	seen := map[uuid.UUID]struct{}{}
	for _, dp := range a.DataPoints {
		if _, ok := seen[dp.ID]; ok {
			return true
		}
		seen[dp.ID] = struct{}{}
		if len(dp.VariableValues) != len(a.Problem.Variables) {
			return true
		}
	}
	return false
}

// ResultsAreInvalid tells completed data points have results which do not fit to the problem.
//
// This happens when responses of the problem are changed after simulations.
func (a *Analysis) ResultsAreInvalid() bool {
	for _, dp := range a.DataPoints {
		if dp.Status != Completed {
			continue
		}
		if len(dp.Responses) != len(a.Problem.Responses) {
			return true
		}
	}
	return false
}

// DataPointsToQueue are data points which are not complete and not skipped.
func (a *Analysis) DataPointsToQueue() []*DataPoint {
	ret := []*DataPoint{}
	for _, dp := range a.DataPoints {
		if dp.Skip || dp.IsComplete() {
			continue
		}
		ret = append(ret, dp)
	}
	return ret
}

// CompleteDataPoints are data points which have been simulated.
func (a *Analysis) CompleteDataPoints() []*DataPoint {
	ret := []*DataPoint{}
	for _, dp := range a.DataPoints {
		if dp.IsComplete() {
			ret = append(ret, dp)
		}
	}
	return ret
}

// ClearResults forgets the job and the results of the data point.
func (a *Analysis) ClearResults(dp *DataPoint) {
	dp.Status = ToQueue
	dp.Directory = ""
	dp.TopLevelJob = uuid.Nil
	dp.DakotaParametersFiles = nil
	dp.Responses = nil
	dp.FailureReason = ""
}

// SetDataPointRunInformation records the job issued for the data point.
func (a *Analysis) SetDataPointRunInformation(dp *DataPoint, dir string, job JobID, paramsFiles []string) {
	dp.Status = Queued
	dp.Directory = dir
	dp.TopLevelJob = job
	dp.DakotaParametersFiles = slices.Clone(paramsFiles)
}

// AddDataPoint adds the data point. It returns false when a data point with the same values exists.
func (a *Analysis) AddDataPoint(dp *DataPoint) bool {
	if _, ok := a.DataPointByValues(dp.VariableValues); ok {
		return false
	}
	a.DataPoints = append(a.DataPoints, dp)
	return true
}

func (a *Analysis) DataPointByID(id uuid.UUID) (*DataPoint, bool) {
	for _, dp := range a.DataPoints {
		if dp.ID == id {
			return dp, true
		}
	}
	return nil, false
}

func (a *Analysis) DataPointByValues(values []float64) (*DataPoint, bool) {
	for _, dp := range a.DataPoints {
		if dp.SameValues(values) {
			return dp, true
		}
	}
	return nil, false
}

// DataPointByJob finds the data point whose top level job is the job.
func (a *Analysis) DataPointByJob(job JobID) (*DataPoint, bool) {
	if job == uuid.Nil {
		return nil, false
	}
	for _, dp := range a.DataPoints {
		if dp.TopLevelJob == job {
			return dp, true
		}
	}
	return nil, false
}

func (a *Analysis) OSAlgorithm() (OSAlgorithm, bool) {
	alg, ok := a.Algorithm.(OSAlgorithm)
	return alg, ok
}

func (a *Analysis) DakotaAlgorithm() (*DakotaAlgorithm, bool) {
	alg, ok := a.Algorithm.(*DakotaAlgorithm)
	return alg, ok && alg != nil
}

// InitializeDakotaAlgorithm records the optimizer job. It returns false without Dakota algorithm.
func (a *Analysis) InitializeDakotaAlgorithm(job JobID, dir string) bool {
	alg, ok := a.DakotaAlgorithm()
	if !ok {
		return false
	}
	alg.Initialize(job, dir)
	return true
}

// UpdateDakotaAlgorithm records the result of the optimizer job. It returns false without Dakota algorithm.
func (a *Analysis) UpdateDakotaAlgorithm(result JobResult) bool {
	alg, ok := a.DakotaAlgorithm()
	if !ok {
		return false
	}
	alg.Update(result)
	return true
}

type analysisMarshall struct {
	ID          uuid.UUID     `yaml:"id" json:"id"`
	Name        string        `yaml:"name" json:"name"`
	Problem     Problem       `yaml:"problem" json:"problem"`
	Algorithm   AlgorithmSpec `yaml:"algorithm,omitempty" json:"algorithm,omitempty"`
	Seed        string        `yaml:"seed" json:"seed"`
	WeatherFile string        `yaml:"weatherFile,omitempty" json:"weatherFile,omitempty"`
	DataPoints  []*DataPoint  `yaml:"dataPoints,omitempty" json:"dataPoints,omitempty"`
}

func (a *Analysis) marshall() analysisMarshall {
	return analysisMarshall{
		ID:          a.ID,
		Name:        a.Name,
		Problem:     a.Problem,
		Algorithm:   SpecOf(a.Algorithm),
		Seed:        a.Seed,
		WeatherFile: a.WeatherFile,
		DataPoints:  a.DataPoints,
	}
}

func (a *Analysis) MarshalYAML() (any, error) {
	return a.marshall(), nil
}

func (a *Analysis) UnmarshalYAML(node *yaml.Node) error {
	m := analysisMarshall{}
	if err := node.Decode(&m); err != nil {
		return err
	}
	alg, err := m.Algorithm.Algorithm()
	if err != nil {
		return err
	}
	*a = Analysis{
		ID:          m.ID,
		Name:        m.Name,
		Problem:     m.Problem,
		Algorithm:   alg,
		Seed:        m.Seed,
		WeatherFile: m.WeatherFile,
		DataPoints:  m.DataPoints,
	}
	return nil
}
