package analysis

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/opst/knitsim/pkg/dakota"
)

// Algorithm makes data points of an analysis.
//
// It is one of *DesignOfExperiments or *DakotaAlgorithm.
type Algorithm interface {
	// Name is the name of the algorithm, for display.
	Name() string

	// IsComplete tells the algorithm will make no more data points.
	IsComplete() bool

	// Failed tells the algorithm gave up.
	Failed() bool

	algorithm()
}

// OSAlgorithm is an algorithm which makes data points by itself, iteration by iteration.
type OSAlgorithm interface {
	Algorithm

	// CreateNextIteration adds data points of the next iteration to the analysis.
	//
	// It returns the number of data points added.
	CreateNextIteration(a *Analysis) int

	// Iteration is the number of iterations created.
	Iteration() int
}

// DesignOfExperiments takes the full factorial of discrete variables, in one iteration.
type DesignOfExperiments struct {
	Iter     int  `yaml:"iteration" json:"iteration"`
	Complete bool `yaml:"complete" json:"complete"`
	Fail     bool `yaml:"failed" json:"failed"`
}

var _ OSAlgorithm = &DesignOfExperiments{}

func (*DesignOfExperiments) algorithm() {}

func (*DesignOfExperiments) Name() string { return "DesignOfExperiments" }

func (d *DesignOfExperiments) IsComplete() bool { return d.Complete }

func (d *DesignOfExperiments) Failed() bool { return d.Fail }

func (d *DesignOfExperiments) Iteration() int { return d.Iter }

func (d *DesignOfExperiments) CreateNextIteration(a *Analysis) int {
	if d.Complete {
		return 0
	}
	d.Iter++
	d.Complete = true

	combinations := [][]float64{{}}
	for _, v := range a.Problem.Variables {
		if !v.IsDiscrete() {
			d.Fail = true
			return 0
		}
		next := make([][]float64, 0, len(combinations)*len(v.Values))
		for _, c := range combinations {
			for _, x := range v.Values {
				nc := make([]float64, len(c), len(c)+1)
				copy(nc, c)
				next = append(next, append(nc, x))
			}
		}
		combinations = next
	}
	if len(a.Problem.Variables) == 0 {
		return 0
	}

	added := 0
	for _, c := range combinations {
		if a.AddDataPoint(NewDataPoint(c...)) {
			added++
		}
	}
	return added
}

// DakotaAlgorithm delegates to the Dakota optimizer.
//
// Dakota runs as one long job. It asks values to simulate via parameters files.
type DakotaAlgorithm struct {
	// Method is the method block of the control file.
	Method string `yaml:"method" json:"method"`

	Job         JobID  `yaml:"job,omitempty" json:"job,omitempty"`
	RestartFile string `yaml:"restartFile,omitempty" json:"restartFile,omitempty"`
	OutFile     string `yaml:"outFile,omitempty" json:"outFile,omitempty"`

	Complete bool `yaml:"complete" json:"complete"`
	Fail     bool `yaml:"failed" json:"failed"`
}

var _ Algorithm = &DakotaAlgorithm{}

// DakotaSampling is Latin hypercube sampling by Dakota.
func DakotaSampling(samples int, seed int) *DakotaAlgorithm {
	return &DakotaAlgorithm{
		Method: fmt.Sprintf(
			"method,\n        sampling\n          sample_type lhs\n          samples = %d\n          seed = %d",
			samples, seed,
		),
	}
}

// DakotaDDACE is a design and analysis of computer experiments method of Dakota.
func DakotaDDACE(kind string, samples int, seed int) *DakotaAlgorithm {
	return &DakotaAlgorithm{
		Method: fmt.Sprintf(
			"method,\n        dace %s\n          samples = %d\n          seed = %d",
			kind, samples, seed,
		),
	}
}

func (*DakotaAlgorithm) algorithm() {}

func (d *DakotaAlgorithm) Name() string {
	first, _, _ := strings.Cut(strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(d.Method), "method,")), "\n")
	if first == "" {
		return "Dakota"
	}
	return "Dakota " + strings.TrimSpace(first)
}

func (d *DakotaAlgorithm) IsComplete() bool { return d.Complete }

func (d *DakotaAlgorithm) Failed() bool { return d.Fail }

// HasJob tells the optimizer job has been started.
func (d *DakotaAlgorithm) HasJob() bool { return d.Job != uuid.Nil }

func (d *DakotaAlgorithm) DakotaInFileDescription() string {
	return d.Method
}

// Initialize records the optimizer job, which runs in dir.
func (d *DakotaAlgorithm) Initialize(job JobID, dir string) {
	d.Job = job
	d.RestartFile = filepath.Join(dir, dakota.RestartFileName)
	d.OutFile = filepath.Join(dir, dakota.OutFileName)
	d.Complete = false
	d.Fail = false
}

// Update records the result of the optimizer job.
func (d *DakotaAlgorithm) Update(result JobResult) {
	d.Complete = true
	d.Fail = !result.Succeeded()
}

// ClearJob forgets the optimizer job. The restart file is kept.
func (d *DakotaAlgorithm) ClearJob() {
	d.Job = uuid.Nil
}

// CreateNextDataPoint finds or adds the data point for parameters the optimizer gives.
func (d *DakotaAlgorithm) CreateNextDataPoint(a *Analysis, params *dakota.Params) (*DataPoint, error) {
	dp, err := a.Problem.CreateDataPointFromParams(params)
	if err != nil {
		return nil, err
	}
	if existing, ok := a.DataPointByValues(dp.VariableValues); ok {
		return existing, nil
	}
	a.AddDataPoint(dp)
	return dp, nil
}

// AlgorithmSpec is the serialized form of an Algorithm. At most one field is set.
type AlgorithmSpec struct {
	DesignOfExperiments *DesignOfExperiments `yaml:"designOfExperiments,omitempty" json:"designOfExperiments,omitempty"`
	Dakota              *DakotaAlgorithm     `yaml:"dakota,omitempty" json:"dakota,omitempty"`
}

func SpecOf(a Algorithm) AlgorithmSpec {
	switch x := a.(type) {
	case *DesignOfExperiments:
		return AlgorithmSpec{DesignOfExperiments: x}
	case *DakotaAlgorithm:
		return AlgorithmSpec{Dakota: x}
	default:
		return AlgorithmSpec{}
	}
}

// Algorithm returns the algorithm. nil if nothing is set.
func (s AlgorithmSpec) Algorithm() (Algorithm, error) {
	switch {
	case s.DesignOfExperiments != nil && s.Dakota != nil:
		return nil, fmt.Errorf("algorithm: only one of designOfExperiments or dakota can be set")
	case s.DesignOfExperiments != nil:
		return s.DesignOfExperiments, nil
	case s.Dakota != nil:
		return s.Dakota, nil
	default:
		return nil, nil
	}
}
