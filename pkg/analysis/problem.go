package analysis

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/opst/knitsim/pkg/dakota"
	xe "github.com/opst/knitsim/pkg/errors"
	"github.com/opst/knitsim/pkg/model"
	"gopkg.in/yaml.v3"
)

// ResponsesFileName is the file which the simulation writes into the data point directory.
//
// It is a YAML mapping from response names to values.
const ResponsesFileName = "responses.yaml"

var (
	ErrValueCount       = errors.New("number of values does not match number of variables")
	ErrValueOutOfRange  = errors.New("value is out of range")
	ErrUnknownObject    = errors.New("object is not found")
	ErrUnknownAttribute = errors.New("attribute is not settable")
)

// Variable is an attribute of an object in the model which is varied among data points.
type Variable struct {
	Name string `yaml:"name" json:"name"`

	// Kind and Object name the object in the seed model.
	Kind   model.Kind `yaml:"kind" json:"kind"`
	Object string     `yaml:"object" json:"object"`

	Attribute string `yaml:"attribute" json:"attribute"`

	// Values are the discrete values. If empty, the variable is continuous.
	Values []float64 `yaml:"values,omitempty" json:"values,omitempty"`

	// Bounds of continuous variables. Optimizers need them.
	Lower   *float64 `yaml:"lower,omitempty" json:"lower,omitempty"`
	Upper   *float64 `yaml:"upper,omitempty" json:"upper,omitempty"`
	Initial *float64 `yaml:"initial,omitempty" json:"initial,omitempty"`
}

func (v Variable) IsDiscrete() bool {
	return 0 < len(v.Values)
}

// Assignment is a value to be set into the model.
type Assignment struct {
	Kind      model.Kind `yaml:"kind" json:"kind"`
	Object    string     `yaml:"object" json:"object"`
	Attribute string     `yaml:"attribute" json:"attribute"`
	Value     float64    `yaml:"value" json:"value"`
}

// Apply sets the value into the model.
func (a Assignment) Apply(m *model.Model) error {
	o, ok := m.ByName(a.Kind, a.Object)
	if !ok {
		return fmt.Errorf("%w: %s '%s'", ErrUnknownObject, a.Kind, a.Object)
	}
	if !model.SetAttribute(o, a.Attribute, a.Value) {
		return fmt.Errorf(
			"%w: %s '%s' . %s = %s",
			ErrUnknownAttribute, a.Kind, a.Object, a.Attribute,
			strconv.FormatFloat(a.Value, 'g', -1, 64),
		)
	}
	return nil
}

type Problem struct {
	Name      string     `yaml:"name,omitempty" json:"name,omitempty"`
	Variables []Variable `yaml:"variables" json:"variables"`

	// Responses are names of values which simulations report.
	Responses []string `yaml:"responses,omitempty" json:"responses,omitempty"`
}

// Assignments pairs variables and values of the data point.
func (p *Problem) Assignments(dp *DataPoint) ([]Assignment, error) {
	if len(dp.VariableValues) != len(p.Variables) {
		return nil, fmt.Errorf(
			"%w: data point %s has %d values for %d variables",
			ErrValueCount, dp.ID, len(dp.VariableValues), len(p.Variables),
		)
	}
	ret := make([]Assignment, len(p.Variables))
	for i, v := range p.Variables {
		ret[i] = Assignment{
			Kind: v.Kind, Object: v.Object, Attribute: v.Attribute,
			Value: dp.VariableValues[i],
		}
	}
	return ret, nil
}

// Apply sets values of variables into the model.
func (p *Problem) Apply(m *model.Model, dp *DataPoint) error {
	as, err := p.Assignments(dp)
	if err != nil {
		return err
	}
	errs := []error{}
	for _, a := range as {
		if err := a.Apply(m); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// CreateWorkflow describes how the data point is simulated.
func (p *Problem) CreateWorkflow(dp *DataPoint, seed string, weather string, sim Simulation) (Workflow, error) {
	as, err := p.Assignments(dp)
	if err != nil {
		return Workflow{}, err
	}
	return Workflow{
		Steps: []Step{
			{
				Kind:        StepTranslate,
				Seed:        seed,
				Assignments: as,
				Output:      InputFileName,
			},
			{
				Kind:    StepExec,
				Command: sim.Command(InputFileName, weather),
			},
		},
	}, nil
}

// UpdateDataPoint reads the result of the job for the data point.
//
// After that, the data point is complete.
func (p *Problem) UpdateDataPoint(dp *DataPoint, result JobResult) {
	if !result.Succeeded() {
		dp.Status = Failed
		dp.FailureReason = fmt.Sprintf("job %s", result.Status)
		if 0 < len(result.Errors) {
			dp.FailureReason += ": " + strings.Join(result.Errors, "; ")
		}
		return
	}

	responses, err := p.readResponses(dp)
	if err != nil {
		dp.Status = Failed
		dp.FailureReason = err.Error()
		return
	}
	dp.Responses = responses
	dp.Status = Completed
}

func (p *Problem) readResponses(dp *DataPoint) ([]float64, error) {
	if len(p.Responses) == 0 {
		return nil, nil
	}
	content, err := os.ReadFile(filepath.Join(dp.Directory, ResponsesFileName))
	if err != nil {
		return nil, xe.Wrap(err)
	}
	values := map[string]float64{}
	if err := yaml.Unmarshal(content, &values); err != nil {
		return nil, xe.Wrap(err)
	}
	ret := make([]float64, len(p.Responses))
	for i, name := range p.Responses {
		v, ok := values[name]
		if !ok {
			return nil, fmt.Errorf("response '%s' is not reported", name)
		}
		ret[i] = v
	}
	return ret, nil
}

// DakotaResults are values to be reported to the optimizer for the data point.
//
// When the problem has no responses, the first variable value is reported.
// It returns false if the data point has no results to report.
func (p *Problem) DakotaResults(dp *DataPoint) ([]float64, bool) {
	if dp.Status != Completed {
		return nil, false
	}
	if len(p.Responses) == 0 {
		if len(dp.VariableValues) == 0 {
			return nil, false
		}
		return dp.VariableValues[:1], true
	}
	if len(dp.Responses) != len(p.Responses) {
		return nil, false
	}
	return dp.Responses, true
}

func formatFloats(vs []float64) string {
	s := make([]string, len(vs))
	for i, v := range vs {
		s[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strings.Join(s, " ")
}

func quoted(vs []string) string {
	s := make([]string, len(vs))
	for i, v := range vs {
		s[i] = "'" + v + "'"
	}
	return strings.Join(s, " ")
}

// DakotaInFileDescription is the variables and responses blocks of the optimizer control file.
//
// Discrete variables are given to the optimizer as index ranges into their values.
func (p *Problem) DakotaInFileDescription() (string, error) {
	var continuous, discrete []Variable
	for _, v := range p.Variables {
		if v.IsDiscrete() {
			discrete = append(discrete, v)
		} else {
			continuous = append(continuous, v)
		}
	}

	b := new(strings.Builder)
	b.WriteString("variables,\n")
	if 0 < len(continuous) {
		lower, upper, initial, names := []float64{}, []float64{}, []float64{}, []string{}
		for _, v := range continuous {
			if v.Lower == nil || v.Upper == nil {
				return "", fmt.Errorf("variable '%s': bounds are required", v.Name)
			}
			lower = append(lower, *v.Lower)
			upper = append(upper, *v.Upper)
			names = append(names, v.Name)
			if v.Initial != nil {
				initial = append(initial, *v.Initial)
			}
		}
		fmt.Fprintf(b, "        continuous_design = %d\n", len(continuous))
		if len(initial) == len(continuous) {
			fmt.Fprintf(b, "          initial_point = %s\n", formatFloats(initial))
		}
		fmt.Fprintf(b, "          lower_bounds = %s\n", formatFloats(lower))
		fmt.Fprintf(b, "          upper_bounds = %s\n", formatFloats(upper))
		fmt.Fprintf(b, "          descriptors = %s\n", quoted(names))
	}
	if 0 < len(discrete) {
		lower, upper, names := []float64{}, []float64{}, []string{}
		for _, v := range discrete {
			lower = append(lower, 0)
			upper = append(upper, float64(len(v.Values)-1))
			names = append(names, v.Name)
		}
		fmt.Fprintf(b, "        discrete_design_range = %d\n", len(discrete))
		fmt.Fprintf(b, "          lower_bounds = %s\n", formatFloats(lower))
		fmt.Fprintf(b, "          upper_bounds = %s\n", formatFloats(upper))
		fmt.Fprintf(b, "          descriptors = %s\n", quoted(names))
	}

	n := len(p.Responses)
	if n == 0 {
		n = 1
	}
	b.WriteString("\nresponses,\n")
	fmt.Fprintf(b, "        num_response_functions = %d\n", n)
	b.WriteString("        no_gradients\n")
	b.WriteString("        no_hessians\n")
	return b.String(), nil
}

// CreateDataPointFromParams makes a data point from values the optimizer gives.
//
// Values are taken in the order of the control file: continuous variables first, then discrete ones.
// Values of discrete variables are indices into their values, rounded to the nearest.
func (p *Problem) CreateDataPointFromParams(params *dakota.Params) (*DataPoint, error) {
	given := params.Values()
	if len(given) != len(p.Variables) {
		return nil, fmt.Errorf(
			"%w: %d values for %d variables", ErrValueCount, len(given), len(p.Variables),
		)
	}

	values := make([]float64, len(p.Variables))
	at := 0
	for i, v := range p.Variables {
		if v.IsDiscrete() {
			continue
		}
		values[i] = given[at]
		at++
	}
	for i, v := range p.Variables {
		if !v.IsDiscrete() {
			continue
		}
		idx := int(math.Round(given[at]))
		if idx < 0 || len(v.Values) <= idx {
			return nil, fmt.Errorf(
				"%w: variable '%s': index %d (values: %d)", ErrValueOutOfRange, v.Name, idx, len(v.Values),
			)
		}
		values[i] = v.Values[idx]
		at++
	}
	return NewDataPoint(values...), nil
}
