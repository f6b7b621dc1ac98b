package analysis_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/opst/knitsim/pkg/analysis"
	"github.com/opst/knitsim/pkg/dakota"
	"github.com/opst/knitsim/pkg/model"
	"gopkg.in/yaml.v3"
)

func ptr[T any](v T) *T { return &v }

func discreteProblem() analysis.Problem {
	return analysis.Problem{
		Variables: []analysis.Variable{
			{Name: "t", Kind: model.KindMaterial, Object: "Brick", Attribute: "thickness", Values: []float64{0.1, 0.2}},
			{Name: "c", Kind: model.KindMaterial, Object: "Brick", Attribute: "conductivity", Values: []float64{1, 2, 3}},
		},
		Responses: []string{"eui"},
	}
}

func valuesOf(dps []*analysis.DataPoint) [][]float64 {
	ret := [][]float64{}
	for _, dp := range dps {
		ret = append(ret, dp.VariableValues)
	}
	return ret
}

func TestDesignOfExperiments(t *testing.T) {
	t.Run("When the first iteration is created, Then all combinations are added", func(t *testing.T) {
		a := analysis.New("a", discreteProblem(), "seed.idf")
		existing := analysis.NewDataPoint(0.2, 3)
		a.AddDataPoint(existing)

		doe := &analysis.DesignOfExperiments{}
		a.Algorithm = doe
		if added := doe.CreateNextIteration(a); added != 5 {
			t.Errorf("added: actual=%d, expect=%d", added, 5)
		}
		expect := [][]float64{{0.2, 3}, {0.1, 1}, {0.1, 2}, {0.1, 3}, {0.2, 1}, {0.2, 2}}
		if actual := valuesOf(a.DataPoints); !cmp.Equal(actual, expect) {
			t.Errorf("actual=%+v, expect=%+v", actual, expect)
		}
		if !doe.IsComplete() || doe.Failed() || doe.Iteration() != 1 {
			t.Errorf("unexpected state: %+v", doe)
		}
		if added := doe.CreateNextIteration(a); added != 0 {
			t.Errorf("complete algorithm should add nothing: actual=%d", added)
		}
	})

	t.Run("When a variable is continuous, Then it fails", func(t *testing.T) {
		p := discreteProblem()
		p.Variables[1].Values = nil
		a := analysis.New("a", p, "seed.idf")
		doe := &analysis.DesignOfExperiments{}
		if added := doe.CreateNextIteration(a); added != 0 {
			t.Errorf("actual=%d, expect=0", added)
		}
		if !doe.Failed() || !doe.IsComplete() {
			t.Errorf("unexpected state: %+v", doe)
		}
	})
}

func TestAnalysis_DataPointsToQueue(t *testing.T) {
	a := analysis.New("a", discreteProblem(), "seed.idf")
	toQueue := analysis.NewDataPoint(0.1, 1)
	skipped := analysis.NewDataPoint(0.1, 2)
	skipped.Skip = true
	done := analysis.NewDataPoint(0.1, 3)
	done.Status = analysis.Completed
	done.Responses = []float64{10}
	failed := analysis.NewDataPoint(0.2, 1)
	failed.Status = analysis.Failed
	stopped := analysis.NewDataPoint(0.2, 2)
	stopped.Status = analysis.Stopped
	for _, dp := range []*analysis.DataPoint{toQueue, skipped, done, failed, stopped} {
		a.AddDataPoint(dp)
	}

	actual := []uuid.UUID{}
	for _, dp := range a.DataPointsToQueue() {
		actual = append(actual, dp.ID)
	}
	expect := []uuid.UUID{toQueue.ID, stopped.ID}
	if !cmp.Equal(actual, expect) {
		t.Errorf("actual=%+v, expect=%+v", actual, expect)
	}

	if a.DataPointsAreInvalid() || a.ResultsAreInvalid() {
		t.Error("analysis should be valid")
	}
	a.Problem.Responses = append(a.Problem.Responses, "peak")
	if !a.ResultsAreInvalid() {
		t.Error("results should be invalid after responses are changed")
	}
	a.DataPoints = append(a.DataPoints, analysis.NewDataPoint(1))
	if !a.DataPointsAreInvalid() {
		t.Error("data points should be invalid with wrong number of values")
	}
}

func TestProblem_UpdateDataPoint(t *testing.T) {
	type When struct {
		result    analysis.JobResult
		responses string // content of responses.yaml. empty means no file.
	}
	type Then struct {
		status    analysis.DataPointStatus
		responses []float64
	}

	theory := func(when When, then Then) func(*testing.T) {
		return func(t *testing.T) {
			dir := t.TempDir()
			if when.responses != "" {
				if err := os.WriteFile(filepath.Join(dir, analysis.ResponsesFileName), []byte(when.responses), 0644); err != nil {
					t.Fatal(err)
				}
			}
			p := discreteProblem()
			dp := analysis.NewDataPoint(0.1, 1)
			dp.Directory = dir

			p.UpdateDataPoint(dp, when.result)

			if dp.Status != then.status {
				t.Errorf("status: actual=%+v, expect=%+v (%s)", dp.Status, then.status, dp.FailureReason)
			}
			if !cmp.Equal(dp.Responses, then.responses) {
				t.Errorf("responses: actual=%+v, expect=%+v", dp.Responses, then.responses)
			}
			if !dp.IsComplete() {
				t.Error("data point should be complete")
			}
		}
	}

	t.Run("When the job succeeded and responses are reported, Then it is completed", theory(
		When{result: analysis.JobResult{Status: analysis.JobSucceeded}, responses: "eui: 123.5\nother: 1\n"},
		Then{status: analysis.Completed, responses: []float64{123.5}},
	))
	t.Run("When a response is missing, Then it is failed", theory(
		When{result: analysis.JobResult{Status: analysis.JobSucceeded}, responses: "other: 1\n"},
		Then{status: analysis.Failed},
	))
	t.Run("When no responses file is written, Then it is failed", theory(
		When{result: analysis.JobResult{Status: analysis.JobSucceeded}},
		Then{status: analysis.Failed},
	))
	t.Run("When the job failed, Then it is failed", theory(
		When{result: analysis.JobResult{Status: analysis.JobFailed, Errors: []string{"exit 1"}}, responses: "eui: 1\n"},
		Then{status: analysis.Failed},
	))
}

func TestProblem_DakotaResults(t *testing.T) {
	t.Run("When the problem has no responses, Then the first variable value is reported", func(t *testing.T) {
		p := discreteProblem()
		p.Responses = nil
		dp := analysis.NewDataPoint(0.2, 3)
		dp.Status = analysis.Completed
		actual, ok := p.DakotaResults(dp)
		if !ok || !cmp.Equal(actual, []float64{0.2}) {
			t.Errorf("actual=%+v, %+v", actual, ok)
		}
	})

	t.Run("When the data point failed, Then nothing is reported", func(t *testing.T) {
		p := discreteProblem()
		dp := analysis.NewDataPoint(0.2, 3)
		dp.Status = analysis.Failed
		if actual, ok := p.DakotaResults(dp); ok {
			t.Errorf("actual=%+v", actual)
		}
	})
}

func TestProblem_CreateDataPointFromParams(t *testing.T) {
	p := analysis.Problem{
		Variables: []analysis.Variable{
			{Name: "d", Values: []float64{10, 20, 30}},
			{Name: "x", Lower: ptr(0.0), Upper: ptr(1.0)},
		},
	}

	t.Run("When continuous and discrete values are given, Then they are mapped in the order of the control file", func(t *testing.T) {
		dp, err := p.CreateDataPointFromParams(&dakota.Params{
			Variables: []dakota.Variable{{Descriptor: "x", Value: 0.25}, {Descriptor: "d", Value: 1.4}},
		})
		if err != nil {
			t.Fatal(err)
		}
		expect := []float64{20, 0.25}
		if !cmp.Equal(dp.VariableValues, expect) {
			t.Errorf("actual=%+v, expect=%+v", dp.VariableValues, expect)
		}
	})

	t.Run("When the number of values is wrong, Then it is an error", func(t *testing.T) {
		_, err := p.CreateDataPointFromParams(&dakota.Params{Variables: []dakota.Variable{{Descriptor: "x", Value: 1}}})
		if !errors.Is(err, analysis.ErrValueCount) {
			t.Errorf("actual=%+v, expect=%+v", err, analysis.ErrValueCount)
		}
	})

	t.Run("When an index is out of range, Then it is an error", func(t *testing.T) {
		_, err := p.CreateDataPointFromParams(&dakota.Params{
			Variables: []dakota.Variable{{Descriptor: "x", Value: 0}, {Descriptor: "d", Value: 3}},
		})
		if !errors.Is(err, analysis.ErrValueOutOfRange) {
			t.Errorf("actual=%+v, expect=%+v", err, analysis.ErrValueOutOfRange)
		}
	})
}

func TestProblem_DakotaInFileDescription(t *testing.T) {
	p := analysis.Problem{
		Variables: []analysis.Variable{
			{Name: "d", Values: []float64{10, 20, 30}},
			{Name: "x", Lower: ptr(0.0), Upper: ptr(1.5)},
		},
		Responses: []string{"eui", "peak"},
	}
	actual, err := p.DakotaInFileDescription()
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"continuous_design = 1\n",
		"upper_bounds = 1.5\n",
		"descriptors = 'x'\n",
		"discrete_design_range = 1\n",
		"upper_bounds = 2\n",
		"num_response_functions = 2\n",
	} {
		if !strings.Contains(actual, want) {
			t.Errorf("%q is not in:\n%s", want, actual)
		}
	}

	p.Variables[1].Upper = nil
	if _, err := p.DakotaInFileDescription(); err == nil {
		t.Error("continuous variable without bounds should be an error")
	}
}

func TestProblem_Apply(t *testing.T) {
	m := model.New()
	brick := model.NewMaterial(m)
	brick.SetName("Brick")

	p := discreteProblem()

	if err := p.Apply(m, analysis.NewDataPoint(0.2, 3)); err != nil {
		t.Fatal(err)
	}
	if brick.Thickness() != 0.2 || brick.Conductivity() != 3 {
		t.Errorf("actual=(%v, %v), expect=(0.2, 3)", brick.Thickness(), brick.Conductivity())
	}

	p.Variables[0].Object = "Concrete"
	p.Variables[1].Attribute = "color"
	err := p.Apply(m, analysis.NewDataPoint(0.3, 1))
	if !errors.Is(err, analysis.ErrUnknownObject) || !errors.Is(err, analysis.ErrUnknownAttribute) {
		t.Errorf("both errors should be reported: %+v", err)
	}
}

func TestProblem_CreateWorkflow(t *testing.T) {
	p := discreteProblem()
	dp := analysis.NewDataPoint(0.1, 2)
	wf, err := p.CreateWorkflow(dp, "/seed.idf", "/w.epw", analysis.Simulation{
		Executable: "energyplus",
		Args:       []string{"-w", "$WEATHER", "${IDF}", "$HOME"},
	})
	if err != nil {
		t.Fatal(err)
	}
	expect := analysis.Workflow{
		Steps: []analysis.Step{
			{
				Kind: analysis.StepTranslate,
				Seed: "/seed.idf",
				Assignments: []analysis.Assignment{
					{Kind: model.KindMaterial, Object: "Brick", Attribute: "thickness", Value: 0.1},
					{Kind: model.KindMaterial, Object: "Brick", Attribute: "conductivity", Value: 2},
				},
				Output: analysis.InputFileName,
			},
			{
				Kind:    analysis.StepExec,
				Command: []string{"energyplus", "-w", "/w.epw", analysis.InputFileName, "$HOME"},
			},
		},
	}
	if !cmp.Equal(wf, expect) {
		t.Errorf("actual=%+v, expect=%+v", wf, expect)
	}

	if _, err := p.CreateWorkflow(analysis.NewDataPoint(1), "/seed.idf", "", analysis.Simulation{}); !errors.Is(err, analysis.ErrValueCount) {
		t.Errorf("actual=%+v, expect=%+v", err, analysis.ErrValueCount)
	}
}

func TestManifest(t *testing.T) {
	t.Run("When a manifest is complete, Then an analysis is built", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "analysis.yaml")
		if err := os.WriteFile(path, []byte(`
name: insulation
seed: seed.idf
problem:
  variables:
    - name: thickness
      kind: Material
      object: Brick
      attribute: thickness
      values: [0.1, 0.2]
  responses: [eui]
algorithm:
  dakota:
    sampling:
      samples: 4
      seed: 7
dataPoints:
  - [0.3]
`), 0644); err != nil {
			t.Fatal(err)
		}

		a, err := analysis.LoadManifest(path)
		if err != nil {
			t.Fatal(err)
		}
		if a.Name != "insulation" || a.Seed != filepath.Join(dir, "seed.idf") {
			t.Errorf("unexpected analysis: %+v", a)
		}
		alg, ok := a.DakotaAlgorithm()
		if !ok {
			t.Fatalf("algorithm: actual=%T", a.Algorithm)
		}
		if !strings.Contains(alg.Method, "samples = 4") || alg.Name() != "Dakota sampling" {
			t.Errorf("unexpected method: %s (%s)", alg.Method, alg.Name())
		}
		if actual := valuesOf(a.DataPoints); !cmp.Equal(actual, [][]float64{{0.3}}) {
			t.Errorf("data points: actual=%+v", actual)
		}
	})

	for name, text := range map[string]string{
		"name is missing":         "seed: s.idf\nproblem: {variables: []}\n",
		"problem is missing":      "name: a\nseed: s.idf\n",
		"attribute is missing":    "name: a\nseed: s.idf\nproblem: {variables: [{name: x, kind: Material, object: B}]}\n",
		"two algorithms":          "name: a\nseed: s.idf\nproblem: {variables: []}\nalgorithm: {designOfExperiments: {}, dakota: {method: m}}\n",
		"data point is too short": "name: a\nseed: s.idf\nproblem: {variables: [{name: x, kind: Material, object: B, attribute: thickness}]}\ndataPoints: [[]]\n",
	} {
		t.Run("When "+name+", Then it is an error", func(t *testing.T) {
			if a, err := analysis.UnmarshalManifest([]byte(text)); err == nil {
				t.Errorf("expected error, but built: %+v", a)
			}
		})
	}
}

func TestAnalysis_YAML(t *testing.T) {
	a := analysis.New("a", discreteProblem(), "seed.idf")
	a.Algorithm = &analysis.DesignOfExperiments{}
	a.Algorithm.(analysis.OSAlgorithm).CreateNextIteration(a)
	a.DataPoints[0].Status = analysis.Completed
	a.DataPoints[0].Responses = []float64{42}

	content, err := yaml.Marshal(a)
	if err != nil {
		t.Fatal(err)
	}
	back := &analysis.Analysis{}
	if err := yaml.Unmarshal(content, back); err != nil {
		t.Fatal(err)
	}
	if !cmp.Equal(back, a) {
		t.Errorf("actual=%+v, expect=%+v\n%s", back, a, content)
	}
}
