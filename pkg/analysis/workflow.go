package analysis

import (
	"os"
	"slices"
)

// InputFileName is the simulation input written into the data point directory.
const InputFileName = "in.idf"

type StepKind string

const (
	// Translate the seed with assignments, and write the simulation input.
	StepTranslate StepKind = "translate"

	// Run an external command in the data point directory.
	StepExec StepKind = "exec"
)

// Step is a unit of a workflow. Fields used depend on Kind.
type Step struct {
	Kind StepKind `yaml:"kind" json:"kind"`

	// for StepTranslate
	Seed        string       `yaml:"seed,omitempty" json:"seed,omitempty"`
	Assignments []Assignment `yaml:"assignments,omitempty" json:"assignments,omitempty"`
	Output      string       `yaml:"output,omitempty" json:"output,omitempty"`

	// for StepExec
	Command []string `yaml:"command,omitempty" json:"command,omitempty"`
}

// Workflow is the steps simulating a data point, in order.
//
// It is independent of how steps are run.
type Workflow struct {
	Steps []Step `yaml:"steps" json:"steps"`
}

// Simulation is the external program which simulates the translated model.
type Simulation struct {
	Executable string `yaml:"executable" json:"executable"`

	// Args are passed to the executable. $IDF and $WEATHER are expanded.
	Args []string `yaml:"args,omitempty" json:"args,omitempty"`
}

// Command is the command line to simulate the input.
func (s Simulation) Command(input string, weather string) []string {
	mapping := func(name string) string {
		switch name {
		case "IDF":
			return input
		case "WEATHER":
			return weather
		default:
			return "$" + name
		}
	}
	ret := []string{s.Executable}
	for _, a := range s.Args {
		ret = append(ret, os.Expand(a, mapping))
	}
	return slices.Clip(ret)
}
