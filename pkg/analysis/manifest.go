package analysis

import (
	"fmt"
	"os"
	"path/filepath"

	xe "github.com/opst/knitsim/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Manifest is the YAML document describing an analysis to be run.
//
//	name: insulation
//	seed: seed.idf
//	weatherFile: weather.epw
//	problem:
//	  variables:
//	    - name: thickness
//	      kind: Material
//	      object: Brick
//	      attribute: thickness
//	      values: [0.1, 0.2]
//	  responses: [eui]
//	algorithm:
//	  designOfExperiments: {}
//	dataPoints:
//	  - [0.3]
type Manifest struct {
	Name        string             `yaml:"name" json:"name"`
	Seed        string             `yaml:"seed" json:"seed"`
	WeatherFile string             `yaml:"weatherFile,omitempty" json:"weatherFile,omitempty"`
	Problem     *Problem           `yaml:"problem" json:"problem"`
	Algorithm   *AlgorithmManifest `yaml:"algorithm,omitempty" json:"algorithm,omitempty"`
	DataPoints  [][]float64        `yaml:"dataPoints,omitempty" json:"dataPoints,omitempty"`
}

type AlgorithmManifest struct {
	DesignOfExperiments *struct{}       `yaml:"designOfExperiments,omitempty" json:"designOfExperiments,omitempty"`
	Dakota              *DakotaManifest `yaml:"dakota,omitempty" json:"dakota,omitempty"`
}

// DakotaManifest gives one of Method, Sampling or DDACE.
type DakotaManifest struct {
	// Method is a method block written as is into the control file.
	Method string `yaml:"method,omitempty" json:"method,omitempty"`

	Sampling *SamplingManifest `yaml:"sampling,omitempty" json:"sampling,omitempty"`
	DDACE    *DDACEManifest    `yaml:"ddace,omitempty" json:"ddace,omitempty"`
}

type SamplingManifest struct {
	Samples int `yaml:"samples" json:"samples"`
	Seed    int `yaml:"seed,omitempty" json:"seed,omitempty"`
}

type DDACEManifest struct {
	// Kind is one of grid, random, oas, lhs, oa_lhs, box_behnken or central_composite.
	Kind    string `yaml:"kind" json:"kind"`
	Samples int    `yaml:"samples" json:"samples"`
	Seed    int    `yaml:"seed,omitempty" json:"seed,omitempty"`
}

func (am *AlgorithmManifest) trySeal(path string) Algorithm {
	if am == nil {
		return nil
	}
	if am.DesignOfExperiments != nil && am.Dakota != nil {
		panic(path + ": only one of designOfExperiments or dakota can be set")
	}
	if am.DesignOfExperiments != nil {
		return &DesignOfExperiments{}
	}
	if am.Dakota != nil {
		return am.Dakota.trySeal(path + ".dakota")
	}
	return nil
}

func (dm *DakotaManifest) trySeal(path string) *DakotaAlgorithm {
	given := 0
	for _, b := range []bool{dm.Method != "", dm.Sampling != nil, dm.DDACE != nil} {
		if b {
			given++
		}
	}
	if given != 1 {
		panic(path + ": one of method, sampling or ddace is required")
	}
	switch {
	case dm.Sampling != nil:
		return DakotaSampling(
			positive(dm.Sampling.Samples, path+".sampling.samples"),
			dm.Sampling.Seed,
		)
	case dm.DDACE != nil:
		return DakotaDDACE(
			required(dm.DDACE.Kind, path+".ddace.kind"),
			positive(dm.DDACE.Samples, path+".ddace.samples"),
			dm.DDACE.Seed,
		)
	default:
		return &DakotaAlgorithm{Method: dm.Method}
	}
}

func (m *Manifest) trySeal(path string) *Analysis {
	problem := nonnil(m.Problem, path+".problem")
	for i, v := range problem.Variables {
		vpath := fmt.Sprintf("%s.problem.variables[%d]", path, i)
		required(v.Name, vpath+".name")
		required(v.Kind, vpath+".kind")
		required(v.Object, vpath+".object")
		required(v.Attribute, vpath+".attribute")
	}

	a := New(
		required(m.Name, path+".name"),
		*problem,
		required(m.Seed, path+".seed"),
	)
	a.WeatherFile = m.WeatherFile
	a.Algorithm = m.Algorithm.trySeal(path + ".algorithm")

	for i, values := range m.DataPoints {
		if len(values) != len(problem.Variables) {
			panic(fmt.Sprintf(
				"%s.dataPoints[%d]: %d values for %d variables",
				path, i, len(values), len(problem.Variables),
			))
		}
		a.AddDataPoint(NewDataPoint(values...))
	}
	return a
}

// Build makes a new analysis from the manifest.
func (m *Manifest) Build() (a *Analysis, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("manifest: %v", r)
		}
	}()
	return m.trySeal("(root)"), nil
}

// UnmarshalManifest reads a manifest and builds an analysis.
func UnmarshalManifest(content []byte) (*Analysis, error) {
	m := &Manifest{}
	if err := yaml.Unmarshal(content, m); err != nil {
		return nil, xe.Wrap(err)
	}
	return m.Build()
}

// LoadManifest reads a manifest file.
//
// A relative seed or weather file is resolved from the directory of the manifest.
func LoadManifest(path string) (*Analysis, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	a, err := UnmarshalManifest(content)
	if err != nil {
		return nil, xe.WrapWithNote(path, err)
	}
	dir := filepath.Dir(path)
	if !filepath.IsAbs(a.Seed) {
		a.Seed = filepath.Join(dir, a.Seed)
	}
	if a.WeatherFile != "" && !filepath.IsAbs(a.WeatherFile) {
		a.WeatherFile = filepath.Join(dir, a.WeatherFile)
	}
	return a, nil
}

func nonnil[T any](v *T, path string) *T {
	if v == nil {
		panic(path + " is required")
	}
	return v
}

func required[T comparable](v T, path string) T {
	if v == *new(T) {
		panic(path + " is required")
	}
	return v
}

func positive(v int, path string) int {
	if v <= 0 {
		panic(path + " should be positive")
	}
	return v
}
