package analysis

import (
	"slices"

	"github.com/google/uuid"
)

type JobID = uuid.UUID

// DataPoint is one set of variable values to be simulated.
type DataPoint struct {
	ID uuid.UUID `yaml:"id" json:"id"`

	// VariableValues are values of Problem.Variables, in the same order.
	VariableValues []float64 `yaml:"variableValues" json:"variableValues"`

	// Skip excludes this data point from queuing.
	Skip bool `yaml:"skip,omitempty" json:"skip,omitempty"`

	Status DataPointStatus `yaml:"status" json:"status"`

	// Directory is where the job for this data point runs.
	Directory string `yaml:"directory,omitempty" json:"directory,omitempty"`

	// TopLevelJob is the root of the job tree. uuid.Nil when no job has been issued.
	TopLevelJob JobID `yaml:"topLevelJob,omitempty" json:"topLevelJob,omitempty"`

	// DakotaParametersFiles are parameters files this data point answers to.
	DakotaParametersFiles []string `yaml:"dakotaParametersFiles,omitempty" json:"dakotaParametersFiles,omitempty"`

	// Responses are values of Problem.Responses, in the same order.
	Responses []float64 `yaml:"responses,omitempty" json:"responses,omitempty"`

	FailureReason string `yaml:"failureReason,omitempty" json:"failureReason,omitempty"`
}

func NewDataPoint(values ...float64) *DataPoint {
	return &DataPoint{
		ID:             uuid.New(),
		VariableValues: slices.Clone(values),
		Status:         ToQueue,
	}
}

// IsComplete tells the data point has been simulated, successfully or not.
func (dp *DataPoint) IsComplete() bool {
	return dp.Status == Completed || dp.Failed()
}

func (dp *DataPoint) Failed() bool {
	return dp.Status == Failed
}

// HasJob tells a job has been issued for this data point.
func (dp *DataPoint) HasJob() bool {
	return dp.TopLevelJob != uuid.Nil
}

// SameValues tells the data point has the values.
func (dp *DataPoint) SameValues(values []float64) bool {
	return slices.Equal(dp.VariableValues, values)
}
