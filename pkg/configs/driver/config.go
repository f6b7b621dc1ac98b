package driver

import (
	"github.com/opst/knitsim/pkg/analysis"
	driver "github.com/opst/knitsim/pkg/analysisdriver"
)

// Configuration of knitsim.
//
// To get a `Config` instance, use `Unmarshal` or `Load`.
type Config struct {
	workingDirectory string
	queueSize        *int
	queuePausing     driver.QueuePausing
	firstN           int
	force            bool
	jobCleanUp       driver.JobCleanUp
	maxLocalJobs     int
	dakota           *DakotaConfig
	simulation       *SimulationConfig
	server           *ServerConfig
}

// Directory where data points and optimizer files are made.
func (c *Config) WorkingDirectory() string {
	return c.workingDirectory
}

// Cap of jobs in flight for an analysis. (nil, false) if no cap.
func (c *Config) QueueSize() (int, bool) {
	if c.queueSize == nil {
		return 0, false
	}
	return *c.queueSize, true
}

func (c *Config) QueuePausing() driver.QueuePausing {
	return c.queuePausing
}

func (c *Config) FirstN() int {
	return c.firstN
}

func (c *Config) Force() bool {
	return c.force
}

func (c *Config) JobCleanUp() driver.JobCleanUp {
	return c.jobCleanUp
}

// How many jobs run at once on this host. default = 1
func (c *Config) MaxLocalJobs() int {
	return c.maxLocalJobs
}

func (c *Config) Dakota() *DakotaConfig {
	return c.dakota
}

func (c *Config) Simulation() *SimulationConfig {
	return c.simulation
}

func (c *Config) Server() *ServerConfig {
	return c.server
}

// RunOptions for analyses run with this config.
func (c *Config) RunOptions() driver.RunOptions {
	opts := driver.RunOptions{
		WorkingDirectory: c.workingDirectory,
		QueuePausing:     c.queuePausing,
		FirstN:           c.firstN,
		Force:            c.force,
		JobCleanUp:       c.jobCleanUp,
		Simulation: analysis.Simulation{
			Executable: c.simulation.executable,
			Args:       append([]string{}, c.simulation.args...),
		},
		Dakota: driver.DakotaOptions{
			Executable: c.dakota.executable,
			FileSave:   c.dakota.fileSave,
		},
	}
	if c.queueSize != nil {
		qs := *c.queueSize
		opts.QueueSize = &qs
	}
	return opts
}

type DakotaConfig struct {
	executable string
	fileSave   bool
}

// Executable of the optimizer. default = "dakota"
func (d *DakotaConfig) Executable() string {
	return d.executable
}

// Whether parameters and results files are kept.
func (d *DakotaConfig) FileSave() bool {
	return d.fileSave
}

type SimulationConfig struct {
	executable string
	args       []string
}

func (s *SimulationConfig) Executable() string {
	return s.executable
}

func (s *SimulationConfig) Args() []string {
	return s.args
}

type ServerConfig struct {
	port     int32
	logLevel string
}

// default = 8080
func (s *ServerConfig) Port() int32 {
	return s.port
}

// One of debug, info, warn, error or off. default = "info"
func (s *ServerConfig) LogLevel() string {
	return s.logLevel
}
