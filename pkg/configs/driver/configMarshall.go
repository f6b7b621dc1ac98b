package driver

import (
	"fmt"

	driver "github.com/opst/knitsim/pkg/analysisdriver"
)

type Marshalled[S any] interface {
	trySeal(string) S
}

// seal marshalled object.
//
// this function CAN CAUSE PANIC if misconfiguration is found.
func TrySeal[S any](conf Marshalled[S]) S {
	return conf.trySeal("(root)")
}

// Configuration of knitsim.
//
// This type is marshalling value and mutable.
// Consider to use immutable version, `Config`.
type ConfigMarshall struct {
	WorkingDirectory string                    `yaml:"workingDirectory"`
	QueueSize        *int                      `yaml:"queueSize,omitempty"`
	QueuePausing     string                    `yaml:"queuePausing,omitempty"`
	FirstN           int                       `yaml:"firstN,omitempty"`
	Force            bool                      `yaml:"force,omitempty"`
	JobCleanUp       string                    `yaml:"jobCleanUp,omitempty"`
	MaxLocalJobs     int                       `yaml:"maxLocalJobs,omitempty"`
	Dakota           *DakotaConfigMarshall     `yaml:"dakota,omitempty"`
	Simulation       *SimulationConfigMarshall `yaml:"simulation"`
	Server           *ServerConfigMarshall     `yaml:"server,omitempty"`
}

var _ Marshalled[*Config] = &ConfigMarshall{}

func (cm *ConfigMarshall) trySeal(path string) *Config {
	pausing := driver.NoPause
	if cm.QueuePausing != "" {
		p, err := driver.AsQueuePausing(cm.QueuePausing)
		if err != nil {
			panic(fmt.Errorf("%s.queuePausing: %w", path, err))
		}
		pausing = p
	}
	if pausing == driver.PauseForFirstN {
		positive(cm.FirstN, path+".firstN")
	}

	cleanUp := driver.CleanUpNone
	if cm.JobCleanUp != "" {
		c, err := driver.AsJobCleanUp(cm.JobCleanUp)
		if err != nil {
			panic(fmt.Errorf("%s.jobCleanUp: %w", path, err))
		}
		cleanUp = c
	}

	var queueSize *int
	if cm.QueueSize != nil {
		qs := positive(*cm.QueueSize, path+".queueSize")
		queueSize = &qs
	}

	maxLocalJobs := cm.MaxLocalJobs
	if maxLocalJobs == 0 {
		maxLocalJobs = 1
	}

	dakota := cm.Dakota
	if dakota == nil {
		dakota = &DakotaConfigMarshall{}
	}
	server := cm.Server
	if server == nil {
		server = &ServerConfigMarshall{}
	}

	return &Config{
		workingDirectory: required(cm.WorkingDirectory, path+".workingDirectory"),
		queueSize:        queueSize,
		queuePausing:     pausing,
		firstN:           cm.FirstN,
		force:            cm.Force,
		jobCleanUp:       cleanUp,
		maxLocalJobs:     positive(maxLocalJobs, path+".maxLocalJobs"),
		dakota:           dakota.trySeal(path + ".dakota"),
		simulation:       nonnil(cm.Simulation, path+".simulation").trySeal(path + ".simulation"),
		server:           server.trySeal(path + ".server"),
	}
}

type DakotaConfigMarshall struct {
	Executable string `yaml:"executable,omitempty"`
	FileSave   bool   `yaml:"fileSave,omitempty"`
}

func (dm *DakotaConfigMarshall) trySeal(path string) *DakotaConfig {
	executable := dm.Executable
	if executable == "" {
		executable = "dakota"
	}
	return &DakotaConfig{
		executable: executable,
		fileSave:   dm.FileSave,
	}
}

type SimulationConfigMarshall struct {
	Executable string   `yaml:"executable"`
	Args       []string `yaml:"args,omitempty"`
}

func (sm *SimulationConfigMarshall) trySeal(path string) *SimulationConfig {
	return &SimulationConfig{
		executable: required(sm.Executable, path+".executable"),
		args:       sm.Args,
	}
}

type ServerConfigMarshall struct {
	Port     int32  `yaml:"port,omitempty"`
	LogLevel string `yaml:"logLevel,omitempty"`
}

func (sm *ServerConfigMarshall) trySeal(path string) *ServerConfig {
	port := sm.Port
	if port == 0 {
		port = 8080
	}
	if port < 0 || 65535 < port {
		panic(fmt.Sprintf("%s.port is out of range: %d", path, port))
	}

	level := sm.LogLevel
	switch level {
	case "":
		level = "info"
	case "debug", "info", "warn", "error", "off":
	default:
		panic(fmt.Sprintf("%s.logLevel is unknown: %s", path, level))
	}

	return &ServerConfig{port: port, logLevel: level}
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
