// Package project keeps analyses of a project.
package project

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/opst/knitsim/pkg/analysis"
	driver "github.com/opst/knitsim/pkg/analysisdriver"
	xe "github.com/opst/knitsim/pkg/errors"
	"gopkg.in/yaml.v3"
)

var (
	ErrNoTransaction    = errors.New("no transaction is started")
	ErrAnalysisNotFound = errors.New("analysis not found")
)

// Memory is a ProjectDatabase on memory.
//
// Analyses are stored as YAML snapshots. Changes made to an analysis after SaveAnalysis
// are not visible from Analysis until it is saved again.
type Memory struct {
	mu sync.Mutex

	jobs driver.JobSubsystem

	snapshots map[uuid.UUID][]byte
	records   map[uuid.UUID]int
	nextID    int
	depth     int
	saved     int
}

var _ driver.ProjectDatabase = &Memory{}

func NewMemory(jobs driver.JobSubsystem) *Memory {
	return &Memory{
		jobs:      jobs,
		snapshots: map[uuid.UUID][]byte{},
		records:   map[uuid.UUID]int{},
		nextID:    1,
	}
}

// StartTransaction starts a transaction. Transactions nest.
func (m *Memory) StartTransaction() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.depth++
	return nil
}

func (m *Memory) CommitTransaction() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.depth == 0 {
		return xe.Wrap(ErrNoTransaction)
	}
	m.depth--
	return nil
}

// Save flushes the project. On memory, it only counts.
func (m *Memory) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved++
	return nil
}

// SaveAnalysis takes a snapshot of the analysis, and issues record ids for new data points.
func (m *Memory) SaveAnalysis(a *analysis.Analysis) error {
	content, err := yaml.Marshal(a)
	if err != nil {
		return xe.Wrap(err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.depth == 0 {
		return xe.Wrap(ErrNoTransaction)
	}
	m.snapshots[a.ID] = content
	for _, dp := range a.DataPoints {
		if _, ok := m.records[dp.ID]; ok {
			continue
		}
		m.records[dp.ID] = m.nextID
		m.nextID++
	}
	return nil
}

func (m *Memory) DataPointRecordID(id uuid.UUID) (int, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[id]
	return r, ok
}

func (m *Memory) JobSubsystem() driver.JobSubsystem {
	return m.jobs
}

// Analysis restores the analysis from the last snapshot.
func (m *Memory) Analysis(id uuid.UUID) (*analysis.Analysis, error) {
	m.mu.Lock()
	content, ok := m.snapshots[id]
	m.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAnalysisNotFound, id)
	}
	a := new(analysis.Analysis)
	if err := yaml.Unmarshal(content, a); err != nil {
		return nil, xe.Wrap(err)
	}
	return a, nil
}

// Analyses are ids of saved analyses, in order.
func (m *Memory) Analyses() []uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := slices.Collect(maps.Keys(m.snapshots))
	slices.SortFunc(ids, func(a, b uuid.UUID) int { return slices.Compare(a[:], b[:]) })
	return ids
}

// Saves counts Save calls.
func (m *Memory) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saved
}
