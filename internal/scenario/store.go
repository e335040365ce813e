// Package scenario persists named evaluation snapshots so an operator can
// compare promise outcomes across input variations.
package scenario

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	yamlv3 "gopkg.in/yaml.v3"

	"promise-console/internal/models"
)

var ErrNotFound = errors.New("scenario not found")

// Scenario is one saved run: the inputs that shaped it and the headline
// outcome, enough to line scenarios up side by side.
type Scenario struct {
	ID           string              `yaml:"id"`
	Name         string              `yaml:"name"`
	Timestamp    time.Time           `yaml:"timestamp"`
	Customer     string              `yaml:"customer,omitempty"`
	Items        []models.LineItem   `yaml:"items,omitempty"`
	Warehouse    string              `yaml:"warehouse,omitempty"`
	DesiredDate  string              `yaml:"desired_date,omitempty"`
	DeliveryMode models.DeliveryMode `yaml:"delivery_mode,omitempty"`
	PromiseDate  string              `yaml:"promise_date,omitempty"`
	Confidence   models.Confidence   `yaml:"confidence,omitempty"`
	OnTime       *bool               `yaml:"on_time,omitempty"`
}

// Store keeps scenarios in a single YAML file.
type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// Save appends a scenario, assigning id and timestamp when missing.
func (s *Store) Save(sc Scenario) (Scenario, error) {
	if sc.ID == "" {
		sc.ID = uuid.NewString()
	}
	if sc.Timestamp.IsZero() {
		sc.Timestamp = time.Now().UTC()
	}

	scenarios, err := s.load()
	if err != nil {
		return Scenario{}, err
	}
	scenarios = append(scenarios, sc)
	if err := s.write(scenarios); err != nil {
		return Scenario{}, err
	}
	return sc, nil
}

// List returns all scenarios, newest first.
func (s *Store) List() ([]Scenario, error) {
	scenarios, err := s.load()
	if err != nil {
		return nil, err
	}
	sort.SliceStable(scenarios, func(i, j int) bool {
		return scenarios[i].Timestamp.After(scenarios[j].Timestamp)
	})
	return scenarios, nil
}

// Delete removes the scenario with the given id.
func (s *Store) Delete(id string) error {
	scenarios, err := s.load()
	if err != nil {
		return err
	}
	kept := scenarios[:0]
	found := false
	for _, sc := range scenarios {
		if sc.ID == id {
			found = true
			continue
		}
		kept = append(kept, sc)
	}
	if !found {
		return ErrNotFound
	}
	return s.write(kept)
}

// Clear removes every saved scenario.
func (s *Store) Clear() error {
	return s.write([]Scenario{})
}

func (s *Store) load() ([]Scenario, error) {
	content, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []Scenario{}, nil
		}
		return nil, fmt.Errorf("read scenarios: %w", err)
	}
	var scenarios []Scenario
	if err := yamlv3.Unmarshal(content, &scenarios); err != nil {
		return nil, fmt.Errorf("parse scenarios: %w", err)
	}
	return scenarios, nil
}

// write replaces the scenario file atomically: write a temp file in the
// same directory, then rename over the target.
func (s *Store) write(scenarios []Scenario) error {
	content, err := yamlv3.Marshal(scenarios)
	if err != nil {
		return fmt.Errorf("yaml marshal scenarios: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create scenario dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".scenarios-tmp-*.yaml")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("atomic rename: %w", err)
	}
	return nil
}
