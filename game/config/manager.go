package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/wricardo/robots-vs-dinosaurs/game/engine"
	"github.com/wricardo/robots-vs-dinosaurs/game/service"
	"github.com/wricardo/robots-vs-dinosaurs/pkg/logger"
)

var log = logger.WithComponent("config")

var (
	ErrScenarioNotFound = service.ErrScenarioNotFound
	ErrInvalidScenario  = errors.New("invalid scenario")
)

// DefaultScenarioName is preferred as the default when present on disk
const DefaultScenarioName = "classic"

// extensions lists accepted scenario file types in lookup order
var extensions = []string{".json", ".yaml", ".yml"}

// Manager handles scenario preset loading and caching
type Manager struct {
	scenarioDir     string
	defaultScenario *engine.Scenario
	scenarios       map[string]*engine.Scenario
	mu              sync.RWMutex
}

// NewManager creates a new scenario manager for the given directory
func NewManager(scenarioDir string) (*Manager, error) {
	if _, err := os.Stat(scenarioDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("scenario directory does not exist: %s", scenarioDir)
	}

	m := &Manager{
		scenarioDir: scenarioDir,
		scenarios:   make(map[string]*engine.Scenario),
	}
	m.loadDefaultScenario()
	return m, nil
}

// LoadScenario loads a scenario by name. The name may carry a file extension.
func (m *Manager) LoadScenario(name string) (*engine.Scenario, error) {
	key := scenarioID(name)

	m.mu.RLock()
	if s, exists := m.scenarios[key]; exists {
		m.mu.RUnlock()
		return s, nil
	}
	m.mu.RUnlock()

	path, err := m.resolve(name)
	if err != nil {
		return nil, err
	}

	s, err := LoadScenarioFile(path)
	if err != nil {
		return nil, err
	}
	if s.Name == "" {
		s.Name = key
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// Another caller may have loaded it meanwhile
	if cached, exists := m.scenarios[key]; exists {
		return cached, nil
	}
	m.scenarios[key] = s
	return s, nil
}

// LoadScenarioFile parses and validates a single scenario file
func LoadScenarioFile(path string) (*engine.Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrScenarioNotFound
		}
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var s engine.Scenario
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&s); err != nil {
			return nil, fmt.Errorf("%w: failed to parse %s: %v", ErrInvalidScenario, filepath.Base(path), err)
		}
	default:
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("%w: failed to parse %s: %v", ErrInvalidScenario, filepath.Base(path), err)
		}
	}

	if err := engine.NormalizeScenario(&s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScenario, err)
	}
	if err := engine.ValidateScenario(&s); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidScenario, err)
	}
	return &s, nil
}

// ListScenarios returns information about every valid scenario file
func (m *Manager) ListScenarios() ([]*service.ScenarioInfo, error) {
	files, err := m.scenarioFiles()
	if err != nil {
		return nil, err
	}

	var infos []*service.ScenarioInfo
	for _, file := range files {
		id := scenarioID(file)
		s, err := m.LoadScenario(file)
		if err != nil {
			log.WithFields(logrus.Fields{"file": file, "error": err}).Warn("skipping invalid scenario")
			continue
		}

		robots, dinosaurs := s.RandomCounts()
		infos = append(infos, &service.ScenarioInfo{
			Filename:      file,
			ScenarioID:    id,
			Name:          s.Name,
			Description:   s.Description,
			GridDim:       s.GridDim,
			RobotCount:    robots + len(s.Robots),
			DinosaurCount: dinosaurs + len(s.Dinosaurs),
		})
	}
	return infos, nil
}

// GetDefault returns the default scenario
func (m *Manager) GetDefault() *engine.Scenario {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultScenario
}

// SetDefault sets the default scenario by name
func (m *Manager) SetDefault(name string) error {
	s, err := m.LoadScenario(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultScenario = s
	return nil
}

// RefreshCache drops every cached scenario and reloads the default from disk
func (m *Manager) RefreshCache() {
	m.mu.Lock()
	m.scenarios = make(map[string]*engine.Scenario)
	m.mu.Unlock()

	m.loadDefaultScenario()
}

// SaveScenario validates a scenario and writes it to disk. A .yaml or .yml
// name is written as YAML, anything else as JSON.
func (m *Manager) SaveScenario(name string, s *engine.Scenario) error {
	if s == nil {
		return fmt.Errorf("%w: scenario is required", ErrInvalidScenario)
	}
	if err := engine.ValidateScenario(s); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidScenario, err)
	}

	key := scenarioID(name)
	if key == "" || strings.ContainsAny(name, `/\`) || key == "." || key == ".." {
		return fmt.Errorf("%w: bad scenario name %q", ErrInvalidScenario, name)
	}

	filename := name
	if !hasScenarioExt(filename) {
		filename = key + ".json"
	}

	var data []byte
	var err error
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(s)
	default:
		data, err = json.MarshalIndent(s, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal scenario: %w", err)
	}

	if err := os.WriteFile(filepath.Join(m.scenarioDir, filename), data, 0644); err != nil {
		return fmt.Errorf("failed to write scenario file: %w", err)
	}

	m.mu.Lock()
	m.scenarios[key] = s
	m.mu.Unlock()
	return nil
}

// loadDefaultScenario picks classic, else the first valid file, else a built-in scenario
func (m *Manager) loadDefaultScenario() {
	s, err := m.LoadScenario(DefaultScenarioName)
	if err != nil {
		s = nil
		if infos, listErr := m.ListScenarios(); listErr == nil && len(infos) > 0 {
			s, _ = m.LoadScenario(infos[0].Filename)
		}
	}
	if s == nil {
		s = BuiltinScenario()
	}

	m.mu.Lock()
	m.defaultScenario = s
	m.mu.Unlock()
}

// resolve finds the file backing a scenario name
func (m *Manager) resolve(name string) (string, error) {
	if hasScenarioExt(name) {
		return filepath.Join(m.scenarioDir, filepath.Base(name)), nil
	}
	for _, ext := range extensions {
		path := filepath.Join(m.scenarioDir, filepath.Base(name)+ext)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", ErrScenarioNotFound
}

// scenarioFiles lists scenario files in the directory, sorted by name
func (m *Manager) scenarioFiles() ([]string, error) {
	entries, err := os.ReadDir(m.scenarioDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario directory: %w", err)
	}

	seen := make(map[string]bool)
	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !hasScenarioExt(entry.Name()) {
			continue
		}
		id := scenarioID(entry.Name())
		// classic.json shadows classic.yaml
		if seen[id] {
			continue
		}
		seen[id] = true
		files = append(files, entry.Name())
	}
	sort.Strings(files)
	return files, nil
}

// BuiltinScenario is used when the directory holds no valid scenario
func BuiltinScenario() *engine.Scenario {
	return &engine.Scenario{
		Name:          "default",
		Description:   "One robot against one dinosaur on a 10x10 board",
		GridDim:       10,
		RobotCount:    1,
		DinosaurCount: 1,
	}
}

func hasScenarioExt(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range extensions {
		if ext == e {
			return true
		}
	}
	return false
}

func scenarioID(name string) string {
	name = filepath.Base(name)
	if hasScenarioExt(name) {
		return strings.TrimSuffix(name, filepath.Ext(name))
	}
	return name
}
