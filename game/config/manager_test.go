package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/wricardo/robots-vs-dinosaurs/game/engine"
)

func createTestScenarioDir(t *testing.T) string {
	t.Helper()
	return t.TempDir()
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
}

const classicJSON = `{
  "name": "Classic",
  "description": "One robot, ten dinosaurs",
  "grid_dim": 10,
  "robot_count": 1,
  "dinosaur_count": 10
}`

const skirmishYAML = `
name: Skirmish
grid_dim: 5
robots:
  - coordinate: [2, 2]
    direction: north
dinosaurs:
  - [1, 2]
  - [3, 2]
  - {row: 2, column: 1}
  - {row: 2, column: 3}
`

func TestNewManager(t *testing.T) {
	t.Run("valid directory", func(t *testing.T) {
		dir := createTestScenarioDir(t)
		writeFile(t, dir, "classic.json", classicJSON)

		manager, err := NewManager(dir)
		if err != nil {
			t.Fatalf("Failed to create manager: %v", err)
		}
		if manager.GetDefault().Name != "Classic" {
			t.Errorf("Expected Classic as default, got %s", manager.GetDefault().Name)
		}
	})

	t.Run("non-existent directory", func(t *testing.T) {
		if _, err := NewManager("/does/not/exist"); err == nil {
			t.Error("Expected error for missing directory")
		}
	})

	t.Run("first valid file when classic is missing", func(t *testing.T) {
		dir := createTestScenarioDir(t)
		writeFile(t, dir, "a_broken.json", `{"grid_dim": 1}`)
		writeFile(t, dir, "skirmish.yaml", skirmishYAML)

		manager, err := NewManager(dir)
		if err != nil {
			t.Fatalf("Failed to create manager: %v", err)
		}
		if manager.GetDefault().Name != "Skirmish" {
			t.Errorf("Expected Skirmish as default, got %s", manager.GetDefault().Name)
		}
	})

	t.Run("built-in default for an empty directory", func(t *testing.T) {
		manager, err := NewManager(createTestScenarioDir(t))
		if err != nil {
			t.Fatalf("Failed to create manager: %v", err)
		}
		def := manager.GetDefault()
		if def.GridDim != 10 || def.RobotCount != 1 || def.DinosaurCount != 1 {
			t.Errorf("Unexpected built-in default: %+v", def)
		}
	})
}

func TestManager_LoadScenario(t *testing.T) {
	dir := createTestScenarioDir(t)
	writeFile(t, dir, "classic.json", classicJSON)
	writeFile(t, dir, "skirmish.yaml", skirmishYAML)
	writeFile(t, dir, "overlap.json", `{"grid_dim": 5, "dinosaurs": [[1,1],[1,1]]}`)
	writeFile(t, dir, "malformed.json", `{"grid_dim": `)
	writeFile(t, dir, "unknown.yml", "grid_dim: 5\nwidth: 3\n")

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	t.Run("load JSON", func(t *testing.T) {
		s, err := manager.LoadScenario("classic")
		if err != nil {
			t.Fatalf("Failed to load: %v", err)
		}
		if s.GridDim != 10 || s.DinosaurCount != 10 {
			t.Errorf("Unexpected scenario: %+v", s)
		}
	})

	t.Run("load YAML with mixed coordinate forms", func(t *testing.T) {
		s, err := manager.LoadScenario("skirmish")
		if err != nil {
			t.Fatalf("Failed to load: %v", err)
		}
		if len(s.Dinosaurs) != 4 || s.Dinosaurs[2] != engine.At(2, 1) {
			t.Errorf("Unexpected dinosaurs: %v", s.Dinosaurs)
		}
		if s.Robots[0].Direction != engine.North {
			t.Errorf("Expected direction normalized to N, got %s", s.Robots[0].Direction)
		}
	})

	t.Run("load with extension", func(t *testing.T) {
		s, err := manager.LoadScenario("skirmish.yaml")
		if err != nil {
			t.Fatalf("Failed to load: %v", err)
		}
		if s.Name != "Skirmish" {
			t.Errorf("Expected Skirmish, got %s", s.Name)
		}
	})

	t.Run("load from cache", func(t *testing.T) {
		a, _ := manager.LoadScenario("classic")
		b, _ := manager.LoadScenario("classic.json")
		if a != b {
			t.Error("Expected cached scenario to be returned")
		}
	})

	t.Run("not found", func(t *testing.T) {
		if _, err := manager.LoadScenario("nope"); !errors.Is(err, ErrScenarioNotFound) {
			t.Errorf("Expected ErrScenarioNotFound, got %v", err)
		}
	})

	t.Run("overlapping entities", func(t *testing.T) {
		_, err := manager.LoadScenario("overlap")
		if !errors.Is(err, ErrInvalidScenario) || !errors.Is(err, engine.ErrPositionOccupied) {
			t.Errorf("Expected ErrInvalidScenario wrapping ErrPositionOccupied, got %v", err)
		}
	})

	t.Run("malformed JSON", func(t *testing.T) {
		if _, err := manager.LoadScenario("malformed"); !errors.Is(err, ErrInvalidScenario) {
			t.Errorf("Expected ErrInvalidScenario, got %v", err)
		}
	})

	t.Run("unknown YAML field", func(t *testing.T) {
		if _, err := manager.LoadScenario("unknown"); !errors.Is(err, ErrInvalidScenario) {
			t.Errorf("Expected ErrInvalidScenario, got %v", err)
		}
	})
}

func TestManager_ListScenarios(t *testing.T) {
	dir := createTestScenarioDir(t)
	writeFile(t, dir, "classic.json", classicJSON)
	writeFile(t, dir, "skirmish.yaml", skirmishYAML)
	writeFile(t, dir, "broken.json", `{"grid_dim": 0}`)
	writeFile(t, dir, "notes.txt", "ignored")
	os.Mkdir(filepath.Join(dir, "sub.json"), 0755)

	manager, _ := NewManager(dir)
	infos, err := manager.ListScenarios()
	if err != nil {
		t.Fatalf("Failed to list: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("Expected 2 valid scenarios, got %d", len(infos))
	}

	if infos[0].ScenarioID != "classic" || infos[0].RobotCount != 1 || infos[0].DinosaurCount != 10 {
		t.Errorf("Unexpected classic info: %+v", infos[0])
	}
	if infos[1].ScenarioID != "skirmish" || infos[1].Filename != "skirmish.yaml" || infos[1].DinosaurCount != 4 {
		t.Errorf("Unexpected skirmish info: %+v", infos[1])
	}
}

func TestManager_SaveScenario(t *testing.T) {
	dir := createTestScenarioDir(t)
	manager, _ := NewManager(dir)

	s := &engine.Scenario{
		Name:      "Saved",
		GridDim:   6,
		Robots:    []engine.RobotPlacement{{Coordinate: engine.At(0, 0), Direction: engine.South}},
		Dinosaurs: []engine.Coordinate{engine.At(5, 5)},
	}

	t.Run("JSON", func(t *testing.T) {
		if err := manager.SaveScenario("saved", s); err != nil {
			t.Fatalf("Failed to save: %v", err)
		}
		loaded, err := LoadScenarioFile(filepath.Join(dir, "saved.json"))
		if err != nil {
			t.Fatalf("Failed to reload: %v", err)
		}
		if loaded.GridDim != 6 || loaded.Robots[0].Direction != engine.South || loaded.Dinosaurs[0] != engine.At(5, 5) {
			t.Errorf("Unexpected reloaded scenario: %+v", loaded)
		}
	})

	t.Run("YAML", func(t *testing.T) {
		if err := manager.SaveScenario("saved_yaml.yaml", s); err != nil {
			t.Fatalf("Failed to save: %v", err)
		}
		data, _ := os.ReadFile(filepath.Join(dir, "saved_yaml.yaml"))
		if !strings.Contains(string(data), "grid_dim: 6") {
			t.Errorf("Expected YAML output, got %s", data)
		}
		loaded, err := LoadScenarioFile(filepath.Join(dir, "saved_yaml.yaml"))
		if err != nil {
			t.Fatalf("Failed to reload: %v", err)
		}
		if loaded.Dinosaurs[0] != engine.At(5, 5) {
			t.Errorf("Unexpected reloaded dinosaurs: %v", loaded.Dinosaurs)
		}
	})

	t.Run("invalid scenario is rejected", func(t *testing.T) {
		err := manager.SaveScenario("bad", &engine.Scenario{GridDim: 2})
		if !errors.Is(err, ErrInvalidScenario) {
			t.Errorf("Expected ErrInvalidScenario, got %v", err)
		}
		if _, statErr := os.Stat(filepath.Join(dir, "bad.json")); !os.IsNotExist(statErr) {
			t.Error("Invalid scenario was written to disk")
		}
	})

	t.Run("path traversal is rejected", func(t *testing.T) {
		if err := manager.SaveScenario("../escape", s); !errors.Is(err, ErrInvalidScenario) {
			t.Errorf("Expected ErrInvalidScenario, got %v", err)
		}
	})
}

func TestManager_RefreshCache(t *testing.T) {
	dir := createTestScenarioDir(t)
	writeFile(t, dir, "classic.json", classicJSON)
	manager, _ := NewManager(dir)

	writeFile(t, dir, "classic.json", `{"name": "Classic v2", "grid_dim": 12}`)
	if s, _ := manager.LoadScenario("classic"); s.Name != "Classic" {
		t.Errorf("Expected cached scenario before refresh, got %s", s.Name)
	}

	manager.RefreshCache()
	if manager.GetDefault().Name != "Classic v2" {
		t.Errorf("Expected reloaded default, got %s", manager.GetDefault().Name)
	}
}

func TestManager_ConcurrentAccess(t *testing.T) {
	dir := createTestScenarioDir(t)
	writeFile(t, dir, "classic.json", classicJSON)
	writeFile(t, dir, "skirmish.yaml", skirmishYAML)
	manager, _ := NewManager(dir)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := "classic"
			if i%2 == 0 {
				name = "skirmish"
			}
			if _, err := manager.LoadScenario(name); err != nil {
				t.Errorf("Failed to load %s: %v", name, err)
			}
			manager.ListScenarios()
			manager.GetDefault()
		}(i)
	}
	wg.Wait()
}
