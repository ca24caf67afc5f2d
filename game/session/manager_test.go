package session

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/wricardo/robots-vs-dinosaurs/game/engine"
)

func createTestScenario() *engine.Scenario {
	return &engine.Scenario{
		Name:          "test",
		GridDim:       6,
		RobotCount:    2,
		DinosaurCount: 4,
	}
}

func TestManager_Create(t *testing.T) {
	manager := NewManager()
	scenario := createTestScenario()

	t.Run("create with custom ID", func(t *testing.T) {
		sess, err := manager.Create("test-game", scenario)
		if err != nil {
			t.Fatalf("Failed to create game: %v", err)
		}
		if sess.ID != "test-game" {
			t.Errorf("Expected game ID 'test-game', got '%s'", sess.ID)
		}
		if sess.Game == nil {
			t.Fatal("Expected game to be initialized")
		}
		if !sess.Game.Materialized() {
			t.Error("Expected board to be materialized")
		}
		if sess.Scenario != "test" {
			t.Errorf("Expected scenario name 'test', got '%s'", sess.Scenario)
		}
	})

	t.Run("create with auto-generated ID", func(t *testing.T) {
		sess, err := manager.Create("", scenario)
		if err != nil {
			t.Fatalf("Failed to create game: %v", err)
		}
		if len(sess.ID) != 4 {
			t.Errorf("Expected 4-character ID, got '%s'", sess.ID)
		}
	})

	t.Run("duplicate ID", func(t *testing.T) {
		_, err := manager.Create("test-game", scenario)
		if !errors.Is(err, ErrGameExists) {
			t.Errorf("Expected ErrGameExists, got %v", err)
		}
	})

	t.Run("case-insensitive duplicate check", func(t *testing.T) {
		_, err := manager.Create("TEST-GAME", scenario)
		if !errors.Is(err, ErrGameExists) {
			t.Errorf("Expected ErrGameExists, got %v", err)
		}
	})

	t.Run("invalid scenario", func(t *testing.T) {
		_, err := manager.Create("", &engine.Scenario{GridDim: 2})
		if !errors.Is(err, engine.ErrInvalidDimension) {
			t.Errorf("Expected ErrInvalidDimension, got %v", err)
		}
		_, err = manager.Create("", &engine.Scenario{GridDim: 3, RobotCount: 5, DinosaurCount: 5})
		if !errors.Is(err, engine.ErrGridFull) {
			t.Errorf("Expected ErrGridFull, got %v", err)
		}
		if _, err := manager.Create("", nil); !errors.Is(err, ErrInvalidScenario) {
			t.Errorf("Expected ErrInvalidScenario, got %v", err)
		}
	})

	if manager.Count() != 2 {
		t.Errorf("Failed creations must not be stored, expected 2 games, got %d", manager.Count())
	}
}

func TestManager_CreateWithOptions(t *testing.T) {
	manager := NewManager()
	a, _ := manager.Create("a", createTestScenario(), engine.WithSeed(5))
	b, _ := manager.Create("b", createTestScenario(), engine.WithSeed(5))

	da, db := a.Game.Dinosaurs(), b.Game.Dinosaurs()
	for i := range da {
		if da[i] != db[i] {
			t.Fatalf("Expected identical placement with the same seed, got %v and %v", da, db)
		}
	}
}

func TestManager_Get(t *testing.T) {
	manager := NewManager()
	created, _ := manager.Create("AbCd", createTestScenario())

	t.Run("get existing game", func(t *testing.T) {
		sess, err := manager.Get("AbCd")
		if err != nil {
			t.Fatalf("Failed to get game: %v", err)
		}
		if sess != created {
			t.Error("Expected the stored session")
		}
	})

	t.Run("case-insensitive get", func(t *testing.T) {
		sess, err := manager.Get("abcd")
		if err != nil {
			t.Fatalf("Failed to get game: %v", err)
		}
		if sess.ID != "AbCd" {
			t.Errorf("Expected original ID to be kept, got %s", sess.ID)
		}
	})

	t.Run("get non-existent game", func(t *testing.T) {
		_, err := manager.Get("nope")
		if !errors.Is(err, ErrGameNotFound) {
			t.Errorf("Expected ErrGameNotFound, got %v", err)
		}
	})
}

func TestManager_Delete(t *testing.T) {
	manager := NewManager()
	manager.Create("game1", createTestScenario())

	t.Run("delete existing game", func(t *testing.T) {
		if err := manager.Delete("GAME1"); err != nil {
			t.Fatalf("Failed to delete game: %v", err)
		}
		if _, err := manager.Get("game1"); !errors.Is(err, ErrGameNotFound) {
			t.Errorf("Expected ErrGameNotFound after delete, got %v", err)
		}
	})

	t.Run("delete non-existent game", func(t *testing.T) {
		if err := manager.Delete("game1"); !errors.Is(err, ErrGameNotFound) {
			t.Errorf("Expected ErrGameNotFound, got %v", err)
		}
	})
}

func TestManager_DeleteAll(t *testing.T) {
	manager := NewManager()
	for i := 0; i < 3; i++ {
		manager.Create("", createTestScenario())
	}

	if n := manager.DeleteAll(); n != 3 {
		t.Errorf("Expected 3 games deleted, got %d", n)
	}
	if manager.Count() != 0 {
		t.Errorf("Expected 0 games, got %d", manager.Count())
	}
	if n := manager.DeleteAll(); n != 0 {
		t.Errorf("Expected 0 on an empty manager, got %d", n)
	}
}

func TestManager_List(t *testing.T) {
	manager := NewManager()
	ids := []string{"g1", "g2", "g3"}
	for _, id := range ids {
		manager.Create(id, createTestScenario())
	}

	sessions := manager.List()
	if len(sessions) != len(ids) {
		t.Fatalf("Expected %d games, got %d", len(ids), len(sessions))
	}

	found := map[string]bool{}
	for _, sess := range sessions {
		found[sess.ID] = true
	}
	for _, id := range ids {
		if !found[id] {
			t.Errorf("Game %s missing from list", id)
		}
	}
}

func TestManager_CleanupExpired(t *testing.T) {
	manager := NewManager()
	old, _ := manager.Create("old", createTestScenario())
	manager.Create("fresh", createTestScenario())

	old.SetLastAccessedAt(time.Now().Add(-2 * time.Hour))

	removed := manager.CleanupExpiredSessions(time.Hour)
	if removed != 1 {
		t.Errorf("Expected 1 game removed, got %d", removed)
	}
	if _, err := manager.Get("old"); !errors.Is(err, ErrGameNotFound) {
		t.Error("Expected expired game to be removed")
	}
	if _, err := manager.Get("fresh"); err != nil {
		t.Errorf("Expected fresh game to remain: %v", err)
	}
}

func TestManager_UpdateLastAccessed(t *testing.T) {
	manager := NewManager()
	sess, _ := manager.Create("game", createTestScenario())

	past := time.Now().Add(-time.Minute)
	sess.SetLastAccessedAt(past)

	if err := manager.UpdateLastAccessed("GAME"); err != nil {
		t.Fatalf("Failed to update: %v", err)
	}
	if !sess.LastAccessedAt().After(past) {
		t.Error("Expected last accessed time to move forward")
	}
	if err := manager.UpdateLastAccessed("missing"); !errors.Is(err, ErrGameNotFound) {
		t.Errorf("Expected ErrGameNotFound, got %v", err)
	}
}

func TestManager_ConcurrentAccess(t *testing.T) {
	manager := NewManager()
	var wg sync.WaitGroup
	ids := make(chan string, 50)

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sess, err := manager.Create("", createTestScenario())
			if err != nil {
				t.Errorf("Failed to create game: %v", err)
				return
			}
			manager.Get(sess.ID)
			manager.UpdateLastAccessed(sess.ID)
			manager.List()
			ids <- sess.ID
		}()
	}
	wg.Wait()
	close(ids)

	seen := map[string]bool{}
	for id := range ids {
		if seen[strings.ToLower(id)] {
			t.Errorf("Duplicate game id %s", id)
		}
		seen[strings.ToLower(id)] = true
	}
	if manager.Count() != 50 {
		t.Errorf("Expected 50 games, got %d", manager.Count())
	}
}

func TestManager_GameIsolation(t *testing.T) {
	manager := NewManager()
	scenario := &engine.Scenario{
		GridDim:   5,
		Robots:    []engine.RobotPlacement{{Coordinate: engine.At(0, 0), Direction: engine.East}},
		Dinosaurs: []engine.Coordinate{engine.At(4, 4)},
	}
	a, _ := manager.Create("a", scenario)
	b, _ := manager.Create("b", scenario)

	robot, _ := a.Game.RobotAt(0)
	if _, err := a.Game.MoveForward(robot.ID); err != nil {
		t.Fatalf("Failed to move: %v", err)
	}

	if b.Game.Moves() != 0 {
		t.Errorf("Commands leaked between games, b has %d moves", b.Game.Moves())
	}
	other, _ := b.Game.RobotAt(0)
	if other.Coordinate != engine.At(0, 0) {
		t.Errorf("Robot in game b moved to %s", other.Coordinate)
	}
}

func TestManager_IDFallback(t *testing.T) {
	manager := NewManager()
	// Fill the whole 4-hex space so generation must fall back
	for i := 0; i < 1<<16; i++ {
		b := []byte{byte(i >> 8), byte(i)}
		manager.sessions[hexID(b)] = nil
	}

	id := manager.generateID()
	if len(id) == 4 {
		t.Errorf("Expected uuid fallback, got %s", id)
	}
}

func hexID(b []byte) string {
	const digits = "0123456789abcdef"
	return string([]byte{digits[b[0]>>4], digits[b[0]&0xf], digits[b[1]>>4], digits[b[1]&0xf]})
}
