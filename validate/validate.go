// Command validate checks the scenario presets in a directory (../configs by
// default, or the first argument). For every *.json, *.yaml and *.yml file it checks:
//   - the file decodes, with no unknown keys
//   - grid dimension, entity counts and robot directions are legal
//   - explicit coordinates are in bounds and never overlap
//   - the board can actually be populated with a fixed seed
//
// It prints a report and exits with non-zero status if any file is invalid.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/wricardo/robots-vs-dinosaurs/game/config"
	"github.com/wricardo/robots-vs-dinosaurs/game/engine"
)

// denseThreshold is the occupancy above which a board gets a warning
const denseThreshold = 0.9

// ValidationResult captures the outcome of validating a single file.
// Errors holds the failures; Info holds the passed checks and warnings.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
	Info   []string
}

func (r *ValidationResult) fail(format string, args ...interface{}) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) note(format string, args ...interface{}) {
	r.Info = append(r.Info, fmt.Sprintf(format, args...))
}

// validateScenario loads and validates a single scenario file
func validateScenario(filePath string) ValidationResult {
	result := ValidationResult{
		File:  filepath.Base(filePath),
		Valid: true,
	}

	s, err := config.LoadScenarioFile(filePath)
	if err != nil {
		result.fail("%v", err)
		return result
	}

	if strings.TrimSpace(s.Name) == "" {
		result.note("⚠ No name set, the file name will be shown instead")
	}

	cells := s.GridDim * s.GridDim
	robots, dinosaurs := s.RandomCounts()
	result.note("✓ Grid: %dx%d (%d cells)", s.GridDim, s.GridDim, cells)
	result.note("✓ Robots: %d explicit + %d random", len(s.Robots), robots)
	result.note("✓ Dinosaurs: %d explicit + %d random", len(s.Dinosaurs), dinosaurs)

	occupancy := float64(s.TotalEntities()) / float64(cells)
	if occupancy > denseThreshold {
		result.note("⚠ Dense board: %.0f%% of cells occupied, robots may not be able to move", occupancy*100)
	} else {
		result.note("✓ Occupancy: %.0f%%", occupancy*100)
	}

	// Populate once to prove the placement succeeds
	game, err := engine.NewGameFromScenario(s, engine.WithSeed(1))
	if err != nil {
		result.fail("Placement failed: %v", err)
		return result
	}

	boxed := 0
	for _, r := range game.Robots() {
		if boxedIn(game, r.Coordinate) {
			boxed++
			result.note("⚠ Robot at %s is boxed in", r.Coordinate)
		}
	}
	if boxed == 0 {
		result.note("✓ Every robot has room to move")
	}

	return result
}

// boxedIn reports whether every neighbour of c is a wall or occupied
func boxedIn(game *engine.Game, c engine.Coordinate) bool {
	grid := game.Grid()
	for _, n := range c.Neighbors() {
		if grid.InBounds(n) && grid.IsEmpty(n) {
			return false
		}
	}
	return true
}

func scenarioFiles(dir string) ([]string, error) {
	var files []string
	for _, pattern := range []string{"*.json", "*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, err
		}
		files = append(files, matches...)
	}
	sort.Strings(files)
	return files, nil
}

// main scans the scenario directory and validates each file, printing a
// concise report and exiting with non-zero status if any are invalid.
func main() {
	scenarioDir := "../configs"
	if len(os.Args) > 1 {
		scenarioDir = os.Args[1]
	}

	files, err := scenarioFiles(scenarioDir)
	if err != nil {
		fmt.Printf("Error finding scenario files: %v\n", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Printf("No scenario files found in %s\n", scenarioDir)
		os.Exit(1)
	}

	allValid := true
	for _, file := range files {
		result := validateScenario(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Info {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				fmt.Println("  ❌ " + err)
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All scenarios are valid!")
	} else {
		fmt.Println("❌ Some scenarios have errors")
		os.Exit(1)
	}
}
