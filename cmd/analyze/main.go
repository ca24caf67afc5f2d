// Command analyze prints quick, human-readable heuristics about the scenario
// presets in the project's configs directory. Each scenario is populated once
// with a fixed seed; the report covers board density, free cells and how far
// each robot starts from its nearest dinosaur.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/wricardo/robots-vs-dinosaurs/game/config"
	"github.com/wricardo/robots-vs-dinosaurs/game/engine"
)

// analysisSeed keeps reports reproducible between runs
const analysisSeed = 7

// RobotReport describes one robot's starting situation
type RobotReport struct {
	ID              string
	Coordinate      engine.Coordinate
	Direction       engine.Direction
	NearestDinosaur engine.Coordinate
	Distance        int
	InReach         int // dinosaurs a first attack would hit
}

// ScenarioReport is the analysis of a single populated scenario
type ScenarioReport struct {
	Name      string
	GridDim   int
	Robots    int
	Dinosaurs int
	FreeCells int
	Density   float64
	RobotInfo []RobotReport
}

func analyzeScenario(s *engine.Scenario) (*ScenarioReport, error) {
	game, err := engine.NewGameFromScenario(s, engine.WithSeed(analysisSeed))
	if err != nil {
		return nil, err
	}

	state := game.State()
	cells := state.Dim * state.Dim
	report := &ScenarioReport{
		Name:      s.Name,
		GridDim:   state.Dim,
		Robots:    state.RobotCount,
		Dinosaurs: state.DinosaurCount,
		FreeCells: len(game.Grid().EmptyCells()),
		Density:   float64(cells-len(game.Grid().EmptyCells())) / float64(cells),
	}

	for _, r := range state.Robots {
		info := RobotReport{
			ID:         r.ID,
			Coordinate: r.Coordinate,
			Direction:  r.Direction,
			InReach:    len(engine.AdjacentDinosaurs(state, r.Coordinate)),
		}
		if target, distance, ok := engine.NearestDinosaur(state, r.Coordinate); ok {
			info.NearestDinosaur = target
			info.Distance = distance
		}
		report.RobotInfo = append(report.RobotInfo, info)
	}
	return report, nil
}

func printReport(w io.Writer, report *ScenarioReport) {
	fmt.Fprintf(w, "Name: %s\n", report.Name)
	fmt.Fprintf(w, "Grid Size: %d x %d\n", report.GridDim, report.GridDim)
	fmt.Fprintf(w, "Robots: %d\n", report.Robots)
	fmt.Fprintf(w, "Dinosaurs: %d\n", report.Dinosaurs)
	fmt.Fprintf(w, "Free Cells: %d (density %.1f%%)\n", report.FreeCells, report.Density*100)

	ready := 0
	for _, r := range report.RobotInfo {
		fmt.Fprintf(w, "  %s at %s facing %s: nearest dinosaur %s, %d steps",
			r.ID, r.Coordinate, r.Direction, r.NearestDinosaur, r.Distance)
		if r.InReach > 0 {
			ready++
			fmt.Fprintf(w, ", %d in reach", r.InReach)
		}
		fmt.Fprintln(w)
	}

	if ready > 0 {
		fmt.Fprintf(w, "⚡ %d robot(s) can attack on their first command\n", ready)
	}
	if report.FreeCells == 0 {
		fmt.Fprintf(w, "⚠️  WARNING: board is full, no robot can move\n")
	} else {
		fmt.Fprintf(w, "✅ %d free cells to manoeuvre\n", report.FreeCells)
	}
}

func main() {
	scenarioDir := "configs"
	if len(os.Args) > 1 {
		scenarioDir = os.Args[1]
	}

	var files []string
	for _, pattern := range []string{"*.json", "*.yaml", "*.yml"} {
		matches, _ := filepath.Glob(filepath.Join(scenarioDir, pattern))
		files = append(files, matches...)
	}
	sort.Strings(files)

	for _, file := range files {
		fmt.Printf("\n=== Analyzing %s ===\n", filepath.Base(file))

		s, err := config.LoadScenarioFile(file)
		if err != nil {
			fmt.Printf("Error loading scenario: %v\n", err)
			continue
		}
		report, err := analyzeScenario(s)
		if err != nil {
			fmt.Printf("Error populating scenario: %v\n", err)
			continue
		}
		printReport(os.Stdout, report)
	}
}
