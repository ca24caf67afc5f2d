package mcp

import (
	"fmt"
	"strings"

	"github.com/wricardo/robots-vs-dinosaurs/game/engine"
	"github.com/wricardo/robots-vs-dinosaurs/game/service"
)

// formatGame renders the summary, robot list and ASCII board of a game
func formatGame(game *service.GameSnapshot) string {
	if game == nil {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Game %s (%dx%d)\n", game.GameID, game.Dim, game.Dim)
	fmt.Fprintf(&b, "Robots: %d | Dinosaurs: %d | Moves: %d\n", game.RobotCount, game.DinosaurCount, game.Moves)
	if game.AllDinosaursDefeated {
		b.WriteString("🎉 VICTORY! All dinosaurs defeated\n")
	}

	b.WriteString("\nRobots:\n")
	for i, r := range game.Robots {
		fmt.Fprintf(&b, "  [%d] %s at %s facing %s\n", i, r.ID, r.Coordinate, r.Direction)
	}

	b.WriteString("\nBoard:\n")
	b.WriteString(formatBoard(game.Grid))
	return b.String()
}

// formatBoard renders the grid one row per line with a column ruler
func formatBoard(grid [][]int) string {
	var b strings.Builder
	if len(grid) == 0 {
		return ""
	}

	b.WriteString("    ")
	for col := range grid[0] {
		b.WriteString(fmt.Sprint(col % 10))
	}
	b.WriteString("\n")

	for row, cells := range grid {
		fmt.Fprintf(&b, "%3d ", row)
		for _, v := range cells {
			b.WriteString(engine.CellChar(v))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func formatCommandResult(result *service.CommandResult) string {
	var b strings.Builder
	if result.Success {
		fmt.Fprintf(&b, "✓ %s\n", result.Message)
	} else {
		fmt.Fprintf(&b, "✗ %s\n", result.Message)
	}

	if o := result.Outcome; o != nil {
		fmt.Fprintf(&b, "Robot %s: %s %s→%s facing %s (move #%d)\n",
			o.RobotID, o.Command, o.From, o.To, o.ToDirection, o.MoveNumber)
		if len(o.Defeated) > 0 {
			fmt.Fprintf(&b, "Defeated: %s\n", joinCoordinates(o.Defeated))
		}
		if len(o.Damaged) > 0 {
			fmt.Fprintf(&b, "Damaged: %s\n", joinCoordinates(o.Damaged))
		}
	}

	if result.Game != nil {
		if near := nearestHint(result.Game, result.Outcome); near != "" {
			b.WriteString(near + "\n")
		}
		b.WriteString("\n")
		b.WriteString(formatGame(result.Game))
	}
	return b.String()
}

// nearestHint points the commanded robot at the closest dinosaur
func nearestHint(game *service.GameSnapshot, o *engine.Outcome) string {
	if o == nil || game.AllDinosaursDefeated {
		return ""
	}
	target, distance, ok := engine.NearestDinosaur(game.State(), o.To)
	if !ok {
		return ""
	}
	return fmt.Sprintf("Nearest dinosaur: %s, %d steps away", target, distance)
}

func formatHistory(history *service.HistoryResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Command History (Page %d/%d), Total: %d\n\n",
		history.Page, history.TotalPages, history.TotalCommands)

	for _, cmd := range history.Commands {
		fmt.Fprintf(&b, "#%d %s %s %s→%s facing %s",
			cmd.MoveNumber, cmd.RobotID, cmd.Command, cmd.From, cmd.To, cmd.Direction)
		if len(cmd.Defeated) > 0 {
			fmt.Fprintf(&b, " defeated %s", joinCoordinates(cmd.Defeated))
		}
		b.WriteString("\n")
	}
	if len(history.Commands) == 0 {
		b.WriteString("(no commands on this page)\n")
	}

	return b.String()
}

func describeCell(game *service.GameSnapshot, c engine.Coordinate) string {
	if c.Row < 0 || c.Column < 0 || c.Row >= len(game.Grid) || c.Column >= len(game.Grid[c.Row]) {
		return fmt.Sprintf("Cell %s is outside the %dx%d grid", c, game.Dim, game.Dim)
	}

	value := game.Grid[c.Row][c.Column]
	var b strings.Builder
	fmt.Fprintf(&b, "Cell %s: %s (%s)\n", c, engine.CellKind(value), engine.CellChar(value))

	switch {
	case value < 0:
		for _, r := range game.Robots {
			if r.Coordinate == c {
				fmt.Fprintf(&b, "Robot %s facing %s\n", r.ID, r.Direction)
			}
		}
	case value > 0:
		fmt.Fprintf(&b, "Life: %d\n", value)
	}

	if hits := engine.AdjacentDinosaurs(game.State(), c); len(hits) > 0 {
		fmt.Fprintf(&b, "Adjacent dinosaurs: %s\n", joinCoordinates(hits))
	}
	return b.String()
}

func joinCoordinates(cs []engine.Coordinate) string {
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = c.String()
	}
	return strings.Join(parts, ", ")
}
