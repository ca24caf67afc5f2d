package api

import (
	"html/template"
	"io"

	"github.com/wricardo/robots-vs-dinosaurs/game/engine"
	"github.com/wricardo/robots-vs-dinosaurs/game/service"
)

var boardTemplate = template.Must(template.New("board").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Game {{.GameID}}</title>
<style>
body { font-family: monospace; }
table { border-collapse: collapse; }
td { width: 1.4em; height: 1.4em; text-align: center; border: 1px solid #ccc; }
td.robot { background: #cde; }
td.dinosaur { background: #ecc; }
</style>
</head>
<body>
<h1>Game {{.GameID}}</h1>
<p>Robots: {{.RobotCount}} | Dinosaurs: {{.DinosaurCount}} | Moves: {{.Moves}}{{if .Victory}} | All dinosaurs defeated{{end}}</p>
<table>
{{range .Rows}}<tr>{{range .}}<td class="{{.Kind}}" title="{{.Title}}">{{.Char}}</td>{{end}}</tr>
{{end}}</table>
</body>
</html>
`))

type boardCell struct {
	Kind  string
	Char  string
	Title string
}

type boardView struct {
	GameID        string
	RobotCount    int
	DinosaurCount int
	Moves         int
	Victory       bool
	Rows          [][]boardCell
}

// renderBoard writes an HTML table of the grid. Robots are shown by their
// facing when known.
func renderBoard(w io.Writer, game *service.GameSnapshot) error {
	facing := make(map[engine.Coordinate]engine.Robot, len(game.Robots))
	for _, r := range game.Robots {
		facing[r.Coordinate] = r
	}

	view := boardView{
		GameID:        game.GameID,
		RobotCount:    game.RobotCount,
		DinosaurCount: game.DinosaurCount,
		Moves:         game.Moves,
		Victory:       game.AllDinosaursDefeated,
		Rows:          make([][]boardCell, len(game.Grid)),
	}
	for row, cells := range game.Grid {
		view.Rows[row] = make([]boardCell, len(cells))
		for col, v := range cells {
			c := engine.At(row, col)
			cell := boardCell{
				Kind:  engine.CellKind(v),
				Char:  engine.CellChar(v),
				Title: c.String(),
			}
			if r, ok := facing[c]; ok {
				cell.Title = r.ID + " " + c.String() + " facing " + string(r.Direction)
			}
			view.Rows[row][col] = cell
		}
	}

	return boardTemplate.Execute(w, view)
}
