// Package config loads Robots vs Dinosaurs scenario presets.
//
// A scenario is a JSON or YAML file in the scenario directory describing the
// grid dimension and the robots and dinosaurs to place, either as random
// counts or as explicit coordinate lists:
//
//	{
//	  "name": "skirmish",
//	  "grid_dim": 5,
//	  "robots": [{"coordinate": [2, 2], "direction": "N"}],
//	  "dinosaurs": [[1, 2], [3, 2], [2, 1], [2, 3]]
//	}
//
// Coordinates may be written as [row, column] pairs or {"row", "column"}
// objects. Every file is validated with engine.ValidateScenario when loaded
// and cached by its base name.
//
// The default scenario is classic when present, otherwise the first valid file,
// otherwise a built-in one robot versus one dinosaur game.
package config
