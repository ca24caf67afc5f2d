// Package service provides the business logic layer for Robots vs Dinosaurs.
//
// The service package implements:
//   - Creation of games from scenario presets or ad-hoc requests
//   - Robot command parsing and dispatch
//   - Per-game locking so independent games run in parallel
//   - Paginated command history
//
// Core Interfaces:
//
// GameService is the main service interface used by the HTTP, WebSocket and
// MCP transports. SessionManager stores live games and ConfigManager loads
// scenario presets. Both are injected so the service holds no global state.
//
// Usage:
//
//	sessions := session.NewManager()
//	configs, _ := config.NewManager("configs")
//	svc := service.NewGameService(sessions, configs)
//
//	dim := 10
//	game, err := svc.CreateGame(ctx, service.CreateGameRequest{GridDim: &dim, DinosaurCount: 5})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Robots can be addressed by id or by index
//	result, err := svc.ApplyCommand(ctx, game.GameID, "0", "attack")
package service
