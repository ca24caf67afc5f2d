// Package mcp exposes the game to AI agents over the Model Context Protocol.
//
// The Client is a thin proxy: every tool call becomes one or more requests to
// the REST API, and the JSON responses are rendered as plain text with an
// ASCII board (R for robots, D for dinosaurs, . for empty cells).
//
// Tools:
//   - create_game, list_games, get_game, delete_game
//   - command_robot, bulk_command, add_dinosaur
//   - game_history, list_scenarios, game_instructions, describe_cell
//
// The same MCP server is served over stdio or mounted on the HTTP server
// at /mcp.
package mcp
