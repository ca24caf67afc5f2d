package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"

	"github.com/wricardo/robots-vs-dinosaurs/game/engine"
	"github.com/wricardo/robots-vs-dinosaurs/game/service"
	"github.com/wricardo/robots-vs-dinosaurs/pkg/logger"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
	log        *logrus.Entry
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		log: logger.WithComponent("mcp"),
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Robots vs Dinosaurs",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Robots vs Dinosaurs - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Command robots (R) around a square grid and attack until every dinosaur (D) is gone.

AVAILABLE TOOLS:
- create_game: Start a new game from a scenario or custom settings
- list_games / get_game / delete_game: Manage running games
- command_robot: One command for one robot - requires intent explanation
- bulk_command: Several commands for one robot, stops at the first failure
- add_dinosaur: Drop another dinosaur on the board
- game_history: View past commands
- list_scenarios: List available scenario presets
- game_instructions: Rules and strategy notes
- describe_cell: Inspect a single cell of the grid

NOTE: The 'intent' parameter on command tools serves as rubber duck debugging - explain your reasoning!`),
	)

	c.registerTools()
}

func gameIDProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Game ID",
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Game lifecycle
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_game",
		Description: "Create a new game. Use a named scenario, or set the grid size and entity counts directly",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"scenario": map[string]interface{}{
					"type":        "string",
					"description": "Scenario preset to start from (optional)",
				},
				"grid_dim": map[string]interface{}{
					"type":        "integer",
					"description": fmt.Sprintf("Side length of the square grid (%d-%d)", engine.MinGridDim, engine.MaxGridDim),
				},
				"robot_count": map[string]interface{}{
					"type":        "integer",
					"description": "Number of robots to place at random",
				},
				"dinosaur_count": map[string]interface{}{
					"type":        "integer",
					"description": "Number of dinosaurs to place at random",
				},
				"seed": map[string]interface{}{
					"type":        "integer",
					"description": "Random seed for reproducible placement",
				},
			},
		},
	}, c.handleCreateGame)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_games",
		Description: "List all running games",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListGames)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_game",
		Description: "Get the board, robots and dinosaurs of a game",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"game_id": gameIDProperty(),
			},
			Required: []string{"game_id"},
		},
	}, c.handleGetGame)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "delete_game",
		Description: "Delete a game",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"game_id": gameIDProperty(),
			},
			Required: []string{"game_id"},
		},
	}, c.handleDeleteGame)

	// Game operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "command_robot",
		Description: "Send one command to a robot",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"game_id": gameIDProperty(),
				"robot_id": map[string]interface{}{
					"type":        "string",
					"description": "Robot ID, or its index in the robot list. Defaults to the first robot",
				},
				"command": map[string]interface{}{
					"type":        "string",
					"enum":        commandNames(),
					"description": "Command to execute",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this command (serves as a rubber duck to help explain your reasoning)",
				},
			},
			Required: []string{"game_id", "command"},
		},
	}, c.handleCommand)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "bulk_command",
		Description: "Send several commands to one robot in sequence. Stops at the first failure",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"game_id": gameIDProperty(),
				"robot_id": map[string]interface{}{
					"type":        "string",
					"description": "Robot ID, or its index in the robot list. Defaults to the first robot",
				},
				"commands": map[string]interface{}{
					"type": "array",
					"items": map[string]interface{}{
						"type": "string",
						"enum": commandNames(),
					},
					"description": "Commands to execute in order",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this sequence (serves as a rubber duck to help explain your reasoning)",
				},
			},
			Required: []string{"game_id", "commands"},
		},
	}, c.handleBulkCommand)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "add_dinosaur",
		Description: "Add a dinosaur to a running game, at a given cell or at random",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"game_id": gameIDProperty(),
				"row": map[string]interface{}{
					"type":        "integer",
					"description": "Row of the cell (0-based, optional)",
				},
				"column": map[string]interface{}{
					"type":        "integer",
					"description": "Column of the cell (0-based, optional)",
				},
			},
			Required: []string{"game_id"},
		},
	}, c.handleAddDinosaur)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_history",
		Description: "Get the command history of a game",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"game_id": gameIDProperty(),
				"page": map[string]interface{}{
					"type":        "integer",
					"description": "Page number (1-based)",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Entries per page",
				},
			},
			Required: []string{"game_id"},
		},
	}, c.handleHistory)

	// Scenarios and help
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_scenarios",
		Description: "List available scenario presets",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListScenarios)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get the rules of the game and tips for playing it",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "describe_cell",
		Description: "Describe what occupies a single cell",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"game_id": gameIDProperty(),
				"row": map[string]interface{}{
					"type":        "integer",
					"description": "Row of the cell (0-based)",
				},
				"column": map[string]interface{}{
					"type":        "integer",
					"description": "Column of the cell (0-based)",
				},
			},
			Required: []string{"game_id", "row", "column"},
		},
	}, c.handleDescribeCell)
}

func commandNames() []string {
	names := make([]string, len(engine.Commands))
	for i, cmd := range engine.Commands {
		names[i] = string(cmd)
	}
	return names
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	if args == nil {
		return map[string]interface{}{}
	}
	return args
}

// intArg reads a numeric argument. JSON numbers arrive as float64.
func intArg(args map[string]interface{}, key string) (int, bool) {
	switch v := args[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case json.Number:
		n, err := v.Int64()
		return int(n), err == nil
	}
	return 0, false
}

func gamePath(gameID string, suffix string) string {
	return "/api/games/" + url.PathEscape(gameID) + suffix
}

// Tool handlers

func (c *Client) handleCreateGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)

	body := map[string]interface{}{}
	if scenario, _ := args["scenario"].(string); scenario != "" {
		body["scenario"] = scenario
	}
	for _, key := range []string{"grid_dim", "robot_count", "dinosaur_count", "seed"} {
		if v, ok := intArg(args, key); ok {
			body[key] = v
		}
	}

	var game service.GameSnapshot
	if err := c.apiCall(ctx, "POST", "/api/games", body, &game); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	c.log.WithField("game_id", game.GameID).Debug("game created over MCP")
	result := fmt.Sprintf("Created game: %s\n\n%s", game.GameID, formatGame(&game))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListGames(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count int                    `json:"count"`
		Games []service.GameSnapshot `json:"games"`
	}

	if err := c.apiCall(ctx, "GET", "/api/games", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Running Games (%d):\n\n", response.Count)
	for _, g := range response.Games {
		fmt.Fprintf(&b, "- %s (%dx%d, robots: %d, dinosaurs: %d, moves: %d, created: %s)\n",
			g.GameID, g.Dim, g.Dim, g.RobotCount, g.DinosaurCount, g.Moves, g.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	gameID, _ := arguments(request)["game_id"].(string)

	var game service.GameSnapshot
	if err := c.apiCall(ctx, "GET", gamePath(gameID, ""), nil, &game); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGame(&game)), nil
}

func (c *Client) handleDeleteGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	gameID, _ := arguments(request)["game_id"].(string)

	var response struct {
		Message string `json:"message"`
	}
	if err := c.apiCall(ctx, "DELETE", gamePath(gameID, ""), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(response.Message), nil
}

func (c *Client) handleCommand(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	gameID, _ := args["game_id"].(string)
	robotID, _ := args["robot_id"].(string)
	command, _ := args["command"].(string)

	// Intent parameter serves as rubber duck debugging - we don't need to process it further
	_, _ = args["intent"].(string)

	var result service.CommandResult
	body := map[string]string{"robot_id": robotID, "command": command}
	if err := c.apiCall(ctx, "POST", gamePath(gameID, "/commands"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatCommandResult(&result)), nil
}

func (c *Client) handleBulkCommand(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	gameID, _ := args["game_id"].(string)
	robotID, _ := args["robot_id"].(string)
	commandsRaw, _ := args["commands"].([]interface{})

	commands := make([]string, 0, len(commandsRaw))
	for _, cmd := range commandsRaw {
		if s, ok := cmd.(string); ok {
			commands = append(commands, s)
		}
	}
	if len(commands) == 0 {
		return mcp.NewToolResultError("commands must not be empty"), nil
	}

	var (
		b    strings.Builder
		last *service.CommandResult
	)
	executed := 0
	for i, command := range commands {
		var result service.CommandResult
		body := map[string]string{"robot_id": robotID, "command": command}
		if err := c.apiCall(ctx, "POST", gamePath(gameID, "/commands"), body, &result); err != nil {
			fmt.Fprintf(&b, "%d. %s ✗ %s\n", i+1, command, err.Error())
			break
		}
		executed++
		last = &result
		fmt.Fprintf(&b, "%d. %s ✓ %s\n", i+1, command, result.Message)
		if result.Game != nil && result.Game.AllDinosaursDefeated {
			break
		}
	}

	header := fmt.Sprintf("Executed %d/%d commands\n\n", executed, len(commands))
	if last != nil && last.Game != nil {
		return mcp.NewToolResultText(header + b.String() + "\n" + formatGame(last.Game)), nil
	}
	return mcp.NewToolResultText(header + b.String()), nil
}

func (c *Client) handleAddDinosaur(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	gameID, _ := args["game_id"].(string)

	body := map[string]interface{}{}
	row, hasRow := intArg(args, "row")
	col, hasCol := intArg(args, "column")
	if hasRow != hasCol {
		return mcp.NewToolResultError("row and column must be given together"), nil
	}
	if hasRow {
		body["coordinate"] = engine.At(row, col)
	}

	var result service.DinosaurResult
	if err := c.apiCall(ctx, "POST", gamePath(gameID, "/dinosaurs"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	text := fmt.Sprintf("Dinosaur added at %s\n\n%s", result.Coordinate, formatGame(result.Game))
	return mcp.NewToolResultText(text), nil
}

func (c *Client) handleHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	gameID, _ := args["game_id"].(string)

	params := url.Values{}
	if page, ok := intArg(args, "page"); ok {
		params.Set("page", fmt.Sprint(page))
	}
	if limit, ok := intArg(args, "limit"); ok {
		params.Set("limit", fmt.Sprint(limit))
	}
	path := gamePath(gameID, "/history")
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var history service.HistoryResponse
	if err := c.apiCall(ctx, "GET", path, nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handleListScenarios(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var scenarios []service.ScenarioInfo
	if err := c.apiCall(ctx, "GET", "/api/scenarios", nil, &scenarios); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Scenarios:\n\n")
	for _, s := range scenarios {
		fmt.Fprintf(&b, "• %s (%s)\n  %s\n  Grid: %dx%d, Robots: %d, Dinosaurs: %d\n\n",
			s.ScenarioID, s.Name, s.Description, s.GridDim, s.GridDim, s.RobotCount, s.DinosaurCount)
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(instructions), nil
}

func (c *Client) handleDescribeCell(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	gameID, _ := args["game_id"].(string)
	row, okRow := intArg(args, "row")
	col, okCol := intArg(args, "column")
	if !okRow || !okCol {
		return mcp.NewToolResultError("row and column are required"), nil
	}

	var game service.GameSnapshot
	if err := c.apiCall(ctx, "GET", gamePath(gameID, ""), nil, &game); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(describeCell(&game, engine.At(row, col))), nil
}

const instructions = `Robots vs Dinosaurs - Complete Instructions

GAME OBJECTIVE:
Defeat every dinosaur on the board using your robots.

GRID LEGEND:
• R - Robot
• D - Dinosaur
• . - Empty cell
Rows grow downward from 0, columns grow rightward from 0.

DIRECTIONS:
• N - toward row 0
• S - toward the last row
• E - toward the last column
• W - toward column 0

COMMANDS:
• forward - step one cell in the facing direction
• backward - step one cell against the facing direction (facing is unchanged)
• turn_right - rotate clockwise (N→E→S→W)
• turn_left - rotate counter-clockwise
• attack - hit every dinosaur on the four cells next to the robot

RULES:
• A move into a wall or an occupied cell fails and changes nothing
• Robots are never destroyed and never block each other's attacks
• A failed command does not count as a move
• Dinosaurs never move; new ones can be added while the game runs

STRATEGY:
• Use describe_cell or get_game before long sequences to check the path
• One attack clears up to four dinosaurs: stand in the middle of a cluster
• bulk_command stops at the first failure so the board never drifts from your plan

VICTORY CONDITIONS:
- The game is won when no dinosaur remains
- Robots can keep moving after victory; adding a dinosaur resumes the hunt

Good luck!`
