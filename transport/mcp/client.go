package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/gridball/game/engine"
	"github.com/wricardo/gridball/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Gridball",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Gridball - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Pick up the ball (o) with one of your carriers and run it into the endzone (E).

HOW TO PLAY:
1. left_click a carrier to select it; its reachable cells are listed
2. left_click a reachable cell to plan a path there
3. left_click the same cell again to confirm; the carrier moves
4. right_click anywhere cancels the current selection
5. end_turn hands control to the enemy when you are done

AVAILABLE TOOLS:
- create_session, list_sessions: manage games
- game_state: board, selection and status
- left_click, right_click: pointer input on a (column,row) cell
- end_turn: finish the player turn
- tick: advance a running move frame by frame
- reset_game: restart the level
- list_configs: available levels
- describe_cell: terrain, occupant and range of one cell
- game_instructions: full rules`),
	)

	// Register all tools
	c.registerTools()
}

func sessionProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

func cellProperties() map[string]interface{} {
	return map[string]interface{}{
		"session_id": sessionProperty(),
		"column": map[string]interface{}{
			"type":        "integer",
			"description": "Column of the clicked cell (0-based, left to right)",
		},
		"row": map[string]interface{}{
			"type":        "integer",
			"description": "Row of the clicked cell (0-based, top to bottom)",
		},
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session with optional level selection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_id": map[string]interface{}{
					"type":        "string",
					"description": "ID of the level to play (optional, see list_configs)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	// Game operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the current board, selection and game status",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGameState)

	leftProps := cellProperties()
	leftProps["intent"] = map[string]interface{}{
		"type":        "string",
		"description": "Brief explanation of what this click should achieve",
	}
	leftProps["settle"] = map[string]interface{}{
		"type":        "boolean",
		"description": "Run frames until a started move finishes (default true)",
	}
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "left_click",
		Description: "Left click a cell: select a carrier, plan a path to a reachable cell, or click the planned target again to move",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: leftProps,
			Required:   []string{"session_id", "column", "row"},
		},
	}, c.handleLeftClick)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "right_click",
		Description: "Right click a cell: cancel the current selection or planned path",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: cellProperties(),
			Required:   []string{"session_id", "column", "row"},
		},
	}, c.handleRightClick)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "end_turn",
		Description: "End the player turn; the enemy acts and control returns to the player",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleEndTurn)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "tick",
		Description: "Advance the game clock by a number of frames",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"frames": map[string]interface{}{
					"type":        "integer",
					"description": fmt.Sprintf("Frames to run (1-%d)", engine.MaxSettleFrames),
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleTick)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_game",
		Description: "Reset the game to its initial state",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleReset)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available levels",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get comprehensive game instructions and rules",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "describe_cell",
		Description: "Describe one cell: terrain, occupant, whether it can be entered, and whether it is in the selected carrier's range or planned path",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: cellProperties(),
			Required:   []string{"session_id", "column", "row"},
		},
	}, c.handleDescribeCell)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	url := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
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

// intArg reads a JSON number argument
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

func cellArgs(args map[string]interface{}) (string, int, int, error) {
	sessionID, _ := args["session_id"].(string)
	if sessionID == "" {
		return "", 0, 0, fmt.Errorf("session_id is required")
	}
	column, ok := intArg(args, "column")
	if !ok {
		return "", 0, 0, fmt.Errorf("column is required")
	}
	row, ok := intArg(args, "row")
	if !ok {
		return "", 0, 0, fmt.Errorf("row is required")
	}
	return sessionID, column, row, nil
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	configID, _ := args["config_id"].(string)

	body := map[string]string{}
	if configID != "" {
		body["config_id"] = configID
	}

	var session service.SessionInfo
	err := c.apiCall(ctx, "POST", "/api/sessions", body, &session)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nLevel: %s\n\n%s", session.ID, session.ConfigName, formatGameState(session.GameState))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		mode := ""
		if s.GameState != nil {
			mode = fmt.Sprintf(", Turn %d, %s", s.GameState.Turn, s.GameState.Mode)
		}
		result += fmt.Sprintf("- %s (Level: %s%s, Created: %s)\n",
			s.ID, s.ConfigName, mode, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var state engine.GameState
	err := c.apiCall(ctx, "GET", fmt.Sprintf("/api/sessions/%s/state", sessionID), nil, &state)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameState(&state)), nil
}

func (c *Client) click(ctx context.Context, request mcp.CallToolRequest, button string) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, column, row, err := cellArgs(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	// Intent is a rubber duck for the caller and is not sent on
	settle := true
	if v, ok := args["settle"].(bool); ok {
		settle = v
	}

	body := map[string]interface{}{
		"button": button,
		"column": column,
		"row":    row,
		"settle": settle,
	}

	var result service.ActionResult
	err = c.apiCall(ctx, "POST", fmt.Sprintf("/api/sessions/%s/click", sessionID), body, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatActionResult(fmt.Sprintf("%s click (%d,%d)", button, column, row), &result)), nil
}

func (c *Client) handleLeftClick(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.click(ctx, request, "left")
}

func (c *Client) handleRightClick(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.click(ctx, request, "right")
}

func (c *Client) handleEndTurn(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var result service.ActionResult
	err := c.apiCall(ctx, "POST", fmt.Sprintf("/api/sessions/%s/end-turn", sessionID), nil, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatActionResult("end turn", &result)), nil
}

func (c *Client) handleTick(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	frames, ok := intArg(args, "frames")
	if !ok {
		frames = 1
	}

	var result service.ActionResult
	err := c.apiCall(ctx, "POST", fmt.Sprintf("/api/sessions/%s/tick", sessionID), map[string]int{"frames": frames}, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatActionResult(fmt.Sprintf("tick %d", frames), &result)), nil
}

func (c *Client) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var response struct {
		Message string            `json:"message"`
		State   *engine.GameState `json:"state"`
	}

	err := c.apiCall(ctx, "POST", fmt.Sprintf("/api/sessions/%s/reset", sessionID), nil, &response)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("%s\n\n%s", response.Message, formatGameState(response.State))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	err := c.apiCall(ctx, "GET", "/api/configs", nil, &configs)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := "Available Levels:\n\n"
	for _, config := range configs {
		result += fmt.Sprintf("• %s (id: %s)\n  %s\n  Grid: %dx%d, Actors: %d, Enemy: %s\n\n",
			config.Name, config.ConfigID, config.Description,
			config.Columns, config.Rows, config.Actors, config.EnemyPolicy)
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `Gridball - Complete Instructions

GAME OBJECTIVE:
Carry the ball into an endzone cell. The level's victory message is shown when you score.

GRID LEGEND:
• . = open ground
• E = endzone
• C = your carrier (selectable, can carry the ball)
• B = blocker (solid, blocks paths)
• # = wall (solid)
• o = loose ball
• @ = carrier holding the ball
• * = cell in the selected carrier's movement range
• + = cell on the planned path

COORDINATES:
Cells are addressed as (column,row), both 0-based, with (0,0) at the top left.

TURN FLOW:
1. PLAYER IDLE: left_click one of your carriers to select it.
   The selected carrier's range is every cell it can reach in at most its
   movement range of steps, going around solid actors and walls.
2. PLAYER SELECTED: left_click a cell in range to plan the shortest path.
   Clicking a cell outside the range is ignored.
3. PLAYER PATHING: left_click the same target again to confirm and move.
   Clicking a different cell in range plans a new path instead.
4. PLAYER MOVING: the carrier walks the path one cell at a time. Input is
   locked until it arrives. left_click settles the move by default; pass
   settle=false and use tick to watch it frame by frame.
5. right_click at any point before moving cancels back to idle.
6. end_turn passes control to the enemy, who acts and hands it back.

THE BALL:
• A carrier that stops on the ball picks it up.
• A carrier holding the ball that stops on an endzone cell scores.
• A loose ball that is bumped bounces one cell away when that cell is free.

STRATEGY:
• Check describe_cell before planning if you are unsure a cell is in range.
• The shortest path is recomputed on every plan; blockers change the route.
• Plan around enemy blockers; they move on their turn.

Good luck!`

	return mcp.NewToolResultText(instructions), nil
}

func (c *Client) handleDescribeCell(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, column, row, err := cellArgs(arguments(request))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var cell service.CellInfo
	err = c.apiCall(ctx, "GET", fmt.Sprintf("/api/sessions/%s/cells/%d/%d", sessionID, column, row), nil, &cell)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatCell(&cell)), nil
}

// Formatting helpers

func formatCell(cell *service.CellInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Cell (%d,%d)\n", cell.Column, cell.Row)
	fmt.Fprintf(&b, "Terrain: %s\n", cell.Terrain)
	if cell.Occupant != nil {
		fmt.Fprintf(&b, "Occupant: %s (%s, team %s, id %s)\n", cell.Occupant.Name, cell.Occupant.Kind, cell.Occupant.Team, cell.Occupant.ID)
	} else {
		b.WriteString("Occupant: none\n")
	}
	fmt.Fprintf(&b, "Traversable: %s\n", yesNo(cell.Traversable))
	fmt.Fprintf(&b, "In selected range: %s\n", yesNo(cell.InRange))
	fmt.Fprintf(&b, "On planned path: %s\n", yesNo(cell.OnPath))
	return b.String()
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

func formatActionResult(action string, result *service.ActionResult) string {
	var b strings.Builder
	if result.Fired {
		fmt.Fprintf(&b, "✓ %s accepted\n", action)
	} else {
		fmt.Fprintf(&b, "✗ %s ignored\n", action)
	}
	if result.Message != "" {
		fmt.Fprintf(&b, "%s\n", result.Message)
	}
	if result.FramesRun > 0 {
		fmt.Fprintf(&b, "Frames run: %d", result.FramesRun)
		if !result.Settled {
			b.WriteString(" (move still running, call tick)")
		}
		b.WriteString("\n")
	}

	if len(result.Events) > 0 {
		b.WriteString("Events:\n")
		for _, event := range result.Events {
			fmt.Fprintf(&b, "- %s: %s\n", event.Type, event.Message)
		}
	}

	b.WriteString("\n")
	b.WriteString(formatGameState(result.GameState))
	return b.String()
}

func formatGameState(state *engine.GameState) string {
	if state == nil {
		return "No game state available"
	}

	var result strings.Builder

	fmt.Fprintf(&result, "Level: %s | Turn: %d | Mode: %s | Frame: %d\n",
		state.ConfigName, state.Turn, state.Mode, state.Frame)

	if state.SelectedID != "" {
		fmt.Fprintf(&result, "Selected: %s", state.SelectedID)
		if state.TargetNode != nil {
			fmt.Fprintf(&result, " → target %s", state.TargetNode)
		}
		result.WriteString("\n")
		for _, field := range state.HUD {
			fmt.Fprintf(&result, "  %s: %s\n", field.Key, field.Value)
		}
	}
	result.WriteString("\n")
	result.WriteString(formatBoard(state))

	if len(state.SelectedRange) > 0 {
		result.WriteString("\nReachable: ")
		result.WriteString(formatSpaces(state.SelectedRange))
		result.WriteString("\n")
	}
	if len(state.SelectedPath) > 0 {
		// stored goal first, shown in walking order
		path := make([]engine.Space, len(state.SelectedPath))
		for i, s := range state.SelectedPath {
			path[len(path)-1-i] = s
		}
		result.WriteString("Path: ")
		result.WriteString(formatSpaces(path))
		result.WriteString("\n")
	}

	// Status
	if state.GameOver {
		if state.Victory {
			result.WriteString("\n🎉 VICTORY!")
		} else {
			result.WriteString("\n💀 GAME OVER")
		}
	}

	if state.Message != "" {
		fmt.Fprintf(&result, "\nMessage: %s", state.Message)
	}

	return result.String()
}

func formatSpaces(spaces []engine.Space) string {
	parts := make([]string, len(spaces))
	for i, s := range spaces {
		parts[i] = s.String()
	}
	return strings.Join(parts, " ")
}

// formatBoard renders the grid with column numbers on top and row numbers on the left
func formatBoard(state *engine.GameState) string {
	if state.Columns == 0 || state.Rows == 0 {
		return ""
	}

	marks := make(map[engine.Space]string)
	for _, s := range state.SelectedRange {
		marks[s] = "*"
	}
	for _, s := range state.SelectedPath {
		marks[s] = "+"
	}

	var b strings.Builder
	b.WriteString("   ")
	for col := 0; col < state.Columns; col++ {
		fmt.Fprintf(&b, "%d", col%10)
	}
	b.WriteString("\n")

	for row := 0; row < state.Rows; row++ {
		fmt.Fprintf(&b, "%2d ", row)
		for col := 0; col < state.Columns; col++ {
			b.WriteString(cellChar(state, col, row, marks))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func cellChar(state *engine.GameState, column, row int, marks map[engine.Space]string) string {
	if occupant := state.Occupant(column, row); occupant != nil {
		return actorChar(occupant)
	}
	if mark, ok := marks[engine.Space{Column: column, Row: row}]; ok {
		return mark
	}
	if state.TerrainAt(column, row) == engine.Endzone {
		return string(engine.LayoutEndzone)
	}
	return string(engine.LayoutBlank)
}

func actorChar(actor *engine.ActorView) string {
	if actor.CarryingID != "" {
		return "@"
	}
	if actor.Glyph != "" {
		return actor.Glyph
	}
	switch actor.Kind {
	case engine.KindCarrier:
		return "C"
	case engine.KindBlocker:
		return "B"
	case engine.KindBall:
		return "o"
	case engine.KindWall:
		return "#"
	}
	return "?"
}
