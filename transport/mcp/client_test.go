package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/wricardo/gridball/game/engine"
	"github.com/wricardo/gridball/game/service"
)

func toolRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result == nil {
		t.Fatal("Expected result, got nil")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatal("Expected text content in result")
	}
	return text.Text
}

// smallState is a 3x2 board with a carrier at (0,1), the ball at (1,1) and
// an endzone along the top row
func smallState() *engine.GameState {
	return &engine.GameState{
		ConfigName: "tiny",
		Mode:       "player_selected",
		Turn:       1,
		Columns:    3,
		Rows:       2,
		Cells: []engine.CellView{
			{Column: 0, Row: 0, Terrain: engine.Endzone},
			{Column: 1, Row: 0, Terrain: engine.Endzone},
			{Column: 2, Row: 0, Terrain: engine.Endzone},
			{Column: 0, Row: 1, Terrain: engine.Blank, OccupantID: "runner"},
			{Column: 1, Row: 1, Terrain: engine.Blank, OccupantID: "ball"},
			{Column: 2, Row: 1, Terrain: engine.Blank},
		},
		Actors: []engine.ActorView{
			{ID: "runner", Name: "Runner", Kind: engine.KindCarrier, Glyph: "C"},
			{ID: "ball", Name: "Ball", Kind: engine.KindBall, Glyph: "o"},
		},
		SelectedID:    "runner",
		SelectedRange: []engine.Space{{Column: 0, Row: 0}, {Column: 2, Row: 1}},
		CanClick:      true,
		Message:       "Get the ball to the endzone",
	}
}

func TestNewClient(t *testing.T) {
	baseURL := "http://localhost:8080"
	client := NewClient(baseURL + "/")

	if client == nil {
		t.Fatal("Expected client to be created")
	}

	if client.baseURL != baseURL {
		t.Errorf("Expected baseURL %s, got %s", baseURL, client.baseURL)
	}

	if client.httpClient == nil {
		t.Error("Expected HTTP client to be initialized")
	}

	if client.GetMCPServer() == nil {
		t.Error("Expected MCP server to be initialized")
	}
}

func TestClient_apiCall(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"id": "a1b2"})
	}))
	defer server.Close()

	client := NewClient(server.URL)

	var response map[string]interface{}
	if err := client.apiCall(context.Background(), "GET", "/api/sessions/a1b2", nil, &response); err != nil {
		t.Fatalf("apiCall failed: %v", err)
	}

	if response["id"] != "a1b2" {
		t.Errorf("Expected id a1b2, got %v", response["id"])
	}
}

func TestClient_apiCall_Error(t *testing.T) {
	client := NewClient("http://invalid-url-that-does-not-exist:9999")

	if err := client.apiCall(context.Background(), "GET", "/api/health", nil, nil); err == nil {
		t.Error("Expected error for invalid URL")
	}
}

func TestClient_apiCall_HTTPError(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		expected string
	}{
		{"plain error body", http.StatusInternalServerError, "Internal Server Error", "API error: 500"},
		{"json error body", http.StatusNotFound, `{"error":"session zz: session not found"}`, "session zz: session not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			err := NewClient(server.URL).apiCall(context.Background(), "GET", "/api", nil, nil)
			if err == nil {
				t.Fatal("Expected error")
			}
			if err.Error() != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, err.Error())
			}
		})
	}
}

func TestClient_createSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" || r.URL.Path != "/api/sessions" {
			t.Errorf("Expected POST /api/sessions, got %s %s", r.Method, r.URL.Path)
		}

		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["config_id"] != "tiny" {
			t.Errorf("Expected config_id tiny, got %q", body["config_id"])
		}

		resp := service.SessionInfo{
			ID:         "a1b2",
			ConfigName: "tiny",
			GameState:  smallState(),
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.handleCreateSession(context.Background(), toolRequest("create_session", map[string]interface{}{
		"config_id": "tiny",
	}))
	if err != nil {
		t.Fatalf("createSession failed: %v", err)
	}

	text := resultText(t, result)
	if !strings.Contains(text, "a1b2") {
		t.Errorf("Expected session ID in result, got: %s", text)
	}
}

func TestClient_leftClick(t *testing.T) {
	var got map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/sessions/a1b2/click" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&got)

		state := smallState()
		state.Mode = "player_idle"
		json.NewEncoder(w).Encode(service.ActionResult{
			Fired:     true,
			Mode:      "player_idle",
			FramesRun: 4,
			Settled:   true,
			GameState: state,
			Events: []service.GameEvent{
				{Type: "move_started", Message: "Runner moving"},
				{Type: "move_finished", Message: "Runner arrived"},
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.handleLeftClick(context.Background(), toolRequest("left_click", map[string]interface{}{
		"session_id": "a1b2",
		"column":     float64(2),
		"row":        float64(1),
		"intent":     "run right",
	}))
	if err != nil {
		t.Fatalf("left_click failed: %v", err)
	}

	if got["button"] != "left" || got["column"] != float64(2) || got["row"] != float64(1) || got["settle"] != true {
		t.Errorf("Unexpected click body: %v", got)
	}
	if _, ok := got["intent"]; ok {
		t.Error("intent should not be forwarded")
	}

	text := resultText(t, result)
	for _, want := range []string{"✓ left click (2,1) accepted", "Frames run: 4", "move_finished: Runner arrived"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in result, got: %s", want, text)
		}
	}
}

func TestClient_clickRequiresCoordinates(t *testing.T) {
	client := NewClient("http://localhost:1")

	tests := []map[string]interface{}{
		{"column": float64(1), "row": float64(1)},
		{"session_id": "a1b2", "row": float64(1)},
		{"session_id": "a1b2", "column": float64(1)},
	}

	for _, args := range tests {
		result, err := client.handleRightClick(context.Background(), toolRequest("right_click", args))
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if !result.IsError {
			t.Errorf("Expected tool error for %v", args)
		}
	}
}

func TestClient_tickDefaultsToOneFrame(t *testing.T) {
	var body map[string]int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&body)
		json.NewEncoder(w).Encode(service.ActionResult{FramesRun: 1, GameState: smallState()})
	}))
	defer server.Close()

	_, err := NewClient(server.URL).handleTick(context.Background(), toolRequest("tick", map[string]interface{}{
		"session_id": "a1b2",
	}))
	if err != nil {
		t.Fatalf("tick failed: %v", err)
	}
	if body["frames"] != 1 {
		t.Errorf("Expected 1 frame, got %d", body["frames"])
	}
}

func TestFormatGameState(t *testing.T) {
	result := formatGameState(smallState())

	expected := []string{
		"Level: tiny | Turn: 1 | Mode: player_selected",
		"Selected: runner",
		"   012\n",
		" 0 *EE\n",
		" 1 Co*\n",
		"Reachable: (0,0) (2,1)",
		"Message: Get the ball to the endzone",
	}

	for _, field := range expected {
		if !strings.Contains(result, field) {
			t.Errorf("Expected %q in formatted output, got:\n%s", field, result)
		}
	}
}

func TestFormatGameState_PathOrder(t *testing.T) {
	state := smallState()
	state.Mode = "player_pathing"
	// goal first, start last
	state.SelectedPath = []engine.Space{{Column: 2, Row: 1}, {Column: 1, Row: 1}, {Column: 0, Row: 1}}
	target := engine.Space{Column: 2, Row: 1}
	state.TargetNode = &target

	result := formatGameState(state)

	if !strings.Contains(result, "Path: (0,1) (1,1) (2,1)") {
		t.Errorf("Expected path in walking order, got:\n%s", result)
	}
	if !strings.Contains(result, "→ target (2,1)") {
		t.Errorf("Expected target node, got:\n%s", result)
	}
	if !strings.Contains(result, " 1 Co+\n") {
		t.Errorf("Expected path mark on the board, got:\n%s", result)
	}
}

func TestFormatGameState_Victory(t *testing.T) {
	state := smallState()
	state.GameOver = true
	state.Victory = true
	state.Message = "Touchdown!"
	state.Actors[0].CarryingID = "ball"

	result := formatGameState(state)

	if !strings.Contains(result, "🎉 VICTORY!") {
		t.Errorf("Expected victory banner, got: %s", result)
	}
	if !strings.Contains(result, " 1 @") {
		t.Errorf("Expected carrier with ball drawn as @, got: %s", result)
	}
}

func TestFormatGameState_Nil(t *testing.T) {
	if got := formatGameState(nil); got != "No game state available" {
		t.Errorf("Unexpected output for nil state: %q", got)
	}
}

func TestFormatCell(t *testing.T) {
	cell := &service.CellInfo{
		Column:      1,
		Row:         1,
		Terrain:     engine.Blank,
		Occupant:    &engine.ActorView{ID: "ball", Name: "Ball", Kind: engine.KindBall, Team: engine.TeamNeutral},
		Traversable: true,
		InRange:     true,
	}

	result := formatCell(cell)

	for _, want := range []string{"Cell (1,1)", "Occupant: Ball (ball, team neutral, id ball)", "In selected range: yes", "On planned path: no"} {
		if !strings.Contains(result, want) {
			t.Errorf("Expected %q in output, got:\n%s", want, result)
		}
	}
}

func TestClient_handleGameInstructions(t *testing.T) {
	client := NewClient("http://localhost:8080")

	result, err := client.handleGameInstructions(context.Background(), toolRequest("game_instructions", map[string]interface{}{}))
	if err != nil {
		t.Fatalf("handleGameInstructions failed: %v", err)
	}

	text := resultText(t, result)
	expectedContent := []string{
		"Gridball - Complete Instructions",
		"GAME OBJECTIVE:",
		"GRID LEGEND:",
		"TURN FLOW:",
		"THE BALL:",
	}

	for _, content := range expectedContent {
		if !strings.Contains(text, content) {
			t.Errorf("Expected '%s' in instructions", content)
		}
	}
}
