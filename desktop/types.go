package main

// Wire types mirror the server's JSON. Only the fields the client draws are decoded.

// Space is a grid coordinate
type Space struct {
	Column int `json:"column"`
	Row    int `json:"row"`
}

// CellView is one grid cell
type CellView struct {
	Column     int    `json:"column"`
	Row        int    `json:"row"`
	Terrain    string `json:"terrain"`
	OccupantID string `json:"occupant_id,omitempty"`
}

// ActorView is one actor; X and Y are pixel positions in server cell units
type ActorView struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Kind       string `json:"kind"`
	Team       string `json:"team"`
	X          int    `json:"x"`
	Y          int    `json:"y"`
	Ball       bool   `json:"ball"`
	CarryingID string `json:"carrying_id,omitempty"`
	Shape      string `json:"shape,omitempty"`
	Color      string `json:"color,omitempty"`
	Glyph      string `json:"glyph,omitempty"`
}

// HUDField is one attribute of the selected actor
type HUDField struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// GameState is the server snapshot of a session
type GameState struct {
	ConfigName    string      `json:"config_name"`
	Mode          string      `json:"mode"`
	Frame         int         `json:"frame"`
	Turn          int         `json:"turn"`
	Columns       int         `json:"columns"`
	Rows          int         `json:"rows"`
	CellSize      int         `json:"cell_size"`
	Cells         []CellView  `json:"cells"`
	Actors        []ActorView `json:"actors"`
	SelectedID    string      `json:"selected_id,omitempty"`
	SelectedPath  []Space     `json:"selected_path,omitempty"`
	SelectedRange []Space     `json:"selected_range,omitempty"`
	TargetNode    *Space      `json:"target_node,omitempty"`
	HUD           []HUDField  `json:"hud,omitempty"`
	CanClick      bool        `json:"can_click"`
	GameOver      bool        `json:"game_over"`
	Victory       bool        `json:"victory"`
	Message       string      `json:"message"`
}

// GameEvent is something that happened while handling a command
type GameEvent struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// ActionResult is the response to a click or end turn
type ActionResult struct {
	Fired     bool        `json:"fired"`
	Mode      string      `json:"mode"`
	GameState *GameState  `json:"game_state"`
	Events    []GameEvent `json:"events"`
}

// SessionInfo is a session as listed by the server
type SessionInfo struct {
	ID         string     `json:"id"`
	ConfigName string     `json:"config_name"`
	GameState  *GameState `json:"game_state"`
}

// ConfigInfo is a level as listed by the server
type ConfigInfo struct {
	ConfigID    string `json:"config_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Columns     int    `json:"columns"`
	Rows        int    `json:"rows"`
}

// WSMessage is a websocket frame from the hub
type WSMessage struct {
	SessionID string      `json:"session_id"`
	Event     string      `json:"event,omitempty"`
	GameState *GameState  `json:"game_state,omitempty"`
	Events    []GameEvent `json:"events,omitempty"`
}
