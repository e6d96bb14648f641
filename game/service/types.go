package service

import (
	"time"

	"github.com/wricardo/gridball/game/engine"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string             `json:"id"`
	ConfigName     string             `json:"config_name"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	GameState      *engine.GameState  `json:"game_state"`
	GameConfig     *engine.GameConfig `json:"game_config"`
}

// ActionResult contains the outcome of a click, end-turn or tick
type ActionResult struct {
	Fired     bool              `json:"fired"` // whether a state transition happened
	Mode      string            `json:"mode"`
	FramesRun int               `json:"frames_run"`
	Settled   bool              `json:"settled"` // false when a move was still running after the frame limit
	GameState *engine.GameState `json:"game_state"`
	Events    []GameEvent       `json:"events"`
	Message   string            `json:"message,omitempty"`
}

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	Type      string        `json:"type"` // selected, path_planned, move_started, ball_pickup, victory, ...
	Message   string        `json:"message"`
	Timestamp time.Time     `json:"timestamp"`
	ActorID   string        `json:"actor_id,omitempty"`
	Space     *engine.Space `json:"space,omitempty"`
	Frame     int           `json:"frame"`
}

// CellInfo describes one grid cell from the player's point of view
type CellInfo struct {
	Column      int               `json:"column"`
	Row         int               `json:"row"`
	Terrain     engine.Terrain    `json:"terrain"`
	Occupant    *engine.ActorView `json:"occupant,omitempty"`
	Traversable bool              `json:"traversable"`
	InRange     bool              `json:"in_range"`
	OnPath      bool              `json:"on_path"`
}

// ConfigInfo provides information about a level
type ConfigInfo struct {
	Filename    string `json:"filename"`
	ConfigID    string `json:"config_id"` // The identifier to use for session creation
	Name        string `json:"name"`      // Display name
	Description string `json:"description"`
	Columns     int    `json:"columns"`
	Rows        int    `json:"rows"`
	Actors      int    `json:"actors"`
	EnemyPolicy string `json:"enemy_policy"`
}
