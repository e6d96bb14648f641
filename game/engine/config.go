package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("invalid level config")

// Level layout characters
const (
	LayoutBlank   = '.'
	LayoutEndzone = 'E'
)

// ActorConfig places one actor on the board
type ActorConfig struct {
	ID            string `json:"id,omitempty" yaml:"id,omitempty"`
	Kind          string `json:"kind" yaml:"kind"`
	Name          string `json:"name,omitempty" yaml:"name,omitempty"`
	Team          Team   `json:"team,omitempty" yaml:"team,omitempty"`
	Column        int    `json:"column" yaml:"column"`
	Row           int    `json:"row" yaml:"row"`
	HP            int    `json:"hp,omitempty" yaml:"hp,omitempty"`
	Speed         int    `json:"speed,omitempty" yaml:"speed,omitempty"`
	MovementRange int    `json:"movement_range,omitempty" yaml:"movement_range,omitempty"`
}

// Messages holds the level's status lines
type Messages struct {
	Welcome string `json:"welcome" yaml:"welcome"`
	Victory string `json:"victory" yaml:"victory"`
}

// GameConfig describes a level: board shape, terrain and starting actors
type GameConfig struct {
	Name            string        `json:"name" yaml:"name"`
	Description     string        `json:"description" yaml:"description"`
	Columns         int           `json:"columns" yaml:"columns"`
	Rows            int           `json:"rows" yaml:"rows"`
	CellSize        int           `json:"cell_size" yaml:"cell_size"`
	Layout          []string      `json:"layout,omitempty" yaml:"layout,omitempty"`
	Actors          []ActorConfig `json:"actors" yaml:"actors"`
	EnemyPolicy     string        `json:"enemy_policy,omitempty" yaml:"enemy_policy,omitempty"`
	PolicyTimeoutMS int           `json:"policy_timeout_ms,omitempty" yaml:"policy_timeout_ms,omitempty"`
	Seed            int64         `json:"seed,omitempty" yaml:"seed,omitempty"`
	Messages        Messages      `json:"messages" yaml:"messages"`
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}

// ValidateGameConfig validates a level configuration for correctness
func ValidateGameConfig(config *GameConfig) error {
	if config == nil {
		return invalid("config is nil")
	}
	if config.Name == "" {
		return invalid("name is required")
	}

	if config.Columns < MinGridSize || config.Columns > MaxGridSize {
		return invalid("columns must be between %d and %d, got %d", MinGridSize, MaxGridSize, config.Columns)
	}
	if config.Rows < MinGridSize || config.Rows > MaxGridSize {
		return invalid("rows must be between %d and %d, got %d", MinGridSize, MaxGridSize, config.Rows)
	}
	if config.CellSize <= 0 {
		return invalid("cell_size must be positive, got %d", config.CellSize)
	}
	if config.PolicyTimeoutMS < 0 {
		return invalid("policy_timeout_ms must not be negative")
	}
	if _, err := PolicyByName(config.EnemyPolicy); err != nil {
		return invalid("%v", err)
	}

	// An empty layout means an all-blank board
	if len(config.Layout) > 0 {
		if len(config.Layout) != config.Rows {
			return invalid("layout must have %d rows to match rows, got %d", config.Rows, len(config.Layout))
		}
		for i, row := range config.Layout {
			if len(row) != config.Columns {
				return invalid("layout row %d must have %d characters to match columns, got %d", i, config.Columns, len(row))
			}
			for j, char := range row {
				if char != LayoutBlank && char != LayoutEndzone {
					return invalid("invalid character '%c' at row %d, column %d", char, i, j)
				}
			}
		}
	}

	ids := make(map[string]bool)
	taken := make(map[Space]string)
	for i, ac := range config.Actors {
		label := fmt.Sprintf("actor %d", i)
		if ac.ID != "" {
			label = fmt.Sprintf("actor %q", ac.ID)
			if ids[ac.ID] {
				return invalid("duplicate actor id %q", ac.ID)
			}
			ids[ac.ID] = true
		}

		switch ac.Kind {
		case KindCarrier, KindBlocker, KindBall, KindWall:
		default:
			return invalid("%s has unknown kind %q", label, ac.Kind)
		}
		switch ac.Team {
		case "", TeamHome, TeamAway, TeamNeutral:
		default:
			return invalid("%s has unknown team %q", label, ac.Team)
		}

		space := Space{Column: ac.Column, Row: ac.Row}
		if ac.Column < 0 || ac.Column >= config.Columns || ac.Row < 0 || ac.Row >= config.Rows {
			return invalid("%s at %s is outside the %dx%d board", label, space, config.Columns, config.Rows)
		}
		if other, ok := taken[space]; ok {
			return invalid("%s and %s both start at %s", label, other, space)
		}
		taken[space] = label

		if ac.HP < 0 || ac.Speed < 0 || ac.MovementRange < 0 {
			return invalid("%s has negative hp, speed or movement_range", label)
		}
	}

	return nil
}

// ApplyDefaults fills zero-valued optional fields
func (c *GameConfig) ApplyDefaults() {
	if c.CellSize == 0 {
		c.CellSize = DefaultCellSize
	}
	if c.PolicyTimeoutMS == 0 {
		c.PolicyTimeoutMS = DefaultPolicyTimeout
	}
	if c.EnemyPolicy == "" {
		c.EnemyPolicy = PolicyPass
	}
}

// ParseGameConfig decodes a level in the given format ("json" or "yaml"),
// applies defaults and validates it
func ParseGameConfig(data []byte, format string) (*GameConfig, error) {
	var config GameConfig
	switch strings.ToLower(format) {
	case "json":
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("decode json level: %w", err)
		}
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("decode yaml level: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported level format %q", format)
	}

	config.ApplyDefaults()
	if err := ValidateGameConfig(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

// FormatForPath returns the level format implied by a file extension
func FormatForPath(path string) (string, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return "json", true
	case ".yaml", ".yml":
		return "yaml", true
	}
	return "", false
}

// LoadGameConfig loads a level from a .json, .yaml or .yml file
func LoadGameConfig(path string) (*GameConfig, error) {
	format, ok := FormatForPath(path)
	if !ok {
		return nil, fmt.Errorf("load level %s: unsupported extension", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	config, err := ParseGameConfig(data, format)
	if err != nil {
		return nil, fmt.Errorf("load level %s: %w", path, err)
	}
	return config, nil
}

// BuildBoard creates the grid and actors described by a level
func BuildBoard(config *GameConfig, opts ...GridOption) (*Grid, []*Actor, error) {
	grid := NewGrid(config.Columns, config.Rows, opts...)

	for row, line := range config.Layout {
		for column, char := range line {
			if char == LayoutEndzone {
				if err := grid.SetTerrain(Space{Column: column, Row: row}, Endzone); err != nil {
					return nil, nil, err
				}
			}
		}
	}

	actors := make([]*Actor, 0, len(config.Actors))
	for i, ac := range config.Actors {
		id := ac.ID
		if id == "" {
			id = fmt.Sprintf("%s-%d", ac.Kind, i+1)
		}
		team := ac.Team
		if team == "" {
			team = TeamHome
		}

		space := Space{Column: ac.Column, Row: ac.Row}
		a := NewActor(id, ac.Kind, ac.Name, team, space, config.CellSize)
		if ac.HP > 0 {
			a.HP = ac.HP
		}
		if a.Move != nil {
			if ac.Speed > 0 {
				a.Move.Speed = ac.Speed
			}
			if ac.MovementRange > 0 {
				a.Move.MovementRange = ac.MovementRange
			}
		}

		if err := grid.Place(space, a); err != nil {
			return nil, nil, fmt.Errorf("place %s: %w", id, err)
		}
		actors = append(actors, a)
	}
	return grid, actors, nil
}

// DefaultGameConfig returns the built-in 15x15 level
func DefaultGameConfig() *GameConfig {
	blank := strings.Repeat(string(LayoutBlank), 15)
	endzone := strings.Repeat(string(LayoutEndzone), 15)
	layout := make([]string, 15)
	for i := range layout {
		layout[i] = blank
	}
	layout[0] = endzone
	layout[14] = endzone

	return &GameConfig{
		Name:        "default",
		Description: "Carry the ball from midfield into the far endzone",
		Columns:     15,
		Rows:        15,
		CellSize:    DefaultCellSize,
		Layout:      layout,
		Actors: []ActorConfig{
			{ID: "home-1", Kind: KindCarrier, Name: "Runner", Team: TeamHome, Column: 5, Row: 10, MovementRange: 4},
			{ID: "home-2", Kind: KindCarrier, Name: "Halfback", Team: TeamHome, Column: 9, Row: 10, MovementRange: 3},
			{ID: "home-3", Kind: KindBlocker, Name: "Guard", Team: TeamHome, Column: 7, Row: 9, MovementRange: 2},
			{ID: "ball", Kind: KindBall, Name: "Ball", Column: 7, Row: 7},
			{ID: "away-1", Kind: KindBlocker, Name: "Tackle", Team: TeamAway, Column: 6, Row: 4},
			{ID: "away-2", Kind: KindBlocker, Name: "End", Team: TeamAway, Column: 8, Row: 4},
		},
		EnemyPolicy:     PolicyPass,
		PolicyTimeoutMS: DefaultPolicyTimeout,
		Seed:            1,
		Messages: Messages{
			Welcome: "Select a unit with left click, right click twice to move it.",
			Victory: "Touchdown!",
		},
	}
}
