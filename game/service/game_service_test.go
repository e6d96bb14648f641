package service_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/gridball/game/engine"
	"github.com/wricardo/gridball/game/service"
)

// MockSessionManager implements service.SessionManager for testing
type MockSessionManager struct {
	sessions map[string]*service.Session
}

func NewMockSessionManager() *MockSessionManager {
	return &MockSessionManager{
		sessions: make(map[string]*service.Session),
	}
}

func (m *MockSessionManager) Create(id string, config *engine.GameConfig) (*service.Session, error) {
	// Generate ID if empty (mimics real session manager behavior)
	if id == "" {
		id = fmt.Sprintf("test_%d", len(m.sessions)+1)
	}

	if _, exists := m.sessions[id]; exists {
		return nil, errors.New("session already exists")
	}

	eng, err := engine.NewEngine(config, engine.WithLogger(log.New(io.Discard, "", 0)))
	if err != nil {
		return nil, err
	}

	session := &service.Session{
		ID:             id,
		Engine:         eng,
		Config:         config,
		CreatedAt:      time.Now(),
		LastAccessedAt: time.Now(),
	}

	m.sessions[id] = session
	return session, nil
}

func (m *MockSessionManager) Get(id string) (*service.Session, error) {
	session, exists := m.sessions[id]
	if !exists {
		return nil, service.ErrSessionNotFound
	}
	return session, nil
}

func (m *MockSessionManager) GetOrCreate(id string, config *engine.GameConfig) (*service.Session, error) {
	if session, exists := m.sessions[id]; exists {
		return session, nil
	}
	return m.Create(id, config)
}

func (m *MockSessionManager) List() []*service.Session {
	result := make([]*service.Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		result = append(result, session)
	}
	return result
}

func (m *MockSessionManager) Delete(id string) error {
	if _, exists := m.sessions[id]; !exists {
		return service.ErrSessionNotFound
	}
	delete(m.sessions, id)
	return nil
}

func (m *MockSessionManager) UpdateLastAccessed(id string) error {
	if session, exists := m.sessions[id]; exists {
		session.LastAccessedAt = time.Now()
		return nil
	}
	return service.ErrSessionNotFound
}

// MockConfigManager implements service.ConfigManager for testing
type MockConfigManager struct {
	configs map[string]*engine.GameConfig
	saved   map[string]*engine.GameConfig
}

// testLevel is a 3x3 board with an endzone in the top left corner. The
// runner starts two cells below the endzone with the ball between them.
func testLevel() *engine.GameConfig {
	return &engine.GameConfig{
		Name:        "test",
		Description: "Test level",
		Columns:     3,
		Rows:        3,
		CellSize:    30,
		Layout:      []string{"E..", "...", "..."},
		Actors: []engine.ActorConfig{
			{ID: "runner", Kind: engine.KindCarrier, Team: engine.TeamHome, Column: 0, Row: 2, Speed: 30, MovementRange: 2},
			{ID: "ball", Kind: engine.KindBall, Column: 0, Row: 1},
		},
		Messages: engine.Messages{Welcome: "Welcome to test!", Victory: "Touchdown!"},
	}
}

func NewMockConfigManager() *MockConfigManager {
	level := testLevel()
	return &MockConfigManager{
		configs: map[string]*engine.GameConfig{
			"test":    level,
			"default": level,
		},
		saved: make(map[string]*engine.GameConfig),
	}
}

func (m *MockConfigManager) LoadConfig(name string) (*engine.GameConfig, error) {
	config, exists := m.configs[name]
	if !exists {
		return nil, fmt.Errorf("level %s: %w", name, service.ErrConfigNotFound)
	}
	return config, nil
}

func (m *MockConfigManager) ListConfigs() ([]*service.ConfigInfo, error) {
	result := make([]*service.ConfigInfo, 0, len(m.configs))
	for name, config := range m.configs {
		result = append(result, &service.ConfigInfo{
			Filename:    name + ".json",
			ConfigID:    name,
			Name:        config.Name,
			Description: config.Description,
			Columns:     config.Columns,
			Rows:        config.Rows,
			Actors:      len(config.Actors),
		})
	}
	return result, nil
}

func (m *MockConfigManager) GetDefault() *engine.GameConfig {
	return m.configs["default"]
}

func (m *MockConfigManager) SaveConfig(name string, config *engine.GameConfig) error {
	m.saved[name] = config
	return nil
}

func newTestService(t *testing.T) (service.GameService, *service.SessionInfo) {
	t.Helper()
	svc := service.NewGameService(NewMockSessionManager(), NewMockConfigManager())
	info, err := svc.CreateSession(context.Background(), "test")
	require.NoError(t, err)
	return svc, info
}

func eventTypes(events []service.GameEvent) []string {
	out := make([]string, 0, len(events))
	for _, ev := range events {
		out = append(out, ev.Type)
	}
	return out
}

// Test cases
func TestGameService_CreateSession(t *testing.T) {
	ctx := context.Background()
	sessions := NewMockSessionManager()
	configs := NewMockConfigManager()
	svc := service.NewGameService(sessions, configs)

	tests := []struct {
		name       string
		configName string
		wantErr    bool
	}{
		{
			name:       "create with default config",
			configName: "",
			wantErr:    false,
		},
		{
			name:       "create with specific config",
			configName: "test",
			wantErr:    false,
		},
		{
			name:       "create with invalid config",
			configName: "nonexistent",
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session, err := svc.CreateSession(ctx, tt.configName)
			if (err != nil) != tt.wantErr {
				t.Errorf("CreateSession() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && session == nil {
				t.Error("CreateSession() returned nil session")
			}
		})
	}
}

func TestGameService_CreateSessionUnknownLevel(t *testing.T) {
	svc := service.NewGameService(NewMockSessionManager(), NewMockConfigManager())

	_, err := svc.CreateSession(context.Background(), "nonexistent")
	require.Error(t, err)
	assert.ErrorIs(t, err, service.ErrConfigNotFound)
	assert.Contains(t, err.Error(), "available levels")
	assert.Contains(t, err.Error(), "test")
}

func TestGameService_SessionInfo(t *testing.T) {
	svc, info := newTestService(t)

	assert.Equal(t, "test", info.ConfigName)
	require.NotNil(t, info.GameState)
	assert.Equal(t, "player_idle", info.GameState.Mode)
	assert.Equal(t, 3, info.GameState.Columns)

	got, err := svc.GetSession(context.Background(), info.ID)
	require.NoError(t, err)
	assert.Equal(t, info.ID, got.ID)

	_, err = svc.GetSession(context.Background(), "nope")
	assert.ErrorIs(t, err, service.ErrSessionNotFound)
}

func TestGameService_ClickSettles(t *testing.T) {
	ctx := context.Background()
	svc, info := newTestService(t)

	res, err := svc.Click(ctx, info.ID, engine.ButtonLeft, 0, 2, false)
	require.NoError(t, err)
	assert.True(t, res.Fired)
	assert.Equal(t, "player_selected", res.Mode)
	assert.Equal(t, []string{"selected"}, eventTypes(res.Events))

	res, err = svc.Click(ctx, info.ID, engine.ButtonRight, 0, 1, false)
	require.NoError(t, err)
	assert.True(t, res.Fired)
	assert.Equal(t, "player_pathing", res.Mode)
	assert.Equal(t, []engine.Space{{Column: 0, Row: 1}, {Column: 0, Row: 2}}, res.GameState.SelectedPath)

	res, err = svc.Click(ctx, info.ID, engine.ButtonRight, 0, 1, true)
	require.NoError(t, err)
	assert.True(t, res.Fired)
	assert.True(t, res.Settled)
	assert.Greater(t, res.FramesRun, 0)
	assert.Equal(t, "player_idle", res.Mode)
	assert.Contains(t, eventTypes(res.Events), "ball_pickup")
	assert.Contains(t, eventTypes(res.Events), "move_finished")

	occ := res.GameState.Occupant(0, 1)
	require.NotNil(t, occ)
	assert.Equal(t, "runner", occ.ID)
	assert.Equal(t, "ball", occ.CarryingID)
}

func TestGameService_ClickWithoutSettle(t *testing.T) {
	ctx := context.Background()
	svc, info := newTestService(t)

	_, err := svc.Click(ctx, info.ID, engine.ButtonLeft, 0, 2, false)
	require.NoError(t, err)
	_, err = svc.Click(ctx, info.ID, engine.ButtonRight, 1, 2, false)
	require.NoError(t, err)
	res, err := svc.Click(ctx, info.ID, engine.ButtonRight, 1, 2, false)
	require.NoError(t, err)

	assert.Equal(t, "player_moving", res.Mode)
	assert.False(t, res.Settled)
	assert.False(t, res.GameState.CanClick)

	// clicks are ignored while a move runs
	ignored, err := svc.Click(ctx, info.ID, engine.ButtonLeft, 2, 2, false)
	require.NoError(t, err)
	assert.False(t, ignored.Fired)
	assert.Contains(t, ignored.Message, "ignored")

	res, err = svc.Tick(ctx, info.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, res.FramesRun)
	assert.Equal(t, "player_idle", res.Mode)
	assert.Equal(t, "runner", res.GameState.Occupant(1, 2).ID)
}

func TestGameService_Victory(t *testing.T) {
	ctx := context.Background()
	svc, info := newTestService(t)

	play := func(button engine.Button, column, row int) *service.ActionResult {
		res, err := svc.Click(ctx, info.ID, button, column, row, true)
		require.NoError(t, err)
		return res
	}

	play(engine.ButtonLeft, 0, 2)
	play(engine.ButtonRight, 0, 1)
	play(engine.ButtonRight, 0, 1)
	play(engine.ButtonLeft, 0, 1)
	play(engine.ButtonRight, 0, 0)
	res := play(engine.ButtonRight, 0, 0)

	assert.Contains(t, eventTypes(res.Events), "victory")
	assert.True(t, res.GameState.Victory)
	assert.True(t, res.GameState.GameOver)
	assert.Equal(t, "Touchdown!", res.Message)

	after := play(engine.ButtonLeft, 0, 0)
	assert.False(t, after.Fired)
	assert.Contains(t, after.Message, "game is over")

	state, err := svc.Reset(ctx, info.ID)
	require.NoError(t, err)
	assert.False(t, state.GameOver)
	assert.Equal(t, "runner", state.Occupant(0, 2).ID)
}

func TestGameService_EndTurn(t *testing.T) {
	ctx := context.Background()
	svc, info := newTestService(t)

	res, err := svc.EndTurn(ctx, info.ID)
	require.NoError(t, err)
	assert.True(t, res.Fired)
	assert.Equal(t, "player_idle", res.Mode)
	assert.Equal(t, 2, res.GameState.Turn)
	assert.Equal(t, []string{"turn_ended", "turn_started"}, eventTypes(res.Events))

	_, err = svc.EndTurn(ctx, "nope")
	assert.ErrorIs(t, err, service.ErrSessionNotFound)
}

func TestGameService_TickClampsFrames(t *testing.T) {
	ctx := context.Background()
	svc, info := newTestService(t)

	tests := []struct {
		name     string
		frames   int
		expected int
	}{
		{"zero runs one frame", 0, 1},
		{"negative runs one frame", -4, 1},
		{"in range", 7, 7},
		{"clamped", engine.MaxSettleFrames + 50, engine.MaxSettleFrames},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := svc.Tick(ctx, info.ID, tt.frames)
			if err != nil {
				t.Fatalf("Tick() error = %v", err)
			}
			if res.FramesRun != tt.expected {
				t.Errorf("Expected %d frames, got %d", tt.expected, res.FramesRun)
			}
		})
	}
}

func TestGameService_DescribeCell(t *testing.T) {
	ctx := context.Background()
	svc, info := newTestService(t)

	cell, err := svc.DescribeCell(ctx, info.ID, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, engine.Endzone, cell.Terrain)
	assert.Nil(t, cell.Occupant)
	assert.False(t, cell.InRange)

	_, err = svc.Click(ctx, info.ID, engine.ButtonLeft, 0, 2, false)
	require.NoError(t, err)
	_, err = svc.Click(ctx, info.ID, engine.ButtonRight, 1, 2, false)
	require.NoError(t, err)

	cell, err = svc.DescribeCell(ctx, info.ID, 1, 2)
	require.NoError(t, err)
	assert.True(t, cell.InRange)
	assert.True(t, cell.OnPath)
	assert.True(t, cell.Traversable)

	cell, err = svc.DescribeCell(ctx, info.ID, 0, 1)
	require.NoError(t, err)
	require.NotNil(t, cell.Occupant)
	assert.Equal(t, "ball", cell.Occupant.ID)

	_, err = svc.DescribeCell(ctx, info.ID, 9, 9)
	assert.ErrorIs(t, err, engine.ErrOutOfBounds)
}

func TestGameService_ListSessions(t *testing.T) {
	ctx := context.Background()
	sessions := NewMockSessionManager()
	configs := NewMockConfigManager()
	svc := service.NewGameService(sessions, configs)

	// Create multiple sessions
	for i := 0; i < 3; i++ {
		_, err := svc.CreateSession(ctx, "test")
		if err != nil {
			t.Fatalf("Failed to create session %d: %v", i, err)
		}
	}

	// List sessions
	sessionList, err := svc.ListSessions(ctx)
	if err != nil {
		t.Fatalf("ListSessions() error = %v", err)
	}

	if len(sessionList) != 3 {
		t.Errorf("ListSessions() returned %d sessions, want 3", len(sessionList))
	}
}

func TestGameService_DeleteSession(t *testing.T) {
	ctx := context.Background()
	svc, info := newTestService(t)

	require.NoError(t, svc.DeleteSession(ctx, info.ID))
	_, err := svc.GetGameState(ctx, info.ID)
	assert.ErrorIs(t, err, service.ErrSessionNotFound)
	assert.ErrorIs(t, svc.DeleteSession(ctx, info.ID), service.ErrSessionNotFound)
}

func TestGameService_Configs(t *testing.T) {
	ctx := context.Background()
	configs := NewMockConfigManager()
	svc := service.NewGameService(NewMockSessionManager(), configs)

	list, err := svc.ListConfigs(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	level, err := svc.LoadConfig(ctx, "test")
	require.NoError(t, err)
	assert.Equal(t, 3, level.Columns)

	require.NoError(t, svc.SaveConfig(ctx, "copy", level))
	assert.Same(t, level, configs.saved["copy"])
}
