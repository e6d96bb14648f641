package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/wricardo/gridball/game/engine"
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	mu       sync.RWMutex
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager) GameService {
	return &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
	}
}

// getConfigID returns the config_id for a given level display name
func (s *gameServiceImpl) getConfigID(configName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == configName {
				return cfg.ConfigID
			}
		}
	}
	if configName == "" {
		return "default"
	}
	return configName
}

func (s *gameServiceImpl) sessionInfo(sess *Session) *SessionInfo {
	configID := sess.ConfigID
	if configID == "" {
		configID = s.getConfigID(sess.Config.Name)
	}
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     configID,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		GameState:      sess.Engine.Snapshot(),
		GameConfig:     sess.Config,
	}
}

// CreateSession creates a new game session
func (s *gameServiceImpl) CreateSession(ctx context.Context, configName string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var config *engine.GameConfig
	var err error
	if configName != "" {
		config, err = s.configs.LoadConfig(configName)
		if err != nil {
			if errors.Is(err, ErrConfigNotFound) {
				availableConfigs, listErr := s.configs.ListConfigs()
				if listErr == nil && len(availableConfigs) > 0 {
					var configIDs []string
					for _, cfg := range availableConfigs {
						configIDs = append(configIDs, cfg.ConfigID)
					}
					return nil, fmt.Errorf("level '%s' not found, available levels: %v: %w", configName, configIDs, err)
				}
				return nil, fmt.Errorf("level '%s' not found, use /api/configs to list available levels: %w", configName, err)
			}
			return nil, fmt.Errorf("failed to load level %s: %w", configName, err)
		}
	} else {
		config = s.configs.GetDefault()
	}

	sess, err := s.sessions.Create("", config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	sess.ConfigID = configName
	if sess.ConfigID == "" {
		sess.ConfigID = s.getConfigID(config.Name)
	}

	log.Printf("[SESSION] created %s on level %q", sess.ID, sess.ConfigID)
	return s.sessionInfo(sess), nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session %s: %w", sessionID, err)
	}

	s.sessions.UpdateLastAccessed(sessionID)
	return s.sessionInfo(sess), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.sessionInfo(sess))
	}
	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Delete(sessionID); err != nil {
		return fmt.Errorf("delete session %s: %w", sessionID, err)
	}
	return nil
}

// lockedSession fetches a session; the caller holds s.mu
func (s *gameServiceImpl) lockedSession(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}
	s.sessions.UpdateLastAccessed(sessionID)
	return sess, nil
}

// Click sends a click at a grid cell. With settle set, a move started by the
// click is run to completion, bounded by engine.MaxSettleFrames.
func (s *gameServiceImpl) Click(ctx context.Context, sessionID string, button engine.Button, column, row int, settle bool) (*ActionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.lockedSession(sessionID)
	if err != nil {
		return nil, err
	}

	eng := sess.Engine
	if eng.IsGameOver() {
		return s.result(sess, false, 0, "game is over, reset to play again"), nil
	}

	fired, err := eng.HandleInput(engine.Click(button, column, row))
	if err != nil {
		return nil, fmt.Errorf("%s click at (%d,%d): %w", button, column, row, err)
	}

	frames := 0
	if settle {
		frames, err = s.settle(ctx, eng)
		if err != nil {
			return nil, err
		}
	}

	message := ""
	if !fired {
		message = fmt.Sprintf("%s click at (%d,%d) ignored in %s", button, column, row, eng.Mode())
	}
	log.Printf("[CLICK] session=%s %s (%d,%d) fired=%t mode=%s frames=%d", sessionID, button, column, row, fired, eng.Mode(), frames)
	return s.result(sess, fired, frames, message), nil
}

// EndTurn runs the enemy turn and returns control to the player
func (s *gameServiceImpl) EndTurn(ctx context.Context, sessionID string) (*ActionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.lockedSession(sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Engine.IsGameOver() {
		return s.result(sess, false, 0, "game is over, reset to play again"), nil
	}

	fired, err := sess.Engine.HandleInput(engine.EndTurnInput())
	if err != nil {
		return nil, fmt.Errorf("end turn: %w", err)
	}

	message := ""
	if !fired {
		message = fmt.Sprintf("cannot end turn in %s", sess.Engine.Mode())
	}
	return s.result(sess, fired, 0, message), nil
}

// Tick advances the game by a number of frames
func (s *gameServiceImpl) Tick(ctx context.Context, sessionID string, frames int) (*ActionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.lockedSession(sessionID)
	if err != nil {
		return nil, err
	}

	if frames < 1 {
		frames = 1
	}
	if frames > engine.MaxSettleFrames {
		frames = engine.MaxSettleFrames
	}

	for i := 0; i < frames; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := sess.Engine.Update(); err != nil {
			return nil, fmt.Errorf("tick frame %d: %w", i+1, err)
		}
	}
	return s.result(sess, false, frames, ""), nil
}

// settle runs frames while the engine is moving
func (s *gameServiceImpl) settle(ctx context.Context, eng *engine.GameEngine) (int, error) {
	frames := 0
	for eng.Mode() == engine.Moving && frames < engine.MaxSettleFrames {
		if err := ctx.Err(); err != nil {
			return frames, err
		}
		if err := eng.Update(); err != nil {
			return frames, fmt.Errorf("settle frame %d: %w", frames+1, err)
		}
		frames++
	}
	return frames, nil
}

func (s *gameServiceImpl) result(sess *Session, fired bool, frames int, message string) *ActionResult {
	eng := sess.Engine
	state := eng.Snapshot()
	if message == "" {
		message = state.Message
	}
	return &ActionResult{
		Fired:     fired,
		Mode:      state.Mode,
		FramesRun: frames,
		Settled:   eng.Mode() != engine.Moving,
		GameState: state,
		Events:    translateEvents(eng.DrainEvents()),
		Message:   message,
	}
}

// translateEvents converts engine events into timestamped service events
func translateEvents(events []engine.Event) []GameEvent {
	now := time.Now()
	out := make([]GameEvent, 0, len(events))
	for _, ev := range events {
		ge := GameEvent{
			Type:      string(ev.Type),
			Message:   ev.Message,
			Timestamp: now,
			ActorID:   ev.ActorID,
			Frame:     ev.Frame,
		}
		if ev.Space != engine.NoSpace {
			space := ev.Space
			ge.Space = &space
		}
		out = append(out, ge)
	}
	return out
}

// Reset resets a game session to its initial state
func (s *gameServiceImpl) Reset(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.lockedSession(sessionID)
	if err != nil {
		return nil, err
	}
	if err := sess.Engine.Reset(); err != nil {
		return nil, err
	}
	sess.Engine.DrainEvents()
	return sess.Engine.Snapshot(), nil
}

// GetGameState retrieves the current game state
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.lockedSession(sessionID)
	if err != nil {
		return nil, err
	}
	return sess.Engine.Snapshot(), nil
}

// DescribeCell reports terrain, occupant and overlay membership of one cell
func (s *gameServiceImpl) DescribeCell(ctx context.Context, sessionID string, column, row int) (*CellInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.lockedSession(sessionID)
	if err != nil {
		return nil, err
	}

	eng := sess.Engine
	space := engine.Space{Column: column, Row: row}
	cell, ok := eng.Grid().Get(space)
	if !ok {
		return nil, fmt.Errorf("describe %s: %w", space, engine.ErrOutOfBounds)
	}

	info := &CellInfo{
		Column:      column,
		Row:         row,
		Terrain:     cell.Terrain,
		Traversable: eng.Grid().Traversable(space),
		InRange:     eng.InRange(space),
	}
	if cell.Occupant != nil {
		view := cell.Occupant.View()
		info.Occupant = &view
	}
	for _, p := range eng.SelectedPath() {
		if p == space {
			info.OnPath = true
			break
		}
	}
	return info, nil
}

// ListConfigs returns available levels
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific level
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a level to disk
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error {
	return s.configs.SaveConfig(configName, config)
}
