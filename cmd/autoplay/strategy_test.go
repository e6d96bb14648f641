package main

import (
	"context"
	"io"
	"log"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/gridball/api"
	"github.com/wricardo/gridball/game/config"
	"github.com/wricardo/gridball/game/engine"
	"github.com/wricardo/gridball/game/service"
	"github.com/wricardo/gridball/game/session"
)

func quietEngine(t *testing.T, level *engine.GameConfig) *engine.GameEngine {
	t.Helper()
	e, err := engine.NewEngine(level, engine.WithLogger(log.New(io.Discard, "", 0)))
	require.NoError(t, err)
	return e
}

// settle runs frames until a started move has finished
func settle(t *testing.T, e *engine.GameEngine) {
	t.Helper()
	for i := 0; i < engine.MaxSettleFrames && e.Mode() == engine.Moving; i++ {
		require.NoError(t, e.Update())
	}
	require.NotEqual(t, engine.Moving, e.Mode())
}

func TestBoardFromState(t *testing.T) {
	state := quietEngine(t, engine.DefaultGameConfig()).Snapshot()

	grid, err := boardFromState(state)
	require.NoError(t, err)

	assert.Equal(t, 15, grid.Columns())
	assert.Equal(t, 15, grid.Rows())
	assert.Equal(t, 30, engine.CountTerrain(grid, engine.Endzone))

	// carriers and blockers are solid, the ball is not
	assert.False(t, grid.Traversable(engine.Space{Column: 5, Row: 10}))
	assert.False(t, grid.Traversable(engine.Space{Column: 6, Row: 4}))
	assert.True(t, grid.Traversable(engine.Space{Column: 7, Row: 7}))
}

func TestChoosePlanHeadsForBall(t *testing.T) {
	e := quietEngine(t, engine.DefaultGameConfig())

	plan, err := ChoosePlan(e.Snapshot())
	require.NoError(t, err)

	assert.Equal(t, "home-1", plan.Actor)
	assert.Equal(t, engine.Space{Column: 5, Row: 10}, plan.From)
	assert.Equal(t, engine.Space{Column: 7, Row: 7}, plan.Goal)
	assert.Equal(t, 5, plan.Steps)

	fired, err := e.LeftClick(plan.From.Column, plan.From.Row)
	require.NoError(t, err)
	require.True(t, fired)

	state := e.Snapshot()
	grid, err := boardFromState(state)
	require.NoError(t, err)

	target, ok := FurthestInRange(grid, plan, state.SelectedRange)
	require.True(t, ok)
	assert.Equal(t, 4, engine.ManhattanDistance(plan.From, target))
	assert.Equal(t, 1, engine.ManhattanDistance(target, plan.Goal))
}

func TestChoosePlanCarrierHeadsForEndzone(t *testing.T) {
	level := &engine.GameConfig{
		Name:    "Short Field",
		Columns: 3,
		Rows:    5,
		Layout:  []string{"EEE", "...", "...", "...", "..."},
		Actors: []engine.ActorConfig{
			{ID: "runner", Kind: engine.KindCarrier, Column: 1, Row: 4, MovementRange: 2},
			{ID: "ball", Kind: engine.KindBall, Column: 1, Row: 3},
		},
		Messages: engine.Messages{Victory: "Score"},
	}
	level.ApplyDefaults()
	e := quietEngine(t, level)

	// pick up the ball
	_, err := e.LeftClick(1, 4)
	require.NoError(t, err)
	_, err = e.RightClick(1, 3)
	require.NoError(t, err)
	_, err = e.RightClick(1, 3)
	require.NoError(t, err)
	settle(t, e)

	state := e.Snapshot()
	require.Equal(t, "ball", state.Occupant(1, 3).CarryingID)

	plan, err := ChoosePlan(state)
	require.NoError(t, err)
	assert.Equal(t, engine.Space{Column: 1, Row: 0}, plan.Goal)
	assert.Equal(t, 3, plan.Steps)
}

func TestChoosePlanNoCarrier(t *testing.T) {
	level := &engine.GameConfig{
		Name:     "Empty",
		Columns:  2,
		Rows:     2,
		Actors:   []engine.ActorConfig{{ID: "ball", Kind: engine.KindBall, Column: 0, Row: 0}},
		Messages: engine.Messages{Victory: "Score"},
	}
	level.ApplyDefaults()

	_, err := ChoosePlan(quietEngine(t, level).Snapshot())
	assert.ErrorIs(t, err, errNoMove)
}

func TestFurthestInRangeEmptyRange(t *testing.T) {
	e := quietEngine(t, engine.DefaultGameConfig())
	state := e.Snapshot()
	grid, err := boardFromState(state)
	require.NoError(t, err)

	plan := &Plan{From: engine.Space{Column: 5, Row: 10}, Goal: engine.Space{Column: 7, Row: 7}}
	_, ok := FurthestInRange(grid, plan, nil)
	assert.False(t, ok)
}

func TestPlayDefaultLevel(t *testing.T) {
	configs, err := config.NewManager(t.TempDir())
	require.NoError(t, err)
	sessions := session.NewManager(engine.WithLogger(log.New(io.Discard, "", 0)))

	server := httptest.NewServer(api.NewServer(service.NewGameService(sessions, configs), nil))
	defer server.Close()

	outcome, err := Play(context.Background(), NewClient(server.URL), "", 12)
	require.NoError(t, err)

	assert.True(t, outcome.Victory, "expected the bot to score within 12 turns")
	assert.NotEmpty(t, outcome.SessionID)
	assert.LessOrEqual(t, outcome.Turns, 6)
}

func TestPlayUnknownLevel(t *testing.T) {
	configs, err := config.NewManager(t.TempDir())
	require.NoError(t, err)
	sessions := session.NewManager(engine.WithLogger(log.New(io.Discard, "", 0)))

	server := httptest.NewServer(api.NewServer(service.NewGameService(sessions, configs), nil))
	defer server.Close()

	_, err = Play(context.Background(), NewClient(server.URL), "nope", 3)
	assert.Error(t, err)
}
