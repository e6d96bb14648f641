package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// spyPolicy records the engine mode seen during evaluation
type spyPolicy struct {
	calls int
	modes []State
	err   error
}

func (p *spyPolicy) Evaluate(ctx context.Context, game *GameEngine) error {
	p.calls++
	p.modes = append(p.modes, game.Mode())
	return p.err
}

// slowPolicy blocks until its context is done
type slowPolicy struct {
	sawDeadline bool
}

func (p *slowPolicy) Evaluate(ctx context.Context, game *GameEngine) error {
	_, p.sawDeadline = ctx.Deadline()
	<-ctx.Done()
	return ctx.Err()
}

func TestPolicyRunsDuringEnemyTurn(t *testing.T) {
	spy := &spyPolicy{}
	e := newTestEngine(t, boardConfig(3, 3,
		ActorConfig{Kind: KindCarrier, Team: TeamHome, Column: 0, Row: 0},
	), WithPolicy(spy))

	for i := 0; i < 3; i++ {
		fired, err := e.EndTurn()
		require.NoError(t, err)
		assert.True(t, fired)
	}

	assert.Equal(t, 3, spy.calls)
	assert.Equal(t, []State{EnemyTurn, EnemyTurn, EnemyTurn}, spy.modes)
	assert.Equal(t, Idle, e.Mode())
	assert.Equal(t, 4, e.Turn())
}

func TestPolicyErrorStillReturnsControl(t *testing.T) {
	spy := &spyPolicy{err: errors.New("no idea")}
	e := newTestEngine(t, scenarioA(t).GetConfig(), WithPolicy(spy))

	fired, err := e.EndTurn()
	assert.NoError(t, err)
	assert.True(t, fired)
	assert.Equal(t, Idle, e.Mode())
}

func TestPolicyTimeout(t *testing.T) {
	slow := &slowPolicy{}
	e := newTestEngine(t, scenarioA(t).GetConfig(),
		WithPolicy(slow),
		WithPolicyTimeout(20*time.Millisecond),
	)

	start := time.Now()
	_, err := e.EndTurn()
	require.NoError(t, err)
	assert.True(t, slow.sawDeadline)
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, Idle, e.Mode())
}

func TestPolicyByName(t *testing.T) {
	p, err := PolicyByName("")
	require.NoError(t, err)
	assert.IsType(t, PassPolicy{}, p)

	p, err = PolicyByName(PolicyWander)
	require.NoError(t, err)
	assert.IsType(t, WanderPolicy{}, p)

	_, err = PolicyByName("alphabeta")
	assert.Error(t, err)
}

func TestWanderPolicy(t *testing.T) {
	config := boardConfig(5, 5,
		ActorConfig{ID: "me", Kind: KindCarrier, Team: TeamHome, Column: 0, Row: 0},
		ActorConfig{ID: "them", Kind: KindBlocker, Team: TeamAway, Column: 2, Row: 2},
		ActorConfig{ID: "post", Kind: KindWall, Column: 4, Row: 4},
	)
	config.EnemyPolicy = PolicyWander
	config.Seed = 11
	e := newTestEngine(t, config)
	them, me := e.Actor("them"), e.Actor("me")

	for turn := 0; turn < 5; turn++ {
		before := them.Space(e.CellSize())
		_, err := e.EndTurn()
		require.NoError(t, err)

		after := them.Space(e.CellSize())
		assert.Equal(t, 1, ManhattanDistance(before, after), "enemy moves exactly one cell")
		assert.Same(t, them, e.Grid().Occupant(after))
		assert.Nil(t, e.Grid().Occupant(before))
	}

	assert.Equal(t, Space{0, 0}, me.Space(e.CellSize()), "home units never wander")
	assert.Same(t, e.Actor("post"), e.Grid().Occupant(Space{4, 4}))
}

func TestResetReplaysRandomness(t *testing.T) {
	wander := func(t *testing.T, e *GameEngine) []Space {
		var trail []Space
		for turn := 0; turn < 6; turn++ {
			_, err := e.EndTurn()
			require.NoError(t, err)
			trail = append(trail, e.Actor("them").Space(e.CellSize()))
		}
		return trail
	}
	level := func() *GameConfig {
		config := boardConfig(5, 5,
			ActorConfig{ID: "them", Kind: KindBlocker, Team: TeamAway, Column: 2, Row: 2},
		)
		config.EnemyPolicy = PolicyWander
		config.Seed = 11
		return config
	}

	tests := []struct {
		name string
		opts []Option
	}{
		{"level seed", nil},
		{"seed option", []Option{WithSeed(99)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(t, level(), tt.opts...)
			first := wander(t, e)

			require.NoError(t, e.Reset())
			assert.Equal(t, first, wander(t, e), "a reset game replays the same moves")

			fresh := newTestEngine(t, level(), tt.opts...)
			assert.Equal(t, first, wander(t, fresh), "a fresh engine with the same seed")
		})
	}
}

func TestWanderPolicyStuckActor(t *testing.T) {
	config := boardConfig(2, 2,
		ActorConfig{ID: "them", Kind: KindBlocker, Team: TeamAway, Column: 0, Row: 0},
		ActorConfig{ID: "w1", Kind: KindWall, Column: 1, Row: 0},
		ActorConfig{ID: "w2", Kind: KindWall, Column: 0, Row: 1},
	)
	config.EnemyPolicy = PolicyWander
	e := newTestEngine(t, config)

	_, err := e.EndTurn()
	require.NoError(t, err)
	assert.Equal(t, Space{0, 0}, e.Actor("them").Space(e.CellSize()))
}

func TestWanderPolicyHonorsCancellation(t *testing.T) {
	e := newTestEngine(t, boardConfig(3, 3,
		ActorConfig{ID: "them", Kind: KindBlocker, Team: TeamAway, Column: 1, Row: 1},
	))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := WanderPolicy{}.Evaluate(ctx, e)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, Space{1, 1}, e.Actor("them").Space(e.CellSize()))
}

func TestEndTurnFromPathingDropsPlan(t *testing.T) {
	e := scenarioA(t)
	_, _ = e.LeftClick(0, 0)
	_, _ = e.RightClick(1, 0)
	require.Equal(t, Pathing, e.Mode())

	_, err := e.EndTurn()
	require.NoError(t, err)
	assert.Equal(t, Idle, e.Mode())
	assert.Nil(t, e.SelectedPath())

	// right click cannot confirm a stale plan
	fired, _ := e.RightClick(1, 0)
	assert.False(t, fired)
}

func TestEventsCarryFrameAndActor(t *testing.T) {
	e := scenarioA(t)
	moveTo(t, e, Space{0, 0}, Space{1, 0})

	events := e.DrainEvents()
	require.NotEmpty(t, events)

	var types []EventType
	for _, ev := range events {
		types = append(types, ev.Type)
	}
	assert.Equal(t, []EventType{
		EventSelected,
		EventPathPlanned,
		EventMoveStarted,
		EventMoveFinished,
		EventDeselected,
	}, types)

	finished := eventsOf(events, EventMoveFinished)[0]
	assert.Equal(t, "runner", finished.ActorID)
	assert.Equal(t, Space{1, 0}, finished.Space)
	assert.Equal(t, 2, finished.Frame)

	assert.Empty(t, e.DrainEvents(), "drain clears the buffer")
}

func TestSelectImmobileOwnUnit(t *testing.T) {
	e := newTestEngine(t, boardConfig(3, 3,
		ActorConfig{ID: "runner", Kind: KindCarrier, Team: TeamHome, Column: 1, Row: 1},
	))
	// Strip movement to model an immobile but selectable unit
	e.Actor("runner").Move = nil

	fired, err := e.LeftClick(1, 1)
	require.NoError(t, err)
	assert.True(t, fired)
	assert.Equal(t, Selected, e.Mode())
	assert.Empty(t, e.SelectedRange())

	fired, _ = e.RightClick(1, 0)
	assert.False(t, fired, "no goal is valid without range")
}
