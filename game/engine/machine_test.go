package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingModel answers conditions from a table and records effects in order
type recordingModel struct {
	conds   map[Condition]bool
	effects []Effect
	failOn  *Effect
	machine *Machine
}

func (m *recordingModel) Check(c Condition, args Args) bool {
	return m.conds[c]
}

func (m *recordingModel) Run(e Effect, args Args) error {
	m.effects = append(m.effects, e)
	if m.failOn != nil && *m.failOn == e {
		return errors.New("effect failed")
	}
	if e == BeginPolicyEvaluation {
		_, err := m.machine.Fire(EndTurn, args)
		return err
	}
	return nil
}

func newRecordingMachine(conds map[Condition]bool) (*Machine, *recordingModel) {
	model := &recordingModel{conds: conds}
	m := NewMachine(model)
	model.machine = m
	return m, model
}

func TestStateStrings(t *testing.T) {
	tests := map[State]string{
		Idle:      "player_idle",
		Selected:  "player_selected",
		Pathing:   "player_pathing",
		Moving:    "player_moving",
		EnemyTurn: "enemy_turn",
	}
	for state, expected := range tests {
		assert.Equal(t, expected, state.String())
	}
	assert.Equal(t, "right_click", RightClick.String())
}

func TestDispatch(t *testing.T) {
	none := func(Condition) bool { return false }
	all := func(Condition) bool { return true }

	tests := []struct {
		name     string
		state    State
		trigger  Trigger
		check    func(Condition) bool
		expected State
		matched  bool
	}{
		{"idle left click on nothing", Idle, LeftClick, none, Idle, false},
		{"idle left click on own unit", Idle, LeftClick, all, Selected, true},
		{"selected left click falls back", Selected, LeftClick, none, Idle, true},
		{"selected reselect", Selected, LeftClick, all, Selected, true},
		{"pathing left click falls back", Pathing, LeftClick, none, Idle, true},
		{"selected right click invalid goal", Selected, RightClick, none, Selected, false},
		{"selected right click valid goal", Selected, RightClick, all, Pathing, true},
		{"pathing confirm wins over replan", Pathing, RightClick, all, Moving, true},
		{"pathing replan", Pathing, RightClick, func(c Condition) bool { return c == ValidGoalSelected }, Pathing, true},
		{"moving ignores clicks", Moving, LeftClick, all, Moving, false},
		{"moving ignores end turn", Moving, EndTurn, all, Moving, false},
		{"end moving", Moving, EndMoving, none, Idle, true},
		{"idle end turn", Idle, EndTurn, none, EnemyTurn, true},
		{"enemy turn returns", EnemyTurn, EndTurn, none, Idle, true},
		{"idle right click", Idle, RightClick, all, Idle, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, ok := Dispatch(Transitions, tt.state, tt.trigger, tt.check)
			assert.Equal(t, tt.matched, ok)
			if ok {
				assert.Equal(t, tt.expected, tr.Dest)
			}
		})
	}
}

func TestMachineEffectOrder(t *testing.T) {
	t.Run("select from idle", func(t *testing.T) {
		m, model := newRecordingMachine(map[Condition]bool{SelectableOwnClicked: true})
		fired, err := m.Fire(LeftClick, Args{Space: Space{0, 0}})
		require.NoError(t, err)
		assert.True(t, fired)
		assert.Equal(t, Selected, m.State())
		assert.Equal(t, []Effect{SelectionChange, SelectObject}, model.effects)
	})

	t.Run("move and arrive", func(t *testing.T) {
		m, model := newRecordingMachine(map[Condition]bool{
			SelectableOwnClicked: true,
			ValidGoalSelected:    true,
			PathSelectedTwice:    true,
		})
		_, _ = m.Fire(LeftClick, Args{})
		model.conds[PathSelectedTwice] = false
		_, _ = m.Fire(RightClick, Args{})
		require.Equal(t, Pathing, m.State())
		model.conds[PathSelectedTwice] = true
		model.effects = nil

		_, err := m.Fire(RightClick, Args{})
		require.NoError(t, err)
		assert.Equal(t, Moving, m.State())
		assert.Equal(t, []Effect{BeginMoving}, model.effects)

		model.effects = nil
		_, err = m.Fire(EndMoving, Args{})
		require.NoError(t, err)
		assert.Equal(t, Idle, m.State())
		assert.Equal(t, []Effect{FinalizeMove, SelectionChange, DeselectObject}, model.effects)
	})

	t.Run("end turn re-enters", func(t *testing.T) {
		m, model := newRecordingMachine(map[Condition]bool{})
		fired, err := m.Fire(EndTurn, Args{})
		require.NoError(t, err)
		assert.True(t, fired)
		assert.Equal(t, Idle, m.State())
		assert.Equal(t, []Effect{
			MenuClear,
			BeginPolicyEvaluation,
			MenuReload,
			SelectionChange,
			DeselectObject,
		}, model.effects)
	})
}

func TestMachineIgnoresUnmatchedTrigger(t *testing.T) {
	m, model := newRecordingMachine(map[Condition]bool{})
	fired, err := m.Fire(RightClick, Args{Space: Space{1, 1}})
	assert.NoError(t, err)
	assert.False(t, fired)
	assert.Equal(t, Idle, m.State())
	assert.Empty(t, model.effects)
}

func TestMachineEffectError(t *testing.T) {
	m, model := newRecordingMachine(map[Condition]bool{SelectableOwnClicked: true})
	fail := SelectObject
	model.failOn = &fail

	fired, err := m.Fire(LeftClick, Args{})
	assert.True(t, fired)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "enter player_selected")
}
