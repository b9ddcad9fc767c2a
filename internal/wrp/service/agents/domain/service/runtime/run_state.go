package runtime

import (
	"fmt"

	"github.com/kiosk404/warp/internal/wrp/service/agents/domain/entity"
	"github.com/kiosk404/warp/internal/wrp/service/agents/pkg"
	"github.com/kiosk404/warp/pkg/logger"
)

// RunStateMachine tracks one query through
// Idle -> AwaitingFirstReply -> (DispatchingTools)? -> AwaitingSynthesis -> Idle.
type RunStateMachine struct {
	sessionID string
	state     entity.RunState
}

func NewRunStateMachine(sessionID string) *RunStateMachine {
	return &RunStateMachine{sessionID: sessionID, state: entity.RunStateIdle}
}

// State returns the current state.
func (sm *RunStateMachine) State() entity.RunState {
	return sm.state
}

var allowedTransitions = map[entity.RunState][]entity.RunState{
	entity.RunStateIdle:               {entity.RunStateAwaitingFirstReply},
	entity.RunStateAwaitingFirstReply: {entity.RunStateDispatchingTools, entity.RunStateIdle},
	entity.RunStateDispatchingTools:   {entity.RunStateAwaitingSynthesis},
	entity.RunStateAwaitingSynthesis:  {entity.RunStateIdle},
}

// Transition moves to next, rejecting moves the state machine does not have.
func (sm *RunStateMachine) Transition(next entity.RunState) error {
	for _, s := range allowedTransitions[sm.state] {
		if s == next {
			logger.DebugX(pkg.ModuleName, "[RunState] session %s: %s -> %s", sm.sessionID, sm.state, next)
			sm.state = next
			return nil
		}
	}
	return fmt.Errorf("invalid run state transition %s -> %s", sm.state, next)
}

// Reset returns to Idle from any state. Used on terminal failures.
func (sm *RunStateMachine) Reset() {
	if sm.state != entity.RunStateIdle {
		logger.DebugX(pkg.ModuleName, "[RunState] session %s: %s -> %s (failed)", sm.sessionID, sm.state, entity.RunStateIdle)
	}
	sm.state = entity.RunStateIdle
}
