package entity

// RunState is the position of a query in the processing state machine.
type RunState int

const (
	RunStateIdle RunState = iota
	RunStateAwaitingFirstReply
	RunStateDispatchingTools
	RunStateAwaitingSynthesis
)

func (s RunState) String() string {
	switch s {
	case RunStateIdle:
		return "idle"
	case RunStateAwaitingFirstReply:
		return "awaiting_first_reply"
	case RunStateDispatchingTools:
		return "dispatching_tools"
	case RunStateAwaitingSynthesis:
		return "awaiting_synthesis"
	default:
		return "unknown"
	}
}
