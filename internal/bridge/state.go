package bridge

// State 桥接会话的生命周期：Unbound → Bound → Closing → Closed
type State int32

const (
	Unbound State = iota
	Bound
	Closing
	Closed
)

func (s State) String() string {
	switch s {
	case Unbound:
		return "unbound"
	case Bound:
		return "bound"
	case Closing:
		return "closing"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}
