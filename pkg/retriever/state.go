package retriever

// State is the position of a retriever within one fetch cycle.
type State string

const (
	StateIdle          State = "idle"
	StateListsResolved State = "lists_resolved"
	StateAuthenticated State = "authenticated"
	StateFetching      State = "fetching"
	StateFailed        State = "failed"
	StateDone          State = "done"
)

// Terminal reports whether the cycle has ended.
func (s State) Terminal() bool {
	return s == StateFailed || s == StateDone
}
