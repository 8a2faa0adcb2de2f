package agent

import "fmt"

// MaxTurnsExceededError reports a query that hit the turn budget before the
// model produced a final answer. The partial answer accumulated so far is
// still returned alongside it.
type MaxTurnsExceededError struct {
	Turns int
}

func (e *MaxTurnsExceededError) Error() string {
	return fmt.Sprintf("agent: no final answer after %d turns", e.Turns)
}
