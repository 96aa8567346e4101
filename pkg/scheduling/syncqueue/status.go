package syncqueue

import "fmt"

// Status is the outcome of a blocking queue operation.
type Status int

const (
	// StatusOK means the item was moved into or out of the queue.
	StatusOK Status = iota
	// StatusTimeout means the wait elapsed without the operation succeeding.
	StatusTimeout
	// StatusStopped means the queue is stopping and the operation cannot proceed.
	StatusStopped
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusTimeout:
		return "timeout"
	case StatusStopped:
		return "stopped"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}
