package tree

import (
	"fmt"
	"time"
)

type NotFoundError struct {
	Kind string
	ID   string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// CycleError reports a move that would place an item under itself or one of its descendants.
type CycleError struct {
	ID          string
	NewParentID string
}

func (e CycleError) Error() string {
	if e.ID == e.NewParentID {
		return fmt.Sprintf("cannot move %s under itself", e.ID)
	}
	return fmt.Sprintf("cannot move %s under its descendant %s", e.ID, e.NewParentID)
}

// Invariant names reported by CorruptDataError.
const (
	InvariantFormat       = "format"
	InvariantVersion      = "version"
	InvariantIDPresent    = "id-present"
	InvariantIDUnique     = "id-unique"
	InvariantParentExists = "parent-exists"
	InvariantAcyclic      = "acyclic"
	InvariantRankUnique   = "rank-unique"
)

type CorruptDataError struct {
	ItemID    string
	Invariant string
	Detail    string
}

func (e CorruptDataError) Error() string {
	msg := "corrupt data"
	if e.ItemID != "" {
		msg += ": item " + e.ItemID
	}
	msg += " violates " + e.Invariant
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	return msg
}

// PersistenceTimeoutError is recoverable: the in-memory tree is left as it was and the caller may retry.
type PersistenceTimeoutError struct {
	Op      string
	Timeout time.Duration
}

func (e PersistenceTimeoutError) Error() string {
	return fmt.Sprintf("%s timed out after %s", e.Op, e.Timeout)
}
