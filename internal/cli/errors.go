package cli

import (
	"errors"
	"fmt"

	"prioritize/internal/ranker"
	"prioritize/internal/tree"
)

// describeError adds a next step to errors a user can act on.
func describeError(err error) string {
	var corrupt tree.CorruptDataError
	var timeout tree.PersistenceTimeoutError
	var cycle tree.CycleError
	switch {
	case errors.As(err, &corrupt):
		return fmt.Sprintf("%s\nhint: run `prioritize doctor` (or `prioritize doctor --restore`)", err)
	case errors.As(err, &timeout):
		return fmt.Sprintf("%s\nhint: nothing was changed; retry or raise --timeout", err)
	case errors.As(err, &cycle):
		return fmt.Sprintf("%s\nhint: move the item somewhere outside its own subtree", err)
	case errors.Is(err, ranker.ErrStale):
		return fmt.Sprintf("%s\nhint: start `prioritize rank` again", err)
	}
	return err.Error()
}

type positionError struct {
	flags []string
}

func (e positionError) Error() string {
	return fmt.Sprintf("conflicting position flags: %v (pick one)", e.flags)
}
