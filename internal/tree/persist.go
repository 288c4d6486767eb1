package tree

import (
	"context"
	"errors"
	"time"

	"prioritize/internal/model"
)

// Backend stores and retrieves whole documents. Implementations live in internal/store.
type Backend interface {
	LoadDocument(ctx context.Context) (model.Document, error)
	SaveDocument(ctx context.Context, doc model.Document) error
}

// Save writes a snapshot of the tree to b. The snapshot is taken up front, so mutations that
// land while the backend is busy are not part of it. A timeout <= 0 means no limit besides ctx.
func (t *PriorityTree) Save(ctx context.Context, b Backend, timeout time.Duration) error {
	doc := t.Snapshot()
	_, err := withTimeout(ctx, "save", timeout, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, b.SaveDocument(ctx, doc)
	})
	if err != nil {
		t.logPersistErr("save", err)
		return err
	}
	t.log.Debug().Int("items", len(doc.Items)).Msg("saved")
	return nil
}

// Load replaces the tree with the document held by b. The document is validated before the
// swap; on a timeout or any error the tree keeps its previous state.
func (t *PriorityTree) Load(ctx context.Context, b Backend, timeout time.Duration) error {
	doc, err := withTimeout(ctx, "load", timeout, b.LoadDocument)
	if errors.Is(err, model.ErrMalformed) {
		err = CorruptDataError{Invariant: InvariantFormat, Detail: err.Error()}
	}
	if err != nil {
		t.logPersistErr("load", err)
		return err
	}
	if err := t.Replace(doc); err != nil {
		t.logPersistErr("load", err)
		return err
	}
	return nil
}

func (t *PriorityTree) logPersistErr(op string, err error) {
	var te PersistenceTimeoutError
	if errors.As(err, &te) {
		t.log.Warn().Str("op", op).Dur("timeout", te.Timeout).Msg("persistence timed out")
		return
	}
	t.log.Error().Err(err).Str("op", op).Msg("persistence failed")
}

type result[T any] struct {
	v   T
	err error
}

// withTimeout runs fn in its own goroutine so a backend that ignores ctx still cannot hold the
// caller past the deadline. The abandoned goroutine's result is dropped.
func withTimeout[T any](ctx context.Context, op string, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	if ctx == nil {
		ctx = context.Background()
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	done := make(chan result[T], 1)
	go func() {
		v, err := fn(ctx)
		done <- result[T]{v: v, err: err}
	}()

	select {
	case r := <-done:
		if r.err != nil && errors.Is(r.err, context.DeadlineExceeded) && timeout > 0 {
			return zero, PersistenceTimeoutError{Op: op, Timeout: timeout}
		}
		return r.v, r.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return zero, PersistenceTimeoutError{Op: op, Timeout: timeout}
		}
		return zero, ctx.Err()
	}
}
