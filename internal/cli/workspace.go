package cli

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"prioritize/internal/model"
	"prioritize/internal/store"
	"prioritize/internal/tree"

	"github.com/spf13/cobra"
)

// workspace is one loaded document. Changes made through tree are journaled once they have been
// saved, so the journal never lists a change that did not reach the backend.
type workspace struct {
	app     *App
	store   store.Store
	backend store.Backend
	tree    *tree.PriorityTree

	saveMu  sync.Mutex
	mu      sync.Mutex // guards pending
	pending []model.Change
	unsub   func()
}

func openStore(app *App) (store.Store, store.Backend, error) {
	return store.Open(app.cfg)
}

func openWorkspace(cmd *cobra.Command, app *App) (*workspace, error) {
	s, b, err := openStore(app)
	if err != nil {
		return nil, err
	}
	t := tree.New(tree.Options{Logger: &app.log, HistoryLimit: app.cfg.HistoryLimit})
	if err := t.Load(cmd.Context(), b, app.cfg.Timeout); err != nil {
		return nil, fmt.Errorf("load %s (%s): %w", s.Dir, b.Name(), err)
	}
	ws := &workspace{app: app, store: s, backend: b, tree: t}
	ws.unsub = t.Subscribe(func(ch model.Change) {
		ws.mu.Lock()
		ws.pending = append(ws.pending, ch)
		ws.mu.Unlock()
	})
	return ws, nil
}

func (ws *workspace) lastChange() (model.Change, bool) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	if len(ws.pending) == 0 {
		return model.Change{}, false
	}
	return ws.pending[len(ws.pending)-1], true
}

// save persists the tree when something changed and then journals the pending changes.
// On failure the changes stay pending for the next attempt.
func (ws *workspace) save(ctx context.Context) error {
	ws.saveMu.Lock()
	defer ws.saveMu.Unlock()

	ws.mu.Lock()
	changes := ws.pending
	ws.pending = nil
	ws.mu.Unlock()
	if len(changes) == 0 {
		return nil
	}

	if err := ws.tree.Save(ctx, ws.backend, ws.app.cfg.Timeout); err != nil {
		ws.mu.Lock()
		ws.pending = append(changes, ws.pending...)
		ws.mu.Unlock()
		return err
	}
	if !ws.app.cfg.Journal {
		return nil
	}
	j := ws.store.Journal()
	var errs []error
	for _, ch := range changes {
		if err := j.Record(ch); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		// The document is saved either way.
		ws.app.log.Error().Err(err).Str("path", j.Path).Msg("journal append failed")
	}
	return nil
}

func (ws *workspace) dirty() bool {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return len(ws.pending) > 0
}

func (ws *workspace) close() {
	if ws.unsub != nil {
		ws.unsub()
	}
}

// mutateAndSave opens the workspace, runs fn and saves the result.
func mutateAndSave(cmd *cobra.Command, app *App, fn func(ws *workspace) (any, error)) (any, error) {
	ws, err := openWorkspace(cmd, app)
	if err != nil {
		return nil, err
	}
	defer ws.close()
	out, err := fn(ws)
	if err != nil {
		return nil, err
	}
	if err := ws.save(cmd.Context()); err != nil {
		return nil, err
	}
	return out, nil
}
