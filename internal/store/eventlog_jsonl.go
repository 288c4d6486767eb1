package store

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"prioritize/internal/model"
)

// Journal is an append-only JSON-lines log of committed changes.
type Journal struct {
	Path string

	mu  sync.Mutex
	now func() time.Time
}

func NewJournal(path string) *Journal {
	return &Journal{Path: path, now: time.Now}
}

func (s Store) Journal() *Journal {
	return NewJournal(s.JournalPath())
}

type changePayload struct {
	Seq      uint64              `json:"seq"`
	Moved    []string            `json:"moved,omitempty"`
	Siblings map[string][]string `json:"siblings,omitempty"`
}

// EventFromChange turns a change notification into a journal record.
func EventFromChange(ch model.Change, ts time.Time) (model.Event, error) {
	pb, err := json.Marshal(changePayload{Seq: ch.Seq, Moved: ch.Moved, Siblings: ch.Siblings})
	if err != nil {
		return model.Event{}, err
	}
	ids := ch.IDs
	if ids == nil {
		ids = []string{}
	}
	return model.Event{
		ID:      uuid.NewString(),
		TS:      ts.UTC(),
		Type:    string(ch.Kind),
		Origin:  string(ch.Origin),
		ItemIDs: ids,
		Payload: json.RawMessage(pb),
	}, nil
}

// Record appends ch. It is shaped to be passed to PriorityTree.Subscribe via a closure.
func (j *Journal) Record(ch model.Change) error {
	now := time.Now
	if j.now != nil {
		now = j.now
	}
	ev, err := EventFromChange(ch, now())
	if err != nil {
		return err
	}
	return j.Append(ev)
}

func (j *Journal) Append(ev model.Event) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(j.Path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(j.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(append(b, '\n')); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// ReadTail returns the newest limit events, oldest first. limit <= 0 returns everything.
func (j *Journal) ReadTail(limit int) ([]model.Event, error) {
	f, err := os.Open(j.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []model.Event{}, nil
		}
		return nil, err
	}
	defer f.Close()

	var all []model.Event
	var ring []model.Event
	if limit > 0 {
		ring = make([]model.Event, limit)
	}
	start := 0
	size := 0

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		if len(sc.Bytes()) == 0 {
			continue
		}
		var ev model.Event
		if err := json.Unmarshal(sc.Bytes(), &ev); err != nil {
			return nil, fmt.Errorf("%s:%d: %w", j.Path, line, err)
		}
		switch {
		case limit <= 0:
			all = append(all, ev)
		case size < limit:
			ring[size] = ev
			size++
		default:
			ring[start] = ev
			start = (start + 1) % limit
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	if limit <= 0 {
		if all == nil {
			all = []model.Event{}
		}
		return all, nil
	}
	out := make([]model.Event, 0, size)
	for i := 0; i < size; i++ {
		out = append(out, ring[(start+i)%limit])
	}
	return out, nil
}
