package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"prioritize/internal/model"
)

func sampleDocument() model.Document {
	return model.Document{Version: model.DocumentVersion, Items: []model.Item{
		{ID: "item-a", Label: "Write report", ParentID: model.RootID, Rank: RankStep},
		{ID: "item-b", Label: "Outline", ParentID: "item-a", Rank: RankStep},
		{ID: "item-c", Label: "", ParentID: model.RootID, Rank: -5},
	}}
}

func TestBackends_RoundTrip(t *testing.T) {
	t.Parallel()

	for _, kind := range []string{BackendFile, BackendSQLite, BackendDiskv} {
		kind := kind
		t.Run(kind, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			s := Store{Dir: t.TempDir()}
			b, err := s.Backend(kind)
			if err != nil {
				t.Fatalf("Backend(%q): %v", kind, err)
			}
			if b.Name() != kind {
				t.Fatalf("Name() = %q, want %q", b.Name(), kind)
			}

			empty, err := b.LoadDocument(ctx)
			if err != nil {
				t.Fatalf("load empty: %v", err)
			}
			if empty.Version != model.DocumentVersion || len(empty.Items) != 0 {
				t.Fatalf("expected empty document, got %+v", empty)
			}

			want := sampleDocument()
			if err := b.SaveDocument(ctx, want); err != nil {
				t.Fatalf("save: %v", err)
			}
			got, err := b.LoadDocument(ctx)
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if !reflect.DeepEqual(got, want) {
				t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, want)
			}

			// A second save with fewer items must drop the missing ones.
			smaller := model.Document{Version: model.DocumentVersion, Items: want.Items[:1]}
			if err := b.SaveDocument(ctx, smaller); err != nil {
				t.Fatalf("save smaller: %v", err)
			}
			got, err = b.LoadDocument(ctx)
			if err != nil {
				t.Fatalf("load smaller: %v", err)
			}
			if !reflect.DeepEqual(got, smaller) {
				t.Fatalf("expected %+v, got %+v", smaller, got)
			}
		})
	}
}

func TestBackend_UnknownKind(t *testing.T) {
	t.Parallel()

	if _, err := (Store{Dir: t.TempDir()}).Backend("postgres"); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
}

func TestBackends_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for _, kind := range []string{BackendFile, BackendDiskv} {
		b, err := (Store{Dir: t.TempDir()}).Backend(kind)
		if err != nil {
			t.Fatalf("Backend(%q): %v", kind, err)
		}
		if _, err := b.LoadDocument(ctx); !errors.Is(err, context.Canceled) {
			t.Fatalf("%s: expected context.Canceled on load, got %v", kind, err)
		}
		if err := b.SaveDocument(ctx, sampleDocument()); !errors.Is(err, context.Canceled) {
			t.Fatalf("%s: expected context.Canceled on save, got %v", kind, err)
		}
	}
}

func TestBackends_CanceledSaveKeepsPreviousDocument(t *testing.T) {
	t.Parallel()

	for _, kind := range []string{BackendFile, BackendDiskv} {
		kind := kind
		t.Run(kind, func(t *testing.T) {
			t.Parallel()
			b, err := (Store{Dir: t.TempDir()}).Backend(kind)
			if err != nil {
				t.Fatalf("Backend(%q): %v", kind, err)
			}
			want := sampleDocument()
			if err := b.SaveDocument(context.Background(), want); err != nil {
				t.Fatalf("save: %v", err)
			}

			// An empty document has no items to write, so only the erase step could run.
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			err = b.SaveDocument(ctx, model.Document{Version: model.DocumentVersion})
			if !errors.Is(err, context.Canceled) {
				t.Fatalf("expected context.Canceled, got %v", err)
			}

			got, err := b.LoadDocument(context.Background())
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if !reflect.DeepEqual(got, want) {
				t.Fatalf("cancelled save changed the document:\n got %+v\nwant %+v", got.Items, want.Items)
			}
		})
	}
}

func TestFile_SavesRunOneAtATime(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := &File{Path: filepath.Join(t.TempDir(), "priorities.json")}
	first := sampleDocument()
	if err := f.SaveDocument(ctx, first); err != nil {
		t.Fatalf("save: %v", err)
	}

	// Hold the lock the way a slow save still in flight would.
	f.saveMu.Lock()
	second := model.Document{Version: model.DocumentVersion, Items: first.Items[:1]}
	done := make(chan error, 1)
	go func() { done <- f.SaveDocument(ctx, second) }()

	select {
	case err := <-done:
		t.Fatalf("save finished while another save held the file: %v", err)
	case <-time.After(50 * time.Millisecond):
	}
	if got, err := f.LoadDocument(ctx); err != nil || !reflect.DeepEqual(got, first) {
		t.Fatalf("document changed under a running save: %+v, %v", got, err)
	}

	f.saveMu.Unlock()
	if err := <-done; err != nil {
		t.Fatalf("queued save: %v", err)
	}
	if got, err := f.LoadDocument(ctx); err != nil || !reflect.DeepEqual(got, second) {
		t.Fatalf("queued save lost: %+v, %v", got, err)
	}
}

func TestFile_NullLabelIsMalformed(t *testing.T) {
	t.Parallel()

	f := &File{Path: filepath.Join(t.TempDir(), "priorities.json")}
	blob := `{"version":1,"items":[{"id":"item-a","label":null,"parentId":"","rank":1}]}`
	if err := os.WriteFile(f.Path, []byte(blob), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := f.LoadDocument(context.Background()); !errors.Is(err, model.ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
}

func TestFile_MalformedAndBackup(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dir := t.TempDir()
	f := &File{Path: filepath.Join(dir, "priorities.json")}

	if _, err := f.LoadBackup(ctx); err == nil {
		t.Fatalf("expected error when no backup exists")
	}

	first := sampleDocument()
	if err := f.SaveDocument(ctx, first); err != nil {
		t.Fatalf("save first: %v", err)
	}
	second := model.Document{Version: model.DocumentVersion, Items: first.Items[:1]}
	if err := f.SaveDocument(ctx, second); err != nil {
		t.Fatalf("save second: %v", err)
	}

	backup, err := f.LoadBackup(ctx)
	if err != nil {
		t.Fatalf("LoadBackup: %v", err)
	}
	if !reflect.DeepEqual(backup, first) {
		t.Fatalf("backup should hold the previous document, got %+v", backup)
	}

	// Corrupt the live file: loads fail as malformed, and the next save does not back it up.
	if err := os.WriteFile(f.Path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write corrupt: %v", err)
	}
	if _, err := f.LoadDocument(ctx); !errors.Is(err, model.ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
	if err := f.SaveDocument(ctx, second); err != nil {
		t.Fatalf("save over corrupt: %v", err)
	}
	backup, err = f.LoadBackup(ctx)
	if err != nil {
		t.Fatalf("LoadBackup after corrupt: %v", err)
	}
	if !reflect.DeepEqual(backup, first) {
		t.Fatalf("a corrupt file must not replace the last good backup")
	}
}

func TestFile_OutputIsSortedByID(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := &File{Path: filepath.Join(t.TempDir(), "priorities.json")}
	doc := sampleDocument()
	doc.Items[0], doc.Items[2] = doc.Items[2], doc.Items[0]
	if err := f.SaveDocument(ctx, doc); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := f.LoadDocument(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(got, sampleDocument()) {
		t.Fatalf("expected items sorted by id, got %+v", got.Items)
	}
}

func TestOpen_DefaultsToFileBackend(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s, b, err := Open(Config{Dir: dir})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if s.Dir != dir {
		t.Fatalf("Dir = %q, want %q", s.Dir, dir)
	}
	if _, ok := b.(*File); !ok {
		t.Fatalf("expected *File backend, got %T", b)
	}
	if _, ok := b.(BackupLoader); !ok {
		t.Fatalf("file backend should offer a backup")
	}
}

func TestDiscoverDir_WalksUp(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	ws := filepath.Join(root, WorkspaceDirName)
	deep := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(ws, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(deep, 0o755); err != nil {
		t.Fatal(err)
	}
	got, ok := DiscoverDir(deep)
	if !ok || got != ws {
		t.Fatalf("DiscoverDir = %q, %v; want %q", got, ok, ws)
	}
}
