package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"prioritize/internal/model"
)

const (
	// WorkspaceDirName is the directory discovered upwards from the working directory.
	WorkspaceDirName = ".prioritize"

	documentFileName = "priorities.json"
	sqliteFileName   = "priorities.sqlite"
	diskvDirName     = "items"
	journalFileName  = "journal.jsonl"
)

// Backend kinds accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendDiskv  = "diskv"
)

// Backend persists whole documents. A store that has never been written loads as an empty
// document.
type Backend interface {
	Name() string
	LoadDocument(ctx context.Context) (model.Document, error)
	SaveDocument(ctx context.Context, doc model.Document) error
}

// BackupLoader is implemented by backends that keep a last-known-good copy.
type BackupLoader interface {
	LoadBackup(ctx context.Context) (model.Document, error)
}

// Store is a workspace directory holding one document and its journal.
type Store struct {
	Dir string
}

func DiscoverDir(start string) (string, bool) {
	dir := start
	for {
		candidate := filepath.Join(dir, WorkspaceDirName)
		if st, err := os.Stat(candidate); err == nil && st.IsDir() {
			return candidate, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// DefaultDir returns the nearest existing workspace, or ./.prioritize when there is none yet.
func DefaultDir() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	if found, ok := DiscoverDir(cwd); ok {
		return found, nil
	}
	return filepath.Join(cwd, WorkspaceDirName), nil
}

func (s Store) Ensure() error {
	return os.MkdirAll(s.Dir, 0o755)
}

func (s Store) documentPath() string { return filepath.Join(s.Dir, documentFileName) }
func (s Store) sqlitePath() string   { return filepath.Join(s.Dir, sqliteFileName) }
func (s Store) diskvPath() string    { return filepath.Join(s.Dir, diskvDirName) }
func (s Store) JournalPath() string  { return filepath.Join(s.Dir, journalFileName) }

// Backend returns the backend of the given kind rooted at the store directory.
func (s Store) Backend(kind string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", BackendFile:
		return &File{Path: s.documentPath()}, nil
	case BackendSQLite:
		return &SQLite{Path: s.sqlitePath()}, nil
	case BackendDiskv:
		return NewDiskv(s.diskvPath()), nil
	default:
		return nil, fmt.Errorf("unknown backend %q (want %s, %s or %s)", kind, BackendFile, BackendSQLite, BackendDiskv)
	}
}

// Open resolves cfg into a store and its backend.
func Open(cfg Config) (Store, Backend, error) {
	s := Store{Dir: cfg.Dir}
	if s.Dir == "" {
		dir, err := DefaultDir()
		if err != nil {
			return Store{}, nil, err
		}
		s.Dir = dir
	}
	b, err := s.Backend(cfg.Backend)
	if err != nil {
		return Store{}, nil, err
	}
	return s, b, nil
}

func emptyDocument() model.Document {
	return model.Document{Version: model.DocumentVersion, Items: []model.Item{}}
}
