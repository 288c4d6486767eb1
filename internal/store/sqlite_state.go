package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"prioritize/internal/model"

	_ "modernc.org/sqlite"
)

// SQLite keeps the document in a local SQLite database, one row per item.
type SQLite struct {
	Path string

	saveMu sync.Mutex
}

func (s *SQLite) Name() string { return BackendSQLite }

func (s *SQLite) openSQLite(ctx context.Context) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o755); err != nil {
		return nil, err
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", s.Path)
	if err != nil {
		return nil, err
	}
	// WAL allows one writer next to readers (CLI and TUI on the same workspace);
	// busy_timeout avoids "database is locked" flakiness.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if err := migrateSQLiteState(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func migrateSQLiteState(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS state_meta (
			k TEXT PRIMARY KEY,
			v TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS items (
			id TEXT PRIMARY KEY,
			parent_id TEXT NOT NULL,
			rank INTEGER NOT NULL,
			label TEXT NOT NULL,
			updated_at_unixms INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_items_parent_rank ON items(parent_id, rank);`,
	}
	for _, st := range stmts {
		if _, err := db.ExecContext(ctx, st); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLite) LoadDocument(ctx context.Context) (model.Document, error) {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return model.Document{}, err
	}
	defer db.Close()

	var raw string
	err = db.QueryRowContext(ctx, `SELECT v FROM state_meta WHERE k = ?`, "version").Scan(&raw)
	if err == sql.ErrNoRows {
		return emptyDocument(), nil
	}
	if err != nil {
		return model.Document{}, err
	}
	version, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return model.Document{}, fmt.Errorf("%w: version %q", model.ErrMalformed, raw)
	}

	rows, err := db.QueryContext(ctx, `SELECT id, parent_id, rank, label FROM items ORDER BY id`)
	if err != nil {
		return model.Document{}, err
	}
	defer rows.Close()

	doc := model.Document{Version: version, Items: []model.Item{}}
	for rows.Next() {
		var it model.Item
		if err := rows.Scan(&it.ID, &it.ParentID, &it.Rank, &it.Label); err != nil {
			return model.Document{}, err
		}
		doc.Items = append(doc.Items, it)
	}
	if err := rows.Err(); err != nil {
		return model.Document{}, err
	}
	return doc, nil
}

// SaveDocument replaces every row in one transaction, so readers see either the old or the
// new document.
func (s *SQLite) SaveDocument(ctx context.Context, doc model.Document) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	db, err := s.openSQLite(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO state_meta(k, v) VALUES(?, ?)`, "version", strconv.Itoa(doc.Version)); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM items`); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO items(id, parent_id, rank, label, updated_at_unixms) VALUES(?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	nowMs := time.Now().UTC().UnixMilli()
	for _, it := range doc.Items {
		if _, err := stmt.ExecContext(ctx, it.ID, it.ParentID, it.Rank, it.Label, nowMs); err != nil {
			return fmt.Errorf("insert item %s: %w", it.ID, err)
		}
	}
	return tx.Commit()
}
