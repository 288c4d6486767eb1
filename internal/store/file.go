package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"prioritize/internal/model"
)

// File keeps the document as one indented JSON file.
//
// Writes go through a temp file and rename. Before each write the previous file is copied to
// Path+".bak" if it still decodes, so the backup is always the last document known to be readable.
//
// Saves through one File run one at a time and check ctx right before the final rename, so a
// save abandoned after a timeout cannot land on top of a later one.
type File struct {
	Path string

	saveMu sync.Mutex
}

func (f *File) Name() string { return BackendFile }

func (f *File) backupPath() string { return f.Path + ".bak" }

func (f *File) LoadDocument(ctx context.Context) (model.Document, error) {
	return readDocumentFile(ctx, f.Path)
}

// LoadBackup reads the last-known-good copy written by the previous save.
func (f *File) LoadBackup(ctx context.Context) (model.Document, error) {
	if _, err := os.Stat(f.backupPath()); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return model.Document{}, fmt.Errorf("no backup at %s", f.backupPath())
		}
		return model.Document{}, err
	}
	return readDocumentFile(ctx, f.backupPath())
}

func (f *File) SaveDocument(ctx context.Context, doc model.Document) error {
	f.saveMu.Lock()
	defer f.saveMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	b, err := encodeDocument(doc)
	if err != nil {
		return err
	}
	dir := filepath.Dir(f.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	if prev, err := os.ReadFile(f.Path); err == nil && len(prev) > 0 {
		if _, decErr := decodeDocument(prev); decErr == nil {
			if err := atomicWriteFile(dir, documentFileName+".bak.*.tmp", f.backupPath(), prev, 0o644); err != nil {
				return fmt.Errorf("write backup: %w", err)
			}
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return atomicWriteFile(dir, documentFileName+".*.tmp", f.Path, b, 0o644)
}

func readDocumentFile(ctx context.Context, path string) (model.Document, error) {
	if err := ctx.Err(); err != nil {
		return model.Document{}, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return emptyDocument(), nil
		}
		return model.Document{}, err
	}
	doc, err := decodeDocument(b)
	if err != nil {
		return model.Document{}, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

func encodeDocument(doc model.Document) ([]byte, error) {
	items := append([]model.Item{}, doc.Items...)
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	doc.Items = items
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

// decodeDocument only checks the shape; structural invariants are the tree's job.
func decodeDocument(b []byte) (model.Document, error) {
	var doc model.Document
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return model.Document{}, fmt.Errorf("%w: %v", model.ErrMalformed, err)
	}
	if dec.More() {
		return model.Document{}, fmt.Errorf("%w: trailing data", model.ErrMalformed)
	}
	if doc.Items == nil {
		doc.Items = []model.Item{}
	}
	return doc, nil
}
