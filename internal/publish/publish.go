package publish

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"prioritize/internal/tree"
)

type WriteOptions struct {
	RootID    string
	HTML      bool
	CSV       bool
	Overwrite bool
}

type WriteResult struct {
	Written []string `json:"written"`
}

// WriteOutline writes outline.md into toDir, plus outline.html and outline.csv when asked.
// Existing files are left alone unless Overwrite is set; nothing is written if any target exists.
func WriteOutline(t *tree.PriorityTree, toDir string, opt WriteOptions) (WriteResult, error) {
	if t == nil {
		return WriteResult{}, errors.New("missing tree")
	}
	toDir = strings.TrimSpace(toDir)
	if toDir == "" {
		return WriteResult{}, errors.New("missing --to")
	}
	toDir = filepath.Clean(toDir)

	type file struct {
		path string
		body []byte
	}
	md, err := RenderMarkdown(t, opt.RootID)
	if err != nil {
		return WriteResult{}, err
	}
	files := []file{{filepath.Join(toDir, "outline.md"), []byte(md)}}

	if opt.HTML {
		h, err := RenderHTML(t, opt.RootID)
		if err != nil {
			return WriteResult{}, err
		}
		files = append(files, file{filepath.Join(toDir, "outline.html"), []byte(h)})
	}
	if opt.CSV {
		rows, err := Rows(t)
		if err != nil {
			return WriteResult{}, err
		}
		var buf bytes.Buffer
		if err := WriteCSV(&buf, rows); err != nil {
			return WriteResult{}, err
		}
		files = append(files, file{filepath.Join(toDir, "outline.csv"), buf.Bytes()})
	}

	if !opt.Overwrite {
		for _, f := range files {
			if _, err := os.Stat(f.path); err == nil {
				return WriteResult{}, errors.New("file exists (use --overwrite): " + f.path)
			}
		}
	}
	if err := os.MkdirAll(toDir, 0o755); err != nil {
		return WriteResult{}, err
	}
	res := WriteResult{}
	for _, f := range files {
		if err := writeFile(f.path, f.body, opt.Overwrite); err != nil {
			return res, err
		}
		res.Written = append(res.Written, f.path)
	}
	return res, nil
}

func writeFile(path string, b []byte, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return errors.New("file exists (use --overwrite): " + path)
		}
	}
	return os.WriteFile(path, b, 0o644)
}
