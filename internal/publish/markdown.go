package publish

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	emoji "github.com/yuin/goldmark-emoji"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"prioritize/internal/model"
	"prioritize/internal/tree"
)

const untitled = "(untitled)"

var markdownRenderer = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		emoji.Emoji,
	),
	// Without html.WithUnsafe raw HTML in labels is dropped.
	goldmark.WithRendererOptions(
		html.WithHardWraps(),
	),
)

// RenderMarkdown renders the subtree under rootID as a nested bullet list in priority order.
// The heading is the label of rootID, or "Priorities" for the implicit root.
func RenderMarkdown(t *tree.PriorityTree, rootID string) (string, error) {
	heading := "Priorities"
	if rootID != model.RootID {
		it, err := t.Item(rootID)
		if err != nil {
			return "", err
		}
		heading = labelOrUntitled(it.Label)
	}
	entries, err := t.Outline(rootID, nil)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	writeLn := func(s string) {
		buf.WriteString(s)
		buf.WriteString("\n")
	}
	writeLn("# " + heading)
	writeLn("")
	if len(entries) == 0 {
		writeLn("_Nothing here yet._")
		return buf.String(), nil
	}
	for _, e := range entries {
		writeLn(strings.Repeat("  ", e.Depth) + "- " + labelOrUntitled(e.Item.Label))
	}
	return buf.String(), nil
}

// RenderHTML renders the Markdown outline to an HTML fragment.
func RenderHTML(t *tree.PriorityTree, rootID string) (string, error) {
	md, err := RenderMarkdown(t, rootID)
	if err != nil {
		return "", err
	}
	var b bytes.Buffer
	if err := markdownRenderer.Convert([]byte(md), &b); err != nil {
		return "", err
	}
	return b.String(), nil
}

func labelOrUntitled(label string) string {
	label = strings.TrimSpace(strings.ReplaceAll(label, "\n", " "))
	if label == "" {
		return untitled
	}
	return label
}
