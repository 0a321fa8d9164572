package markdown

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/renderer/html"
)

// Raw HTML in the source is escaped since WithUnsafe is not set.
var renderer = goldmark.New(
	goldmark.WithRendererOptions(
		html.WithHardWraps(),
	),
)

// ToHTML renders markdown source into an HTML fragment.
func ToHTML(source string) (string, error) {
	if source == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := renderer.Convert([]byte(source), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return buf.String(), nil
}
