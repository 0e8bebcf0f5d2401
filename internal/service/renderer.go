package service

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"

	"go-newsblog-app/internal/data"
)

// BlockRenderer turns a content block into its plain-text search
// contribution.
type BlockRenderer interface {
	PlainText(block data.ContentBlock) (string, error)
}

// GoldmarkRenderer renders markdown blocks with goldmark and strips the
// resulting markup with bluemonday. HTML blocks are stripped directly.
type GoldmarkRenderer struct {
	md    goldmark.Markdown
	strip *bluemonday.Policy
}

// NewGoldmarkRenderer creates a new GoldmarkRenderer.
func NewGoldmarkRenderer() *GoldmarkRenderer {
	return &GoldmarkRenderer{
		md:    goldmark.New(),
		strip: bluemonday.StripTagsPolicy(),
	}
}

// PlainText returns the whitespace-normalized text content of a block.
// Blocks of unknown kinds contribute nothing.
func (r *GoldmarkRenderer) PlainText(block data.ContentBlock) (string, error) {
	var html string
	switch block.Kind {
	case "markdown":
		var buf bytes.Buffer
		if err := r.md.Convert([]byte(block.Body), &buf); err != nil {
			return "", fmt.Errorf("failed to render markdown block: %w", err)
		}
		html = buf.String()
	case "html":
		html = block.Body
	default:
		return "", nil
	}
	text := r.strip.Sanitize(html)
	return strings.Join(strings.Fields(text), " "), nil
}
