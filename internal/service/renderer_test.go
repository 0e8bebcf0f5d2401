//go:build unit

package service

import (
	"testing"

	"go-newsblog-app/internal/data"
)

func TestGoldmarkRenderer_PlainText(t *testing.T) {
	r := NewGoldmarkRenderer()

	testCases := []struct {
		name string
		kind string
		body string
		want string
	}{
		{"markdown loses its markup", "markdown", "# Title\n\nSome *emphasis* here.", "Title Some emphasis here."},
		{"html loses its tags", "html", "<div><p>Hello <a href=\"/x\">link</a></p></div>", "Hello link"},
		{"unknown kinds contribute nothing", "video", "https://example.com/clip", ""},
		{"whitespace is collapsed", "html", "<p>a</p>\n\n<p>b</p>", "a b"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := r.PlainText(data.ContentBlock{Kind: tc.kind, Body: tc.body})
			if err != nil {
				t.Fatalf("PlainText failed: %v", err)
			}
			if got != tc.want {
				t.Errorf("PlainText() = %q, want %q", got, tc.want)
			}
		})
	}
}
