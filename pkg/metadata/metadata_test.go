package metadata

import (
	"errors"
	"testing"

	buildErrors "github.com/boycaught/eleventy/pkg/errors"
)

func TestParseFrontMatter(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		wantTitle   string
		wantBody    string
		wantExcerpt string
	}{
		{
			name:      "yaml front matter",
			content:   "---\ntitle: Hello\ntags: [post]\n---\n# Body\n",
			wantTitle: "Hello",
			wantBody:  "# Body\n",
		},
		{
			name:     "no front matter",
			content:  "# Just content\n",
			wantBody: "# Just content\n",
		},
		{
			name:        "excerpt separator",
			content:     "---\ntitle: T\n---\nlead paragraph\n<!--more-->\nrest\n",
			wantTitle:   "T",
			wantBody:    "lead paragraph\n<!--more-->\nrest\n",
			wantExcerpt: "lead paragraph",
		},
	}

	p := NewParser()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := p.Parse(tt.content, "doc.md")
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if tt.wantTitle != "" {
				if got, _ := res.Data["title"].(string); got != tt.wantTitle {
					t.Errorf("title = %q, want %q", got, tt.wantTitle)
				}
			}
			if res.Content != tt.wantBody {
				t.Errorf("content = %q, want %q", res.Content, tt.wantBody)
			}
			if res.Excerpt != tt.wantExcerpt {
				t.Errorf("excerpt = %q, want %q", res.Excerpt, tt.wantExcerpt)
			}
		})
	}
}

func TestParseMalformedFrontMatter(t *testing.T) {
	p := NewParser()
	_, err := p.Parse("---\ntitle: [unclosed\n---\nbody\n", "bad.md")
	if err == nil {
		t.Fatal("expected parse error")
	}

	var parseErr *buildErrors.MetadataParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("error should be MetadataParseError, got %T", err)
	}
	if parseErr.Path != "bad.md" {
		t.Errorf("error path = %q, want bad.md", parseErr.Path)
	}
}
