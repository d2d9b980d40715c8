// Package metadata implements the metadata-parse collaborator: splitting a
// document into its front-matter data block and body content.
//
// Front matter is YAML delimited by "---" fences (TOML "+++" fences are
// also accepted). A malformed block fails the calling operation with a
// MetadataParseError naming the document; it never crashes the process.
package metadata

import (
	"strings"

	"github.com/adrg/frontmatter"

	"github.com/boycaught/eleventy/pkg/errors"
)

// ExcerptSeparator splits an optional leading excerpt from the body.
const ExcerptSeparator = "<!--more-->"

// Result holds the outcome of parsing one document.
type Result struct {
	// Data is the decoded front-matter block. Never nil.
	Data map[string]any

	// Content is the document body with the front matter removed.
	Content string

	// Excerpt is the content before ExcerptSeparator, if present.
	Excerpt string
}

// Parser splits raw document content into front-matter data and body.
type Parser interface {
	Parse(content, path string) (*Result, error)
}

// FrontMatter is the default Parser, backed by YAML/TOML front-matter
// detection.
type FrontMatter struct{}

// NewParser creates the default front-matter parser.
func NewParser() Parser {
	return &FrontMatter{}
}

// Parse decodes the front-matter block of content. The path is used only
// for error reporting.
func (p *FrontMatter) Parse(content, path string) (*Result, error) {
	data := map[string]any{}
	rest, err := frontmatter.Parse(strings.NewReader(content), &data)
	if err != nil {
		return nil, &errors.MetadataParseError{Path: path, Cause: err}
	}

	res := &Result{
		Data:    data,
		Content: string(rest),
	}
	if idx := strings.Index(res.Content, ExcerptSeparator); idx >= 0 {
		res.Excerpt = strings.TrimSpace(res.Content[:idx])
	}
	return res, nil
}
