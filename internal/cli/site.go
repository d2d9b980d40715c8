package cli

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/boycaught/eleventy/pkg/cache"
	"github.com/boycaught/eleventy/pkg/config"
	"github.com/boycaught/eleventy/pkg/document"
	"github.com/boycaught/eleventy/pkg/engine"
	"github.com/boycaught/eleventy/pkg/engine/gotmpl"
	"github.com/boycaught/eleventy/pkg/engine/markdown"
	"github.com/boycaught/eleventy/pkg/events"
	"github.com/boycaught/eleventy/pkg/metadata"
)

// site wires the configured input directory to the build core: shared
// caches, one engine per template syntax, and document discovery.
type site struct {
	cfg      *config.Config
	bus      *events.Bus
	contents *cache.ContentCache
	compiles *cache.CompileCache
	markdown *markdown.Engine
	gotmpl   *gotmpl.Engine
	parser   metadata.Parser
	reader   engine.Reader
	global   map[string]any
}

// newSite creates the shared caches and engines for one site, and
// registers every include file as a template partial.
func newSite(cfg *config.Config, bus *events.Bus) (*site, error) {
	contents, err := cache.NewContentCache(cache.DefaultContentCacheSize, bus)
	if err != nil {
		return nil, err
	}
	s := &site{
		cfg:      cfg,
		bus:      bus,
		contents: contents,
		compiles: cache.NewCompileCache(bus),
		markdown: markdown.New(),
		gotmpl:   gotmpl.New(),
		parser:   metadata.NewParser(),
		reader:   fsReader{},
	}
	if err := s.registerIncludes(); err != nil {
		return nil, err
	}
	if err := s.loadGlobalData(); err != nil {
		return nil, err
	}
	return s, nil
}

// loadGlobalData reads every TOML file under the data directory into the
// global data map, keyed by file name, alongside a "site" entry built
// from the config.
func (s *site) loadGlobalData() error {
	s.global = map[string]any{
		"site": map[string]any{
			"title":    s.cfg.Title,
			"base_url": s.cfg.BaseURL,
		},
	}
	dir := s.cfg.DataDir
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil
	}
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		if strings.ToLower(filepath.Ext(path)) != ".toml" {
			return nil
		}
		var data map[string]any
		if _, err := toml.DecodeFile(path, &data); err != nil {
			return fmt.Errorf("parse data file %s: %w", path, err)
		}
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		s.global[name] = data
		return nil
	})
}

// resolver returns the data resolver injecting global data into every
// document. Front matter wins over global keys. A "uses" front matter
// key names the collections the template renders from; looking them up
// here is what records the template as a reader of those collections.
func (s *site) resolver() document.DataResolver {
	return document.DataResolverFunc(func(ctx context.Context, doc *document.Document, collections document.CollectionLookup) (map[string]any, error) {
		meta, err := doc.Metadata(ctx)
		if err != nil {
			return nil, err
		}
		for _, name := range stringList(meta.Data["uses"]) {
			collections(name)
		}
		merged := make(map[string]any, len(s.global)+len(meta.Data))
		for k, v := range s.global {
			merged[k] = v
		}
		for k, v := range meta.Data {
			merged[k] = v
		}
		return merged, nil
	})
}

// stringList coerces a front matter value into a list of strings.
func stringList(v any) []string {
	switch val := v.(type) {
	case string:
		return []string{val}
	case []string:
		return val
	case []any:
		var out []string
		for _, item := range val {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// registerIncludes loads every file under the includes directory as a
// named partial, so templates can reference it by relative path.
func (s *site) registerIncludes() error {
	dir := s.cfg.IncludesDir
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil
	}
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read include %s: %w", path, err)
		}
		name, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		s.gotmpl.RegisterPartial(filepath.ToSlash(name), string(content))
		return nil
	})
}

// documents walks the input directory and builds one document per
// template file. Unknown extensions are left to the writer (passthrough
// is out of scope here).
func (s *site) documents(cfg *config.Config) ([]*document.Document, error) {
	var docs []*document.Document
	err := filepath.WalkDir(cfg.InputDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), "_") && path != cfg.InputDir {
				return fs.SkipDir
			}
			return nil
		}
		eng := s.engineFor(path)
		if eng == nil {
			return nil
		}
		docs = append(docs, document.New(document.Options{
			Path:     filepath.ToSlash(path),
			Engine:   eng,
			Reader:   s.reader,
			Parser:   s.parser,
			Contents: s.contents,
			Compiles: s.compiles,
			ConfigID: cfg.ID(),
			Resolver: s.resolver(),
		}))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return docs, nil
}

// engineFor picks the engine owning a source file by extension.
func (s *site) engineFor(path string) engine.Engine {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return s.markdown
	case ".html", ".tmpl":
		return s.gotmpl
	default:
		return nil
	}
}

// outputPath maps an input path to its location under the output
// directory. Markdown becomes HTML; everything else keeps its extension.
func (s *site) outputPath(inputPath string) string {
	rel, err := filepath.Rel(s.cfg.InputDir, filepath.FromSlash(inputPath))
	if err != nil {
		rel = filepath.Base(inputPath)
	}
	switch strings.ToLower(filepath.Ext(rel)) {
	case ".md", ".markdown":
		rel = strings.TrimSuffix(rel, filepath.Ext(rel)) + ".html"
	case ".tmpl":
		rel = strings.TrimSuffix(rel, filepath.Ext(rel))
	}
	return filepath.Join(s.cfg.OutputDir, rel)
}

// writeOutputs persists rendered documents to the output directory.
func (s *site) writeOutputs(outputs map[string]string) (int, error) {
	written := 0
	for inputPath, content := range outputs {
		target := s.outputPath(inputPath)
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return written, fmt.Errorf("create output dir: %w", err)
		}
		if err := os.WriteFile(target, []byte(content), 0o644); err != nil {
			return written, fmt.Errorf("write %s: %w", target, err)
		}
		written++
	}
	return written, nil
}

// fsReader reads document content from the local filesystem.
type fsReader struct{}

func (fsReader) ReadContent(path string) (string, error) {
	data, err := os.ReadFile(filepath.FromSlash(path))
	if err != nil {
		return "", err
	}
	return string(data), nil
}
