package cli

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/boycaught/eleventy/pkg/config"
	"github.com/boycaught/eleventy/pkg/events"
)

func testSiteConfig(t *testing.T) *config.Config {
	t.Helper()
	root := t.TempDir()
	cfg := config.New()
	cfg.InputDir = filepath.Join(root, "content")
	cfg.OutputDir = filepath.Join(root, "_site")
	cfg.IncludesDir = filepath.Join(root, "_includes")
	cfg.DataDir = filepath.Join(root, "_data")
	if err := os.MkdirAll(cfg.InputDir, 0o755); err != nil {
		t.Fatal(err)
	}
	return cfg
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestDocumentDiscovery(t *testing.T) {
	cfg := testSiteConfig(t)
	writeFile(t, filepath.Join(cfg.InputDir, "index.html"), "<p>home</p>")
	writeFile(t, filepath.Join(cfg.InputDir, "posts", "a.md"), "# a")
	writeFile(t, filepath.Join(cfg.InputDir, "_drafts", "b.md"), "# b")
	writeFile(t, filepath.Join(cfg.InputDir, "notes.txt"), "ignored")

	s, err := newSite(cfg, events.NewBus())
	if err != nil {
		t.Fatalf("newSite() error: %v", err)
	}
	docs, err := s.documents(cfg)
	if err != nil {
		t.Fatalf("documents() error: %v", err)
	}

	// Underscore directories and unknown extensions are excluded.
	if len(docs) != 2 {
		paths := make([]string, len(docs))
		for i, d := range docs {
			paths[i] = d.Path()
		}
		t.Fatalf("documents() = %v, want 2 documents", paths)
	}
}

func TestEngineFor(t *testing.T) {
	cfg := testSiteConfig(t)
	s, err := newSite(cfg, events.NewBus())
	if err != nil {
		t.Fatalf("newSite() error: %v", err)
	}

	tests := []struct {
		path string
		want string
	}{
		{"posts/a.md", "md"},
		{"posts/b.MARKDOWN", "md"},
		{"index.html", "gotmpl"},
		{"feed.tmpl", "gotmpl"},
		{"style.css", ""},
	}

	for _, tt := range tests {
		eng := s.engineFor(tt.path)
		got := ""
		if eng != nil {
			got = eng.Name()
		}
		if got != tt.want {
			t.Errorf("engineFor(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestOutputPath(t *testing.T) {
	cfg := testSiteConfig(t)
	s, err := newSite(cfg, events.NewBus())
	if err != nil {
		t.Fatalf("newSite() error: %v", err)
	}

	tests := []struct {
		input string
		want  string
	}{
		{filepath.ToSlash(filepath.Join(cfg.InputDir, "posts", "a.md")), filepath.Join(cfg.OutputDir, "posts", "a.html")},
		{filepath.ToSlash(filepath.Join(cfg.InputDir, "index.html")), filepath.Join(cfg.OutputDir, "index.html")},
		{filepath.ToSlash(filepath.Join(cfg.InputDir, "feed.xml.tmpl")), filepath.Join(cfg.OutputDir, "feed.xml")},
	}

	for _, tt := range tests {
		if got := s.outputPath(tt.input); got != tt.want {
			t.Errorf("outputPath(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestGlobalData(t *testing.T) {
	cfg := testSiteConfig(t)
	cfg.Title = "Test Site"
	cfg.BaseURL = "https://test.example"
	writeFile(t, filepath.Join(cfg.DataDir, "nav.toml"), "home = \"/\"\n")

	s, err := newSite(cfg, events.NewBus())
	if err != nil {
		t.Fatalf("newSite() error: %v", err)
	}

	site, ok := s.global["site"].(map[string]any)
	if !ok {
		t.Fatalf("global data missing site entry: %#v", s.global)
	}
	if site["title"] != "Test Site" {
		t.Errorf("site.title = %v, want %q", site["title"], "Test Site")
	}

	nav, ok := s.global["nav"].(map[string]any)
	if !ok {
		t.Fatalf("global data missing nav entry: %#v", s.global)
	}
	if nav["home"] != "/" {
		t.Errorf("nav.home = %v, want %q", nav["home"], "/")
	}
}

func TestStringList(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want []string
	}{
		{"single string", "post", []string{"post"}},
		{"string slice", []string{"a", "b"}, []string{"a", "b"}},
		{"any slice", []any{"a", 3, "b"}, []string{"a", "b"}},
		{"nil", nil, nil},
		{"number", 42, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stringList(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("stringList(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
