package templates

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"sort"
	"strings"

	"garden_panel/internal/logger"
)

//go:embed assets/*.tmpl
var assets embed.FS

// Template names the dashboard relies on.
const (
	Zone       = "zone"
	RunButton  = "run-button"
	StopButton = "stop-button"
	Page       = "page"
)

// Cache holds every template found under a source tree, keyed by the name
// it was declared with.
type Cache struct {
	set   *template.Template
	names map[string]struct{}
	log   *logger.Logger
}

// Default builds a cache from the templates compiled into the binary.
func Default(log *logger.Logger) (*Cache, error) {
	sub, err := fs.Sub(assets, "assets")
	if err != nil {
		return nil, err
	}
	return New(sub, log)
}

// New scans fsys for *.tmpl and *.html files. Each {{define}} block is
// registered under its declared name; a file without blocks is registered
// under its base name without extension.
func New(fsys fs.FS, log *logger.Logger) (*Cache, error) {
	c := &Cache{
		set:   template.New("").Option("missingkey=zero"),
		names: make(map[string]struct{}),
		log:   logger.OrNop(log),
	}

	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isTemplateFile(p) {
			return nil
		}
		return c.register(fsys, p)
	})
	if err != nil {
		return nil, fmt.Errorf("scan templates: %w", err)
	}
	return c, nil
}

func isTemplateFile(p string) bool {
	ext := path.Ext(p)
	return ext == ".tmpl" || ext == ".html"
}

func (c *Cache) register(fsys fs.FS, p string) error {
	raw, err := fs.ReadFile(fsys, p)
	if err != nil {
		return fmt.Errorf("read template %q: %w", p, err)
	}

	// Parse into a scratch set first to learn which names the file declares.
	scratch, err := template.New(p).Parse(string(raw))
	if err != nil {
		return fmt.Errorf("parse template %q: %w", p, err)
	}

	var declared []string
	for _, t := range scratch.Templates() {
		if t.Name() != p {
			declared = append(declared, t.Name())
		}
	}

	if len(declared) == 0 {
		name := strings.TrimSuffix(path.Base(p), path.Ext(p))
		if _, dup := c.names[name]; dup {
			return fmt.Errorf("duplicate template %q in %q", name, p)
		}
		if _, err := c.set.New(name).Parse(string(raw)); err != nil {
			return fmt.Errorf("parse template %q: %w", p, err)
		}
		c.names[name] = struct{}{}
		return nil
	}

	for _, name := range declared {
		if _, dup := c.names[name]; dup {
			return fmt.Errorf("duplicate template %q in %q", name, p)
		}
	}
	if _, err := c.set.New(p).Parse(string(raw)); err != nil {
		return fmt.Errorf("parse template %q: %w", p, err)
	}
	for _, name := range declared {
		c.names[name] = struct{}{}
	}
	return nil
}

// Has reports whether a template with the given name is registered.
func (c *Cache) Has(name string) bool {
	_, ok := c.names[name]
	return ok
}

// Names returns the registered template names in sorted order.
func (c *Cache) Names() []string {
	out := make([]string, 0, len(c.names))
	for name := range c.names {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Render executes the named template against data. A missing template or
// an execution error is logged and yields ("", false); callers insert
// nothing in that case.
func (c *Cache) Render(name string, data any) (string, bool) {
	if !c.Has(name) {
		c.log.Errorw("template_not_found", "name", name)
		return "", false
	}
	var buf bytes.Buffer
	if err := c.set.ExecuteTemplate(&buf, name, data); err != nil {
		c.log.Errorw("template_render_failed", "name", name, "err", err)
		return "", false
	}
	return buf.String(), true
}
