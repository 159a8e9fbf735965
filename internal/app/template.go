package app

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin/render"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/mosaic-hrd/website/internal/config"
	"github.com/mosaic-hrd/website/internal/domain"
	"github.com/mosaic-hrd/website/internal/media"
)

// TemplateRenderer is the gin HTML renderer for the site templates.
//
// Layouts (templates/layouts/*.html) and partials (templates/partials/*.html)
// form a base set; every other template is a page, parsed on a clone of the
// base so it can override the layout blocks. Pages are addressed by their
// path under templates/, e.g. "pages/home.html" or "errors/404.html".
//
// Debug mode re-parses on every request; release mode parses once.
type TemplateRenderer struct {
	templates map[string]*template.Template // page name -> compiled template set (release mode only)
	fs        fs.FS                         // filesystem containing templates/ directory
	funcMap   template.FuncMap
	debug     bool
}

// Compile-time check: TemplateRenderer implements render.HTMLRender.
var _ render.HTMLRender = (*TemplateRenderer)(nil)

// NewTemplateRenderer creates a TemplateRenderer over fsys, which must hold
// a templates/ directory. site backs the "site" template function.
func NewTemplateRenderer(fsys fs.FS, debug bool, site config.SiteConfig) (*TemplateRenderer, error) {
	r := &TemplateRenderer{
		fs:      fsys,
		funcMap: templateFuncMap(site),
		debug:   debug,
	}
	if debug {
		return r, nil
	}

	base, err := r.loadBase()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	pages, err := r.pageNames()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	r.templates = make(map[string]*template.Template, len(pages))
	for _, name := range pages {
		t, err := r.parsePage(base, name)
		if err != nil {
			return nil, fmt.Errorf("parse templates: %w", err)
		}
		r.templates[name] = t
	}
	return r, nil
}

// Instance implements render.HTMLRender. In debug mode the base set and the
// requested page are read from disk again.
func (r *TemplateRenderer) Instance(name string, data any) render.Render {
	if !r.debug {
		return &HTMLInstance{Template: r.templates[name], Name: name, Data: data}
	}

	base, err := r.loadBase()
	if err != nil {
		return &HTMLInstance{Name: name, err: err}
	}
	if _, err := fs.Stat(r.fs, "templates/"+name); err != nil {
		return &HTMLInstance{Name: name}
	}
	t, err := r.parsePage(base, name)
	if err != nil {
		return &HTMLInstance{Name: name, err: err}
	}
	return &HTMLInstance{Template: t, Name: name, Data: data}
}

// loadBase parses the layouts and partials into one set.
func (r *TemplateRenderer) loadBase() (*template.Template, error) {
	base := template.New("").Funcs(r.funcMap)
	for _, pattern := range []string{"templates/layouts/*.html", "templates/partials/*.html"} {
		files, err := fs.Glob(r.fs, pattern)
		if err != nil {
			return nil, fmt.Errorf("glob %s: %w", pattern, err)
		}
		for _, f := range files {
			if err := parseFile(base.New(f), r.fs, f); err != nil {
				return nil, err
			}
		}
	}
	return base, nil
}

// parsePage parses page name on a clone of base so it can fill the layout
// blocks without leaking into other pages.
func (r *TemplateRenderer) parsePage(base *template.Template, name string) (*template.Template, error) {
	clone, err := base.Clone()
	if err != nil {
		return nil, fmt.Errorf("clone base for %s: %w", name, err)
	}
	if err := parseFile(clone.New(name), r.fs, "templates/"+name); err != nil {
		return nil, err
	}
	return clone, nil
}

func parseFile(t *template.Template, fsys fs.FS, path string) error {
	content, err := fs.ReadFile(fsys, path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if _, err := t.Parse(string(content)); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// pageNames lists every .html file under templates/ outside layouts/ and
// partials/, relative to templates/.
func (r *TemplateRenderer) pageNames() ([]string, error) {
	var pages []string
	err := fs.WalkDir(r.fs, "templates", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || path.Ext(p) != ".html" {
			return nil
		}
		rel := strings.TrimPrefix(p, "templates/")
		if dir, _, _ := strings.Cut(rel, "/"); dir == "layouts" || dir == "partials" {
			return nil
		}
		pages = append(pages, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("discover pages: %w", err)
	}
	return pages, nil
}

// templateFuncMap returns the helpers every page can call. site is exposed
// through the "site" function so layouts can render contact details without
// each handler passing them.
func templateFuncMap(site config.SiteConfig) template.FuncMap {
	return template.FuncMap{
		// json embeds v in a script context, e.g. the centers map pins.
		"json": func(v any) template.JS {
			b, err := json.Marshal(v)
			if err != nil {
				return template.JS("null")
			}
			return template.JS(b)
		},

		"site": func() config.SiteConfig { return site },

		// img resolves a content API image path against the media host.
		// Absolute URLs are returned unchanged.
		"img": func(p string) string {
			if p == "" || strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://") || site.ImageBaseURL == "" {
				return p
			}
			return strings.TrimRight(site.ImageBaseURL, "/") + "/" + strings.TrimLeft(p, "/")
		},

		// formatDate renders a content API date as YYYY-MM-DD, or returns it
		// unchanged when no known layout matches.
		"formatDate": func(s string) string {
			t, ok := domain.ParseDate(s)
			if !ok {
				return s
			}
			return t.Format("2006-01-02")
		},

		"youtubeEmbed": media.EmbedURL,
		"youtubeThumb": media.ThumbnailURL,

		// title upper-cases the first letter of each word for locale.
		"title": func(locale, s string) string {
			tag, err := language.Parse(locale)
			if err != nil {
				tag = language.Und
			}
			return cases.Title(tag).String(s)
		},

		// excerpt cuts s to at most n runes on a word boundary.
		"excerpt": excerpt,

		// dict builds a map from key/value pairs so partials can take more
		// than one argument: {{ template "card" dict "Card" . "Dict" $.Dict }}.
		"dict": func(pairs ...any) (map[string]any, error) {
			if len(pairs)%2 != 0 {
				return nil, fmt.Errorf("dict: odd number of arguments")
			}
			m := make(map[string]any, len(pairs)/2)
			for i := 0; i < len(pairs); i += 2 {
				k, ok := pairs[i].(string)
				if !ok {
					return nil, fmt.Errorf("dict: key %v is not a string", pairs[i])
				}
				m[k] = pairs[i+1]
			}
			return m, nil
		},

		// dangerouslySetInnerHTML marks s as safe HTML. Only for the rich text
		// the content API authors; never for visitor input.
		"dangerouslySetInnerHTML": func(s string) template.HTML {
			return template.HTML(s)
		},

		"add": func(a, b int) int {
			return a + b
		},

		"sub": func(a, b int) int {
			return a - b
		},

		"seq": func(start, end int) []int {
			if start > end {
				return nil
			}
			s := make([]int, 0, end-start+1)
			for i := start; i <= end; i++ {
				s = append(s, i)
			}
			return s
		},
	}
}

func excerpt(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	cut := string(r[:n])
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		cut = cut[:i]
	}
	return cut + "…"
}

// HTMLInstance implements gin's render.Render interface for a single template
// execution. It is returned by TemplateRenderer.Instance.
type HTMLInstance struct {
	Template *template.Template
	Name     string
	Data     any
	err      error // set when template parsing failed (debug mode)
}

const htmlContentType = "text/html; charset=utf-8"

// Render writes the template output to the HTTP response writer.
func (h *HTMLInstance) Render(w http.ResponseWriter) error {
	h.WriteContentType(w)
	if h.err != nil {
		return h.err
	}
	if h.Template == nil {
		return fmt.Errorf("template %q not found", h.Name)
	}
	return h.Template.ExecuteTemplate(w, h.Name, h.Data)
}

// WriteContentType sets the Content-Type header to text/html; charset=utf-8
// if it has not already been set.
func (h *HTMLInstance) WriteContentType(w http.ResponseWriter) {
	header := w.Header()
	if val := header["Content-Type"]; len(val) == 0 {
		header["Content-Type"] = []string{htmlContentType}
	}
}
