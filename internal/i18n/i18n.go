// Package i18n provides the read-only string tables for the supported locales
// and Accept-Language negotiation.
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"golang.org/x/text/language"

	"github.com/mosaic-hrd/website/internal/domain"
)

//go:embed messages/*.json
var messagesFS embed.FS

// Dictionary is an immutable key to string table for one locale. Nested JSON
// objects are flattened into dotted keys such as "nav.home".
type Dictionary struct {
	locale  string
	entries map[string]string
}

// Locale returns the dictionary's two-letter locale.
func (d Dictionary) Locale() string {
	return d.locale
}

// T returns the string for key, or key itself when it is missing.
func (d Dictionary) T(key string) string {
	if v, ok := d.entries[key]; ok {
		return v
	}
	return key
}

// Has reports whether key is defined.
func (d Dictionary) Has(key string) bool {
	_, ok := d.entries[key]
	return ok
}

// Dir is the text direction, "rtl" for Arabic.
func (d Dictionary) Dir() string {
	if d.locale == domain.LocaleAR {
		return "rtl"
	}
	return "ltr"
}

// Keys lists every defined key in sorted order.
func (d Dictionary) Keys() []string {
	keys := make([]string, 0, len(d.entries))
	for k := range d.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Catalog holds one Dictionary per supported locale.
type Catalog struct {
	fallback string
	dicts    map[string]Dictionary
	tags     []language.Tag
	locales  []string
	matcher  language.Matcher
}

// Load reads every messages/<locale>.json in fsys. fallback must be one of them.
func Load(fsys fs.FS, fallback string) (*Catalog, error) {
	files, err := fs.Glob(fsys, "messages/*.json")
	if err != nil {
		return nil, fmt.Errorf("i18n: glob messages: %w", err)
	}
	sort.Strings(files)

	c := &Catalog{fallback: fallback, dicts: make(map[string]Dictionary, len(files))}
	// The fallback goes first so the matcher prefers it on ties.
	ordered := make([]string, 0, len(files))
	for _, f := range files {
		locale := strings.TrimSuffix(path.Base(f), ".json")
		if locale == fallback {
			ordered = append([]string{locale}, ordered...)
		} else {
			ordered = append(ordered, locale)
		}

		raw, err := fs.ReadFile(fsys, f)
		if err != nil {
			return nil, fmt.Errorf("i18n: read %s: %w", f, err)
		}
		var tree map[string]any
		if err := json.Unmarshal(raw, &tree); err != nil {
			return nil, fmt.Errorf("i18n: parse %s: %w", f, err)
		}
		entries := map[string]string{}
		flatten("", tree, entries)
		c.dicts[locale] = Dictionary{locale: locale, entries: entries}
	}

	if _, ok := c.dicts[fallback]; !ok {
		return nil, fmt.Errorf("i18n: no messages for fallback locale %q", fallback)
	}
	for _, l := range ordered {
		tag, err := language.Parse(l)
		if err != nil {
			return nil, fmt.Errorf("i18n: invalid locale %q: %w", l, err)
		}
		c.tags = append(c.tags, tag)
		c.locales = append(c.locales, l)
	}
	c.matcher = language.NewMatcher(c.tags)
	return c, nil
}

// Default loads the embedded Arabic and English tables with Arabic as fallback.
func Default() (*Catalog, error) {
	return Load(messagesFS, domain.LocaleAR)
}

func flatten(prefix string, node map[string]any, out map[string]string) {
	for k, v := range node {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch val := v.(type) {
		case string:
			out[key] = val
		case map[string]any:
			flatten(key, val, out)
		default:
			out[key] = fmt.Sprint(val)
		}
	}
}

// Supported reports whether locale has a dictionary.
func (c *Catalog) Supported(locale string) bool {
	_, ok := c.dicts[locale]
	return ok
}

// Locales lists the supported locales, fallback first.
func (c *Catalog) Locales() []string {
	return append([]string(nil), c.locales...)
}

// Fallback is the locale used when nothing matches.
func (c *Catalog) Fallback() string {
	return c.fallback
}

// Dictionary returns the table for locale, or the fallback table.
func (c *Catalog) Dictionary(locale string) Dictionary {
	if d, ok := c.dicts[locale]; ok {
		return d
	}
	return c.dicts[c.fallback]
}

// Negotiate picks the best supported locale for an Accept-Language header.
func (c *Catalog) Negotiate(acceptLanguage string) string {
	prefs, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(prefs) == 0 {
		return c.fallback
	}
	_, idx, conf := c.matcher.Match(prefs...)
	if conf == language.No {
		return c.fallback
	}
	return c.locales[idx]
}
