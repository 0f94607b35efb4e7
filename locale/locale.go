// Package locale holds the default envelope messages, one table per language.
//
// English ships embedded. Applications override or add languages by loading
// YAML files that map message keys to text:
//
//	not_found: Die angeforderte Ressource wurde nicht gefunden.
//	forbidden: Zugriff verweigert.
package locale

import (
	"context"
	"embed"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/spf13/viper"
	"golang.org/x/text/language"
)

// Key identifies a message in the table.
type Key string

const (
	KeySuccess            Key = "success"
	KeyCreated            Key = "created"
	KeyValidation         Key = "validation"
	KeyUnprocessable      Key = "unprocessable"
	KeyUnauthorized       Key = "unauthorized"
	KeyForbidden          Key = "forbidden"
	KeyNotFound           Key = "not_found"
	KeyNotAllowed         Key = "not_allowed"
	KeyError              Key = "error"
	KeyConflict           Key = "conflict"
	KeyTooManyRequests    Key = "too_many_requests"
	KeyServerError        Key = "server_error"
	KeyServiceUnavailable Key = "service_unavailable"
	KeyResponse           Key = "response"
)

//go:embed lang/*.yaml
var bundled embed.FS

// Table resolves message keys for a language. It is safe for concurrent use.
type Table struct {
	mu       sync.RWMutex
	fallback language.Tag
	messages map[language.Tag]map[Key]string
	tags     []language.Tag
	matcher  language.Matcher
}

// New returns an empty table. Lookups that match no loaded language use fallback.
func New(fallback language.Tag) *Table {
	t := &Table{
		fallback: fallback,
		messages: make(map[language.Tag]map[Key]string),
	}
	t.rebuild()
	return t
}

// NewDefault returns a table preloaded with the bundled translations and
// English as the fallback.
func NewDefault() *Table {
	t, err := NewBundled(language.English)
	if err != nil {
		panic(err)
	}
	return t
}

// NewBundled returns a table preloaded with the bundled translations.
func NewBundled(fallback language.Tag) (*Table, error) {
	t := New(fallback)
	if err := t.LoadFS(bundled, "lang"); err != nil {
		return nil, fmt.Errorf("locale: bundled translations: %w", err)
	}
	return t, nil
}

var (
	defaultTable *Table
	defaultOnce  sync.Once
)

// Default returns the shared table with the bundled translations.
func Default() *Table {
	defaultOnce.Do(func() {
		defaultTable = NewDefault()
	})
	return defaultTable
}

// Fallback returns the language used when nothing else matches.
func (t *Table) Fallback() language.Tag {
	return t.fallback
}

// Add merges messages into the table for tag. Existing keys are overwritten.
func (t *Table) Add(tag language.Tag, messages map[Key]string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	table, ok := t.messages[tag]
	if !ok {
		table = make(map[Key]string, len(messages))
		t.messages[tag] = table
	}
	for k, v := range messages {
		table[k] = v
	}
	t.rebuild()
}

// Load reads a flat YAML document of key: message pairs for tag.
func (t *Table) Load(tag language.Tag, r io.Reader) error {
	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(r); err != nil {
		return fmt.Errorf("read %s messages: %w", tag, err)
	}

	messages := make(map[Key]string, len(v.AllKeys()))
	for _, k := range v.AllKeys() {
		messages[Key(k)] = v.GetString(k)
	}
	t.Add(tag, messages)
	return nil
}

// LoadFS loads every <language>.yaml (or .yml) file in dir. The file name,
// minus extension, must be a BCP 47 tag such as "en", "pt-BR" or "zh_Hant".
func (t *Table) LoadFS(fsys fs.FS, dir string) error {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return fmt.Errorf("read locale dir %s: %w", dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ext := path.Ext(name)
		if ext != ".yaml" && ext != ".yml" {
			continue
		}

		tag, err := language.Parse(strings.TrimSuffix(name, ext))
		if err != nil {
			return fmt.Errorf("locale file %s: %w", name, err)
		}

		if err := t.loadFile(fsys, path.Join(dir, name), tag); err != nil {
			return err
		}
	}
	return nil
}

// LoadDir loads translations from a directory on disk.
func (t *Table) LoadDir(dir string) error {
	return t.LoadFS(os.DirFS(dir), ".")
}

func (t *Table) loadFile(fsys fs.FS, name string, tag language.Tag) error {
	f, err := fsys.Open(name)
	if err != nil {
		return fmt.Errorf("open %s: %w", name, err)
	}
	defer f.Close()
	return t.Load(tag, f)
}

// Languages returns the loaded languages, fallback first.
func (t *Table) Languages() []language.Tag {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]language.Tag(nil), t.tags...)
}

// Match picks the loaded language that best serves the preferences.
func (t *Table) Match(prefs ...language.Tag) language.Tag {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.match(prefs...)
}

func (t *Table) match(prefs ...language.Tag) language.Tag {
	if len(prefs) == 0 || len(t.tags) == 0 {
		return t.fallback
	}
	_, idx, conf := t.matcher.Match(prefs...)
	if conf == language.No {
		return t.fallback
	}
	return t.tags[idx]
}

// Message returns the text for key in the language closest to tag. Missing
// keys fall back to the fallback language and finally to the key itself.
func (t *Table) Message(tag language.Tag, key Key) string {
	return t.lookup(key, tag)
}

// ForRequest resolves key using the language stored on the request context,
// or the request's Accept-Language header.
func (t *Table) ForRequest(r *http.Request, key Key) string {
	return t.lookup(key, Preferences(r)...)
}

func (t *Table) lookup(key Key, prefs ...language.Tag) string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if msg, ok := t.messages[t.match(prefs...)][key]; ok {
		return msg
	}
	if msg, ok := t.messages[t.fallback][key]; ok {
		return msg
	}
	return string(key)
}

// rebuild must be called with the write lock held.
func (t *Table) rebuild() {
	tags := make([]language.Tag, 0, len(t.messages)+1)
	tags = append(tags, t.fallback)
	others := make([]language.Tag, 0, len(t.messages))
	for tag := range t.messages {
		if tag != t.fallback {
			others = append(others, tag)
		}
	}
	sort.Slice(others, func(i, j int) bool {
		return others[i].String() < others[j].String()
	})
	t.tags = append(tags, others...)
	t.matcher = language.NewMatcher(t.tags)
}

type languageKey struct{}

// WithLanguage pins the response language on ctx, overriding Accept-Language.
func WithLanguage(ctx context.Context, tag language.Tag) context.Context {
	return context.WithValue(ctx, languageKey{}, tag)
}

// LanguageFromContext returns the language pinned by WithLanguage.
func LanguageFromContext(ctx context.Context) (language.Tag, bool) {
	if ctx == nil {
		return language.Und, false
	}
	tag, ok := ctx.Value(languageKey{}).(language.Tag)
	return tag, ok
}

// Preferences returns the languages requested by r, most preferred first.
// A language pinned with WithLanguage wins over the Accept-Language header.
func Preferences(r *http.Request) []language.Tag {
	if r == nil {
		return nil
	}
	if tag, ok := LanguageFromContext(r.Context()); ok {
		return []language.Tag{tag}
	}
	header := r.Header.Get("Accept-Language")
	if header == "" {
		return nil
	}
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil {
		return nil
	}
	return tags
}
