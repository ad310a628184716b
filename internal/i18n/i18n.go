// Package i18n holds the Turkish and English message catalogs used for API
// error messages, chatbot fallbacks and notification e-mails.
//
//	loc := catalog.Localizer("tr")
//	loc.T("error.not_found") // "Kayıt bulunamadı"
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"strings"

	"golang.org/x/text/language"
)

//go:embed locales/*.json
var embedded embed.FS

// DefaultLanguage is used when the request names no supported language.
const DefaultLanguage = "tr"

// SupportedLanguages lists catalog languages; the first one is the default.
var SupportedLanguages = []string{"tr", "en"}

var matcher = language.NewMatcher([]language.Tag{language.Turkish, language.English})

// Catalog is an immutable set of flattened translations keyed by language.
type Catalog struct {
	messages map[string]map[string]string
}

// Load reads <lang>.json for every supported language from fsys.
func Load(fsys fs.FS) (*Catalog, error) {
	c := &Catalog{messages: make(map[string]map[string]string, len(SupportedLanguages))}
	for _, lang := range SupportedLanguages {
		name := lang + ".json"
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("read translation file %s: %w", name, err)
		}
		var nested map[string]any
		if err := json.Unmarshal(data, &nested); err != nil {
			return nil, fmt.Errorf("parse translation file %s: %w", name, err)
		}
		flat := make(map[string]string)
		flatten("", nested, flat)
		c.messages[lang] = flat
	}
	return c, nil
}

// Default loads the catalogs compiled into the binary.
func Default() (*Catalog, error) {
	sub, err := fs.Sub(embedded, "locales")
	if err != nil {
		return nil, err
	}
	return Load(sub)
}

// MustDefault is Default for package initialization and tests.
func MustDefault() *Catalog {
	c, err := Default()
	if err != nil {
		panic(err)
	}
	return c
}

// Len returns the number of keys for lang.
func (c *Catalog) Len(lang string) int {
	return len(c.messages[lang])
}

// Localizer returns a translator bound to lang, falling back to the default.
func (c *Catalog) Localizer(lang string) *Localizer {
	if _, ok := c.messages[lang]; !ok {
		lang = DefaultLanguage
	}
	return &Localizer{catalog: c, lang: lang}
}

// Localizer translates keys for one language.
type Localizer struct {
	catalog *Catalog
	lang    string
}

func (l *Localizer) Lang() string {
	return l.lang
}

// T returns the message for key. Missing keys fall back to the default
// language and finally to the key itself. {{name}} placeholders are filled
// from params, given as name/value pairs.
func (l *Localizer) T(key string, params ...string) string {
	msg, ok := l.catalog.messages[l.lang][key]
	if !ok {
		if msg, ok = l.catalog.messages[DefaultLanguage][key]; !ok {
			return key
		}
	}
	for i := 0; i+1 < len(params); i += 2 {
		msg = strings.ReplaceAll(msg, "{{"+params[i]+"}}", params[i+1])
	}
	return msg
}

// DetectLanguage picks the best supported language from an Accept-Language header.
func DetectLanguage(acceptLanguage string) string {
	if strings.TrimSpace(acceptLanguage) == "" {
		return DefaultLanguage
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return DefaultLanguage
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return DefaultLanguage
	}
	return SupportedLanguages[idx]
}

func flatten(prefix string, src map[string]any, dst map[string]string) {
	for k, v := range src {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch val := v.(type) {
		case string:
			dst[key] = val
		case map[string]any:
			flatten(key, val, dst)
		}
	}
}
