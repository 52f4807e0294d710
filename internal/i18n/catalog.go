// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PainLog Contributors

// Package i18n loads the user-facing message catalogs shipped with PainLog.
//
// Catalogs live in locales/<locale>.yaml and are embedded at build time. The
// base locale (Japanese) is always the fallback for missing keys and for
// unsupported locale requests.
package i18n

import (
	"embed"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/samber/oops"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
	"gopkg.in/yaml.v3"
)

// BaseLocale is the source locale every other catalog is translated from.
const BaseLocale = "ja"

//go:embed locales/*.yaml
var embeddedLocales embed.FS

type catalogFile struct {
	Locale   string            `yaml:"locale"`
	Messages map[string]string `yaml:"messages"`
}

// Bundle holds every loaded locale and resolves printers for them.
type Bundle struct {
	builder *catalog.Builder
	tags    []language.Tag
	matcher language.Matcher
	keys    map[string][]string
}

var (
	defaultOnce   sync.Once
	defaultBundle *Bundle
)

// Default returns the process-wide bundle built from the embedded catalogs.
// It panics if the embedded catalogs are malformed, which the package tests
// rule out.
func Default() *Bundle {
	defaultOnce.Do(func() {
		b, err := LoadEmbedded()
		if err != nil {
			panic(err)
		}
		defaultBundle = b
	})
	return defaultBundle
}

// LoadEmbedded loads the catalogs compiled into the binary.
func LoadEmbedded() (*Bundle, error) {
	return LoadFromFS(embeddedLocales)
}

// LoadFromFS loads every locales/*.yaml file from fsys.
func LoadFromFS(fsys fs.FS) (*Bundle, error) {
	paths, err := fs.Glob(fsys, "locales/*.yaml")
	if err != nil {
		return nil, oops.Code("I18N_LOAD_FAILED").With("operation", "glob catalogs").Wrap(err)
	}
	if len(paths) == 0 {
		return nil, oops.Code("I18N_LOAD_FAILED").Errorf("no catalog files found")
	}
	sort.Strings(paths)

	files := make(map[string]catalogFile, len(paths))
	for _, p := range paths {
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, oops.Code("I18N_LOAD_FAILED").With("path", p).Wrap(err)
		}
		var file catalogFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, oops.Code("I18N_PARSE_FAILED").With("path", p).Wrap(err)
		}
		locale := strings.TrimSpace(file.Locale)
		if want := strings.TrimSuffix(path.Base(p), ".yaml"); locale != want {
			return nil, oops.Code("I18N_PARSE_FAILED").
				With("path", p).
				Errorf("locale %q must match file name %q", locale, want)
		}
		if len(file.Messages) == 0 {
			return nil, oops.Code("I18N_PARSE_FAILED").With("path", p).Errorf("messages map is required")
		}
		files[locale] = file
	}

	base, ok := files[BaseLocale]
	if !ok {
		return nil, oops.Code("I18N_PARSE_FAILED").Errorf("base locale %s is not defined", BaseLocale)
	}

	baseTag := language.MustParse(BaseLocale)
	b := &Bundle{
		builder: catalog.NewBuilder(catalog.Fallback(baseTag)),
		keys:    make(map[string][]string, len(files)),
	}

	// The base locale goes first so the matcher falls back to it.
	locales := []string{BaseLocale}
	for locale := range files {
		if locale != BaseLocale {
			locales = append(locales, locale)
		}
	}
	sort.Strings(locales[1:])

	for _, locale := range locales {
		tag, err := language.Parse(locale)
		if err != nil {
			return nil, oops.Code("I18N_PARSE_FAILED").With("locale", locale).Wrap(err)
		}
		file := files[locale]
		keys := make([]string, 0, len(file.Messages))
		for key, msg := range file.Messages {
			if _, known := base.Messages[key]; !known {
				return nil, oops.Code("I18N_PARSE_FAILED").
					With("locale", locale).
					With("key", key).
					Errorf("key is not defined in base locale")
			}
			if err := b.builder.SetString(tag, key, msg); err != nil {
				return nil, oops.Code("I18N_PARSE_FAILED").With("locale", locale).With("key", key).Wrap(err)
			}
			keys = append(keys, key)
		}
		sort.Strings(keys)
		b.keys[locale] = keys
		b.tags = append(b.tags, tag)
	}
	b.matcher = language.NewMatcher(b.tags)

	return b, nil
}

// Locales returns the loaded locale identifiers, base locale first.
func (b *Bundle) Locales() []string {
	out := make([]string, 0, len(b.tags))
	for _, tag := range b.tags {
		out = append(out, tag.String())
	}
	return out
}

// Keys returns the sorted message keys defined for locale.
func (b *Bundle) Keys(locale string) []string {
	keys := b.keys[locale]
	out := make([]string, len(keys))
	copy(out, keys)
	return out
}

// Supports reports whether locale resolves to a loaded catalog rather than
// the fallback.
func (b *Bundle) Supports(locale string) bool {
	tag, err := language.Parse(strings.TrimSpace(locale))
	if err != nil {
		return false
	}
	_, _, confidence := b.matcher.Match(tag)
	return confidence != language.No
}

// Printer returns a printer for the closest supported locale along with the
// tag it resolved to. Unparseable or unsupported locales resolve to BaseLocale.
func (b *Bundle) Printer(locale string) (*message.Printer, language.Tag) {
	tag := b.tags[0]
	if requested, err := language.Parse(strings.TrimSpace(locale)); err == nil {
		if _, idx, confidence := b.matcher.Match(requested); confidence != language.No {
			tag = b.tags[idx]
		}
	}
	return message.NewPrinter(tag, message.Catalog(b.builder)), tag
}
