package main

import (
	"embed"
	"log/slog"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed translations/*.yaml
var translationFiles embed.FS

type Translations map[string]string

type Language struct {
	found bool
	tr    Translations
}

type TransPool struct {
	mutex     sync.Mutex
	languages map[string]*Language
}

func NewTransPool() *TransPool {
	return &TransPool{
		languages: make(map[string]*Language),
	}
}

// NewLanguage loads the embedded catalog for lang. Missing catalogs give a
// language that returns every text unchanged.
func NewLanguage(lang string) *Language {
	l := &Language{
		tr: make(Translations),
	}
	b, err := translationFiles.ReadFile("translations/" + lang + ".yaml")
	if err != nil {
		return l
	}
	if err := yaml.Unmarshal(b, &l.tr); err != nil {
		slog.Error("bad translation catalog", "lang", lang, "err", err)
		return l
	}
	l.found = true
	return l
}

func (tp *TransPool) Get(lang string) *Language {
	tp.mutex.Lock()
	defer tp.mutex.Unlock()
	l, ok := tp.languages[lang]
	if !ok {
		l = NewLanguage(lang)
		tp.languages[lang] = l
	}
	return l
}

func (l *Language) Lang(text string) string {
	if l == nil || !l.found {
		// Language was not found, return the string
		return text
	}
	res, ok := l.tr[text]
	if !ok {
		// Key was not found
		return text
	}
	// Return translated string
	return res
}
