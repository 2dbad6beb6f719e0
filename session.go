package main

import (
	"embed"
	"html/template"
	"net/http"
)

//go:embed templates/*.html
var templateFiles embed.FS

// Session collects the data of one rendered page.
type Session struct {
	td TemplateData
	ln *Language
}

type TemplateData map[string]interface{}

type PathItem struct {
	URL   string
	Title string
}

func NewSession(c *Config, ln *Language) *Session {
	return &Session{
		td: NewTemplateData(c, ln),
		ln: ln,
	}
}

func NewTemplateData(c *Config, ln *Language) TemplateData {
	td := make(TemplateData)
	td.Set("Title", ln.Lang(c.Title))
	td.Set("Description", ln.Lang(c.Description))
	td.Set("Lang", c.Language)
	td.Set("Path", []PathItem{})
	return td
}

func (s *Session) getHelpers() template.FuncMap {
	return template.FuncMap{
		"lang": s.Lang,
		"time": hfTime,
		"slug": hfSlug,
		"text": func(t string) template.HTML {
			return template.HTML(renderText(t))
		},
	}
}

func (s *Session) Lang(text string) string {
	return s.ln.Lang(text)
}

// AddPath appends a breadcrumb. An empty url marks the current page.
func (s *Session) AddPath(url, title string) {
	path, _ := s.td["Path"].([]PathItem)
	s.td.Set("Path", append(path, PathItem{URL: url, Title: title}))
}

func (s *Session) render(w http.ResponseWriter, names ...string) error {
	patterns := make([]string, len(names))
	for i, n := range names {
		patterns[i] = "templates/" + n
	}
	t, err := template.New(names[0]).Funcs(s.getHelpers()).ParseFS(templateFiles, patterns...)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return t.Execute(w, s.td)
}

func (td TemplateData) Set(name string, value interface{}) {
	td[name] = value
}

func (s *Session) Set(name string, value interface{}) {
	s.td.Set(name, value)
}
