package main

import (
	"strconv"
	"time"

	"github.com/aquilax/campusmap/campus"
	"github.com/gosimple/slug"
	"github.com/microcosm-cc/bluemonday"
	"github.com/russross/blackfriday/v2"
)

func hfTime(t time.Time) string {
	return t.Format("01.02.2006 15:04")
}

func hfSlug(s string) string {
	return slug.Make(s) + ".html"
}

func spaceURL(baseURL string, s campus.Space) string {
	return baseURL + "/space/" + strconv.FormatInt(s.ID, 10) + "/" + hfSlug(s.DisplayName())
}

func commentURL(baseURL string, s campus.Space, r campus.Report) string {
	return spaceURL(baseURL, s) + "#C" + strconv.FormatInt(r.ID, 10)
}

// renderText turns comment text into sanitized HTML. Comments are plain
// text, so only line breaks and links are given meaning.
func renderText(t string) string {
	extensions := blackfriday.NoIntraEmphasis |
		blackfriday.Autolink |
		blackfriday.Strikethrough |
		blackfriday.HardLineBreak

	renderer := blackfriday.NewHTMLRenderer(blackfriday.HTMLRendererParameters{
		Flags: blackfriday.UseXHTML |
			blackfriday.Smartypants |
			blackfriday.SmartypantsFractions,
	})
	unsafe := blackfriday.Run([]byte(t), blackfriday.WithExtensions(extensions), blackfriday.WithRenderer(renderer))
	return string(bluemonday.UGCPolicy().SanitizeBytes(unsafe))
}
