package main

import (
	"net/url"
	"strconv"
)

// Page is one link of a paginated API listing. The current page carries no
// URL.
type Page struct {
	Num int    `json:"num"`
	URL string `json:"url,omitempty"`
}

type Pages []Page

func pageCount(total, perPage int) int {
	if perPage <= 0 || total <= 0 {
		return 0
	}
	return (total + perPage - 1) / perPage
}

// paginate links the pages of the listing returned by action. current is 1
// based; a listing that fits on one page gets no links.
func paginate(action string, current, total, perPage int) Pages {
	n := pageCount(total, perPage)
	if n <= 1 {
		return Pages{}
	}
	if current < 1 {
		current = 1
	}
	pages := make(Pages, n)
	for i := range pages {
		pages[i].Num = i + 1
		if i+1 == current {
			continue
		}
		q := url.Values{}
		q.Set("action", action)
		q.Set("page", strconv.Itoa(i+1))
		pages[i].URL = "?" + q.Encode()
	}
	return pages
}
