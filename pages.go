package main

import (
	"net/http"
	"strconv"
	"time"

	"github.com/aquilax/campusmap/campus"
	"github.com/gorilla/feeds"
	"github.com/gorilla/mux"
	"github.com/sourcegraph/sitemap"
)

type thread struct {
	campus.Report
	Likes   int
	Replies campus.ReplyList
}

func (l *CampusMap) spaceHandler(w http.ResponseWriter, r *http.Request) error {
	vars := mux.Vars(r)
	spaceID, err := strconv.ParseInt(vars["spaceID"], 10, 64)
	if err != nil {
		return &HTTPError{Err: err, Code: http.StatusNotFound, Message: l.ln.Lang("Space not found.")}
	}
	space, err := l.m.getSpace(spaceID)
	if err != nil {
		return err
	}
	likes, err := l.m.countLikes(campus.SpaceLike, spaceID)
	if err != nil {
		return err
	}

	var threads []thread
	if !space.CommentsDisabled() {
		reports, err := l.m.getReports(spaceID)
		if err != nil {
			return err
		}
		for _, report := range reports {
			t := thread{Report: report}
			if t.Likes, err = l.m.countLikes(campus.CommentLike, report.ID); err != nil {
				return err
			}
			if t.Replies, err = l.m.getReplies(report.ID); err != nil {
				return err
			}
			threads = append(threads, t)
		}
	}

	s := NewSession(l.config, l.ln)
	s.AddPath("/", s.Lang("Home"))
	s.AddPath("", space.DisplayName())
	s.Set("Subtitle", space.DisplayName())
	s.Set("Description", space.Description)
	s.Set("Space", space)
	s.Set("Likes", likes)
	s.Set("CommentsDisabled", space.CommentsDisabled())
	s.Set("Threads", threads)
	return s.render(w, "layout.html", "space.html")
}

func (l *CampusMap) feedHandler(w http.ResponseWriter, r *http.Request) error {
	reports, err := l.m.getRecentReports(feedItems)
	if err != nil {
		return err
	}
	spaces, err := l.m.getSpaces()
	if err != nil {
		return err
	}
	byID := make(map[campus.SpaceID]campus.Space, len(spaces))
	for _, s := range spaces {
		byID[s.ID] = s
	}

	baseURL := "http://" + r.Host
	feed := &feeds.Feed{
		Title:       l.ln.Lang(l.config.Title),
		Link:        &feeds.Link{Href: baseURL},
		Description: l.ln.Lang(l.config.Description),
		Created:     time.Now(),
	}
	for _, report := range reports {
		space, ok := byID[report.SpaceID]
		if !ok {
			continue
		}
		link := commentURL(baseURL, space, report)
		feed.Items = append(feed.Items, &feeds.Item{
			Id:          link,
			Title:       space.DisplayName() + " - " + report.Author,
			Link:        &feeds.Link{Href: link},
			Description: renderText(report.Content),
			Created:     report.Created,
		})
	}
	w.Header().Set("Content-Type", "application/rss+xml")
	return feed.WriteRss(w)
}

func (l *CampusMap) sitemapHandler(w http.ResponseWriter, r *http.Request) error {
	spaces, err := l.m.getSpaces()
	if err != nil {
		return err
	}
	var urlSet sitemap.URLSet
	for _, s := range spaces {
		urlSet.URLs = append(urlSet.URLs, sitemap.URL{
			Loc:        spaceURL("http://"+r.Host, s),
			ChangeFreq: sitemap.Daily,
			Priority:   0.7,
		})
	}
	xml, err := sitemap.Marshal(&urlSet)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/xml")
	_, err = w.Write(xml)
	return err
}
