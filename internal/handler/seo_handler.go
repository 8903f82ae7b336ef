package handler

import (
	"context"
	"encoding/xml"
	"fmt"
	"go-portfolio-blog/internal/data"
	"go-portfolio-blog/internal/middleware"
	"net/http"
	"strings"
	"time"
)

// PostLister lists every post, newest first.
type PostLister interface {
	List(ctx context.Context) ([]*data.Post, error)
}

// SeoHandler holds dependencies for SEO-related handlers.
type SeoHandler struct {
	posts   PostLister
	baseURL string
	title   string
}

// NewSeoHandler creates a new SeoHandler. Links are made absolute with baseURL.
func NewSeoHandler(posts PostLister, baseURL, title string) *SeoHandler {
	return &SeoHandler{posts: posts, baseURL: strings.TrimRight(baseURL, "/"), title: title}
}

// robotsHandler serves robots.txt.
func (h *SeoHandler) robotsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintln(w, "User-agent: *")
	fmt.Fprintln(w, "Allow: /")
	fmt.Fprintln(w, "Disallow: /auth/")
	fmt.Fprintln(w, "Disallow: /files")
	fmt.Fprintln(w, "")
	fmt.Fprintf(w, "Sitemap: %s/sitemap.xml\n", h.baseURL)
}

const sitemapDateFormat = "2006-01-02"

type sitemapURL struct {
	XMLName xml.Name `xml:"url"`
	Loc     string   `xml:"loc"`
	LastMod string   `xml:"lastmod,omitempty"`
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

func writeXML(w http.ResponseWriter, v interface{}) *middleware.AppError {
	out, err := xml.MarshalIndent(v, "", "  ")
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to generate XML", Code: http.StatusInternalServerError}
	}
	w.Header().Set("Content-Type", "application/xml")
	_, _ = w.Write([]byte(xml.Header))
	_, _ = w.Write(out)
	return nil
}

// sitemapHandler generates and serves a dynamic sitemap.xml.
func (h *SeoHandler) sitemapHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	posts, err := h.posts.List(r.Context())
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to retrieve posts for sitemap", Code: http.StatusInternalServerError}
	}

	sitemap := urlSet{
		Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs: []sitemapURL{
			{Loc: h.baseURL + "/blog"},
			{Loc: h.baseURL + "/lifestyle"},
		},
	}
	for _, post := range posts {
		sitemap.URLs = append(sitemap.URLs, sitemapURL{
			Loc:     h.baseURL + "/blog/" + post.ID,
			LastMod: post.CreatedAt.Format(sitemapDateFormat),
		})
	}
	return writeXML(w, sitemap)
}

type rssItem struct {
	Title       string   `xml:"title"`
	Link        string   `xml:"link"`
	GUID        string   `xml:"guid"`
	Description string   `xml:"description"`
	Author      string   `xml:"author,omitempty"`
	Categories  []string `xml:"category"`
	PubDate     string   `xml:"pubDate"`
}

type rssChannel struct {
	Title         string    `xml:"title"`
	Link          string    `xml:"link"`
	Description   string    `xml:"description"`
	LastBuildDate string    `xml:"lastBuildDate,omitempty"`
	Items         []rssItem `xml:"item"`
}

type rssFeed struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

// rssLimit is how many of the newest posts the feed carries.
const rssLimit = 20

// rssHandler serves the newest posts as an RSS 2.0 feed.
func (h *SeoHandler) rssHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	posts, err := h.posts.List(r.Context())
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to retrieve posts for feed", Code: http.StatusInternalServerError}
	}
	if len(posts) > rssLimit {
		posts = posts[:rssLimit]
	}

	feed := rssFeed{
		Version: "2.0",
		Channel: rssChannel{
			Title:       h.title,
			Link:        h.baseURL + "/blog",
			Description: h.title + " posts",
		},
	}
	if len(posts) > 0 {
		feed.Channel.LastBuildDate = posts[0].CreatedAt.UTC().Format(time.RFC1123Z)
	}
	for _, post := range posts {
		item := rssItem{
			Title:       post.Title,
			Link:        h.baseURL + "/blog/" + post.ID,
			GUID:        h.baseURL + "/blog/" + post.ID,
			Description: post.Excerpt,
			Author:      post.AuthorEmail,
			Categories:  post.Tags,
			PubDate:     post.CreatedAt.UTC().Format(time.RFC1123Z),
		}
		if post.CategoryName != "" {
			item.Categories = append([]string{post.CategoryName}, post.Tags...)
		}
		feed.Channel.Items = append(feed.Channel.Items, item)
	}
	if err := writeXML(w, feed); err != nil {
		return err
	}
	return nil
}
