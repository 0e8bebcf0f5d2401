package handler

import (
	"encoding/xml"
	"fmt"
	"net/http"

	"go-newsblog-app/internal/service"
)

// SeoHandler holds dependencies for SEO-related handlers.
type SeoHandler struct {
	articles  *service.ArticleService
	languages []string
	baseURL   string
}

// NewSeoHandler creates a new SeoHandler. baseURL is the externally visible
// origin of the site, without a trailing slash.
func NewSeoHandler(as *service.ArticleService, languages []string, baseURL string) *SeoHandler {
	return &SeoHandler{articles: as, languages: languages, baseURL: baseURL}
}

// robotsHandler serves a static robots.txt file.
func (h *SeoHandler) robotsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintln(w, "User-agent: *")
	fmt.Fprintln(w, "Allow: /")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Sitemap: "+h.baseURL+"/sitemap.xml")
}

const sitemapDateFormat = "2006-01-02"

type sitemapURL struct {
	XMLName xml.Name `xml:"url"`
	Loc     string   `xml:"loc"`
	LastMod string   `xml:"lastmod"`
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

// sitemapHandler generates and serves a dynamic sitemap.xml listing the
// permalink of every translation of every published article, across all
// sections.
func (h *SeoHandler) sitemapHandler(w http.ResponseWriter, r *http.Request) {
	sections, err := h.articles.Sections(r.Context())
	if err != nil {
		http.Error(w, "Failed to retrieve sections for sitemap", http.StatusInternalServerError)
		return
	}

	sitemap := urlSet{Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9"}
	for _, section := range sections {
		articles, err := h.articles.PublishedIn(r.Context(), section.Namespace, h.languages)
		if err != nil {
			http.Error(w, "Failed to retrieve articles for sitemap", http.StatusInternalServerError)
			return
		}
		for _, article := range articles {
			translations, err := h.articles.Translations(r.Context(), article.ID)
			if err != nil {
				http.Error(w, "Failed to retrieve translations for sitemap", http.StatusInternalServerError)
				return
			}
			for j := range translations {
				sitemap.URLs = append(sitemap.URLs, sitemapURL{
					Loc:     h.baseURL + service.Permalink(section, article, &translations[j]),
					LastMod: article.UpdatedAt.Format(sitemapDateFormat),
				})
			}
		}
	}

	w.Header().Set("Content-Type", "application/xml")
	w.Write([]byte(xml.Header))
	encoder := xml.NewEncoder(w)
	encoder.Indent("", "  ")
	if err := encoder.Encode(sitemap); err != nil {
		http.Error(w, "Failed to generate sitemap XML", http.StatusInternalServerError)
		return
	}
}
