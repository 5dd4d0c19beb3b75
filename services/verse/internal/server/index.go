package server

import (
	"embed"
	"html/template"
	"net/http"
	"net/url"

	"bibleapi/internal/util"
	"bibleapi/services/verse/internal/app"
)

//go:embed templates/index.html
var templateFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// notReadyMessage is served from "/" until the corpus is imported.
const notReadyMessage = "please run `versectl migrate` and `versectl import` to load a translation\n"

type indexTranslation struct {
	Identifier  string
	Language    string
	Name        string
	SampleURL   string
	SampleLabel string
}

type indexPage struct {
	Host         string
	Translations []indexTranslation
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ready, err := s.app.Ready(ctx)
	if err != nil {
		util.LoggerFromContext(ctx).Error("schema check failed", "err", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if !ready {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(notReadyMessage))
		return
	}

	if q := r.URL.Query(); q.Has("random") {
		util.SetCORSHeaders(w)
		s.resolve(w, r, app.Request{RandomSet: true, Random: q.Get("random")})
		return
	}

	entries, _, err := s.app.Index(ctx)
	if err != nil {
		util.LoggerFromContext(ctx).Error("index failed", "err", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	page := indexPage{Host: s.baseURL(r)}
	for _, e := range entries {
		page.Translations = append(page.Translations, sampleEntry(page.Host, e))
	}

	util.AllowInlineStyles(w)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, page); err != nil {
		util.LoggerFromContext(ctx).Error("render index", "err", err)
	}
}

// baseURL returns scheme://host/ for links, honouring X-Forwarded-Proto.
func (s *Server) baseURL(r *http.Request) string {
	scheme := "http://"
	if util.IsHTTPS(r) {
		scheme = "https://"
	}
	host := s.displayHost
	if host == "" {
		host = r.Host
	}
	return scheme + host + "/"
}

func sampleEntry(base string, e app.IndexEntry) indexTranslation {
	book := e.SampleBook
	if book == "" {
		book = "John"
	}
	path := url.PathEscape(book) + "%203:16"
	return indexTranslation{
		Identifier:  e.Translation.Identifier,
		Language:    e.Translation.Language,
		Name:        e.Translation.Name,
		SampleURL:   base + path + "?translation=" + url.QueryEscape(e.Translation.Identifier),
		SampleLabel: book + " 3:16",
	}
}
