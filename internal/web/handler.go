package web

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Abduluthman/quail/internal/model"
	"github.com/Abduluthman/quail/internal/post"
)

type Server struct {
	site      *Site
	templates *Templates
	static    http.Handler
}

func NewServer(site *Site, templates *Templates, staticDir string) *Server {
	return &Server{
		site:      site,
		templates: templates,
		static:    http.FileServer(http.FS(StaticFS(staticDir))),
	}
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Handle("/static/*", http.StripPrefix("/static/", s.static))

	r.Get("/", s.page(func(r *http.Request) (model.PageData, error) {
		return s.site.Index(r.Context())
	}))
	r.Get("/post/{slug}", s.page(func(r *http.Request) (model.PageData, error) {
		return s.site.Post(r.Context(), param(r, "slug"))
	}))
	r.Get("/search", s.page(func(r *http.Request) (model.PageData, error) {
		return s.site.Search(r.Context(), r.URL.Query().Get("q"))
	}))
	r.Get("/tags", s.page(func(r *http.Request) (model.PageData, error) {
		return s.site.Tags(r.Context())
	}))
	r.Get("/tag/{tag}", s.page(func(r *http.Request) (model.PageData, error) {
		return s.site.Tag(r.Context(), param(r, "tag"))
	}))
	r.Get("/categories", s.page(func(r *http.Request) (model.PageData, error) {
		return s.site.Categories(r.Context())
	}))
	r.Get("/category/{category}", s.page(func(r *http.Request) (model.PageData, error) {
		return s.site.Category(r.Context(), param(r, "category"))
	}))

	return r
}

// page renders into a buffer first so a template failure never leaves a half-written 200.
func (s *Server) page(load func(r *http.Request) (model.PageData, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pd, err := load(r)
		if err != nil {
			s.fail(w, r, err)
			return
		}

		var buf bytes.Buffer
		if err := s.templates.Render(&buf, pd); err != nil {
			s.fail(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = buf.WriteTo(w)
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, post.ErrNotFound):
		http.NotFound(w, r)
	case errors.Is(err, context.Canceled):
		slog.Debug("request canceled", "path", r.URL.Path)
	default:
		slog.Error("render page", "path", r.URL.Path, "request_id", middleware.GetReqID(r.Context()), "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// param returns a decoded path parameter. chi leaves parameters escaped when it routes on RawPath.
func param(r *http.Request, key string) string {
	v := chi.URLParam(r, key)
	if r.URL.RawPath == "" {
		return v
	}
	if unescaped, err := url.PathUnescape(v); err == nil {
		return unescaped
	}
	return v
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}
