// Package server exposes the cleaned table and its aggregations as a JSON
// API. Chart rendering happens in the dashboard front end; this package is
// the boundary it consumes.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/velodata/baacviz/internal/baac"
	"github.com/velodata/baacviz/internal/query"
)

// Meta describes the dataset for the dashboard's about section.
type Meta struct {
	Source      string `json:"source"`
	DatasetName string `json:"dataset_name"`
	Producer    string `json:"producer"`
	Period      string `json:"period"`
	License     string `json:"license"`
	URL         string `json:"url"`
	Rows        int    `json:"rows"`
}

// DefaultMeta returns the dataset metadata with the row count filled in by
// the server.
func DefaultMeta() Meta {
	return Meta{
		Source:      "data.gouv.fr",
		DatasetName: "Accidents de vélo en France",
		Producer:    "BAAC - ONISR",
		Period:      "2005-2023",
		License:     "Licence Ouverte",
		URL:         "https://www.data.gouv.fr/fr/datasets/accidents-de-velo/",
	}
}

// Options configures the server.
type Options struct {
	CORSOrigins []string
	Meta        Meta
}

// Server answers dashboard queries over the immutable prepared table.
type Server struct {
	memo    *query.Memo
	report  *baac.ExclusionReport
	missing map[string]int
	meta    Meta
	opts    Options
}

// New creates a Server over the prepared table and its exclusion report.
func New(table *baac.Table, report *baac.ExclusionReport, opts Options) *Server {
	meta := opts.Meta
	if meta == (Meta{}) {
		meta = DefaultMeta()
	}
	meta.Rows = table.Len()

	return &Server{
		memo:    query.NewMemo(table),
		report:  report,
		missing: baac.MissingReport(table),
		meta:    meta,
		opts:    opts,
	}
}

// Router builds the chi router with all API routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	origins := s.opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/meta", s.handleMeta)
		r.Get("/summary", s.handleSummary)
		r.Get("/records", s.handleRecords)
		r.Get("/quality", s.handleQuality)
		r.Get("/stats/{dim}", s.handleStats)
	})

	return r
}
