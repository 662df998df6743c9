package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/velodata/baacviz/internal/baac"
	"github.com/velodata/baacviz/internal/query"
)

const maxPageSize = 1000

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("server: encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// parseCriteria builds filter criteria from query parameters:
// from, to (years), dept, severity, loc (comma-separated sets), and
// bbox (minLon,minLat,maxLon,maxLat).
func parseCriteria(r *http.Request) (query.Criteria, error) {
	var c query.Criteria
	q := r.URL.Query()

	var err error
	if c.YearFrom, err = intParam(q.Get("from")); err != nil {
		return c, eris.Wrap(err, "param from")
	}
	if c.YearTo, err = intParam(q.Get("to")); err != nil {
		return c, eris.Wrap(err, "param to")
	}

	c.Departments = splitParam(q.Get("dept"))
	c.Locations = splitParam(q.Get("loc"))

	for _, s := range splitParam(q.Get("severity")) {
		sev, err := baac.ParseSeverity(s)
		if err != nil {
			return c, err
		}
		c.Severities = append(c.Severities, sev)
	}

	if bbox := q.Get("bbox"); bbox != "" {
		b, err := query.ParseBBox(bbox)
		if err != nil {
			return c, err
		}
		c.BBox = b
	}

	return c, nil
}

func intParam(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

func splitParam(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleMeta(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.meta)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	c, err := parseCriteria(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, query.Summarize(s.memo.Filter(c)))
}

// handleRecords returns the filtered rows with limit/offset pagination.
func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	c, err := parseCriteria(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	limit, err := intParam(r.URL.Query().Get("limit"))
	if err != nil || limit < 0 {
		writeError(w, http.StatusBadRequest, "param limit")
		return
	}
	offset, err := intParam(r.URL.Query().Get("offset"))
	if err != nil || offset < 0 {
		writeError(w, http.StatusBadRequest, "param offset")
		return
	}
	if limit == 0 || limit > maxPageSize {
		limit = maxPageSize
	}

	filtered := s.memo.Filter(c)
	records := filtered.Records()
	if offset > len(records) {
		offset = len(records)
	}
	end := offset + limit
	if end > len(records) {
		end = len(records)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"total":   filtered.Len(),
		"offset":  offset,
		"records": records[offset:end],
	})
}

func (s *Server) handleQuality(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"exclusions": s.report,
		"missing":    s.missing,
	})
}

// handleStats returns grouped counts for one dimension over the filtered
// subset. ?top=N switches to the frequency-sorted variant.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	c, err := parseCriteria(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	dim := chi.URLParam(r, "dim")
	filtered := s.memo.Filter(c)

	groups, err := query.CountBy(filtered, dim)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if topRaw := r.URL.Query().Get("top"); topRaw != "" {
		top, err := strconv.Atoi(topRaw)
		if err != nil || top < 1 {
			writeError(w, http.StatusBadRequest, "param top")
			return
		}
		groups = query.TopN(groups, top)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"dimension": dim,
		"total":     filtered.Len(),
		"groups":    groups,
	})
}
