package audit

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes mounts the audit trail under /api/v1/audit.
func RegisterRoutes(r chi.Router, store *Store) {
	r.Route("/api/v1/audit", func(r chi.Router) {
		r.Get("/", handleQuery(store))
		r.Get("/sessions/{session}/summary", handleSessionSummary(store))
		r.Get("/{id}", handleGetByID(store))
	})
}

// parseFilter reads ?session=&action=&since=&until=&limit=&offset=.
// Times are RFC 3339.
func parseFilter(q url.Values) (QueryFilter, error) {
	filter := QueryFilter{
		SessionID: q.Get("session"),
		Action:    Action(q.Get("action")),
	}

	for _, tv := range []struct {
		key string
		dst **time.Time
	}{{"since", &filter.Since}, {"until", &filter.Until}} {
		v := q.Get(tv.key)
		if v == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return QueryFilter{}, fmt.Errorf("%s must be an RFC 3339 time", tv.key)
		}
		*tv.dst = &t
	}

	for _, iv := range []struct {
		key string
		dst *int
	}{{"limit", &filter.Limit}, {"offset", &filter.Offset}} {
		v := q.Get(iv.key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return QueryFilter{}, fmt.Errorf("%s must be a non-negative integer", iv.key)
		}
		*iv.dst = n
	}
	return filter, nil
}

func handleQuery(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter, err := parseFilter(r.URL.Query())
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		entries, err := store.Query(r.Context(), filter)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to query audit entries")
			return
		}
		if entries == nil {
			entries = []Entry{}
		}
		writeJSON(w, http.StatusOK, entries)
	}
}

// sessionSummary is the per-session tally returned by the summary route.
type sessionSummary struct {
	SessionID string         `json:"session_id"`
	Total     int            `json:"total"`
	Actions   map[Action]int `json:"actions"`
}

func handleSessionSummary(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "session")
		counts, err := store.CountByAction(r.Context(), id)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to summarise audit entries")
			return
		}
		sum := sessionSummary{SessionID: id, Actions: counts}
		for _, n := range counts {
			sum.Total += n
		}
		writeJSON(w, http.StatusOK, sum)
	}
}

func handleGetByID(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entry, err := store.GetByID(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusNotFound, "audit entry not found")
			return
		}
		writeJSON(w, http.StatusOK, entry)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
