package dialogue

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/travelbudgetfx/internal/currency"
	"github.com/ziadkadry99/travelbudgetfx/internal/itinerary"
	"github.com/ziadkadry99/travelbudgetfx/internal/scoring"
	"github.com/ziadkadry99/travelbudgetfx/internal/trip"
)

// RegisterRoutes mounts the planning API routes.
func RegisterRoutes(r chi.Router, engine *Engine) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/sessions", handleCreateSession(engine))
		r.Get("/sessions", handleListSessions(engine))
		r.Get("/sessions/{id}", handleGetSession(engine))
		r.Post("/sessions/{id}/messages", handleSendMessage(engine))
		r.Get("/sessions/{id}/export", handleGetExport(engine))
		r.Get("/sessions/{id}/forecast", handleGetForecast(engine))
		r.Get("/currencies/supported", handleSupportedCurrencies())
		r.Get("/currencies/resolve", handleResolveCurrency())
		r.Post("/score", handleScore(engine))
	})
}

// tripRequest mirrors the trip details form: every field arrives as text.
type tripRequest struct {
	Destination   string `json:"destination"`
	Duration      string `json:"duration"`
	Budget        string `json:"budget"`
	HomeCurrency  string `json:"home_currency"`
	DepartureDate string `json:"departure_date"`
}

func (t tripRequest) parse() (trip.Parameters, error) {
	return trip.Parse(t.Destination, t.Duration, t.Budget, t.HomeCurrency, t.DepartureDate)
}

func handleCreateSession(engine *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req tripRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		p, err := req.parse()
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		s, err := engine.Start(r.Context(), p)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusCreated, s.Snapshot())
	}
}

func handleListSessions(engine *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		list, err := engine.ListSessions(r.Context(), limit)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if list == nil {
			list = []SessionSummary{}
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func handleGetSession(engine *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := engine.Session(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, s.Snapshot())
	}
}

type messageRequest struct {
	Message string `json:"message"`
}

type messageResponse struct {
	Turn  Turn  `json:"turn"`
	Phase Phase `json:"phase"`
}

func handleSendMessage(engine *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req messageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		id := chi.URLParam(r, "id")
		t, err := engine.Send(r.Context(), id, req.Message)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		s, err := engine.Session(r.Context(), id)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, messageResponse{Turn: t, Phase: s.Phase()})
	}
}

func handleGetExport(engine *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc, err := engine.Document(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeEngineError(w, err)
			return
		}
		if doc == nil {
			writeError(w, http.StatusNotFound, "no exported itinerary")
			return
		}

		if r.URL.Query().Get("format") == "json" {
			writeJSON(w, http.StatusOK, doc)
			return
		}
		data, err := itinerary.RenderPDF(doc)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `attachment; filename="`+doc.Name+`.pdf"`)
		w.Write(data)
	}
}

func handleGetForecast(engine *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := engine.Session(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeEngineError(w, err)
			return
		}
		view := s.Forecast()
		if view == nil {
			writeError(w, http.StatusNotFound, "forecast not available yet")
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}

func handleSupportedCurrencies() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, trip.SupportedCurrencies)
	}
}

func handleResolveCurrency() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dest := r.URL.Query().Get("destination")
		writeJSON(w, http.StatusOK, map[string]string{
			"destination": dest,
			"currency":    currency.Resolve(dest),
		})
	}
}

type scoreRequest struct {
	tripRequest
	Today string `json:"today,omitempty"`
}

func handleScore(engine *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req scoreRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		p, err := req.parse()
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		today := engine.Now()
		if req.Today != "" {
			t, err := time.Parse(trip.DateLayout, req.Today)
			if err != nil {
				writeError(w, http.StatusBadRequest, "today must be YYYY-MM-DD")
				return
			}
			today = t
		}
		writeJSON(w, http.StatusOK, scoring.ScoreTrip(p, today))
	}
}

func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrRequestInFlight):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrEmptyMessage):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
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
