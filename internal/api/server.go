package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/pchalerm/moodlog/internal/aggregate"
	"github.com/pchalerm/moodlog/internal/domain"
	"github.com/pchalerm/moodlog/internal/journal"
	"github.com/pchalerm/moodlog/internal/store"
	"github.com/pchalerm/moodlog/internal/suggest"
)

// Server handles HTTP requests for the mood journal API
type Server struct {
	store     *store.Store
	journal   *journal.Journal
	suggester *suggest.Suggester
	addr      string
}

// New creates a new API server. The journal's classifier was built
// once at process start; the server reuses it for every request.
func New(s *store.Store, j *journal.Journal, sg *suggest.Suggester, addr string) *Server {
	return &Server{store: s, journal: j, suggester: sg, addr: addr}
}

// Run starts the HTTP server
func (s *Server) Run() error {
	fmt.Printf("Starting server on %s\n", s.addr)
	return http.ListenAndServe(s.addr, s.Handler())
}

// Handler builds the route table
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Entries
	mux.HandleFunc("GET /entries", s.listEntries)
	mux.HandleFunc("POST /entries", s.addEntry)
	mux.HandleFunc("DELETE /entries/{id}", s.deleteEntry)

	// Derived views
	mux.HandleFunc("GET /trend/weekly", s.weeklyTrend)
	mux.HandleFunc("GET /trend/mood", s.moodTrend)
	mux.HandleFunc("GET /calendar", s.calendar)
	mux.HandleFunc("GET /summary", s.summary)

	// Health check
	mux.HandleFunc("GET /health", s.health)

	return withCORS(mux)
}

// withCORS adds CORS headers for frontend development
func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		h.ServeHTTP(w, r)
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) listEntries(w http.ResponseWriter, r *http.Request) {
	entries, err := s.store.LoadAll()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// Newest first for display
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Date.After(entries[j].Date)
	})

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"entries": entries,
	})
}

// AddEntryRequest is the request body for saving an entry
type AddEntryRequest struct {
	Date string `json:"date"`
	Text string `json:"text"`
}

// AddEntryResponse is the response for saving an entry
type AddEntryResponse struct {
	Entry      domain.Entry `json:"entry"`
	Suggestion string       `json:"suggestion"`
}

func (s *Server) addEntry(w http.ResponseWriter, r *http.Request) {
	var req AddEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	date, ok := domain.ParseDate(req.Date)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	entry, err := s.journal.AnalyzeAndSave(r.Context(), date, req.Text)
	if err != nil {
		if errors.Is(err, journal.ErrEmptyText) {
			writeError(w, http.StatusBadRequest, "text is required")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, AddEntryResponse{
		Entry:      entry,
		Suggestion: s.suggester.For(entry.Sentiment, entry.Score),
	})
}

func (s *Server) deleteEntry(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteByID(r.PathValue("id")); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	// Unknown ids are a no-op, so this is always a 204.
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) weeklyTrend(w http.ResponseWriter, r *http.Request) {
	entries, err := s.store.LoadAll()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"weeks": aggregate.WeeklyAverageScore(entries),
	})
}

func (s *Server) moodTrend(w http.ResponseWriter, r *http.Request) {
	entries, err := s.store.LoadAll()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"days": aggregate.MoodTrend(entries),
	})
}

func (s *Server) calendar(w http.ResponseWriter, r *http.Request) {
	now := time.Now().UTC()
	year := now.Year()
	month := now.Month()

	if y := r.URL.Query().Get("year"); y != "" {
		n, err := strconv.Atoi(y)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid year")
			return
		}
		year = n
	}
	if m := r.URL.Query().Get("month"); m != "" {
		n, err := strconv.Atoi(m)
		if err != nil || n < 1 || n > 12 {
			writeError(w, http.StatusBadRequest, "invalid month")
			return
		}
		month = time.Month(n)
	}

	entries, err := s.store.LoadAll()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"year":  year,
		"month": int(month),
		"weeks": aggregate.CalendarMoodMap(entries, year, month),
	})
}

// SummaryResponse reports recent-window statistics
type SummaryResponse struct {
	Window      string  `json:"window"`
	WindowStart string  `json:"window_start"`
	Count       int     `json:"count"`
	MoodAverage float64 `json:"mood_average"`
	Suggestion  string  `json:"suggestion,omitempty"`
}

func (s *Server) summary(w http.ResponseWriter, r *http.Request) {
	today := time.Now().UTC()

	// Two window policies exist on purpose; the caller picks one.
	window := r.URL.Query().Get("window")
	var start time.Time
	switch window {
	case "", "rolling7":
		window = "rolling7"
		start = aggregate.Rolling7Start(today)
	case "week":
		start = aggregate.ISOWeekStart(today)
	default:
		writeError(w, http.StatusBadRequest, "invalid window, expected rolling7 or week")
		return
	}

	entries, err := s.store.LoadAll()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	recent := aggregate.RecentWindow(entries, start)
	resp := SummaryResponse{
		Window:      window,
		WindowStart: domain.FormatDate(start),
		Count:       len(recent),
		MoodAverage: aggregate.ScaledSentimentAverage(recent),
	}
	if last, ok := aggregate.Latest(entries); ok {
		resp.Suggestion = s.suggester.For(last.Sentiment, last.Score)
	}

	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
