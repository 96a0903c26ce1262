package twinsim

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/mux"
)

// Server exposes the simulated twin over HTTP.
type Server struct {
	data   *dataset
	router *mux.Router
}

// NewServer builds a simulator with the default deterministic dataset.
func NewServer() *Server {
	s := &Server{data: newDataset()}

	r := mux.NewRouter()
	r.HandleFunc("/getCityTotals", s.handleCityTotals).Methods("GET")
	r.HandleFunc("/getSiteTotals", s.handleSiteTotals).Methods("GET")
	r.HandleFunc("/getSiteDayStatus", s.handleSiteDayStatus).Methods("GET")
	r.HandleFunc("/getVehicleDegradeStatus", s.handleVehicleDegradeStatus).Methods("GET")
	r.HandleFunc("/getTripsForDay", s.handleTripsForDay).Methods("GET")
	r.HandleFunc("/getTripsAllDays", s.handleTripsAllDays).Methods("GET")
	r.HandleFunc("/health", s.handleHealth).Methods("GET")
	s.router = r

	return s
}

// Router returns the HTTP handler, usable directly by httptest.
func (s *Server) Router() http.Handler {
	return s.router
}

// Days returns the days the dataset covers.
func (s *Server) Days() []string {
	return s.data.days
}

// Sites returns the camera site IDs the dataset covers.
func (s *Server) Sites() []string {
	return s.data.sites
}

func (s *Server) handleCityTotals(w http.ResponseWriter, r *http.Request) {
	day := r.URL.Query().Get("day")
	payload, ok := s.data.cityTotals(day)
	if !ok {
		s.respondError(w, fmt.Sprintf("no data for day %q", day))
		return
	}
	s.respondJSON(w, http.StatusOK, payload)
}

func (s *Server) handleSiteTotals(w http.ResponseWriter, r *http.Request) {
	day := r.URL.Query().Get("day")
	site := r.URL.Query().Get("site")
	payload, ok := s.data.siteTotals(day, site)
	if !ok {
		s.respondError(w, fmt.Sprintf("no data for site %q on day %q", site, day))
		return
	}
	s.respondJSON(w, http.StatusOK, payload)
}

func (s *Server) handleSiteDayStatus(w http.ResponseWriter, r *http.Request) {
	day := r.URL.Query().Get("day")
	site := r.URL.Query().Get("site")
	payload, ok := s.data.siteDayStatus(day, site)
	if !ok {
		s.respondError(w, fmt.Sprintf("no data for site %q on day %q", site, day))
		return
	}
	s.respondJSON(w, http.StatusOK, payload)
}

func (s *Server) handleVehicleDegradeStatus(w http.ResponseWriter, r *http.Request) {
	plate := r.URL.Query().Get("plate")
	payload, ok := s.data.vehicleDegradeStatus(plate)
	if !ok {
		s.respondError(w, fmt.Sprintf("unknown plate %q", plate))
		return
	}
	s.respondJSON(w, http.StatusOK, payload)
}

func (s *Server) handleTripsForDay(w http.ResponseWriter, r *http.Request) {
	plate := r.URL.Query().Get("plate")
	day := r.URL.Query().Get("day")
	trips, ok := s.data.tripsForDay(plate, day)
	if !ok {
		s.respondError(w, fmt.Sprintf("unknown plate %q", plate))
		return
	}
	s.respondJSON(w, http.StatusOK, trips)
}

func (s *Server) handleTripsAllDays(w http.ResponseWriter, r *http.Request) {
	plate := r.URL.Query().Get("plate")
	trips, ok := s.data.tripsAllDays(plate)
	if !ok {
		s.respondError(w, fmt.Sprintf("unknown plate %q", plate))
		return
	}
	s.respondJSON(w, http.StatusOK, trips)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("[TwinSim] Failed to encode response: %v", err)
	}
}

// respondError reports unknown identifiers the way the real twin does: a 404
// carrying an {"error": ...} JSON body that callers treat as data.
func (s *Server) respondError(w http.ResponseWriter, message string) {
	s.respondJSON(w, http.StatusNotFound, map[string]string{"error": message})
}
