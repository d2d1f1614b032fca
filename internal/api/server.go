// Package api exposes the world over HTTP: a load/save surface for the map
// editor, status and speed control for operators, and a WebSocket feed of
// city-change notifications.
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-playground/validator/v10"

	"github.com/mezenin/tradeway/internal/engine"
	"github.com/mezenin/tradeway/internal/persistence"
	"github.com/mezenin/tradeway/internal/world"
)

// Server serves the world state over HTTP.
type Server struct {
	Sim      *engine.Simulation
	Eng      *engine.Engine
	Store    *persistence.Store
	Hub      *Hub
	Port     int
	AdminKey string // bearer token for admin POSTs; empty disables them

	validate *validator.Validate
	started  time.Time
}

// Start begins serving in a goroutine.
func (s *Server) Start() {
	s.validate = validator.New()
	s.started = time.Now()

	writeLimiter := NewRateLimiter(120, time.Minute)

	mux := http.NewServeMux()

	// Editor surface (the external map editor is the only caller).
	mux.HandleFunc("/api/load", s.handleLoad)
	mux.HandleFunc("/api/cities", RateLimitMiddleware(writeLimiter, s.handleCities))
	mux.HandleFunc("/api/cities/", RateLimitMiddleware(writeLimiter, s.handleCityDelete))
	mux.HandleFunc("/api/routes", RateLimitMiddleware(writeLimiter, s.handleRoutes))
	mux.HandleFunc("/api/routes/", RateLimitMiddleware(writeLimiter, s.handleRouteDelete))
	mux.HandleFunc("/api/countries", RateLimitMiddleware(writeLimiter, s.handleCountries))
	mux.HandleFunc("/api/economy/", RateLimitMiddleware(writeLimiter, s.handleEconomy))

	// Operator surface.
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/speed", s.adminOnly(s.handleSpeed))

	// UI notification feed.
	mux.HandleFunc("/ws", s.Hub.ServeWs)

	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "")

	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly requires bearer token auth on POST requests.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if s.AdminKey == "" {
				http.Error(w, "admin endpoints disabled (no admin key set)", http.StatusForbidden)
				return
			}
			if !s.checkBearerToken(r) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		next(w, r)
	}
}

// handleLoad returns the full world snapshot, shaped the way the editor
// stores it.
func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.Sim.Mu.Lock()
	snapshot := map[string]any{
		"cities":         s.Sim.World.Cities,
		"countries":      s.Sim.World.Countries,
		"routes":         s.Sim.World.Routes,
		"items":          s.Sim.World.Items,
		"transportTypes": s.Sim.World.Transports,
		"cityEconomy":    s.Sim.World.Rules,
		"cityInventory":  s.Sim.Store.Snapshot(),
	}
	s.Sim.Mu.Unlock()

	writeJSON(w, snapshot)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.Sim.Mu.Lock()
	var totalStock float64
	for _, rec := range s.Sim.Store.Snapshot() {
		totalStock += rec.Amount
	}
	status := map[string]any{
		"game_time":     s.Sim.GameTime.Round(time.Second).String(),
		"economy_ticks": s.Sim.EconomyTicks,
		"speed":         s.Eng.Speed(),
		"cities":        len(s.Sim.World.Cities),
		"countries":     len(s.Sim.World.Countries),
		"routes":        len(s.Sim.World.Routes),
		"items":         len(s.Sim.World.Items),
		"caravans":      s.Sim.UnitCount(),
		"total_stock":   humanize.CommafWithDigits(totalStock, 1),
		"uptime":        time.Since(s.started).Round(time.Second).String(),
	}
	s.Sim.Mu.Unlock()

	writeJSON(w, status)
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Speed float64 `json:"speed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if req.Speed < 0 || req.Speed > 16 {
		http.Error(w, "speed out of range", http.StatusBadRequest)
		return
	}
	s.Eng.SetSpeed(req.Speed)
	writeJSON(w, map[string]any{"speed": req.Speed})
}

// handleCities upserts a city from the editor. Moving a city changes the
// geometry of every route touching it, so those fleets are respawned.
func (s *Server) handleCities(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var city world.City
	if err := json.NewDecoder(r.Body).Decode(&city); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if err := s.validate.Struct(&city); err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	s.Sim.Mu.Lock()
	s.Sim.World.UpsertCity(&city)
	for _, rt := range s.Sim.World.Routes {
		if rt.FromCityID == city.ID || rt.ToCityID == city.ID {
			s.Sim.RespawnRoute(rt.ID)
		}
	}
	s.Sim.Mu.Unlock()

	persisted := s.persist("save city", func() error { return s.Store.SaveCity(&city) })
	s.Hub.NotifyCityChanged(city.ID)
	writeJSON(w, map[string]any{"id": city.ID, "persisted": persisted})
}

func (s *Server) handleCityDelete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id, err := strconv.ParseInt(strings.TrimPrefix(r.URL.Path, "/api/cities/"), 10, 64)
	if err != nil {
		http.Error(w, "bad city id", http.StatusBadRequest)
		return
	}

	s.Sim.Mu.Lock()
	removed := s.Sim.RemoveCity(id)
	s.Sim.Mu.Unlock()

	if !removed {
		http.Error(w, "city not found", http.StatusNotFound)
		return
	}
	persisted := s.persist("delete city", func() error { return s.Store.DeleteCity(id) })
	writeJSON(w, map[string]any{"id": id, "persisted": persisted})
}

// handleRoutes upserts a route and rebuilds its caravans.
func (s *Server) handleRoutes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var route world.Route
	if err := json.NewDecoder(r.Body).Decode(&route); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if err := s.validate.Struct(&route); err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	s.Sim.Mu.Lock()
	s.Sim.World.UpsertRoute(&route)
	s.Sim.RespawnRoute(route.ID)
	// RespawnRoute refreshed the cached duration on the indexed copy.
	if indexed := s.Sim.World.RouteByID(route.ID); indexed != nil {
		route.CalculatedDuration = indexed.CalculatedDuration
	}
	s.Sim.Mu.Unlock()

	persisted := s.persist("save route", func() error { return s.Store.SaveRoute(&route) })
	writeJSON(w, map[string]any{"id": route.ID, "persisted": persisted})
}

func (s *Server) handleRouteDelete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id, err := strconv.ParseInt(strings.TrimPrefix(r.URL.Path, "/api/routes/"), 10, 64)
	if err != nil {
		http.Error(w, "bad route id", http.StatusBadRequest)
		return
	}

	s.Sim.Mu.Lock()
	s.Sim.TeardownRoute(id)
	removed := s.Sim.World.RemoveRoute(id)
	s.Sim.Mu.Unlock()

	if !removed {
		http.Error(w, "route not found", http.StatusNotFound)
		return
	}
	persisted := s.persist("delete route", func() error { return s.Store.DeleteRoute(id) })
	writeJSON(w, map[string]any{"id": id, "persisted": persisted})
}

func (s *Server) handleCountries(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var country world.Country
	if err := json.NewDecoder(r.Body).Decode(&country); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if err := s.validate.Struct(&country); err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	s.Sim.Mu.Lock()
	s.Sim.World.UpsertCountry(&country)
	s.Sim.Mu.Unlock()

	persisted := s.persist("save country", func() error { return s.Store.SaveCountry(&country) })
	writeJSON(w, map[string]any{"id": country.ID, "persisted": persisted})
}

// handleEconomy replaces a city's full rule set.
func (s *Server) handleEconomy(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	cityID, err := strconv.ParseInt(strings.TrimPrefix(r.URL.Path, "/api/economy/"), 10, 64)
	if err != nil {
		http.Error(w, "bad city id", http.StatusBadRequest)
		return
	}

	var rules []*world.EconomyRule
	if err := json.NewDecoder(r.Body).Decode(&rules); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	for _, rule := range rules {
		if rule == nil {
			http.Error(w, "null rule entry", http.StatusUnprocessableEntity)
			return
		}
		if rule.Kind != world.RuleProduction && rule.Kind != world.RuleConsumption {
			http.Error(w, fmt.Sprintf("unknown rule kind %q", rule.Kind), http.StatusUnprocessableEntity)
			return
		}
		rule.CityID = cityID
	}

	s.Sim.Mu.Lock()
	s.Sim.World.ReplaceCityRules(cityID, rules)
	s.Sim.Mu.Unlock()

	persisted := s.persist("save city economy", func() error { return s.Store.SaveCityEconomy(cityID, rules) })
	s.Hub.NotifyCityChanged(cityID)
	writeJSON(w, map[string]any{"city_id": cityID, "rules": len(rules), "persisted": persisted})
}

// persist runs a store write and reports the outcome. Failures are logged
// and never roll back the in-memory mutation: the simulation stays
// authoritative.
func (s *Server) persist(op string, fn func() error) bool {
	if err := fn(); err != nil {
		slog.Error("persistence failed", "op", op, "error", err)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
