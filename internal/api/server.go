// Package api serves the read-only observation API: current entities,
// metrics, patterns, loops and recent events as JSON.
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/stevenvo780/duetsim/internal/sim"
)

// Server exposes simulation state over HTTP. Read-only: there is no
// control plane.
type Server struct {
	Sim  *sim.Simulation
	Eng  *sim.Engine
	Port int
}

// Start begins serving in a goroutine.
func (s *Server) Start() {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/entities", s.handleEntities)
	mux.HandleFunc("/api/v1/metrics", s.handleMetrics)
	mux.HandleFunc("/api/v1/patterns", s.handlePatterns)
	mux.HandleFunc("/api/v1/loops", s.handleLoops)
	mux.HandleFunc("/api/v1/events", s.handleEvents)

	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("observation API starting", "addr", addr)

	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			slog.Error("observation API error", "error", err)
		}
	}()
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("response encode failed", "error", err)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	alive := 0
	for _, e := range s.Sim.Entities() {
		if !e.Dead {
			alive++
		}
	}
	writeJSON(w, map[string]any{
		"tick":        s.Sim.Tick,
		"tick_pretty": humanize.Comma(int64(s.Sim.Tick)),
		"uptime":      humanize.RelTime(s.Sim.Started(), now, "", ""),
		"speed":       s.Eng.Speed,
		"phase":       s.Sim.Clock().Phase(now),
		"weather":     s.Sim.Weather(),
		"alive":       alive,
		"resonance":   s.Sim.Circle.Resonance,
		"bond_effect": s.Sim.LastSample.Effect,
	})
}

func (s *Server) handleEntities(w http.ResponseWriter, r *http.Request) {
	type entityView struct {
		Role      string  `json:"role"`
		Name      string  `json:"name"`
		Activity  string  `json:"activity"`
		Mood      string  `json:"mood"`
		Dead      bool    `json:"dead"`
		Resonance float64 `json:"resonance"`
		Stats     any     `json:"stats"`
		Position  any     `json:"position"`
		Session   any     `json:"session,omitempty"`
	}

	var out []entityView
	for _, e := range s.Sim.Entities() {
		v := entityView{
			Role:      e.Role.String(),
			Name:      e.Name,
			Activity:  e.Activity.String(),
			Mood:      e.Mood.String(),
			Dead:      e.Dead,
			Resonance: e.Resonance,
			Stats:     e.Stats,
			Position:  e.Position,
		}
		if sess := s.Sim.SessionFor(e.Role); sess != nil {
			v.Session = sess
		}
		out = append(out, v)
	}
	writeJSON(w, out)
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"current": s.Sim.Emergence().Metrics(),
		"history": s.Sim.Emergence().History(),
	})
}

func (s *Server) handlePatterns(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Sim.Emergence().ActivePatterns())
}

func (s *Server) handleLoops(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Sim.Emergence().ActiveLoops())
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	events := s.Sim.Events
	if len(events) > 100 {
		events = events[len(events)-100:]
	}
	writeJSON(w, events)
}
