package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ogulcanaydogan/battery-observer/pkg/model"
	"github.com/ogulcanaydogan/battery-observer/pkg/monitor"
	"github.com/ogulcanaydogan/battery-observer/pkg/thresholds"
)

const defaultHistoryLimit = 50

// HistoryLister returns recorded alerts.
type HistoryLister interface {
	ListAlerts(ctx context.Context, filter model.HistoryFilter) ([]model.AlertRecord, error)
}

// Server exposes the monitor's controls over a local HTTP API.
type Server struct {
	monitor    *monitor.Monitor
	thresholds *thresholds.Store
	history    HistoryLister
	mux        *http.ServeMux
	logger     *slog.Logger
}

// NewServer creates an API server.
func NewServer(m *monitor.Monitor, th *thresholds.Store, history HistoryLister, logger *slog.Logger) *Server {
	s := &Server{
		monitor:    m,
		thresholds: th,
		history:    history,
		mux:        http.NewServeMux(),
		logger:     logger,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.HandleFunc("GET /api/v1/status", s.handleStatus)
	s.mux.HandleFunc("POST /api/v1/alerts/{action}", s.handleAlerts)
	s.mux.HandleFunc("GET /api/v1/thresholds", s.handleGetThresholds)
	s.mux.HandleFunc("PUT /api/v1/thresholds", s.handlePutThresholds)
	s.mux.HandleFunc("GET /api/v1/history", s.handleHistory)
	s.mux.Handle("GET /metrics", promhttp.Handler())
}

// Handler returns the HTTP handler for this server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// StatusResponse is returned by GET /api/v1/status.
type StatusResponse struct {
	monitor.Status
	Thresholds model.Thresholds `json:"thresholds"`
}

// ThresholdsResponse is returned by the thresholds endpoints.
type ThresholdsResponse struct {
	model.Thresholds
	Warnings []string `json:"warnings,omitempty"`
}

// ThresholdsRequest updates one or both thresholds.
type ThresholdsRequest struct {
	Low  *int `json:"low,omitempty"`
	High *int `json:"high,omitempty"`
}

// AlertsResponse reports the alerting switch.
type AlertsResponse struct {
	Enabled bool `json:"enabled"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	th, err := s.thresholds.Get(ctx)
	if err != nil {
		s.logger.Error("read thresholds", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{Status: s.monitor.Status(), Thresholds: th})
}

func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	var enabled bool
	switch r.PathValue("action") {
	case "enable":
		s.monitor.SetEnabled(true)
		enabled = true
	case "disable":
		s.monitor.SetEnabled(false)
	case "toggle":
		enabled = s.monitor.Toggle()
	default:
		http.Error(w, "unknown action", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, AlertsResponse{Enabled: enabled})
}

func (s *Server) handleGetThresholds(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	th, err := s.thresholds.Get(ctx)
	if err != nil {
		s.logger.Error("read thresholds", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, ThresholdsResponse{Thresholds: th, Warnings: thresholds.Validate(th)})
}

func (s *Server) handlePutThresholds(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var req ThresholdsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Low == nil && req.High == nil {
		http.Error(w, "low or high is required", http.StatusBadRequest)
		return
	}

	if req.Low != nil {
		if err := s.thresholds.SetLow(ctx, *req.Low); err != nil {
			s.logger.Error("store low threshold", "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
	}
	if req.High != nil {
		if err := s.thresholds.SetHigh(ctx, *req.High); err != nil {
			s.logger.Error("store high threshold", "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
	}

	th, err := s.thresholds.Get(ctx)
	if err != nil {
		s.logger.Error("read thresholds", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	s.logger.Info("thresholds updated", "low", th.Low, "high", th.High)
	writeJSON(w, http.StatusOK, ThresholdsResponse{Thresholds: th, Warnings: thresholds.Validate(th)})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	filter := model.HistoryFilter{Limit: defaultHistoryLimit}
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		filter.Limit = n
	}
	if v := r.URL.Query().Get("kind"); v != "" {
		kind, err := model.ParseAlertKind(v)
		if err != nil {
			http.Error(w, "invalid kind", http.StatusBadRequest)
			return
		}
		filter.Kind = kind
	}

	records, err := s.history.ListAlerts(ctx, filter)
	if err != nil {
		s.logger.Error("list alerts", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []model.AlertRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
