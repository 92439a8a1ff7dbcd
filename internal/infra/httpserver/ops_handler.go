package httpserver

import (
	"context"
	"encoding/json"
	"net/http"

	"franchise_ops_worker/internal/app"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

type StorePinger interface {
	Ping(ctx context.Context) (*app.PingReport, error)
}

// OpsHandler serves the manual keep-alive trigger.
type OpsHandler struct {
	Pinger StorePinger
	Log    *logrus.Entry
}

type pingResp struct {
	Status    string `json:"status"`
	LatencyMS int64  `json:"latency_ms,omitempty"`
	Error     string `json:"error,omitempty"`
}

func (h *OpsHandler) Register(r *chi.Mux) {
	r.Get("/ping", h.ping)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *OpsHandler) ping(w http.ResponseWriter, r *http.Request) {
	report, err := h.Pinger.Ping(r.Context())
	if err != nil {
		h.Log.WithError(err).WithField("request_id", middleware.GetReqID(r.Context())).Warn("Manual ping failed")
		writeJSON(w, http.StatusServiceUnavailable, pingResp{Status: "unavailable", Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, pingResp{Status: "ok", LatencyMS: report.Latency.Milliseconds()})
}
