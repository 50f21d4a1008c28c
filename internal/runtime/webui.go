package runtime

import (
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gopkg.in/yaml.v3"

	"github.com/drblury/routeflow/internal/runtime/jsoncodec"
	"github.com/drblury/routeflow/internal/runtime/routing"
)

const defaultWebUIPort = 8081

type topicRoutesResponse struct {
	Topic  string          `json:"topic"`
	Routes []routing.Route `json:"routes"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Service) StartWebUIServer() {
	if !s.Conf.WebUIEnabled {
		return
	}

	port := s.Conf.WebUIPort
	if port == 0 {
		port = defaultWebUIPort
	}

	s.RegisterHTTPHandler(port, "/api/routes", http.HandlerFunc(s.handleGetRoutes))
	s.RegisterHTTPHandler(port, "/api/routes/{topic...}", http.HandlerFunc(s.handleGetTopicRoutes))
}

func (s *Service) registerMetricsHandler() {
	if !s.Conf.MetricsEnabled || s.Conf.MetricsPort <= 0 || s.gatherer == nil {
		return
	}
	s.RegisterHTTPHandler(s.Conf.MetricsPort, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
}

func (s *Service) handleGetRoutes(w http.ResponseWriter, r *http.Request) {
	if !s.prepareResponse(w, r) {
		return
	}

	table := s.Table()
	if table == nil {
		s.writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "route table not built"})
		return
	}

	if strings.EqualFold(r.URL.Query().Get("format"), "yaml") {
		w.Header().Set("Content-Type", "application/yaml")
		enc := yaml.NewEncoder(w)
		if err := enc.Encode(table); err != nil {
			s.Logger.Error("Failed to encode routes", err, nil)
		}
		if err := enc.Close(); err != nil {
			s.Logger.Error("Failed to flush routes", err, nil)
		}
		return
	}
	s.writeJSON(w, http.StatusOK, table)
}

func (s *Service) handleGetTopicRoutes(w http.ResponseWriter, r *http.Request) {
	if !s.prepareResponse(w, r) {
		return
	}

	table := s.Table()
	if table == nil {
		s.writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "route table not built"})
		return
	}

	topic := r.PathValue("topic")
	if !table.Has(topic) {
		s.writeJSON(w, http.StatusNotFound, errorResponse{Error: "no routes for topic " + topic})
		return
	}
	s.writeJSON(w, http.StatusOK, topicRoutesResponse{Topic: topic, Routes: table.Routes(topic)})
}

// prepareResponse sets CORS headers and answers preflight requests. It
// returns false when the response is complete.
func (s *Service) prepareResponse(w http.ResponseWriter, r *http.Request) bool {
	w.Header().Set("Content-Type", "application/json")

	if s.Conf != nil && len(s.Conf.WebUICORSAllowedOrigins) > 0 {
		origin := r.Header.Get("Origin")
		allowedOrigin := s.getAllowedCORSOrigin(origin)
		if allowedOrigin != "" {
			w.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		}
	}

	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusNoContent)
		return false
	case http.MethodGet, http.MethodHead:
		return true
	default:
		w.Header().Set("Allow", "GET, OPTIONS")
		s.writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return false
	}
}

func (s *Service) writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := jsoncodec.Marshal(v)
	if err != nil {
		s.Logger.Error("Failed to encode response", err, nil)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// getAllowedCORSOrigin checks if the request origin is allowed and returns the appropriate
// Access-Control-Allow-Origin value.
func (s *Service) getAllowedCORSOrigin(requestOrigin string) string {
	if s.Conf == nil {
		return ""
	}
	for _, allowed := range s.Conf.WebUICORSAllowedOrigins {
		if allowed == "*" {
			return "*"
		}
		if strings.EqualFold(allowed, requestOrigin) {
			return requestOrigin
		}
	}
	return ""
}
