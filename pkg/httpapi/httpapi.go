// Package httpapi exposes a minimal read-only HTTP surface over a running
// manager: liveness, Prometheus metrics passthrough, and owner introspection
// as JSON, fronting the same data nexusctl inspect prints from the terminal.
package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/invopop/jsonschema"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/marmos91/nexus/internal/logger"
	"github.com/marmos91/nexus/pkg/registry"
)

// Response is the standard wrapper every handler in this package writes.
type Response struct {
	Status    string      `json:"status"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
}

func healthyResponse(data interface{}) Response {
	return Response{Status: "healthy", Timestamp: time.Now().UTC(), Data: data}
}

func unhealthyResponse(errMsg string) Response {
	return Response{Status: "unhealthy", Timestamp: time.Now().UTC(), Error: errMsg}
}

func okResponse(data interface{}) Response {
	return Response{Status: "ok", Timestamp: time.Now().UTC(), Data: data}
}

func writeJSON(w http.ResponseWriter, status int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		http.Error(w, `{"status":"error","error":"failed to encode response"}`, http.StatusInternalServerError)
	}
}

// NewRouter builds the chi router. metricsReg may be nil, in which case
// /metrics always reports unavailable; reg may be nil, in which case
// /owners always reports an empty catalog.
func NewRouter(reg *registry.Registry, metricsReg *prometheus.Registry) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/health", http.StatusTemporaryRedirect)
	})

	r.Route("/health", func(r chi.Router) {
		r.Get("/", handleLiveness)
	})

	r.Route("/owners", func(r chi.Router) {
		r.Get("/", handleListOwners(reg))
		r.Get("/{name}", handleGetOwner(reg))
	})

	r.Get("/schema", handleSchema)

	if metricsReg != nil {
		r.Get("/metrics", promhttp.HandlerFor(metricsReg, promhttp.HandlerOpts{}).ServeHTTP)
	} else {
		r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusServiceUnavailable, unhealthyResponse("metrics not enabled"))
		})
	}

	return r
}

// handleLiveness handles GET /health - simple liveness probe.
func handleLiveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthyResponse(map[string]string{"service": "nexus"}))
}

// handleListOwners handles GET /owners - every registered owner's name and
// current values, in sorted order.
func handleListOwners(reg *registry.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if reg == nil {
			writeJSON(w, http.StatusOK, okResponse([]registry.Snapshot{}))
			return
		}
		writeJSON(w, http.StatusOK, okResponse(reg.Snapshots()))
	}
}

// handleGetOwner handles GET /owners/{name} - a single owner's snapshot.
func handleGetOwner(reg *registry.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")
		if reg == nil {
			writeJSON(w, http.StatusNotFound, unhealthyResponse("owner not found: "+name))
			return
		}
		o, ok := reg.Get(name)
		if !ok {
			writeJSON(w, http.StatusNotFound, unhealthyResponse("owner not found: "+name))
			return
		}
		values := make(map[string]any)
		for k, v := range o.CurrentValues() {
			values[fmtKey(k)] = v
		}
		writeJSON(w, http.StatusOK, okResponse(registry.Snapshot{Name: name, Values: values}))
	}
}

func fmtKey(k any) string {
	if s, ok := k.(string); ok {
		return s
	}
	return jsonMarshalKey(k)
}

func jsonMarshalKey(k any) string {
	b, err := json.Marshal(k)
	if err != nil {
		return "?"
	}
	return string(b)
}

// handleSchema handles GET /schema - a JSON Schema description of the
// registry.Snapshot payload returned by /owners and /owners/{name}.
func handleSchema(w http.ResponseWriter, r *http.Request) {
	reflector := &jsonschema.Reflector{}
	schema := reflector.Reflect(&registry.Snapshot{})
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(schema); err != nil {
		http.Error(w, `{"status":"error","error":"failed to encode schema"}`, http.StatusInternalServerError)
	}
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := middleware.GetReqID(r.Context())

		logger.Debug("http request started",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
		)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		logger.Info("http request completed",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).String(),
		)
	})
}
