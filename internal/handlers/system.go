// system.go — operational endpoints that bypass the gateway chain.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/festivent/festivent/internal/config"
)

// SystemInfo is the response body for GET /system/info.
type SystemInfo struct {
	Mode     string          `json:"mode"`
	Version  string          `json:"version"`
	Routes   []string        `json:"routes"`
	Features map[string]bool `json:"features"`
}

// HandleHealthz reports liveness. GET /healthz.
func HandleHealthz() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}

// HandleSystemInfo returns a handler that reports mode and the registered
// route set. GET /system/info.
func HandleSystemInfo(cfg *config.Config, routeNames []string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", "GET")
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		info := SystemInfo{
			Mode:    string(cfg.Mode),
			Version: "0.1.0",
			Routes:  routeNames,
			Features: map[string]bool{
				"shared_store": cfg.IsClusterMode(),
			},
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(info)
	}
}

// HandleCSRFIssue returns a handler that issues a one-time token for the
// calling client. GET /csrf/token. The token endpoint sits outside the
// gateway chain but inside the burst limiter.
func HandleCSRFIssue(issue func(r *http.Request) (string, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, err := issue(r)
		if err != nil {
			http.Error(w, "token unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"token": token})
	}
}
