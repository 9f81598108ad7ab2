package main

import (
	"encoding/json"
	"net/http"
	"time"
)

// healthServer exposes a liveness endpoint for deployment probes.
func healthServer(addr string, store *Store) *http.Server {
	start := time.Now()
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		status := "ok"
		code := http.StatusOK
		if err := store.Ping(); err != nil {
			status = "degraded"
			code = http.StatusServiceUnavailable
			logWarn("health check store ping failed", "error", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		json.NewEncoder(w).Encode(map[string]any{
			"status": status,
			"uptime": time.Since(start).Round(time.Second).String(),
		})
	})
	return &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
}
