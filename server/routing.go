package server

import "net/http"

// setupHTTPRoutes configures all HTTP handlers
func (s *EBRServer) setupHTTPRoutes() {
	s.mux.HandleFunc("/health", s.corsMiddleware(s.HandleHealth))
	s.mux.HandleFunc("/api/batches", s.corsMiddleware(s.HandleBatches))                       // List (GET) / upsert (POST)
	s.mux.HandleFunc("/api/batches/from-template", s.corsMiddleware(s.HandleFromTemplate))    // Create from QMIB template (POST)
	s.mux.HandleFunc("/api/batches/{id}/status", s.corsMiddleware(s.HandleBatchStatus))       // Transition status (PATCH)
	s.mux.HandleFunc("/api/events/acknowledge", s.corsMiddleware(s.HandleAcknowledgeEvent))   // Relay acknowledgement (POST)
	s.mux.HandleFunc("/api/equipment/{id}/state", s.corsMiddleware(s.HandleEquipmentState))   // Live equipment snapshot (GET)
}

// corsMiddleware applies CORS headers from the configured allowed origins
func (s *EBRServer) corsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		if origin != "" && s.originAllowed(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
		}

		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		// Handle preflight requests
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next(w, r)
	}
}

func (s *EBRServer) originAllowed(origin string) bool {
	for _, allowed := range s.cfg.Server.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}
