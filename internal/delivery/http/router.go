package http

import (
	"net/http"

	"github.com/mmuslimabdulj/goat-collab/internal/middleware"
)

// Limiters are the per-IP limiters guarding the routes
type Limiters struct {
	API       *middleware.IPRateLimiter
	WebSocket *middleware.IPRateLimiter
}

// Routes builds the server's handler tree
func (h *Handler) Routes(limiters Limiters) http.Handler {
	mux := http.NewServeMux()

	// Page routes
	mux.Handle("GET /", middleware.NoCache(http.HandlerFunc(h.HandleStatus)))

	// WebSocket route with rate limiting
	mux.HandleFunc("GET /ws", middleware.RateLimitFunc(limiters.WebSocket, h.HandleWebSocket))

	// API routes with rate limiting
	mux.HandleFunc("GET /api/projects/{id}", middleware.RateLimitFunc(limiters.API, h.HandleGetProject))
	mux.HandleFunc("POST /api/projects/{id}/collaborators", middleware.RateLimitFunc(limiters.API, h.HandleAddCollaborator))

	// Apply security headers middleware to all requests
	return middleware.SecurityHeaders(mux)
}
