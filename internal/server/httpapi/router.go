package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// RouterConfig carries the transport-level knobs for NewRouter.
type RouterConfig struct {
	JWTSecret          []byte
	AuthRateLimitRPS   float64
	AuthRateLimitBurst int
}

// NewRouter builds the HTTP API:
//
//	GET  /api/v1/ping                 public
//	POST /api/v1/auth/register        rate limited per IP
//	POST /api/v1/auth/login           rate limited per IP
//	POST /api/v1/auth/refresh         rate limited per IP
//	GET  /api/v1/notes                optional auth: anonymous reads are empty
//	GET  /api/v1/notes/search
//	GET  /api/v1/notes/{id}
//	PUT  /api/v1/notes/{id}           auth required
//	PATCH  /api/v1/notes/{id}
//	DELETE /api/v1/notes/{id}
func NewRouter(h *Handler, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)

	r.Get("/api/v1/ping", h.HandlePing)

	r.Group(func(r chi.Router) {
		r.Use(RateLimit(cfg.AuthRateLimitRPS, cfg.AuthRateLimitBurst))
		r.Post("/api/v1/auth/register", h.HandleRegister)
		r.Post("/api/v1/auth/login", h.HandleLogin)
		r.Post("/api/v1/auth/refresh", h.HandleRefresh)
	})

	r.Group(func(r chi.Router) {
		r.Use(OptionalAuth(cfg.JWTSecret))
		r.Get("/api/v1/notes", h.HandleListNotes)
		r.Get("/api/v1/notes/search", h.HandleSearchNotes)
		r.Get("/api/v1/notes/{id}", h.HandleFetchNote)
	})

	r.Group(func(r chi.Router) {
		r.Use(JWTAuth(cfg.JWTSecret))
		r.Put("/api/v1/notes/{id}", h.HandleUpsertNote)
		r.Patch("/api/v1/notes/{id}", h.HandleUpdateNote)
		r.Delete("/api/v1/notes/{id}", h.HandleSoftDeleteNote)
	})

	return r
}
