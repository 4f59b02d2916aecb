package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/sourcedit/internal/httpserver/deps"
	"github.com/MrSnakeDoc/sourcedit/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/sourcedit/internal/httpserver/mw"
)

func init() { Register("sessions", registerSessions) }

func registerSessions(r chi.Router, d deps.Deps) {
	guards := []func(http.Handler) http.Handler{mw.EnforceHost(d.AllowedHosts, d.Logger)}
	if d.RateLimit > 0 {
		guards = append(guards, mw.RateLimit(mw.RateLimitConfig{
			Burst:             d.RateBurst,
			RefillPerIPPerMin: d.RateLimit,
			MaxEntries:        10000,
			TrustProxy:        d.TrustProxy,
		}))
	}

	r.With(guards...).Post("/sources/{sourceID}/edit", handlers.OpenSession(d))

	r.With(guards...).Route("/sessions/{sessionID}", func(r chi.Router) {
		r.Get("/", handlers.GetSession(d))
		r.Patch("/", handlers.PatchSession(d))
		r.Delete("/", handlers.DeleteSession(d))
		r.Post("/plan", handlers.PlanSession(d))
		r.Post("/submit", handlers.SubmitSession(d))
	})
}
