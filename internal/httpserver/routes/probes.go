package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/sourcedit/internal/httpserver/deps"
	"github.com/MrSnakeDoc/sourcedit/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/sourcedit/internal/httpserver/mw"
)

func init() { Register("probes", registerProbes) }

func registerProbes(r chi.Router, d deps.Deps) {
	r.Get("/healthz", handlers.Healthz(d))

	restricted := r.With(mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger))
	restricted.Get("/readyz", handlers.Readyz(d))
	restricted.Get("/infra", handlers.Infra(d))
}
