package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/sourcedit/internal/httpserver/deps"
	"github.com/MrSnakeDoc/sourcedit/internal/logger"
)

func TestGroupsRegistered(t *testing.T) {
	assert.Equal(t, []string{"probes", "reload", "sessions"}, Names())
}

func TestRegisterDuplicatePanics(t *testing.T) {
	assert.Panics(t, func() { Register("probes", registerProbes) })
}

func TestRegisterAllAppliesGroupMiddleware(t *testing.T) {
	const name = "zz-test"
	var hits int
	Register(name, func(r chi.Router, _ deps.Deps) {
		r.Get("/test-only", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusTeapot) })
	}, func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits++
			next.ServeHTTP(w, r)
		})
	})
	t.Cleanup(func() { delete(groups, name) })

	r := chi.NewRouter()
	RegisterAll(r, deps.Deps{Logger: logger.Nop()})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/test-only", nil))
	require.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, 1, hits)
}
