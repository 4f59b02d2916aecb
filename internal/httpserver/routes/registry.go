package routes

import (
	"fmt"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/sourcedit/internal/httpserver/deps"
	"github.com/MrSnakeDoc/sourcedit/internal/logger"
)

type (
	Registrar  func(r chi.Router, d deps.Deps)
	Middleware = func(http.Handler) http.Handler
)

type group struct {
	name string
	reg  Registrar
	mws  []Middleware
}

var groups = map[string]group{}

// Register adds a named route group. Groups are mounted in name order so
// the router layout does not depend on file init order. Registering the
// same name twice panics.
func Register(name string, reg Registrar, mws ...Middleware) {
	if _, dup := groups[name]; dup {
		panic(fmt.Sprintf("routes: group %q registered twice", name))
	}
	groups[name] = group{name: name, reg: reg, mws: mws}
}

// Names lists the registered groups in mount order.
func Names() []string {
	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RegisterAll mounts every group on r. Called once by httpserver.NewRouter.
func RegisterAll(r chi.Router, d deps.Deps) {
	for _, name := range Names() {
		g := groups[name]
		target := r
		if len(g.mws) > 0 {
			target = r.With(g.mws...)
		}
		g.reg(target, d)
		if d.Logger != nil {
			d.Logger.Debug("route group mounted",
				logger.String("group", name),
				logger.Int("middlewares", len(g.mws)))
		}
	}
}
