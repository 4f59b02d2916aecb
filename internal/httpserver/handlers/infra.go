package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/sourcedit/internal/httpserver/deps"
)

type healthzResponse struct {
	Status        string  `json:"status"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	Version       string  `json:"version,omitempty"`
	Commit        string  `json:"commit,omitempty"`
	BuildDate     string  `json:"build_date,omitempty"`
	GoVersion     string  `json:"go_version,omitempty"`
}

type readyzResponse struct {
	Ready  bool   `json:"ready"`
	Reason string `json:"reason,omitempty"`
}

type componentStatus struct {
	OK               bool   `json:"ok"`
	SourceTypes      *int   `json:"source_types,omitempty"`
	ApplicationTypes *int   `json:"application_types,omitempty"`
	Sessions         *int   `json:"sessions,omitempty"`
	LastReload       string `json:"last_reload,omitempty"`
	Mode             string `json:"mode,omitempty"`
	Impact           string `json:"impact,omitempty"`
	Error            string `json:"error,omitempty"`
}

type infraResponse struct {
	Mode       string                     `json:"mode"`
	Components map[string]componentStatus `json:"components"`
}

// Healthz reports liveness and build info.
func Healthz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, healthzResponse{
			Status:        "ok",
			Version:       d.Version,
			Commit:        d.Commit,
			BuildDate:     d.BuildDate,
			GoVersion:     d.GoVersion,
			UptimeSeconds: now(d).Sub(d.StartTime).Seconds(),
		})
	}
}

// Readyz reports ready once a catalog is loaded.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sourceTypes, applicationTypes := d.MemoryIndex.CatalogCount()
		if sourceTypes+applicationTypes == 0 {
			writeJSON(w, http.StatusServiceUnavailable, readyzResponse{Ready: false, Reason: "catalog not loaded"})
			return
		}
		writeJSON(w, http.StatusOK, readyzResponse{Ready: true})
	}
}

// Infra reports the state of each component.
func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sourceTypes, applicationTypes := d.MemoryIndex.CatalogCount()
		sessions := d.MemoryIndex.SessionCount()

		lastReload := d.MemoryIndex.GetLastCatalogReload()
		lastReloadStr := "never"
		if !lastReload.IsZero() {
			lastReloadStr = lastReload.Format(time.RFC3339)
		}

		components := map[string]componentStatus{
			"catalog": {
				OK:               applicationTypes > 0,
				SourceTypes:      &sourceTypes,
				ApplicationTypes: &applicationTypes,
				LastReload:       lastReloadStr,
			},
			"sessions": {
				OK:       true,
				Sessions: &sessions,
			},
			"redis": checkRedis(r.Context(), d),
		}

		writeJSON(w, http.StatusOK, infraResponse{
			Mode:       determineMode(components),
			Components: components,
		})
	}
}

func determineMode(components map[string]componentStatus) string {
	if catalog, ok := components["catalog"]; ok && !catalog.OK {
		return "critical"
	}
	if redis, ok := components["redis"]; ok && !redis.OK {
		return "degraded"
	}
	return "optimal"
}

func checkRedis(ctx context.Context, d deps.Deps) componentStatus {
	if d.RedisClient == nil {
		return componentStatus{
			OK:     false,
			Mode:   "memory-only",
			Impact: "sessions-lost-on-restart",
			Error:  "not configured",
		}
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := d.RedisClient.Ping(ctx).Err(); err != nil {
		return componentStatus{
			OK:     false,
			Mode:   "degraded",
			Impact: "sessions-lost-on-restart",
			Error:  err.Error(),
		}
	}

	return componentStatus{OK: true, Mode: "persistent"}
}

func now(d deps.Deps) time.Time {
	if d.TimeNow != nil {
		return d.TimeNow()
	}
	return time.Now()
}
