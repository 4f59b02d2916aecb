package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/MrSnakeDoc/sourcedit/internal/domain"
	"github.com/MrSnakeDoc/sourcedit/internal/httpserver/deps"
	"github.com/MrSnakeDoc/sourcedit/internal/logger"
	"github.com/MrSnakeDoc/sourcedit/internal/session"
	"github.com/MrSnakeDoc/sourcedit/internal/sourcesapi"
	"github.com/MrSnakeDoc/sourcedit/internal/submit"
)

// maxBodyBytes caps PATCH bodies.
const maxBodyBytes = 1 << 20

var validate = validator.New()

type patchSessionRequest struct {
	Values map[string]any  `json:"values"`
	Edited map[string]bool `json:"edited" validate:"required,dive,keys,min=1,max=512,endkeys"`
}

type sessionInfo struct {
	ID         string    `json:"id"`
	SourceID   string    `json:"source_id"`
	SourceType string    `json:"source_type"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type sessionResponse struct {
	Session  sessionInfo               `json:"session"`
	Values   map[string]any            `json:"values"`
	Edited   domain.EditedFields       `json:"edited"`
	Messages map[string]domain.Message `json:"messages"`
}

type submitResponse struct {
	Plan     domain.Plan               `json:"plan"`
	Report   submit.Report             `json:"report"`
	Failed   []submit.Result           `json:"failed,omitempty"`
	Messages map[string]domain.Message `json:"messages,omitempty"`
	Kept     bool                      `json:"kept"`
}

func newSessionResponse(s domain.EditSession, messages map[string]domain.Message) sessionResponse {
	return sessionResponse{
		Session: sessionInfo{
			ID:         s.ID,
			SourceID:   s.SourceID,
			SourceType: s.SourceType,
			CreatedAt:  s.CreatedAt,
			UpdatedAt:  s.UpdatedAt,
		},
		Values:   s.Values,
		Edited:   s.Edited,
		Messages: messages,
	}
}

// OpenSession handles POST /sources/{sourceID}/edit.
func OpenSession(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sourceID := chi.URLParam(r, "sourceID")
		if err := validate.Var(sourceID, "required,max=128,printascii"); err != nil {
			writeError(w, http.StatusBadRequest, "invalid source id")
			return
		}

		s, err := d.Sessions.Open(r.Context(), sourceID)
		if err != nil {
			if sourcesapi.IsNotFound(err) {
				writeError(w, http.StatusNotFound, "source not found")
				return
			}
			d.Logger.Warn("failed to open edit session",
				logger.String("source_id", sourceID),
				logger.Error(err))
			writeError(w, http.StatusBadGateway, "failed to load source")
			return
		}

		writeJSON(w, http.StatusCreated, newSessionResponse(s, d.Sessions.Messages(s)))
	}
}

// GetSession handles GET /sessions/{sessionID}.
func GetSession(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := d.Sessions.Get(r.Context(), chi.URLParam(r, "sessionID"))
		if err != nil {
			writeSessionError(w, d, err)
			return
		}
		writeJSON(w, http.StatusOK, newSessionResponse(s, d.Sessions.Messages(s)))
	}
}

// PatchSession handles PATCH /sessions/{sessionID}.
func PatchSession(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

		var req patchSessionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON payload")
			return
		}
		if err := validate.Struct(req); err != nil {
			writeError(w, http.StatusBadRequest, "edited is required and its keys must be field paths")
			return
		}

		s, err := d.Sessions.Update(r.Context(), chi.URLParam(r, "sessionID"), req.Values, domain.EditedFields(req.Edited))
		if err != nil {
			writeSessionError(w, d, err)
			return
		}
		writeJSON(w, http.StatusOK, newSessionResponse(s, d.Sessions.Messages(s)))
	}
}

// PlanSession handles POST /sessions/{sessionID}/plan. Nothing is sent.
func PlanSession(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		plan, err := d.Sessions.Plan(r.Context(), chi.URLParam(r, "sessionID"))
		if err != nil {
			writeSessionError(w, d, err)
			return
		}
		writeJSON(w, http.StatusOK, plan)
	}
}

// SubmitSession handles POST /sessions/{sessionID}/submit.
func SubmitSession(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "sessionID")
		result, err := d.Sessions.Submit(r.Context(), id)
		if err != nil {
			writeSessionError(w, d, err)
			return
		}

		status := http.StatusOK
		if !result.Report.OK() {
			status = http.StatusBadGateway
		}

		writeJSON(w, status, submitResponse{
			Plan:     result.Plan,
			Report:   result.Report,
			Failed:   result.Report.Failed(),
			Messages: result.Messages,
			Kept:     result.Kept,
		})
	}
}

// DeleteSession handles DELETE /sessions/{sessionID}.
func DeleteSession(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := d.Sessions.Discard(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
			writeSessionError(w, d, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func writeSessionError(w http.ResponseWriter, d deps.Deps, err error) {
	if errors.Is(err, session.ErrSessionNotFound) {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	d.Logger.Error("session operation failed", logger.Error(err))
	writeError(w, http.StatusInternalServerError, "internal error")
}
