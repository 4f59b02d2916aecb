package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrSnakeDoc/sourcedit/internal/domain"
	"github.com/MrSnakeDoc/sourcedit/internal/index"
	"github.com/MrSnakeDoc/sourcedit/internal/logger"
	"github.com/MrSnakeDoc/sourcedit/internal/submit"
)

// ErrSessionNotFound is returned for unknown or expired session ids.
var ErrSessionNotFound = errors.New("session not found")

// Fetcher loads the raw entities of a source.
type Fetcher interface {
	LoadSourceForEdit(ctx context.Context, sourceID string) (domain.SourceBundle, error)
}

// Dispatcher sends a plan upstream.
type Dispatcher interface {
	Dispatch(ctx context.Context, sourceID string, plan domain.Plan) submit.Report
}

// Store persists sessions beyond the memory index.
type Store interface {
	SaveSession(ctx context.Context, s domain.EditSession) error
	GetSession(ctx context.Context, id string) (domain.EditSession, error)
	DeleteSession(ctx context.Context, id string) error
}

// Manager runs edit sessions: open, edit, plan, submit, discard.
type Manager struct {
	fetcher    Fetcher
	dispatcher Dispatcher
	index      *index.MemoryIndex
	store      Store
	translator domain.Translator
	logger     logger.Logger
	now        func() time.Time
}

// NewManager creates a session manager. store may be nil.
func NewManager(
	fetcher Fetcher,
	dispatcher Dispatcher,
	idx *index.MemoryIndex,
	store Store,
	log logger.Logger,
) *Manager {
	return &Manager{
		fetcher:    fetcher,
		dispatcher: dispatcher,
		index:      idx,
		store:      store,
		translator: domain.DefaultTranslator{},
		logger:     log,
		now:        time.Now,
	}
}

// SubmitResult is the outcome of a submission.
type SubmitResult struct {
	Plan   domain.Plan
	Report submit.Report
	// Messages reflect the source as re-fetched after a partial failure.
	Messages map[string]domain.Message
	// Kept is true when the session survives for a retry.
	Kept bool
}

// Open fetches a source and starts a new session for it.
// Nothing is stored when the fetch fails.
func (m *Manager) Open(ctx context.Context, sourceID string) (domain.EditSession, error) {
	bundle, err := m.fetcher.LoadSourceForEdit(ctx, sourceID)
	if err != nil {
		return domain.EditSession{}, fmt.Errorf("failed to load source %s: %w", sourceID, err)
	}

	sourceType := domain.FindSourceTypeName(m.index.SourceTypes(), bundle.Source.SourceTypeID)
	values, err := domain.Aggregate(bundle, sourceType).Values()
	if err != nil {
		return domain.EditSession{}, err
	}

	now := m.now()
	s := domain.EditSession{
		ID:         uuid.NewString(),
		SourceID:   sourceID,
		SourceType: sourceType,
		Bundle:     bundle,
		Values:     values,
		Edited:     domain.EditedFields{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	m.save(ctx, s)

	m.logger.Info("edit session opened",
		logger.String("session_id", s.ID),
		logger.String("source_id", sourceID),
		logger.String("source_type", sourceType),
		logger.Int("applications", len(bundle.Applications)))

	return s, nil
}

// Get returns a session from memory, falling back to the store.
func (m *Manager) Get(ctx context.Context, id string) (domain.EditSession, error) {
	if s, ok := m.index.GetSession(id); ok {
		return s, nil
	}

	if m.store == nil {
		return domain.EditSession{}, ErrSessionNotFound
	}

	s, err := m.store.GetSession(ctx, id)
	if err != nil {
		m.logger.Debug("session not restored from redis",
			logger.String("session_id", id),
			logger.Error(err))
		return domain.EditSession{}, ErrSessionNotFound
	}

	m.index.PutSession(s)
	return s, nil
}

// Update replaces the form values when given and merges the edited flags.
func (m *Manager) Update(ctx context.Context, id string, values map[string]any, edited domain.EditedFields) (domain.EditSession, error) {
	s, err := m.Get(ctx, id)
	if err != nil {
		return domain.EditSession{}, err
	}

	if values != nil {
		s.Values = values
	}
	if s.Edited == nil {
		s.Edited = domain.EditedFields{}
	}
	s.Edited.Merge(edited)
	s.UpdatedAt = m.now()

	m.save(ctx, s)
	return s, nil
}

// Messages returns the status messages of the session's applications.
func (m *Manager) Messages(s domain.EditSession) map[string]domain.Message {
	return domain.SynthesizeMessages(s.Bundle, m.translator, m.index.ApplicationTypes())
}

// Plan builds the submission plan of a session without sending anything.
func (m *Manager) Plan(ctx context.Context, id string) (domain.Plan, error) {
	s, err := m.Get(ctx, id)
	if err != nil {
		return domain.Plan{}, err
	}
	return m.plan(s), nil
}

// Submit dispatches the session's plan.
//
// A fully successful submission closes the session. Otherwise the session
// is kept with its edits, and its bundle is re-fetched so messages show the
// current upstream state.
func (m *Manager) Submit(ctx context.Context, id string) (SubmitResult, error) {
	s, err := m.Get(ctx, id)
	if err != nil {
		return SubmitResult{}, err
	}

	log := m.logger.With(
		logger.String("session_id", id),
		logger.String("source_id", s.SourceID))

	plan := m.plan(s)
	if plan.Empty() {
		log.Info("submitting a session without edits")
	}
	report := m.dispatcher.Dispatch(ctx, s.SourceID, plan)
	result := SubmitResult{Plan: plan, Report: report}

	if report.OK() {
		log.Info("submission succeeded",
			logger.Int("calls", len(report.Results)),
			logger.Duration("duration", report.Duration))
		if err := m.Discard(ctx, id); err != nil && !errors.Is(err, ErrSessionNotFound) {
			return result, err
		}
		return result, nil
	}

	result.Kept = true
	log.Warn("submission partially failed, session kept",
		logger.Int("failed", len(report.Failed())),
		logger.Int("calls", len(report.Results)))
	if bundle, err := m.fetcher.LoadSourceForEdit(ctx, s.SourceID); err != nil {
		log.Warn("failed to refresh source after partial submission", logger.Error(err))
	} else {
		s.Bundle = bundle
		s.UpdatedAt = m.now()
		m.save(ctx, s)
	}
	result.Messages = m.Messages(s)

	return result, nil
}

// Discard closes a session without sending anything.
func (m *Manager) Discard(ctx context.Context, id string) error {
	if _, err := m.Get(ctx, id); err != nil {
		return err
	}

	m.index.DeleteSession(id)
	if m.store != nil {
		if err := m.store.DeleteSession(ctx, id); err != nil {
			m.logger.Warn("failed to delete session from redis",
				logger.String("session_id", id),
				logger.Error(err))
		}
	}

	m.logger.Info("edit session closed", logger.String("session_id", id))
	return nil
}

func (m *Manager) plan(s domain.EditSession) domain.Plan {
	return domain.BuildPlan(s.Bundle, s.Values, s.Edited, m.index.ApplicationTypes())
}

// save writes to memory, then to the store (best effort).
func (m *Manager) save(ctx context.Context, s domain.EditSession) {
	m.index.PutSession(s)

	if m.store == nil {
		return
	}
	if err := m.store.SaveSession(ctx, s); err != nil {
		m.logger.Warn("failed to save session to redis",
			logger.String("session_id", s.ID),
			logger.Error(err))
	}
}
