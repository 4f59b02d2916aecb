package index

import (
	"sync"
	"time"

	"github.com/MrSnakeDoc/sourcedit/internal/domain"
)

// MemoryIndex holds open edit sessions and the type catalog in memory.
// It is authoritative: Redis only mirrors it.
type MemoryIndex struct {
	mu                sync.RWMutex
	sessions          map[string]domain.EditSession // ID -> Session
	sourceTypes       []domain.SourceType
	applicationTypes  []domain.ApplicationType
	lastCatalogReload time.Time
}

// NewMemoryIndex creates a new memory index
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{
		sessions: make(map[string]domain.EditSession),
	}
}

// ─────────────────────────────────────────────────────────────────
// Session methods
// ─────────────────────────────────────────────────────────────────

// PutSession adds or replaces a session. The index keeps its own copy.
func (idx *MemoryIndex) PutSession(s domain.EditSession) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.sessions[s.ID] = s.Clone()
}

// GetSession returns a copy of a session by ID
func (idx *MemoryIndex) GetSession(id string) (domain.EditSession, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	s, ok := idx.sessions[id]
	if !ok {
		return domain.EditSession{}, false
	}
	return s.Clone(), true
}

// DeleteSession removes a session from the index
func (idx *MemoryIndex) DeleteSession(id string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	delete(idx.sessions, id)
}

// GetAllSessions returns copies of all sessions
func (idx *MemoryIndex) GetAllSessions() []domain.EditSession {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	sessions := make([]domain.EditSession, 0, len(idx.sessions))
	for _, s := range idx.sessions {
		sessions = append(sessions, s.Clone())
	}
	return sessions
}

// SessionCount returns the number of open sessions
func (idx *MemoryIndex) SessionCount() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return len(idx.sessions)
}

// ─────────────────────────────────────────────────────────────────
// Catalog methods
// ─────────────────────────────────────────────────────────────────

// UpdateCatalog replaces the source and application types
func (idx *MemoryIndex) UpdateCatalog(sourceTypes []domain.SourceType, applicationTypes []domain.ApplicationType) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.sourceTypes = append([]domain.SourceType(nil), sourceTypes...)
	idx.applicationTypes = append([]domain.ApplicationType(nil), applicationTypes...)
	idx.lastCatalogReload = time.Now()
}

// SourceTypes returns a copy of the source types
func (idx *MemoryIndex) SourceTypes() []domain.SourceType {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return append([]domain.SourceType(nil), idx.sourceTypes...)
}

// ApplicationTypes returns a copy of the application types
func (idx *MemoryIndex) ApplicationTypes() []domain.ApplicationType {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return append([]domain.ApplicationType(nil), idx.applicationTypes...)
}

// CatalogCount returns the number of source and application types
func (idx *MemoryIndex) CatalogCount() (sourceTypes, applicationTypes int) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return len(idx.sourceTypes), len(idx.applicationTypes)
}

// GetLastCatalogReload returns the timestamp of the last catalog reload
func (idx *MemoryIndex) GetLastCatalogReload() time.Time {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return idx.lastCatalogReload
}
