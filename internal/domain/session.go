package domain

import "time"

// EditSession is one open edit of a source: the fetched bundle, the live
// form values and the fields the user touched so far.
type EditSession struct {
	ID         string         `json:"id"`
	SourceID   string         `json:"source_id"`
	SourceType string         `json:"source_type"`
	Bundle     SourceBundle   `json:"bundle"`
	Values     map[string]any `json:"values"`
	Edited     EditedFields   `json:"edited"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// Expired reports whether the session was idle longer than ttl.
func (s EditSession) Expired(now time.Time, ttl time.Duration) bool {
	if ttl <= 0 {
		return false
	}
	return now.Sub(s.UpdatedAt) > ttl
}

// Clone returns a copy that shares no mutable state with s.
func (s EditSession) Clone() EditSession {
	out := s
	out.Values = cloneMap(s.Values)
	out.Edited = make(EditedFields, len(s.Edited))
	out.Edited.Merge(s.Edited)
	return out
}
