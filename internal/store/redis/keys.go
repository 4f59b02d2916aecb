package redis

import "fmt"

const (
	// KeyPrefixSession is the prefix for edit session keys
	KeyPrefixSession = "sourcedit:session:"
	// KeyAllSessions is the key for the set of all session IDs
	KeyAllSessions = "sourcedit:sessions:all"
	// KeyCatalog is the key of the cached type catalog
	KeyCatalog = "sourcedit:cache:catalog"
)

// SessionKey returns the Redis key for a session by ID
func SessionKey(id string) string {
	return KeyPrefixSession + id
}

// AllSessionsKey returns the key for the set of all session IDs
func AllSessionsKey() string {
	return KeyAllSessions
}

// CatalogKey returns the key of the cached catalog
func CatalogKey() string {
	return KeyCatalog
}

// ExtractSessionID extracts the session ID from a Redis key
func ExtractSessionID(key string) (string, error) {
	if len(key) <= len(KeyPrefixSession) || key[:len(KeyPrefixSession)] != KeyPrefixSession {
		return "", fmt.Errorf("invalid session key: %s", key)
	}
	return key[len(KeyPrefixSession):], nil
}
