package domain

import (
	"fmt"
	"strings"
)

// keyPrefix is the leading character of every synthetic field key.
// Raw ids may start with a digit, which form paths cannot address.
const keyPrefix = "a"

// endpointCheckPrefix marks targets that revalidate a shared endpoint.
const endpointCheckPrefix = "check-endpoint-"

// KeyKind tells which region of the edit model a FieldKey addresses.
type KeyKind uint8

const (
	// KeySharedAuth addresses a source/endpoint authentication: a<id>.
	KeySharedAuth KeyKind = iota + 1
	// KeyAppAuth addresses a per-application authentication: a<authtype><id>.
	KeyAppAuth
	// KeyApplication addresses an application's extra values: a<id>.
	KeyApplication
)

// FieldKey is a synthetic key of the edit model.
//
// Shared and per-application authentications live in the same
// authentications region and share the same raw id space, so the
// per-application key carries the authtype to stay disjoint.
type FieldKey struct {
	kind     KeyKind
	authtype string
	id       string
}

// SharedAuthKey builds the key of an authentication attached to the
// source or its endpoint.
func SharedAuthKey(id string) FieldKey {
	return FieldKey{kind: KeySharedAuth, id: id}
}

// AppAuthKey builds the key of an authentication owned by an application.
func AppAuthKey(authtype, id string) FieldKey {
	return FieldKey{kind: KeyAppAuth, authtype: authtype, id: id}
}

// ApplicationKey builds the key of an application in the applications region.
func ApplicationKey(id string) FieldKey {
	return FieldKey{kind: KeyApplication, id: id}
}

// ParseApplicationKey reads a path segment of the applications region.
func ParseApplicationKey(segment string) (FieldKey, bool) {
	id, ok := strings.CutPrefix(segment, keyPrefix)
	if !ok || id == "" {
		return FieldKey{}, false
	}
	return ApplicationKey(id), true
}

// Kind returns the region the key addresses.
func (k FieldKey) Kind() KeyKind { return k.kind }

// ID returns the raw entity id.
func (k FieldKey) ID() string { return k.id }

// Authtype returns the authtype of a per-application key.
func (k FieldKey) Authtype() string { return k.authtype }

// IsZero reports whether the key was never built.
func (k FieldKey) IsZero() bool { return k.kind == 0 }

func (k FieldKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// String renders the key as it appears in form field paths.
func (k FieldKey) String() string {
	switch k.kind {
	case KeySharedAuth, KeyApplication:
		return keyPrefix + k.id
	case KeyAppAuth:
		return keyPrefix + k.authtype + k.id
	default:
		return ""
	}
}

// authenticationKeys returns every key an authentication can be addressed
// by: its shared key and, when it has an authtype, its per-application key.
func authenticationKeys(auth Authentication) []FieldKey {
	keys := []FieldKey{SharedAuthKey(auth.ID)}
	if auth.Authtype != "" {
		keys = append(keys, AppAuthKey(auth.Authtype, auth.ID))
	}
	return keys
}

// TargetKind tells what a submission target stands for.
type TargetKind uint8

const (
	// TargetApplication is an application whose own fields changed.
	TargetApplication TargetKind = iota + 1
	// TargetEndpointCheck is an application sharing an endpoint that changed.
	// It must be revalidated even though its own fields did not change.
	TargetEndpointCheck
)

// Target is one entry of an attribution result.
type Target struct {
	Kind          TargetKind
	ApplicationID string
}

// ApplicationTarget targets an application directly.
func ApplicationTarget(id string) Target {
	return Target{Kind: TargetApplication, ApplicationID: id}
}

// EndpointCheckTarget targets the revalidation of an application's shared endpoint.
func EndpointCheckTarget(id string) Target {
	return Target{Kind: TargetEndpointCheck, ApplicationID: id}
}

// ParseTarget parses the string form of a target.
func ParseTarget(s string) (Target, bool) {
	if id, ok := strings.CutPrefix(s, endpointCheckPrefix); ok {
		if id == "" {
			return Target{}, false
		}
		return EndpointCheckTarget(id), true
	}
	if s == "" {
		return Target{}, false
	}
	return ApplicationTarget(s), true
}

// String renders the raw application id or check-endpoint-<id>.
func (t Target) String() string {
	switch t.Kind {
	case TargetApplication:
		return t.ApplicationID
	case TargetEndpointCheck:
		return endpointCheckPrefix + t.ApplicationID
	default:
		return ""
	}
}

func (t Target) MarshalText() ([]byte, error) {
	if t.Kind == 0 {
		return nil, fmt.Errorf("cannot marshal empty target")
	}
	return []byte(t.String()), nil
}

func (t *Target) UnmarshalText(b []byte) error {
	parsed, ok := ParseTarget(string(b))
	if !ok {
		return fmt.Errorf("invalid target %q", string(b))
	}
	*t = parsed
	return nil
}

// TargetStrings renders targets in order.
func TargetStrings(targets []Target) []string {
	out := make([]string, 0, len(targets))
	for _, t := range targets {
		out = append(out, t.String())
	}
	return out
}
