package domain

import "strings"

// Top-level regions of the edit model that the attributor reads.
const (
	regionApplications    = "applications"
	regionAuthentications = "authentications"
	regionEndpoint        = "endpoint"
	fieldURL              = "url"
)

// AttributeEditedApplications returns the applications that must be
// updated or revalidated after the given edits, in first-seen order and
// without duplicates.
//
// Three passes run in order over the flagged paths:
//   - applications.<key>.* targets the application itself.
//   - authentications.<key>.* targets the first application owning that
//     credential, directly for Application credentials or through an
//     endpoint check for Endpoint credentials.
//   - endpoint.* and url target every application sharing the endpoint.
//
// Unknown paths and missing relationships yield nothing. applicationTypes
// does not filter the result.
func AttributeEditedApplications(bundle SourceBundle, edited EditedFields, applicationTypes []ApplicationType) []Target {
	_ = applicationTypes

	paths := edited.Paths()
	result := newTargetSet()

	for _, path := range paths {
		segment, ok := regionKey(path, regionApplications)
		if !ok {
			continue
		}
		if key, ok := ParseApplicationKey(segment); ok {
			result.add(ApplicationTarget(key.ID()))
		}
	}

	for _, path := range paths {
		segment, ok := regionKey(path, regionAuthentications)
		if !ok {
			continue
		}
		if target, ok := authenticationTarget(bundle.Applications, segment); ok {
			result.add(target)
		}
	}

	if endpointEdited(paths) {
		for _, app := range bundle.Applications {
			if app.HasEndpointAuthentication() {
				result.add(EndpointCheckTarget(app.ID))
			}
		}
	}

	return result.items
}

// regionKey returns <key> for a path of the form <region>.<key>.<field...>.
func regionKey(path, region string) (string, bool) {
	rest, ok := strings.CutPrefix(path, region+".")
	if !ok {
		return "", false
	}
	key, _, ok := strings.Cut(rest, ".")
	if !ok || key == "" {
		return "", false
	}
	return key, true
}

func authenticationTarget(apps []Application, segment string) (Target, bool) {
	for _, app := range apps {
		for _, auth := range app.Authentications {
			if !matchesAuthenticationKey(auth, segment) {
				continue
			}
			switch auth.ResourceType {
			case ResourceTypeApplication:
				return ApplicationTarget(app.ID), true
			case ResourceTypeEndpoint:
				return EndpointCheckTarget(app.ID), true
			default:
				return Target{}, false
			}
		}
	}
	return Target{}, false
}

func matchesAuthenticationKey(auth Authentication, segment string) bool {
	for _, key := range authenticationKeys(auth) {
		if key.String() == segment {
			return true
		}
	}
	return false
}

func endpointEdited(paths []string) bool {
	for _, path := range paths {
		if path == fieldURL || strings.HasPrefix(path, regionEndpoint+".") {
			return true
		}
	}
	return false
}

type targetSet struct {
	seen  map[Target]struct{}
	items []Target
}

func newTargetSet() *targetSet {
	return &targetSet{seen: make(map[Target]struct{}), items: []Target{}}
}

func (s *targetSet) add(t Target) {
	if _, ok := s.seen[t]; ok {
		return
	}
	s.seen[t] = struct{}{}
	s.items = append(s.items, t)
}
