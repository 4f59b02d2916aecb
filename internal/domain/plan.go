package domain

import (
	"net/url"
	"sort"
	"strconv"
)

// AuthenticationPatch is the partial payload for one authentication.
type AuthenticationPatch struct {
	ID     string         `json:"id"`
	Key    string         `json:"key"`
	Values map[string]any `json:"values"`
}

// ApplicationPatch is the partial payload for one application.
type ApplicationPatch struct {
	ID     string         `json:"id"`
	Values map[string]any `json:"values"`
}

// Plan lists everything a submission sends: per-entity partial payloads and
// the applications to revalidate.
type Plan struct {
	Source          map[string]any        `json:"source,omitempty"`
	Endpoint        map[string]any        `json:"endpoint,omitempty"`
	EndpointID      string                `json:"endpoint_id,omitempty"`
	Authentications []AuthenticationPatch `json:"authentications"`
	Applications    []ApplicationPatch    `json:"applications"`
	Targets         []Target              `json:"targets"`
}

// Empty reports whether the plan sends nothing.
func (p Plan) Empty() bool {
	return len(p.Source) == 0 &&
		len(p.Endpoint) == 0 &&
		len(p.Authentications) == 0 &&
		len(p.Applications) == 0 &&
		len(p.Targets) == 0
}

// BuildPlan turns the edited values of a session into a submission plan.
//
// Endpoint checks carry no payload of their own: the endpoint diff is sent
// once, in Endpoint.
func BuildPlan(bundle SourceBundle, values map[string]any, edited EditedFields, applicationTypes []ApplicationType) Plan {
	partial := SelectEditedValues(values, edited)

	plan := Plan{
		Source:          asMap(partial["source"]),
		Endpoint:        asMap(partial["endpoint"]),
		Authentications: []AuthenticationPatch{},
		Applications:    []ApplicationPatch{},
		Targets:         AttributeEditedApplications(bundle, edited, applicationTypes),
	}

	if endpoint, ok := bundle.PrimaryEndpoint(); ok {
		plan.EndpointID = endpoint.ID
	}

	if raw, ok := partial[fieldURL].(string); ok {
		if fields, ok := decomposeURL(raw); ok {
			if plan.Endpoint == nil {
				plan.Endpoint = make(map[string]any, len(fields))
			}
			for k, v := range fields {
				plan.Endpoint[k] = v
			}
		}
	}

	authIDs := authenticationIDsByKey(bundle)
	auths := asMap(partial[regionAuthentications])
	for _, key := range sortedKeys(auths) {
		id, ok := authIDs[key]
		if !ok {
			continue
		}
		patch := asMap(auths[key])
		if len(patch) == 0 {
			continue
		}
		plan.Authentications = append(plan.Authentications, AuthenticationPatch{ID: id, Key: key, Values: patch})
	}

	apps := asMap(partial[regionApplications])
	for _, key := range sortedKeys(apps) {
		appKey, ok := ParseApplicationKey(key)
		if !ok {
			continue
		}
		patch := asMap(apps[key])
		if len(patch) == 0 {
			continue
		}
		plan.Applications = append(plan.Applications, ApplicationPatch{ID: appKey.ID(), Values: patch})
	}

	return plan
}

// authenticationIDsByKey resolves every rendered key of the bundle's
// authentications to its raw id.
func authenticationIDsByKey(bundle SourceBundle) map[string]string {
	ids := make(map[string]string)
	for _, auth := range bundle.Authentications {
		ids[SharedAuthKey(auth.ID).String()] = auth.ID
	}
	for _, app := range bundle.Applications {
		for _, auth := range app.Authentications {
			for _, key := range authenticationKeys(auth) {
				if _, exists := ids[key.String()]; !exists {
					ids[key.String()] = auth.ID
				}
			}
		}
	}
	return ids
}

// decomposeURL splits a form url back into endpoint fields.
func decomposeURL(raw string) (map[string]any, bool) {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Hostname() == "" {
		return nil, false
	}

	fields := map[string]any{
		"scheme": u.Scheme,
		"host":   u.Hostname(),
	}
	if p := u.Port(); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return nil, false
		}
		fields["port"] = port
	}
	if u.Path != "" && u.Path != "/" {
		fields["path"] = u.Path
	}
	return fields, true
}

func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
