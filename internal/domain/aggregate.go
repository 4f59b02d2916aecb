package domain

import (
	"encoding/json"
	"fmt"
)

// ApplicationValues is the editable part of an application.
type ApplicationValues struct {
	Extra map[string]any `json:"extra"`
}

// EditModel is the flat, form-shaped model of one source.
//
// Authentications are keyed by FieldKey strings: shared credentials by
// a<id>, per-application credentials by a<authtype><id>. Applications only
// appear when they carry extra metadata.
type EditModel struct {
	Source          Source                       `json:"source"`
	Endpoint        *Endpoint                    `json:"endpoint,omitempty"`
	Authentications map[string]Authentication    `json:"authentications"`
	Applications    map[string]ApplicationValues `json:"applications,omitempty"`
	URL             string                       `json:"url,omitempty"`
	SourceType      string                       `json:"source_type"`
}

// Aggregate folds a fetched source bundle into its edit model.
//
// Shared authentications are keyed first, then per-application ones in
// application order. A per-application key that renders the same as an
// existing key is the same credential and keeps the first entry.
// The bundle is never modified.
func Aggregate(bundle SourceBundle, sourceTypeName string) EditModel {
	model := EditModel{
		Source:          bundle.Source,
		Authentications: make(map[string]Authentication, len(bundle.Authentications)),
		SourceType:      sourceTypeName,
	}

	if endpoint, ok := bundle.PrimaryEndpoint(); ok {
		ep := cloneEndpoint(endpoint)
		model.Endpoint = &ep
		model.URL = endpointURL(endpoint)
	}

	for _, auth := range bundle.Authentications {
		model.Authentications[SharedAuthKey(auth.ID).String()] = cloneAuthentication(auth)
	}

	for _, app := range bundle.Applications {
		for _, auth := range app.Authentications {
			key := AppAuthKey(auth.Authtype, auth.ID).String()
			if _, exists := model.Authentications[key]; exists {
				continue
			}
			model.Authentications[key] = cloneAuthentication(auth)
		}
	}

	for _, app := range bundle.Applications {
		if len(app.Extra) == 0 {
			continue
		}
		if model.Applications == nil {
			model.Applications = make(map[string]ApplicationValues)
		}
		model.Applications[ApplicationKey(app.ID).String()] = ApplicationValues{
			Extra: cloneMap(app.Extra),
		}
	}

	return model
}

// Values projects the model onto the generic value tree the form layer edits.
func (m EditModel) Values() (map[string]any, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal edit model: %w", err)
	}

	var values map[string]any
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("failed to unmarshal edit model: %w", err)
	}
	return values, nil
}

// endpointURL joins scheme and host. Both are taken verbatim.
func endpointURL(ep Endpoint) string {
	if ep.Scheme == "" || ep.Host == "" {
		return ""
	}
	return ep.Scheme + "://" + ep.Host
}

func cloneEndpoint(ep Endpoint) Endpoint {
	if ep.Port != nil {
		port := *ep.Port
		ep.Port = &port
	}
	if ep.VerifySSL != nil {
		verify := *ep.VerifySSL
		ep.VerifySSL = &verify
	}
	return ep
}

func cloneAuthentication(auth Authentication) Authentication {
	auth.Extra = cloneMap(auth.Extra)
	return auth
}

// cloneMap deep-copies a JSON-like map so the model never aliases its input.
func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}
