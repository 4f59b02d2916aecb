package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func planBundle() SourceBundle {
	return SourceBundle{
		Source:          Source{ID: "src", Name: "old"},
		Endpoints:       []Endpoint{{ID: "ep1", Scheme: "https", Host: "redhat.com"}},
		Authentications: []Authentication{{ID: "9", Username: "shared"}},
		Applications: []Application{
			{ID: "10", Authentications: []Authentication{{ID: "9", ResourceType: ResourceTypeEndpoint}}},
			{
				ID:              "11",
				Extra:           map[string]any{"dataset": "d"},
				Authentications: []Authentication{{ID: "5", Authtype: "arn", ResourceType: ResourceTypeApplication}},
			},
		},
	}
}

func planValues(t *testing.T, bundle SourceBundle) map[string]any {
	t.Helper()
	values, err := Aggregate(bundle, testSourceTypeName).Values()
	require.NoError(t, err)
	return values
}

func TestBuildPlan_Empty(t *testing.T) {
	bundle := planBundle()

	plan := BuildPlan(bundle, planValues(t, bundle), EditedFields{"source.name": false}, nil)

	assert.True(t, plan.Empty())
	assert.Equal(t, "ep1", plan.EndpointID)
}

func TestBuildPlan_URLDecomposition(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want map[string]any
	}{
		{"scheme and host", "http://example.com", map[string]any{"scheme": "http", "host": "example.com"}},
		{"with port and path", "https://example.com:8443/api", map[string]any{"scheme": "https", "host": "example.com", "port": 8443, "path": "/api"}},
		{"unparseable", "://nope", nil},
		{"no host", "just-text", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bundle := planBundle()
			values := planValues(t, bundle)
			values["url"] = tt.url

			plan := BuildPlan(bundle, values, EditedFields{"url": true}, nil)

			assert.Equal(t, tt.want, plan.Endpoint)
			assert.Equal(t, []Target{EndpointCheckTarget("10")}, plan.Targets)
		})
	}
}

func TestBuildPlan_EndpointFieldsAndURL(t *testing.T) {
	bundle := planBundle()
	values := planValues(t, bundle)
	values["endpoint"].(map[string]any)["role"] = "kubernetes"
	values["url"] = "https://new.example.com"

	plan := BuildPlan(bundle, values, EditedFields{"endpoint.role": true, "url": true}, nil)

	assert.Equal(t, map[string]any{"role": "kubernetes", "scheme": "https", "host": "new.example.com"}, plan.Endpoint)
	assert.Equal(t, "ep1", plan.EndpointID)
}

func TestBuildPlan_Entities(t *testing.T) {
	bundle := planBundle()
	values := planValues(t, bundle)
	values["source"].(map[string]any)["name"] = "new"
	values["authentications"].(map[string]any)["a9"].(map[string]any)["password"] = "pw"
	values["authentications"].(map[string]any)["aarn5"].(map[string]any)["username"] = "arn:aws"
	values["applications"].(map[string]any)["a11"].(map[string]any)["extra"] = map[string]any{"dataset": "e"}

	plan := BuildPlan(bundle, values, EditedFields{
		"source.name":                    true,
		"authentications.a9.password":    true,
		"authentications.aarn5.username": true,
		"authentications.a404.username":  true,
		"applications.a11.extra":         true,
	}, nil)

	assert.Equal(t, map[string]any{"name": "new"}, plan.Source)
	assert.Nil(t, plan.Endpoint)
	assert.Equal(t, []AuthenticationPatch{
		{ID: "9", Key: "a9", Values: map[string]any{"password": "pw"}},
		{ID: "5", Key: "aarn5", Values: map[string]any{"username": "arn:aws"}},
	}, plan.Authentications)
	assert.Equal(t, []ApplicationPatch{
		{ID: "11", Values: map[string]any{"extra": map[string]any{"dataset": "e"}}},
	}, plan.Applications)
	assert.Equal(t, []string{"11", "check-endpoint-10"}, TargetStrings(plan.Targets))
	assert.False(t, plan.Empty())
}

func TestBuildPlan_JSON(t *testing.T) {
	bundle := planBundle()
	values := planValues(t, bundle)

	plan := BuildPlan(bundle, values, EditedFields{"url": true}, nil)
	data, err := json.Marshal(plan)
	require.NoError(t, err)

	var decoded struct {
		EndpointID string   `json:"endpoint_id"`
		Targets    []Target `json:"targets"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "ep1", decoded.EndpointID)
	assert.Equal(t, []Target{EndpointCheckTarget("10")}, decoded.Targets)
}
