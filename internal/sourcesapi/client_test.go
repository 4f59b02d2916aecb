package sourcesapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/sourcedit/internal/domain"
	"github.com/MrSnakeDoc/sourcedit/internal/logger"
)

const testSourceID = "2324232321"

type fakeAPI struct {
	mu        sync.Mutex
	calls     []string
	bodies    map[string]map[string]any
	endpoints string
	apps      string
	auths     map[string]string
	endpointA string
	fail      map[string]int
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		bodies:    make(map[string]map[string]any),
		endpoints: `{"data":[]}`,
		apps:      `{"data":[]}`,
		auths:     make(map[string]string),
		endpointA: `{"data":[]}`,
		fail:      make(map[string]int),
	}
}

func (f *fakeAPI) record(r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := r.Method + " " + r.URL.Path
	f.calls = append(f.calls, key)
	if r.Body != nil {
		data, _ := io.ReadAll(r.Body)
		if len(data) > 0 {
			var body map[string]any
			_ = json.Unmarshal(data, &body)
			f.bodies[key] = body
		}
	}
}

func (f *fakeAPI) sortedCalls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := append([]string(nil), f.calls...)
	sort.Strings(out)
	return out
}

func (f *fakeAPI) handler() http.Handler {
	mux := http.NewServeMux()
	write := func(w http.ResponseWriter, r *http.Request, body string) {
		f.record(r)
		if status, ok := f.fail[r.Method+" "+r.URL.Path]; ok {
			http.Error(w, `{"errors":[{"detail":"boom"}]}`, status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, body)
	}

	mux.HandleFunc("GET /sources/{id}", func(w http.ResponseWriter, r *http.Request) {
		write(w, r, `{"name":"source","created_at":"12-12-2022"}`)
	})
	mux.HandleFunc("GET /sources/{id}/endpoints", func(w http.ResponseWriter, r *http.Request) {
		write(w, r, f.endpoints)
	})
	mux.HandleFunc("GET /sources/{id}/applications", func(w http.ResponseWriter, r *http.Request) {
		write(w, r, f.apps)
	})
	mux.HandleFunc("GET /authentications/{id}", func(w http.ResponseWriter, r *http.Request) {
		body, ok := f.auths[r.PathValue("id")]
		if !ok {
			body = `{}`
		}
		write(w, r, body)
	})
	mux.HandleFunc("GET /endpoints/{id}/authentications", func(w http.ResponseWriter, r *http.Request) {
		write(w, r, f.endpointA)
	})
	mux.HandleFunc("PATCH /", func(w http.ResponseWriter, r *http.Request) {
		write(w, r, `{}`)
	})
	mux.HandleFunc("POST /sources/{id}/check_availability", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		w.WriteHeader(http.StatusAccepted)
	})
	return mux
}

func newTestClient(t *testing.T, api *fakeAPI, token string) *Client {
	t.Helper()
	srv := httptest.NewServer(api.handler())
	t.Cleanup(srv.Close)
	return New(Config{BaseURL: srv.URL + "/", Token: token, RequestsPerSecond: 1000, Burst: 100}, logger.Nop())
}

func TestLoadSourceForEdit_WithoutEndpoint(t *testing.T) {
	api := newFakeAPI()
	client := newTestClient(t, api, "")

	bundle, err := client.LoadSourceForEdit(context.Background(), testSourceID)
	require.NoError(t, err)

	assert.Equal(t, domain.Source{ID: testSourceID, Name: "source", CreatedAt: "12-12-2022"}, bundle.Source)
	assert.Nil(t, bundle.Endpoints)
	assert.Nil(t, bundle.Authentications)
	assert.Empty(t, bundle.Applications)
	assert.Equal(t, []string{
		"GET /sources/" + testSourceID,
		"GET /sources/" + testSourceID + "/applications",
		"GET /sources/" + testSourceID + "/endpoints",
	}, api.sortedCalls())
}

func TestLoadSourceForEdit_ExpandsApplicationAuthentications(t *testing.T) {
	api := newFakeAPI()
	api.apps = `{"data":[{"id":"2323322","authentications":[{"id":"123","resource_type":"Endpoint"},{"id":"345","resource_type":"Application"}]}]}`
	api.auths["123"] = `{"id":"123","authtype":"token","username":"joe"}`
	api.auths["345"] = `{"id":"345","authtype":"arn","resource_type":"Application","password":"pw"}`
	client := newTestClient(t, api, "")

	bundle, err := client.LoadSourceForEdit(context.Background(), testSourceID)
	require.NoError(t, err)

	require.Len(t, bundle.Applications, 1)
	assert.Equal(t, []domain.Authentication{
		{ID: "123", Authtype: "token", Username: "joe", ResourceType: domain.ResourceTypeEndpoint},
		{ID: "345", Authtype: "arn", Password: "pw", ResourceType: domain.ResourceTypeApplication},
	}, bundle.Applications[0].Authentications)
	assert.Contains(t, api.sortedCalls(), "GET /authentications/123")
	assert.Contains(t, api.sortedCalls(), "GET /authentications/345")
	assert.NotContains(t, api.sortedCalls(), "GET /endpoints/8643928983/authentications")
}

func TestLoadSourceForEdit_ExcludesApplicationAuthenticationsFromShared(t *testing.T) {
	api := newFakeAPI()
	api.endpoints = `{"data":[{"id":"8643928983","receptor_node":"node","scheme":"https","port":6578}]}`
	api.apps = `{"data":[{"id":"2323322","authentications":[{"id":"123"},{"id":"345"}]}]}`
	api.endpointA = `{"data":[{"id":"123"},{"id":"different"}]}`
	client := newTestClient(t, api, "")

	bundle, err := client.LoadSourceForEdit(context.Background(), testSourceID)
	require.NoError(t, err)

	port := 6578
	assert.Equal(t, []domain.Endpoint{{ID: "8643928983", ReceptorNode: "node", Scheme: "https", Port: &port}}, bundle.Endpoints)
	assert.Equal(t, []domain.Authentication{{ID: "different"}}, bundle.Authentications)
	assert.Contains(t, api.sortedCalls(), "GET /endpoints/8643928983/authentications")
}

func TestLoadSourceForEdit_FailureAborts(t *testing.T) {
	api := newFakeAPI()
	api.endpoints = `{"data":[{"id":"1"}]}`
	api.fail["GET /endpoints/1/authentications"] = http.StatusInternalServerError
	client := newTestClient(t, api, "")

	_, err := client.LoadSourceForEdit(context.Background(), testSourceID)
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	assert.Contains(t, apiErr.Body, "boom")
}

func TestLoadSourceForEdit_NotFound(t *testing.T) {
	api := newFakeAPI()
	api.fail["GET /sources/"+testSourceID] = http.StatusNotFound
	client := newTestClient(t, api, "")

	_, err := client.LoadSourceForEdit(context.Background(), testSourceID)

	assert.True(t, IsNotFound(err))
}

func TestLoadSourceForEdit_BearerToken(t *testing.T) {
	var (
		mu  sync.Mutex
		got []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		got = append(got, r.Header.Get("Authorization"))
		mu.Unlock()
		_, _ = io.WriteString(w, `{"data":[]}`)
	}))
	defer srv.Close()

	client := New(Config{BaseURL: srv.URL, Token: "secret", MaxConcurrency: 1}, logger.Nop())
	_, err := client.LoadSourceForEdit(context.Background(), "1")
	require.NoError(t, err)

	require.Len(t, got, 3)
	for _, h := range got {
		assert.Equal(t, "Bearer secret", h)
	}
}

func TestUpdates(t *testing.T) {
	api := newFakeAPI()
	client := newTestClient(t, api, "")
	ctx := context.Background()

	require.NoError(t, client.UpdateSource(ctx, "1", map[string]any{"name": "new"}))
	require.NoError(t, client.UpdateEndpoint(ctx, "2", map[string]any{"host": "h"}))
	require.NoError(t, client.UpdateAuthentication(ctx, "3", map[string]any{"password": "p"}))
	require.NoError(t, client.UpdateApplication(ctx, "4", map[string]any{"extra": map[string]any{"a": "b"}}))

	assert.Equal(t, map[string]any{"name": "new"}, api.bodies["PATCH /sources/1"])
	assert.Equal(t, map[string]any{"host": "h"}, api.bodies["PATCH /endpoints/2"])
	assert.Equal(t, map[string]any{"password": "p"}, api.bodies["PATCH /authentications/3"])
	assert.Equal(t, map[string]any{"extra": map[string]any{"a": "b"}}, api.bodies["PATCH /applications/4"])
}

func TestCheckAvailability(t *testing.T) {
	api := newFakeAPI()
	client := newTestClient(t, api, "")

	require.NoError(t, client.CheckAvailability(context.Background(), "src", domain.EndpointCheckTarget("456")))

	assert.Equal(t, map[string]any{
		"target":         "check-endpoint-456",
		"application_id": "456",
		"scope":          ScopeEndpoint,
	}, api.bodies["POST /sources/src/check_availability"])
}

func TestUpdateFailureIsAPIError(t *testing.T) {
	api := newFakeAPI()
	api.fail["PATCH /applications/9"] = http.StatusUnprocessableEntity
	client := newTestClient(t, api, "")

	err := client.UpdateApplication(context.Background(), "9", map[string]any{"extra": nil})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.Status)
	assert.False(t, IsNotFound(err))
}
