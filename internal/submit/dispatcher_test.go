package submit

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/sourcedit/internal/domain"
	"github.com/MrSnakeDoc/sourcedit/internal/logger"
)

type fakeSubmitter struct {
	mu    sync.Mutex
	calls []string
	fail  map[string]error
}

func (f *fakeSubmitter) record(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, key)
	return f.fail[key]
}

func (f *fakeSubmitter) UpdateSource(_ context.Context, id string, _ map[string]any) error {
	return f.record("source:" + id)
}

func (f *fakeSubmitter) UpdateEndpoint(_ context.Context, id string, _ map[string]any) error {
	return f.record("endpoint:" + id)
}

func (f *fakeSubmitter) UpdateAuthentication(_ context.Context, id string, _ map[string]any) error {
	return f.record("authentication:" + id)
}

func (f *fakeSubmitter) UpdateApplication(_ context.Context, id string, _ map[string]any) error {
	return f.record("application:" + id)
}

func (f *fakeSubmitter) CheckAvailability(_ context.Context, _ string, target domain.Target) error {
	return f.record("target:" + target.String())
}

func (f *fakeSubmitter) sortedCalls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := append([]string(nil), f.calls...)
	sort.Strings(out)
	return out
}

func fullPlan() domain.Plan {
	return domain.Plan{
		Source:     map[string]any{"name": "new"},
		Endpoint:   map[string]any{"host": "h"},
		EndpointID: "ep1",
		Authentications: []domain.AuthenticationPatch{
			{ID: "9", Key: "a9", Values: map[string]any{"password": "p"}},
		},
		Applications: []domain.ApplicationPatch{
			{ID: "11", Values: map[string]any{"extra": map[string]any{}}},
		},
		Targets: []domain.Target{domain.ApplicationTarget("11"), domain.EndpointCheckTarget("10")},
	}
}

func TestDispatch_AllSucceed(t *testing.T) {
	sub := &fakeSubmitter{}
	d := NewDispatcher(sub, 2, logger.Nop())

	report := d.Dispatch(context.Background(), "src", fullPlan())

	assert.True(t, report.OK())
	assert.Empty(t, report.Failed())
	assert.Equal(t, []Result{
		{Kind: KindSource, ID: "src", OK: true},
		{Kind: KindEndpoint, ID: "ep1", OK: true},
		{Kind: KindAuthentication, ID: "9", OK: true},
		{Kind: KindApplication, ID: "11", OK: true},
		{Kind: KindTarget, ID: "11", OK: true},
		{Kind: KindTarget, ID: "check-endpoint-10", OK: true},
	}, report.Results)
	assert.Equal(t, []string{
		"application:11",
		"authentication:9",
		"endpoint:ep1",
		"source:src",
		"target:11",
		"target:check-endpoint-10",
	}, sub.sortedCalls())
}

func TestDispatch_FailuresAreIndependent(t *testing.T) {
	sub := &fakeSubmitter{fail: map[string]error{
		"authentication:9": errors.New("denied"),
		"target:11":        errors.New("unreachable"),
	}}
	d := NewDispatcher(sub, 1, logger.Nop())

	report := d.Dispatch(context.Background(), "src", fullPlan())

	assert.False(t, report.OK())
	require.Len(t, report.Results, 6)
	assert.Equal(t, []Result{
		{Kind: KindAuthentication, ID: "9", OK: false, Error: "denied"},
		{Kind: KindTarget, ID: "11", OK: false, Error: "unreachable"},
	}, report.Failed())
	assert.Len(t, sub.sortedCalls(), 6)
}

func TestDispatch_EndpointEditWithoutEndpoint(t *testing.T) {
	sub := &fakeSubmitter{}
	d := NewDispatcher(sub, 0, logger.Nop())

	report := d.Dispatch(context.Background(), "src", domain.Plan{
		Endpoint: map[string]any{"scheme": "https", "host": "x"},
	})

	require.Len(t, report.Results, 1)
	assert.Equal(t, Result{Kind: KindEndpoint, OK: false, Error: ErrNoEndpoint.Error()}, report.Results[0])
	assert.Empty(t, sub.sortedCalls())
}

func TestDispatch_EmptyPlan(t *testing.T) {
	sub := &fakeSubmitter{}
	d := NewDispatcher(sub, 0, logger.Nop())

	report := d.Dispatch(context.Background(), "src", domain.Plan{})

	assert.True(t, report.OK())
	assert.Empty(t, report.Results)
	assert.Empty(t, sub.sortedCalls())
}
