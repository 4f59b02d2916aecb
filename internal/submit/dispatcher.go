package submit

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/MrSnakeDoc/sourcedit/internal/domain"
	"github.com/MrSnakeDoc/sourcedit/internal/logger"
)

const defaultConcurrency = 4

// ErrNoEndpoint is reported when a plan edits an endpoint the source does not have.
var ErrNoEndpoint = errors.New("source has no endpoint to update")

// Submitter sends partial updates and availability checks upstream.
type Submitter interface {
	UpdateSource(ctx context.Context, id string, values map[string]any) error
	UpdateEndpoint(ctx context.Context, id string, values map[string]any) error
	UpdateAuthentication(ctx context.Context, id string, values map[string]any) error
	UpdateApplication(ctx context.Context, id string, values map[string]any) error
	CheckAvailability(ctx context.Context, sourceID string, target domain.Target) error
}

// Result kinds.
const (
	KindSource         = "source"
	KindEndpoint       = "endpoint"
	KindAuthentication = "authentication"
	KindApplication    = "application"
	KindTarget         = "target"
)

// Result is the outcome of one upstream call.
type Result struct {
	Kind  string `json:"kind"`
	ID    string `json:"id"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// Report lists the results of a dispatch in plan order.
type Report struct {
	SourceID string        `json:"source_id"`
	Results  []Result      `json:"results"`
	Duration time.Duration `json:"duration"`
}

// OK reports whether every call succeeded.
func (r Report) OK() bool {
	for _, res := range r.Results {
		if !res.OK {
			return false
		}
	}
	return true
}

// Failed returns the results that did not succeed.
func (r Report) Failed() []Result {
	var out []Result
	for _, res := range r.Results {
		if !res.OK {
			out = append(out, res)
		}
	}
	return out
}

// Dispatcher runs a plan against a Submitter.
type Dispatcher struct {
	submitter   Submitter
	concurrency int
	log         logger.Logger
}

// NewDispatcher creates a dispatcher. concurrency <= 0 uses the default.
func NewDispatcher(submitter Submitter, concurrency int, log logger.Logger) *Dispatcher {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return &Dispatcher{
		submitter:   submitter,
		concurrency: concurrency,
		log:         log,
	}
}

type call struct {
	kind string
	id   string
	run  func(ctx context.Context) error
}

// Dispatch sends every entity update, then every availability check.
// Calls are independent: a failure never cancels or undoes a sibling, and
// checks run even when updates failed.
func (d *Dispatcher) Dispatch(ctx context.Context, sourceID string, plan domain.Plan) Report {
	start := time.Now()

	updates := d.updateCalls(sourceID, plan)
	checks := make([]call, 0, len(plan.Targets))
	for _, target := range plan.Targets {
		checks = append(checks, call{
			kind: KindTarget,
			id:   target.String(),
			run: func(ctx context.Context) error {
				return d.submitter.CheckAvailability(ctx, sourceID, target)
			},
		})
	}

	results := d.run(ctx, updates)
	results = append(results, d.run(ctx, checks)...)

	report := Report{
		SourceID: sourceID,
		Results:  results,
		Duration: time.Since(start),
	}

	if report.OK() {
		d.log.Info("submission dispatched",
			logger.String("source_id", sourceID),
			logger.Int("calls", len(results)),
			logger.Duration("duration", report.Duration),
		)
	} else {
		d.log.Warn("submission partially failed",
			logger.String("source_id", sourceID),
			logger.Int("calls", len(results)),
			logger.Int("failed", len(report.Failed())),
			logger.Duration("duration", report.Duration),
		)
	}

	return report
}

func (d *Dispatcher) updateCalls(sourceID string, plan domain.Plan) []call {
	var calls []call

	if len(plan.Source) > 0 {
		calls = append(calls, call{kind: KindSource, id: sourceID, run: func(ctx context.Context) error {
			return d.submitter.UpdateSource(ctx, sourceID, plan.Source)
		}})
	}

	if len(plan.Endpoint) > 0 {
		endpointID := plan.EndpointID
		calls = append(calls, call{kind: KindEndpoint, id: endpointID, run: func(ctx context.Context) error {
			if endpointID == "" {
				return ErrNoEndpoint
			}
			return d.submitter.UpdateEndpoint(ctx, endpointID, plan.Endpoint)
		}})
	}

	for _, auth := range plan.Authentications {
		calls = append(calls, call{kind: KindAuthentication, id: auth.ID, run: func(ctx context.Context) error {
			return d.submitter.UpdateAuthentication(ctx, auth.ID, auth.Values)
		}})
	}

	for _, app := range plan.Applications {
		calls = append(calls, call{kind: KindApplication, id: app.ID, run: func(ctx context.Context) error {
			return d.submitter.UpdateApplication(ctx, app.ID, app.Values)
		}})
	}

	return calls
}

// run executes calls concurrently and returns their results in input order.
func (d *Dispatcher) run(ctx context.Context, calls []call) []Result {
	results := make([]Result, len(calls))

	// Plain errgroup, not WithContext: one failure must not cancel siblings.
	var g errgroup.Group
	g.SetLimit(d.concurrency)

	for i, c := range calls {
		g.Go(func() error {
			res := Result{Kind: c.kind, ID: c.id, OK: true}
			if err := c.run(ctx); err != nil {
				res.OK = false
				res.Error = err.Error()
				d.log.Warn("upstream call failed",
					logger.String("kind", c.kind),
					logger.String("id", c.id),
					logger.Error(err),
				)
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()

	return results
}
