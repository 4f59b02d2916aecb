package sourcesapi

import (
	"context"
	"fmt"
	"net/url"

	"golang.org/x/sync/errgroup"

	"github.com/MrSnakeDoc/sourcedit/internal/domain"
	"github.com/MrSnakeDoc/sourcedit/internal/logger"
)

// LoadSourceForEdit fetches everything needed to edit a source.
//
// The source, its endpoints and its applications are fetched concurrently.
// Application authentications are then expanded one by one, and the first
// endpoint's authentications become the shared list minus those already
// owned by an application. Any failure aborts the whole load.
func (c *Client) LoadSourceForEdit(ctx context.Context, sourceID string) (domain.SourceBundle, error) {
	var (
		source    domain.Source
		endpoints listResponse[domain.Endpoint]
		apps      listResponse[domain.Application]
	)

	id := url.PathEscape(sourceID)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := c.get(gctx, "/sources/"+id, &source); err != nil {
			return fmt.Errorf("failed to load source %s: %w", sourceID, err)
		}
		return nil
	})
	g.Go(func() error {
		if err := c.get(gctx, "/sources/"+id+"/endpoints", &endpoints); err != nil {
			return fmt.Errorf("failed to load endpoints of source %s: %w", sourceID, err)
		}
		return nil
	})
	g.Go(func() error {
		if err := c.get(gctx, "/sources/"+id+"/applications", &apps); err != nil {
			return fmt.Errorf("failed to load applications of source %s: %w", sourceID, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return domain.SourceBundle{}, err
	}

	if source.ID == "" {
		source.ID = sourceID
	}

	bundle := domain.SourceBundle{
		Source:       source,
		Applications: apps.Data,
	}

	g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(c.maxConcurrency)

	for i := range bundle.Applications {
		app := &bundle.Applications[i]
		for j := range app.Authentications {
			auth := &app.Authentications[j]
			g.Go(func() error {
				return c.expandAuthentication(gctx, auth)
			})
		}
	}

	var shared []domain.Authentication
	if len(endpoints.Data) > 0 {
		endpointID := endpoints.Data[0].ID
		g.Go(func() error {
			var list listResponse[domain.Authentication]
			if err := c.get(gctx, "/endpoints/"+url.PathEscape(endpointID)+"/authentications", &list); err != nil {
				return fmt.Errorf("failed to load authentications of endpoint %s: %w", endpointID, err)
			}
			shared = list.Data
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return domain.SourceBundle{}, err
	}

	if len(endpoints.Data) > 0 {
		bundle.Endpoints = endpoints.Data
		bundle.Authentications = excludeApplicationAuthentications(shared, bundle.Applications)
	}

	c.log.Debug("source loaded for edit",
		logger.String("source_id", sourceID),
		logger.Int("endpoints", len(bundle.Endpoints)),
		logger.Int("authentications", len(bundle.Authentications)),
		logger.Int("applications", len(bundle.Applications)),
	)

	return bundle, nil
}

// expandAuthentication overlays the full record on an application's
// authentication reference. The reference's resource type survives when the
// record has none.
func (c *Client) expandAuthentication(ctx context.Context, ref *domain.Authentication) error {
	resourceType := ref.ResourceType
	if err := c.get(ctx, "/authentications/"+url.PathEscape(ref.ID), ref); err != nil {
		return fmt.Errorf("failed to load authentication %s: %w", ref.ID, err)
	}
	if ref.ResourceType == "" {
		ref.ResourceType = resourceType
	}
	return nil
}

func excludeApplicationAuthentications(shared []domain.Authentication, apps []domain.Application) []domain.Authentication {
	owned := make(map[string]struct{})
	for _, app := range apps {
		for _, auth := range app.Authentications {
			owned[auth.ID] = struct{}{}
		}
	}

	out := make([]domain.Authentication, 0, len(shared))
	for _, auth := range shared {
		if _, ok := owned[auth.ID]; ok {
			continue
		}
		out = append(out, auth)
	}
	return out
}
