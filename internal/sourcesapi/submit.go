package sourcesapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/MrSnakeDoc/sourcedit/internal/domain"
)

// Availability check scopes.
const (
	ScopeApplication = "application"
	ScopeEndpoint    = "endpoint"
)

// CheckAvailabilityRequest is the body of a check_availability call.
type CheckAvailabilityRequest struct {
	Target        string `json:"target"`
	ApplicationID string `json:"application_id"`
	Scope         string `json:"scope"`
}

// UpdateSource patches the source record.
func (c *Client) UpdateSource(ctx context.Context, id string, values map[string]any) error {
	return c.patch(ctx, "/sources/"+url.PathEscape(id), values)
}

// UpdateEndpoint patches an endpoint.
func (c *Client) UpdateEndpoint(ctx context.Context, id string, values map[string]any) error {
	return c.patch(ctx, "/endpoints/"+url.PathEscape(id), values)
}

// UpdateAuthentication patches an authentication.
func (c *Client) UpdateAuthentication(ctx context.Context, id string, values map[string]any) error {
	return c.patch(ctx, "/authentications/"+url.PathEscape(id), values)
}

// UpdateApplication patches an application.
func (c *Client) UpdateApplication(ctx context.Context, id string, values map[string]any) error {
	return c.patch(ctx, "/applications/"+url.PathEscape(id), values)
}

// CheckAvailability asks the Sources API to revalidate one target.
func (c *Client) CheckAvailability(ctx context.Context, sourceID string, target domain.Target) error {
	scope := ScopeApplication
	if target.Kind == domain.TargetEndpointCheck {
		scope = ScopeEndpoint
	}

	body := CheckAvailabilityRequest{
		Target:        target.String(),
		ApplicationID: target.ApplicationID,
		Scope:         scope,
	}
	path := "/sources/" + url.PathEscape(sourceID) + "/check_availability"
	if err := c.do(ctx, http.MethodPost, path, body, nil); err != nil {
		return fmt.Errorf("failed to check availability of %s: %w", target, err)
	}
	return nil
}

func (c *Client) patch(ctx context.Context, path string, values map[string]any) error {
	if err := c.do(ctx, http.MethodPatch, path, values, nil); err != nil {
		return fmt.Errorf("failed to update %s: %w", path, err)
	}
	return nil
}
