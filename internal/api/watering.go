package api

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/greener/waterdesk/internal/model"
)

// GetWateringChecklist fetches the full watering checklist for the
// session's business. The returned snapshot carries the server's
// counts as-is; callers recount after local mutations.
func (c *Client) GetWateringChecklist(ctx context.Context) (*model.ChecklistSnapshot, error) {
	path := "/business/watering-checklist?businessId=" +
		url.QueryEscape(c.session.BusinessID)

	var resp checklistResponse
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, fmt.Errorf("fetching watering checklist: %w", err)
	}

	return &model.ChecklistSnapshot{
		Checklist:          resp.Checklist,
		TotalCount:         resp.TotalCount,
		NeedsWateringCount: resp.NeedsWateringCount,
		FetchedAt:          time.Now().UTC(),
	}, nil
}

// MarkPlantWatered records a watering on the backend. Single attempt:
// on failure the caller surfaces the error and offers a manual retry.
func (c *Client) MarkPlantWatered(
	ctx context.Context,
	plantID string,
	method model.ContactMethod,
	coords *model.Coordinates,
) (*model.ChecklistItem, error) {
	body := markWateredRequest{
		BusinessID:  c.session.BusinessID,
		PlantID:     plantID,
		Method:      string(method),
		Coordinates: coords,
	}

	var resp markWateredResponse
	if err := c.post(ctx, "/business/watering-checklist", body, &resp); err != nil {
		return nil, fmt.Errorf("marking plant %s watered: %w", plantID, err)
	}
	if !resp.Success {
		msg := resp.Error
		if msg == "" {
			msg = "backend rejected the watering"
		}
		return nil, fmt.Errorf("marking plant %s watered: %s", plantID, msg)
	}

	return resp.Plant, nil
}

// GetOptimizedRoute fetches the server-computed visiting order for
// plants needing watering. The ordering is opaque: it is displayed,
// never recomputed or validated client-side.
func (c *Client) GetOptimizedRoute(ctx context.Context) (*model.OptimizedRoute, error) {
	path := "/business/optimize-watering-route?businessId=" +
		url.QueryEscape(c.session.BusinessID)

	var resp routeResponse
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, fmt.Errorf("fetching optimized route: %w", err)
	}

	return &model.OptimizedRoute{
		Route:         resp.Route,
		TotalPlants:   resp.TotalPlants,
		EstimatedTime: resp.EstimatedTime,
	}, nil
}

// GetBusinessWeather fetches current weather at the business location.
// Best effort: callers log and swallow failures, the checklist never
// waits on weather.
func (c *Client) GetBusinessWeather(ctx context.Context) (*model.WeatherInfo, error) {
	path := "/business/weather?businessId=" +
		url.QueryEscape(c.session.BusinessID)

	var resp weatherResponse
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, fmt.Errorf("fetching business weather: %w", err)
	}

	return resp.Weather, nil
}

// BarcodePDFURL builds the label-PDF download link for a plant. The
// URL is handed to the user; the PDF itself is never fetched here.
func (c *Client) BarcodePDFURL(plantID string) string {
	return fmt.Sprintf(
		"%s/business/generate-barcode?businessId=%s&plantId=%s",
		c.baseURL,
		url.QueryEscape(c.session.BusinessID),
		url.QueryEscape(plantID),
	)
}
