package api

import "github.com/greener/waterdesk/internal/model"

// checklistResponse is the body of GET /business/watering-checklist.
type checklistResponse struct {
	Checklist          []model.ChecklistItem `json:"checklist"`
	TotalCount         int                   `json:"totalCount"`
	NeedsWateringCount int                   `json:"needsWateringCount"`
}

// markWateredRequest is the body of POST /business/watering-checklist.
type markWateredRequest struct {
	BusinessID  string             `json:"businessId"`
	PlantID     string             `json:"plantId"`
	Method      string             `json:"method"`
	Coordinates *model.Coordinates `json:"coordinates,omitempty"`
}

// markWateredResponse is the backend's confirmation of a watering.
type markWateredResponse struct {
	Success bool                 `json:"success"`
	Plant   *model.ChecklistItem `json:"plant"`
	Error   string               `json:"error,omitempty"`
}

// routeResponse is the body of GET /business/optimize-watering-route.
type routeResponse struct {
	Route         []model.RouteStep `json:"route"`
	TotalPlants   int               `json:"totalPlants"`
	EstimatedTime string            `json:"estimatedTime"`
}

// weatherResponse is the body of GET /business/weather.
type weatherResponse struct {
	Weather *model.WeatherInfo `json:"weather"`
}
