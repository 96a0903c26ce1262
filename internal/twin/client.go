// Package twin is the HTTP client for the camera-health digital twin
// backend. The backend exposes six idempotent read-only queries keyed by
// day, site, and plate; every response body is decoded as untyped JSON
// because the caller classifies results purely by shape.
package twin

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"
)

// Tool names accepted by Call, matching the backend route names.
const (
	ToolCityTotals           = "getCityTotals"
	ToolSiteTotals           = "getSiteTotals"
	ToolSiteDayStatus        = "getSiteDayStatus"
	ToolVehicleDegradeStatus = "getVehicleDegradeStatus"
	ToolTripsForDay          = "getTripsForDay"
	ToolTripsAllDays         = "getTripsAllDays"
)

// toolParams maps each tool to its required query parameters.
var toolParams = map[string][]string{
	ToolCityTotals:           {"day"},
	ToolSiteTotals:           {"day", "site"},
	ToolSiteDayStatus:        {"day", "site"},
	ToolVehicleDegradeStatus: {"plate"},
	ToolTripsForDay:          {"plate", "day"},
	ToolTripsAllDays:         {"plate"},
}

// Tools returns the supported tool names in stable order.
func Tools() []string {
	names := make([]string, 0, len(toolParams))
	for name := range toolParams {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsTool reports whether name is one of the six backend operations.
func IsTool(name string) bool {
	_, ok := toolParams[name]
	return ok
}

// RequiredParams returns the query parameters a tool needs.
func RequiredParams(tool string) []string {
	return toolParams[tool]
}

// Client talks to the twin backend over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a backend client. A zero timeout defaults to 30s.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// CityTotals returns city-level degraded vs not-degraded vehicle counts for a day.
func (c *Client) CityTotals(ctx context.Context, day string) (any, error) {
	return c.get(ctx, ToolCityTotals, url.Values{"day": {day}})
}

// SiteTotals returns per-site degraded vehicle counts for a site and day.
func (c *Client) SiteTotals(ctx context.Context, day, site string) (any, error) {
	return c.get(ctx, ToolSiteTotals, url.Values{"day": {day}, "site": {site}})
}

// SiteDayStatus returns detailed detection counts and the status flag for a site-day.
func (c *Client) SiteDayStatus(ctx context.Context, day, site string) (any, error) {
	return c.get(ctx, ToolSiteDayStatus, url.Values{"day": {day}, "site": {site}})
}

// VehicleDegradeStatus returns the latest degradation record for a plate.
func (c *Client) VehicleDegradeStatus(ctx context.Context, plate string) (any, error) {
	return c.get(ctx, ToolVehicleDegradeStatus, url.Values{"plate": {plate}})
}

// TripsForDay returns all 30-minute trips for a plate on one day.
func (c *Client) TripsForDay(ctx context.Context, plate, day string) (any, error) {
	return c.get(ctx, ToolTripsForDay, url.Values{"plate": {plate}, "day": {day}})
}

// TripsAllDays returns all trips for a plate across every indexed day.
func (c *Client) TripsAllDays(ctx context.Context, plate string) (any, error) {
	return c.get(ctx, ToolTripsAllDays, url.Values{"plate": {plate}})
}

// Call dispatches a validated tool name with string parameters. Missing
// parameters are sent as empty strings; the backend answers those with an
// error payload, which downstream analysis renders like any other result.
func (c *Client) Call(ctx context.Context, tool string, params map[string]string) (any, error) {
	required, ok := toolParams[tool]
	if !ok {
		return nil, fmt.Errorf("unknown tool %q", tool)
	}

	values := url.Values{}
	for _, p := range required {
		values.Set(p, params[p])
	}
	return c.get(ctx, tool, values)
}

func (c *Client) get(ctx context.Context, route string, values url.Values) (any, error) {
	u := fmt.Sprintf("%s/%s?%s", c.baseURL, route, values.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request for %s: %w", route, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("backend request %s failed: %w", route, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", route, err)
	}

	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("backend %s returned invalid JSON (status %d): %w", route, resp.StatusCode, err)
	}

	// Non-2xx with a decodable body still flows through: the backend
	// reports failures as {"error": ...} payloads, and those are answers,
	// not transport errors.
	return payload, nil
}
