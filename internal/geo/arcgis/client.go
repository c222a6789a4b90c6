package arcgis

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"constituent-clean/internal/httpx"
)

const findPath = "/arcgis/rest/services/World/GeocodeServer/findAddressCandidates"

// Client geocodes single-line addresses against the ArcGIS world geocoding
// service. It implements geo.Geocoder.
type Client struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
	Retry   httpx.RetryConfig
}

func New(baseURL, token string) *Client {
	return &Client{
		BaseURL: baseURL,
		Token:   token,
		HTTP: &http.Client{
			Timeout: 30 * time.Second,
		},
		Retry: httpx.DefaultRetryConfig(),
	}
}

type findResponse struct {
	Candidates []struct {
		Address  string  `json:"address"`
		Score    float64 `json:"score"`
		Location struct {
			X float64 `json:"x"`
			Y float64 `json:"y"`
		} `json:"location"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Geocode resolves one address. An empty candidate list is an error, not a
// zero coordinate; callers leave the row untouched and move on.
func (c *Client) Geocode(ctx context.Context, address string) (float64, float64, error) {
	u, err := url.Parse(c.BaseURL + findPath)
	if err != nil {
		return 0, 0, fmt.Errorf("arcgis: invalid base url: %w", err)
	}
	q := u.Query()
	q.Set("f", "json")
	q.Set("singleLine", address)
	q.Set("maxLocations", "1")
	if c.Token != "" {
		q.Set("token", c.Token)
	}
	u.RawQuery = q.Encode()

	buildReq := func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	}

	var out findResponse
	if err := httpx.DoJSON(ctx, c.HTTP, buildReq, &out, c.Retry); err != nil {
		return 0, 0, fmt.Errorf("arcgis: %w", err)
	}

	// The service reports failures as 200 + error payload.
	if out.Error != nil {
		return 0, 0, fmt.Errorf("arcgis: service error %d: %s", out.Error.Code, out.Error.Message)
	}
	if len(out.Candidates) == 0 {
		return 0, 0, fmt.Errorf("arcgis: no candidates for %q", address)
	}

	loc := out.Candidates[0].Location
	return loc.Y, loc.X, nil
}
