package imagery

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/mlaakso/agrisight-go/internal/conf"
	"github.com/mlaakso/agrisight-go/internal/errors"
	"github.com/mlaakso/agrisight-go/internal/geo"
)

// MapboxProvider fetches imagery from the Mapbox static satellite API.
// Requires an access token.
type MapboxProvider struct {
	endpoint    string
	accessToken string
	imageSize   int
}

// NewMapboxProvider creates a new Mapbox static imagery provider
func NewMapboxProvider(settings conf.MapboxSettings) *MapboxProvider {
	size := settings.ImageSize
	if size <= 0 {
		size = 256
	}
	return &MapboxProvider{
		endpoint:    settings.Endpoint,
		accessToken: settings.AccessToken,
		imageSize:   size,
	}
}

// Name implements the Provider interface
func (p *MapboxProvider) Name() string { return "mapbox" }

// Fetch implements the Provider interface for MapboxProvider
func (p *MapboxProvider) Fetch(ctx context.Context, coord geo.Coordinate, zoom int) (*Image, error) {
	if p.accessToken == "" {
		return nil, newImageryError(fmt.Errorf("mapbox access token not configured"),
			errors.CategoryConfiguration, "fetch_static", p.Name())
	}

	// Static API addresses by center point, not tile numbers
	url := fmt.Sprintf("%s/%f,%f,%d,0/%dx%d?access_token=%s",
		p.endpoint, coord.Lon, coord.Lat, zoom, p.imageSize, p.imageSize, p.accessToken)

	client := &http.Client{
		Timeout: RequestTimeout,
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, newImageryError(fmt.Errorf("error creating request: %w", err),
			errors.CategoryImageFetch, "create_request", p.Name())
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, newImageryError(ctx.Err(), errors.CategoryTimeout, "fetch_static", p.Name())
		}
		return nil, newImageryError(fmt.Errorf("error fetching static image: %w", err),
			errors.CategoryNetwork, "fetch_static", p.Name())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, newImageryError(fmt.Errorf("received non-200 response: %d", resp.StatusCode),
			errors.CategoryImageFetch, "fetch_static", p.Name())
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newImageryError(fmt.Errorf("error reading image body: %w", err),
			errors.CategoryImageFetch, "read_body", p.Name())
	}

	return &Image{
		Data:        body,
		ContentType: resp.Header.Get("Content-Type"),
		Coordinate:  coord,
		Zoom:        zoom,
		Provider:    p.Name(),
	}, nil
}
