package imagery

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mlaakso/agrisight-go/internal/conf"
	"github.com/mlaakso/agrisight-go/internal/errors"
	"github.com/mlaakso/agrisight-go/internal/geo"
)

// ArcgisProvider fetches tiles from the ArcGIS World Imagery tile service.
// The service is keyless, which makes it the default provider.
type ArcgisProvider struct {
	endpoint string
}

// NewArcgisProvider creates a new ArcGIS World Imagery provider
func NewArcgisProvider(settings conf.ArcgisSettings) *ArcgisProvider {
	return &ArcgisProvider{endpoint: settings.Endpoint}
}

// Name implements the Provider interface
func (p *ArcgisProvider) Name() string { return "arcgis" }

// Fetch implements the Provider interface for ArcgisProvider
func (p *ArcgisProvider) Fetch(ctx context.Context, coord geo.Coordinate, zoom int) (*Image, error) {
	x, y := tileXY(coord, zoom)
	url := fmt.Sprintf("%s/tile/%d/%d/%d", p.endpoint, zoom, y, x)

	client := &http.Client{
		Timeout: RequestTimeout,
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, newImageryError(fmt.Errorf("error creating request: %w", err),
			errors.CategoryImageFetch, "create_request", p.Name())
	}
	req.Header.Set("User-Agent", UserAgent)

	var body []byte
	var contentType string
	for i := 0; i < MaxRetries; i++ {
		resp, err := client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, newImageryError(ctx.Err(), errors.CategoryTimeout, "fetch_tile", p.Name())
			}
			if i == MaxRetries-1 {
				return nil, newImageryError(fmt.Errorf("error fetching tile: %w", err),
					errors.CategoryNetwork, "fetch_tile", p.Name())
			}
			time.Sleep(RetryDelay)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			if i == MaxRetries-1 {
				return nil, newImageryError(fmt.Errorf("received non-200 response: %d", resp.StatusCode),
					errors.CategoryImageFetch, "fetch_tile", p.Name())
			}
			time.Sleep(RetryDelay)
			continue
		}

		body, err = io.ReadAll(resp.Body)
		contentType = resp.Header.Get("Content-Type")
		resp.Body.Close()
		if err != nil {
			return nil, newImageryError(fmt.Errorf("error reading tile body: %w", err),
				errors.CategoryImageFetch, "read_body", p.Name())
		}
		break
	}

	if len(body) == 0 {
		return nil, newImageryError(fmt.Errorf("empty tile response"),
			errors.CategoryImageFetch, "fetch_tile", p.Name())
	}

	return &Image{
		Data:        body,
		ContentType: contentType,
		Coordinate:  coord,
		Zoom:        zoom,
		Provider:    p.Name(),
	}, nil
}
