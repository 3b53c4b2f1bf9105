package classifier

import (
	"context"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlaakso/agrisight-go/internal/conf"
	"github.com/mlaakso/agrisight-go/internal/geo"
	"github.com/mlaakso/agrisight-go/internal/imagery"
)

const testEndpoint = "http://model.local/api/classify"

func testClassifierSettings(opts ...func(*conf.ClassifierSettings)) conf.ClassifierSettings {
	settings := conf.ClassifierSettings{
		Endpoint: testEndpoint,
		Timeout:  5 * time.Second,
		Breaker: conf.BreakerSettings{
			MaxRequests: 1,
			Interval:    time.Minute,
			Timeout:     time.Minute,
			MinRequests: 3,
			FailureRate: 0.6,
		},
	}
	for _, opt := range opts {
		opt(&settings)
	}
	return settings
}

func testImage() *imagery.Image {
	return &imagery.Image{
		Data:       []byte{0x89, 'P', 'N', 'G'},
		Coordinate: geo.Coordinate{Lat: 52.1, Lon: 13.4},
		Zoom:       16,
		Provider:   "arcgis",
	}
}

func TestHTTPClassifierSuccess(t *testing.T) {
	httpmock.Activate()
	t.Cleanup(httpmock.DeactivateAndReset)

	httpmock.RegisterResponder("POST", testEndpoint,
		httpmock.NewJsonResponderOrPanic(200, map[string]any{
			"label":      LabelArableLand,
			"confidence": 0.93,
			"probabilities": map[string]float64{
				LabelArableLand: 0.93,
				LabelGrassland:  0.05,
			},
		}))

	c := NewHTTPClassifier(testClassifierSettings())

	pred, err := c.Classify(context.Background(), testImage())
	require.NoError(t, err)
	assert.Equal(t, LabelArableLand, pred.Label)
	assert.InDelta(t, 0.93, pred.Confidence, 1e-9)
	assert.InDelta(t, 0.05, pred.Probabilities[LabelGrassland], 1e-9)
}

func TestHTTPClassifierServerError(t *testing.T) {
	httpmock.Activate()
	t.Cleanup(httpmock.DeactivateAndReset)

	httpmock.RegisterResponder("POST", testEndpoint,
		httpmock.NewStringResponder(500, "model crashed"))

	c := NewHTTPClassifier(testClassifierSettings())

	_, err := c.Classify(context.Background(), testImage())
	assert.Error(t, err)
}

func TestHTTPClassifierRejectsMissingLabel(t *testing.T) {
	httpmock.Activate()
	t.Cleanup(httpmock.DeactivateAndReset)

	httpmock.RegisterResponder("POST", testEndpoint,
		httpmock.NewJsonResponderOrPanic(200, map[string]any{"confidence": 0.9}))

	c := NewHTTPClassifier(testClassifierSettings())

	_, err := c.Classify(context.Background(), testImage())
	assert.Error(t, err)
}

func TestHTTPClassifierRejectsUnlistedLabel(t *testing.T) {
	httpmock.Activate()
	t.Cleanup(httpmock.DeactivateAndReset)

	for _, label := range []string{LabelUnknown, "Desert"} {
		httpmock.RegisterResponder("POST", testEndpoint,
			httpmock.NewJsonResponderOrPanic(200, map[string]any{
				"label":      label,
				"confidence": 0.9,
			}))

		c := NewHTTPClassifier(testClassifierSettings())

		_, err := c.Classify(context.Background(), testImage())
		require.Error(t, err, label)
		assert.ErrorContains(t, err, "unlisted label")
	}
}

func TestHTTPClassifierRejectsBadConfidence(t *testing.T) {
	httpmock.Activate()
	t.Cleanup(httpmock.DeactivateAndReset)

	httpmock.RegisterResponder("POST", testEndpoint,
		httpmock.NewJsonResponderOrPanic(200, map[string]any{
			"label":      LabelForest,
			"confidence": 1.7,
		}))

	c := NewHTTPClassifier(testClassifierSettings())

	_, err := c.Classify(context.Background(), testImage())
	assert.Error(t, err)
}

func TestHTTPClassifierBreakerTrips(t *testing.T) {
	httpmock.Activate()
	t.Cleanup(httpmock.DeactivateAndReset)

	httpmock.RegisterResponder("POST", testEndpoint,
		httpmock.NewStringResponder(503, "unavailable"))

	c := NewHTTPClassifier(testClassifierSettings())

	// Enough consecutive failures to trip the breaker
	for range 5 {
		_, err := c.Classify(context.Background(), testImage())
		require.Error(t, err)
	}

	calls := httpmock.GetTotalCallCount()
	_, err := c.Classify(context.Background(), testImage())
	require.Error(t, err)
	// Breaker open: the last call never reached the endpoint
	assert.Equal(t, calls, httpmock.GetTotalCallCount())
}
