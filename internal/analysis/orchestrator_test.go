package analysis

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/mlaakso/agrisight-go/internal/classifier"
	"github.com/mlaakso/agrisight-go/internal/conf"
	"github.com/mlaakso/agrisight-go/internal/errors"
	"github.com/mlaakso/agrisight-go/internal/geo"
	"github.com/mlaakso/agrisight-go/internal/imagery"
	"github.com/mlaakso/agrisight-go/internal/sampling"
)

// stubClassifier implements classifier.Classify with a canned response
// per call, tracking concurrency.
type stubClassifier struct {
	predict   func(coord geo.Coordinate) (*classifier.Prediction, error)
	delay     time.Duration
	inFlight  atomic.Int32
	maxSeen   atomic.Int32
	callCount atomic.Int32
}

func (s *stubClassifier) Classify(ctx context.Context, img *imagery.Image) (*classifier.Prediction, error) {
	s.callCount.Add(1)
	cur := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)
	for {
		seen := s.maxSeen.Load()
		if cur <= seen || s.maxSeen.CompareAndSwap(seen, cur) {
			break
		}
	}

	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.predict == nil {
		return &classifier.Prediction{Label: classifier.LabelForest, Confidence: 0.9}, nil
	}
	return s.predict(img.Coordinate)
}

func testAnalysisSettings(maxConcurrency int, timeout time.Duration) *conf.Settings {
	return &conf.Settings{
		Analysis: conf.AnalysisSettings{
			MaxConcurrency: maxConcurrency,
			SampleTimeout:  timeout,
		},
		Imagery: conf.ImagerySettings{
			Provider: "arcgis",
			CacheTTL: time.Minute,
			Arcgis: conf.ArcgisSettings{
				Endpoint: "https://server.arcgisonline.com/ArcGIS/rest/services/World_Imagery/MapServer",
			},
		},
	}
}

func testImageryService(t *testing.T, settings *conf.Settings) *imagery.Service {
	t.Helper()
	httpmock.Activate()
	t.Cleanup(httpmock.DeactivateAndReset)
	httpmock.RegisterResponder("GET",
		`=~^https://server\.arcgisonline\.com/.*/tile/\d+/\d+/\d+$`,
		httpmock.NewBytesResponder(200, []byte{0x89, 'P', 'N', 'G'}))

	svc, err := imagery.NewService(settings, nil)
	require.NoError(t, err)
	return svc
}

// testPlan spreads samples far enough apart that no two share a tile,
// so the imagery cache does not collapse fetches.
func testPlan(n int) *sampling.Plan {
	samples := make([]geo.Coordinate, n)
	for i := range samples {
		samples[i] = geo.Coordinate{Lat: 40.0 + float64(i)*0.5, Lon: -100.0 + float64(i)*0.5}
	}
	return &sampling.Plan{Mode: sampling.ModePolygon, Zoom: 15, Samples: samples}
}

func TestOrchestratorClassifiesAllSamples(t *testing.T) {
	defer goleak.VerifyNone(t)

	settings := testAnalysisSettings(4, 5*time.Second)
	stub := &stubClassifier{}
	o := NewOrchestrator(settings, testImageryService(t, settings), stub, nil)

	results, err := o.Run(context.Background(), testPlan(10))
	require.NoError(t, err)
	require.Len(t, results, 10)

	for i, r := range results {
		assert.Equal(t, i, r.Index)
		assert.True(t, r.OK(), "sample %d", i)
		assert.Equal(t, classifier.LabelForest, r.Prediction.Label)
	}
	assert.Equal(t, int32(10), stub.callCount.Load())
}

func TestOrchestratorBoundsConcurrency(t *testing.T) {
	defer goleak.VerifyNone(t)

	settings := testAnalysisSettings(3, 5*time.Second)
	stub := &stubClassifier{delay: 20 * time.Millisecond}
	o := NewOrchestrator(settings, testImageryService(t, settings), stub, nil)

	_, err := o.Run(context.Background(), testPlan(12))
	require.NoError(t, err)

	assert.LessOrEqual(t, stub.maxSeen.Load(), int32(3))
}

func TestOrchestratorPartialFailure(t *testing.T) {
	defer goleak.VerifyNone(t)

	settings := testAnalysisSettings(4, 5*time.Second)
	var n atomic.Int32
	stub := &stubClassifier{
		predict: func(coord geo.Coordinate) (*classifier.Prediction, error) {
			if n.Add(1)%2 == 0 {
				return nil, errors.Newf("model unavailable").Build()
			}
			return &classifier.Prediction{Label: classifier.LabelArableLand, Confidence: 0.8}, nil
		},
	}
	o := NewOrchestrator(settings, testImageryService(t, settings), stub, nil)

	results, err := o.Run(context.Background(), testPlan(8))
	require.NoError(t, err)

	ok, failed := 0, 0
	for _, r := range results {
		if r.OK() {
			ok++
		} else {
			failed++
		}
	}
	assert.Equal(t, 4, ok)
	assert.Equal(t, 4, failed)
}

func TestOrchestratorTotalFailure(t *testing.T) {
	defer goleak.VerifyNone(t)

	settings := testAnalysisSettings(4, 5*time.Second)
	stub := &stubClassifier{
		predict: func(coord geo.Coordinate) (*classifier.Prediction, error) {
			return nil, errors.Newf("model unavailable").Build()
		},
	}
	o := NewOrchestrator(settings, testImageryService(t, settings), stub, nil)

	results, err := o.Run(context.Background(), testPlan(5))
	assert.True(t, errors.Is(err, errors.ErrTotalClassificationFailure))
	assert.Len(t, results, 5)
}

func TestOrchestratorSampleTimeout(t *testing.T) {
	defer goleak.VerifyNone(t)

	settings := testAnalysisSettings(4, 30*time.Millisecond)
	stub := &stubClassifier{delay: 5 * time.Second}
	o := NewOrchestrator(settings, testImageryService(t, settings), stub, nil)

	results, err := o.Run(context.Background(), testPlan(3))
	assert.True(t, errors.Is(err, errors.ErrTotalClassificationFailure))
	for _, r := range results {
		assert.False(t, r.OK())
	}
}

func TestOrchestratorThresholdRejectsWeakPredictions(t *testing.T) {
	defer goleak.VerifyNone(t)

	settings := testAnalysisSettings(4, 5*time.Second)
	settings.Analysis.Threshold = 0.5
	var n atomic.Int32
	stub := &stubClassifier{
		predict: func(coord geo.Coordinate) (*classifier.Prediction, error) {
			if n.Add(1) == 1 {
				return &classifier.Prediction{Label: classifier.LabelForest, Confidence: 0.2}, nil
			}
			return &classifier.Prediction{Label: classifier.LabelForest, Confidence: 0.9}, nil
		},
	}
	o := NewOrchestrator(settings, testImageryService(t, settings), stub, nil)

	results, err := o.Run(context.Background(), testPlan(4))
	require.NoError(t, err)

	failed := 0
	for _, r := range results {
		if !r.OK() {
			failed++
		}
	}
	assert.Equal(t, 1, failed)
}

func TestOrchestratorSharedSemaphoreAcrossRequests(t *testing.T) {
	defer goleak.VerifyNone(t)

	settings := testAnalysisSettings(2, 5*time.Second)
	stub := &stubClassifier{delay: 20 * time.Millisecond}
	o := NewOrchestrator(settings, testImageryService(t, settings), stub, nil)

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := o.Run(context.Background(), testPlan(4))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, stub.maxSeen.Load(), int32(2))
}
