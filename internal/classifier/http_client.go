package classifier

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"slices"

	"github.com/sony/gobreaker/v2"

	"github.com/mlaakso/agrisight-go/internal/conf"
	"github.com/mlaakso/agrisight-go/internal/errors"
	"github.com/mlaakso/agrisight-go/internal/imagery"
	"github.com/mlaakso/agrisight-go/internal/logging"
)

var classifierLogger *slog.Logger

func init() {
	var err error
	classifierLogger, _, err = logging.NewFileLogger("logs/classifier.log", "classifier", slog.LevelInfo)
	if err != nil {
		fbHandler := slog.NewJSONHandler(io.Discard, nil)
		classifierLogger = slog.New(fbHandler).With("service", "classifier")
	}
}

// classifyRequest is the wire format sent to the inference endpoint.
type classifyRequest struct {
	Image string `json:"image"` // base64 encoded image bytes
	Zoom  int    `json:"zoom,omitempty"`
}

// classifyResponse is the wire format returned by the inference endpoint.
type classifyResponse struct {
	Label         string             `json:"label"`
	Confidence    float64            `json:"confidence"`
	Probabilities map[string]float64 `json:"probabilities"`
}

// HTTPClassifier calls a remote inference service. The classifier is the
// flakiest collaborator in the pipeline, so calls run through a circuit
// breaker: once the failure ratio trips it, samples fail fast instead of
// stacking timeouts.
type HTTPClassifier struct {
	endpoint string
	client   *http.Client
	breaker  *gobreaker.CircuitBreaker[*Prediction]
}

// NewHTTPClassifier creates a classifier client from settings.
func NewHTTPClassifier(settings conf.ClassifierSettings) *HTTPClassifier {
	breakerSettings := gobreaker.Settings{
		Name:        "classifier",
		MaxRequests: settings.Breaker.MaxRequests,
		Interval:    settings.Breaker.Interval,
		Timeout:     settings.Breaker.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < settings.Breaker.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= settings.Breaker.FailureRate
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			classifierLogger.Warn("circuit breaker state change",
				"breaker", name, "from", from.String(), "to", to.String())
		},
	}

	return &HTTPClassifier{
		endpoint: settings.Endpoint,
		client:   &http.Client{Timeout: settings.Timeout},
		breaker:  gobreaker.NewCircuitBreaker[*Prediction](breakerSettings),
	}
}

// BreakerState reports the circuit breaker state ("closed", "half-open"
// or "open"). Open means the inference endpoint is currently failing.
func (c *HTTPClassifier) BreakerState() string {
	return c.breaker.State().String()
}

// Classify implements the Classifier interface.
func (c *HTTPClassifier) Classify(ctx context.Context, img *imagery.Image) (*Prediction, error) {
	prediction, err := c.breaker.Execute(func() (*Prediction, error) {
		return c.classify(ctx, img)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, errors.New(err).
				Component("classifier").
				Category(errors.CategoryClassification).
				Context("reason", "circuit breaker open").
				Build()
		}
		return nil, err
	}
	return prediction, nil
}

func (c *HTTPClassifier) classify(ctx context.Context, img *imagery.Image) (*Prediction, error) {
	payload, err := json.Marshal(classifyRequest{
		Image: base64.StdEncoding.EncodeToString(img.Data),
		Zoom:  img.Zoom,
	})
	if err != nil {
		return nil, errors.New(fmt.Errorf("error encoding classify request: %w", err)).
			Component("classifier").
			Category(errors.CategoryClassification).
			Build()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, errors.New(fmt.Errorf("error creating request: %w", err)).
			Component("classifier").
			Category(errors.CategoryClassification).
			Build()
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		category := errors.CategoryNetwork
		if ctx.Err() != nil {
			category = errors.CategoryTimeout
		}
		return nil, errors.New(fmt.Errorf("error calling inference endpoint: %w", err)).
			Component("classifier").
			Category(category).
			NetworkContext(c.endpoint, c.client.Timeout).
			Build()
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Newf("inference endpoint returned status %d", resp.StatusCode).
			Component("classifier").
			Category(errors.CategoryClassification).
			Context("status", resp.StatusCode).
			Build()
	}

	var decoded classifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, errors.New(fmt.Errorf("error decoding inference response: %w", err)).
			Component("classifier").
			Category(errors.CategoryClassification).
			Build()
	}

	if decoded.Label == "" {
		return nil, errors.Newf("inference response missing label").
			Component("classifier").
			Category(errors.CategoryClassification).
			Build()
	}
	if !slices.Contains(KnownLabels, decoded.Label) {
		return nil, errors.Newf("inference returned unlisted label %q", decoded.Label).
			Component("classifier").
			Category(errors.CategoryValidation).
			Context("label", decoded.Label).
			Build()
	}
	if decoded.Confidence < 0 || decoded.Confidence > 1 {
		return nil, errors.Newf("inference confidence %f outside [0,1]", decoded.Confidence).
			Component("classifier").
			Category(errors.CategoryValidation).
			Context("label", decoded.Label).
			Build()
	}

	return &Prediction{
		Label:         decoded.Label,
		Confidence:    decoded.Confidence,
		Probabilities: decoded.Probabilities,
	}, nil
}
