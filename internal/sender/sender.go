// Package sender turns constructed events into delivered (or silently
// dropped) outbound requests against the event-collection endpoint.
//
// Delivery is fire-and-forget by contract: SendEvents returns before any
// network activity completes, and every transport failure is caught, logged,
// and discarded. The only errors a caller ever sees are construction-time
// validation failures and use of the unbound package-level facade.
package sender

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/sony/gobreaker/v2"

	"appevents/internal/identity"
	"appevents/internal/types"
)

// DefaultGraphURL is the event-collection API root used when the config
// leaves GraphURL empty.
const DefaultGraphURL = "https://graph.facebook.com/v17.0"

// defaultTimeout bounds a dispatch when the caller supplies no HTTP client.
const defaultTimeout = 10 * time.Second

// gzipThreshold is the body size above which the request is compressed.
const gzipThreshold = 1 << 10

// maxResponseBodyRead limits how much of an error response we read for logs.
const maxResponseBodyRead = 2048

// Config holds everything one Sender instance owns. It is immutable after
// New returns.
type Config struct {
	// AppID and ClientToken authenticate against the collection endpoint as
	// "{appID}|{clientToken}". Both are required.
	AppID       string
	ClientToken types.SecretString

	// GraphURL overrides the API root, e.g. to point at cmd/devsink during
	// development. Defaults to DefaultGraphURL.
	GraphURL string

	// HTTPClient is the transport. Defaults to a client with a 10s timeout;
	// its timeout is the only cancellation semantics applied to a dispatch.
	HTTPClient *http.Client

	// Resolver supplies the advertiser identity per batch. Defaults to the
	// fail-closed identity.Disabled.
	Resolver identity.Resolver

	// App feeds the extinfo request field.
	App AppInfo

	Logger  types.Logger
	Clock   types.Clock
	Metrics DeliveryMetrics
}

// Sender dispatches event batches. Construct with New; the zero value is not
// usable.
type Sender struct {
	cfg     Config
	breaker *gobreaker.CircuitBreaker[*http.Response]
	wg      sync.WaitGroup
}

// New validates the configuration and returns a ready Sender. Empty AppID or
// ClientToken fail immediately with a validation error; nothing is deferred
// to the first send.
func New(cfg Config) (*Sender, error) {
	if strings.TrimSpace(cfg.AppID) == "" {
		return nil, types.NewAppError(types.ErrCodeValidationMissingAppID,
			"app id is required", nil)
	}
	if strings.TrimSpace(cfg.ClientToken.Unmask()) == "" {
		return nil, types.NewAppError(types.ErrCodeValidationMissingClientToken,
			"client token is required", nil)
	}

	if cfg.GraphURL == "" {
		cfg.GraphURL = DefaultGraphURL
	}
	cfg.GraphURL = strings.TrimRight(cfg.GraphURL, "/")
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: defaultTimeout}
	}
	if cfg.Resolver == nil {
		cfg.Resolver = identity.Disabled{}
	}
	if cfg.Logger == nil {
		cfg.Logger = types.NopLogger{}
	}
	if cfg.Clock == nil {
		cfg.Clock = types.RealClock{}
	}
	if cfg.Metrics == nil {
		cfg.Metrics = NopMetrics{}
	}

	breaker := gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:     "app_events",
		Interval: 60 * time.Second,
		Timeout:  30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
	})

	return &Sender{cfg: cfg, breaker: breaker}, nil
}

// SendEvents dispatches the batch as a single outbound request and returns
// immediately. Transport failures, non-2xx responses, and an open circuit
// breaker are all logged and swallowed; the caller never observes delivery
// outcome. An empty batch is a no-op.
//
// Batches from concurrent calls are resolved and dispatched independently
// and may complete in any order.
func (s *Sender) SendEvents(ctx context.Context, batch ...types.Event) {
	if len(batch) == 0 {
		return
	}

	// Detach from the caller's cancellation: the send must outlive the
	// calling scope, bounded only by the HTTP client timeout.
	dispatchCtx := context.WithoutCancel(ctx)
	owned := make([]types.Event, len(batch))
	copy(owned, batch)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.deliver(dispatchCtx, owned)
	}()
}

// Close waits for all in-flight dispatches to finish. Intended for orderly
// shutdown and tests; callers of SendEvents never need it.
func (s *Sender) Close() {
	s.wg.Wait()
}

// deliver resolves identity, assembles the payload, and performs the single
// POST. It never returns an error: every failure path ends in a log entry
// and a metrics datapoint.
func (s *Sender) deliver(ctx context.Context, batch []types.Event) {
	start := s.cfg.Clock.Now()
	logger := s.cfg.Logger.With("batch_size", len(batch))

	advertiser := s.cfg.Resolver.ResolveIdentity(ctx)

	form, err := buildForm(s.cfg.AppID, s.cfg.ClientToken, s.cfg.App, advertiser, batch)
	if err != nil {
		logger.Error("dropping event batch, payload assembly failed",
			"error", err.Error(),
		)
		s.cfg.Metrics.RecordDelivery(ctx, MetricDropped)
		return
	}

	req, err := s.newRequest(ctx, form.Encode())
	if err != nil {
		logger.Error("dropping event batch, request construction failed",
			"error", err.Error(),
		)
		s.cfg.Metrics.RecordDelivery(ctx, MetricDropped)
		return
	}

	resp, err := s.breaker.Execute(func() (*http.Response, error) {
		r, doErr := s.cfg.HTTPClient.Do(req)
		if doErr != nil {
			return nil, doErr
		}
		if r.StatusCode >= 500 {
			// Count server errors against the breaker; the response is
			// still returned for logging below.
			return r, fmt.Errorf("endpoint returned %d", r.StatusCode)
		}
		return r, nil
	})

	if err != nil && resp == nil {
		code := types.ErrCodeTransportRequestFailed
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			code = types.ErrCodeTransportCircuitOpen
		}
		logger.Warn("event batch delivery failed",
			"error_code", string(code),
			"error", err.Error(),
		)
		s.cfg.Metrics.RecordDelivery(ctx, MetricFailed)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodyRead))
		logger.Warn("event batch rejected by endpoint",
			"error_code", string(types.ErrCodeTransportBadStatus),
			"status", resp.StatusCode,
			"body", string(body),
		)
		s.cfg.Metrics.RecordDelivery(ctx, MetricFailed)
		return
	}

	logger.Info("event batch delivered",
		"status", resp.StatusCode,
		"advertiser_tracking_enabled", advertiser.TrackingEnabled,
	)
	s.cfg.Metrics.RecordDelivery(ctx, MetricSuccess)
	s.cfg.Metrics.RecordLatency(ctx, s.cfg.Clock.Now().Sub(start))
}

// newRequest builds the POST, gzip-compressing bodies over the threshold.
func (s *Sender) newRequest(ctx context.Context, body string) (*http.Request, error) {
	endpoint := fmt.Sprintf("%s/%s/activities", s.cfg.GraphURL, s.cfg.AppID)

	var reader io.Reader = strings.NewReader(body)
	compressed := len(body) > gzipThreshold
	if compressed {
		var buf bytes.Buffer
		zw := gzip.NewWriter(&buf)
		if _, err := zw.Write([]byte(body)); err != nil {
			return nil, fmt.Errorf("compress request body: %w", err)
		}
		if err := zw.Close(); err != nil {
			return nil, fmt.Errorf("compress request body: %w", err)
		}
		reader = &buf
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if compressed {
		req.Header.Set("Content-Encoding", "gzip")
	}
	return req, nil
}
