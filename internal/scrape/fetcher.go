package scrape

//go:generate mockgen -source=fetcher.go -destination=mocks/mock_fetcher.go -package=mocks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/vmunix/kinocat/internal/metrics"
)

const (
	defaultTimeout   = 15 * time.Second
	defaultUserAgent = "kinocat/1.0 (+https://github.com/vmunix/kinocat)"
	maxPageSize      = 8 << 20
	breakerName      = "kino-site"
)

// Fetcher retrieves the body of a page.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// HTTPFetcher is the production Fetcher. It never retries; a run of
// consecutive failures opens its circuit breaker and later fetches fail
// fast until the breaker half-opens.
type HTTPFetcher struct {
	httpClient *http.Client
	userAgent  string
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker[[]byte]
	timeout    time.Duration
	failures   uint32
	logger     *slog.Logger
}

// FetcherOption configures an HTTPFetcher.
type FetcherOption func(*HTTPFetcher)

// WithHTTPClient replaces the default client.
func WithHTTPClient(hc *http.Client) FetcherOption {
	return func(f *HTTPFetcher) { f.httpClient = hc }
}

// WithTimeout bounds each request. A client given with WithHTTPClient is
// copied, not modified.
func WithTimeout(d time.Duration) FetcherOption {
	return func(f *HTTPFetcher) {
		if d > 0 {
			f.timeout = d
		}
	}
}

func WithUserAgent(ua string) FetcherOption {
	return func(f *HTTPFetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithRateLimit caps outgoing requests per second. Zero disables the limit.
func WithRateLimit(perSecond float64) FetcherOption {
	return func(f *HTTPFetcher) {
		if perSecond > 0 {
			burst := int(perSecond)
			if burst < 1 {
				burst = 1
			}
			f.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
		}
	}
}

// WithBreakerFailures sets how many consecutive failures open the breaker.
// Zero disables the breaker.
func WithBreakerFailures(n uint32) FetcherOption {
	return func(f *HTTPFetcher) { f.failures = n }
}

func WithFetcherLogger(l *slog.Logger) FetcherOption {
	return func(f *HTTPFetcher) { f.logger = l }
}

// NewHTTPFetcher builds an HTTPFetcher with a 15s timeout and a breaker
// that opens after 5 consecutive failures.
func NewHTTPFetcher(opts ...FetcherOption) *HTTPFetcher {
	f := &HTTPFetcher{
		httpClient: &http.Client{Timeout: defaultTimeout},
		userAgent:  defaultUserAgent,
		failures:   5,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.timeout > 0 && f.httpClient.Timeout != f.timeout {
		hc := *f.httpClient
		hc.Timeout = f.timeout
		f.httpClient = &hc
	}
	f.logger = f.logger.With("component", "fetcher")

	if f.failures > 0 {
		threshold := f.failures
		metrics.BreakerState.WithLabelValues(breakerName).Set(0)
		f.breaker = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
			Name:        breakerName,
			MaxRequests: 1,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(c gobreaker.Counts) bool {
				return c.ConsecutiveFailures >= threshold
			},
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, context.Canceled)
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				f.logger.Warn("breaker state change", "from", from.String(), "to", to.String())
				metrics.BreakerState.WithLabelValues(name).Set(float64(to))
			},
		})
	}
	return f
}

// Fetch GETs url and returns its body. Any non-2xx status is a *FetchError
// carrying the code; transport failures are a *FetchError wrapping the cause.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if f.breaker == nil {
		return f.get(ctx, url)
	}
	body, err := f.breaker.Execute(func() ([]byte, error) {
		return f.get(ctx, url)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		metrics.FetchTotal.WithLabelValues("rejected").Inc()
		return nil, &FetchError{URL: url, Err: err}
	}
	return body, err
}

func (f *HTTPFetcher) get(ctx context.Context, url string) ([]byte, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, &FetchError{URL: url, Err: err}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html")

	start := time.Now()
	resp, err := f.httpClient.Do(req)
	metrics.FetchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.FetchTotal.WithLabelValues("transport_error").Inc()
		return nil, &FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.FetchTotal.WithLabelValues("http_error").Inc()
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return nil, &FetchError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageSize))
	if err != nil {
		metrics.FetchTotal.WithLabelValues("transport_error").Inc()
		return nil, &FetchError{URL: url, Err: fmt.Errorf("read body: %w", err)}
	}
	metrics.FetchTotal.WithLabelValues("ok").Inc()
	f.logger.Debug("fetched", "url", url, "bytes", len(body), "duration_ms", time.Since(start).Milliseconds())
	return body, nil
}
