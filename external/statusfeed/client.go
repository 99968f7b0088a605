// Package statusfeed fetches the scraped player-status-change table. The
// feed serves datatable-style JSON: a single aaData array whose rows are
// positional string columns.
package statusfeed

import (
	"context"
	stderrors "errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"
	"github.com/valyala/fasthttp"

	"github.com/riskibarqy/fpl-pipeline/internal/platform/logging"
	"github.com/riskibarqy/fpl-pipeline/internal/platform/resilience"
	"github.com/riskibarqy/fpl-pipeline/internal/usecase"
)

// Positional columns of one aaData row.
const (
	colPlayerName = iota
	colPlayerID
	colStatusDate
	colProbability
	colStatus
	colNews
	columnCount
)

var errFeedTransient = crerr.New("status feed transient failure")

type ClientConfig struct {
	URL            string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

type Client struct {
	httpClient     *fasthttp.Client
	url            string
	timeout        time.Duration
	maxRetries     int
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight
}

var _ usecase.StatusProvider = (*Client)(nil)

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}

	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient: &fasthttp.Client{
			ReadTimeout:  timeout,
			WriteTimeout: timeout,
		},
		url:            strings.TrimSpace(cfg.URL),
		timeout:        timeout,
		maxRetries:     maxInt(cfg.MaxRetries, 0),
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

type feedEnvelope struct {
	AaData [][]string `json:"aaData"`
}

func (c *Client) FetchStatusChanges(ctx context.Context) ([]usecase.RawStatusRecord, error) {
	if c.url == "" {
		return nil, fmt.Errorf("status feed url is not configured")
	}

	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "status feed circuit breaker rejected request", "state", c.breaker.State())
			return nil, fmt.Errorf("%w: status feed is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	out, err, _ := c.flight.Do(c.url, func() (any, error) {
		envelope, reqErr := c.fetchFeed(ctx)
		if c.circuitEnabled {
			if reqErr != nil && stderrors.Is(reqErr, errFeedTransient) {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return envelope, reqErr
	})
	if err != nil {
		return nil, err
	}

	envelope, ok := out.(feedEnvelope)
	if !ok {
		return nil, fmt.Errorf("unexpected feed payload type %T", out)
	}

	return mapFeedRows(envelope.AaData), nil
}

func (c *Client) fetchFeed(ctx context.Context) (feedEnvelope, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return feedEnvelope{}, err
		}

		envelope, err := c.requestOnce()
		if err == nil {
			return envelope, nil
		}
		lastErr = err
		if !stderrors.Is(err, errFeedTransient) {
			break
		}

		if attempt == c.maxRetries {
			break
		}
		backoff := time.Duration(attempt+1) * time.Second
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return feedEnvelope{}, ctx.Err()
		case <-timer.C:
		}
	}

	c.logger.WarnContext(ctx, "status feed request failed", "url", c.url, "error", lastErr)
	return feedEnvelope{}, lastErr
}

func (c *Client) requestOnce() (feedEnvelope, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.url)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("accept", "application/json")

	if err := c.httpClient.DoTimeout(req, resp, c.timeout); err != nil {
		return feedEnvelope{}, fmt.Errorf("%w: send request: %v", errFeedTransient, err)
	}

	status := resp.StatusCode()
	if status < 200 || status >= 300 {
		if status == fasthttp.StatusTooManyRequests || status >= fasthttp.StatusInternalServerError {
			return feedEnvelope{}, fmt.Errorf("%w: feed status=%d", errFeedTransient, status)
		}
		return feedEnvelope{}, fmt.Errorf("feed status=%d", status)
	}

	// The response buffer goes back to fasthttp's pool on release, so the
	// body is copied out before decoding.
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	_, _ = buf.Write(resp.Body())

	var envelope feedEnvelope
	if err := sonic.Unmarshal(buf.Bytes(), &envelope); err != nil {
		return feedEnvelope{}, fmt.Errorf("decode feed payload: %w", err)
	}

	return envelope, nil
}

// mapFeedRows converts positional rows into raw records. Short rows and
// unparsable player ids produce records that the pipeline counts as
// malformed rather than dropping silently here.
func mapFeedRows(rows [][]string) []usecase.RawStatusRecord {
	out := make([]usecase.RawStatusRecord, 0, len(rows))
	for _, row := range rows {
		if len(row) < columnCount {
			out = append(out, usecase.RawStatusRecord{})
			continue
		}

		playerID, _ := strconv.ParseInt(strings.TrimSpace(row[colPlayerID]), 10, 64)
		out = append(out, usecase.RawStatusRecord{
			PlayerID:    playerID,
			PlayerName:  row[colPlayerName],
			RawDate:     row[colStatusDate],
			Probability: row[colProbability],
			Status:      row[colStatus],
			News:        row[colNews],
		})
	}
	return out
}

func maxInt(left, right int) int {
	if left > right {
		return left
	}
	return right
}
