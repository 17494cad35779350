package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/Sternrassler/serpapi-go/pkg/params"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Request fully describes one outbound call.
type Request struct {
	Path    string
	Params  params.Bag
	Timeout time.Duration
}

// Execute issues a GET for path with the given parameters and the source tag
// appended. The call is cancelled when timeout elapses before the response
// headers arrive. The response is returned as is; decoding the body and
// interpreting the status code are left to the caller, who must close the body.
//
// Timeouts fail with a *RequestError matching ErrRequestTimeout, cancellation
// of ctx with one matching ErrRequestAborted. Transport errors are returned
// unchanged.
func (c *Client) Execute(ctx context.Context, path string, p params.Bag, timeout time.Duration) (*http.Response, error) {
	return c.Do(ctx, Request{Path: path, Params: p, Timeout: timeout})
}

// Do executes a request. See Execute.
func (c *Client) Do(ctx context.Context, r Request) (*http.Response, error) {
	if r.Timeout <= 0 {
		errorsTotal.WithLabelValues(string(ErrorClassValidation)).Inc()
		return nil, ErrInvalidTimeout
	}

	logger := c.logger.With().
		Str("request_id", uuid.NewString()).
		Str("path", r.Path).
		Logger()

	bag := r.Params.With("source", c.source)
	rawURL := c.BuildURL(r.Path, bag)

	parent := ctx
	ctx, cancel := context.WithCancel(parent)

	// The timer and the response race; whichever settles first decides the
	// outcome. A response disarms the timer, a fired timer aborts the request.
	var timedOut atomic.Bool
	timer := time.AfterFunc(r.Timeout, func() {
		timedOut.Store(true)
		logger.Warn().Dur("timeout", r.Timeout).Msg("Request timed out")
		cancel()
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		timer.Stop()
		cancel()
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")

	logger.Debug().
		Object("params", bag).
		Dur("timeout", r.Timeout).
		Msg("Executing request")

	startTime := time.Now()
	resp, err := c.httpClient.Do(req)
	requestDuration.WithLabelValues(r.Path).Observe(time.Since(startTime).Seconds())

	if err != nil {
		timer.Stop()
		cancel()
		return nil, c.failure(logger, parent, r, timedOut.Load(), err)
	}

	if !timer.Stop() {
		// The timer fired while the response was being returned.
		resp.Body.Close()
		cancel()
		return nil, c.failure(logger, parent, r, true, context.Canceled)
	}

	// The request context must outlive Do so the body stays readable.
	resp.Body = &cancelOnClose{ReadCloser: resp.Body, cancel: cancel}

	requestsTotal.WithLabelValues(r.Path, strconv.Itoa(resp.StatusCode)).Inc()
	logger.Debug().
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(startTime)).
		Msg("Request completed")

	return resp, nil
}

// failure converts a failed Do into the error returned to the caller.
func (c *Client) failure(logger zerolog.Logger, parent context.Context, r Request, timedOut bool, err error) error {
	switch {
	case timedOut:
		requestsTotal.WithLabelValues(r.Path, "timeout").Inc()
		errorsTotal.WithLabelValues(string(ErrorClassTimeout)).Inc()
		return &RequestError{Class: ErrorClassTimeout, Path: r.Path, Timeout: r.Timeout, Err: err}

	case parent.Err() != nil:
		requestsTotal.WithLabelValues(r.Path, "aborted").Inc()
		errorsTotal.WithLabelValues(string(ErrorClassAborted)).Inc()
		logger.Debug().Err(parent.Err()).Msg("Request aborted by caller")
		return &RequestError{Class: ErrorClassAborted, Path: r.Path, Err: err}

	default:
		requestsTotal.WithLabelValues(r.Path, "transport_error").Inc()
		errorsTotal.WithLabelValues(string(ErrorClassTransport)).Inc()
		logger.Error().Err(err).Msg("HTTP request failed")
		return err
	}
}

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (b *cancelOnClose) Close() error {
	err := b.ReadCloser.Close()
	b.cancel()
	return err
}
