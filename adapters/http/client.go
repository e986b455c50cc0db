// Package http delivers asynchronous results to caller-supplied callback URLs
// over either net/http or fasthttp, guarded by a circuit breaker.
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/abhissng/chargehub/adapters/log"
	"github.com/abhissng/chargehub/blame"
	appctx "github.com/abhissng/chargehub/context"
	"github.com/abhissng/chargehub/ports"
	"github.com/abhissng/chargehub/utils/circuitBreaker"
	"github.com/abhissng/chargehub/utils/constant"
	"github.com/sony/gobreaker"
	"github.com/valyala/fasthttp"
)

// HTTPClient defines the interface for HTTP client implementations.
// It abstracts the HTTP client to support both standard and FastHTTP clients.
type HTTPClient interface {
	Do(ctx context.Context, target string, body []byte, headers map[string]string) (int, []byte, error)
}

// ErrUnexpectedStatus is returned when the callback answers outside 2xx.
var ErrUnexpectedStatus = errors.New("unexpected callback status")

// stdHTTPClient implements HTTPClient using the standard net/http package.
type stdHTTPClient struct {
	client *http.Client
}

// Do executes a POST using the standard net/http client.
func (c *stdHTTPClient) Do(ctx context.Context, target string, body []byte, headers map[string]string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", ContentTypeJSON.String())
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	//#nosec G704
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return resp.StatusCode, respBody, err
}

// fastHTTPClient implements HTTPClient using the valyala/fasthttp package.
type fastHTTPClient struct {
	client  *fasthttp.Client
	timeout time.Duration
}

// Do executes a POST using the FastHTTP client. The deadline of ctx, when
// earlier than the configured timeout, bounds the request.
func (c *fastHTTPClient) Do(ctx context.Context, target string, body []byte, headers map[string]string) (int, []byte, error) {
	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(target)
	req.Header.SetMethod(MethodPost)
	req.Header.SetContentType(ContentTypeJSON.String())
	req.SetBody(body)
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	if err := c.client.DoTimeout(req, resp, timeout); err != nil {
		return 0, nil, err
	}

	respBody := resp.Body()
	if len(respBody) > maxErrorBody {
		respBody = respBody[:maxErrorBody]
	}
	return resp.StatusCode(), append([]byte(nil), respBody...), nil
}

// CallbackClient POSTs JSON payloads to callback URLs.
type CallbackClient struct {
	log            *log.Log
	timeout        time.Duration
	headers        map[string]string
	useFastHTTP    bool
	breakerOptions []circuitBreaker.CircuitBreakerOption

	client  HTTPClient
	breaker *gobreaker.CircuitBreaker
}

var _ ports.CallbackClient = (*CallbackClient)(nil)

// NewCallbackClient builds a client; net/http is used unless WithFastHTTP is given.
func NewCallbackClient(opts ...Option) *CallbackClient {
	c := &CallbackClient{
		log:     log.NewNop(),
		timeout: DefaultTimeout,
		headers: make(map[string]string),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.useFastHTTP {
		c.client = &fastHTTPClient{client: &fasthttp.Client{}, timeout: c.timeout}
	} else {
		c.client = &stdHTTPClient{client: &http.Client{Timeout: c.timeout}}
	}

	breakerOptions := append([]circuitBreaker.CircuitBreakerOption{
		circuitBreaker.WithName(DefaultBreakerName),
		circuitBreaker.WithOnStateChange(func(name string, from, to gobreaker.State) {
			c.log.Warn("callback breaker state changed",
				log.String("breaker", name),
				log.String("from", from.String()),
				log.String("to", to.String()),
			)
		}),
	}, c.breakerOptions...)
	c.breaker = circuitBreaker.NewCircuitBreaker(breakerOptions...)
	return c
}

// UsesFastHTTP reports which implementation the client runs on.
func (c *CallbackClient) UsesFastHTTP() bool {
	return c.useFastHTTP
}

// Deliver encodes payload as JSON and POSTs it to target.
func (c *CallbackClient) Deliver(ctx context.Context, target string, payload any) error {
	if err := ValidateURL(target); err != nil {
		return blame.CallbackDeliveryError(target, err)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return blame.CallbackDeliveryError(target, err)
	}

	headers := make(map[string]string, len(c.headers)+1)
	for k, v := range c.headers {
		headers[k] = v
	}
	if id, ok := appctx.CorrelationID(ctx); ok {
		headers[constant.CorrelationIDHeader] = id.String()
	}

	started := time.Now()
	_, err = c.breaker.Execute(func() (any, error) {
		status, respBody, err := c.client.Do(ctx, target, body, headers)
		if err != nil {
			return nil, err
		}
		if status < http.StatusOK || status >= http.StatusMultipleChoices {
			return nil, fmt.Errorf("%w %d: %s", ErrUnexpectedStatus, status, respBody)
		}
		return nil, nil
	})
	if err != nil {
		appctx.Logger(ctx, c.log).Error(constant.CallbackFailed,
			log.String("url", target),
			log.Duration("elapsed", time.Since(started)),
			log.Err(err),
		)
		return blame.CallbackDeliveryError(target, err)
	}

	c.log.Debug(constant.CallbackDelivered,
		log.String("url", target),
		log.Duration("elapsed", time.Since(started)),
	)
	return nil
}

// ValidateURL accepts absolute http and https URLs only.
func ValidateURL(raw string) error {
	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("missing host")
	}
	return nil
}
