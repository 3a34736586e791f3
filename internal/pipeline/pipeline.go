// Package pipeline runs every backend call through one outbound transform
// (credential injection) and one inbound transform (envelope
// classification), then tells observers what happened.
package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/bnema/coffeeviz-cli/internal/domain"
	"github.com/bnema/coffeeviz-cli/internal/envelope"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const (
	DefaultTimeout   = 30 * time.Second
	maxResponseBytes = 1 << 20

	headerAuthorization = "Authorization"
	headerContentType   = "Content-Type"
	contentTypeJSON     = "application/json"
)

// Session is the part of the session holder the pipeline needs.
type Session interface {
	Credential() string
	Invalidate(ctx context.Context) (bool, error)
}

type Pipeline struct {
	baseURL *url.URL
	session Session
	client  *http.Client
	timeout time.Duration
	limiter *rate.Limiter
	logger  *slog.Logger
	newID   func() string

	mu        sync.RWMutex
	observers []Observer
}

type Option func(*Pipeline)

func WithHTTPClient(client *http.Client) Option {
	return func(p *Pipeline) {
		if client != nil {
			p.client = client
		}
	}
}

// WithTimeout overrides the per-call deadline. Non-positive values keep the default.
func WithTimeout(timeout time.Duration) Option {
	return func(p *Pipeline) {
		if timeout > 0 {
			p.timeout = timeout
		}
	}
}

// WithLimiter makes every call wait for a token before it is sent.
func WithLimiter(limiter *rate.Limiter) Option {
	return func(p *Pipeline) {
		p.limiter = limiter
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

func WithObserver(observer Observer) Option {
	return func(p *Pipeline) {
		if observer != nil {
			p.observers = append(p.observers, observer)
		}
	}
}

func New(baseURL string, session Session, opts ...Option) (*Pipeline, error) {
	if session == nil {
		return nil, errors.New("pipeline session is nil")
	}

	parsed, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		baseURL: parsed,
		session: session,
		client:  http.DefaultClient,
		timeout: DefaultTimeout,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(p)
	}

	return p, nil
}

// Subscribe registers an observer for every later call.
func (p *Pipeline) Subscribe(observer Observer) {
	if observer == nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.observers = append(p.observers, observer)
}

// Execute sends req and classifies the outcome. It always returns exactly one
// Result; transport problems are folded into TransportFault.
func (p *Pipeline) Execute(ctx context.Context, req domain.Request) domain.Result {
	callID := p.newID()
	logger := p.logger.With("call_id", callID, "method", req.Method, "path", req.Path)

	started := time.Now()
	result := envelope.Classify(p.roundTrip(ctx, req))
	event := Event{
		CallID:   callID,
		Method:   req.Method,
		Path:     req.Path,
		Result:   result,
		Duration: time.Since(started),
	}

	if result.OK() {
		logger.Debug("request succeeded", "duration", event.Duration)
	} else {
		logger.Debug("request failed", "kind", result.Kind(), "message", result.Failure().Message, "duration", event.Duration)
	}

	if result.Kind() == domain.FailureUnauthorized {
		p.rejectSession(ctx, logger, event)
	}

	event.Kind = EventCompleted
	p.emit(event)

	return result
}

func (p *Pipeline) rejectSession(ctx context.Context, logger *slog.Logger, event Event) {
	ended, err := p.session.Invalidate(context.WithoutCancel(ctx))
	if err != nil {
		logger.Warn("invalidate session", "error", err)
	}
	if !ended {
		return
	}

	logger.Info("credential rejected, session ended")
	event.Kind = EventAuthRejected
	p.emit(event)
}

func (p *Pipeline) emit(event Event) {
	p.mu.RLock()
	observers := append([]Observer(nil), p.observers...)
	p.mu.RUnlock()

	for _, observer := range observers {
		observer.Observe(event)
	}
}

func (p *Pipeline) roundTrip(ctx context.Context, req domain.Request) envelope.Outcome {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return envelope.Outcome{Err: fmt.Errorf("wait for rate limiter: %w", err)}
		}
	}

	httpReq, err := p.newRequest(ctx, req)
	if err != nil {
		return envelope.Outcome{Err: err}
	}

	resp, err := p.client.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return envelope.Outcome{Err: fmt.Errorf("request timed out after %s: %w", p.timeout, err)}
		}
		return envelope.Outcome{Err: fmt.Errorf("perform request: %w", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return envelope.Outcome{Err: fmt.Errorf("read response: %w", err)}
	}

	return envelope.Outcome{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Body:       body,
	}
}

func (p *Pipeline) newRequest(ctx context.Context, req domain.Request) (*http.Request, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	endpoint := p.baseURL.JoinPath(req.Path)
	endpoint.RawQuery = req.Query.Encode()

	var body io.Reader
	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, endpoint.String(), body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	for key, values := range req.Header {
		for _, value := range values {
			httpReq.Header.Add(key, value)
		}
	}
	httpReq.Header.Set(headerContentType, contentTypeJSON)
	if credential := p.session.Credential(); credential != "" {
		httpReq.Header.Set(headerAuthorization, credential)
	}

	return httpReq, nil
}

func parseBaseURL(baseURL string) (*url.URL, error) {
	if baseURL == "" {
		return nil, errors.New("api base url is required")
	}

	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse api base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, errors.New("api base url must use http or https")
	}
	if parsed.Host == "" {
		return nil, errors.New("api base url host is required")
	}

	return parsed, nil
}
