package submission

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"tmsintake/internal/metrics"
	"tmsintake/internal/model"
	"tmsintake/internal/registry"
)

const (
	DefaultEndpoint = "https://api.resend.com/emails"
	DefaultTimeout  = 20 * time.Second

	maxResponseBytes = 1 << 20
)

// Config configures the outbound email call
type Config struct {
	Endpoint    string
	APIKey      string
	FromName    string
	FromAddress string
	To          string
	Timeout     time.Duration
	ClinicName  string
	Source      string
	Location    *time.Location
}

type emailRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
	ReplyTo string   `json:"reply_to,omitempty"`
}

type emailResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"`
	Name    string `json:"name"`
}

type idempotencyKey struct{}

// WithIdempotencyKey attaches a key sent as the Idempotency-Key header so the
// email API drops a duplicate of the same attempt.
func WithIdempotencyKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, idempotencyKey{}, key)
}

// IdempotencyKeyFrom returns the key attached by WithIdempotencyKey
func IdempotencyKeyFrom(ctx context.Context) (string, bool) {
	key, ok := ctx.Value(idempotencyKey{}).(string)
	return key, ok && key != ""
}

// IdempotencyKey derives a key from the session, its fill cycle and the
// submitted values. Retrying unchanged values within one cycle yields the
// same key; a resubmission after a reset does not.
func IdempotencyKey(sessionID string, cycle int, values model.Values) string {
	b, _ := json.Marshal(model.EncodeValues(values))
	h := sha256.New()
	h.Write([]byte(sessionID))
	h.Write([]byte{0})
	h.Write([]byte(strconv.Itoa(cycle)))
	h.Write([]byte{0})
	h.Write(b)
	return sessionID + "-" + hex.EncodeToString(h.Sum(nil))[:32]
}

// Client delivers validated forms as HTML email through a transactional email API
type Client struct {
	cfg        Config
	registry   *registry.Registry
	renderer   *Renderer
	httpClient *http.Client
	metrics    *metrics.Metrics
	log        *zap.Logger
	now        func() time.Time
}

// NewClient creates a submission client
func NewClient(cfg Config, reg *registry.Registry, m *metrics.Metrics, log *zap.Logger) (*Client, error) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if log == nil {
		log = zap.NewNop()
	}

	renderer, err := NewRenderer(cfg.ClinicName, cfg.Source, cfg.Location)
	if err != nil {
		return nil, err
	}

	return &Client{
		cfg:        cfg,
		registry:   reg,
		renderer:   renderer,
		httpClient: &http.Client{},
		metrics:    m,
		log:        log,
		now:        time.Now,
	}, nil
}

// SetHTTPClient replaces the HTTP client used for the outbound call
func (c *Client) SetHTTPClient(h *http.Client) {
	c.httpClient = h
}

// SetClock replaces the clock used for the submission timestamp
func (c *Client) SetClock(now func() time.Time) {
	c.now = now
}

// Renderer exposes the notification renderer
func (c *Client) Renderer() *Renderer {
	return c.renderer
}

// Submit sends values as one email. The caller has already validated them.
// Exactly one HTTP request is made; there is no retry. Every failure is a *Error.
func (c *Client) Submit(ctx context.Context, formType model.FormType, values model.Values) error {
	start := time.Now()
	err := c.submit(ctx, formType, values)

	kind := ""
	var subErr *Error
	if errors.As(err, &subErr) {
		kind = string(subErr.Kind)
	}
	c.metrics.ObserveSubmit(string(formType), kind, time.Since(start))
	return err
}

func (c *Client) submit(ctx context.Context, formType model.FormType, values model.Values) error {
	f, err := c.registry.Lookup(formType)
	if err != nil {
		return &Error{Kind: KindConfig, Err: err}
	}
	if c.cfg.APIKey == "" || c.cfg.To == "" {
		return &Error{Kind: KindConfig, Err: errors.New("email API key or recipient not configured")}
	}

	payload := Payload{FormType: formType, Fields: values.Clone(), GeneratedAt: c.now()}
	html, err := c.renderer.Render(f, payload)
	if err != nil {
		return &Error{Kind: KindRender, Err: err}
	}

	body, err := json.Marshal(emailRequest{
		From:    fmt.Sprintf("%q <%s>", c.cfg.FromName, c.cfg.FromAddress),
		To:      []string{c.cfg.To},
		Subject: Subject(f, payload.Fields),
		HTML:    html,
		ReplyTo: ReplyTo(f, payload.Fields),
	})
	if err != nil {
		return &Error{Kind: KindRender, Err: fmt.Errorf("failed to marshal email: %w", err)}
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return &Error{Kind: KindConfig, Err: fmt.Errorf("failed to build request: %w", err)}
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	if key, ok := IdempotencyKeyFrom(ctx); ok {
		req.Header.Set("Idempotency-Key", key)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		e := classify(ctx, err)
		c.log.Warn("Submission request failed",
			zap.String("form_type", string(formType)),
			zap.String("kind", string(e.Kind)),
			zap.Error(err))
		return e
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return classify(ctx, err)
	}

	var parsed emailResponse
	decodeErr := json.Unmarshal(raw, &parsed)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Warn("Email API rejected submission",
			zap.String("form_type", string(formType)),
			zap.Int("status", resp.StatusCode),
			zap.String("message", parsed.Message))
		return &Error{Kind: KindStatus, StatusCode: resp.StatusCode, Message: parsed.Message}
	}
	if decodeErr != nil {
		return &Error{Kind: KindDecode, StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to decode response: %w", decodeErr)}
	}

	c.log.Info("Submission delivered",
		zap.String("form_type", string(formType)),
		zap.String("email_id", parsed.ID))
	return nil
}

// classify maps a transport error to a failure kind. A cancelled caller
// context wins over the client's own deadline.
func classify(parent context.Context, err error) *Error {
	if perr := parent.Err(); perr != nil {
		if errors.Is(perr, context.DeadlineExceeded) {
			return &Error{Kind: KindTimeout, Err: err}
		}
		return &Error{Kind: KindCancelled, Err: err}
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &Error{Kind: KindTimeout, Err: err}
	}
	return &Error{Kind: KindNetwork, Err: err}
}
