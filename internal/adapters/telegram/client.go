// Package telegram is the chat adapter: a Bot API client, the message handler
// and the long-polling loop.
package telegram

import (
	"bytes"
	"context"
	crand "crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"travel_planner/internal/adapters/observability"
)

// MaxMessageLen is the Bot API limit for one text message.
const MaxMessageLen = 4096

var (
	ErrUnauthorized = errors.New("telegram: unauthorized")
	ErrForbidden    = errors.New("telegram: forbidden")
	ErrNotFound     = errors.New("telegram: not found")
	ErrConflict     = errors.New("telegram: conflict")
)

// APIError is a non-retryable Bot API failure.
type APIError struct {
	Method      string
	Code        int
	Description string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram %s: %d %s", e.Method, e.Code, e.Description)
}

type Client struct {
	base string // https://api.telegram.org/bot<token>
	hc   *http.Client
	rl   *rate.Limiter
}

// New builds a Bot API client. rps caps outbound calls per second.
func New(base, token string, rps int) (*Client, error) {
	if token == "" {
		return nil, fmt.Errorf("bot token is required")
	}
	if rps <= 0 {
		rps = 25
	}
	return &Client{
		base: strings.TrimRight(base, "/") + "/bot" + token,
		// must outlive the longest getUpdates long-poll
		hc: &http.Client{Timeout: 75 * time.Second},
		rl: rate.NewLimiter(rate.Limit(rps), rps),
	}, nil
}

// ---- Public API ----

func (c *Client) GetMe(ctx context.Context) (User, error) {
	var u User
	return u, c.call(ctx, "getMe", nil, &u)
}

// DeleteWebhook removes any webhook so getUpdates can be used.
func (c *Client) DeleteWebhook(ctx context.Context) error {
	var ok bool
	return c.call(ctx, "deleteWebhook", nil, &ok)
}

// GetUpdates long-polls for updates with update_id >= offset.
func (c *Client) GetUpdates(ctx context.Context, offset, timeoutSec int) ([]Update, error) {
	var out []Update
	req := getUpdatesRequest{Offset: offset, Timeout: timeoutSec, AllowedUpdates: []string{"message"}}
	return out, c.call(ctx, "getUpdates", req, &out)
}

// SendMessage sends text, truncated to MaxMessageLen runes.
func (c *Client) SendMessage(ctx context.Context, req SendMessageRequest) (Message, error) {
	if r := []rune(req.Text); len(r) > MaxMessageLen {
		req.Text = string(r[:MaxMessageLen])
	}
	var m Message
	return m, c.call(ctx, "sendMessage", req, &m)
}

// ---- Internals ----

// call POSTs a JSON payload with client-side rate limiting per attempt and
// retries on 429 and transient 5xx, honoring retry_after when provided.
func (c *Client) call(ctx context.Context, method string, payload, out any) error {
	var body []byte
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("telegram %s: encode: %w", method, err)
		}
		body = b
	}

	var lastErr error
	for i := 0; i < 4; i++ {
		// every attempt, retries included, spends a limiter token
		if err := c.rl.Wait(ctx); err != nil {
			return err
		}
		// build a fresh request each attempt
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/"+method, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")

		start := time.Now()
		resp, err := c.hc.Do(req)
		if err != nil {
			observability.ObserveExternal("telegram", method, 0, time.Since(start))
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = fmt.Errorf("telegram %s: %w", method, err)
			if i < 3 && sleepCtx(ctx, backoff(i)) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr
		}

		env, derr := decodeEnvelope(resp)
		observability.ObserveExternal("telegram", method, resp.StatusCode, time.Since(start))

		switch {
		case resp.StatusCode == http.StatusOK && derr == nil && env.OK:
			if out == nil || len(env.Result) == 0 {
				return nil
			}
			return json.Unmarshal(env.Result, out)

		case resp.StatusCode == http.StatusUnauthorized:
			return ErrUnauthorized
		case resp.StatusCode == http.StatusForbidden:
			return fmt.Errorf("%w: %s", ErrForbidden, env.Description)
		case resp.StatusCode == http.StatusNotFound:
			return ErrNotFound
		case resp.StatusCode == http.StatusConflict:
			return fmt.Errorf("%w: %s", ErrConflict, env.Description)

		case resp.StatusCode == http.StatusTooManyRequests, resp.StatusCode >= 500:
			wait := retryAfter(resp, env)
			if wait == 0 {
				wait = backoff(i)
			}
			lastErr = fmt.Errorf("telegram %s: remote %d", method, resp.StatusCode)
			if i < 3 && sleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr

		case derr != nil:
			return fmt.Errorf("telegram %s: status %d: %w", method, resp.StatusCode, derr)

		default:
			code := env.ErrorCode
			if code == 0 {
				code = resp.StatusCode
			}
			return &APIError{Method: method, Code: code, Description: env.Description}
		}
	}

	return lastErr
}

// decodeEnvelope reads and closes the body. Error bodies are small; cap them.
func decodeEnvelope(resp *http.Response) (apiResponse, error) {
	defer resp.Body.Close()
	var env apiResponse
	r := io.Reader(resp.Body)
	if resp.StatusCode != http.StatusOK {
		r = io.LimitReader(resp.Body, 4096)
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return env, err
	}
	if len(b) == 0 {
		return env, errors.New("empty body")
	}
	return env, json.Unmarshal(b, &env)
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter prefers the API's parameters.retry_after, then the Retry-After
// header. Returns 0 if neither is usable.
func retryAfter(resp *http.Response, env apiResponse) time.Duration {
	if env.Parameters != nil && env.Parameters.RetryAfter > 0 {
		return time.Duration(env.Parameters.RetryAfter) * time.Second
	}
	h := strings.TrimSpace(resp.Header.Get("Retry-After"))
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(h); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff returns 200ms doubled per attempt plus up to 50% jitter.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 200 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	return base + time.Duration(0.5*f*float64(base))
}
