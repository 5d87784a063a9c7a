package alerts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"nexchain_go/internal/domain"
	"nexchain_go/internal/infra"
)

// Client talks to the persistence service's alert endpoints.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *infra.RateLimiter
	breaker    *infra.Breaker
}

// NewClient creates an alerts client. timeout bounds every request; rps
// caps the sustained request rate toward the persistence service.
func NewClient(baseURL string, timeout time.Duration, rps float64) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if rps <= 0 {
		rps = 5
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    infra.NewRateLimiter(10, rps),
		breaker:    infra.NewBreaker("alerts-api", infra.BreakerOptions{}),
	}
}

// List fetches a user's armed alerts.
func (c *Client) List(ctx context.Context, ownerID string) ([]*domain.AlertConfig, error) {
	var dtos []AlertDTO
	if err := c.do(ctx, http.MethodGet, "/alerts/"+url.PathEscape(ownerID), nil, &dtos); err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	out := make([]*domain.AlertConfig, 0, len(dtos))
	for i := range dtos {
		out = append(out, dtos[i].ToDomain())
	}
	return out, nil
}

// Delete removes a fired or abandoned alert from the service.
func (c *Client) Delete(ctx context.Context, alertID string) error {
	if err := c.do(ctx, http.MethodDelete, "/alerts/"+url.PathEscape(alertID), nil, nil); err != nil {
		return fmt.Errorf("delete alert %s: %w", alertID, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	if !c.breaker.Allow() {
		return fmt.Errorf("alerts api circuit open")
	}
	c.limiter.Wait()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.breaker.RecordFailure()
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if resp.StatusCode >= 500 {
			c.breaker.RecordFailure()
		} else {
			c.breaker.RecordSuccess()
		}
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}

	c.breaker.RecordSuccess()

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
