package orders

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
	"nexchain_go/pkg/quant"
)

// Client talks to the persistence service's order endpoints.
// A shared rate limiter smooths poll bursts; a circuit breaker fails
// fast while the service is down so each cycle degrades to a logged
// error instead of a hanging call.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *infra.RateLimiter
	breaker    *infra.Breaker
}

// NewClient creates an orders client. timeout bounds every request; rps
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
		breaker:    infra.NewBreaker("orders-api", infra.BreakerOptions{}),
	}
}

// ListPending fetches the pending orders for a user.
func (c *Client) ListPending(ctx context.Context, ownerID string) ([]domain.PendingOrder, error) {
	var dtos []OrderDTO
	err := c.do(ctx, http.MethodGet, "/orders/"+url.PathEscape(ownerID), nil, &dtos)
	if err != nil {
		return nil, fmt.Errorf("list pending orders: %w", err)
	}

	out := make([]domain.PendingOrder, 0, len(dtos))
	for i := range dtos {
		out = append(out, dtos[i].ToDomain())
	}
	return out, nil
}

// Execute requests execution of a triggered order at the current price.
func (c *Client) Execute(ctx context.Context, orderID string, price quant.PriceMicros) (*domain.PendingOrder, error) {
	req := ExecuteRequest{OrderID: orderID, CurrentPrice: price.Decimal()}

	var dto OrderDTO
	if err := c.do(ctx, http.MethodPost, "/orders/execute", req, &dto); err != nil {
		return nil, fmt.Errorf("execute order %s: %w", orderID, err)
	}

	order := dto.ToDomain()
	return &order, nil
}

// Cancel requests cancellation of a pending order.
func (c *Client) Cancel(ctx context.Context, orderID string) error {
	if err := c.do(ctx, http.MethodPut, "/orders/cancel/"+url.PathEscape(orderID), nil, nil); err != nil {
		return fmt.Errorf("cancel order %s: %w", orderID, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	if !c.breaker.Allow() {
		return fmt.Errorf("orders api circuit open")
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
		// 4xx is the caller's problem, not a service outage
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
