package orders

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"nexchain_go/internal/domain"
	"nexchain_go/pkg/quant"

	"github.com/shopspring/decimal"
)

func TestClient_ListPending(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("method = %s, want GET", r.Method)
		}
		if r.URL.Path != "/orders/u-1" {
			t.Errorf("path = %s, want /orders/u-1", r.URL.Path)
		}
		json.NewEncoder(w).Encode([]OrderDTO{
			{
				ID:         "o-1",
				OwnerID:    "u-1",
				Symbol:     "bitcoin",
				Side:       "sell",
				Category:   "stop_limit",
				StopPrice:  decimal.RequireFromString("58000"),
				LimitPrice: decimal.RequireFromString("57900"),
				Quantity:   decimal.RequireFromString("2"),
				Status:     "pending",
			},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second, 50)
	got, err := client.ListPending(context.Background(), "u-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d orders, want 1", len(got))
	}

	o := got[0]
	if o.ID != "o-1" || o.Side != domain.SideSell || o.Category != domain.CategoryStopLimit {
		t.Errorf("unexpected order: %+v", o)
	}
	if o.StopMicros != 58000*quant.PriceScale {
		t.Errorf("stop = %s, want 58000", o.StopMicros)
	}
	if o.QtySats != 2*quant.QtyScale {
		t.Errorf("qty = %s, want 2", o.QtySats)
	}
}

func TestClient_Execute(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/orders/execute" {
			t.Errorf("%s %s, want POST /orders/execute", r.Method, r.URL.Path)
		}

		var req ExecuteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatal(err)
		}
		if req.OrderID != "o-1" {
			t.Errorf("order_id = %s, want o-1", req.OrderID)
		}
		if !req.CurrentPrice.Equal(decimal.RequireFromString("57990")) {
			t.Errorf("current_price = %s, want 57990", req.CurrentPrice)
		}

		json.NewEncoder(w).Encode(OrderDTO{
			ID:            req.OrderID,
			Status:        "executed",
			ExecutedPrice: req.CurrentPrice,
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second, 50)
	executed, err := client.Execute(context.Background(), "o-1", 57990*quant.PriceScale)
	if err != nil {
		t.Fatal(err)
	}
	if executed.Status != domain.StatusExecuted {
		t.Errorf("status = %s, want executed", executed.Status)
	}
	if executed.ExecutedMicros != 57990*quant.PriceScale {
		t.Errorf("executed price = %s, want 57990", executed.ExecutedMicros)
	}
}

func TestClient_Cancel(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.Method + " " + r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second, 50)
	if err := client.Cancel(context.Background(), "o-9"); err != nil {
		t.Fatal(err)
	}
	if gotPath != "PUT /orders/cancel/o-9" {
		t.Errorf("request = %q, want PUT /orders/cancel/o-9", gotPath)
	}
}

func TestClient_ErrorStatuses(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{"not found", http.StatusNotFound},
		{"conflict", http.StatusConflict},
		{"server error", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, tt.name, tt.status)
			}))
			defer srv.Close()

			client := NewClient(srv.URL, 5*time.Second, 50)
			if err := client.Cancel(context.Background(), "o-1"); err == nil {
				t.Fatalf("expected error for status %d", tt.status)
			}
		})
	}
}

func TestClient_ConfiguredRateSustainsBursts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	// At the configured 200 rps a short burst must clear quickly; a
	// client stuck on a low hardcoded rate would serialize these calls.
	client := NewClient(srv.URL, 5*time.Second, 200)
	start := time.Now()
	for i := 0; i < 8; i++ {
		if err := client.Cancel(context.Background(), "o-1"); err != nil {
			t.Fatal(err)
		}
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("8 calls took %s at 200 rps", elapsed)
	}
}

func TestClient_CircuitOpensAfterRepeatedFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second, 50)
	for i := 0; i < 10; i++ {
		client.Cancel(context.Background(), "o-1")
	}
	if client.breaker.Allow() {
		t.Error("breaker still closed after repeated 5xx responses")
	}
}
