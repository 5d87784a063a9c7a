package domain

import (
	"fmt"

	"nexchain_go/pkg/quant"
)

// Side is the direction of an order.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// Category is the conditional order type.
type Category string

const (
	CategoryLimit      Category = "limit"
	CategoryStopLimit  Category = "stop_limit"
	CategoryStopMarket Category = "stop_market"
)

// Status is the lifecycle state of an order. An order transitions
// pending -> executed or pending -> cancelled exactly once.
type Status string

const (
	StatusPending   Status = "pending"
	StatusExecuted  Status = "executed"
	StatusCancelled Status = "cancelled"
)

// PendingOrder is a conditional buy/sell instruction awaiting a trigger
// price. Owned by the persistence service; clients hold read-only copies
// and mutate status only through execute/cancel calls.
type PendingOrder struct {
	ID             string            `json:"id"`
	OwnerID        string            `json:"owner_id"`
	Symbol         string            `json:"symbol"`
	Side           Side              `json:"side"`
	Category       Category          `json:"category"`
	LimitMicros    quant.PriceMicros `json:"limit_price"`
	StopMicros     quant.PriceMicros `json:"stop_price"`
	QtySats        quant.QtySats     `json:"quantity"`
	Status         Status            `json:"status"`
	CreatedUnixM   quant.TimeStamp   `json:"created_at"`
	ExecutedMicros quant.PriceMicros `json:"executed_price,omitempty"`
}

// IsPending reports whether the order is still awaiting its trigger.
func (o *PendingOrder) IsPending() bool {
	return o.Status == StatusPending
}

// TriggerKind is the closed set of trigger conditions. It is resolved
// once per order so evaluation never branches on raw category/side strings.
type TriggerKind uint8

const (
	TriggerLimitBuy TriggerKind = iota + 1
	TriggerLimitSell
	TriggerStopBuy
	TriggerStopSell
)

func (k TriggerKind) String() string {
	switch k {
	case TriggerLimitBuy:
		return "limit-buy"
	case TriggerLimitSell:
		return "limit-sell"
	case TriggerStopBuy:
		return "stop-buy"
	case TriggerStopSell:
		return "stop-sell"
	default:
		return "unknown"
	}
}

// ResolveTrigger maps an order's category/side pair onto its TriggerKind.
func ResolveTrigger(o *PendingOrder) (TriggerKind, error) {
	switch o.Category {
	case CategoryLimit:
		switch o.Side {
		case SideBuy:
			return TriggerLimitBuy, nil
		case SideSell:
			return TriggerLimitSell, nil
		}
	case CategoryStopLimit, CategoryStopMarket:
		switch o.Side {
		case SideBuy:
			return TriggerStopBuy, nil
		case SideSell:
			return TriggerStopSell, nil
		}
	}
	return 0, fmt.Errorf("unresolvable trigger: category=%q side=%q", o.Category, o.Side)
}

// Satisfied applies the trigger rule against the current price.
// All comparisons are inclusive at the boundary.
func (k TriggerKind) Satisfied(o *PendingOrder, price quant.PriceMicros) bool {
	switch k {
	case TriggerLimitBuy:
		return price <= o.LimitMicros
	case TriggerLimitSell:
		return price >= o.LimitMicros
	case TriggerStopBuy:
		return price >= o.StopMicros
	case TriggerStopSell:
		return price <= o.StopMicros
	default:
		return false
	}
}

// Validate checks the fields a newly submitted order must carry.
func (o *PendingOrder) Validate() error {
	if o.Symbol == "" {
		return fmt.Errorf("order: symbol is required")
	}
	if o.QtySats <= 0 {
		return fmt.Errorf("order: quantity must be positive")
	}
	if _, err := ResolveTrigger(o); err != nil {
		return err
	}
	switch o.Category {
	case CategoryLimit:
		if o.LimitMicros <= 0 {
			return fmt.Errorf("order: limit price must be positive")
		}
	case CategoryStopLimit:
		if o.StopMicros <= 0 || o.LimitMicros <= 0 {
			return fmt.Errorf("order: stop and limit prices must be positive")
		}
	case CategoryStopMarket:
		if o.StopMicros <= 0 {
			return fmt.Errorf("order: stop price must be positive")
		}
	}
	return nil
}
