package domain

import "nexchain_go/pkg/quant"

// AlertConfig represents a one-shot price alert. Unlike orders, an alert
// carries no execution side; it fires once, notifies, and is deleted.
type AlertConfig struct {
	ID           string            `json:"id"`
	OwnerID      string            `json:"owner_id"`
	Symbol       string            `json:"symbol"`
	TargetMicros quant.PriceMicros `json:"target"`
	Direction    string            `json:"direction"` // "UP" or "DOWN"
	CreatedUnixM quant.TimeStamp   `json:"created_at"`
	active       bool
}

// NewAlertConfig creates an alert, inferring direction from the current price.
func NewAlertConfig(ownerID, symbol string, targetMicros, currentMicros quant.PriceMicros) *AlertConfig {
	direction := "UP"
	if targetMicros < currentMicros {
		direction = "DOWN"
	}
	return &AlertConfig{
		OwnerID:      ownerID,
		Symbol:       symbol,
		TargetMicros: targetMicros,
		Direction:    direction,
		active:       true,
	}
}

// IsActive returns whether the alert is active
func (a *AlertConfig) IsActive() bool {
	return a.active
}

// SetActive sets the alert's active state
func (a *AlertConfig) SetActive(active bool) {
	a.active = active
}

// CheckCondition checks if alert condition is met.
func (a *AlertConfig) CheckCondition(currentMicros quant.PriceMicros) bool {
	if !a.active {
		return false
	}
	switch a.Direction {
	case "UP":
		return currentMicros >= a.TargetMicros
	case "DOWN":
		return currentMicros <= a.TargetMicros
	default:
		return false
	}
}
