package orders

import (
	"nexchain_go/internal/domain"
	"nexchain_go/pkg/quant"

	"github.com/shopspring/decimal"
)

// OrderDTO is the persistence-service wire shape for an order.
// Prices and quantities travel as decimal strings.
type OrderDTO struct {
	ID            string          `json:"id"`
	OwnerID       string          `json:"owner_id"`
	Symbol        string          `json:"symbol"`
	Side          string          `json:"side"`
	Category      string          `json:"category"`
	LimitPrice    decimal.Decimal `json:"limit_price"`
	StopPrice     decimal.Decimal `json:"stop_price"`
	Quantity      decimal.Decimal `json:"quantity"`
	Status        string          `json:"status"`
	CreatedAtMS   int64           `json:"created_at"`
	ExecutedPrice decimal.Decimal `json:"executed_price"`
}

// ExecuteRequest asks the persistence service to execute a triggered order
// at the price that satisfied its condition.
type ExecuteRequest struct {
	OrderID      string          `json:"order_id"`
	CurrentPrice decimal.Decimal `json:"current_price"`
}

// ToDomain converts a wire order into the domain model.
func (d *OrderDTO) ToDomain() domain.PendingOrder {
	return domain.PendingOrder{
		ID:             d.ID,
		OwnerID:        d.OwnerID,
		Symbol:         d.Symbol,
		Side:           domain.Side(d.Side),
		Category:       domain.Category(d.Category),
		LimitMicros:    quant.PriceFromDecimal(d.LimitPrice),
		StopMicros:     quant.PriceFromDecimal(d.StopPrice),
		QtySats:        quant.QtyFromDecimal(d.Quantity),
		Status:         domain.Status(d.Status),
		CreatedUnixM:   quant.MillisToTimeStamp(d.CreatedAtMS),
		ExecutedMicros: quant.PriceFromDecimal(d.ExecutedPrice),
	}
}

// FromDomain converts a domain order into its wire shape.
func FromDomain(o *domain.PendingOrder) OrderDTO {
	return OrderDTO{
		ID:            o.ID,
		OwnerID:       o.OwnerID,
		Symbol:        o.Symbol,
		Side:          string(o.Side),
		Category:      string(o.Category),
		LimitPrice:    o.LimitMicros.Decimal(),
		StopPrice:     o.StopMicros.Decimal(),
		Quantity:      o.QtySats.Decimal(),
		Status:        string(o.Status),
		CreatedAtMS:   int64(o.CreatedUnixM) / 1000,
		ExecutedPrice: o.ExecutedMicros.Decimal(),
	}
}
