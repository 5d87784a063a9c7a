package alerts

import (
	"nexchain_go/internal/domain"
	"nexchain_go/pkg/quant"

	"github.com/shopspring/decimal"
)

// AlertDTO is the persistence-service wire shape for a price alert.
type AlertDTO struct {
	ID          string          `json:"id"`
	OwnerID     string          `json:"owner_id"`
	Symbol      string          `json:"symbol"`
	Target      decimal.Decimal `json:"target"`
	Direction   string          `json:"direction"`
	CreatedAtMS int64           `json:"created_at"`
}

// ToDomain converts a wire alert into an active domain alert. Anything
// the service still stores is considered armed.
func (d *AlertDTO) ToDomain() *domain.AlertConfig {
	a := &domain.AlertConfig{
		ID:           d.ID,
		OwnerID:      d.OwnerID,
		Symbol:       d.Symbol,
		TargetMicros: quant.PriceFromDecimal(d.Target),
		Direction:    d.Direction,
		CreatedUnixM: quant.MillisToTimeStamp(d.CreatedAtMS),
	}
	a.SetActive(true)
	return a
}

// FromDomain converts a domain alert into its wire shape.
func FromDomain(a *domain.AlertConfig) AlertDTO {
	return AlertDTO{
		ID:          a.ID,
		OwnerID:     a.OwnerID,
		Symbol:      a.Symbol,
		Target:      a.TargetMicros.Decimal(),
		Direction:   a.Direction,
		CreatedAtMS: int64(a.CreatedUnixM) / 1000,
	}
}
