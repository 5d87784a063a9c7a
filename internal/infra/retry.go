package infra

import "time"

const defaultReconnectDelay = 3 * time.Second

// ReconnectPolicy is the fixed-delay, retry-forever policy used for the
// feed connection. There is intentionally no exponential growth and no
// retry cap: the connection is expected to always come back, and a stale
// table is the accepted failure mode while it does not.
type ReconnectPolicy struct {
	Delay time.Duration
}

// NextDelay returns the wait before the given reconnect attempt.
// The retry count is accepted for interface symmetry; the delay is flat.
func (p ReconnectPolicy) NextDelay(retry int) time.Duration {
	if p.Delay <= 0 {
		return defaultReconnectDelay
	}
	return p.Delay
}
