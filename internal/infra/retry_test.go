package infra

import (
	"testing"
	"time"
)

func TestReconnectPolicy_NextDelay(t *testing.T) {
	p := ReconnectPolicy{Delay: 3 * time.Second}

	// Flat delay regardless of how many attempts failed
	for _, retry := range []int{0, 1, 5, 100} {
		if got := p.NextDelay(retry); got != 3*time.Second {
			t.Errorf("NextDelay(%d) = %s, want 3s", retry, got)
		}
	}
}

func TestReconnectPolicy_ZeroDelayFallsBack(t *testing.T) {
	var p ReconnectPolicy
	if got := p.NextDelay(0); got != defaultReconnectDelay {
		t.Errorf("NextDelay(0) = %s, want %s", got, defaultReconnectDelay)
	}
}
