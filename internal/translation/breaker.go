package translation

import (
	"context"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
)

// BreakerCompleter fails fast once the wrapped completer has failed
// maxFailures times in a row. The breaker half-opens again after cooldown.
type BreakerCompleter struct {
	next Completer
	cb   *gobreaker.CircuitBreaker
}

// NewBreakerCompleter wraps next in a circuit breaker
func NewBreakerCompleter(name string, next Completer, maxFailures uint32, cooldown time.Duration) *BreakerCompleter {
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			fmt.Printf("Endpoint %s: %s -> %s\n", name, from, to)
		},
	}

	return &BreakerCompleter{
		next: next,
		cb:   gobreaker.NewCircuitBreaker(settings),
	}
}

// Complete forwards to the wrapped completer unless the breaker is open.
// An open breaker yields gobreaker.ErrOpenState.
func (b *BreakerCompleter) Complete(ctx context.Context, systemPrompt, prompt string) (string, error) {
	out, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.Complete(ctx, systemPrompt, prompt)
	})
	if err != nil {
		return "", err
	}
	return out.(string), nil
}

// State reports the breaker state
func (b *BreakerCompleter) State() gobreaker.State {
	return b.cb.State()
}
