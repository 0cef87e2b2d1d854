package circuitbreaker

import (
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"
)

// ErrOpen is returned while the breaker rejects calls.
var ErrOpen = errors.New("circuit breaker is open")

type Settings struct {
	Name        string
	MaxRequests uint32
	Interval    time.Duration
	Timeout     time.Duration
	// Failures is the number of consecutive failures that opens the breaker.
	Failures uint32
	// IsSuccessful decides whether a returned error counts against the breaker.
	IsSuccessful func(err error) bool
}

func DefaultSettings(name string) Settings {
	return Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		Failures:    5,
	}
}

type Breaker struct {
	cb *gobreaker.CircuitBreaker[struct{}]
}

func New(s Settings, log *slog.Logger) *Breaker {
	if log == nil {
		log = slog.Default()
	}
	st := gobreaker.Settings{
		Name:        s.Name,
		MaxRequests: s.MaxRequests,
		Interval:    s.Interval,
		Timeout:     s.Timeout,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= s.Failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
		IsSuccessful: s.IsSuccessful,
	}
	return &Breaker{cb: gobreaker.NewCircuitBreaker[struct{}](st)}
}

// Do runs fn through the breaker.
func (b *Breaker) Do(fn func() error) error {
	_, err := b.cb.Execute(func() (struct{}, error) {
		return struct{}{}, fn()
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return ErrOpen
	}
	return err
}

func (b *Breaker) State() string {
	return b.cb.State().String()
}
