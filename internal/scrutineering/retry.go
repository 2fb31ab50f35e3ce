package scrutineering

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryPolicy — ограниченные повторы записи с экспоненциальной задержкой.
// Attempts включает первую попытку; между попытками BaseDelay, удвоение.
type RetryPolicy struct {
	Attempts  int
	BaseDelay time.Duration
}

// DefaultRetryPolicy — 3 попытки, задержки 1s и 2s.
var DefaultRetryPolicy = RetryPolicy{Attempts: 3, BaseDelay: time.Second}

// IsPermanent — ошибки, которые нельзя ретраить: отказ запроса как такового.
// Таймаут отдельного обращения к хранилищу сюда не входит, он
// эквивалентен неудачной попытке.
func IsPermanent(err error) bool {
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrIllegalTransition) ||
		errors.Is(err, ErrIncomplete) ||
		errors.Is(err, ErrBookingNotOngoing)
}

// Run выполняет op до Attempts раз. Постоянные ошибки прерывают повторы
// сразу и возвращаются как есть; отмена ctx вызывающим прекращает повторы;
// после исчерпания возвращается ErrExhaustedRetries с последней ошибкой
// в цепочке.
func (p RetryPolicy) Run(ctx context.Context, op func() error) error {
	attempts := p.Attempts
	if attempts <= 0 {
		attempts = 1
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.BaseDelay
	b.RandomizationFactor = 0
	b.Multiplier = 2
	b.MaxElapsedTime = 0

	wrapped := func() error {
		err := op()
		if err != nil && IsPermanent(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	err := backoff.Retry(wrapped, backoff.WithContext(backoff.WithMaxRetries(b, uint64(attempts-1)), ctx))
	if err == nil {
		return nil
	}
	if IsPermanent(err) {
		return err
	}
	if ctx.Err() != nil {
		// Вызывающий отменил последовательность повторов.
		return err
	}
	return fmt.Errorf("%w after %d attempts: %w", ErrExhaustedRetries, attempts, err)
}
