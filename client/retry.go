package client

import (
	"context"
	"time"
)

// RetryPolicy — ограниченный повтор операции. OnExhausted зовется один раз,
// когда попытки кончились; последняя ошибка возвращается как есть.
type RetryPolicy struct {
	MaxAttempts int
	Delay       time.Duration
	OnExhausted func(err error)
}

func (p RetryPolicy) Do(ctx context.Context, op func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for i := 0; i < attempts; i++ {
		if err = op(ctx); err == nil {
			return nil
		}

		if i == attempts-1 {
			break
		}

		if p.Delay > 0 {
			select {
			case <-time.After(p.Delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		} else if ctx.Err() != nil {
			return ctx.Err()
		}
	}

	if p.OnExhausted != nil {
		p.OnExhausted(err)
	}
	return err
}
