package service

import (
	"time"

	"confidential-chat-be/internal/pkg/apperror"
)

// Clock returns the current instant. Services store what it returns, so
// tests drive expiry by swapping it.
type Clock func() time.Time

func SystemClock() time.Time {
	return time.Now().UTC()
}

func utcClock(c Clock) Clock {
	if c == nil {
		return SystemClock
	}
	return func() time.Time { return c().UTC() }
}

// storeErr passes AppErrors through and wraps anything else coming from the
// persistence layer.
func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := apperror.KindOf(err); ok {
		return err
	}
	return apperror.StoreUnavailable(op, err)
}
