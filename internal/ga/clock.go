package ga

import (
	"context"
	"time"
)

// Clock supplies the current instant for resolving relative datetime
// values. The context carries the caller's execution scope; the compiler
// sets no deadline of its own.
type Clock interface {
	Now(ctx context.Context) time.Time
}

type systemClock struct{}

func (systemClock) Now(context.Context) time.Time { return time.Now() }

// SystemClock returns a Clock backed by time.Now.
func SystemClock() Clock { return systemClock{} }

// FixedClock returns a Clock that always reports t. Intended for tests
// and replayed compilations.
func FixedClock(t time.Time) Clock { return fixedClock{t} }

type fixedClock struct {
	t time.Time
}

func (c fixedClock) Now(context.Context) time.Time { return c.t }
