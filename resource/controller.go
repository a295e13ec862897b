// Package resource bounds the concurrency and bandwidth of archive
// transfers so bulk snapshot traffic cannot starve the host.
package resource

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Config holds transfer limits.
type Config struct {
	// MaxConcurrentTransfers is the maximum number of archive transfers
	// running at once. If 0, unlimited.
	MaxConcurrentTransfers int64

	// BandwidthBytesPerSec is the maximum combined transfer throughput.
	// If 0, unlimited.
	BandwidthBytesPerSec int64
}

// Controller bounds archive transfer concurrency and bandwidth. A nil
// Controller is valid and enforces nothing.
type Controller struct {
	cfg Config

	// Concurrency
	transferSem *semaphore.Weighted // nil if unlimited
	inFlight    atomic.Int64

	// IO
	ioLimiter *rate.Limiter
	burst     int
}

// NewController creates a transfer controller.
func NewController(cfg Config) *Controller {
	c := &Controller{cfg: cfg}

	if cfg.MaxConcurrentTransfers > 0 {
		c.transferSem = semaphore.NewWeighted(cfg.MaxConcurrentTransfers)
	}

	if cfg.BandwidthBytesPerSec > 0 {
		c.burst = int(cfg.BandwidthBytesPerSec)
		c.ioLimiter = rate.NewLimiter(rate.Limit(cfg.BandwidthBytesPerSec), c.burst)
	}

	return c
}

// AcquireTransfer reserves a transfer slot, blocking until one is free or
// ctx is canceled.
func (c *Controller) AcquireTransfer(ctx context.Context) error {
	if c == nil {
		return nil
	}

	if c.transferSem != nil {
		if err := c.transferSem.Acquire(ctx, 1); err != nil {
			return err
		}
	}

	c.inFlight.Add(1)
	return nil
}

// TryAcquireTransfer reserves a transfer slot without blocking.
func (c *Controller) TryAcquireTransfer() bool {
	if c == nil {
		return true
	}

	if c.transferSem != nil {
		if !c.transferSem.TryAcquire(1) {
			return false
		}
	}

	c.inFlight.Add(1)
	return true
}

// ReleaseTransfer releases a transfer slot.
func (c *Controller) ReleaseTransfer() {
	if c == nil {
		return
	}

	if c.transferSem != nil {
		c.transferSem.Release(1)
	}
	c.inFlight.Add(-1)
}

// InFlight returns the number of transfers currently holding a slot.
func (c *Controller) InFlight() int64 {
	if c == nil {
		return 0
	}
	return c.inFlight.Load()
}

// AcquireIO waits until the bandwidth limit allows n more bytes. Requests
// larger than the burst are charged in burst-sized installments, since the
// limiter cannot reserve past its burst in one call.
func (c *Controller) AcquireIO(ctx context.Context, n int) error {
	if c == nil || c.ioLimiter == nil {
		return nil
	}

	for n > 0 {
		take := n
		if take > c.burst {
			take = c.burst
		}
		if err := c.ioLimiter.WaitN(ctx, take); err != nil {
			return err
		}
		n -= take
	}
	return nil
}

// TryAcquireIO charges n bytes against the bandwidth limit without
// blocking. Returns true if the tokens were available.
func (c *Controller) TryAcquireIO(n int) bool {
	if c == nil || c.ioLimiter == nil {
		return true
	}
	if n <= 0 {
		return true
	}
	return c.ioLimiter.AllowN(time.Now(), n)
}
