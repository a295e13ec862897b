package resource

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestController_Transfers(t *testing.T) {
	c := NewController(Config{MaxConcurrentTransfers: 2})

	require.NoError(t, c.AcquireTransfer(context.Background()))
	require.NoError(t, c.AcquireTransfer(context.Background()))
	assert.Equal(t, int64(2), c.InFlight())

	// Third slot is unavailable
	assert.False(t, c.TryAcquireTransfer())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := c.AcquireTransfer(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	c.ReleaseTransfer()
	assert.Equal(t, int64(1), c.InFlight())

	assert.True(t, c.TryAcquireTransfer())
	assert.Equal(t, int64(2), c.InFlight())
}

func TestController_UnlimitedTransfers(t *testing.T) {
	c := NewController(Config{})

	for i := 0; i < 10; i++ {
		require.NoError(t, c.AcquireTransfer(context.Background()))
	}
	assert.Equal(t, int64(10), c.InFlight())
	assert.True(t, c.TryAcquireTransfer())

	for i := 0; i < 11; i++ {
		c.ReleaseTransfer()
	}
	assert.Equal(t, int64(0), c.InFlight())
}

func TestController_IO(t *testing.T) {
	c := NewController(Config{BandwidthBytesPerSec: 1000})
	ctx := context.Background()

	// Small acquire
	err := c.AcquireIO(ctx, 100)
	assert.NoError(t, err)

	// Unlimited
	c2 := NewController(Config{})
	err = c2.AcquireIO(ctx, 1000000)
	assert.NoError(t, err)
}

func TestController_IOBeyondBurst(t *testing.T) {
	// A single WaitN cannot exceed the burst, so an oversized acquire
	// must be split into installments to succeed at all.
	c := NewController(Config{BandwidthBytesPerSec: 100000})

	err := c.AcquireIO(context.Background(), 100001)
	assert.NoError(t, err)
}

func TestController_IOCanceled(t *testing.T) {
	c := NewController(Config{BandwidthBytesPerSec: 10})

	// Drain the bucket so the next acquire has to wait
	require.NoError(t, c.AcquireIO(context.Background(), 10))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := c.AcquireIO(ctx, 10)
	assert.Error(t, err)
}

func TestController_TryAcquireIO(t *testing.T) {
	c := NewController(Config{BandwidthBytesPerSec: 1000})
	assert.True(t, c.TryAcquireIO(100))

	c2 := NewController(Config{})
	assert.True(t, c2.TryAcquireIO(1000000))
}

func TestController_NilSafe(t *testing.T) {
	var c *Controller

	assert.NoError(t, c.AcquireTransfer(context.Background()))
	assert.True(t, c.TryAcquireTransfer())
	c.ReleaseTransfer()
	assert.Equal(t, int64(0), c.InFlight())

	assert.NoError(t, c.AcquireIO(context.Background(), 100))
	assert.True(t, c.TryAcquireIO(100))
}

func TestRateLimitedWriter(t *testing.T) {
	c := NewController(Config{BandwidthBytesPerSec: 10000})
	ctx := context.Background()

	var buf bytes.Buffer
	w := NewRateLimitedWriter(ctx, &buf, c)

	n, err := w.Write([]byte("hello"))
	assert.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, "hello", buf.String())
}

func TestRateLimitedWriter_Seek(t *testing.T) {
	c := NewController(Config{})
	ctx := context.Background()

	var buf bytes.Buffer
	w := NewRateLimitedWriter(ctx, &buf, c)

	// bytes.Buffer is not a seeker
	_, err := w.Seek(0, 0)
	assert.Error(t, err)
}

func TestRateLimitedReader(t *testing.T) {
	c := NewController(Config{BandwidthBytesPerSec: 10000})
	ctx := context.Background()

	data := bytes.NewReader([]byte("hello world"))
	r := NewRateLimitedReader(ctx, data, c)

	buf := make([]byte, 5)
	n, err := r.Read(buf)
	assert.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, "hello", string(buf))
}

func TestRateLimitedReader_ContextCanceled(t *testing.T) {
	c := NewController(Config{BandwidthBytesPerSec: 1}) // Very slow
	ctx, cancel := context.WithCancel(context.Background())
	cancel() // Cancel immediately

	data := bytes.NewReader([]byte("hello world"))
	r := NewRateLimitedReader(ctx, data, c)

	buf := make([]byte, 1000)
	_, err := r.Read(buf)
	assert.Error(t, err)
}
