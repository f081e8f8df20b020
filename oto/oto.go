// Package oto plays channels live through the ebitengine/oto audio library.
// Every channel gets its own oto player; oto mixes them.
package oto

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/vsariola/chirp"
	"github.com/vsariola/chirp/osc"
	"github.com/vsariola/chirp/player"
)

type (
	// Context wraps the oto context. oto allows only one context per process.
	Context struct {
		ctx *oto.Context
	}

	// Device is a chirp.Device feeding one oto player from a bounded queue.
	// Submit declines buffers while the queue is full; the oto player drains
	// the queue from its own goroutine and signals readiness.
	Device struct {
		player   *oto.Player
		mu       sync.Mutex
		queue    bytes.Buffer
		capacity int // in bytes
		draining bool
		ready    chan struct{}
		closed   chan struct{}
		once     sync.Once
	}
)

// DefaultQueueChunks is the number of player chunks a device queues before it
// starts declining.
const DefaultQueueChunks = 2

var errClosed = errors.New("oto device closed")

// NewContext opens the audio output at the chirp sample rate, mono, 16-bit.
func NewContext() (*Context, error) {
	op := &oto.NewContextOptions{
		SampleRate:   osc.SampleRate,
		ChannelCount: 1,
		Format:       oto.FormatSignedInt16LE,
	}
	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("cannot create oto context: %w", err)
	}
	<-ready
	return &Context{ctx: ctx}, nil
}

// NewDevice creates a device queueing at most queueChunks chunks of
// player.ChunkSize samples, and starts its oto player.
func (c *Context) NewDevice(queueChunks int) *Device {
	d := newDevice(queueChunks)
	d.player = c.ctx.NewPlayer(d)
	d.player.Play()
	return d
}

func newDevice(queueChunks int) *Device {
	if queueChunks < 1 {
		queueChunks = DefaultQueueChunks
	}
	return &Device{
		capacity: queueChunks * player.ChunkSize * 2,
		ready:    make(chan struct{}, 1),
		closed:   make(chan struct{}),
	}
}

// Submit queues the buffer, or returns false if the queue has no room for
// it. An empty queue always takes the buffer.
func (d *Device) Submit(buffer []int8) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	select {
	case <-d.closed:
		return false
	default:
	}
	if d.queue.Len() > 0 && d.queue.Len()+2*len(buffer) > d.capacity {
		return false
	}
	d.queue.Write(Int8BufferTo16BitLE(d.queue.AvailableBuffer(), buffer))
	return true
}

// WaitReady waits until the oto player has consumed some of the queue.
func (d *Device) WaitReady(ctx context.Context) error {
	select {
	case <-d.ready:
		return nil
	case <-d.closed:
		return errClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Read implements io.Reader for the oto player. When the queue runs dry, it
// outputs silence instead of blocking the audio thread, unless the device is
// draining, in which case the player is told the stream has ended.
func (d *Device) Read(p []byte) (int, error) {
	d.mu.Lock()
	n, _ := d.queue.Read(p)
	draining := d.draining
	d.mu.Unlock()
	if n > 0 {
		select {
		case d.ready <- struct{}{}:
		default:
		}
	}
	if draining {
		if n == 0 {
			return 0, io.EOF
		}
		return n, nil
	}
	clear(p[n:])
	return len(p), nil
}

// Drain waits until everything queued has been played. The device should
// not be submitted to after Drain.
func (d *Device) Drain(ctx context.Context) error {
	d.mu.Lock()
	d.draining = true
	d.mu.Unlock()
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for d.player.IsPlaying() {
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Close stops the player; a WaitReady in progress returns an error.
func (d *Device) Close() error {
	var err error
	d.once.Do(func() {
		close(d.closed)
		if cerr := d.player.Close(); cerr != nil {
			err = fmt.Errorf("cannot close oto player: %w", cerr)
		}
	})
	return err
}

var _ chirp.DeviceCloser = (*Device)(nil)
