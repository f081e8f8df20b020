// Package player plays compiled songs: every channel runs in its own
// goroutine, rendering its notes and handing the samples to its device in
// chunks, waiting whenever the device is busy.
package player

import (
	"context"
	"fmt"

	"github.com/vsariola/chirp"
	"github.com/vsariola/chirp/osc"
)

// ChunkSize is the size of the buffers handed to devices. Only the last
// buffer of a channel can be shorter.
const ChunkSize = 4096

type (
	// Channel plays the instructions of one channel on one device. It owns
	// all its state; nothing is shared with other channels.
	Channel struct {
		index  int
		instrs []chirp.Instruction
		device chirp.Device
		state  channelState
	}

	channelState struct {
		volume  int
		osc     osc.Oscillator
		buffer  []int8 // pending samples, never more than ChunkSize
		scratch []int8 // samples of the note being rendered
		stats   Stats
	}

	// Stats counts what happened during the playback of a channel.
	Stats struct {
		Samples int // samples delivered to the device
		Chunks  int // buffers accepted by the device
		Busy    int // times the device declined a buffer
	}
)

// NewChannel returns a player for the compiled instructions of the channel
// with the given 1-based index.
func NewChannel(index int, instrs []chirp.Instruction, device chirp.Device) *Channel {
	return &Channel{index: index, instrs: instrs, device: device}
}

// Stats returns the counters of the last Play.
func (c *Channel) Stats() Stats { return c.state.stats }

// Play walks the instructions from the start and returns when the last
// sample has been accepted by the device. The volume starts at
// chirp.DefaultVolume. The only place Play blocks is waiting for a busy
// device; if ctx is cancelled there, Play returns the context error.
func (c *Channel) Play(ctx context.Context) error {
	c.state = channelState{
		volume: chirp.DefaultVolume,
		buffer: make([]int8, 0, ChunkSize),
	}
	s := &c.state
	for _, ins := range c.instrs {
		if ins.Kind == chirp.SetVolume {
			s.volume = ins.Volume.Volume
			continue
		}
		s.scratch = s.osc.Render(s.scratch[:0], ins.Note, s.volume)
		if err := c.write(ctx, s.scratch); err != nil {
			return err
		}
	}
	return c.flush(ctx)
}

// write appends samples to the buffer, flushing every time it fills up.
func (c *Channel) write(ctx context.Context, samples []int8) error {
	s := &c.state
	for len(samples) > 0 {
		n := copy(s.buffer[len(s.buffer):ChunkSize], samples)
		s.buffer = s.buffer[:len(s.buffer)+n]
		samples = samples[n:]
		if len(s.buffer) == ChunkSize {
			if err := c.flush(ctx); err != nil {
				return err
			}
		}
	}
	return nil
}

// flush submits the buffer until the device takes it. An empty buffer is
// never submitted.
func (c *Channel) flush(ctx context.Context) error {
	s := &c.state
	if len(s.buffer) == 0 {
		return nil
	}
	for !c.device.Submit(s.buffer) {
		s.stats.Busy++
		if err := c.device.WaitReady(ctx); err != nil {
			return fmt.Errorf("channel %d: waiting for device: %w", c.index, err)
		}
	}
	s.stats.Samples += len(s.buffer)
	s.stats.Chunks++
	s.buffer = s.buffer[:0]
	return nil
}
