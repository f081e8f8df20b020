// Package wav records channels into 16-bit mono .wav files using the
// go-audio encoder. A wav Device never declines a buffer; if writing fails,
// the error is reported through WaitReady and Close.
package wav

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/vsariola/chirp"
	"github.com/vsariola/chirp/osc"
)

const (
	bitDepth  = 16
	pcmFormat = 1
)

// Device encodes every accepted buffer into a wav stream.
type Device struct {
	enc    *wav.Encoder
	buf    *audio.IntBuffer
	file   io.Closer // nil when the caller owns the writer
	frames int
	err    error
}

// New writes the wav stream into w. Close finishes the header but does not
// close w.
func New(w io.WriteSeeker) *Device {
	return &Device{
		enc: wav.NewEncoder(w, osc.SampleRate, bitDepth, 1, pcmFormat),
		buf: &audio.IntBuffer{
			Format:         &audio.Format{NumChannels: 1, SampleRate: osc.SampleRate},
			SourceBitDepth: bitDepth,
		},
	}
}

// Create creates the named file and writes the wav stream into it.
func Create(path string) (*Device, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("could not create wav file: %w", err)
	}
	d := New(f)
	d.file = f
	return d, nil
}

// Submit encodes the buffer. It returns false only after a write error,
// which WaitReady then returns.
func (d *Device) Submit(buffer []int8) bool {
	if d.err != nil {
		return false
	}
	d.buf.Data = d.buf.Data[:0]
	for _, v := range buffer {
		d.buf.Data = append(d.buf.Data, int(v)<<8)
	}
	if err := d.enc.Write(d.buf); err != nil {
		d.err = fmt.Errorf("could not write wav data: %w", err)
		return false
	}
	d.frames += len(buffer)
	return true
}

// WaitReady returns immediately: the device is always ready unless writing
// has failed.
func (d *Device) WaitReady(ctx context.Context) error {
	return d.err
}

// Frames returns the number of samples written so far.
func (d *Device) Frames() int {
	return d.frames
}

// Close finalizes the wav header and closes the file, if the device created
// it.
func (d *Device) Close() error {
	err := d.enc.Close()
	if d.file != nil {
		if cerr := d.file.Close(); err == nil {
			err = cerr
		}
	}
	if err != nil {
		return fmt.Errorf("could not close wav file: %w", err)
	}
	return d.err
}

var _ chirp.DeviceCloser = (*Device)(nil)
