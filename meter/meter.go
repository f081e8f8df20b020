// Package meter measures the levels of what a channel sends to its device.
package meter

import (
	"context"
	"math"
	"sync"

	"github.com/viterin/vek/vek32"

	"github.com/vsariola/chirp"
)

type (
	// Device passes buffers on to the wrapped device and measures the peak
	// and RMS level of every buffer the wrapped device accepts.
	Device struct {
		next chirp.Device

		mu      sync.Mutex
		peak    float32
		power   float64 // sum of squares
		samples int
		tmp     []float32
		tmp2    []float32
	}

	// Levels are the measured levels, relative to full scale.
	Levels struct {
		Peak    Decibel
		RMS     Decibel
		Samples int
	}

	Decibel float32
)

// Silence is the level reported for no signal at all.
const Silence Decibel = -120

// Wrap returns a metering device in front of next.
func Wrap(next chirp.Device) *Device {
	return &Device{next: next}
}

func (d *Device) Submit(buffer []int8) bool {
	if !d.next.Submit(buffer) {
		return false
	}
	d.measure(buffer)
	return true
}

func (d *Device) WaitReady(ctx context.Context) error {
	return d.next.WaitReady(ctx)
}

// Close closes the wrapped device, if it can be closed.
func (d *Device) Close() error {
	if c, ok := d.next.(chirp.DeviceCloser); ok {
		return c.Close()
	}
	return nil
}

func (d *Device) measure(buffer []int8) {
	if len(buffer) == 0 {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if cap(d.tmp) < len(buffer) {
		d.tmp = make([]float32, len(buffer))
		d.tmp2 = make([]float32, len(buffer))
	}
	x := d.tmp[:len(buffer)]
	for i, v := range buffer {
		x[i] = float32(v) / chirp.MaxVolume
	}
	sq := vek32.Mul_Into(d.tmp2[:len(buffer)], x, x)
	d.power += float64(vek32.Mean(sq)) * float64(len(buffer))
	d.samples += len(buffer)
	vek32.Abs_Inplace(x)
	d.peak = max(d.peak, vek32.Max(x))
}

// Levels returns the levels measured so far.
func (d *Device) Levels() Levels {
	d.mu.Lock()
	defer d.mu.Unlock()
	ret := Levels{Peak: toDecibel(float64(d.peak)), RMS: Silence, Samples: d.samples}
	if d.samples > 0 {
		ret.RMS = toDecibel(math.Sqrt(d.power / float64(d.samples)))
	}
	return ret
}

// Reset forgets the levels measured so far.
func (d *Device) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.peak, d.power, d.samples = 0, 0, 0
}

func toDecibel(amplitude float64) Decibel {
	if amplitude <= 0 {
		return Silence
	}
	return max(Decibel(20*math.Log10(amplitude)), Silence)
}
