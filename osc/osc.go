// Package osc generates the PCM samples of the chirp waveforms: square and
// sine waves from phase accumulators, and noise from a 16-bit linear feedback
// shift register. All generators run at the fixed SampleRate and produce
// signed 8-bit samples; volumes are given in the range [0,127].
package osc

import (
	"fmt"
	"math"

	"github.com/vsariola/chirp"
)

// SampleRate is the sample rate of every generator, in Hz.
const SampleRate = 48000

// SampleCount converts a duration in seconds into a number of samples,
// floor(SampleRate * duration). Negative durations give zero and durations
// beyond chirp.MaxDuration are capped to it.
func SampleCount(duration float64) int {
	n := math.Floor(SampleRate * min(duration, chirp.MaxDuration))
	if n <= 0 || math.IsNaN(n) {
		return 0
	}
	return int(n)
}

// Ramp is the volume envelope of one note: the volume goes linearly from
// Start towards Target over the samples of the note. When Start == Target, the
// volume is constant.
type Ramp struct {
	Start, Target int
}

// Constant returns a Ramp that stays at volume v.
func Constant(v int) Ramp {
	return Ramp{Start: v, Target: v}
}

// Fade returns a Ramp from start to target.
func Fade(start, target int) Ramp {
	return Ramp{Start: start, Target: target}
}

// At returns the volume at sample i of a note that is total samples long:
// start + (target - start) * i / total, rounded towards the start volume so
// that the amplitude never overshoots the slide.
func (r Ramp) At(i, total int) int {
	if r.Start == r.Target || total <= 0 {
		return r.Start
	}
	return r.Start + (r.Target-r.Start)*i/total
}

func (r Ramp) validate() error {
	if err := chirp.ValidateVolume(r.Start); err != nil {
		return err
	}
	return chirp.ValidateVolume(r.Target)
}

// step returns the phase increment per sample of frequency f.
func step(f float64) float64 {
	return f / SampleRate
}

// advance moves a phase forward by one sample, keeping it in [0,1).
func advance(phase, step float64) float64 {
	phase += step
	if phase >= 1 {
		phase -= math.Floor(phase)
	}
	return phase
}

// toSample floors v and clamps it to the signed 8-bit range.
func toSample(v float64) int8 {
	v = math.Floor(v)
	if v > math.MaxInt8 {
		return math.MaxInt8
	}
	if v < -math.MaxInt8 {
		return -math.MaxInt8
	}
	return int8(v)
}

func validate(freqs []float64, duration float64, vol Ramp) error {
	if err := (chirp.Note{Frequencies: freqs, Duration: duration}).Validate(); err != nil {
		return err
	}
	return vol.validate()
}

// Square returns floor(SampleRate*duration) samples of a square wave, mixing
// the given frequencies. Every call starts from zero phase.
func Square(freqs []float64, duration float64, vol Ramp) ([]int8, error) {
	if err := validate(freqs, duration, vol); err != nil {
		return nil, fmt.Errorf("osc.Square: %w", err)
	}
	phases := make([]float64, len(freqs))
	n := SampleCount(duration)
	return square(make([]int8, 0, n), phases, freqs, n, vol), nil
}

// Sine returns floor(SampleRate*duration) samples of a sine wave, mixing the
// given frequencies. Every call starts from zero phase.
func Sine(freqs []float64, duration float64, vol Ramp) ([]int8, error) {
	if err := validate(freqs, duration, vol); err != nil {
		return nil, fmt.Errorf("osc.Sine: %w", err)
	}
	phases := make([]float64, len(freqs))
	n := SampleCount(duration)
	return sine(make([]int8, 0, n), phases, freqs, n, vol), nil
}

// Noise returns floor(SampleRate*duration) samples of LFSR noise clocked by
// the given frequencies, with the feedback taken from bit tap (1..15). The
// register is seeded with 0xFFFF on every call, so the output is
// deterministic.
func Noise(freqs []float64, duration float64, tap int, vol Ramp) ([]int8, error) {
	if err := validate(freqs, duration, vol); err != nil {
		return nil, fmt.Errorf("osc.Noise: %w", err)
	}
	if err := chirp.NoiseWave(tap).Validate(); err != nil {
		return nil, fmt.Errorf("osc.Noise: %w", err)
	}
	n := SampleCount(duration)
	return noise(make([]int8, 0, n), freqs, tap, n, vol), nil
}

// square appends n samples to dst. A sample is the floored mean of +v or -v
// over the frequencies, depending on which half of its period each phase is.
func square(dst []int8, phases, freqs []float64, n int, vol Ramp) []int8 {
	count := float64(len(freqs))
	for i := 0; i < n; i++ {
		v := float64(vol.At(i, n))
		sum := 0.0
		for k, f := range freqs {
			if phases[k] < 0.5 {
				sum += v
			} else {
				sum -= v
			}
			phases[k] = advance(phases[k], step(f))
		}
		dst = append(dst, toSample(sum/count))
	}
	return dst
}

// sine appends n samples to dst: floor(v * mean(sin(2*pi*phase))).
func sine(dst []int8, phases, freqs []float64, n int, vol Ramp) []int8 {
	count := float64(len(freqs))
	for i := 0; i < n; i++ {
		v := float64(vol.At(i, n))
		sum := 0.0
		for k, f := range freqs {
			sum += math.Sin(2 * math.Pi * phases[k])
			phases[k] = advance(phases[k], step(f))
		}
		dst = append(dst, toSample(v*sum/count))
	}
	return dst
}
