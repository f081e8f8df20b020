package osc

import (
	"github.com/vsariola/chirp"
)

// Oscillator renders the notes of one channel. It keeps the square and sine
// phases between notes of the same channel, so that consecutive notes
// continue where the previous one left off; nothing is shared between
// Oscillators. The zero value is ready to use.
type Oscillator struct {
	phases []float64
}

// Phases returns a copy of the current phases, one per frequency of the last
// square or sine note.
func (o *Oscillator) Phases() []float64 {
	return append([]float64(nil), o.phases...)
}

// Render appends the samples of note n to dst, starting at volume and fading
// to the note's fade target, if it has one. The note is expected to be
// valid; the compiler checks notes before they reach a player.
func (o *Oscillator) Render(dst []int8, n chirp.Note, volume int) []int8 {
	vol := Constant(volume)
	if n.Fade != nil {
		vol = Fade(volume, *n.Fade)
	}
	count := SampleCount(n.Duration)
	switch n.Waveform.Kind {
	case chirp.Sine:
		return sine(dst, o.phasesFor(len(n.Frequencies)), n.Frequencies, count, vol)
	case chirp.Noise:
		return noise(dst, n.Frequencies, n.Waveform.Tap, count, vol)
	default:
		return square(dst, o.phasesFor(len(n.Frequencies)), n.Frequencies, count, vol)
	}
}

// phasesFor returns the phase slice for k frequencies, keeping the existing
// phases and starting new ones at zero.
func (o *Oscillator) phasesFor(k int) []float64 {
	for len(o.phases) < k {
		o.phases = append(o.phases, 0)
	}
	return o.phases[:k]
}
