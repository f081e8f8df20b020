package chirp

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

type (
	// Note is a single tone of a channel: one or more frequencies sounded
	// together for Duration seconds using the given Waveform. If Fade is
	// non-nil, the volume slides linearly from the channel's current volume
	// to *Fade over the length of the note. Notes are immutable once built
	// with NewNote or decoded from a song document; both paths validate.
	Note struct {
		Frequencies Frequencies `yaml:"freq,flow"`
		Duration    float64     `yaml:"duration"`
		Waveform    Waveform    `yaml:"wave,omitempty"`
		Fade        *int        `yaml:"fade,omitempty"`
	}

	// Frequencies is the list of frequencies (Hz) of a Note. In song
	// documents, it can be written as a single number or note name, or as a
	// list of them.
	Frequencies []float64

	// Waveform is the closed set of oscillator shapes: Square, Sine or
	// Noise. Tap is only meaningful for noise, where it selects the LFSR
	// feedback bit (1..15).
	Waveform struct {
		Kind WaveKind
		Tap  int
	}

	// WaveKind enumerates the oscillator shapes.
	WaveKind int
)

const (
	Square WaveKind = iota
	Sine
	Noise
)

const (
	MinVolume = 0
	MaxVolume = 127

	// DefaultVolume is the volume of a channel before its first
	// VolumeChange.
	DefaultVolume = 50

	MinNoiseTap = 1
	MaxNoiseTap = 15

	// MaxDuration is the longest note, in seconds.
	MaxDuration = 3600
)

var waveKindNames = [...]string{"square", "sine", "noise"}

func (k WaveKind) String() string {
	if k < 0 || int(k) >= len(waveKindNames) {
		return fmt.Sprintf("WaveKind(%d)", int(k))
	}
	return waveKindNames[k]
}

// SquareWave, SineWave and NoiseWave build Waveforms.
func SquareWave() Waveform { return Waveform{Kind: Square} }
func SineWave() Waveform { return Waveform{Kind: Sine} }
func NoiseWave(tap int) Waveform { return Waveform{Kind: Noise, Tap: tap} }

// String returns "square", "sine" or "noise<tap>", the same notation used in
// song documents.
func (w Waveform) String() string {
	if w.Kind == Noise {
		return fmt.Sprintf("noise%d", w.Tap)
	}
	return w.Kind.String()
}

// ParseWaveform parses the song document notation of a waveform: "square",
// "sine", "noise" (tap 1) or "noise<tap>", e.g. "noise6".
func ParseWaveform(s string) (Waveform, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch {
	case s == "" || s == "square":
		return SquareWave(), nil
	case s == "sine":
		return SineWave(), nil
	case s == "noise":
		return NoiseWave(MinNoiseTap), nil
	case strings.HasPrefix(s, "noise"):
		tap, err := strconv.Atoi(s[len("noise"):])
		if err != nil {
			return Waveform{}, &ValidationError{Field: "wave", Value: s, Reason: "unknown waveform"}
		}
		w := NoiseWave(tap)
		return w, w.Validate()
	}
	return Waveform{}, &ValidationError{Field: "wave", Value: s, Reason: "unknown waveform"}
}

// Validate checks that the waveform kind is known and that noise taps are in
// range [1,15].
func (w Waveform) Validate() error {
	switch w.Kind {
	case Square, Sine:
		return nil
	case Noise:
		if w.Tap < MinNoiseTap || w.Tap > MaxNoiseTap {
			return &ValidationError{Field: "tap", Value: w.Tap, Reason: fmt.Sprintf("must be in range [%d,%d]", MinNoiseTap, MaxNoiseTap)}
		}
		return nil
	}
	return &ValidationError{Field: "wave", Value: int(w.Kind), Reason: "unknown waveform"}
}

// NewNote builds and validates a Note. fade may be nil for a note without a
// volume slide.
func NewNote(freqs Frequencies, duration float64, wave Waveform, fade *int) (Note, error) {
	n := Note{Frequencies: append(Frequencies(nil), freqs...), Duration: duration, Waveform: wave}
	if fade != nil {
		f := *fade
		n.Fade = &f
	}
	if err := n.Validate(); err != nil {
		return Note{}, err
	}
	return n, nil
}

// Fading returns a pointer to v, for building notes with a fade target.
func Fading(v int) *int { return &v }

// Validate checks the domain of every field of the note.
func (n Note) Validate() error {
	if len(n.Frequencies) == 0 {
		return &ValidationError{Field: "freq", Value: nil, Reason: "at least one frequency is needed"}
	}
	for _, f := range n.Frequencies {
		if f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
			return &ValidationError{Field: "freq", Value: f, Reason: "must be a finite, non-negative number"}
		}
	}
	if n.Duration < 0 || n.Duration > MaxDuration || math.IsNaN(n.Duration) {
		return &ValidationError{Field: "duration", Value: n.Duration, Reason: fmt.Sprintf("must be in range [0,%d] seconds", MaxDuration)}
	}
	if n.Fade != nil {
		if err := ValidateVolume(*n.Fade); err != nil {
			return err
		}
	}
	return n.Waveform.Validate()
}

// ValidateVolume checks that v is in range [0,127].
func ValidateVolume(v int) error {
	if v < MinVolume || v > MaxVolume {
		return &ValidationError{Field: "volume", Value: v, Reason: fmt.Sprintf("must be in range [%d,%d]", MinVolume, MaxVolume)}
	}
	return nil
}

var noteNames = []string{
	"C-",
	"C#",
	"D-",
	"D#",
	"E-",
	"F-",
	"F#",
	"G-",
	"G#",
	"A-",
	"A#",
	"B-",
}

// NoteFrequency returns the equal temperament frequency of a note name,
// tuned to A-4 = 440 Hz. Names are written like "C-4" or "C#4". The dash is
// optional ("a4") and flats are not supported.
func NoteFrequency(name string) (float64, error) {
	s := strings.ToUpper(strings.TrimSpace(name))
	if len(s) < 2 {
		return 0, &ValidationError{Field: "freq", Value: name, Reason: "not a note name"}
	}
	key := s[:1] + "-"
	rest := s[1:]
	switch rest[0] {
	case '#':
		key = s[:1] + "#"
		rest = rest[1:]
	case '-':
		rest = rest[1:]
	}
	semitone := -1
	for i, n := range noteNames {
		if n == key {
			semitone = i
			break
		}
	}
	octave, err := strconv.Atoi(rest)
	if semitone < 0 || err != nil {
		return 0, &ValidationError{Field: "freq", Value: name, Reason: "not a note name"}
	}
	// A-4 is semitone 9 of octave 4
	offset := (octave-4)*12 + semitone - 9
	return 440 * math.Pow(2, float64(offset)/12), nil
}
