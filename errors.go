package chirp

import (
	"fmt"
	"strings"
)

type (
	// ValidationError is returned when a frequency, duration, volume, noise
	// tap or loop count is outside its domain. Channel and Position are
	// filled in when the offending value was found inside a channel; zero
	// means unknown.
	ValidationError struct {
		Channel  int
		Position int // 1-based position of the item in the channel
		Field    string
		Value    any
		Reason   string
	}

	// LoopStructureError is returned by the compiler when the loop markers
	// of a channel do not nest properly. All faults found in the channel are
	// listed, in the order they were found.
	LoopStructureError struct {
		Channel int
		Faults  []LoopFault
	}

	// LoopFault is a single unmatched loop marker.
	LoopFault struct {
		Kind     LoopFaultKind
		Position int // 1-based position of the offending marker
	}

	LoopFaultKind int

	// SongError aborts a whole song: it collects the compile errors of every
	// channel that failed, sorted by channel index. When a SongError is
	// returned, no channel has been played.
	SongError struct {
		Errors []error
	}
)

const (
	// UnmatchedEnd is a LoopEnd without an open LoopStart.
	UnmatchedEnd LoopFaultKind = iota
	// MissingEnd is a LoopStart that was never closed.
	MissingEnd
)

func (e *ValidationError) Error() string {
	var b strings.Builder
	if e.Channel > 0 {
		fmt.Fprintf(&b, "channel %d: ", e.Channel)
	}
	if e.Position > 0 {
		fmt.Fprintf(&b, "position %d: ", e.Position)
	}
	fmt.Fprintf(&b, "invalid %s %v: %s", e.Field, e.Value, e.Reason)
	return b.String()
}

// At returns a copy of e located at the given channel and 1-based item
// position.
func (e *ValidationError) At(channel, position int) *ValidationError {
	located := *e
	located.Channel = channel
	located.Position = position
	return &located
}

// Locate attaches a channel and 1-based item position to err. A
// ValidationError gets them as fields; other errors are wrapped.
func Locate(err error, channel, position int) error {
	if v, ok := err.(*ValidationError); ok {
		return v.At(channel, position)
	}
	return fmt.Errorf("channel %d: position %d: %w", channel, position, err)
}

func (f LoopFault) String() string {
	switch f.Kind {
	case UnmatchedEnd:
		return fmt.Sprintf("unmatched end of loop at position %d", f.Position)
	case MissingEnd:
		return fmt.Sprintf("missing end for loop opened at position %d", f.Position)
	}
	return fmt.Sprintf("loop fault %d at position %d", int(f.Kind), f.Position)
}

func (e *LoopStructureError) Error() string {
	faults := make([]string, len(e.Faults))
	for i, f := range e.Faults {
		faults[i] = f.String()
	}
	return fmt.Sprintf("channel %d: %s", e.Channel, strings.Join(faults, "; "))
}

func (e *SongError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("song aborted, %d channel(s) failed: %s", len(e.Errors), strings.Join(msgs, "; "))
}

func (e *SongError) Unwrap() []error {
	return e.Errors
}
