package chirp

import (
	"fmt"
)

type (
	// VolumeChange sets the volume of the channel from this point onwards.
	VolumeChange struct {
		Volume int
	}

	// LoopStart opens a block that is played Count times in total. A Count
	// of zero removes the block.
	LoopStart struct {
		Count int
	}

	// LoopEnd closes the most recently opened LoopStart.
	LoopEnd struct{}

	// Item is one raw entry of a Channel: exactly one of a note, a volume
	// change, a loop start or a loop end, as told by Kind. The fields not
	// matching Kind are ignored.
	Item struct {
		Kind   ItemKind
		Note   Note
		Volume VolumeChange
		Loop   LoopStart
	}

	ItemKind int

	// Instruction is a compiled entry of a channel. Loop markers never
	// survive compilation, so an Instruction is either a note or a volume
	// change.
	Instruction struct {
		Kind   InstructionKind
		Note   Note
		Volume VolumeChange
	}

	InstructionKind int
)

const (
	NoteItem ItemKind = iota
	VolumeItem
	LoopStartItem
	LoopEndItem
)

const (
	PlayNote InstructionKind = iota
	SetVolume
)

// NewVolumeChange builds a validated VolumeChange.
func NewVolumeChange(volume int) (VolumeChange, error) {
	if err := ValidateVolume(volume); err != nil {
		return VolumeChange{}, err
	}
	return VolumeChange{Volume: volume}, nil
}

// NewLoopStart builds a validated LoopStart; count must not be negative.
func NewLoopStart(count int) (LoopStart, error) {
	l := LoopStart{Count: count}
	return l, l.Validate()
}

func (l LoopStart) Validate() error {
	if l.Count < 0 {
		return &ValidationError{Field: "loop count", Value: l.Count, Reason: "must not be negative"}
	}
	return nil
}

// NoteAt, Volume, StartLoop and EndLoop are shorthands for building channels
// in code. They do not validate; the compiler does.
func NoteAt(n Note) Item { return Item{Kind: NoteItem, Note: n} }
func Volume(v int) Item { return Item{Kind: VolumeItem, Volume: VolumeChange{Volume: v}} }
func StartLoop(count int) Item { return Item{Kind: LoopStartItem, Loop: LoopStart{Count: count}} }
func EndLoop() Item { return Item{Kind: LoopEndItem} }

// Validate checks the payload matching the item kind.
func (i Item) Validate() error {
	switch i.Kind {
	case NoteItem:
		return i.Note.Validate()
	case VolumeItem:
		return ValidateVolume(i.Volume.Volume)
	case LoopStartItem:
		return i.Loop.Validate()
	case LoopEndItem:
		return nil
	}
	return fmt.Errorf("unknown item kind %d", int(i.Kind))
}

// Instruction converts a note or volume item into an Instruction. ok is
// false for loop markers.
func (i Item) Instruction() (ins Instruction, ok bool) {
	switch i.Kind {
	case NoteItem:
		return Instruction{Kind: PlayNote, Note: i.Note}, true
	case VolumeItem:
		return Instruction{Kind: SetVolume, Volume: i.Volume}, true
	}
	return Instruction{}, false
}

func (i Item) String() string {
	switch i.Kind {
	case NoteItem:
		return fmt.Sprintf("note(%v %vs %v)", []float64(i.Note.Frequencies), i.Note.Duration, i.Note.Waveform)
	case VolumeItem:
		return fmt.Sprintf("volume(%d)", i.Volume.Volume)
	case LoopStartItem:
		return fmt.Sprintf("loop(%d)", i.Loop.Count)
	case LoopEndItem:
		return "end"
	}
	return fmt.Sprintf("item(%d)", int(i.Kind))
}
