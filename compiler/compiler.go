// Package compiler turns the raw channels of a song, with their nested loop
// markers, into flat lists of instructions that a player can walk from start
// to end.
package compiler

import (
	"time"

	"github.com/vsariola/chirp"
	"github.com/vsariola/chirp/osc"
)

// Program is a compiled song: the flat instruction list of every non-empty
// channel, keyed by the 1-based channel index.
type Program map[int][]chirp.Instruction

// Song compiles every non-empty channel of the song. Compilation is all or
// nothing: if any channel fails, the returned error is a *chirp.SongError
// with the errors of all failing channels, in channel order, and the Program
// is nil.
func Song(song chirp.Song) (Program, error) {
	prog := make(Program, len(song.Channels))
	var errs []error
	for _, index := range song.Indices() {
		instrs, err := Compile(index, song.Channels[index])
		if err != nil {
			errs = append(errs, err)
			continue
		}
		prog[index] = instrs
	}
	if len(errs) > 0 {
		return nil, &chirp.SongError{Errors: errs}
	}
	return prog, nil
}

// Samples returns the number of samples the instructions produce when
// played.
func Samples(instrs []chirp.Instruction) int {
	total := 0
	for _, ins := range instrs {
		if ins.Kind == chirp.PlayNote {
			total += osc.SampleCount(ins.Note.Duration)
		}
	}
	return total
}

// Length returns the playing time of the longest channel of the program.
func (p Program) Length() time.Duration {
	longest := 0
	for _, instrs := range p {
		longest = max(longest, Samples(instrs))
	}
	return time.Duration(longest) * time.Second / osc.SampleRate
}
