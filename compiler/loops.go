package compiler

import (
	"errors"
	"fmt"

	"github.com/vsariola/chirp"
)

// MaxInstructions caps the length of a compiled channel, so that a few nested
// loops with large counts cannot exhaust memory.
const MaxInstructions = 1 << 22

type openLoop struct {
	start    int // offset into the output where the loop body begins
	count    int
	position int // 1-based position of the LoopStart item
}

// Compile expands the loops of one channel into a flat list of instructions.
// Loops nest: a LoopEnd closes the latest open LoopStart, and the body
// between them, with inner loops already expanded, is played Count times in
// total. A Count of 0 removes the body.
//
// Every fault of the channel is reported. Unmatched loop markers give a
// *chirp.LoopStructureError listing all of them, and every invalid item gives
// a *chirp.ValidationError carrying the channel and position. When the
// channel has more than one kind of fault, they are joined with errors.Join.
func Compile(channel int, items chirp.Channel) ([]chirp.Instruction, error) {
	out := make([]chirp.Instruction, 0, len(items))
	var stack []openLoop
	var faults []chirp.LoopFault
	var errs []error
	for i, item := range items {
		position := i + 1
		if err := item.Validate(); err != nil {
			errs = append(errs, chirp.Locate(err, channel, position))
		}
		failed := len(errs) > 0 || len(faults) > 0
		switch item.Kind {
		case chirp.LoopStartItem:
			stack = append(stack, openLoop{start: len(out), count: item.Loop.Count, position: position})
		case chirp.LoopEndItem:
			if len(stack) == 0 {
				faults = append(faults, chirp.LoopFault{Kind: chirp.UnmatchedEnd, Position: position})
				continue
			}
			loop := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if failed {
				continue
			}
			var err error
			if out, err = repeat(out, loop); err != nil {
				return nil, chirp.Locate(err, channel, loop.position)
			}
		default:
			if failed {
				continue
			}
			ins, _ := item.Instruction()
			if len(out) >= MaxInstructions {
				return nil, chirp.Locate(errTooLong, channel, position)
			}
			out = append(out, ins)
		}
	}
	for _, loop := range stack {
		faults = append(faults, chirp.LoopFault{Kind: chirp.MissingEnd, Position: loop.position})
	}
	if len(faults) > 0 {
		errs = append(errs, &chirp.LoopStructureError{Channel: channel, Faults: faults})
	}
	switch len(errs) {
	case 0:
		return out, nil
	case 1:
		return nil, errs[0]
	}
	return nil, errors.Join(errs...)
}

var errTooLong = &chirp.ValidationError{Field: "loop count", Reason: fmt.Sprintf("channel would expand beyond %d instructions", MaxInstructions)}

// repeat appends count-1 copies of the loop body to out; the body already
// present is the first iteration.
func repeat(out []chirp.Instruction, loop openLoop) ([]chirp.Instruction, error) {
	if loop.count == 0 {
		return out[:loop.start], nil
	}
	n := len(out) - loop.start
	if n > 0 && (loop.count-1) > (MaxInstructions-len(out))/n {
		return nil, errTooLong
	}
	for c := 1; c < loop.count; c++ {
		out = append(out, out[loop.start:loop.start+n]...)
	}
	return out, nil
}
