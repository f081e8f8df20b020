package compiler_test

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/vsariola/chirp"
	"github.com/vsariola/chirp/compiler"
)

var (
	noteA = chirp.Note{Frequencies: chirp.Frequencies{440}, Duration: 0.25, Waveform: chirp.SquareWave()}
	noteB = chirp.Note{Frequencies: chirp.Frequencies{660, 880}, Duration: 0.5, Waveform: chirp.SineWave()}
	noteC = chirp.Note{Frequencies: chirp.Frequencies{110}, Duration: 0.125, Waveform: chirp.NoiseWave(4)}
)

func note(n chirp.Note) chirp.Instruction {
	return chirp.Instruction{Kind: chirp.PlayNote, Note: n}
}

func volume(v int) chirp.Instruction {
	return chirp.Instruction{Kind: chirp.SetVolume, Volume: chirp.VolumeChange{Volume: v}}
}

func TestCompile(t *testing.T) {
	cases := []struct {
		name  string
		items chirp.Channel
		want  []chirp.Instruction
	}{
		{
			name:  "flat",
			items: chirp.Channel{chirp.Volume(10), chirp.NoteAt(noteA), chirp.NoteAt(noteB)},
			want:  []chirp.Instruction{volume(10), note(noteA), note(noteB)},
		},
		{
			name:  "loop",
			items: chirp.Channel{chirp.Volume(20), chirp.StartLoop(3), chirp.NoteAt(noteA), chirp.NoteAt(noteB), chirp.EndLoop()},
			want:  []chirp.Instruction{volume(20), note(noteA), note(noteB), note(noteA), note(noteB), note(noteA), note(noteB)},
		},
		{
			name:  "nested",
			items: chirp.Channel{chirp.StartLoop(2), chirp.StartLoop(2), chirp.NoteAt(noteA), chirp.EndLoop(), chirp.EndLoop()},
			want:  []chirp.Instruction{note(noteA), note(noteA), note(noteA), note(noteA)},
		},
		{
			name: "nested with prefix",
			items: chirp.Channel{
				chirp.StartLoop(2), chirp.NoteAt(noteA),
				chirp.StartLoop(3), chirp.NoteAt(noteB), chirp.EndLoop(),
				chirp.EndLoop(), chirp.NoteAt(noteC),
			},
			want: []chirp.Instruction{
				note(noteA), note(noteB), note(noteB), note(noteB),
				note(noteA), note(noteB), note(noteB), note(noteB),
				note(noteC),
			},
		},
		{
			name:  "count zero removes the body",
			items: chirp.Channel{chirp.NoteAt(noteA), chirp.StartLoop(0), chirp.NoteAt(noteB), chirp.Volume(5), chirp.EndLoop(), chirp.NoteAt(noteC)},
			want:  []chirp.Instruction{note(noteA), note(noteC)},
		},
		{
			name:  "count one is identity",
			items: chirp.Channel{chirp.StartLoop(1), chirp.NoteAt(noteA), chirp.Volume(7), chirp.EndLoop()},
			want:  []chirp.Instruction{note(noteA), volume(7)},
		},
		{
			name:  "empty loop",
			items: chirp.Channel{chirp.StartLoop(5), chirp.EndLoop(), chirp.NoteAt(noteB)},
			want:  []chirp.Instruction{note(noteB)},
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := compiler.Compile(1, c.items)
			if err != nil {
				t.Fatalf("Compile failed: %v", err)
			}
			if !reflect.DeepEqual(got, c.want) {
				t.Fatalf("got %v, expected %v", got, c.want)
			}
		})
	}
}

func TestLoopStructureErrors(t *testing.T) {
	cases := []struct {
		name   string
		items  chirp.Channel
		faults []chirp.LoopFault
		msg    string
	}{
		{
			name:   "unmatched end",
			items:  chirp.Channel{chirp.NoteAt(noteA), chirp.EndLoop()},
			faults: []chirp.LoopFault{{Kind: chirp.UnmatchedEnd, Position: 2}},
			msg:    "channel 3: unmatched end of loop at position 2",
		},
		{
			name:   "missing end",
			items:  chirp.Channel{chirp.StartLoop(2), chirp.NoteAt(noteA)},
			faults: []chirp.LoopFault{{Kind: chirp.MissingEnd, Position: 1}},
			msg:    "channel 3: missing end for loop opened at position 1",
		},
		{
			name:  "every unclosed start is reported",
			items: chirp.Channel{chirp.StartLoop(2), chirp.NoteAt(noteA), chirp.StartLoop(3), chirp.NoteAt(noteB)},
			faults: []chirp.LoopFault{
				{Kind: chirp.MissingEnd, Position: 1},
				{Kind: chirp.MissingEnd, Position: 3},
			},
		},
		{
			name:  "both kinds",
			items: chirp.Channel{chirp.EndLoop(), chirp.StartLoop(2), chirp.NoteAt(noteA), chirp.EndLoop(), chirp.EndLoop(), chirp.StartLoop(4)},
			faults: []chirp.LoopFault{
				{Kind: chirp.UnmatchedEnd, Position: 1},
				{Kind: chirp.UnmatchedEnd, Position: 5},
				{Kind: chirp.MissingEnd, Position: 6},
			},
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			instrs, err := compiler.Compile(3, c.items)
			if instrs != nil {
				t.Fatalf("expected no instructions on error, got %v", instrs)
			}
			var lerr *chirp.LoopStructureError
			if !errors.As(err, &lerr) {
				t.Fatalf("expected a LoopStructureError, got %v", err)
			}
			if lerr.Channel != 3 {
				t.Fatalf("error should be for channel 3, got %v", lerr.Channel)
			}
			if !reflect.DeepEqual(lerr.Faults, c.faults) {
				t.Fatalf("got faults %v, expected %v", lerr.Faults, c.faults)
			}
			if c.msg != "" && err.Error() != c.msg {
				t.Fatalf("got message %q, expected %q", err.Error(), c.msg)
			}
		})
	}
}

func TestCompileValidates(t *testing.T) {
	bad := noteA
	bad.Waveform = chirp.NoiseWave(16)
	cases := map[string]chirp.Channel{
		"volume":     {chirp.NoteAt(noteA), chirp.Volume(128)},
		"loop count": {chirp.NoteAt(noteA), chirp.StartLoop(-1), chirp.EndLoop()},
		"noise tap":  {chirp.NoteAt(noteA), chirp.NoteAt(bad)},
	}
	for name, items := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := compiler.Compile(2, items)
			var verr *chirp.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected a ValidationError, got %v", err)
			}
			if verr.Channel != 2 || verr.Position != 2 {
				t.Fatalf("error should point to channel 2 position 2, got channel %v position %v", verr.Channel, verr.Position)
			}
		})
	}
}

func TestCompileReportsEveryFault(t *testing.T) {
	items := chirp.Channel{chirp.EndLoop(), chirp.Volume(200), chirp.NoteAt(noteA), chirp.StartLoop(-2)}
	_, err := compiler.Compile(1, items)
	var lerr *chirp.LoopStructureError
	if !errors.As(err, &lerr) {
		t.Fatalf("expected a LoopStructureError, got %v", err)
	}
	want := []chirp.LoopFault{{Kind: chirp.UnmatchedEnd, Position: 1}, {Kind: chirp.MissingEnd, Position: 4}}
	if !reflect.DeepEqual(lerr.Faults, want) {
		t.Fatalf("got faults %v, expected %v", lerr.Faults, want)
	}
	joined, ok := err.(interface{ Unwrap() []error })
	if !ok {
		t.Fatalf("expected the faults to be joined, got %T", err)
	}
	var positions []int
	for _, e := range joined.Unwrap() {
		var verr *chirp.ValidationError
		if errors.As(e, &verr) {
			positions = append(positions, verr.Position)
		}
	}
	if !reflect.DeepEqual(positions, []int{2, 4}) {
		t.Fatalf("expected invalid items at positions [2 4], got %v", positions)
	}
	for _, s := range []string{"position 1", "position 2", "position 4"} {
		if !strings.Contains(err.Error(), s) {
			t.Fatalf("error %q does not mention %v", err.Error(), s)
		}
	}
}

func TestCompileTooLong(t *testing.T) {
	items := chirp.Channel{
		chirp.StartLoop(1 << 12), chirp.StartLoop(1 << 12), chirp.NoteAt(noteA), chirp.EndLoop(), chirp.EndLoop(),
	}
	_, err := compiler.Compile(1, items)
	var verr *chirp.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected a ValidationError, got %v", err)
	}
	if verr.Position != 1 {
		t.Fatalf("error should point to the outer loop, got position %v", verr.Position)
	}
}

func TestSongIsAllOrNothing(t *testing.T) {
	song := chirp.Song{Channels: map[int]chirp.Channel{
		1: {chirp.NoteAt(noteA)},
		2: {chirp.EndLoop()},
		3: {chirp.StartLoop(2)},
		4: {},
	}}
	prog, err := compiler.Song(song)
	if prog != nil {
		t.Fatalf("expected no program when a channel fails, got %v", prog)
	}
	var serr *chirp.SongError
	if !errors.As(err, &serr) {
		t.Fatalf("expected a SongError, got %v", err)
	}
	if len(serr.Errors) != 2 {
		t.Fatalf("expected errors for 2 channels, got %v", serr.Errors)
	}
	for i, want := range []int{2, 3} {
		var lerr *chirp.LoopStructureError
		if !errors.As(serr.Errors[i], &lerr) || lerr.Channel != want {
			t.Fatalf("error %v should be a loop error of channel %v, got %v", i, want, serr.Errors[i])
		}
	}
	if !strings.Contains(err.Error(), "channel 2") || !strings.Contains(err.Error(), "channel 3") {
		t.Fatalf("message should mention both channels: %v", err)
	}
}

func TestSongLength(t *testing.T) {
	song := chirp.Song{Channels: map[int]chirp.Channel{
		1: {chirp.StartLoop(4), chirp.NoteAt(noteA), chirp.EndLoop()},
		2: {chirp.Volume(3), chirp.NoteAt(noteB)},
	}}
	prog, err := compiler.Song(song)
	if err != nil {
		t.Fatalf("compiler.Song failed: %v", err)
	}
	if len(prog) != 2 {
		t.Fatalf("expected 2 compiled channels, got %v", len(prog))
	}
	if got := compiler.Samples(prog[1]); got != 48000 {
		t.Fatalf("channel 1 should be 48000 samples, got %v", got)
	}
	if got := prog.Length(); got != time.Second {
		t.Fatalf("song should be 1s long, got %v", got)
	}
}
