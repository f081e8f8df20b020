package player

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/vsariola/chirp"
	"github.com/vsariola/chirp/compiler"
)

// PlaySong compiles the song and plays it: channel i on devices[i-1]. If any
// channel fails to compile, or refers to a device that does not exist, no
// channel is played and the error is a *chirp.SongError listing every failing
// channel. Otherwise all channels are played concurrently and PlaySong
// returns once every channel has finished.
func PlaySong(ctx context.Context, song chirp.Song, devices []chirp.Device) error {
	errs := deviceErrors(song.Indices(), devices)
	prog, err := compiler.Song(song)
	if err != nil {
		var serr *chirp.SongError
		if !errors.As(err, &serr) {
			return err
		}
		errs = append(errs, serr.Errors...)
	}
	if len(errs) > 0 {
		sort.SliceStable(errs, func(i, j int) bool { return channelOf(errs[i]) < channelOf(errs[j]) })
		return &chirp.SongError{Errors: errs}
	}
	_, err = Play(ctx, prog, devices)
	return err
}

// Play plays an already compiled program, one goroutine per channel, and
// waits for all of them. It returns the players, in channel order, so that
// their Stats can be inspected. A channel that fails while waiting for its
// device does not stop the others: every channel runs to completion, or
// until ctx is done, and the first error is returned.
func Play(ctx context.Context, prog compiler.Program, devices []chirp.Device) ([]*Channel, error) {
	indices := make([]int, 0, len(prog))
	for index := range prog {
		indices = append(indices, index)
	}
	sort.Ints(indices)
	if errs := deviceErrors(indices, devices); len(errs) > 0 {
		return nil, &chirp.SongError{Errors: errs}
	}
	channels := make([]*Channel, len(indices))
	var g errgroup.Group
	for i, index := range indices {
		channels[i] = NewChannel(index, prog[index], devices[index-1])
		ch := channels[i]
		g.Go(func() error {
			return ch.Play(ctx)
		})
	}
	return channels, g.Wait()
}

func deviceErrors(indices []int, devices []chirp.Device) []error {
	var errs []error
	for _, index := range indices {
		if index < 1 || index > len(devices) {
			errs = append(errs, &chirp.ValidationError{Channel: index, Field: "channel index", Value: index, Reason: fmt.Sprintf("there are %d devices", len(devices))})
			continue
		}
		if devices[index-1] == nil {
			errs = append(errs, &chirp.ValidationError{Channel: index, Field: "device", Value: nil, Reason: "no device for the channel"})
		}
	}
	return errs
}

func channelOf(err error) int {
	var verr *chirp.ValidationError
	if errors.As(err, &verr) {
		return verr.Channel
	}
	var lerr *chirp.LoopStructureError
	if errors.As(err, &lerr) {
		return lerr.Channel
	}
	return 0
}
