// Package chirp is the data model of chirp songs: notes with square, sine or
// noise waveforms, volume changes and loop markers, grouped into channels.
// The compiler package flattens the loops and the player package plays the
// result, one device per channel.
package chirp

import (
	"fmt"
	"io"
	"sort"

	"gopkg.in/yaml.v3"
)

type (
	// Song maps 1-based channel indices to channels. Every channel is played
	// on its own device: channel i goes to the i:th device. Channels with no
	// items are skipped.
	Song struct {
		Channels map[int]Channel `yaml:"channels"`
	}

	// Channel is the raw, uncompiled list of items of one channel, possibly
	// containing loop markers.
	Channel []Item
)

// Indices returns the indices of the non-empty channels in ascending order.
func (s Song) Indices() []int {
	ret := make([]int, 0, len(s.Channels))
	for i, c := range s.Channels {
		if len(c) > 0 {
			ret = append(ret, i)
		}
	}
	sort.Ints(ret)
	return ret
}

// Validate checks that all channel indices are within 1..deviceCount and that
// every item of every channel is valid. Loop nesting is checked by the
// compiler, not here. All failing channels are reported in one SongError.
func (s Song) Validate(deviceCount int) error {
	var errs []error
	for _, index := range s.Indices() {
		if index < 1 || index > deviceCount {
			errs = append(errs, &ValidationError{Channel: index, Field: "channel index", Value: index, Reason: fmt.Sprintf("must be in range [1,%d]", deviceCount)})
			continue
		}
		if err := s.Channels[index].Validate(index); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return &SongError{Errors: errs}
	}
	return nil
}

// Validate checks every item of the channel, returning the first invalid one
// as a ValidationError carrying the channel index and item position.
func (c Channel) Validate(index int) error {
	for pos, item := range c {
		if err := item.Validate(); err != nil {
			return Locate(err, index, pos+1)
		}
	}
	return nil
}

// ReadSong decodes a song document. Documents are YAML; since JSON is a
// subset of YAML, .json songs are accepted as well.
func ReadSong(r io.Reader) (Song, error) {
	var song Song
	if err := yaml.NewDecoder(r).Decode(&song); err != nil {
		if err == io.EOF {
			return Song{}, nil
		}
		return Song{}, fmt.Errorf("could not decode song: %w", err)
	}
	return song, nil
}
