package chirp

import (
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Song documents write items as single key mappings or as the bare scalar
// "end":
//
//	channels:
//	  1:
//	    - volume: 20
//	    - loop: 3
//	    - note: {freq: [A-4, C#5], duration: 0.25, wave: sine, fade: 0}
//	    - end

// UnmarshalYAML reads the channels mapping. Channel indices are parsed from
// the keys so that the quoted keys of .json songs work as well.
func (s *Song) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: a song must be a mapping", value.Line)
	}
	channels := map[int]Channel{}
	for i := 0; i+1 < len(value.Content); i += 2 {
		key, body := value.Content[i], value.Content[i+1]
		if key.Value != "channels" {
			return fmt.Errorf("line %d: unknown field %q in song", key.Line, key.Value)
		}
		if body.Tag == "!!null" {
			continue
		}
		if body.Kind != yaml.MappingNode {
			return fmt.Errorf("line %d: channels must be a mapping from channel index to items", body.Line)
		}
		for j := 0; j+1 < len(body.Content); j += 2 {
			k := body.Content[j]
			index, err := strconv.Atoi(k.Value)
			if err != nil {
				return fmt.Errorf("line %d: channel index %q is not an integer", k.Line, k.Value)
			}
			if _, ok := channels[index]; ok {
				return fmt.Errorf("line %d: channel %d defined twice", k.Line, index)
			}
			var c Channel
			if err := body.Content[j+1].Decode(&c); err != nil {
				return err
			}
			channels[index] = c
		}
	}
	s.Channels = channels
	return nil
}

func (i *Item) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		if value.Value == "end" {
			*i = EndLoop()
			return nil
		}
		return fmt.Errorf("line %d: unknown item %q", value.Line, value.Value)
	case yaml.MappingNode:
		if len(value.Content) != 2 {
			return fmt.Errorf("line %d: an item must have exactly one key", value.Line)
		}
		key, body := value.Content[0].Value, value.Content[1]
		switch key {
		case "note":
			var n Note
			if err := body.Decode(&n); err != nil {
				return err
			}
			*i = NoteAt(n)
		case "volume":
			var v int
			if err := body.Decode(&v); err != nil {
				return err
			}
			vc, err := NewVolumeChange(v)
			if err != nil {
				return fmt.Errorf("line %d: %w", body.Line, err)
			}
			*i = Item{Kind: VolumeItem, Volume: vc}
		case "loop":
			var c int
			if err := body.Decode(&c); err != nil {
				return err
			}
			l, err := NewLoopStart(c)
			if err != nil {
				return fmt.Errorf("line %d: %w", body.Line, err)
			}
			*i = Item{Kind: LoopStartItem, Loop: l}
		case "end":
			*i = EndLoop()
		default:
			return fmt.Errorf("line %d: unknown item %q", value.Line, key)
		}
		return nil
	}
	return fmt.Errorf("line %d: an item must be a mapping or \"end\"", value.Line)
}

func (i Item) MarshalYAML() (interface{}, error) {
	switch i.Kind {
	case NoteItem:
		return map[string]Note{"note": i.Note}, nil
	case VolumeItem:
		return map[string]int{"volume": i.Volume.Volume}, nil
	case LoopStartItem:
		return map[string]int{"loop": i.Loop.Count}, nil
	case LoopEndItem:
		return "end", nil
	}
	return nil, fmt.Errorf("unknown item kind %d", int(i.Kind))
}

func (i Instruction) MarshalYAML() (interface{}, error) {
	switch i.Kind {
	case PlayNote:
		return NoteAt(i.Note).MarshalYAML()
	case SetVolume:
		return Volume(i.Volume.Volume).MarshalYAML()
	}
	return nil, fmt.Errorf("unknown instruction kind %d", int(i.Kind))
}

var noteFields = map[string]bool{"freq": true, "duration": true, "wave": true, "fade": true}

func (n *Note) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.MappingNode {
		for i := 0; i < len(value.Content); i += 2 {
			if k := value.Content[i]; !noteFields[k.Value] {
				return fmt.Errorf("line %d: unknown field %q in note", k.Line, k.Value)
			}
		}
	}
	type plain Note
	var p plain
	if err := value.Decode(&p); err != nil {
		return err
	}
	if err := Note(p).Validate(); err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*n = Note(p)
	return nil
}

func (f *Frequencies) UnmarshalYAML(value *yaml.Node) error {
	nodes := []*yaml.Node{value}
	if value.Kind == yaml.SequenceNode {
		nodes = value.Content
	}
	ret := make(Frequencies, 0, len(nodes))
	for _, n := range nodes {
		if n.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: a frequency must be a number or a note name", n.Line)
		}
		if v, err := strconv.ParseFloat(n.Value, 64); err == nil {
			ret = append(ret, v)
			continue
		}
		v, err := NoteFrequency(n.Value)
		if err != nil {
			return fmt.Errorf("line %d: %w", n.Line, err)
		}
		ret = append(ret, v)
	}
	*f = ret
	return nil
}

func (f Frequencies) MarshalYAML() (interface{}, error) {
	if len(f) == 1 {
		return f[0], nil
	}
	return []float64(f), nil
}

func (w *Waveform) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	p, err := ParseWaveform(s)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*w = p
	return nil
}

func (w Waveform) MarshalYAML() (interface{}, error) {
	return w.String(), nil
}
