package meter_test

import (
	"context"
	"math"
	"testing"

	"github.com/vsariola/chirp/meter"
)

type sink struct {
	accept bool
	got    int
}

func (s *sink) Submit(buffer []int8) bool {
	if s.accept {
		s.got += len(buffer)
	}
	return s.accept
}

func (s *sink) WaitReady(ctx context.Context) error { return nil }

func TestFullScaleSquare(t *testing.T) {
	s := &sink{accept: true}
	m := meter.Wrap(s)
	buf := make([]int8, 1000)
	for i := range buf {
		buf[i] = 127
		if i%2 == 1 {
			buf[i] = -127
		}
	}
	if !m.Submit(buf) {
		t.Fatalf("Submit should pass the result of the wrapped device")
	}
	l := m.Levels()
	if math.Abs(float64(l.Peak)) > 1e-3 || math.Abs(float64(l.RMS)) > 1e-3 {
		t.Fatalf("a full scale square should be 0 dB peak and RMS, got %+v", l)
	}
	if l.Samples != 1000 || s.got != 1000 {
		t.Fatalf("expected 1000 samples, got %v measured and %v passed", l.Samples, s.got)
	}
}

func TestDeclinedBuffersAreNotMeasured(t *testing.T) {
	s := &sink{accept: false}
	m := meter.Wrap(s)
	if m.Submit([]int8{100, -100}) {
		t.Fatalf("Submit should pass the result of the wrapped device")
	}
	if l := m.Levels(); l.Samples != 0 || l.Peak != meter.Silence || l.RMS != meter.Silence {
		t.Fatalf("nothing should have been measured, got %+v", l)
	}
}

func TestHalfScale(t *testing.T) {
	m := meter.Wrap(&sink{accept: true})
	m.Submit([]int8{0, 0, 0, 0})
	m.Submit([]int8{63, -63, 63, -63})
	l := m.Levels()
	wantPeak := 20 * math.Log10(63.0/127)
	wantRMS := 20 * math.Log10(63.0/127/math.Sqrt2)
	if math.Abs(float64(l.Peak)-wantPeak) > 1e-2 {
		t.Fatalf("peak: got %v, expected %v", l.Peak, wantPeak)
	}
	if math.Abs(float64(l.RMS)-wantRMS) > 1e-2 {
		t.Fatalf("RMS: got %v, expected %v", l.RMS, wantRMS)
	}
	m.Reset()
	if l := m.Levels(); l.Samples != 0 {
		t.Fatalf("Reset should clear the levels, got %+v", l)
	}
}
