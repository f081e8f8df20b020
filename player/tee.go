package player

import (
	"context"
	"errors"

	"github.com/vsariola/chirp"
)

// Tee returns a device that hands every buffer to all the given devices, e.g.
// to play a channel and record it at the same time. A buffer is accepted only
// when every device has accepted it; devices that already took the buffer are
// not given it again when the player retries.
func Tee(devices ...chirp.Device) chirp.DeviceCloser {
	return &tee{devices: devices, pending: make([]bool, len(devices))}
}

type tee struct {
	devices    []chirp.Device
	pending    []bool
	submitting bool
}

func (t *tee) Submit(buffer []int8) bool {
	if !t.submitting {
		for i := range t.pending {
			t.pending[i] = true
		}
		t.submitting = true
	}
	done := true
	for i, d := range t.devices {
		if !t.pending[i] {
			continue
		}
		if d.Submit(buffer) {
			t.pending[i] = false
		} else {
			done = false
		}
	}
	if done {
		t.submitting = false
	}
	return done
}

// WaitReady waits for the first device that has not taken the current
// buffer. If the wait fails, the buffer is given up and the next Submit
// starts a new one.
func (t *tee) WaitReady(ctx context.Context) error {
	for i, d := range t.devices {
		if t.submitting && t.pending[i] {
			err := d.WaitReady(ctx)
			if err != nil {
				t.submitting = false
			}
			return err
		}
	}
	return nil
}

// Close closes every device that is a chirp.DeviceCloser.
func (t *tee) Close() error {
	var errs []error
	for _, d := range t.devices {
		if c, ok := d.(chirp.DeviceCloser); ok {
			errs = append(errs, c.Close())
		}
	}
	return errors.Join(errs...)
}
