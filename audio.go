package chirp

import "context"

// Device is the playback device of one channel. Submit tries to hand over a
// buffer of signed samples; it returns false when the device cannot take it
// right now, in which case the caller waits with WaitReady and submits the
// same buffer again. The device must not retain the buffer after Submit
// returns: the caller reuses it.
//
// WaitReady blocks until the device may accept a buffer again. It returns
// early only if ctx is done or the device is broken; a device that never
// becomes ready blocks forever, unless the caller cancels ctx.
type Device interface {
	Submit(buffer []int8) bool
	WaitReady(ctx context.Context) error
}

// DeviceCloser is a Device that holds resources, e.g. an open file or an
// audio player. Close flushes and releases them.
type DeviceCloser interface {
	Device
	Close() error
}
