package socketcan

import (
	"context"
	"errors"
	"time"

	j1939 "github.com/truckbus/go-j1939-candump"
)

type connection interface {
	SetReadTimeout(timeout time.Duration) error
	ReadFrame() (j1939.Frame, error)
	Close() error
}

// Device wraps Connection with context aware reads for use as a frame source
// in the capture tools.
type Device struct {
	conn connection

	// ifName is SocketCAN interface name. For example: can0
	ifName string

	// receiveDataTimeout limits how long reads may yield no data before the
	// device is considered silent. Individual socket reads still block only a
	// short time so context cancellation is noticed promptly. Zero means the
	// bus is allowed to stay silent indefinitely.
	receiveDataTimeout time.Duration

	timeNow func() time.Time
}

func NewDevice(ifName string) *Device {
	return &Device{
		conn: nil,

		ifName:             ifName,
		timeNow:            time.Now,
		receiveDataTimeout: 5 * time.Second,
	}
}

// SetReceiveDataTimeout changes how long the bus may stay silent before
// ReadFrame gives up. Zero disables the limit, ReadFrame then waits until a
// frame arrives or the context is cancelled. Sporadic traffic on an
// otherwise quiet bus is normal, tools that stream until interrupted should
// disable the limit.
func (d *Device) SetReceiveDataTimeout(timeout time.Duration) {
	d.receiveDataTimeout = timeout
}

func (d *Device) Close() error {
	return d.conn.Close()
}

func (d *Device) Initialize() error {
	conn, err := NewConnection(d.ifName)
	if err != nil {
		return err
	}
	d.conn = conn

	return nil
}

// ReadFrame returns next frame from the bus in arrival order. It returns
// errReadTimeout when the bus stays silent longer than the receive data
// timeout and the context error when ctx is cancelled.
func (d *Device) ReadFrame(ctx context.Context) (j1939.Frame, error) {
	start := d.timeNow()
	for {
		select {
		case <-ctx.Done():
			return j1939.Frame{}, ctx.Err()
		default:
		}

		if err := d.conn.SetReadTimeout(50 * time.Millisecond); err != nil { // max 50ms block time for read per iteration
			return j1939.Frame{}, err
		}
		frame, err := d.conn.ReadFrame()
		if err != nil {
			if errors.Is(err, errReadTimeout) {
				if d.receiveDataTimeout > 0 && d.timeNow().Sub(start) > d.receiveDataTimeout {
					return j1939.Frame{}, err
				}
				continue
			}
			return j1939.Frame{}, err
		}
		return frame, nil
	}
}
