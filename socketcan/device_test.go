package socketcan

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	j1939 "github.com/truckbus/go-j1939-candump"
)

type stubConnection struct {
	frames       []j1939.Frame
	timeoutsLeft int
}

func (c *stubConnection) SetReadTimeout(timeout time.Duration) error {
	return nil
}

func (c *stubConnection) ReadFrame() (j1939.Frame, error) {
	if c.timeoutsLeft > 0 {
		c.timeoutsLeft--
		return j1939.Frame{}, errReadTimeout
	}
	if len(c.frames) == 0 {
		return j1939.Frame{}, errReadTimeout
	}
	frame := c.frames[0]
	c.frames = c.frames[1:]
	return frame, nil
}

func (c *stubConnection) Close() error {
	return nil
}

func testDevice(conn connection) *Device {
	now := time.Unix(1553794338, 0)
	return &Device{
		conn:               conn,
		ifName:             "vcan0",
		receiveDataTimeout: 5 * time.Second,
		timeNow: func() time.Time {
			// each call advances the clock by one second
			now = now.Add(1 * time.Second)
			return now
		},
	}
}

func TestDeviceReadFrameRetriesThroughTimeouts(t *testing.T) {
	conn := &stubConnection{
		frames:       []j1939.Frame{{ID: 0x0C20130B, Channel: "vcan0"}},
		timeoutsLeft: 3,
	}
	device := testDevice(conn)

	frame, err := device.ReadFrame(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, uint32(0x0C20130B), frame.ID)
}

func TestDeviceReadFrameGivesUpAfterReceiveDataTimeout(t *testing.T) {
	conn := &stubConnection{timeoutsLeft: 100}
	device := testDevice(conn)

	_, err := device.ReadFrame(context.Background())

	assert.ErrorIs(t, err, errReadTimeout)
}

// zero receive data timeout means a silent bus is waited out until a frame
// arrives or the context is cancelled
func TestDeviceReadFrameZeroTimeoutWaitsForTraffic(t *testing.T) {
	conn := &stubConnection{
		frames:       []j1939.Frame{{ID: 0x18FECA00, Channel: "vcan0"}},
		timeoutsLeft: 30, // well past the default 5s limit on the stub clock
	}
	device := testDevice(conn)
	device.SetReceiveDataTimeout(0)

	frame, err := device.ReadFrame(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, uint32(0x18FECA00), frame.ID)
}

func TestDeviceReadFrameContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	device := testDevice(&stubConnection{timeoutsLeft: 100})
	device.SetReceiveDataTimeout(0)

	_, err := device.ReadFrame(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
