// Package socketcan reads and writes CAN frames through a Linux SocketCAN
// raw socket. It is the live-capture collaborator for the candump processing
// core: frames are delivered one at a time in arrival order.
package socketcan

import (
	"encoding/binary"
	"errors"
	"fmt"
	"net"
	"syscall"
	"time"

	j1939 "github.com/truckbus/go-j1939-candump"
	"golang.org/x/sys/unix"
)

const (
	canRaw = 1

	// canIDMask selects bits 0-28 belonging to the CAN ID from SocketCAN id field
	canIDMask = uint32(1<<29 - 1)
	// canIDERRFlag is bit 29 and marks an error message frame
	canIDERRFlag = uint32(1 << 29)
	// canIDRTRFlag is bit 30 and marks a remote transmission request frame
	canIDRTRFlag = uint32(1 << 30)
	// canIDEFFFlag is bit 31 and marks extended frame format (29-bit identifier)
	canIDEFFFlag = uint32(1 << 31)

	canFrameSize = 16
)

type Connection struct {
	socketFD int
	ifName   string
	timeNow  func() time.Time
}

func NewConnection(ifName string) (*Connection, error) {
	ifi, err := net.InterfaceByName(ifName)
	if err != nil {
		return nil, fmt.Errorf("bad ifName: %w", err)
	}

	fd, err := unix.Socket(unix.AF_CAN, unix.SOCK_RAW, canRaw)
	if err != nil {
		return nil, fmt.Errorf("could not create CAN socket: %w", err)
	}

	addr := &unix.SockaddrCAN{Ifindex: ifi.Index}
	if err = unix.Bind(fd, addr); err != nil {
		return nil, fmt.Errorf("could not bind CAN socket: %w", err)
	}

	return &Connection{
		socketFD: fd,
		ifName:   ifName,
		timeNow:  time.Now,
	}, nil
}

func isContinuableSocketErr(err error) bool {
	// EWOULDBLOCK - a receive or send with SO_RCVTIMEO/SO_SNDTIMEO set returns
	// EWOULDBLOCK when the timeout elapses without data

	// EINTR - a signal during a blocking operation can make it return failure
	// with errno EINTR having done nothing

	return err == syscall.EWOULDBLOCK || err == syscall.EINTR
}

var errReadTimeout = errors.New("read timeout")
var errWriteTimeout = errors.New("write timeout")

func (c Connection) SetReadTimeout(timeout time.Duration) error {
	return c.setSocketTimeout(unix.SO_RCVTIMEO, timeout)
}

func (c Connection) SetSendTimeout(timeout time.Duration) error {
	return c.setSocketTimeout(unix.SO_SNDTIMEO, timeout)
}

func (c Connection) setSocketTimeout(opt int, timeout time.Duration) error {
	tv := unix.NsecToTimeval(timeout.Nanoseconds())
	return unix.SetsockoptTimeval(c.socketFD, unix.SOL_SOCKET, opt, &tv)
}

func (c Connection) Close() error {
	return unix.Close(c.socketFD)
}

// SendFrame writes single frame to the bus as an extended frame format
// (29-bit identifier) frame.
func (c Connection) SendFrame(frame j1939.Frame) error {
	canFrame, err := marshalCANFrame(frame)
	if err != nil {
		return err
	}
	_, err = unix.Write(c.socketFD, canFrame)
	if isContinuableSocketErr(err) {
		return errWriteTimeout
	}
	return err
}

// ReadFrame blocks until next frame arrives from the bus (or the read
// timeout elapses). RTR and error message frames are reported as errors.
func (c Connection) ReadFrame() (j1939.Frame, error) {
	canFrame := make([]byte, canFrameSize)
	_, err := unix.Read(c.socketFD, canFrame)
	if err != nil {
		if isContinuableSocketErr(err) {
			return j1939.Frame{}, errReadTimeout
		}
		return j1939.Frame{}, err
	}
	now := c.timeNow()
	return unmarshalCANFrame(canFrame, unixSeconds(now), c.ifName)
}

func unixSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}

// marshalCANFrame encodes frame to the Linux SocketCAN `struct can_frame`
// layout: bytes 0-3 CAN ID + flags (little endian), byte 4 data length,
// bytes 8-15 data.
func marshalCANFrame(frame j1939.Frame) ([]byte, error) {
	if frame.ID > j1939.CANIDMax {
		return nil, fmt.Errorf("identifier %X does not fit in 29 bits", frame.ID)
	}
	if len(frame.Data) > 8 {
		return nil, fmt.Errorf("data is %d bytes, CAN frame carries at most 8", len(frame.Data))
	}
	canFrame := make([]byte, canFrameSize)

	// bit 29 is ERR error message flag (0 = data frame, 1 = error message)
	// bit 30 is RTR remote transmission request (1 = rtr frame)
	// bit 31 is EFF extended frame format flag (0 = standard 11 bit, 1 = extended 29 bit)
	canID := frame.ID | canIDEFFFlag
	binary.LittleEndian.PutUint32(canFrame[0:4], canID) // FIXME: for big-endian arch (mips64, ppc64) this should be big-endian

	canFrame[4] = uint8(len(frame.Data))
	copy(canFrame[8:], frame.Data)
	return canFrame, nil
}

func unmarshalCANFrame(canFrame []byte, timestamp float64, channel string) (j1939.Frame, error) {
	if len(canFrame) < canFrameSize {
		return j1939.Frame{}, fmt.Errorf("CAN frame needs %d bytes, got %d", canFrameSize, len(canFrame))
	}
	canID := binary.LittleEndian.Uint32(canFrame[0:4])
	if canID&canIDRTRFlag != 0 {
		return j1939.Frame{}, errors.New("read CAN remote transmission request frame")
	}
	if canID&canIDERRFlag != 0 {
		return j1939.Frame{}, errors.New("read CAN error message frame")
	}

	length := canFrame[4]
	if length > 8 {
		return j1939.Frame{}, fmt.Errorf("CAN frame data length %d is out of range", length)
	}
	data := make([]byte, length)
	copy(data, canFrame[8:8+length])

	return j1939.Frame{
		Time:    timestamp,
		Channel: channel,
		ID:      canID & canIDMask,
		Data:    data,
	}, nil
}
