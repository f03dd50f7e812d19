// Package livecan reads frames off a Linux SocketCAN interface and decodes
// them against generator-time planner.AccessorPlan values, for ad-hoc bus
// inspection. The dbcgen command does not use it. It is adapted from
// go-nmea-client's socketcan transport: the same raw-socket plumbing,
// generalised from NMEA2000 PGN framing to plain generic CAN IDs.
package livecan

import (
	"encoding/binary"
	"errors"
	"fmt"
	"net"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

const (
	canRaw = 1

	canIDMask    = uint32(0b111) << 29
	canIDERRFlag = uint32(1 << 29)
	canIDRTRFlag = uint32(1 << 30)
	canIDEFFFlag = uint32(1 << 31)
)

// Frame is one generic CAN frame: an identifier (11 or 29 bit), the
// extended flag and up to 8 bytes of payload.
type Frame struct {
	Time     time.Time
	ID       uint32
	Extended bool
	Data     [8]byte
	Length   uint8
}

// Payload returns the frame's data truncated to its declared length.
func (f Frame) Payload() []byte {
	return f.Data[:f.Length]
}

var (
	errReadTimeout  = errors.New("livecan: read timeout")
	errWriteTimeout = errors.New("livecan: write timeout")

	// errNonDataFrame marks a frame ReadFrame declined to decode (an RTR
	// or error frame); Decoder.Run treats it the same as errReadTimeout.
	errNonDataFrame = errors.New("livecan: read a non-data frame")
)

// Connection is a bound SocketCAN raw socket.
type Connection struct {
	socketFD int
	timeNow  func() time.Time
}

// NewConnection opens and binds a raw CAN socket on the named interface,
// e.g. "can0" or "vcan0".
func NewConnection(ifName string) (*Connection, error) {
	ifi, err := net.InterfaceByName(ifName)
	if err != nil {
		return nil, fmt.Errorf("livecan: bad interface name: %w", err)
	}

	fd, err := unix.Socket(unix.AF_CAN, unix.SOCK_RAW, canRaw)
	if err != nil {
		return nil, fmt.Errorf("livecan: could not create CAN socket: %w", err)
	}

	addr := &unix.SockaddrCAN{Ifindex: ifi.Index}
	if err := unix.Bind(fd, addr); err != nil {
		return nil, fmt.Errorf("livecan: could not bind CAN socket: %w", err)
	}

	return &Connection{socketFD: fd, timeNow: time.Now}, nil
}

func isContinuableSocketErr(err error) bool {
	return err == syscall.EWOULDBLOCK || err == syscall.EINTR
}

// SetReadTimeout bounds how long ReadFrame blocks for; ReadFrame returns
// errReadTimeout (checked via errors.Is by Decoder.Run) when it elapses.
func (c *Connection) SetReadTimeout(timeout time.Duration) error {
	tv := unix.NsecToTimeval(timeout.Nanoseconds())
	return unix.SetsockoptTimeval(c.socketFD, unix.SOL_SOCKET, unix.SO_RCVTIMEO, &tv)
}

func (c *Connection) Close() error {
	return unix.Close(c.socketFD)
}

// WriteFrame sends one frame, setting the EFF flag when Extended is set.
func (c *Connection) WriteFrame(f Frame) error {
	canFrame := make([]byte, 16)
	id := f.ID
	if f.Extended {
		id |= canIDEFFFlag
	}
	binary.LittleEndian.PutUint32(canFrame[0:4], id)
	canFrame[4] = f.Length
	copy(canFrame[8:], f.Data[:f.Length])

	_, err := unix.Write(c.socketFD, canFrame)
	if isContinuableSocketErr(err) {
		return errWriteTimeout
	}
	return err
}

// ReadFrame blocks for up to the last SetReadTimeout duration and returns
// one received frame. RTR and error frames are reported as errNonDataFrame
// rather than decoded; Decoder.Run treats that the same as a read timeout.
func (c *Connection) ReadFrame() (Frame, error) {
	canFrame := make([]byte, 16)
	_, err := unix.Read(c.socketFD, canFrame)
	if err != nil {
		if isContinuableSocketErr(err) {
			return Frame{}, errReadTimeout
		}
		return Frame{}, err
	}

	rawID := binary.LittleEndian.Uint32(canFrame[0:4])
	if rawID&canIDRTRFlag != 0 || rawID&canIDERRFlag != 0 {
		return Frame{}, errNonDataFrame
	}

	f := Frame{
		Time:     c.timeNow(),
		Extended: rawID&canIDEFFFlag != 0,
		ID:       rawID &^ canIDMask,
		Length:   canFrame[4],
	}
	copy(f.Data[:], canFrame[8:8+f.Length])
	return f, nil
}
