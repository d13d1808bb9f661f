// Package candump implements the plain-text line format written by the
// can-utils `candump -l` tool, one CAN frame per line:
//
//	(1553794338.014188) vcan0 0C20130B#FCFFFA77FFFFFFFF
package candump

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"

	j1939 "github.com/truckbus/go-j1939-candump"
)

// MalformedLineError is returned for log lines that do not match the candump
// grammar. It identifies the offending line so callers can diagnose and skip
// it without aborting the rest of the log.
type MalformedLineError struct {
	Line int    // 1-based line number in the log
	Text string // offending line content
	Err  error
}

func (e *MalformedLineError) Error() string {
	return fmt.Sprintf("malformed candump line %d: %q, err: %v", e.Line, e.Text, e.Err)
}

func (e *MalformedLineError) Unwrap() error {
	return e.Err
}

// ParseLine parses one candump log line of shape `(<timestamp>) <channel> <id>#<data>`
// into a frame. The identifier must fit in 29 bits and the payload hex must
// decode to at most 8 bytes.
func ParseLine(raw string) (j1939.Frame, error) {
	parts := strings.Fields(raw)
	if len(parts) != 3 {
		return j1939.Frame{}, errors.New("line does not have `(timestamp) channel id#data` shape")
	}

	ts := parts[0]
	if len(ts) < 3 || ts[0] != '(' || ts[len(ts)-1] != ')' {
		return j1939.Frame{}, errors.New("timestamp is not wrapped in parentheses")
	}
	timestamp, err := strconv.ParseFloat(ts[1:len(ts)-1], 64)
	if err != nil {
		return j1939.Frame{}, fmt.Errorf("invalid timestamp, err: %w", err)
	}

	idRaw, dataRaw, found := strings.Cut(parts[2], "#")
	if !found {
		return j1939.Frame{}, errors.New("missing `#` separator between identifier and data")
	}
	id, err := strconv.ParseUint(idRaw, 16, 32)
	if err != nil {
		return j1939.Frame{}, fmt.Errorf("invalid identifier, err: %w", err)
	}
	if uint32(id) > j1939.CANIDMax {
		return j1939.Frame{}, fmt.Errorf("identifier %X does not fit in 29 bits", id)
	}

	data, err := hex.DecodeString(dataRaw)
	if err != nil {
		return j1939.Frame{}, fmt.Errorf("invalid payload hex, err: %w", err)
	}
	if len(data) > 8 {
		return j1939.Frame{}, fmt.Errorf("payload is %d bytes, CAN frame carries at most 8", len(data))
	}

	return j1939.Frame{
		Time:    timestamp,
		Channel: parts[1],
		ID:      uint32(id),
		Data:    data,
	}, nil
}

// MarshalFrame renders frame back to candump line form. Identifier and
// payload hex round-trip exactly for any line accepted by ParseLine, the
// timestamp is normalized to 6 decimal places as candump itself writes it.
func MarshalFrame(f j1939.Frame) string {
	return fmt.Sprintf("(%.6f) %s %08X#%X", f.Time, f.Channel, f.ID, f.Data)
}
