package socketcan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	j1939 "github.com/truckbus/go-j1939-candump"
)

func TestMarshalCANFrame(t *testing.T) {
	var testCases = []struct {
		name        string
		when        j1939.Frame
		expect      []byte
		expectError string
	}{
		{
			name: "ok",
			when: j1939.Frame{
				ID:   0x0C20130B,
				Data: []byte{0xFC, 0xFF, 0xFA, 0x77, 0xFF, 0xFF, 0xFF, 0xFF},
			},
			expect: []byte{
				0x0B, 0x13, 0x20, 0x8C, // 0x0C20130B | EFF flag, little endian
				8, 0, 0, 0,
				0xFC, 0xFF, 0xFA, 0x77, 0xFF, 0xFF, 0xFF, 0xFF,
			},
		},
		{
			name: "ok, short data",
			when: j1939.Frame{
				ID:   0x18EAFFFE,
				Data: []byte{0x00, 0xEE, 0x00},
			},
			expect: []byte{
				0xFE, 0xFF, 0xEA, 0x98,
				3, 0, 0, 0,
				0x00, 0xEE, 0x00, 0, 0, 0, 0, 0,
			},
		},
		{
			name:        "nok, identifier does not fit in 29 bits",
			when:        j1939.Frame{ID: 0x2C20130B},
			expectError: "identifier 2C20130B does not fit in 29 bits",
		},
		{
			name:        "nok, too much data",
			when:        j1939.Frame{ID: 0x0C20130B, Data: make([]byte, 9)},
			expectError: "data is 9 bytes, CAN frame carries at most 8",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := marshalCANFrame(tc.when)
			if tc.expectError != "" {
				assert.EqualError(t, err, tc.expectError)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.expect, result)
		})
	}
}

func TestUnmarshalCANFrame(t *testing.T) {
	var testCases = []struct {
		name        string
		when        []byte
		expect      j1939.Frame
		expectError string
	}{
		{
			name: "ok",
			when: []byte{
				0x0B, 0x13, 0x20, 0x8C,
				8, 0, 0, 0,
				0xFC, 0xFF, 0xFA, 0x77, 0xFF, 0xFF, 0xFF, 0xFF,
			},
			expect: j1939.Frame{
				Time:    1553794338.5,
				Channel: "vcan0",
				ID:      0x0C20130B,
				Data:    []byte{0xFC, 0xFF, 0xFA, 0x77, 0xFF, 0xFF, 0xFF, 0xFF},
			},
		},
		{
			name:        "nok, RTR frame",
			when:        []byte{0x0B, 0x13, 0x20, 0x4C, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0},
			expectError: "read CAN remote transmission request frame",
		},
		{
			name:        "nok, error message frame",
			when:        []byte{0x0B, 0x13, 0x20, 0x2C, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0},
			expectError: "read CAN error message frame",
		},
		{
			name:        "nok, truncated",
			when:        []byte{0x0B, 0x13},
			expectError: "CAN frame needs 16 bytes, got 2",
		},
		{
			name:        "nok, data length out of range",
			when:        []byte{0x0B, 0x13, 0x20, 0x8C, 9, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0},
			expectError: "CAN frame data length 9 is out of range",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := unmarshalCANFrame(tc.when, 1553794338.5, "vcan0")
			if tc.expectError != "" {
				assert.EqualError(t, err, tc.expectError)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.expect, result)
		})
	}
}

func TestMarshalCANFrameRoundTrip(t *testing.T) {
	frame := j1939.Frame{
		Time:    42.25,
		Channel: "can0",
		ID:      0x18FECA00,
		Data:    []byte{0xFF, 0xFF, 0x00, 0x00, 0x00, 0x00, 0xFF, 0xFF},
	}

	b, err := marshalCANFrame(frame)
	assert.NoError(t, err)

	again, err := unmarshalCANFrame(b, 42.25, "can0")
	assert.NoError(t, err)
	assert.Equal(t, frame, again)
}
