package aggregate

import (
	"encoding/binary"
	"errors"
)

// NodeName is decoded view of the 64-bit NAME value carried in the 8 byte
// ISO Address Claim (PGN 60928) payload.
// Related info about SAE J1939 addresses: https://embeddedflakes.com/network-management-in-sae-j1939/
type NodeName struct {
	IdentityNumber   uint32 // unique identity number (21 bits)
	ManufacturerCode uint16 // device manufacturer (11 bits)
	ECUInstance      uint8  // (3 bits)
	FunctionInstance uint8  // (5 bits)
	Function         uint8  // (8 bits)
	// reserved (1 bit)
	VehicleSystem         uint8 // (7 bits)
	VehicleSystemInstance uint8 // (4 bits)
	IndustryGroup         uint8 // (3 bits)

	// ArbitraryAddressCapable indicates the node can resolve an address claim
	// conflict by moving to another address in the 128-247 range.
	ArbitraryAddressCapable uint8 // (1 bit)
}

// DecodeNodeName decodes 8 byte Address Claim payload (little-endian NAME)
// into its bit fields.
func DecodeNodeName(data []byte) (NodeName, error) {
	if len(data) != 8 {
		return NodeName{}, errors.New("NAME payload must be exactly 8 bytes")
	}
	return NodeName{
		IdentityNumber:          uint32(data[0]) | uint32(data[1])<<8 | uint32(data[2]&0b11111)<<16,
		ManufacturerCode:        uint16(data[2]>>5) | uint16(data[3])<<3,
		ECUInstance:             data[4] & 0b111,
		FunctionInstance:        data[4] >> 3,
		Function:                data[5],
		VehicleSystem:           data[6] >> 1,
		VehicleSystemInstance:   data[7] & 0b1111,
		IndustryGroup:           (data[7] >> 4) & 0b111,
		ArbitraryAddressCapable: data[7] >> 7,
	}, nil
}

// Bytes encodes name back to the 8 byte Address Claim payload form.
func (n NodeName) Bytes() []byte {
	return []byte{
		uint8(n.IdentityNumber),
		uint8(n.IdentityNumber >> 8),
		uint8(n.IdentityNumber>>16)&0b11111 | uint8(n.ManufacturerCode&0b111)<<5,
		uint8(n.ManufacturerCode >> 3),
		n.ECUInstance&0b111 | n.FunctionInstance<<3,
		n.Function,
		n.VehicleSystem << 1,
		n.VehicleSystemInstance&0b1111 | (n.IndustryGroup&0b111)<<4 | n.ArbitraryAddressCapable<<7,
	}
}

// Uint64 returns the NAME as single value, as it is compared during the
// address claim arbitration (lower value wins).
func (n NodeName) Uint64() uint64 {
	return binary.LittleEndian.Uint64(n.Bytes())
}
