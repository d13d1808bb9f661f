package j1939

// CANIDMax is the largest valid 29-bit (extended frame format) CAN identifier.
// J1939 uses extended identifiers exclusively, candump logs them as up to
// 8 hex characters.
const CANIDMax = uint32(1<<29 - 1)

const (
	// AddressGlobal is destination address for broadcast (PDU2) messages.
	AddressGlobal = uint8(255)
	// AddressNull is source address used by nodes that have not yet claimed
	// an address on the bus.
	AddressNull = uint8(254)
)

type PGN uint32

const (
	// PGNISOAddressClaim (NAME) is broadcast by a node to claim its source
	// address. The 8 byte payload is the 64-bit NAME identity of the node.
	PGNISOAddressClaim PGN = 60928 // 0xEE00
	// PGNISORequest asks a node (or all nodes) to send given PGN.
	PGNISORequest PGN = 59904 // 0xEA00
)

// Frame is single CAN frame as it appears on one candump log line. Data is
// raw payload bytes, at most 8 for classic CAN. Frame is not interpreted
// beyond its identifier, decode the identifier with ParseCANID.
type Frame struct {
	// Time is unix timestamp (seconds, with fraction) recorded by the logger.
	Time float64
	// Channel is bus interface name the frame was captured from (e.g. can0).
	// Opaque to this library.
	Channel string
	// ID is 29-bit CAN identifier.
	ID uint32
	// Data is 0 to 8 payload bytes.
	Data []byte
}

// Header decodes the frame's 29-bit identifier into its J1939 fields.
func (f Frame) Header() Header {
	return ParseCANID(f.ID)
}
