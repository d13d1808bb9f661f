package j1939

// Header is decoded view of a 29-bit J1939 CAN identifier.
//
// PGN keeps the extended data page and data page bits (bits 24,25 of the
// identifier) so page 1 PGNs do not collide with page 0 PGNs.
type Header struct {
	PGN         uint32 `json:"pgn"`
	Priority    uint8  `json:"priority"`
	Source      uint8  `json:"source"`
	Destination uint8  `json:"destination"`
}

// CANID encodes header back to a 29-bit CAN identifier.
func (h Header) CANID() uint32 {
	canID := uint32(h.Source) // bits 0-7

	pf := uint8(h.PGN >> 8)
	if pf < 240 { // PDU1, destination address goes into the PDU specific byte
		canID |= uint32(h.Destination) << 8 // bits 8-15
	}
	canID |= h.PGN << 8                 // bits 8-25
	canID |= uint32(h.Priority&7) << 26 // bits 26-28
	return canID
}

// ParseCANID decomposes a 29-bit CAN identifier into its J1939 header fields.
//
// Layout: bits 26-28 priority, bits 24-25 extended data page + data page,
// bits 16-23 PDU format, bits 8-15 PDU specific, bits 0-7 source address.
// When PDU format is below 240 (PDU1) the message is peer-to-peer and the PDU
// specific byte is the destination address. Otherwise (PDU2) the message is a
// broadcast and the PDU specific byte is part of the PGN.
//
// ParseCANID is total over the 29-bit domain: every bit pattern decodes to
// some header, nothing is validated against a PGN registry.
func ParseCANID(canID uint32) Header {
	result := Header{
		Priority: uint8((canID >> 26) & 0x7), // bits 26-28
		Source:   uint8(canID),               // bits 0-7
	}
	ps := uint8(canID >> 8)         // bits 8-15
	pduFormat := uint8(canID >> 16) // bits 16-23
	dp := uint8(canID>>24) & 3      // bits 24,25
	pgn := uint32(dp)<<16 + uint32(pduFormat)<<8
	if pduFormat < 240 {
		result.Destination = ps
		result.PGN = pgn
	} else {
		result.Destination = AddressGlobal // broadcast to all
		result.PGN = pgn + uint32(ps)
	}
	return result
}
