package ubx

// Validity tracks per-packet verdicts that start undefined and are set once.
type Validity int

const (
	ValidityNotDefined Validity = iota
	ValidityValid
	ValidityNotValid
	// ValidityNotAcknowledged is used only for the class/id match verdict,
	// when the receiver answered with ACK-NACK instead of the expected
	// message.
	ValidityNotAcknowledged
)

func (v Validity) String() string {
	switch v {
	case ValidityNotDefined:
		return "not defined"
	case ValidityValid:
		return "valid"
	case ValidityNotValid:
		return "not valid"
	case ValidityNotAcknowledged:
		return "not acknowledged"
	default:
		return "unknown"
	}
}

// Packet is one UBX message, outgoing or incoming.
//
// Length is the payload byte count declared in the header. For incoming
// messages it may exceed len(Payload): unsolicited or oversized responses are
// consumed and checksummed in full, but only the bytes that fit the buffer
// are stored. Overflow reports whether that truncation happened.
type Packet struct {
	Class byte
	ID    byte

	// Length is the declared payload length, which does not include class,
	// id, or checksum bytes.
	Length uint16

	// Payload holds the stored payload bytes (possibly truncated, see
	// Overflow). Its capacity bounds how much of an incoming message is
	// retained.
	Payload []byte

	ChecksumA byte
	ChecksumB byte

	// ByteCounter counts every byte consumed while parsing this packet, from
	// class through the final checksum byte. Some responses are larger than
	// the buffer; the counter keeps the state machine honest regardless.
	ByteCounter uint16

	// StartingSpot is the payload offset recording begins at. Payload bytes
	// before it are checksummed and counted but not stored.
	StartingSpot uint16

	// Valid goes from not-defined to valid/not-valid when the checksum is
	// checked on completion.
	Valid Validity

	// ClassAndIDMatch goes from not-defined to a verdict once the packet is
	// classified against a requested class/id pair.
	ClassAndIDMatch Validity

	// Overflow is set when payload bytes had to be dropped for lack of
	// buffer capacity.
	Overflow bool
}

// Verify recomputes the checksum over class..payload and compares it to the
// stored checksum bytes. It is only meaningful when the payload was stored
// in full (no Overflow); the decoder checks truncated packets with its
// rolling sums instead.
func (p *Packet) Verify() bool {
	a, b := checksumUpdate(0, 0, p.Class)
	a, b = checksumUpdate(a, b, p.ID)
	a, b = checksumUpdate(a, b, byte(p.Length&0xFF))
	a, b = checksumUpdate(a, b, byte(p.Length>>8))
	for _, c := range p.Payload {
		a, b = checksumUpdate(a, b, c)
	}
	return a == p.ChecksumA && b == p.ChecksumB
}
