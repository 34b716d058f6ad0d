package ubx

// Classify judges a completed packet against the class/id pair a command is
// waiting for. The verdict is sticky: it is recorded on the packet and
// returned.
//
//   - ValidityValid: this is the expected message.
//   - ValidityNotAcknowledged: the fixed ACK-NACK pair; the receiver refused
//     the command.
//   - ValidityNotValid: unrelated traffic. Not an answer, but not fatal;
//     the caller keeps scanning.
func Classify(p *Packet, requestedClass, requestedID byte) Validity {
	switch {
	case p.Class == requestedClass && p.ID == requestedID:
		p.ClassAndIDMatch = ValidityValid
	case p.Class == ClassACK && p.ID == IDAckNack:
		p.ClassAndIDMatch = ValidityNotAcknowledged
	default:
		p.ClassAndIDMatch = ValidityNotValid
	}
	return p.ClassAndIDMatch
}

// IsAckFor reports whether p is an ACK-ACK whose payload echoes the given
// class/id, i.e. the receiver acknowledged that specific command.
func IsAckFor(p *Packet, class, id byte) bool {
	return p.Class == ClassACK && p.ID == IDAckAck &&
		len(p.Payload) >= 2 && p.Payload[0] == class && p.Payload[1] == id
}
