package ubx

// Encode serializes an outgoing message into wire bytes:
// sync1 sync2 class id lenLow lenHigh payload... cksumA cksumB.
func Encode(class, id byte, payload []byte) ([]byte, Status) {
	if len(payload) > MaxPayload {
		return nil, StatusInvalidArg
	}
	out := make([]byte, 0, 2+headerLen+len(payload)+checksumLen)
	out = append(out, sync1, sync2, class, id, byte(len(payload)&0xFF), byte(len(payload)>>8))
	out = append(out, payload...)
	a, b := Checksum(class, id, payload)
	out = append(out, a, b)
	return out, StatusSuccess
}

type decodeState int

const (
	waitSync1 decodeState = iota
	waitSync2
	waitClass
	waitID
	waitLen1
	waitLen2
	waitPayload
	waitChecksumA
	waitChecksumB
	complete
)

// Decoder is the byte-at-a-time receive state machine. It is restarted per
// command and owns the packet it fills in; it is not safe for concurrent
// use.
//
// Resync policy: a byte that is not the expected sync byte does not abort
// anything, the decoder just keeps scanning for 0xB5 0x62.
type Decoder struct {
	state decodeState
	pkt   Packet

	// Rolling checksum over class..payload. Kept separately from the packet
	// because dropped overflow bytes still contribute to it.
	ckA byte
	ckB byte

	// payloadIdx is the index of the next payload byte within the declared
	// payload (0..Length-1), independent of what fits the buffer.
	payloadIdx uint16
}

// NewDecoder returns a decoder whose packet buffer holds capacity bytes.
func NewDecoder(capacity int) *Decoder {
	if capacity <= 0 || capacity > MaxPayload {
		capacity = MaxPayload
	}
	d := &Decoder{}
	d.pkt.Payload = make([]byte, 0, capacity)
	return d
}

// Reset rearms the decoder for a fresh packet, keeping the buffer.
func (d *Decoder) Reset(startingSpot uint16) {
	buf := d.pkt.Payload[:0]
	d.pkt = Packet{Payload: buf, StartingSpot: startingSpot}
	d.state = waitSync1
	d.ckA, d.ckB = 0, 0
	d.payloadIdx = 0
}

// SetCapacity re-sizes the payload buffer. Takes effect on the next Reset.
func (d *Decoder) SetCapacity(capacity int) {
	if capacity <= 0 || capacity > MaxPayload {
		capacity = MaxPayload
	}
	d.pkt.Payload = make([]byte, 0, capacity)
}

// Packet returns the packet currently being filled. The decoder retains
// ownership; callers must copy anything they keep past the next Reset.
func (d *Decoder) Packet() *Packet {
	return &d.pkt
}

// Feed consumes one wire byte and reports whether it completed a packet. On
// completion the packet's Valid field holds the checksum verdict; the decoder
// stays parked until Reset.
func (d *Decoder) Feed(c byte) bool {
	switch d.state {
	case waitSync1:
		if c == sync1 {
			d.state = waitSync2
		}
	case waitSync2:
		switch c {
		case sync2:
			d.state = waitClass
		case sync1:
			// Stay: 0xB5 0xB5 0x62 is still a valid frame start.
		default:
			d.state = waitSync1
		}
	case waitClass:
		d.pkt.Class = c
		d.pkt.ByteCounter++
		d.ckA, d.ckB = checksumUpdate(d.ckA, d.ckB, c)
		d.state = waitID
	case waitID:
		d.pkt.ID = c
		d.pkt.ByteCounter++
		d.ckA, d.ckB = checksumUpdate(d.ckA, d.ckB, c)
		d.state = waitLen1
	case waitLen1:
		d.pkt.Length = uint16(c)
		d.pkt.ByteCounter++
		d.ckA, d.ckB = checksumUpdate(d.ckA, d.ckB, c)
		d.state = waitLen2
	case waitLen2:
		d.pkt.Length |= uint16(c) << 8
		d.pkt.ByteCounter++
		d.ckA, d.ckB = checksumUpdate(d.ckA, d.ckB, c)
		if d.pkt.Length == 0 {
			d.state = waitChecksumA
		} else {
			d.state = waitPayload
		}
	case waitPayload:
		d.pkt.ByteCounter++
		d.ckA, d.ckB = checksumUpdate(d.ckA, d.ckB, c)
		if d.payloadIdx >= d.pkt.StartingSpot {
			rec := int(d.payloadIdx - d.pkt.StartingSpot)
			if rec < cap(d.pkt.Payload) {
				d.pkt.Payload = append(d.pkt.Payload, c)
			} else {
				// Counted and checksummed, but there is nowhere to put it.
				d.pkt.Overflow = true
			}
		}
		d.payloadIdx++
		if d.payloadIdx == d.pkt.Length {
			d.state = waitChecksumA
		}
	case waitChecksumA:
		d.pkt.ChecksumA = c
		d.pkt.ByteCounter++
		d.state = waitChecksumB
	case waitChecksumB:
		d.pkt.ChecksumB = c
		d.pkt.ByteCounter++
		if d.pkt.ChecksumA == d.ckA && d.pkt.ChecksumB == d.ckB {
			d.pkt.Valid = ValidityValid
		} else {
			d.pkt.Valid = ValidityNotValid
		}
		d.state = complete
		return true
	case complete:
		// Parked until Reset; the completed packet must not be disturbed.
	}
	return false
}
