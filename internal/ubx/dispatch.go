package ubx

import (
	"fmt"
	"time"
)

var (
	sleep = time.Sleep
	now   = time.Now
)

// DefaultMaxWait is how long a command waits for its answer unless the
// caller says otherwise.
const DefaultMaxWait = 1100 * time.Millisecond

// Transport is the byte pipe to the receiver. Write pushes a full frame;
// ReadAvailable drains whatever bytes are pending (possibly zero) without
// blocking beyond a short bound.
type Transport interface {
	Write(p []byte) error
	ReadAvailable(p []byte) (int, error)
}

// Dispatcher runs one command at a time against a transport: encode, write,
// then poll the receive side through the decoder until the expected answer,
// a NACK, or the deadline.
//
// A dispatcher is single-writer single-reader: one command in flight, no
// internal queueing. Callers needing concurrency serialize outside (one
// dispatcher per physical receiver, mutex at the call site).
type Dispatcher struct {
	tp  Transport
	dec *Decoder

	inFlight bool

	// pollInterval is the pause between empty reads.
	pollInterval time.Duration
}

func NewDispatcher(tp Transport) *Dispatcher {
	return &Dispatcher{
		tp:           tp,
		dec:          NewDecoder(MaxPayload),
		pollInterval: 2 * time.Millisecond,
	}
}

// SetPayloadCapacity re-sizes the receive buffer used for subsequent
// commands.
func (d *Dispatcher) SetPayloadCapacity(n int) {
	if d == nil || d.dec == nil {
		return
	}
	d.dec.SetCapacity(n)
}

// SendCommand writes out and waits up to maxWait for the matching response.
//
// The returned Status is the single terminal outcome for this invocation:
//
//   - StatusDataReceived / StatusDataSent: the expected message (or its ACK)
//     arrived checksum-clean; for data-bearing responses the payload has
//     been copied into out.
//   - StatusDataOverwritten: as above, but the response payload did not fit
//     the receive buffer and was truncated.
//   - StatusCommandNack: the receiver answered ACK-NACK.
//   - StatusCrcFail: only corrupted frames arrived before the deadline.
//   - StatusTimeout: nothing relevant arrived before the deadline.
//   - StatusI2CCommFailure: the transport itself failed.
//   - StatusInvalidArg / StatusInvalidOperation: caller errors.
//
// Unrelated well-formed traffic is discarded and the wait continues; a
// corrupted frame likewise does not end the wait, since the real answer may
// still be on the wire.
func (d *Dispatcher) SendCommand(out *Packet, maxWait time.Duration) Status {
	if d == nil || d.tp == nil || out == nil {
		return StatusFail
	}
	if d.inFlight {
		return StatusInvalidOperation
	}
	d.inFlight = true
	defer func() { d.inFlight = false }()

	if maxWait <= 0 {
		maxWait = DefaultMaxWait
	}

	frame, st := Encode(out.Class, out.ID, out.Payload)
	if st != StatusSuccess {
		return st
	}
	if err := d.tp.Write(frame); err != nil {
		return StatusI2CCommFailure
	}

	d.dec.Reset(out.StartingSpot)
	deadline := now().Add(maxWait)
	crcSeen := false

	var buf [64]byte
	for {
		n, err := d.tp.ReadAvailable(buf[:])
		if err != nil {
			return StatusI2CCommFailure
		}
		for _, c := range buf[:n] {
			if !d.dec.Feed(c) {
				continue
			}
			pkt := d.dec.Packet()
			if pkt.Valid != ValidityValid {
				// Corrupted frame. Remember it, keep scanning: another
				// attempt at the expected message may still arrive.
				crcSeen = true
				d.dec.Reset(out.StartingSpot)
				continue
			}
			switch {
			case Classify(pkt, out.Class, out.ID) == ValidityValid:
				return d.resolve(out, pkt)
			case pkt.ClassAndIDMatch == ValidityNotAcknowledged:
				return StatusCommandNack
			case IsAckFor(pkt, out.Class, out.ID):
				return StatusDataSent
			default:
				// Unsolicited or different message; not our answer.
				d.dec.Reset(out.StartingSpot)
			}
		}
		if now().After(deadline) {
			if crcSeen {
				return StatusCrcFail
			}
			return StatusTimeout
		}
		if n == 0 {
			sleep(d.pollInterval)
		}
	}
}

// resolve copies the matched response into the caller's packet and picks the
// terminal outcome. The decoder's packet is reused afterwards; the caller
// keeps only the copy.
func (d *Dispatcher) resolve(out, pkt *Packet) Status {
	out.Length = pkt.Length
	out.Payload = append(out.Payload[:0], pkt.Payload...)
	out.ChecksumA = pkt.ChecksumA
	out.ChecksumB = pkt.ChecksumB
	out.ByteCounter = pkt.ByteCounter
	out.Valid = pkt.Valid
	out.ClassAndIDMatch = pkt.ClassAndIDMatch
	out.Overflow = pkt.Overflow

	if pkt.Overflow {
		return StatusDataOverwritten
	}
	if pkt.Length > 0 {
		return StatusDataReceived
	}
	return StatusDataSent
}

// Err wraps a non-OK status for callers that want an error value at package
// boundaries.
func Err(op string, s Status) error {
	if s.OK() {
		return nil
	}
	return fmt.Errorf("%s: %s", op, s)
}
