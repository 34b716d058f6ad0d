package gnss

import (
	"bytes"
	"encoding/binary"
	"testing"
	"time"

	"fieldnode/internal/ubx"
)

// queueTransport hands back pre-queued response frames and records writes.
type queueTransport struct {
	writes [][]byte
	reads  [][]byte
}

func (q *queueTransport) Write(p []byte) error {
	q.writes = append(q.writes, append([]byte(nil), p...))
	return nil
}

func (q *queueTransport) ReadAvailable(p []byte) (int, error) {
	if len(q.reads) == 0 {
		return 0, nil
	}
	chunk := q.reads[0]
	n := copy(p, chunk)
	if n < len(chunk) {
		q.reads[0] = chunk[n:]
	} else {
		q.reads = q.reads[1:]
	}
	return n, nil
}

func (q *queueTransport) queue(t *testing.T, class, id byte, payload []byte) {
	t.Helper()
	frame, st := ubx.Encode(class, id, payload)
	if st != ubx.StatusSuccess {
		t.Fatalf("encode: %v", st)
	}
	q.reads = append(q.reads, frame)
}

func (q *queueTransport) queueAck(t *testing.T, class, id byte) {
	t.Helper()
	q.queue(t, ubx.ClassACK, ubx.IDAckAck, []byte{class, id})
}

func newTestDevice(t *testing.T, tp ubx.Transport) *Device {
	t.Helper()
	d, err := New(tp, Config{MaxWait: 20 * time.Millisecond})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return d
}

func pvtResponse(fixType byte, fixOK bool, siv byte, lat, lon, alt int32) []byte {
	p := make([]byte, 92)
	p[20] = fixType
	if fixOK {
		p[21] = 0x01
	}
	p[23] = siv
	binary.LittleEndian.PutUint32(p[24:], uint32(lon))
	binary.LittleEndian.PutUint32(p[28:], uint32(lat))
	binary.LittleEndian.PutUint32(p[36:], uint32(alt))
	return p
}

func TestDeviceBegin(t *testing.T) {
	tp := &queueTransport{}
	tp.queue(t, ubx.ClassMON, ubx.IDMonVer, make([]byte, 40))
	d := newTestDevice(t, tp)

	if err := d.Begin(); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if len(tp.writes) != 1 {
		t.Fatalf("writes = %d, want 1", len(tp.writes))
	}
	// MON-VER poll is an empty-payload frame for class 0x0A id 0x04.
	if tp.writes[0][2] != ubx.ClassMON || tp.writes[0][3] != ubx.IDMonVer {
		t.Fatalf("polled %02X/%02X", tp.writes[0][2], tp.writes[0][3])
	}
}

func TestDeviceBegin_NoReceiver(t *testing.T) {
	d := newTestDevice(t, &queueTransport{})
	if err := d.Begin(); err == nil {
		t.Fatalf("expected begin to fail with nothing on the bus")
	}
	if len(d.Errors()) != 1 {
		t.Fatalf("error ring has %d entries, want 1", len(d.Errors()))
	}
}

func TestSetNavigationFrequency(t *testing.T) {
	tp := &queueTransport{}
	tp.queueAck(t, ubx.ClassCFG, ubx.IDCfgRate)
	d := newTestDevice(t, tp)

	if err := d.SetNavigationFrequency(4); err != nil {
		t.Fatalf("SetNavigationFrequency: %v", err)
	}
	// measRate for 4 Hz is 250 ms, little-endian in the first payload bytes.
	frame := tp.writes[0]
	if frame[6] != 250 || frame[7] != 0 {
		t.Fatalf("measRate bytes = %d %d, want 250 0", frame[6], frame[7])
	}
}

func TestSetNavigationFrequency_OutOfRange(t *testing.T) {
	d := newTestDevice(t, &queueTransport{})
	if err := d.SetNavigationFrequency(0); err == nil {
		t.Fatalf("expected out of range error for 0 Hz")
	}
	if err := d.SetNavigationFrequency(11); err == nil {
		t.Fatalf("expected out of range error for 11 Hz")
	}
	if len(d.Errors()) != 2 {
		t.Fatalf("error ring has %d entries, want 2", len(d.Errors()))
	}
}

func TestNavigationFrequency(t *testing.T) {
	tp := &queueTransport{}
	// CFG-RATE response: measRate=250ms, navRate=1, timeRef=1.
	tp.queue(t, ubx.ClassCFG, ubx.IDCfgRate, []byte{250, 0, 1, 0, 1, 0})
	d := newTestDevice(t, tp)

	hz, err := d.NavigationFrequency()
	if err != nil {
		t.Fatalf("NavigationFrequency: %v", err)
	}
	if hz != 4 {
		t.Fatalf("hz = %d, want 4", hz)
	}
}

func TestSetAutoPVT(t *testing.T) {
	tp := &queueTransport{}
	tp.queueAck(t, ubx.ClassCFG, ubx.IDCfgMsg)
	d := newTestDevice(t, tp)

	if err := d.SetAutoPVT(true); err != nil {
		t.Fatalf("SetAutoPVT: %v", err)
	}
	if !d.AutoPVT() {
		t.Fatalf("AutoPVT not recorded")
	}
	frame := tp.writes[0]
	if frame[6] != ubx.ClassNAV || frame[7] != ubx.IDNavPVT || frame[8] != 1 {
		t.Fatalf("cfg-msg payload = % X", frame[6:9])
	}
}

func TestSetI2COutput(t *testing.T) {
	tp := &queueTransport{}
	prt := make([]byte, 20)
	prt[0] = ubx.PortDDC
	prt[14] = ubx.ComTypeUBX | ubx.ComTypeNMEA
	tp.queue(t, ubx.ClassCFG, ubx.IDCfgPrt, prt)
	tp.queueAck(t, ubx.ClassCFG, ubx.IDCfgPrt)
	d := newTestDevice(t, tp)

	if err := d.SetI2COutput(ubx.ComTypeUBX); err != nil {
		t.Fatalf("SetI2COutput: %v", err)
	}
	if len(tp.writes) != 2 {
		t.Fatalf("writes = %d, want poll+set", len(tp.writes))
	}
	set := tp.writes[1]
	// Frame payload starts at byte 6; outProtoMask low byte is payload[14].
	if set[6+14] != ubx.ComTypeUBX {
		t.Fatalf("outProtoMask = %02X, want UBX only", set[6+14])
	}
}

func TestPollPVT_CachesAndPreservesOnFailure(t *testing.T) {
	tp := &queueTransport{}
	tp.queue(t, ubx.ClassNAV, ubx.IDNavPVT, pvtResponse(3, true, 9, 449778900, -932128300, 256340))
	d := newTestDevice(t, tp)

	fix, err := d.PollPVT()
	if err != nil {
		t.Fatalf("PollPVT: %v", err)
	}
	if fix.FixType != 3 || !fix.GnssFixOK || fix.SIV != 9 {
		t.Fatalf("fix = %+v", fix)
	}
	if d.Latitude() != 449778900 || d.Longitude() != -932128300 || d.Altitude() != 256340 {
		t.Fatalf("accessors = %d/%d/%d", d.Latitude(), d.Longitude(), d.Altitude())
	}

	// Next poll times out: the cached fix must survive.
	if _, err := d.PollPVT(); err == nil {
		t.Fatalf("expected poll failure with empty bus")
	}
	if got, ok := d.Fix(); !ok || got.SIV != 9 {
		t.Fatalf("cached fix lost after failed poll: %+v ok=%v", got, ok)
	}
}

func TestPollATT(t *testing.T) {
	tp := &queueTransport{}
	att := make([]byte, 32)
	pitch := int32(-10000)
	binary.LittleEndian.PutUint32(att[8:], uint32(int32(250000)))   // roll 2.5 deg
	binary.LittleEndian.PutUint32(att[12:], uint32(pitch))          // pitch -0.1 deg
	binary.LittleEndian.PutUint32(att[16:], uint32(int32(9000000))) // heading 90 deg
	tp.queue(t, ubx.ClassNAV, ubx.IDNavATT, att)
	d := newTestDevice(t, tp)

	got, err := d.PollATT()
	if err != nil {
		t.Fatalf("PollATT: %v", err)
	}
	if got.Roll != 250 || got.Pitch != -10 || got.Heading != 9000 {
		t.Fatalf("att = %+v", got)
	}
	if d.Heading() != 9000 {
		t.Fatalf("heading accessor = %d", d.Heading())
	}
}

func TestPowerOffWithInterrupt_Acknowledged(t *testing.T) {
	tp := &queueTransport{}
	tp.queueAck(t, ubx.ClassRXM, ubx.IDRxmPmreq)
	d := newTestDevice(t, tp)

	if !d.PowerOffWithInterrupt(0, ubx.WakeupEXTINT0, true) {
		t.Fatalf("expected acknowledged power-off to report true")
	}
	frame := tp.writes[0]
	if frame[2] != ubx.ClassRXM || frame[3] != ubx.IDRxmPmreq {
		t.Fatalf("sent %02X/%02X", frame[2], frame[3])
	}
	want := ubx.BuildPowerOff(0, ubx.WakeupEXTINT0, true)
	if !bytes.Equal(frame[6:6+16], want) {
		t.Fatalf("payload = % X, want % X", frame[6:6+16], want)
	}
}

func TestPowerOffWithInterrupt_Nack(t *testing.T) {
	tp := &queueTransport{}
	tp.queue(t, ubx.ClassACK, ubx.IDAckNack, []byte{ubx.ClassRXM, ubx.IDRxmPmreq})
	d := newTestDevice(t, tp)

	if d.PowerOffWithInterrupt(5000, ubx.WakeupUARTRX, false) {
		t.Fatalf("expected nacked power-off to report false")
	}
	if len(d.Errors()) != 1 {
		t.Fatalf("error ring has %d entries, want 1", len(d.Errors()))
	}
}

func TestPowerOff_ConvenienceDefaults(t *testing.T) {
	tp := &queueTransport{}
	tp.queueAck(t, ubx.ClassRXM, ubx.IDRxmPmreq)
	d := newTestDevice(t, tp)

	if !d.PowerOff(0) {
		t.Fatalf("expected acknowledged power-off to report true")
	}
	want := ubx.BuildPowerOff(0, ubx.WakeupEXTINT0, true)
	if !bytes.Equal(tp.writes[0][6:6+16], want) {
		t.Fatalf("reduced form defaults differ from EXTINT0+force")
	}
}
