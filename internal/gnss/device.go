package gnss

import (
	"fmt"
	"time"

	"fieldnode/internal/hw"
	"fieldnode/internal/ubx"
)

// Config controls the device layer. Zero values get sane defaults.
type Config struct {
	// MaxWait bounds how long each command waits for its response.
	MaxWait time.Duration

	// PayloadCapacity sizes the receive buffer. MON-VER needs >= 250 bytes
	// on newer receivers.
	PayloadCapacity int
}

// Device drives one GNSS receiver through the UBX command dispatcher.
//
// It caches the most recent successfully decoded navigation and attitude
// solutions; a failed poll never clobbers the cache. All methods are
// synchronous and must be serialized by the caller (one Device per physical
// receiver).
type Device struct {
	disp    *ubx.Dispatcher
	maxWait time.Duration

	fix    ubx.NavigationFix
	hasFix bool
	att    ubx.AttitudeFix
	hasAtt bool

	autoPVT bool

	errs *hw.ErrorRing
}

func New(tp ubx.Transport, cfg Config) (*Device, error) {
	if tp == nil {
		return nil, fmt.Errorf("gnss: transport is nil")
	}
	d := &Device{
		disp:    ubx.NewDispatcher(tp),
		maxWait: cfg.MaxWait,
		errs:    hw.NewErrorRing(hw.DefaultErrorCapacity),
	}
	if d.maxWait <= 0 {
		d.maxWait = ubx.DefaultMaxWait
	}
	if cfg.PayloadCapacity > 0 {
		d.disp.SetPayloadCapacity(cfg.PayloadCapacity)
	}
	return d, nil
}

// Begin proves the receiver is alive by polling its version string.
func (d *Device) Begin() error {
	pkt := &ubx.Packet{Class: ubx.ClassMON, ID: ubx.IDMonVer}
	st := d.send(pkt)
	if st != ubx.StatusDataReceived && st != ubx.StatusDataOverwritten {
		return d.fail("gnss: begin", st)
	}
	return nil
}

// SetI2COutput restricts the DDC port's output protocols (ComTypeUBX,
// ComTypeNMEA, or both). Read-modify-write of CFG-PRT so the rest of the
// port configuration is preserved.
func (d *Device) SetI2COutput(comType byte) error {
	poll := &ubx.Packet{Class: ubx.ClassCFG, ID: ubx.IDCfgPrt, Payload: []byte{ubx.PortDDC}}
	if st := d.send(poll); st != ubx.StatusDataReceived {
		return d.fail("gnss: cfg-prt poll", st)
	}
	if len(poll.Payload) < 20 {
		return d.fail("gnss: cfg-prt poll", ubx.StatusFail)
	}
	cfg := append([]byte(nil), poll.Payload[:20]...)
	cfg[14] = comType // outProtoMask low byte
	cfg[15] = 0

	set := &ubx.Packet{Class: ubx.ClassCFG, ID: ubx.IDCfgPrt, Payload: cfg}
	if st := d.send(set); st != ubx.StatusDataSent {
		return d.fail("gnss: cfg-prt set", st)
	}
	return nil
}

// SetNavigationFrequency sets how many solutions per second the receiver
// produces (1-10 Hz).
func (d *Device) SetNavigationFrequency(hz byte) error {
	if hz < 1 || hz > 10 {
		return d.fail("gnss: nav frequency", ubx.StatusOutOfRange)
	}
	measRate := uint16(1000 / uint16(hz))
	payload := []byte{
		byte(measRate & 0xFF), byte(measRate >> 8),
		0x01, 0x00, // navRate: one solution per measurement
		0x01, 0x00, // timeRef: GPS time
	}
	pkt := &ubx.Packet{Class: ubx.ClassCFG, ID: ubx.IDCfgRate, Payload: payload}
	if st := d.send(pkt); st != ubx.StatusDataSent {
		return d.fail("gnss: cfg-rate set", st)
	}
	return nil
}

// NavigationFrequency polls CFG-RATE and derives solutions per second.
func (d *Device) NavigationFrequency() (byte, error) {
	meas, _, err := d.pollRate()
	if err != nil {
		return 0, err
	}
	if meas == 0 {
		return 0, fmt.Errorf("gnss: cfg-rate reports zero measurement rate")
	}
	return byte(1000 / meas), nil
}

// MeasurementRate returns the raw CFG-RATE measurement period in ms.
func (d *Device) MeasurementRate() (uint16, error) {
	meas, _, err := d.pollRate()
	return meas, err
}

// NavigationRate returns solutions per measurement cycle.
func (d *Device) NavigationRate() (uint16, error) {
	_, nav, err := d.pollRate()
	return nav, err
}

func (d *Device) pollRate() (measRate, navRate uint16, err error) {
	pkt := &ubx.Packet{Class: ubx.ClassCFG, ID: ubx.IDCfgRate}
	if st := d.send(pkt); st != ubx.StatusDataReceived {
		return 0, 0, d.fail("gnss: cfg-rate poll", st)
	}
	if len(pkt.Payload) < 6 {
		return 0, 0, d.fail("gnss: cfg-rate poll", ubx.StatusFail)
	}
	measRate = uint16(pkt.Payload[0]) | uint16(pkt.Payload[1])<<8
	navRate = uint16(pkt.Payload[2]) | uint16(pkt.Payload[3])<<8
	return measRate, navRate, nil
}

// SetAutoPVT enables or disables periodic NAV-PVT output on the active port.
func (d *Device) SetAutoPVT(enable bool) error {
	rate := byte(0)
	if enable {
		rate = 1
	}
	pkt := &ubx.Packet{Class: ubx.ClassCFG, ID: ubx.IDCfgMsg, Payload: []byte{ubx.ClassNAV, ubx.IDNavPVT, rate}}
	if st := d.send(pkt); st != ubx.StatusDataSent {
		return d.fail("gnss: cfg-msg", st)
	}
	d.autoPVT = enable
	return nil
}

// AutoPVT reports the last commanded auto-PVT setting.
func (d *Device) AutoPVT() bool { return d.autoPVT }

// SetPacketCfgPayloadSize re-sizes the receive buffer for subsequent
// commands.
func (d *Device) SetPacketCfgPayloadSize(n int) {
	d.disp.SetPayloadCapacity(n)
}

// PollPVT requests a NAV-PVT solution and, on success, replaces the cached
// navigation fix wholesale.
func (d *Device) PollPVT() (ubx.NavigationFix, error) {
	pkt := &ubx.Packet{Class: ubx.ClassNAV, ID: ubx.IDNavPVT}
	st := d.send(pkt)
	if st != ubx.StatusDataReceived {
		return ubx.NavigationFix{}, d.fail("gnss: nav-pvt poll", st)
	}
	fix, st := ubx.DecodePVT(pkt.Payload)
	if st != ubx.StatusSuccess {
		return ubx.NavigationFix{}, d.fail("gnss: nav-pvt decode", st)
	}
	d.fix = fix
	d.hasFix = true
	return fix, nil
}

// PollATT requests a NAV-ATT solution and, on success, replaces the cached
// attitude.
func (d *Device) PollATT() (ubx.AttitudeFix, error) {
	pkt := &ubx.Packet{Class: ubx.ClassNAV, ID: ubx.IDNavATT}
	st := d.send(pkt)
	if st != ubx.StatusDataReceived {
		return ubx.AttitudeFix{}, d.fail("gnss: nav-att poll", st)
	}
	att, st := ubx.DecodeATT(pkt.Payload)
	if st != ubx.StatusSuccess {
		return ubx.AttitudeFix{}, d.fail("gnss: nav-att decode", st)
	}
	d.att = att
	d.hasAtt = true
	return att, nil
}

// Fix returns the cached navigation solution and whether one exists yet.
func (d *Device) Fix() (ubx.NavigationFix, bool) { return d.fix, d.hasFix }

// Attitude returns the cached attitude solution and whether one exists yet.
func (d *Device) Attitude() (ubx.AttitudeFix, bool) { return d.att, d.hasAtt }

// Accessor getters over the cached fix. Zero values until the first
// successful poll.

func (d *Device) FixType() byte           { return d.fix.FixType }
func (d *Device) SIV() byte               { return d.fix.SIV }
func (d *Device) GnssFixOK() bool         { return d.fix.GnssFixOK }
func (d *Device) Latitude() int32         { return d.fix.Latitude }
func (d *Device) Longitude() int32        { return d.fix.Longitude }
func (d *Device) Altitude() int32         { return d.fix.Altitude }
func (d *Device) Hour() byte              { return d.fix.Hour }
func (d *Device) Minute() byte            { return d.fix.Minute }
func (d *Device) Second() byte            { return d.fix.Second }
func (d *Device) DateValid() bool         { return d.fix.DateValid }
func (d *Device) TimeValid() bool         { return d.fix.TimeValid }
func (d *Device) TimeFullyResolved() bool { return d.fix.TimeFullyResolved }
func (d *Device) Roll() int16             { return d.att.Roll }
func (d *Device) Pitch() int16            { return d.att.Pitch }
func (d *Device) Heading() int16          { return d.att.Heading }

// PowerOffWithInterrupt puts the receiver into backup mode for durationMs
// milliseconds (0 = indefinitely), waking on the given sources. It reports
// whether the command was acknowledged; callers that need the exact failure
// can consult Errors().
func (d *Device) PowerOffWithInterrupt(durationMs, wakeupSources uint32, forceWhileUsb bool) bool {
	payload := ubx.BuildPowerOff(durationMs, wakeupSources, forceWhileUsb)
	pkt := &ubx.Packet{Class: ubx.ClassRXM, ID: ubx.IDRxmPmreq, Payload: payload}
	st := d.send(pkt)
	if st != ubx.StatusDataSent {
		_ = d.fail("gnss: rxm-pmreq", st)
		return false
	}
	return true
}

// PowerOff is the reduced convenience form: indefinite or timed sleep with
// EXTINT0 wake and forced power-down while USB is attached.
func (d *Device) PowerOff(durationMs uint32) bool {
	return d.PowerOffWithInterrupt(durationMs, ubx.WakeupEXTINT0, true)
}

// Errors returns the device's bounded error history, oldest first.
func (d *Device) Errors() []error { return d.errs.Errors() }

func (d *Device) send(pkt *ubx.Packet) ubx.Status {
	return d.disp.SendCommand(pkt, d.maxWait)
}

// fail records the fault in the device's error ring and returns it as an
// error value.
func (d *Device) fail(op string, st ubx.Status) error {
	err := ubx.Err(op, st)
	if err == nil {
		err = fmt.Errorf("%s: unexpected outcome %s", op, st)
	}
	d.errs.Push(err)
	return err
}
