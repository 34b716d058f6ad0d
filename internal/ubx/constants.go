package ubx

// UBX framing constants and the class/id pairs this module speaks.
//
// The protocol is the u-blox binary interface: two sync bytes, class, id, a
// little-endian payload length, the payload, and a two-byte Fletcher-style
// checksum over class..payload.

const (
	sync1 = 0xB5
	sync2 = 0x62

	// MaxPayload is the default receive buffer capacity. MON-VER responses
	// need >= 250 bytes on newer receivers, so leave headroom.
	MaxPayload = 276

	headerLen   = 4 // class + id + length(2)
	checksumLen = 2
)

// Message classes.
const (
	ClassNAV = 0x01
	ClassRXM = 0x02
	ClassACK = 0x05
	ClassCFG = 0x06
	ClassMON = 0x0A
)

// Message ids used by this platform.
const (
	IDNavATT = 0x05
	IDNavPVT = 0x07

	IDAckNack = 0x00
	IDAckAck  = 0x01

	IDCfgPrt  = 0x00
	IDCfgMsg  = 0x01
	IDCfgRate = 0x08

	IDRxmPmreq = 0x41

	IDMonVer = 0x04
)

// RXM-PMREQ wakeup source bitmasks.
const (
	WakeupUARTRX  = 0x00000008
	WakeupEXTINT0 = 0x00000020
	WakeupEXTINT1 = 0x00000040
	WakeupSPICS   = 0x00000080
)

// Communication port ids for CFG-PRT.
const (
	PortDDC   = 0 // I2C
	PortUART1 = 1
	PortUSB   = 3
	PortSPI   = 4
)

// Output protocol mask bits for CFG-PRT.
const (
	ComTypeUBX  = 1 << 0
	ComTypeNMEA = 1 << 1
)
