package ubx

import "encoding/binary"

// RXM-PMREQ flags word bits (message version 0).
const (
	pmreqFlagBackup = 1 << 1
	pmreqFlagForce  = 1 << 2
)

// BuildPowerOff assembles the RXM-PMREQ payload that puts the receiver into
// backup mode.
//
// durationMs of 0 means sleep indefinitely until one of the wakeup sources
// fires. wakeupSources is a bitmask of the Wakeup* constants. forceWhileUsb
// forces power-down even with USB enumerated; without it the receiver stays
// up while a USB host is attached.
//
// Layout (16 bytes, all little-endian):
//
//	byte 0:     message version (0)
//	bytes 1-3:  reserved
//	bytes 4-7:  duration (ms)
//	bytes 8-11: flags (backup, force)
//	bytes 12-15: wakeup sources
func BuildPowerOff(durationMs uint32, wakeupSources uint32, forceWhileUsb bool) []byte {
	payload := make([]byte, 16)
	flags := uint32(pmreqFlagBackup)
	if forceWhileUsb {
		flags |= pmreqFlagForce
	}
	binary.LittleEndian.PutUint32(payload[4:], durationMs)
	binary.LittleEndian.PutUint32(payload[8:], flags)
	binary.LittleEndian.PutUint32(payload[12:], wakeupSources)
	return payload
}
