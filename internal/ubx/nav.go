package ubx

import "encoding/binary"

// Minimum payload sizes for the navigation messages we decode.
const (
	minPVTLen = 92
	minATTLen = 32
)

// NavigationFix is a decoded NAV-PVT solution. Position is in degrees*1e7,
// altitude in mm above mean sea level, matching the wire scaling.
type NavigationFix struct {
	FixType byte // 0=no fix, 2=2D, 3=3D
	SIV     byte // satellites used in the solution

	GnssFixOK bool

	Latitude  int32
	Longitude int32
	Altitude  int32

	Hour   byte
	Minute byte
	Second byte

	DateValid         bool
	TimeValid         bool
	TimeFullyResolved bool
}

// AttitudeFix is a decoded NAV-ATT solution, scaled to degrees*100.
type AttitudeFix struct {
	Roll    int16
	Pitch   int16
	Heading int16
}

// DecodePVT maps a validated NAV-PVT payload to a NavigationFix. Fields sit
// at protocol-fixed offsets; an undersized payload is a decode failure and
// leaves the caller's cached fix alone.
func DecodePVT(payload []byte) (NavigationFix, Status) {
	if len(payload) < minPVTLen {
		return NavigationFix{}, StatusFail
	}
	valid := payload[11]
	flags := payload[21]
	return NavigationFix{
		Hour:              payload[8],
		Minute:            payload[9],
		Second:            payload[10],
		DateValid:         valid&0x01 != 0,
		TimeValid:         valid&0x02 != 0,
		TimeFullyResolved: valid&0x04 != 0,
		FixType:           payload[20],
		GnssFixOK:         flags&0x01 != 0,
		SIV:               payload[23],
		Longitude:         int32(binary.LittleEndian.Uint32(payload[24:])),
		Latitude:          int32(binary.LittleEndian.Uint32(payload[28:])),
		Altitude:          int32(binary.LittleEndian.Uint32(payload[36:])),
	}, StatusSuccess
}

// DecodeATT maps a NAV-ATT payload to an AttitudeFix. The wire scaling is
// degrees*1e-5 in an int32; the accessor contract wants degrees*100.
func DecodeATT(payload []byte) (AttitudeFix, Status) {
	if len(payload) < minATTLen {
		return AttitudeFix{}, StatusFail
	}
	roll := int32(binary.LittleEndian.Uint32(payload[8:]))
	pitch := int32(binary.LittleEndian.Uint32(payload[12:]))
	heading := int32(binary.LittleEndian.Uint32(payload[16:]))
	return AttitudeFix{
		Roll:    int16(roll / 1000),
		Pitch:   int16(pitch / 1000),
		Heading: int16(heading / 1000),
	}, StatusSuccess
}
