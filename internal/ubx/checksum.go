package ubx

// The UBX checksum is an 8-bit Fletcher variant computed over
// class, id, lengthLow, lengthHigh, payload... starting from (0,0).

func checksumUpdate(a, b, c byte) (byte, byte) {
	a += c
	b += a
	return a, b
}

// Checksum computes the two checksum bytes for a message.
func Checksum(class, id byte, payload []byte) (a, b byte) {
	a, b = checksumUpdate(a, b, class)
	a, b = checksumUpdate(a, b, id)
	a, b = checksumUpdate(a, b, byte(len(payload)&0xFF))
	a, b = checksumUpdate(a, b, byte(len(payload)>>8))
	for _, c := range payload {
		a, b = checksumUpdate(a, b, c)
	}
	return a, b
}
