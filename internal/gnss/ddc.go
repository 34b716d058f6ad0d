package gnss

import (
	"fmt"

	"fieldnode/internal/i2c"
)

// u-blox DDC (I2C) port registers. The pending byte count sits at 0xFD/0xFE
// big-endian; the message stream is read from 0xFF.
const (
	regBytesAvail = 0xFD
	regStream     = 0xFF
)

// DefaultI2CAddr is the u-blox factory DDC address.
const DefaultI2CAddr = 0x42

type ddcIO interface {
	Write(p []byte) error
	ReadRegU16BE(reg byte) (uint16, error)
	ReadReg(reg byte, dst []byte) error
}

// DDC adapts the receiver's I2C stream port to the dispatcher's transport
// contract.
type DDC struct {
	dev ddcIO
}

func NewDDC(dev *i2c.Dev) (*DDC, error) {
	if dev == nil {
		return nil, fmt.Errorf("gnss: i2c dev is nil")
	}
	return newDDCWithIO(dev), nil
}

func newDDCWithIO(dev ddcIO) *DDC {
	return &DDC{dev: dev}
}

func (t *DDC) Write(p []byte) error {
	if t == nil || t.dev == nil {
		return fmt.Errorf("gnss: ddc transport is nil")
	}
	return t.dev.Write(p)
}

// ReadAvailable drains up to len(p) of the receiver's pending bytes.
//
// The count register reads 0xFFFF while the receiver is busy updating it;
// that is a known quirk, not sixty-five thousand pending bytes, and is
// treated as nothing available.
func (t *DDC) ReadAvailable(p []byte) (int, error) {
	if t == nil || t.dev == nil {
		return 0, fmt.Errorf("gnss: ddc transport is nil")
	}
	avail, err := t.dev.ReadRegU16BE(regBytesAvail)
	if err != nil {
		return 0, err
	}
	if avail == 0 || avail == 0xFFFF {
		return 0, nil
	}
	n := int(avail)
	if n > len(p) {
		n = len(p)
	}
	if err := t.dev.ReadReg(regStream, p[:n]); err != nil {
		return 0, err
	}
	return n, nil
}
