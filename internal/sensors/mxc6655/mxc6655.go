package mxc6655

import (
	"fmt"

	"fieldnode/internal/i2c"
)

// Minimal MXC6655XA driver.
//
// Focus: probe + 12-bit accel reads and die temperature for the logger's
// orientation/tamper checks.

const (
	addrDefault = 0x15

	regStatus  = 0x02
	regXOutH   = 0x03 // contiguous X/Y/Z high/low block
	regTOut    = 0x09
	regControl = 0x0D
	regWhoAmI  = 0x0F

	whoAmIVal = 0x05

	// CONTROL register range bits [6:5]: 00=2g 01=4g 10=8g.
	rangeShift = 5

	// TOUT is signed, 0.586 degC/LSB around 25 degC.
	tempScale  = 0.586
	tempOffset = 25.0
)

// Range selects full-scale acceleration.
type Range byte

const (
	Range2G Range = iota
	Range4G
	Range8G
)

type regIO interface {
	ReadRegU8(reg byte) (byte, error)
	ReadReg(reg byte, dst []byte) error
	WriteReg(reg, value byte) error
}

type Device struct {
	dev regIO
	rng Range

	// scale in g per count for the configured range.
	scale float64

	// last UpdateAll sample, x/y/z in g.
	accel [3]float64
}

func DefaultAddress() uint16 { return addrDefault }

func New(dev *i2c.Dev, rng Range) (*Device, error) {
	if dev == nil {
		return nil, fmt.Errorf("mxc6655: dev is nil")
	}
	return newWithIO(dev, rng)
}

func newWithIO(dev regIO, rng Range) (*Device, error) {
	if dev == nil {
		return nil, fmt.Errorf("mxc6655: dev is nil")
	}
	if rng > Range8G {
		return nil, fmt.Errorf("mxc6655: invalid range %d", rng)
	}
	return &Device{dev: dev, rng: rng}, nil
}

// Begin probes the chip and configures the full-scale range.
func (d *Device) Begin() error {
	if d == nil {
		return fmt.Errorf("mxc6655: device is nil")
	}
	who, err := d.dev.ReadRegU8(regWhoAmI)
	if err != nil {
		return fmt.Errorf("mxc6655: whoami read failed: %w", err)
	}
	if who != whoAmIVal {
		return fmt.Errorf("mxc6655: whoami=0x%02X want 0x%02X", who, whoAmIVal)
	}

	if err := d.dev.WriteReg(regControl, byte(d.rng)<<rangeShift); err != nil {
		return fmt.Errorf("mxc6655: range config failed: %w", err)
	}

	// 12-bit signed data: 1024 counts/g at 2g, halving per range step.
	d.scale = (2.0 * float64(uint(1)<<d.rng)) / 2048.0
	return nil
}

// UpdateAll refreshes all three axes in one bus transaction.
func (d *Device) UpdateAll() error {
	if d == nil {
		return fmt.Errorf("mxc6655: device is nil")
	}
	var buf [6]byte
	if err := d.dev.ReadReg(regXOutH, buf[:]); err != nil {
		return fmt.Errorf("mxc6655: read axes failed: %w", err)
	}
	for i := 0; i < 3; i++ {
		// High byte plus top nibble of the low byte, sign-extended.
		raw := int16(buf[2*i])<<8 | int16(buf[2*i+1])
		d.accel[i] = float64(raw>>4) * d.scale
	}
	return nil
}

// Accel returns the last updated acceleration for one axis in g. Call
// UpdateAll first; axes read as 0 until then.
func (d *Device) Accel(axis int) (float64, error) {
	if d == nil {
		return 0, fmt.Errorf("mxc6655: device is nil")
	}
	if axis < 0 || axis > 2 {
		return 0, fmt.Errorf("mxc6655: invalid axis %d", axis)
	}
	return d.accel[axis], nil
}

// Temp returns die temperature in degrees Celsius.
func (d *Device) Temp() (float64, error) {
	if d == nil {
		return 0, fmt.Errorf("mxc6655: device is nil")
	}
	raw, err := d.dev.ReadRegU8(regTOut)
	if err != nil {
		return 0, fmt.Errorf("mxc6655: temp read failed: %w", err)
	}
	return float64(int8(raw))*tempScale + tempOffset, nil
}
