package sht4x

import (
	"fmt"
	"time"

	"fieldnode/internal/hw"
	"fieldnode/internal/i2c"
)

var sleep = time.Sleep

// Minimal SHT4x humidity/temperature driver.
//
// The chip has no register map: a measurement is a command byte, a
// conversion delay, then a six-byte read of temp and humidity words, each
// followed by a CRC-8.

const (
	addrDefault = 0x44

	cmdMeasureHigh = 0xFD
	cmdMeasureMed  = 0xF6
	cmdMeasureLow  = 0xE0
	cmdSoftReset   = 0x94
	cmdReadSerial  = 0x89

	// Worst-case conversion times per precision, rounded up.
	delayHigh = 10 * time.Millisecond
	delayMed  = 5 * time.Millisecond
	delayLow  = 2 * time.Millisecond
)

type cmdIO interface {
	Write(p []byte) error
	Read(p []byte) error
}

type Device struct {
	dev  cmdIO
	prec hw.HTPrecision
}

func DefaultAddress() uint16 { return addrDefault }

func New(dev *i2c.Dev) (*Device, error) {
	if dev == nil {
		return nil, fmt.Errorf("sht4x: dev is nil")
	}
	return newWithIO(dev), nil
}

func newWithIO(dev cmdIO) *Device {
	return &Device{dev: dev, prec: hw.HTPrecisionHigh}
}

// Begin resets the chip and proves it answers by reading its serial number.
func (d *Device) Begin() error {
	if d == nil || d.dev == nil {
		return fmt.Errorf("sht4x: device is nil")
	}
	if err := d.dev.Write([]byte{cmdSoftReset}); err != nil {
		return fmt.Errorf("sht4x: reset failed: %w", err)
	}
	sleep(2 * time.Millisecond)

	if err := d.dev.Write([]byte{cmdReadSerial}); err != nil {
		return fmt.Errorf("sht4x: serial cmd failed: %w", err)
	}
	sleep(time.Millisecond)
	var buf [6]byte
	if err := d.dev.Read(buf[:]); err != nil {
		return fmt.Errorf("sht4x: serial read failed: %w", err)
	}
	if crc8(buf[0:2]) != buf[2] || crc8(buf[3:5]) != buf[5] {
		return fmt.Errorf("sht4x: serial crc mismatch")
	}
	return nil
}

func (d *Device) SetPrecision(p hw.HTPrecision) {
	if d == nil {
		return
	}
	d.prec = p
}

func (d *Device) Precision() hw.HTPrecision {
	if d == nil {
		return hw.HTPrecisionHigh
	}
	return d.prec
}

// Measure triggers one conversion at the configured precision.
func (d *Device) Measure() (hw.Measurement, error) {
	if d == nil || d.dev == nil {
		return hw.Measurement{}, fmt.Errorf("sht4x: device is nil")
	}

	cmd, delay := byte(cmdMeasureHigh), delayHigh
	switch d.prec {
	case hw.HTPrecisionMed:
		cmd, delay = cmdMeasureMed, delayMed
	case hw.HTPrecisionLow:
		cmd, delay = cmdMeasureLow, delayLow
	}

	if err := d.dev.Write([]byte{cmd}); err != nil {
		return hw.Measurement{}, fmt.Errorf("sht4x: measure cmd failed: %w", err)
	}
	sleep(delay)

	var buf [6]byte
	if err := d.dev.Read(buf[:]); err != nil {
		return hw.Measurement{}, fmt.Errorf("sht4x: measure read failed: %w", err)
	}
	if crc8(buf[0:2]) != buf[2] {
		return hw.Measurement{}, fmt.Errorf("sht4x: temperature crc mismatch")
	}
	if crc8(buf[3:5]) != buf[5] {
		return hw.Measurement{}, fmt.Errorf("sht4x: humidity crc mismatch")
	}

	tRaw := uint16(buf[0])<<8 | uint16(buf[1])
	rhRaw := uint16(buf[3])<<8 | uint16(buf[4])

	rh := -6.0 + 125.0*float64(rhRaw)/65535.0
	if rh < 0 {
		rh = 0
	}
	if rh > 100 {
		rh = 100
	}
	return hw.Measurement{
		TemperatureC:     -45.0 + 175.0*float64(tRaw)/65535.0,
		RelativeHumidity: rh,
	}, nil
}

// crc8 is the Sensirion CRC: polynomial 0x31, init 0xFF, over one 16-bit
// word.
func crc8(data []byte) byte {
	crc := byte(0xFF)
	for _, b := range data {
		crc ^= b
		for bit := 0; bit < 8; bit++ {
			if crc&0x80 != 0 {
				crc = crc<<1 ^ 0x31
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}
