// Package serialport adapts a UART-attached GNSS receiver to the command
// dispatcher's transport contract.
package serialport

import (
	"fmt"
	"io"
	"time"

	"github.com/tarm/serial"
)

// Port is an open serial connection with a short read timeout, so that
// ReadAvailable is bounded-blocking rather than indefinitely blocking.
type Port struct {
	p *serial.Port
}

func Open(device string, baud int) (*Port, error) {
	if device == "" {
		return nil, fmt.Errorf("serialport: device is required")
	}
	if baud <= 0 {
		baud = 9600
	}
	c := &serial.Config{
		Name:        device,
		Baud:        baud,
		ReadTimeout: 5 * time.Millisecond,
	}
	p, err := serial.OpenPort(c)
	if err != nil {
		return nil, fmt.Errorf("serialport: open %s: %w", device, err)
	}
	return &Port{p: p}, nil
}

func (s *Port) Write(p []byte) error {
	if s == nil || s.p == nil {
		return fmt.Errorf("serialport: not open")
	}
	_, err := s.p.Write(p)
	return err
}

// ReadAvailable reads whatever bytes arrive within the port's read timeout.
// A timeout with no data is not an error; it reports 0 bytes.
func (s *Port) ReadAvailable(p []byte) (int, error) {
	if s == nil || s.p == nil {
		return 0, fmt.Errorf("serialport: not open")
	}
	n, err := s.p.Read(p)
	if err == io.EOF {
		// tarm/serial reports a drained timeout read as EOF.
		return n, nil
	}
	return n, err
}

func (s *Port) Close() error {
	if s == nil || s.p == nil {
		return nil
	}
	err := s.p.Close()
	s.p = nil
	return err
}
