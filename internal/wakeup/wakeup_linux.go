//go:build linux

package wakeup

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/warthog618/go-gpiocdev"
)

var sleep = time.Sleep

// Pin drives the GNSS receiver's EXTINT line through the Linux GPIO
// character device. A rising pulse on EXTINT wakes a receiver that was put
// into backup mode with a matching wakeup-source mask.
type Pin struct {
	chip *gpiocdev.Chip
	line *gpiocdev.Line

	pulse time.Duration
}

// Open requests the given BCM GPIO as an output, initially low.
func Open(pin int, pulse time.Duration) (*Pin, error) {
	if pin <= 0 {
		return nil, fmt.Errorf("wakeup: invalid gpio pin %d", pin)
	}
	if pulse <= 0 {
		pulse = 10 * time.Millisecond
	}

	// On Pi, header GPIOs are commonly named "GPIO18", etc.
	lineName := fmt.Sprintf("GPIO%d", pin)

	chipCandidates := []string{"/dev/gpiochip0", "/dev/gpiochip4"}
	entries, _ := os.ReadDir("/dev")
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, "gpiochip") {
			chipCandidates = append(chipCandidates, filepath.Join("/dev", name))
		}
	}

	for _, chipPath := range chipCandidates {
		chip, err := gpiocdev.NewChip(chipPath)
		if err != nil {
			continue
		}
		offset, err := chip.FindLine(lineName)
		if err != nil {
			_ = chip.Close()
			continue
		}
		line, err := chip.RequestLine(offset, gpiocdev.AsOutput(0), gpiocdev.WithConsumer("fieldnode-extint"))
		if err != nil {
			_ = chip.Close()
			continue
		}
		return &Pin{chip: chip, line: line, pulse: pulse}, nil
	}

	return nil, fmt.Errorf("wakeup: gpio line %q not found (or busy)", lineName)
}

// Pulse raises EXTINT for the configured width and drops it again.
func (p *Pin) Pulse() error {
	if p == nil || p.line == nil {
		return fmt.Errorf("wakeup: pin not initialized")
	}
	if err := p.line.SetValue(1); err != nil {
		return fmt.Errorf("wakeup: raise extint: %w", err)
	}
	sleep(p.pulse)
	if err := p.line.SetValue(0); err != nil {
		return fmt.Errorf("wakeup: drop extint: %w", err)
	}
	return nil
}

func (p *Pin) Close() error {
	if p == nil {
		return nil
	}
	var firstErr error
	if p.line != nil {
		firstErr = p.line.Close()
		p.line = nil
	}
	if p.chip != nil {
		if err := p.chip.Close(); firstErr == nil {
			firstErr = err
		}
		p.chip = nil
	}
	return firstErr
}
