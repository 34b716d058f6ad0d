//go:build !linux

package wakeup

import (
	"fmt"
	"time"
)

type Pin struct{}

func Open(pin int, pulse time.Duration) (*Pin, error) {
	return nil, fmt.Errorf("wakeup: unsupported OS (need linux)")
}

func (p *Pin) Pulse() error { return fmt.Errorf("wakeup: unsupported OS") }

func (p *Pin) Close() error { return nil }
