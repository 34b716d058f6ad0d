package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"fieldnode/internal/ubx"
)

type Config struct {
	Transport TransportConfig `yaml:"transport"`
	GNSS      GNSSConfig      `yaml:"gnss"`
	Power     PowerConfig     `yaml:"power"`
}

type TransportConfig struct {
	// Kind selects how the receiver is attached: "i2c" or "serial".
	Kind string `yaml:"kind"`

	// I2CBus and I2CAddr apply when Kind=="i2c".
	I2CBus  string `yaml:"i2c_bus"`
	I2CAddr uint16 `yaml:"i2c_addr"`

	// Device and Baud apply when Kind=="serial".
	Device string `yaml:"device"`
	Baud   int    `yaml:"baud"`
}

type GNSSConfig struct {
	// NavHz is the solution rate commanded at startup (1-10).
	NavHz int `yaml:"nav_hz"`

	AutoPVT bool `yaml:"auto_pvt"`

	// MaxWait bounds each command's wait for a response.
	MaxWait time.Duration `yaml:"max_wait"`

	// PayloadSize is the receive buffer capacity in bytes.
	PayloadSize int `yaml:"payload_size"`

	Poll PollConfig `yaml:"poll"`
}

type PollConfig struct {
	Enable   bool          `yaml:"enable"`
	Interval time.Duration `yaml:"interval"`

	// Attitude additionally polls NAV-ATT (dead-reckoning receivers only).
	Attitude bool `yaml:"attitude"`
}

type PowerConfig struct {
	// WakeupSources lists which lines may wake the receiver from backup:
	// "extint0", "extint1", "uartrx", "spics".
	WakeupSources []string `yaml:"wakeup_sources"`

	ForceWhileUSB bool `yaml:"force_while_usb"`

	// ExtintPin is the BCM GPIO wired to the receiver's EXTINT0, used to
	// pulse it awake. 0 disables.
	ExtintPin   int           `yaml:"extint_pin"`
	ExtintPulse time.Duration `yaml:"extint_pulse"`
}

// WakeupMask folds the configured source names into the RXM-PMREQ bitmask.
func (p PowerConfig) WakeupMask() (uint32, error) {
	var mask uint32
	for _, s := range p.WakeupSources {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "extint0":
			mask |= ubx.WakeupEXTINT0
		case "extint1":
			mask |= ubx.WakeupEXTINT1
		case "uartrx":
			mask |= ubx.WakeupUARTRX
		case "spics":
			mask |= ubx.WakeupSPICS
		case "":
		default:
			return 0, fmt.Errorf("power.wakeup_sources: unknown source %q", s)
		}
	}
	return mask, nil
}

func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, err
	}

	cfg.Transport.Kind = strings.ToLower(strings.TrimSpace(cfg.Transport.Kind))
	switch cfg.Transport.Kind {
	case "":
		cfg.Transport.Kind = "i2c"
	case "i2c", "serial":
	default:
		return Config{}, fmt.Errorf("transport.kind must be i2c or serial")
	}

	if cfg.Transport.Kind == "i2c" {
		if cfg.Transport.I2CBus == "" {
			cfg.Transport.I2CBus = "/dev/i2c-1"
		}
		if cfg.Transport.I2CAddr == 0 {
			cfg.Transport.I2CAddr = 0x42
		}
		if cfg.Transport.I2CAddr > 0x7F {
			return Config{}, fmt.Errorf("transport.i2c_addr must be a 7-bit address")
		}
	}
	if cfg.Transport.Kind == "serial" {
		if cfg.Transport.Device == "" {
			return Config{}, fmt.Errorf("transport.device is required when transport.kind is serial")
		}
		if cfg.Transport.Baud <= 0 {
			cfg.Transport.Baud = 9600
		}
	}

	if cfg.GNSS.NavHz == 0 {
		cfg.GNSS.NavHz = 1
	}
	if cfg.GNSS.NavHz < 1 || cfg.GNSS.NavHz > 10 {
		return Config{}, fmt.Errorf("gnss.nav_hz must be 1-10")
	}
	if cfg.GNSS.MaxWait <= 0 {
		cfg.GNSS.MaxWait = ubx.DefaultMaxWait
	}
	if cfg.GNSS.PayloadSize <= 0 {
		cfg.GNSS.PayloadSize = ubx.MaxPayload
	}
	if cfg.GNSS.PayloadSize > ubx.MaxPayload {
		return Config{}, fmt.Errorf("gnss.payload_size must be <= %d", ubx.MaxPayload)
	}

	if cfg.GNSS.Poll.Enable && cfg.GNSS.Poll.Interval <= 0 {
		cfg.GNSS.Poll.Interval = time.Second / time.Duration(cfg.GNSS.NavHz)
	}

	if len(cfg.Power.WakeupSources) == 0 {
		cfg.Power.WakeupSources = []string{"extint0"}
	}
	if _, err := cfg.Power.WakeupMask(); err != nil {
		return Config{}, err
	}
	if cfg.Power.ExtintPin > 0 && cfg.Power.ExtintPulse <= 0 {
		cfg.Power.ExtintPulse = 10 * time.Millisecond
	}

	return cfg, nil
}
