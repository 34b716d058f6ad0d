package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"fieldnode/internal/ubx"
)

func writeTempConfig(t *testing.T, contents string) string {
	t.Helper()
	tmp := t.TempDir()
	path := filepath.Join(tmp, "cfg.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}
	return path
}

func requireErrEq(t *testing.T, err error, want string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error %q, got nil", want)
	}
	if err.Error() != want {
		t.Fatalf("error=%q want %q", err.Error(), want)
	}
}

func TestLoad_DefaultsApplied(t *testing.T) {
	cfg, err := Load(writeTempConfig(t, "gnss: {}\n"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Transport.Kind != "i2c" || cfg.Transport.I2CBus != "/dev/i2c-1" || cfg.Transport.I2CAddr != 0x42 {
		t.Fatalf("transport defaults = %+v", cfg.Transport)
	}
	if cfg.GNSS.NavHz != 1 {
		t.Fatalf("nav_hz=%d want 1", cfg.GNSS.NavHz)
	}
	if cfg.GNSS.MaxWait != ubx.DefaultMaxWait {
		t.Fatalf("max_wait=%s want %s", cfg.GNSS.MaxWait, ubx.DefaultMaxWait)
	}
	if cfg.GNSS.PayloadSize != ubx.MaxPayload {
		t.Fatalf("payload_size=%d want %d", cfg.GNSS.PayloadSize, ubx.MaxPayload)
	}
	mask, err := cfg.Power.WakeupMask()
	if err != nil || mask != ubx.WakeupEXTINT0 {
		t.Fatalf("wakeup mask=%#x err=%v, want EXTINT0 default", mask, err)
	}
}

func TestLoad_SerialRequiresDevice(t *testing.T) {
	_, err := Load(writeTempConfig(t, "transport:\n  kind: serial\n"))
	requireErrEq(t, err, "transport.device is required when transport.kind is serial")
}

func TestLoad_SerialDefaultsBaud(t *testing.T) {
	cfg, err := Load(writeTempConfig(t, "transport:\n  kind: serial\n  device: /dev/ttyACM0\n"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Transport.Baud != 9600 {
		t.Fatalf("baud=%d want 9600", cfg.Transport.Baud)
	}
}

func TestLoad_BadTransportKind(t *testing.T) {
	_, err := Load(writeTempConfig(t, "transport:\n  kind: spi\n"))
	requireErrEq(t, err, "transport.kind must be i2c or serial")
}

func TestLoad_NavHzRange(t *testing.T) {
	_, err := Load(writeTempConfig(t, "gnss:\n  nav_hz: 25\n"))
	requireErrEq(t, err, "gnss.nav_hz must be 1-10")
}

func TestLoad_PayloadSizeBound(t *testing.T) {
	_, err := Load(writeTempConfig(t, "gnss:\n  payload_size: 1024\n"))
	requireErrEq(t, err, "gnss.payload_size must be <= 276")
}

func TestLoad_PollIntervalDerivedFromNavHz(t *testing.T) {
	cfg, err := Load(writeTempConfig(t, "gnss:\n  nav_hz: 4\n  poll:\n    enable: true\n"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.GNSS.Poll.Interval != 250*time.Millisecond {
		t.Fatalf("interval=%s want 250ms", cfg.GNSS.Poll.Interval)
	}
}

func TestLoad_UnknownWakeupSource(t *testing.T) {
	_, err := Load(writeTempConfig(t, "power:\n  wakeup_sources: [extint0, bogus]\n"))
	requireErrEq(t, err, `power.wakeup_sources: unknown source "bogus"`)
}

func TestWakeupMask_CombinesSources(t *testing.T) {
	p := PowerConfig{WakeupSources: []string{"extint0", "uartrx", "SPICS"}}
	mask, err := p.WakeupMask()
	if err != nil {
		t.Fatalf("WakeupMask: %v", err)
	}
	want := uint32(ubx.WakeupEXTINT0 | ubx.WakeupUARTRX | ubx.WakeupSPICS)
	if mask != want {
		t.Fatalf("mask=%#x want %#x", mask, want)
	}
}

func TestLoad_ExtintPulseDefault(t *testing.T) {
	cfg, err := Load(writeTempConfig(t, "power:\n  extint_pin: 17\n"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Power.ExtintPulse != 10*time.Millisecond {
		t.Fatalf("pulse=%s want 10ms", cfg.Power.ExtintPulse)
	}
}
