package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fieldnode/internal/config"
	"fieldnode/internal/gnss"
	"fieldnode/internal/i2c"
	"fieldnode/internal/serialport"
	"fieldnode/internal/ubx"
	"fieldnode/internal/wakeup"
)

func main() {
	var (
		configPath string
		powerOff   bool
		sleepMs    uint
		wake       bool
	)
	flag.StringVar(&configPath, "config", "./dev.yaml", "Path to YAML config")
	flag.BoolVar(&powerOff, "power-off", false, "Put the receiver into backup mode and exit")
	flag.UintVar(&sleepMs, "sleep-ms", 0, "Backup duration for -power-off in ms (0 = until wakeup)")
	flag.BoolVar(&wake, "wake", false, "Pulse the EXTINT line before talking to the receiver")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if wake {
		pulseExtint(cfg)
	}

	tp, closeTransport, err := openTransport(cfg.Transport)
	if err != nil {
		log.Fatalf("transport open failed: %v", err)
	}
	defer closeTransport()

	dev, err := gnss.New(tp, gnss.Config{
		MaxWait:         cfg.GNSS.MaxWait,
		PayloadCapacity: cfg.GNSS.PayloadSize,
	})
	if err != nil {
		log.Fatalf("gnss device init failed: %v", err)
	}

	if err := dev.Begin(); err != nil {
		log.Fatalf("gnss begin failed: %v", err)
	}
	log.Printf("gnss receiver up transport=%s", cfg.Transport.Kind)

	if powerOff {
		mask, err := cfg.Power.WakeupMask()
		if err != nil {
			log.Fatalf("wakeup mask: %v", err)
		}
		if !dev.PowerOffWithInterrupt(uint32(sleepMs), mask, cfg.Power.ForceWhileUSB) {
			log.Fatalf("power-off not acknowledged: %v", dev.Errors())
		}
		log.Printf("gnss receiver powered off duration_ms=%d mask=%#x", sleepMs, mask)
		return
	}

	if cfg.Transport.Kind == "i2c" {
		if err := dev.SetI2COutput(ubx.ComTypeUBX); err != nil {
			log.Fatalf("gnss i2c output config failed: %v", err)
		}
	}
	if err := dev.SetNavigationFrequency(byte(cfg.GNSS.NavHz)); err != nil {
		log.Fatalf("gnss nav frequency config failed: %v", err)
	}
	if cfg.GNSS.AutoPVT {
		if err := dev.SetAutoPVT(true); err != nil {
			log.Fatalf("gnss auto-pvt config failed: %v", err)
		}
	}

	log.Printf("fieldnode starting nav_hz=%d poll=%v", cfg.GNSS.NavHz, cfg.GNSS.Poll.Enable)

	svc := gnss.NewService(dev, gnss.ServiceConfig{
		Enable:   cfg.GNSS.Poll.Enable,
		Interval: cfg.GNSS.Poll.Interval,
		Attitude: cfg.GNSS.Poll.Attitude,
	})
	if err := svc.Start(ctx); err != nil {
		log.Fatalf("gnss poller start failed: %v", err)
	}
	defer svc.Close()

	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Printf("fieldnode stopping")
			return
		case <-ticker.C:
		}
		snap := svc.Snapshot()
		if !snap.Enabled {
			continue
		}
		if snap.LastError != "" {
			log.Printf("gnss poll error: %s", snap.LastError)
			continue
		}
		log.Printf("gnss fix=%d sats=%d lat=%d lon=%d alt_mm=%d %02d:%02d:%02d",
			snap.FixType, snap.Satellites, snap.Latitude, snap.Longitude, snap.AltitudeMM,
			snap.Hour, snap.Minute, snap.Second)
	}
}

func openTransport(cfg config.TransportConfig) (ubx.Transport, func(), error) {
	if cfg.Kind == "serial" {
		port, err := serialport.Open(cfg.Device, cfg.Baud)
		if err != nil {
			return nil, nil, err
		}
		return port, func() { _ = port.Close() }, nil
	}

	bus, err := i2c.Open(cfg.I2CBus)
	if err != nil {
		return nil, nil, err
	}
	ddc, err := gnss.NewDDC(bus.Dev(cfg.I2CAddr))
	if err != nil {
		_ = bus.Close()
		return nil, nil, err
	}
	return ddc, func() { _ = bus.Close() }, nil
}

// pulseExtint wakes a receiver that was left in backup mode. Best effort:
// boards without the EXTINT line wired just skip it.
func pulseExtint(cfg config.Config) {
	if cfg.Power.ExtintPin <= 0 {
		return
	}
	pin, err := wakeup.Open(cfg.Power.ExtintPin, cfg.Power.ExtintPulse)
	if err != nil {
		log.Printf("extint open failed: %v", err)
		return
	}
	defer func() { _ = pin.Close() }()
	if err := pin.Pulse(); err != nil {
		log.Printf("extint pulse failed: %v", err)
		return
	}
	log.Printf("extint pulsed pin=%d width=%s", cfg.Power.ExtintPin, cfg.Power.ExtintPulse)
}
