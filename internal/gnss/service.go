package gnss

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"
)

// ServiceConfig controls the background PVT poller.
//
// The poller owns the Device exclusively while running: the dispatcher
// underneath allows exactly one in-flight command, so nothing else may talk
// to the receiver until Close.
type ServiceConfig struct {
	Enable bool

	// Interval between polls. Defaults to 1s (1 Hz navigation rate).
	Interval time.Duration

	// Attitude additionally polls NAV-ATT each cycle (dead-reckoning
	// receivers only).
	Attitude bool
}

// Snapshot is the latest published navigation state.
type Snapshot struct {
	Enabled bool `json:"enabled"`
	Valid   bool `json:"valid"`

	FixType    byte  `json:"fix_type"`
	Satellites byte  `json:"satellites"`
	Latitude   int32 `json:"lat_e7"`
	Longitude  int32 `json:"lon_e7"`
	AltitudeMM int32 `json:"alt_mm"`

	Hour   byte `json:"hour"`
	Minute byte `json:"minute"`
	Second byte `json:"second"`

	RollCdeg    int16 `json:"roll_cdeg,omitempty"`
	PitchCdeg   int16 `json:"pitch_cdeg,omitempty"`
	HeadingCdeg int16 `json:"heading_cdeg,omitempty"`

	LastFixUTC string `json:"last_fix_utc,omitempty"`
	LastError  string `json:"last_error,omitempty"`
}

// Service polls a Device in the background and publishes snapshots.
type Service struct {
	cfg ServiceConfig
	dev *Device

	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex

	last atomic.Value // Snapshot
}

func NewService(dev *Device, cfg ServiceConfig) *Service {
	s := &Service{cfg: cfg, dev: dev}
	s.last.Store(Snapshot{Enabled: cfg.Enable})
	return s
}

func (s *Service) Start(ctx context.Context) error {
	if s == nil {
		return fmt.Errorf("gnss service is nil")
	}
	if !s.cfg.Enable {
		return nil
	}
	if ctx == nil {
		return fmt.Errorf("ctx is nil")
	}
	if s.dev == nil {
		return fmt.Errorf("gnss service has no device")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return nil
	}

	interval := s.cfg.Interval
	if interval <= 0 {
		interval = time.Second
	}

	childCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		log.Printf("gnss poller enabled interval=%s attitude=%v", interval, s.cfg.Attitude)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-childCtx.Done():
				return
			case <-ticker.C:
			}
			s.pollOnce()
		}
	}()

	return nil
}

func (s *Service) pollOnce() {
	snap := s.Snapshot()
	snap.Enabled = true

	fix, err := s.dev.PollPVT()
	if err != nil {
		// Keep the previously published fix; just surface the fault.
		snap.LastError = err.Error()
		s.last.Store(snap)
		return
	}

	snap.Valid = fix.GnssFixOK
	snap.FixType = fix.FixType
	snap.Satellites = fix.SIV
	snap.Latitude = fix.Latitude
	snap.Longitude = fix.Longitude
	snap.AltitudeMM = fix.Altitude
	snap.Hour, snap.Minute, snap.Second = fix.Hour, fix.Minute, fix.Second
	snap.LastError = ""
	if fix.GnssFixOK {
		snap.LastFixUTC = time.Now().UTC().Format(time.RFC3339Nano)
	}

	if s.cfg.Attitude {
		if att, err := s.dev.PollATT(); err == nil {
			snap.RollCdeg = att.Roll
			snap.PitchCdeg = att.Pitch
			snap.HeadingCdeg = att.Heading
		} else {
			snap.LastError = err.Error()
		}
	}

	s.last.Store(snap)
}

func (s *Service) Close() {
	if s == nil {
		return
	}
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.wg.Wait()
}

func (s *Service) Snapshot() Snapshot {
	if s == nil {
		return Snapshot{}
	}
	v := s.last.Load()
	if v == nil {
		return Snapshot{}
	}
	return v.(Snapshot)
}
