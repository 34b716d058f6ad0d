package gnss

import (
	"context"
	"sync"
	"testing"
	"time"

	"fieldnode/internal/ubx"
)

// answeringTransport replies to every NAV-PVT poll with a canned solution.
type answeringTransport struct {
	mu      sync.Mutex
	pending []byte
	payload []byte
}

func (a *answeringTransport) Write(p []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(p) >= 4 && p[2] == ubx.ClassNAV && p[3] == ubx.IDNavPVT {
		frame, _ := ubx.Encode(ubx.ClassNAV, ubx.IDNavPVT, a.payload)
		a.pending = append(a.pending, frame...)
	}
	return nil
}

func (a *answeringTransport) ReadAvailable(p []byte) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	n := copy(p, a.pending)
	a.pending = a.pending[n:]
	return n, nil
}

func TestService_PublishesSnapshots(t *testing.T) {
	tp := &answeringTransport{payload: pvtResponse(3, true, 14, 449778900, -932128300, 250000)}
	dev := newTestDevice(t, tp)

	svc := NewService(dev, ServiceConfig{Enable: true, Interval: 5 * time.Millisecond})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := svc.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer svc.Close()

	deadline := time.Now().Add(2 * time.Second)
	for {
		snap := svc.Snapshot()
		if snap.Valid {
			if snap.FixType != 3 || snap.Satellites != 14 || snap.Latitude != 449778900 {
				t.Fatalf("snapshot = %+v", snap)
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("no valid snapshot published; last=%+v", snap)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestService_DisabledDoesNothing(t *testing.T) {
	svc := NewService(nil, ServiceConfig{Enable: false})
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("Start on disabled service: %v", err)
	}
	svc.Close()
	if snap := svc.Snapshot(); snap.Enabled {
		t.Fatalf("disabled service published enabled snapshot")
	}
}

func TestService_KeepsLastFixOnPollFailure(t *testing.T) {
	tp := &answeringTransport{payload: pvtResponse(3, true, 8, 1, 2, 3)}
	dev := newTestDevice(t, tp)
	svc := NewService(dev, ServiceConfig{Enable: true})

	// Drive the poll path directly rather than through the ticker.
	svc.pollOnce()
	if snap := svc.Snapshot(); !snap.Valid || snap.Satellites != 8 {
		t.Fatalf("first poll snapshot = %+v", snap)
	}

	// Degrade the receiver to empty replies: the next poll fails but the
	// published fix fields stay.
	tp.mu.Lock()
	tp.payload = nil
	tp.mu.Unlock()

	svc.pollOnce()
	snap := svc.Snapshot()
	if snap.Satellites != 8 {
		t.Fatalf("published fix lost on failed poll: %+v", snap)
	}
	if snap.LastError == "" {
		t.Fatalf("expected last error to be surfaced")
	}
}
