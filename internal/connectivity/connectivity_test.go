package connectivity

import (
	"context"
	"net"
	"testing"
	"time"
)

func TestDialProbe(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	addr := ln.Addr().String()

	probe := DialProbe{Address: addr, Timeout: time.Second}
	if !probe.Online(context.Background()) {
		t.Error("Online() = false with a listener")
	}

	ln.Close()
	if probe.Online(context.Background()) {
		t.Error("Online() = true after the listener closed")
	}
	if (DialProbe{}).Online(context.Background()) {
		t.Error("Online() = true without an address")
	}
}

func TestStatic(t *testing.T) {
	s := NewStatic(false)
	if s.Online(context.Background()) {
		t.Error("Online() = true, want false")
	}
	s.Set(true)
	if !s.Online(context.Background()) {
		t.Error("Online() = false after Set(true)")
	}

	var p Probe = ProbeFunc(func(context.Context) bool { return true })
	if !p.Online(context.Background()) {
		t.Error("ProbeFunc Online() = false")
	}
}
