package wsjtx

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/adifpush/adifpush/pkg/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(logger.Config{Level: "error", Format: "console"})
	if err != nil {
		t.Fatal(err)
	}
	return log
}

func startListener(t *testing.T) (*Listener, string) {
	t.Helper()
	l, err := Listen("239.255.0.1", 0, testLogger(t))
	if err != nil {
		t.Skipf("cannot join multicast group in this environment: %v", err)
	}
	t.Cleanup(func() { l.Close() })
	return l, l.conn.LocalAddr().String()
}

func TestNextYieldsContact(t *testing.T) {
	l, addr := startListener(t)

	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		t.Fatal(err)
	}
	conn, err := net.Dial("udp4", "127.0.0.1:"+port)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	// A heartbeat first: Next must skip it and keep waiting.
	if _, err := conn.Write(buildDatagram(msgHeartbeat)); err != nil {
		t.Fatal(err)
	}
	if _, err := conn.Write(buildDatagram(msgLoggedADIF, sampleADIF)); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	raw, err := l.Next(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if raw.Fields["call"] != "W5ABC" {
		t.Errorf("expected call W5ABC, got %q", raw.Fields["call"])
	}
}

func TestCloseUnblocksNext(t *testing.T) {
	l, _ := startListener(t)

	done := make(chan error, 1)
	go func() {
		_, err := l.Next(context.Background())
		done <- err
	}()

	time.Sleep(50 * time.Millisecond)
	l.Close()

	select {
	case err := <-done:
		if !errors.Is(err, ErrClosed) {
			t.Errorf("expected ErrClosed, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Next did not return after Close")
	}
}

func TestCancelUnblocksNext(t *testing.T) {
	l, _ := startListener(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := l.Next(ctx)
		done <- err
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, ErrClosed) {
			t.Errorf("expected ErrClosed, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Next did not return after cancellation")
	}
}
