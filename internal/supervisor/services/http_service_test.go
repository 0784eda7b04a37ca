package services

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"
)

type mockHTTPServer struct {
	listenErr     error
	block         bool
	shutdownErr   error
	listenCount   atomic.Int32
	shutdownCount atomic.Int32
	stopCh        chan struct{}
}

func newMockHTTPServer() *mockHTTPServer {
	return &mockHTTPServer{stopCh: make(chan struct{})}
}

func (m *mockHTTPServer) ListenAndServe() error {
	m.listenCount.Add(1)
	if m.listenErr != nil {
		return m.listenErr
	}
	if m.block {
		<-m.stopCh
		return http.ErrServerClosed
	}
	return nil
}

func (m *mockHTTPServer) Shutdown(ctx context.Context) error {
	m.shutdownCount.Add(1)
	close(m.stopCh)
	return m.shutdownErr
}

func TestHTTPServiceImplementsSuture(t *testing.T) {
	var _ suture.Service = NewHTTPServerService(newMockHTTPServer(), time.Second)
}

func TestHTTPServiceStartFailure(t *testing.T) {
	mock := newMockHTTPServer()
	mock.listenErr = errors.New("address in use")
	svc := NewHTTPServerService(mock, time.Second)

	err := svc.Serve(context.Background())
	if err == nil || !errors.Is(err, mock.listenErr) {
		t.Fatalf("Serve returned %v", err)
	}
}

func TestHTTPServiceGracefulShutdown(t *testing.T) {
	mock := newMockHTTPServer()
	mock.block = true
	svc := NewHTTPServerService(mock, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	// Give the server goroutine a moment to start, then cancel.
	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve returned %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}

	if mock.shutdownCount.Load() != 1 {
		t.Errorf("Shutdown called %d times", mock.shutdownCount.Load())
	}
}

func TestHTTPServiceShutdownFailure(t *testing.T) {
	mock := newMockHTTPServer()
	mock.block = true
	mock.shutdownErr = errors.New("connections still open")
	svc := NewHTTPServerService(mock, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	time.Sleep(10 * time.Millisecond)
	cancel()

	err := <-done
	if err == nil || !errors.Is(err, mock.shutdownErr) {
		t.Errorf("Serve returned %v, want shutdown error", err)
	}
}
