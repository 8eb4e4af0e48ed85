package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"testing"

	"github.com/rs/zerolog"
)

type fakeServer struct {
	listenErr   error
	shutdownErr error

	shutdownCalled bool
	closeCalled    bool
}

func (f *fakeServer) ListenAndServe() error { return f.listenErr }

func (f *fakeServer) Shutdown(context.Context) error {
	f.shutdownCalled = true
	return f.shutdownErr
}

func (f *fakeServer) Close() error {
	f.closeCalled = true
	return nil
}

func (f *fakeServer) Addr() string { return ":0" }

func TestRun_BootstrapFail_Returns1(t *testing.T) {
	build := func(context.Context) (httpServer, func(), error) {
		return nil, nil, errors.New("mongo unreachable")
	}

	if got := Run(context.Background(), build, make(chan os.Signal, 1), zerolog.Nop()); got != 1 {
		t.Fatalf("expected 1, got %d", got)
	}
}

func TestRun_OnSignal_ShutsDownAndCleansUp(t *testing.T) {
	sigCh := make(chan os.Signal, 1)
	sigCh <- os.Interrupt

	fs := &fakeServer{listenErr: http.ErrServerClosed}
	cleaned := false
	build := func(context.Context) (httpServer, func(), error) {
		return fs, func() { cleaned = true }, nil
	}

	if got := Run(context.Background(), build, sigCh, zerolog.Nop()); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
	if !fs.shutdownCalled || fs.closeCalled {
		t.Fatalf("expected graceful shutdown only, got shutdown=%v close=%v", fs.shutdownCalled, fs.closeCalled)
	}
	if !cleaned {
		t.Fatalf("expected cleanup to run")
	}
}

func TestRun_ShutdownFailure_ForcesClose(t *testing.T) {
	sigCh := make(chan os.Signal, 1)
	sigCh <- os.Interrupt

	fs := &fakeServer{listenErr: http.ErrServerClosed, shutdownErr: context.DeadlineExceeded}
	build := func(context.Context) (httpServer, func(), error) {
		return fs, func() {}, nil
	}

	if got := Run(context.Background(), build, sigCh, zerolog.Nop()); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
	if !fs.closeCalled {
		t.Fatalf("expected Close after failed shutdown")
	}
}

func TestRun_ServerCrash_Returns1(t *testing.T) {
	fs := &fakeServer{listenErr: errors.New("address already in use")}
	build := func(context.Context) (httpServer, func(), error) {
		return fs, func() {}, nil
	}

	if got := Run(context.Background(), build, make(chan os.Signal), zerolog.Nop()); got != 1 {
		t.Fatalf("expected 1, got %d", got)
	}
}
