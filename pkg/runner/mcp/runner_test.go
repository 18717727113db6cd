package mcp

import (
	"context"
	"strings"
	"testing"
	"time"

	"tableflip.dev/deadlines/pkg/store"
)

func TestRunnerRequiresPersistence(t *testing.T) {
	if err := (Runner{}).Do(context.Background()); err == nil {
		t.Fatalf("expected an error without persistence")
	}
}

func TestRunnerRejectsUnknownTransport(t *testing.T) {
	p, err := store.Load(testConfig{path: t.TempDir()})
	if err != nil {
		t.Fatalf("load persistence: %v", err)
	}
	err = Runner{Persistence: p, Transport: "carrier-pigeon"}.Do(context.Background())
	if err == nil || !strings.Contains(err.Error(), "unsupported transport") {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestRunnerServesHTTPUntilCancelled(t *testing.T) {
	p, err := store.Load(testConfig{path: t.TempDir()})
	if err != nil {
		t.Fatalf("load persistence: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	urls := make(chan string, 1)
	done := make(chan error, 1)
	go func() {
		done <- Runner{
			Persistence: p,
			Transport:   TransportHTTP,
			Addr:        "127.0.0.1:0",
			Path:        "deadlines",
			Listening:   func(url string) { urls <- url },
		}.Do(ctx)
	}()

	select {
	case url := <-urls:
		if !strings.HasPrefix(url, "http://127.0.0.1:") || !strings.HasSuffix(url, "/deadlines") {
			t.Errorf("unexpected url %q", url)
		}
	case err := <-done:
		t.Fatalf("runner exited early: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for listener")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected clean shutdown, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for shutdown")
	}
}
