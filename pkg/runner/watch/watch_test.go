package watch

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"tableflip.dev/deadlines/pkg/app"
	"tableflip.dev/deadlines/pkg/store"
	"tableflip.dev/deadlines/pkg/timeutil"
)

type testConfig struct {
	path string
}

func (t testConfig) BasePath() string       { return t.path }
func (t testConfig) UpcomingWindow() string { return timeutil.DefaultWindow }

func TestFormat(t *testing.T) {
	at := time.Date(2025, time.March, 12, 9, 30, 5, 0, time.Local)
	tests := map[string]struct {
		ev   store.Event
		want string
	}{
		"project": {
			ev:   store.Event{Type: store.EventProjectsChanged, ID: "abc"},
			want: "09:30:05  projects changed abc",
		},
		"invalidated": {
			ev:   store.Event{Type: store.EventInvalidated},
			want: "09:30:05  all changed",
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			if got := Format(tc.ev, at); got != tc.want {
				t.Errorf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

// lockedBuffer is written by the watch goroutine and read by the test.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestWatchRendersReportToOut(t *testing.T) {
	p, err := store.Load(testConfig{path: t.TempDir()})
	if err != nil {
		t.Fatalf("load persistence: %v", err)
	}
	now := time.Date(2025, time.March, 12, 9, 0, 0, 0, time.Local)
	svc := &app.Service{Persistence: p, Now: func() time.Time { return now }}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	pr, err := svc.CreateProject(ctx, "Launch", now.AddDate(0, 0, 20))
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	if _, _, err := svc.AddSubDeadline(ctx, pr.ID, "Press kit", now.AddDate(0, 0, 3), ""); err != nil {
		t.Fatalf("add sub-deadline: %v", err)
	}

	out := &lockedBuffer{}
	done := make(chan error, 1)
	go func() {
		w := Watch{Service: svc, Window: "2w", Out: out}
		done <- w.Do(ctx)
	}()

	deadline := time.After(5 * time.Second)
	for !strings.Contains(out.String(), "Press kit") {
		select {
		case err := <-done:
			t.Fatalf("watch exited early: %v", err)
		case <-deadline:
			t.Fatalf("timed out, got:\n%s", out.String())
		case <-time.After(10 * time.Millisecond):
		}
	}
	if !strings.Contains(out.String(), "Upcoming") {
		t.Errorf("expected the report title in Out, got:\n%s", out.String())
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("watch: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for watch to stop")
	}
}
