package store

import (
	"context"
	"testing"
	"time"

	"tableflip.dev/deadlines/pkg/project"
)

type testConfig struct {
	path string
}

func (t testConfig) BasePath() string {
	return t.path
}

func (t testConfig) UpcomingWindow() string {
	return "2w"
}

func TestPersistenceWatchEmitsProjectChanges(t *testing.T) {
	base := t.TempDir()
	p, err := Load(testConfig{path: base})
	if err != nil {
		t.Fatalf("load persistence: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := p.Watch(ctx)
	if err != nil {
		t.Fatalf("watch: %v", err)
	}

	// Allow watcher goroutine to subscribe to directories before storing.
	time.Sleep(50 * time.Millisecond)

	pr := project.New("Launch", time.Date(2025, time.June, 30, 0, 0, 0, 0, time.UTC))
	if err := p.StoreProject(*pr); err != nil {
		t.Fatalf("store project: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for {
		select {
		case evt := <-ch:
			if evt.Type == EventInvalidated {
				return
			}
			if evt.Type == EventProjectsChanged {
				if evt.ID != pr.ID {
					t.Fatalf("expected project %q, got %q", pr.ID, evt.ID)
				}
				return
			}
		case <-deadline:
			t.Fatal("timed out waiting for project change event")
		}
	}
}

func TestEventForPath(t *testing.T) {
	p := &persistence{basePath: "/data"}
	tests := map[string]Event{
		"/data/projects/abc":  {Type: EventProjectsChanged, ID: "abc"},
		"/data/templates/xyz": {Type: EventTemplatesChanged, ID: "xyz"},
		"/data/settings/app":  {Type: EventSettingsChanged},
		"/data/stray":         {Type: EventInvalidated},
		"/data":               {Type: EventInvalidated},
	}
	for path, want := range tests {
		if got := p.eventForPath(path); got != want {
			t.Errorf("%s: got %+v, want %+v", path, got, want)
		}
	}
}
