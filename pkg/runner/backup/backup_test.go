package backup

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"tableflip.dev/deadlines/pkg/app"
	databackup "tableflip.dev/deadlines/pkg/backup"
	"tableflip.dev/deadlines/pkg/store"
)

type testConfig struct {
	path string
}

func (t testConfig) BasePath() string       { return t.path }
func (t testConfig) UpcomingWindow() string { return "2w" }

type fakeClipboard struct {
	text string
}

func (f *fakeClipboard) ReadAll() (string, error) { return f.text, nil }
func (f *fakeClipboard) WriteAll(text string) error {
	f.text = text
	return nil
}

func newService(t *testing.T) *app.Service {
	t.Helper()
	p, err := store.Load(testConfig{path: t.TempDir()})
	if err != nil {
		t.Fatalf("load persistence: %v", err)
	}
	return &app.Service{Persistence: p}
}

func TestClipboardRoundTrip(t *testing.T) {
	ctx := context.Background()
	src := newService(t)
	created, err := src.CreateProject(ctx, "Launch", time.Date(2025, time.June, 30, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	cb := &fakeClipboard{}
	if err := (&Export{Service: src, Clipboard: cb}).Do(ctx); err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.Contains(cb.text, `"triggers"`) {
		t.Fatalf("expected a current-schema payload, got %s", cb.text)
	}

	dst := newService(t)
	if err := (&Import{Service: dst, Clipboard: cb}).Do(ctx); err != nil {
		t.Fatalf("import: %v", err)
	}
	got, err := dst.Project(ctx, created.ID)
	if err != nil {
		t.Fatalf("project missing after import: %v", err)
	}
	if got.Title != "Launch" {
		t.Errorf("unexpected title %q", got.Title)
	}
}

func TestFileAndStreamTransport(t *testing.T) {
	ctx := context.Background()
	src := newService(t)
	if _, err := src.CreateProject(ctx, "Launch", time.Date(2025, time.June, 30, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("create: %v", err)
	}

	path := filepath.Join(t.TempDir(), "backup.json")
	if err := (&Export{Service: src, Path: path}).Do(ctx); err != nil {
		t.Fatalf("export: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read backup: %v", err)
	}

	var out bytes.Buffer
	if err := (&Export{Service: src, Out: &out}).Do(ctx); err != nil {
		t.Fatalf("export to stream: %v", err)
	}
	if out.Len() == 0 {
		t.Fatalf("expected payload on the stream")
	}

	dst := newService(t)
	if err := (&Import{Service: dst, In: bytes.NewReader(data)}).Do(ctx); err != nil {
		t.Fatalf("import: %v", err)
	}
	all, _ := dst.Projects(ctx)
	if len(all) != 1 {
		t.Fatalf("expected 1 project, got %d", len(all))
	}
}

func TestImportEmptyClipboard(t *testing.T) {
	err := (&Import{Service: newService(t), Clipboard: &fakeClipboard{}}).Do(context.Background())
	if !errors.Is(err, databackup.ErrNoSourceData) {
		t.Fatalf("expected ErrNoSourceData, got %v", err)
	}
}
