package app

import (
	"bytes"
	"context"
	"errors"
	"log"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"tableflip.dev/deadlines/pkg/backup"
	"tableflip.dev/deadlines/pkg/project"
	"tableflip.dev/deadlines/pkg/settings"
	"tableflip.dev/deadlines/pkg/store"
	"tableflip.dev/deadlines/pkg/template"
	"tableflip.dev/deadlines/pkg/timeutil"
)

type memoryPersistence struct {
	mu        sync.Mutex
	projects  map[string]project.Project
	templates map[string]template.Template
	settings  *settings.AppSettings
	failStore bool
}

func newMemoryPersistence() *memoryPersistence {
	return &memoryPersistence{
		projects:  make(map[string]project.Project),
		templates: make(map[string]template.Template),
	}
}

func (m *memoryPersistence) ListProjects(_ context.Context) []project.Project {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]project.Project, 0, len(m.projects))
	for _, p := range m.projects {
		out = append(out, p.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FinalDeadlineDate.Before(out[j].FinalDeadlineDate) })
	return out
}

func (m *memoryPersistence) Project(id string) (*project.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.projects[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := p.Clone()
	return &cp, nil
}

func (m *memoryPersistence) StoreProject(p project.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failStore {
		return errors.New("disk full")
	}
	if p.ID == "" {
		return errors.New("missing id")
	}
	m.projects[p.ID] = p.Clone()
	return nil
}

func (m *memoryPersistence) DeleteProject(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.projects[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.projects, id)
	return nil
}

func (m *memoryPersistence) ListTemplates(_ context.Context) []template.Template {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]template.Template, 0, len(m.templates))
	for _, t := range m.templates {
		out = append(out, t.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (m *memoryPersistence) Template(id string) (*template.Template, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.templates[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := t.Clone()
	return &cp, nil
}

func (m *memoryPersistence) StoreTemplate(t template.Template) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.templates[t.ID] = t.Clone()
	return nil
}

func (m *memoryPersistence) DeleteTemplate(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.templates[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.templates, id)
	return nil
}

func (m *memoryPersistence) Settings() (settings.AppSettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.settings == nil {
		return settings.Default(), nil
	}
	return *m.settings, nil
}

func (m *memoryPersistence) StoreSettings(s settings.AppSettings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings = &s
	return nil
}

func (m *memoryPersistence) Replace(_ context.Context, snap store.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failStore {
		return errors.New("disk full")
	}
	m.projects = make(map[string]project.Project)
	for _, p := range snap.Projects {
		m.projects[p.ID] = p.Clone()
	}
	m.templates = make(map[string]template.Template)
	for _, t := range snap.Templates {
		m.templates[t.ID] = t.Clone()
	}
	s := snap.Settings
	m.settings = &s
	return nil
}

func (m *memoryPersistence) Watch(context.Context) (<-chan store.Event, error) {
	return nil, nil
}

func day(y int, mo time.Month, d int) time.Time {
	return time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
}

func monthlyVideo() template.Template {
	t := template.New("Monthly Video")
	animation := t.AddTrigger("Animation Complete", timeutil.Before(3, timeutil.Weeks))
	feedback := t.AddTrigger("Client Feedback", timeutil.Before(1, timeutil.Weeks))
	t.AddSubDeadline("Script Lock", timeutil.Before(4, timeutil.Weeks), "")
	t.AddSubDeadline("Storyboard Review", timeutil.Before(3, timeutil.Weeks), animation.ID)
	t.AddSubDeadline("Animation Review", timeutil.Before(2, timeutil.Weeks), animation.ID)
	t.AddSubDeadline("Final Delivery", timeutil.Before(1, timeutil.Weeks), feedback.ID)
	return *t
}

func newService(t *testing.T) (*Service, *memoryPersistence, *bytes.Buffer) {
	t.Helper()
	mp := newMemoryPersistence()
	var logs bytes.Buffer
	svc := &Service{
		Persistence: mp,
		Log:         log.New(&logs, "", 0),
		Now:         func() time.Time { return day(2025, time.March, 12) },
	}
	return svc, mp, &logs
}

func TestCreateProjectFromTemplatePersistsTriggers(t *testing.T) {
	svc, mp, _ := newService(t)
	ctx := context.Background()
	tmpl := monthlyVideo()
	if err := svc.SaveTemplate(ctx, tmpl); err != nil {
		t.Fatalf("save template: %v", err)
	}

	p, err := svc.CreateProjectFromTemplate(ctx, "March video", "monthly video", day(2025, time.March, 31))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	stored, err := mp.Project(p.ID)
	if err != nil {
		t.Fatalf("project not stored: %v", err)
	}
	if len(stored.Triggers) != 2 || len(stored.SubDeadlines) != 4 {
		t.Fatalf("unexpected shape: %d triggers, %d sub-deadlines", len(stored.Triggers), len(stored.SubDeadlines))
	}
	if err := stored.Validate(); err != nil {
		t.Errorf("links do not resolve: %v", err)
	}
	if stored.TemplateID != tmpl.ID {
		t.Errorf("template id not recorded")
	}
}

func TestCreateProjectFromUnknownTemplate(t *testing.T) {
	svc, mp, _ := newService(t)
	_, err := svc.CreateProjectFromTemplate(context.Background(), "x", "nope", day(2025, time.March, 31))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if len(mp.projects) != 0 {
		t.Errorf("nothing should be stored")
	}
}

func TestActivateTriggerSetsActivationDate(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()
	tmpl := monthlyVideo()
	_ = svc.SaveTemplate(ctx, tmpl)
	p, err := svc.CreateProjectFromTemplate(ctx, "March video", tmpl.ID, day(2025, time.March, 31))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, trig, err := svc.ActivateTrigger(ctx, p.ID[:8], "animation complete")
	if err != nil {
		t.Fatalf("activate: %v", err)
	}
	if !trig.IsActive || trig.ActivationDate == nil || !trig.ActivationDate.Equal(day(2025, time.March, 12)) {
		t.Fatalf("unexpected trigger state: %+v", trig)
	}

	_, trig, err = svc.DeactivateTrigger(ctx, p.ID, trig.ID)
	if err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if trig.IsActive || trig.ActivationDate != nil {
		t.Errorf("expected cleared trigger, got %+v", trig)
	}
}

func TestAddSubDeadlineRejectsForeignTrigger(t *testing.T) {
	svc, mp, _ := newService(t)
	ctx := context.Background()
	a, _ := svc.CreateProject(ctx, "A", day(2025, time.May, 1))
	b, _ := svc.CreateProject(ctx, "B", day(2025, time.June, 1))
	_, foreign, err := svc.AddTrigger(ctx, b.ID, "Sign-off")
	if err != nil {
		t.Fatalf("add trigger: %v", err)
	}

	_, _, err = svc.AddSubDeadline(ctx, a.ID, "Draft", day(2025, time.April, 1), foreign.ID)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if got, _ := mp.Project(a.ID); len(got.SubDeadlines) != 0 {
		t.Errorf("project must be unchanged")
	}

	_, sd, err := svc.AddSubDeadline(ctx, b.ID, "Draft", day(2025, time.April, 1), "sign-off")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if sd.TriggerID != foreign.ID {
		t.Errorf("expected link to %s, got %q", foreign.ID, sd.TriggerID)
	}
}

func TestSetFinalDeadlineKeepsManualDates(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()
	tmpl := monthlyVideo()
	_ = svc.SaveTemplate(ctx, tmpl)
	p, _ := svc.CreateProjectFromTemplate(ctx, "March video", tmpl.ID, day(2025, time.March, 31))
	if _, _, err := svc.AddSubDeadline(ctx, p.ID, "Coffee", day(2025, time.March, 15), ""); err != nil {
		t.Fatalf("add: %v", err)
	}

	updated, err := svc.SetFinalDeadline(ctx, p.ID, day(2025, time.April, 30))
	if err != nil {
		t.Fatalf("set deadline: %v", err)
	}
	for _, sd := range updated.SubDeadlines {
		if sd.Title == "Coffee" {
			if !sd.Date.Equal(day(2025, time.March, 15)) {
				t.Errorf("manual sub-deadline moved to %v", sd.Date)
			}
			continue
		}
		if sd.Title == "Final Delivery" && !sd.Date.Equal(day(2025, time.April, 23)) {
			t.Errorf("final delivery at %v", sd.Date)
		}
	}
}

func TestSetFinalDeadlineMissingTemplateWarns(t *testing.T) {
	svc, _, logs := newService(t)
	ctx := context.Background()
	tmpl := monthlyVideo()
	_ = svc.SaveTemplate(ctx, tmpl)
	p, _ := svc.CreateProjectFromTemplate(ctx, "March video", tmpl.ID, day(2025, time.March, 31))
	if _, err := svc.DeleteTemplate(ctx, tmpl.ID); err != nil {
		t.Fatalf("delete template: %v", err)
	}

	updated, err := svc.SetFinalDeadline(ctx, p.ID, day(2025, time.April, 30))
	if err != nil {
		t.Fatalf("set deadline: %v", err)
	}
	if !updated.FinalDeadlineDate.Equal(day(2025, time.April, 30)) {
		t.Errorf("final deadline not moved")
	}
	if !updated.SubDeadlines[0].Date.Equal(day(2025, time.March, 3)) {
		t.Errorf("sub-deadlines should not move without a template")
	}
	if !strings.Contains(logs.String(), "not found") {
		t.Errorf("expected a warning, got %q", logs.String())
	}
}

func TestSubtasks(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()
	p, _ := svc.CreateProject(ctx, "Launch", day(2025, time.May, 1))
	_, sd, _ := svc.AddSubDeadline(ctx, p.ID, "Prep", day(2025, time.April, 1), "")
	if _, _, err := svc.AddSubtask(ctx, p.ID, "prep", "Book venue"); err != nil {
		t.Fatalf("add subtask: %v", err)
	}
	updated, err := svc.CompleteSubtask(ctx, p.ID, sd.ID, "book venue", true)
	if err != nil {
		t.Fatalf("complete subtask: %v", err)
	}
	got, _ := updated.SubDeadline(sd.ID)
	if done, total := got.Progress(); done != 1 || total != 1 {
		t.Errorf("progress %d/%d", done, total)
	}

	updated, got, err = svc.CompleteSubDeadline(ctx, p.ID, "Prep", true)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if !got.IsCompleted || !updated.IsFullyCompleted() {
		t.Errorf("expected completed project")
	}
}

func TestAmbiguousReference(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()
	_, _ = svc.CreateProject(ctx, "Same", day(2025, time.May, 1))
	_, _ = svc.CreateProject(ctx, "Same", day(2025, time.June, 1))
	if _, err := svc.Project(ctx, "same"); !errors.Is(err, ErrAmbiguous) {
		t.Fatalf("expected ErrAmbiguous, got %v", err)
	}
}

func TestUpcoming(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()
	tmpl := monthlyVideo()
	_ = svc.SaveTemplate(ctx, tmpl)
	p, _ := svc.CreateProjectFromTemplate(ctx, "March video", tmpl.ID, day(2025, time.March, 31))
	if _, _, err := svc.CompleteSubDeadline(ctx, p.ID, "Script Lock", true); err != nil {
		t.Fatalf("complete: %v", err)
	}

	// Now is 2025-03-12; one week reaches 03-19.
	res, err := svc.Upcoming(ctx, 7*24*time.Hour)
	if err != nil {
		t.Fatalf("upcoming: %v", err)
	}
	var titles []string
	for _, item := range res.Items {
		titles = append(titles, item.SubDeadline.Title)
	}
	if strings.Join(titles, ",") != "Storyboard Review,Animation Review" {
		t.Fatalf("unexpected items: %v", titles)
	}
	if !res.Items[0].Overdue || res.Items[1].Overdue {
		t.Errorf("overdue flags wrong: %+v", res.Items)
	}
	if !res.Items[0].Blocked || res.Items[0].TriggerName != "Animation Complete" {
		t.Errorf("expected blocked by animation trigger: %+v", res.Items[0])
	}

	if _, _, err := svc.ActivateTrigger(ctx, p.ID, "Animation Complete"); err != nil {
		t.Fatalf("activate: %v", err)
	}
	res, _ = svc.Upcoming(ctx, 7*24*time.Hour)
	for _, item := range res.Items {
		if item.Blocked {
			t.Errorf("%s still blocked", item.SubDeadline.Title)
		}
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()
	tmpl := monthlyVideo()
	_ = svc.SaveTemplate(ctx, tmpl)
	p, _ := svc.CreateProjectFromTemplate(ctx, "March video", tmpl.ID, day(2025, time.March, 31))

	data, err := svc.Export(ctx)
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	other, mp, _ := newService(t)
	res, err := other.Import(ctx, data)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if res.Legacy || res.Projects != 1 || res.Templates != 1 || res.Triggers != 2 {
		t.Fatalf("unexpected result: %+v", res)
	}
	got, err := mp.Project(p.ID)
	if err != nil {
		t.Fatalf("project missing after import: %v", err)
	}
	if len(got.Triggers) != 2 {
		t.Errorf("triggers lost")
	}
}

func TestImportBadInputLeavesStoreUntouched(t *testing.T) {
	svc, mp, _ := newService(t)
	ctx := context.Background()
	p, _ := svc.CreateProject(ctx, "Keep me", day(2025, time.May, 1))

	if _, err := svc.Import(ctx, []byte("  ")); !errors.Is(err, backup.ErrNoSourceData) {
		t.Errorf("expected ErrNoSourceData, got %v", err)
	}
	if _, err := svc.Import(ctx, []byte(`{"projects": [`)); !errors.Is(err, backup.ErrMalformedPayload) {
		t.Errorf("expected ErrMalformedPayload, got %v", err)
	}
	if _, err := mp.Project(p.ID); err != nil {
		t.Errorf("existing data was touched: %v", err)
	}
}

func TestImportLegacyWarnsAboutMissingTemplate(t *testing.T) {
	svc, mp, logs := newService(t)
	legacy := `{
  "projects": [{
    "id": "p1",
    "title": "Old project",
    "finalDeadlineDate": "2025-03-31T00:00:00Z",
    "templateID": "gone",
    "subDeadlines": [{"id": "s1", "title": "Step", "date": "2025-03-10T00:00:00Z", "isCompleted": false, "subtasks": [], "triggerID": "stale"}]
  }],
  "templates": []
}`
	res, err := svc.Import(context.Background(), []byte(legacy))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if !res.Legacy || res.Triggers != 0 {
		t.Fatalf("unexpected result: %+v", res)
	}
	got, _ := mp.Project("p1")
	if got.SubDeadlines[0].TriggerID != "" {
		t.Errorf("stale trigger id survived")
	}
	if !strings.Contains(logs.String(), "gone") {
		t.Errorf("expected warning about the missing template, got %q", logs.String())
	}
}
