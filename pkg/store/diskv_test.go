package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"tableflip.dev/deadlines/pkg/project"
	"tableflip.dev/deadlines/pkg/settings"
	"tableflip.dev/deadlines/pkg/template"
	"tableflip.dev/deadlines/pkg/timeutil"
)

func load(t *testing.T) Persistence {
	t.Helper()
	p, err := Load(testConfig{path: t.TempDir()})
	if err != nil {
		t.Fatalf("load persistence: %v", err)
	}
	return p
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestProjectRoundTrip(t *testing.T) {
	p := load(t)
	ctx := context.Background()

	later := project.New("Later", day(2025, time.July, 1))
	sooner := project.New("Sooner", day(2025, time.June, 1))
	trig := sooner.AddTrigger(project.NewTrigger("Approval", "someone-else"))
	sd := project.NewSubDeadline("Draft", day(2025, time.May, 20))
	sd.TriggerID = trig.ID
	if err := sooner.AddSubDeadline(sd); err != nil {
		t.Fatalf("add sub-deadline: %v", err)
	}

	for _, pr := range []*project.Project{later, sooner} {
		if err := p.StoreProject(*pr); err != nil {
			t.Fatalf("store %s: %v", pr.Title, err)
		}
	}

	all := p.ListProjects(ctx)
	if len(all) != 2 {
		t.Fatalf("expected 2 projects, got %d", len(all))
	}
	if all[0].Title != "Sooner" {
		t.Errorf("expected projects ordered by final deadline, got %q first", all[0].Title)
	}

	got, err := p.Project(sooner.ID)
	if err != nil {
		t.Fatalf("project: %v", err)
	}
	if len(got.Triggers) != 1 || got.Triggers[0].ProjectID != sooner.ID {
		t.Fatalf("trigger not scoped to project: %+v", got.Triggers)
	}
	if got.SubDeadlines[0].TriggerID != trig.ID {
		t.Errorf("sub-deadline link lost")
	}
	if !got.FinalDeadlineDate.Equal(sooner.FinalDeadlineDate) {
		t.Errorf("final deadline changed: %v", got.FinalDeadlineDate)
	}

	if err := p.DeleteProject(sooner.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := p.Project(sooner.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := p.DeleteProject(sooner.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestTemplateRoundTrip(t *testing.T) {
	p := load(t)
	tmpl := template.New("Podcast")
	gate := tmpl.AddTrigger("Guest confirmed", timeutil.Before(2, timeutil.Weeks))
	tmpl.AddSubDeadline("Record", timeutil.Before(1, timeutil.Weeks), gate.ID)

	if err := p.StoreTemplate(*tmpl); err != nil {
		t.Fatalf("store template: %v", err)
	}
	got, err := p.Template(tmpl.ID)
	if err != nil {
		t.Fatalf("template: %v", err)
	}
	if got.Name != "Podcast" || len(got.SubDeadlines) != 1 || got.SubDeadlines[0].TemplateTriggerID != gate.ID {
		t.Errorf("unexpected template: %+v", got)
	}
	if n := len(p.ListTemplates(context.Background())); n != 1 {
		t.Errorf("expected 1 template, got %d", n)
	}
}

func TestSettingsDefault(t *testing.T) {
	p := load(t)
	s, err := p.Settings()
	if err != nil {
		t.Fatalf("settings: %v", err)
	}
	if s != settings.Default() {
		t.Errorf("expected defaults, got %+v", s)
	}
	s.ReminderLeadDays = 3
	s.WidgetProjectID = "abc"
	if err := p.StoreSettings(s); err != nil {
		t.Fatalf("store settings: %v", err)
	}
	got, _ := p.Settings()
	if got != s {
		t.Errorf("got %+v, want %+v", got, s)
	}
}

func TestReplace(t *testing.T) {
	p := load(t)
	ctx := context.Background()

	old := project.New("Old", day(2025, time.January, 1))
	if err := p.StoreProject(*old); err != nil {
		t.Fatalf("store: %v", err)
	}

	fresh := project.New("Fresh", day(2025, time.February, 1))
	tmpl := template.New("Blank")
	snap := Snapshot{
		Projects:  []project.Project{*fresh},
		Templates: []template.Template{*tmpl},
		Settings:  settings.AppSettings{ReminderLeadDays: 2},
	}
	if err := p.Replace(ctx, snap); err != nil {
		t.Fatalf("replace: %v", err)
	}

	all := p.ListProjects(ctx)
	if len(all) != 1 || all[0].ID != fresh.ID {
		t.Fatalf("expected only the fresh project, got %+v", all)
	}
	if len(p.ListTemplates(ctx)) != 1 {
		t.Errorf("expected the imported template")
	}
	if s, _ := p.Settings(); s.ReminderLeadDays != 2 || s.NotificationsEnabled {
		t.Errorf("settings not replaced: %+v", s)
	}
}

func TestReplaceRestoresOnFailure(t *testing.T) {
	p := load(t)
	ctx := context.Background()

	old := project.New("Old", day(2025, time.January, 1))
	if err := p.StoreProject(*old); err != nil {
		t.Fatalf("store: %v", err)
	}

	bad := project.Project{Title: "no id"}
	if err := p.Replace(ctx, Snapshot{Projects: []project.Project{bad}}); err == nil {
		t.Fatal("expected an error")
	}

	all := p.ListProjects(ctx)
	if len(all) != 1 || all[0].ID != old.ID {
		t.Fatalf("expected the previous data set, got %+v", all)
	}
}
