package printers

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"tableflip.dev/deadlines/pkg/app"
	"tableflip.dev/deadlines/pkg/project"
	"tableflip.dev/deadlines/pkg/template"
	"tableflip.dev/deadlines/pkg/timeutil"
)

type PrettyPrint struct {
	ShowID bool
	// Out defaults to color.Output.
	Out io.Writer
}

const shortID = 8

var (
	faint   = color.New(color.Faint)
	idColor = color.New(color.FgHiYellow, color.Italic, color.Faint)
	blocked = color.New(color.FgRed)
	overdue = color.New(color.FgRed, color.Bold)
	done    = color.New(color.Faint, color.CrossedOut)
	active  = color.New(color.FgGreen)
)

func (pp *PrettyPrint) out() io.Writer {
	if pp.Out != nil {
		return pp.Out
	}
	return color.Output
}

func (pp *PrettyPrint) NewLine() {
	_, _ = fmt.Fprintln(pp.out(), "")
}

func (pp *PrettyPrint) Title(title string) {
	t := color.New(color.Bold, color.Underline)
	_, _ = t.Fprintln(pp.out(), title)
}

func (pp *PrettyPrint) TitleWithCount(title string, count int, noun string) {
	t := color.New(color.Bold, color.Underline)
	_, _ = t.Fprint(pp.out(), title)
	_, _ = faint.Fprintf(pp.out(), " - %d %s", count, noun)
	if count != 1 {
		_, _ = faint.Fprint(pp.out(), "s")
	}
	_, _ = fmt.Fprintln(pp.out(), "")
}

func (pp *PrettyPrint) none() {
	f := color.New(color.Faint, color.Italic)
	_, _ = f.Fprint(pp.out(), " none\n\n")
}

func (pp *PrettyPrint) id(id string) string {
	if !pp.ShowID {
		if len(id) > shortID {
			return id[:shortID]
		}
	}
	return id
}

func day(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(timeutil.LayoutISO)
}

// Projects prints one row per project.
func (pp *PrettyPrint) Projects(projects ...project.Project) {
	pp.TitleWithCount("Projects", len(projects), "project")
	if len(projects) == 0 {
		pp.none()
		return
	}
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold("ID"), bold("Due"), bold("Title"), bold("Progress"), bold("Template"))
	for _, p := range projects {
		completed := 0
		for _, sd := range p.SubDeadlines {
			if sd.IsCompleted {
				completed++
			}
		}
		tbl.AddRow(idColor.Sprint(pp.id(p.ID)), day(p.FinalDeadlineDate), p.Title,
			fmt.Sprintf("%d/%d", completed, len(p.SubDeadlines)), p.TemplateName)
	}
	_, _ = fmt.Fprintln(pp.out(), tbl)
	pp.NewLine()
}

// Project prints a project with its sub-deadlines, subtasks and triggers.
func (pp *PrettyPrint) Project(p *project.Project) {
	pp.Title(p.Title)
	_, _ = faint.Fprintf(pp.out(), "%s  due %s", pp.id(p.ID), day(p.FinalDeadlineDate))
	if p.TemplateName != "" {
		_, _ = faint.Fprintf(pp.out(), "  from %q", p.TemplateName)
	}
	_, _ = fmt.Fprintln(pp.out(), "")
	pp.NewLine()

	pp.TitleWithCount("Sub-deadlines", len(p.SubDeadlines), "sub-deadline")
	if len(p.SubDeadlines) == 0 {
		pp.none()
	}
	for _, sd := range p.SubDeadlines {
		pp.subDeadline(p, sd)
	}
	if len(p.SubDeadlines) > 0 {
		pp.NewLine()
	}

	pp.TitleWithCount("Triggers", len(p.Triggers), "trigger")
	if len(p.Triggers) == 0 {
		pp.none()
		return
	}
	for _, t := range p.Triggers {
		pp.Trigger(t)
	}
	pp.NewLine()
}

func (pp *PrettyPrint) subDeadline(p *project.Project, sd project.SubDeadline) {
	mark := "•"
	printer := color.New()
	switch {
	case sd.IsCompleted:
		mark = "✓"
		printer = done
	case p.IsBlocked(sd):
		mark = "⧗"
		printer = blocked
	}
	_, _ = idColor.Fprintf(pp.out(), "%s ", pp.id(sd.ID))
	_, _ = printer.Fprintf(pp.out(), "%s %s %s", mark, day(sd.Date), sd.Title)
	if t, ok := p.Trigger(sd.TriggerID); ok {
		_, _ = faint.Fprintf(pp.out(), "  [%s]", t.Name)
	}
	if sd.TemplateSubDeadlineID == "" {
		_, _ = faint.Fprint(pp.out(), "  (manual)")
	}
	_, _ = fmt.Fprintln(pp.out(), "")
	for _, st := range sd.Subtasks {
		box := "[ ]"
		if st.IsCompleted {
			box = "[x]"
		}
		_, _ = fmt.Fprintf(pp.out(), "%s    %s %s\n", strings.Repeat(" ", len(pp.id(sd.ID))), box, st.Title)
	}
}

// Trigger prints a single trigger line.
func (pp *PrettyPrint) Trigger(t project.Trigger) {
	_, _ = idColor.Fprintf(pp.out(), "%s ", pp.id(t.ID))
	if t.IsActive {
		_, _ = active.Fprintf(pp.out(), "● %s", t.Name)
		if t.ActivationDate != nil {
			_, _ = faint.Fprintf(pp.out(), "  activated %s", day(*t.ActivationDate))
		}
	} else {
		_, _ = fmt.Fprintf(pp.out(), "○ %s", t.Name)
		if t.Date != nil {
			_, _ = faint.Fprintf(pp.out(), "  expected %s", day(*t.Date))
		}
	}
	_, _ = fmt.Fprintln(pp.out(), "")
}

// Templates prints one row per template.
func (pp *PrettyPrint) Templates(templates ...template.Template) {
	pp.TitleWithCount("Templates", len(templates), "template")
	if len(templates) == 0 {
		pp.none()
		return
	}
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold("ID"), bold("Name"), bold("Sub-deadlines"), bold("Triggers"))
	for _, t := range templates {
		tbl.AddRow(idColor.Sprint(pp.id(t.ID)), t.Name, len(t.SubDeadlines), len(t.TemplateTriggers))
	}
	_, _ = fmt.Fprintln(pp.out(), tbl)
	pp.NewLine()
}

// Template prints a template's relative schedule.
func (pp *PrettyPrint) Template(t *template.Template) {
	pp.Title(t.Name)
	_, _ = faint.Fprintln(pp.out(), pp.id(t.ID))
	pp.NewLine()

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold("Offset"), bold("Sub-deadline"), bold("Gated by"))
	for _, sd := range t.SubDeadlines {
		gate := ""
		if tt, ok := t.Trigger(sd.TemplateTriggerID); ok {
			gate = tt.Name
		}
		tbl.AddRow(sd.Offset.String(), sd.Title, gate)
	}
	_, _ = fmt.Fprintln(pp.out(), tbl)
	pp.NewLine()

	if len(t.TemplateTriggers) > 0 {
		tbl := uitable.New()
		tbl.Separator = "  "
		tbl.AddRow(bold("Offset"), bold("Trigger"))
		for _, tt := range t.TemplateTriggers {
			tbl.AddRow(tt.Offset.String(), tt.Name)
		}
		_, _ = fmt.Fprintln(pp.out(), tbl)
		pp.NewLine()
	}
}

// Upcoming prints the upcoming report.
func (pp *PrettyPrint) Upcoming(res app.UpcomingResult, label string) {
	pp.TitleWithCount(fmt.Sprintf("Upcoming (%s, until %s)", label, day(res.Until)), len(res.Items), "sub-deadline")
	if len(res.Items) == 0 {
		pp.none()
		return
	}
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold("Date"), bold("Project"), bold("Sub-deadline"), bold("Status"))
	for _, item := range res.Items {
		status := ""
		switch {
		case item.Blocked:
			status = blocked.Sprintf("waiting on %s", item.TriggerName)
		case item.TriggerName != "":
			status = active.Sprintf("%s ready", item.TriggerName)
		}
		date := day(item.SubDeadline.Date)
		if item.Overdue {
			date = overdue.Sprint(date)
		}
		tbl.AddRow(date, item.ProjectTitle, item.SubDeadline.Title, status)
	}
	_, _ = fmt.Fprintln(pp.out(), tbl)
	pp.NewLine()
}

// ImportResult summarises an import.
func (pp *PrettyPrint) ImportResult(res app.ImportResult) {
	schema := "current"
	if res.Legacy {
		schema = "legacy, upgraded"
	}
	pp.Title("Import complete")
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow("Schema", schema)
	tbl.AddRow("Projects", res.Projects)
	tbl.AddRow("Templates", res.Templates)
	tbl.AddRow("Triggers", res.Triggers)
	tbl.AddRow("Dropped references", len(res.Unresolved))
	_, _ = fmt.Fprintln(pp.out(), tbl)
	pp.NewLine()
}

func bold(s string) string {
	return color.New(color.Bold).Sprint(s)
}
