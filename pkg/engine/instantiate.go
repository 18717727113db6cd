// Package engine turns templates into project-scoped records and keeps
// template-derived dates in step with a project's final deadline. Every
// function here is pure: inputs are copied and nothing is persisted.
package engine

import (
	"fmt"
	"time"

	"tableflip.dev/deadlines/pkg/ids"
	"tableflip.dev/deadlines/pkg/project"
	"tableflip.dev/deadlines/pkg/template"
	"tableflip.dev/deadlines/pkg/timeutil"
)

// TriggerMap maps TemplateTrigger ids to the Trigger ids minted for one
// project.
type TriggerMap map[string]string

// Unresolved records a reference that could not be followed and was dropped.
// Callers log these; they are never errors.
type Unresolved struct {
	ProjectID string
	Record    string
	Reference string
	Reason    string
}

func (u Unresolved) String() string {
	return fmt.Sprintf("project %s: %s: dropped reference %s (%s)", u.ProjectID, u.Record, u.Reference, u.Reason)
}

// Instantiation is the output of Instantiate.
type Instantiation struct {
	SubDeadlines []project.SubDeadline
	Triggers     []project.Trigger
	TriggerMap   TriggerMap
	Unresolved   []Unresolved
}

// InstantiateTriggers creates one inactive Trigger per TemplateTrigger of t,
// scoped to projectID, and returns them with the template-to-project id map.
// Trigger dates are anchored to finalDeadline.
func InstantiateTriggers(t template.Template, finalDeadline time.Time, projectID string) ([]project.Trigger, TriggerMap, error) {
	triggers := make([]project.Trigger, 0, len(t.TemplateTriggers))
	mapping := make(TriggerMap, len(t.TemplateTriggers))
	for _, tt := range t.TemplateTriggers {
		date, err := timeutil.CalculateDate(finalDeadline, tt.Offset)
		if err != nil {
			return nil, nil, err
		}
		trig := project.NewTrigger(tt.Name, projectID)
		trig.OriginatingTemplateTriggerID = tt.ID
		trig.Date = &date
		triggers = append(triggers, trig)
		mapping[tt.ID] = trig.ID
	}
	return triggers, mapping, nil
}

// Instantiate materialises t against finalDeadline for projectID. An empty
// projectID mints a fresh one, which callers read back from the triggers or
// pass in up front when they already own the project.
func Instantiate(t template.Template, finalDeadline time.Time, projectID string) (Instantiation, error) {
	if projectID == "" {
		projectID = ids.New()
	}

	triggers, mapping, err := InstantiateTriggers(t, finalDeadline, projectID)
	if err != nil {
		return Instantiation{}, err
	}

	out := Instantiation{
		SubDeadlines: make([]project.SubDeadline, 0, len(t.SubDeadlines)),
		Triggers:     triggers,
		TriggerMap:   mapping,
	}
	for _, tsd := range t.SubDeadlines {
		date, err := timeutil.CalculateDate(finalDeadline, tsd.Offset)
		if err != nil {
			return Instantiation{}, err
		}
		sd := project.NewSubDeadline(tsd.Title, date)
		sd.TemplateSubDeadlineID = tsd.ID
		if tsd.TemplateTriggerID != "" {
			if id, ok := mapping[tsd.TemplateTriggerID]; ok {
				sd.TriggerID = id
			} else {
				out.Unresolved = append(out.Unresolved, Unresolved{
					ProjectID: projectID,
					Record:    fmt.Sprintf("sub-deadline %q", tsd.Title),
					Reference: tsd.TemplateTriggerID,
					Reason:    "template trigger not found in template " + t.Name,
				})
			}
		}
		out.SubDeadlines = append(out.SubDeadlines, sd)
	}
	project.SortSubDeadlines(out.SubDeadlines)
	return out, nil
}

// NewProject builds a complete project from t.
func NewProject(title string, t template.Template, finalDeadline time.Time) (*project.Project, []Unresolved, error) {
	p := project.New(title, finalDeadline)
	inst, err := Instantiate(t, finalDeadline, p.ID)
	if err != nil {
		return nil, nil, err
	}
	p.SubDeadlines = inst.SubDeadlines
	p.Triggers = inst.Triggers
	p.TemplateID = t.ID
	p.TemplateName = t.Name
	return p, inst.Unresolved, nil
}
