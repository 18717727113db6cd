package backup

import (
	"fmt"
	"strings"

	"tableflip.dev/deadlines/pkg/engine"
	"tableflip.dev/deadlines/pkg/ids"
	"tableflip.dev/deadlines/pkg/project"
	"tableflip.dev/deadlines/pkg/template"
)

// legacyPayloadRecord is the pre-trigger backup schema.
type legacyPayloadRecord struct {
	Version   int                 `json:"version,omitempty"`
	Projects  []LegacyProject     `json:"projects"`
	Templates []template.Template `json:"templates"`
}

// LegacyProject is a project as written by the pre-trigger schema. It has no
// triggers, and the TriggerID carried by its sub-deadlines is not trusted.
type LegacyProject struct {
	ID                string              `json:"id"`
	Title             string              `json:"title"`
	FinalDeadlineDate Timestamp           `json:"finalDeadlineDate"`
	SubDeadlines      []LegacySubDeadline `json:"subDeadlines"`
	TemplateID        string              `json:"templateID,omitempty"`
	TemplateName      string              `json:"templateName,omitempty"`
}

// LegacySubDeadline is a sub-deadline as written by the pre-trigger schema.
type LegacySubDeadline struct {
	ID                    string            `json:"id"`
	Title                 string            `json:"title"`
	Date                  Timestamp         `json:"date"`
	IsCompleted           bool              `json:"isCompleted"`
	Subtasks              []project.Subtask `json:"subtasks"`
	TemplateSubDeadlineID string            `json:"templateSubDeadlineID,omitempty"`
	TriggerID             string            `json:"triggerID,omitempty"`
}

// Reconstruction is the output of Reconstruct.
type Reconstruction struct {
	Projects   []project.Project
	Triggers   []project.Trigger
	Unresolved []engine.Unresolved
}

// Reconstruct upgrades legacy projects to the current schema. Triggers are
// re-derived from each project's template and sub-deadlines are relinked
// through the template definitions; nothing from the legacy TriggerID values
// survives. A project whose template is missing comes back with no triggers
// and no links.
func Reconstruct(old []LegacyProject, templates []template.Template) (Reconstruction, error) {
	byID := template.Index(templates)
	out := Reconstruction{
		Projects: make([]project.Project, 0, len(old)),
	}

	for _, lp := range old {
		p := lp.base()

		tmpl, found := byID[lp.TemplateID]
		if !found {
			if lp.TemplateID != "" {
				out.Unresolved = append(out.Unresolved, engine.Unresolved{
					ProjectID: p.ID,
					Record:    fmt.Sprintf("project %q", p.Title),
					Reference: lp.TemplateID,
					Reason:    "template not in backup; triggers not reconstructed",
				})
			}
			for _, lsd := range lp.SubDeadlines {
				p.SubDeadlines = append(p.SubDeadlines, lsd.base())
			}
			project.SortSubDeadlines(p.SubDeadlines)
			out.Projects = append(out.Projects, p)
			continue
		}

		triggers, mapping, err := engine.InstantiateTriggers(tmpl, p.FinalDeadlineDate, p.ID)
		if err != nil {
			return Reconstruction{}, fmt.Errorf("backup: reconstruct project %q: %w", p.Title, err)
		}
		p.Triggers = triggers
		if p.TemplateName == "" {
			p.TemplateName = tmpl.Name
		}

		for _, lsd := range lp.SubDeadlines {
			sd := lsd.base()
			if tsd, ok := tmpl.SubDeadline(lsd.TemplateSubDeadlineID); ok && tsd.TemplateTriggerID != "" {
				if id, ok := mapping[tsd.TemplateTriggerID]; ok {
					sd.TriggerID = id
				} else {
					out.Unresolved = append(out.Unresolved, engine.Unresolved{
						ProjectID: p.ID,
						Record:    fmt.Sprintf("sub-deadline %q", sd.Title),
						Reference: tsd.TemplateTriggerID,
						Reason:    "template trigger not found in template " + tmpl.Name,
					})
				}
			}
			p.SubDeadlines = append(p.SubDeadlines, sd)
		}
		project.SortSubDeadlines(p.SubDeadlines)
		out.Projects = append(out.Projects, p)
	}

	out.Triggers = project.AllTriggers(out.Projects)
	return out, nil
}

// base converts the trusted fields of lp. Triggers start empty.
func (lp LegacyProject) base() project.Project {
	id := strings.TrimSpace(lp.ID)
	if id == "" {
		id = ids.New()
	}
	return project.Project{
		ID:                id,
		Title:             lp.Title,
		FinalDeadlineDate: lp.FinalDeadlineDate.Time,
		SubDeadlines:      make([]project.SubDeadline, 0, len(lp.SubDeadlines)),
		Triggers:          []project.Trigger{},
		TemplateID:        lp.TemplateID,
		TemplateName:      lp.TemplateName,
	}
}

// base converts the trusted fields of lsd; TriggerID is always dropped.
func (lsd LegacySubDeadline) base() project.SubDeadline {
	id := strings.TrimSpace(lsd.ID)
	if id == "" {
		id = ids.New()
	}
	subtasks := lsd.Subtasks
	if subtasks == nil {
		subtasks = []project.Subtask{}
	}
	return project.SubDeadline{
		ID:                    id,
		Title:                 lsd.Title,
		Date:                  lsd.Date.Time,
		IsCompleted:           lsd.IsCompleted,
		Subtasks:              subtasks,
		TemplateSubDeadlineID: lsd.TemplateSubDeadlineID,
	}
}
