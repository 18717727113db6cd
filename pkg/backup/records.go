package backup

import (
	"tableflip.dev/deadlines/pkg/project"
	"tableflip.dev/deadlines/pkg/settings"
	"tableflip.dev/deadlines/pkg/template"
)

// CurrentVersion is the schema version written by Encode.
const CurrentVersion = 2

// payloadRecord is the current on-the-wire schema.
type payloadRecord struct {
	Version     int                   `json:"version"`
	ExportedAt  Timestamp             `json:"exportedAt"`
	Projects    []projectRecord       `json:"projects"`
	Templates   []template.Template   `json:"templates"`
	Triggers    []triggerRecord       `json:"triggers"`
	AppSettings *settings.AppSettings `json:"appSettings,omitempty"`
}

type projectRecord struct {
	ID                string              `json:"id"`
	Title             string              `json:"title"`
	FinalDeadlineDate Timestamp           `json:"finalDeadlineDate"`
	SubDeadlines      []subDeadlineRecord `json:"subDeadlines"`
	Triggers          []triggerRecord     `json:"triggers"`
	TemplateID        string              `json:"templateID,omitempty"`
	TemplateName      string              `json:"templateName,omitempty"`
}

type subDeadlineRecord struct {
	ID                    string            `json:"id"`
	Title                 string            `json:"title"`
	Date                  Timestamp         `json:"date"`
	IsCompleted           bool              `json:"isCompleted"`
	Subtasks              []project.Subtask `json:"subtasks"`
	TemplateSubDeadlineID string            `json:"templateSubDeadlineID,omitempty"`
	TriggerID             string            `json:"triggerID,omitempty"`
}

type triggerRecord struct {
	ID                           string     `json:"id"`
	Name                         string     `json:"name"`
	ProjectID                    string     `json:"projectID"`
	IsActive                     bool       `json:"isActive"`
	ActivationDate               *Timestamp `json:"activationDate,omitempty"`
	OriginatingTemplateTriggerID string     `json:"originatingTemplateTriggerID,omitempty"`
	Date                         *Timestamp `json:"date,omitempty"`
}

func fromProject(p project.Project) projectRecord {
	rec := projectRecord{
		ID:                p.ID,
		Title:             p.Title,
		FinalDeadlineDate: stamp(p.FinalDeadlineDate),
		SubDeadlines:      make([]subDeadlineRecord, 0, len(p.SubDeadlines)),
		Triggers:          make([]triggerRecord, 0, len(p.Triggers)),
		TemplateID:        p.TemplateID,
		TemplateName:      p.TemplateName,
	}
	for _, sd := range p.SubDeadlines {
		subtasks := sd.Subtasks
		if subtasks == nil {
			subtasks = []project.Subtask{}
		}
		rec.SubDeadlines = append(rec.SubDeadlines, subDeadlineRecord{
			ID:                    sd.ID,
			Title:                 sd.Title,
			Date:                  stamp(sd.Date),
			IsCompleted:           sd.IsCompleted,
			Subtasks:              subtasks,
			TemplateSubDeadlineID: sd.TemplateSubDeadlineID,
			TriggerID:             sd.TriggerID,
		})
	}
	for _, t := range p.Triggers {
		rec.Triggers = append(rec.Triggers, fromTrigger(t))
	}
	return rec
}

func fromTrigger(t project.Trigger) triggerRecord {
	return triggerRecord{
		ID:                           t.ID,
		Name:                         t.Name,
		ProjectID:                    t.ProjectID,
		IsActive:                     t.IsActive,
		ActivationDate:               stampPtr(t.ActivationDate),
		OriginatingTemplateTriggerID: t.OriginatingTemplateTriggerID,
		Date:                         stampPtr(t.Date),
	}
}

func (rec projectRecord) toProject() project.Project {
	p := project.Project{
		ID:                rec.ID,
		Title:             rec.Title,
		FinalDeadlineDate: rec.FinalDeadlineDate.Time,
		SubDeadlines:      make([]project.SubDeadline, 0, len(rec.SubDeadlines)),
		Triggers:          make([]project.Trigger, 0, len(rec.Triggers)),
		TemplateID:        rec.TemplateID,
		TemplateName:      rec.TemplateName,
	}
	for _, sd := range rec.SubDeadlines {
		subtasks := sd.Subtasks
		if subtasks == nil {
			subtasks = []project.Subtask{}
		}
		p.SubDeadlines = append(p.SubDeadlines, project.SubDeadline{
			ID:                    sd.ID,
			Title:                 sd.Title,
			Date:                  sd.Date.Time,
			IsCompleted:           sd.IsCompleted,
			Subtasks:              subtasks,
			TemplateSubDeadlineID: sd.TemplateSubDeadlineID,
			TriggerID:             sd.TriggerID,
		})
	}
	for _, t := range rec.Triggers {
		p.Triggers = append(p.Triggers, t.toTrigger())
	}
	return p
}

func (rec triggerRecord) toTrigger() project.Trigger {
	return project.Trigger{
		ID:                           rec.ID,
		Name:                         rec.Name,
		ProjectID:                    rec.ProjectID,
		IsActive:                     rec.IsActive,
		ActivationDate:               rec.ActivationDate.timePtr(),
		OriginatingTemplateTriggerID: rec.OriginatingTemplateTriggerID,
		Date:                         rec.Date.timePtr(),
	}
}
