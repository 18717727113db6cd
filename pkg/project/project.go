// Package project holds the project-scoped records: projects, their
// sub-deadlines and subtasks, and the triggers that gate sub-deadlines.
package project

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"tableflip.dev/deadlines/pkg/ids"
)

// Subtask is a checklist item inside a sub-deadline.
type Subtask struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	IsCompleted bool   `json:"isCompleted"`
}

// SubDeadline is a dated milestone on the way to a project's final deadline.
type SubDeadline struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Date        time.Time `json:"date"`
	IsCompleted bool      `json:"isCompleted"`
	Subtasks    []Subtask `json:"subtasks"`

	// TemplateSubDeadlineID links back to the template definition this
	// sub-deadline was derived from. Empty for manually added ones.
	TemplateSubDeadlineID string `json:"templateSubDeadlineID,omitempty"`
	// TriggerID names a Trigger of the same project gating this sub-deadline.
	TriggerID string `json:"triggerID,omitempty"`
}

// Trigger is a project-scoped precondition that is satisfied externally.
type Trigger struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	ProjectID      string     `json:"projectID"`
	IsActive       bool       `json:"isActive"`
	ActivationDate *time.Time `json:"activationDate,omitempty"`
	Date           *time.Time `json:"date,omitempty"`

	OriginatingTemplateTriggerID string `json:"originatingTemplateTriggerID,omitempty"`
}

// Project is a final deadline with the sub-deadlines and triggers leading up
// to it.
type Project struct {
	ID                string        `json:"id"`
	Title             string        `json:"title"`
	FinalDeadlineDate time.Time     `json:"finalDeadlineDate"`
	SubDeadlines      []SubDeadline `json:"subDeadlines"`
	Triggers          []Trigger     `json:"triggers"`
	TemplateID        string        `json:"templateID,omitempty"`
	TemplateName      string        `json:"templateName,omitempty"`
}

var (
	ErrTitleRequired   = errors.New("project: title required")
	ErrTriggerNotFound = errors.New("project: trigger not found")
)

// New returns an empty project with a fresh id.
func New(title string, finalDeadline time.Time) *Project {
	return &Project{
		ID:                ids.New(),
		Title:             strings.TrimSpace(title),
		FinalDeadlineDate: finalDeadline,
		SubDeadlines:      []SubDeadline{},
		Triggers:          []Trigger{},
	}
}

// NewSubDeadline returns a manually created sub-deadline.
func NewSubDeadline(title string, date time.Time) SubDeadline {
	return SubDeadline{
		ID:       ids.New(),
		Title:    strings.TrimSpace(title),
		Date:     date,
		Subtasks: []Subtask{},
	}
}

// NewTrigger returns an inactive trigger owned by projectID.
func NewTrigger(name, projectID string) Trigger {
	return Trigger{
		ID:        ids.New(),
		Name:      strings.TrimSpace(name),
		ProjectID: projectID,
	}
}

// IsFullyCompleted reports whether every sub-deadline is completed.
func (p *Project) IsFullyCompleted() bool {
	for _, sd := range p.SubDeadlines {
		if !sd.IsCompleted {
			return false
		}
	}
	return true
}

// SortSubDeadlines orders sub-deadlines by date, keeping the existing order
// for equal dates.
func SortSubDeadlines(subs []SubDeadline) {
	sort.SliceStable(subs, func(i, j int) bool {
		return subs[i].Date.Before(subs[j].Date)
	})
}

// SubDeadline returns a pointer into p.SubDeadlines for id.
func (p *Project) SubDeadline(id string) (*SubDeadline, bool) {
	for i := range p.SubDeadlines {
		if p.SubDeadlines[i].ID == id {
			return &p.SubDeadlines[i], true
		}
	}
	return nil, false
}

// Trigger returns a pointer into p.Triggers for id.
func (p *Project) Trigger(id string) (*Trigger, bool) {
	if id == "" {
		return nil, false
	}
	for i := range p.Triggers {
		if p.Triggers[i].ID == id {
			return &p.Triggers[i], true
		}
	}
	return nil, false
}

// AddSubDeadline inserts sd keeping the date order. A non-empty TriggerID
// must name one of p's triggers.
func (p *Project) AddSubDeadline(sd SubDeadline) error {
	if sd.TriggerID != "" {
		if _, ok := p.Trigger(sd.TriggerID); !ok {
			return fmt.Errorf("%w: %s", ErrTriggerNotFound, sd.TriggerID)
		}
	}
	if sd.Subtasks == nil {
		sd.Subtasks = []Subtask{}
	}
	p.SubDeadlines = append(p.SubDeadlines, sd)
	SortSubDeadlines(p.SubDeadlines)
	return nil
}

// AddTrigger attaches t to p. The trigger is re-scoped to p.
func (p *Project) AddTrigger(t Trigger) Trigger {
	t.ProjectID = p.ID
	p.Triggers = append(p.Triggers, t)
	return t
}

// RemoveTrigger deletes the trigger and unlinks every sub-deadline it gated.
func (p *Project) RemoveTrigger(id string) error {
	idx := -1
	for i := range p.Triggers {
		if p.Triggers[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrTriggerNotFound, id)
	}
	p.Triggers = append(p.Triggers[:idx], p.Triggers[idx+1:]...)
	for i := range p.SubDeadlines {
		if p.SubDeadlines[i].TriggerID == id {
			p.SubDeadlines[i].TriggerID = ""
		}
	}
	return nil
}

// Activate marks the trigger satisfied at the given time.
func (t *Trigger) Activate(at time.Time) {
	t.IsActive = true
	t.ActivationDate = &at
}

// Deactivate clears the trigger's satisfied state.
func (t *Trigger) Deactivate() {
	t.IsActive = false
	t.ActivationDate = nil
}

// IsBlocked reports whether sd is gated by a trigger that is not yet active.
// A dangling trigger id does not block.
func (p *Project) IsBlocked(sd SubDeadline) bool {
	t, ok := p.Trigger(sd.TriggerID)
	return ok && !t.IsActive
}

// Validate checks the ownership invariants: every trigger belongs to p and
// every sub-deadline trigger link resolves within p.
func (p *Project) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return ErrTitleRequired
	}
	for _, t := range p.Triggers {
		if t.ProjectID != p.ID {
			return fmt.Errorf("project %q: trigger %s belongs to project %s", p.Title, t.ID, t.ProjectID)
		}
	}
	for _, sd := range p.SubDeadlines {
		if sd.TriggerID == "" {
			continue
		}
		if _, ok := p.Trigger(sd.TriggerID); !ok {
			return fmt.Errorf("project %q: sub-deadline %q: %w: %s", p.Title, sd.Title, ErrTriggerNotFound, sd.TriggerID)
		}
	}
	return nil
}

// Clone returns a deep copy of p.
func (p Project) Clone() Project {
	out := p
	out.SubDeadlines = make([]SubDeadline, len(p.SubDeadlines))
	for i, sd := range p.SubDeadlines {
		sd.Subtasks = append([]Subtask{}, sd.Subtasks...)
		out.SubDeadlines[i] = sd
	}
	out.Triggers = make([]Trigger, len(p.Triggers))
	for i, t := range p.Triggers {
		out.Triggers[i] = t.Clone()
	}
	return out
}

// Clone returns a copy of t that shares no pointers with it.
func (t Trigger) Clone() Trigger {
	if t.ActivationDate != nil {
		at := *t.ActivationDate
		t.ActivationDate = &at
	}
	if t.Date != nil {
		d := *t.Date
		t.Date = &d
	}
	return t
}

// AllTriggers flattens the triggers of every project.
func AllTriggers(projects []Project) []Trigger {
	var out []Trigger
	for _, p := range projects {
		for _, t := range p.Triggers {
			out = append(out, t.Clone())
		}
	}
	return out
}
