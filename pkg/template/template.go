// Package template defines reusable deadline blueprints: named sets of
// relative sub-deadlines and the triggers that gate them.
package template

import (
	"errors"
	"fmt"
	"strings"

	"tableflip.dev/deadlines/pkg/ids"
	"tableflip.dev/deadlines/pkg/timeutil"
)

// TemplateTrigger is a precondition defined on a template. It is copied into
// a project-scoped trigger when the template is instantiated.
type TemplateTrigger struct {
	ID     string              `json:"id"`
	Name   string              `json:"name"`
	Offset timeutil.TimeOffset `json:"offset"`
}

// TemplateSubDeadline is a sub-deadline expressed relative to the final
// deadline, optionally gated by one of the template's triggers.
type TemplateSubDeadline struct {
	ID                string              `json:"id"`
	Title             string              `json:"title"`
	Offset            timeutil.TimeOffset `json:"offset"`
	TemplateTriggerID string              `json:"templateTriggerID,omitempty"`
}

// Template is a reusable blueprint for projects.
type Template struct {
	ID               string                `json:"id"`
	Name             string                `json:"name"`
	SubDeadlines     []TemplateSubDeadline `json:"subDeadlines"`
	TemplateTriggers []TemplateTrigger     `json:"templateTriggers"`
}

var (
	ErrNameRequired = errors.New("template: name required")
)

// New returns an empty template with a fresh id.
func New(name string) *Template {
	return &Template{
		ID:               ids.New(),
		Name:             strings.TrimSpace(name),
		SubDeadlines:     []TemplateSubDeadline{},
		TemplateTriggers: []TemplateTrigger{},
	}
}

// AddTrigger appends a template trigger and returns it.
func (t *Template) AddTrigger(name string, offset timeutil.TimeOffset) TemplateTrigger {
	tt := TemplateTrigger{ID: ids.New(), Name: strings.TrimSpace(name), Offset: offset}
	t.TemplateTriggers = append(t.TemplateTriggers, tt)
	return tt
}

// AddSubDeadline appends a template sub-deadline gated by triggerID, which may
// be empty.
func (t *Template) AddSubDeadline(title string, offset timeutil.TimeOffset, triggerID string) TemplateSubDeadline {
	sd := TemplateSubDeadline{
		ID:                ids.New(),
		Title:             strings.TrimSpace(title),
		Offset:            offset,
		TemplateTriggerID: triggerID,
	}
	t.SubDeadlines = append(t.SubDeadlines, sd)
	return sd
}

// Trigger looks up a template trigger by id.
func (t *Template) Trigger(id string) (TemplateTrigger, bool) {
	if id == "" {
		return TemplateTrigger{}, false
	}
	for _, tt := range t.TemplateTriggers {
		if tt.ID == id {
			return tt, true
		}
	}
	return TemplateTrigger{}, false
}

// SubDeadline looks up a template sub-deadline by id.
func (t *Template) SubDeadline(id string) (TemplateSubDeadline, bool) {
	if id == "" {
		return TemplateSubDeadline{}, false
	}
	for _, sd := range t.SubDeadlines {
		if sd.ID == id {
			return sd, true
		}
	}
	return TemplateSubDeadline{}, false
}

// Validate checks the template's internal consistency: ids are present and
// unique, offsets are well formed and every trigger reference resolves within
// the template.
func (t *Template) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return ErrNameRequired
	}
	if t.ID == "" {
		return fmt.Errorf("template %q: id required", t.Name)
	}

	seen := make(map[string]struct{}, len(t.TemplateTriggers))
	for _, tt := range t.TemplateTriggers {
		if tt.ID == "" {
			return fmt.Errorf("template %q: trigger %q has no id", t.Name, tt.Name)
		}
		if _, dup := seen[tt.ID]; dup {
			return fmt.Errorf("template %q: duplicate trigger id %s", t.Name, tt.ID)
		}
		seen[tt.ID] = struct{}{}
		if err := validateOffset(tt.Offset); err != nil {
			return fmt.Errorf("template %q: trigger %q: %w", t.Name, tt.Name, err)
		}
	}

	subs := make(map[string]struct{}, len(t.SubDeadlines))
	for _, sd := range t.SubDeadlines {
		if sd.ID == "" {
			return fmt.Errorf("template %q: sub-deadline %q has no id", t.Name, sd.Title)
		}
		if _, dup := subs[sd.ID]; dup {
			return fmt.Errorf("template %q: duplicate sub-deadline id %s", t.Name, sd.ID)
		}
		subs[sd.ID] = struct{}{}
		if err := validateOffset(sd.Offset); err != nil {
			return fmt.Errorf("template %q: sub-deadline %q: %w", t.Name, sd.Title, err)
		}
		if sd.TemplateTriggerID == "" {
			continue
		}
		if _, ok := seen[sd.TemplateTriggerID]; !ok {
			return fmt.Errorf("template %q: sub-deadline %q references unknown trigger %s",
				t.Name, sd.Title, sd.TemplateTriggerID)
		}
	}
	return nil
}

func validateOffset(o timeutil.TimeOffset) error {
	if o.Magnitude < 0 {
		return fmt.Errorf("negative offset magnitude %d", o.Magnitude)
	}
	if !o.Unit.Valid() {
		return fmt.Errorf("unknown offset unit %q", o.Unit)
	}
	return nil
}

// Clone returns a deep copy of t.
func (t Template) Clone() Template {
	out := t
	out.SubDeadlines = append([]TemplateSubDeadline(nil), t.SubDeadlines...)
	out.TemplateTriggers = append([]TemplateTrigger(nil), t.TemplateTriggers...)
	return out
}

// Index maps template ids to templates.
func Index(templates []Template) map[string]Template {
	out := make(map[string]Template, len(templates))
	for _, t := range templates {
		if t.ID == "" {
			continue
		}
		out[t.ID] = t
	}
	return out
}
