// Package backup encodes and decodes the JSON backup payload and upgrades
// backups written before triggers existed.
package backup

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"tableflip.dev/deadlines/pkg/engine"
	"tableflip.dev/deadlines/pkg/project"
	"tableflip.dev/deadlines/pkg/settings"
	"tableflip.dev/deadlines/pkg/template"
)

// Payload is the decoded content of a backup.
type Payload struct {
	Projects   []project.Project
	Templates  []template.Template
	Triggers   []project.Trigger
	Settings   *settings.AppSettings
	ExportedAt time.Time

	// Legacy is set when the input used the pre-trigger schema.
	Legacy bool
	// Unresolved lists references dropped while decoding.
	Unresolved []engine.Unresolved
}

// schemaPeek finds out which schema a payload uses without committing to one.
type schemaPeek struct {
	Version  int             `json:"version"`
	Projects json.RawMessage `json:"projects"`
	Triggers json.RawMessage `json:"triggers"`
}

// Encode writes p in the current schema. The flat trigger list is derived
// from the projects; p.Triggers is ignored.
func Encode(p Payload) ([]byte, error) {
	exported := p.ExportedAt
	if exported.IsZero() {
		exported = time.Now()
	}
	rec := payloadRecord{
		Version:     CurrentVersion,
		ExportedAt:  stamp(exported),
		Projects:    make([]projectRecord, 0, len(p.Projects)),
		Templates:   p.Templates,
		Triggers:    []triggerRecord{},
		AppSettings: p.Settings,
	}
	if rec.Templates == nil {
		rec.Templates = []template.Template{}
	}
	for _, proj := range p.Projects {
		pr := fromProject(proj)
		rec.Projects = append(rec.Projects, pr)
		rec.Triggers = append(rec.Triggers, pr.Triggers...)
	}
	return json.MarshalIndent(rec, "", "  ")
}

// Decode reads a backup in either schema. A payload without a top-level
// "triggers" key is treated as legacy and reconstructed from its templates.
func Decode(data []byte) (*Payload, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, ErrNoSourceData
	}

	var pr schemaPeek
	if err := json.Unmarshal(data, &pr); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if pr.Projects == nil {
		return nil, fmt.Errorf("%w: missing projects", ErrMalformedPayload)
	}
	if pr.Triggers == nil {
		return decodeLegacy(data)
	}
	return decodeCurrent(data)
}

func decodeLegacy(data []byte) (*Payload, error) {
	var rec legacyPayloadRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if err := checkLegacyProjects(rec.Projects); err != nil {
		return nil, err
	}
	templates, err := validTemplates(rec.Templates)
	if err != nil {
		return nil, err
	}
	r, err := Reconstruct(rec.Projects, templates)
	if err != nil {
		return nil, err
	}
	return &Payload{
		Projects:   r.Projects,
		Templates:  templates,
		Triggers:   r.Triggers,
		Legacy:     true,
		Unresolved: r.Unresolved,
	}, nil
}

// checkLegacyProjects rejects what reconstruction can not repair: two
// projects sharing an id, or a project with no final deadline to anchor on.
// Missing ids are minted later.
func checkLegacyProjects(projects []LegacyProject) error {
	seen := make(map[string]bool, len(projects))
	for _, lp := range projects {
		if lp.FinalDeadlineDate.IsZero() {
			return fmt.Errorf("%w: project %q has no final deadline", ErrMalformedPayload, lp.Title)
		}
		if lp.ID == "" {
			continue
		}
		if seen[lp.ID] {
			return fmt.Errorf("%w: duplicate project id %s", ErrMalformedPayload, lp.ID)
		}
		seen[lp.ID] = true
	}
	return nil
}

func decodeCurrent(data []byte) (*Payload, error) {
	var rec payloadRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	templates, err := validTemplates(rec.Templates)
	if err != nil {
		return nil, err
	}

	out := &Payload{
		Projects:   make([]project.Project, 0, len(rec.Projects)),
		Templates:  templates,
		ExportedAt: rec.ExportedAt.Time,
	}
	if rec.AppSettings != nil {
		s := rec.AppSettings.Normalize()
		out.Settings = &s
	}

	// Older current-schema writers only carried the flat list.
	flat := make(map[string][]project.Trigger)
	for _, tr := range rec.Triggers {
		t := tr.toTrigger()
		flat[t.ProjectID] = append(flat[t.ProjectID], t)
	}

	seen := make(map[string]bool, len(rec.Projects))
	for _, r := range rec.Projects {
		p := r.toProject()
		if p.ID == "" {
			return nil, fmt.Errorf("%w: project %q has no id", ErrMalformedPayload, p.Title)
		}
		if seen[p.ID] {
			return nil, fmt.Errorf("%w: duplicate project id %s", ErrMalformedPayload, p.ID)
		}
		seen[p.ID] = true

		if len(p.Triggers) == 0 {
			p.Triggers = append(p.Triggers, flat[p.ID]...)
		}
		out.Unresolved = append(out.Unresolved, sanitize(&p)...)
		project.SortSubDeadlines(p.SubDeadlines)
		out.Projects = append(out.Projects, p)
	}

	for pid, ts := range flat {
		if seen[pid] {
			continue
		}
		for _, t := range ts {
			out.Unresolved = append(out.Unresolved, engine.Unresolved{
				ProjectID: pid,
				Record:    fmt.Sprintf("trigger %q", t.Name),
				Reference: pid,
				Reason:    "owning project not in backup",
			})
		}
	}

	out.Triggers = project.AllTriggers(out.Projects)
	return out, nil
}

// sanitize rescopes p's triggers to p and clears sub-deadline links that do
// not name one of them.
func sanitize(p *project.Project) []engine.Unresolved {
	var dropped []engine.Unresolved
	owned := make(map[string]bool, len(p.Triggers))
	for i := range p.Triggers {
		p.Triggers[i].ProjectID = p.ID
		owned[p.Triggers[i].ID] = true
	}
	for i := range p.SubDeadlines {
		sd := &p.SubDeadlines[i]
		if sd.TriggerID == "" || owned[sd.TriggerID] {
			continue
		}
		dropped = append(dropped, engine.Unresolved{
			ProjectID: p.ID,
			Record:    fmt.Sprintf("sub-deadline %q", sd.Title),
			Reference: sd.TriggerID,
			Reason:    "trigger not found in project",
		})
		sd.TriggerID = ""
	}
	return dropped
}

// validTemplates rejects templates that cannot be indexed. Dangling trigger
// references inside a template are left for the engine to report.
func validTemplates(in []template.Template) ([]template.Template, error) {
	out := make([]template.Template, 0, len(in))
	seen := make(map[string]bool, len(in))
	for i := range in {
		t := in[i].Clone()
		if t.ID == "" {
			return nil, fmt.Errorf("%w: template %q has no id", ErrMalformedPayload, t.Name)
		}
		if seen[t.ID] {
			return nil, fmt.Errorf("%w: duplicate template id %s", ErrMalformedPayload, t.ID)
		}
		seen[t.ID] = true
		out = append(out, t)
	}
	return out, nil
}
