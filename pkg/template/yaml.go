package template

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"tableflip.dev/deadlines/pkg/timeutil"
)

// yamlDocument is the hand-authored form of a template. Trigger keys are local
// to the document; fresh ids are minted on decode.
type yamlDocument struct {
	Name         string            `yaml:"name"`
	Triggers     []yamlTrigger     `yaml:"triggers,omitempty"`
	SubDeadlines []yamlSubDeadline `yaml:"subDeadlines"`
}

type yamlTrigger struct {
	Key    string `yaml:"key"`
	Name   string `yaml:"name"`
	Offset string `yaml:"offset"`
}

type yamlSubDeadline struct {
	Title   string `yaml:"title"`
	Offset  string `yaml:"offset"`
	Trigger string `yaml:"trigger,omitempty"`
}

// DecodeYAML reads one or more YAML documents and returns a validated
// template for each.
func DecodeYAML(r io.Reader) ([]*Template, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var out []*Template
	for {
		var doc yamlDocument
		if err := dec.Decode(&doc); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("template: decode yaml: %w", err)
		}
		t, err := doc.toTemplate()
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if len(out) == 0 {
		return nil, errors.New("template: no templates in yaml input")
	}
	return out, nil
}

func (doc yamlDocument) toTemplate() (*Template, error) {
	t := New(doc.Name)
	if t.Name == "" {
		return nil, ErrNameRequired
	}

	keys := make(map[string]string, len(doc.Triggers))
	for _, yt := range doc.Triggers {
		key := strings.TrimSpace(yt.Key)
		if key == "" {
			key = strings.TrimSpace(yt.Name)
		}
		if _, dup := keys[key]; dup {
			return nil, fmt.Errorf("template %q: duplicate trigger key %q", t.Name, key)
		}
		offset, err := timeutil.ParseOffset(yt.Offset)
		if err != nil {
			return nil, fmt.Errorf("template %q: trigger %q: %w", t.Name, yt.Name, err)
		}
		keys[key] = t.AddTrigger(yt.Name, offset).ID
	}

	for _, ys := range doc.SubDeadlines {
		offset, err := timeutil.ParseOffset(ys.Offset)
		if err != nil {
			return nil, fmt.Errorf("template %q: sub-deadline %q: %w", t.Name, ys.Title, err)
		}
		var triggerID string
		if ref := strings.TrimSpace(ys.Trigger); ref != "" {
			id, ok := keys[ref]
			if !ok {
				return nil, fmt.Errorf("template %q: sub-deadline %q references unknown trigger %q",
					t.Name, ys.Title, ref)
			}
			triggerID = id
		}
		t.AddSubDeadline(ys.Title, offset, triggerID)
	}

	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// EncodeYAML renders t in the hand-authored form understood by DecodeYAML.
func EncodeYAML(t Template) ([]byte, error) {
	doc := yamlDocument{Name: t.Name}
	keys := make(map[string]string, len(t.TemplateTriggers))
	for i, tt := range t.TemplateTriggers {
		key := fmt.Sprintf("trigger-%d", i+1)
		keys[tt.ID] = key
		doc.Triggers = append(doc.Triggers, yamlTrigger{
			Key:    key,
			Name:   tt.Name,
			Offset: tt.Offset.String(),
		})
	}
	for _, sd := range t.SubDeadlines {
		doc.SubDeadlines = append(doc.SubDeadlines, yamlSubDeadline{
			Title:   sd.Title,
			Offset:  sd.Offset.String(),
			Trigger: keys[sd.TemplateTriggerID],
		})
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
