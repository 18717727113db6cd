package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tableflip.dev/deadlines/pkg/project"
)

// AddSubDeadline adds a manual sub-deadline to a project. triggerRef, when
// set, must name one of the project's own triggers.
func (s *Service) AddSubDeadline(ctx context.Context, ref, title string, date time.Time, triggerRef string) (*project.Project, *project.SubDeadline, error) {
	if strings.TrimSpace(title) == "" {
		return nil, nil, errors.New("app: sub-deadline title required")
	}
	if date.IsZero() {
		return nil, nil, errors.New("app: sub-deadline date required")
	}
	sd := project.NewSubDeadline(title, date)
	p, err := s.update(ctx, ref, func(p *project.Project) error {
		if triggerRef != "" {
			t, err := findTrigger(p, triggerRef)
			if err != nil {
				return err
			}
			sd.TriggerID = t.ID
		}
		return p.AddSubDeadline(sd)
	})
	if err != nil {
		return nil, nil, err
	}
	added, _ := p.SubDeadline(sd.ID)
	return p, added, nil
}

// CompleteSubDeadline sets a sub-deadline's completion state.
func (s *Service) CompleteSubDeadline(ctx context.Context, ref, subRef string, done bool) (*project.Project, *project.SubDeadline, error) {
	var id string
	p, err := s.update(ctx, ref, func(p *project.Project) error {
		sd, err := findSubDeadline(p, subRef)
		if err != nil {
			return err
		}
		sd.IsCompleted = done
		id = sd.ID
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	sd, _ := p.SubDeadline(id)
	return p, sd, nil
}

// AddSubtask appends a checklist item to a sub-deadline.
func (s *Service) AddSubtask(ctx context.Context, ref, subRef, title string) (*project.Project, project.Subtask, error) {
	if strings.TrimSpace(title) == "" {
		return nil, project.Subtask{}, errors.New("app: subtask title required")
	}
	var st project.Subtask
	p, err := s.update(ctx, ref, func(p *project.Project) error {
		sd, err := findSubDeadline(p, subRef)
		if err != nil {
			return err
		}
		st = sd.AddSubtask(title)
		return nil
	})
	return p, st, err
}

// CompleteSubtask sets a subtask's completion state.
func (s *Service) CompleteSubtask(ctx context.Context, ref, subRef, subtaskRef string, done bool) (*project.Project, error) {
	return s.update(ctx, ref, func(p *project.Project) error {
		sd, err := findSubDeadline(p, subRef)
		if err != nil {
			return err
		}
		idx, err := match(len(sd.Subtasks), strings.TrimSpace(subtaskRef), func(i int) (string, string) {
			return sd.Subtasks[i].ID, sd.Subtasks[i].Title
		})
		if err != nil {
			return fmt.Errorf("subtask %q: %w", subtaskRef, err)
		}
		return sd.SetSubtaskCompleted(sd.Subtasks[idx].ID, done)
	})
}

// AddTrigger adds a manual trigger to a project.
func (s *Service) AddTrigger(ctx context.Context, ref, name string) (*project.Project, project.Trigger, error) {
	if strings.TrimSpace(name) == "" {
		return nil, project.Trigger{}, errors.New("app: trigger name required")
	}
	var t project.Trigger
	p, err := s.update(ctx, ref, func(p *project.Project) error {
		t = p.AddTrigger(project.NewTrigger(name, p.ID))
		return nil
	})
	return p, t, err
}

// ActivateTrigger marks a trigger satisfied now, unblocking the
// sub-deadlines it gates.
func (s *Service) ActivateTrigger(ctx context.Context, ref, triggerRef string) (*project.Project, *project.Trigger, error) {
	return s.setTrigger(ctx, ref, triggerRef, true)
}

// DeactivateTrigger clears a trigger's satisfied state.
func (s *Service) DeactivateTrigger(ctx context.Context, ref, triggerRef string) (*project.Project, *project.Trigger, error) {
	return s.setTrigger(ctx, ref, triggerRef, false)
}

func (s *Service) setTrigger(ctx context.Context, ref, triggerRef string, active bool) (*project.Project, *project.Trigger, error) {
	var id string
	p, err := s.update(ctx, ref, func(p *project.Project) error {
		t, err := findTrigger(p, triggerRef)
		if err != nil {
			return err
		}
		if active {
			t.Activate(s.now())
		} else {
			t.Deactivate()
		}
		id = t.ID
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	t, _ := p.Trigger(id)
	return p, t, nil
}

// RemoveTrigger deletes a trigger; the sub-deadlines it gated become
// ungated.
func (s *Service) RemoveTrigger(ctx context.Context, ref, triggerRef string) (*project.Project, error) {
	return s.update(ctx, ref, func(p *project.Project) error {
		t, err := findTrigger(p, triggerRef)
		if err != nil {
			return err
		}
		return p.RemoveTrigger(t.ID)
	})
}

func findSubDeadline(p *project.Project, ref string) (*project.SubDeadline, error) {
	idx, err := match(len(p.SubDeadlines), strings.TrimSpace(ref), func(i int) (string, string) {
		return p.SubDeadlines[i].ID, p.SubDeadlines[i].Title
	})
	if err != nil {
		return nil, fmt.Errorf("sub-deadline %q: %w", ref, err)
	}
	return &p.SubDeadlines[idx], nil
}

// findTrigger only looks inside p, so a trigger id from another project is
// reported as not found.
func findTrigger(p *project.Project, ref string) (*project.Trigger, error) {
	idx, err := match(len(p.Triggers), strings.TrimSpace(ref), func(i int) (string, string) {
		return p.Triggers[i].ID, p.Triggers[i].Name
	})
	if err != nil {
		return nil, fmt.Errorf("trigger %q: %w", ref, err)
	}
	return &p.Triggers[idx], nil
}
