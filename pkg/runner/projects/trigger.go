package projects

import (
	"context"
	"fmt"

	"tableflip.dev/deadlines/pkg/app"
	"tableflip.dev/deadlines/pkg/project"
)

type AddTrigger struct {
	Service *app.Service
	Project string
	Name    string
	ShowID  bool
	JSON    bool
}

func (n *AddTrigger) Do(ctx context.Context) error {
	if n.Service == nil {
		return fmt.Errorf("can not add, %w", errNoService)
	}
	p, _, err := n.Service.AddTrigger(ctx, n.Project, n.Name)
	if err != nil {
		return err
	}
	return show(p, n.ShowID, n.JSON)
}

// SetTrigger activates or deactivates a trigger.
type SetTrigger struct {
	Service *app.Service
	Project string
	Trigger string
	Active  bool
	ShowID  bool
	JSON    bool
}

func (n *SetTrigger) Do(ctx context.Context) error {
	if n.Service == nil {
		return fmt.Errorf("can not set trigger, %w", errNoService)
	}
	var (
		p   *project.Project
		err error
	)
	if n.Active {
		p, _, err = n.Service.ActivateTrigger(ctx, n.Project, n.Trigger)
	} else {
		p, _, err = n.Service.DeactivateTrigger(ctx, n.Project, n.Trigger)
	}
	if err != nil {
		return err
	}
	return show(p, n.ShowID, n.JSON)
}

type RemoveTrigger struct {
	Service *app.Service
	Project string
	Trigger string
	ShowID  bool
	JSON    bool
}

func (n *RemoveTrigger) Do(ctx context.Context) error {
	if n.Service == nil {
		return fmt.Errorf("can not remove, %w", errNoService)
	}
	p, err := n.Service.RemoveTrigger(ctx, n.Project, n.Trigger)
	if err != nil {
		return err
	}
	return show(p, n.ShowID, n.JSON)
}
