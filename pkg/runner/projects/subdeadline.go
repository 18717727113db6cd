package projects

import (
	"context"
	"fmt"
	"time"

	"tableflip.dev/deadlines/pkg/app"
)

type AddSubDeadline struct {
	Service *app.Service
	Project string
	Title   string
	Date    time.Time
	// Trigger optionally gates the new sub-deadline.
	Trigger string
	ShowID  bool
	JSON    bool
}

func (n *AddSubDeadline) Do(ctx context.Context) error {
	if n.Service == nil {
		return fmt.Errorf("can not add, %w", errNoService)
	}
	p, _, err := n.Service.AddSubDeadline(ctx, n.Project, n.Title, n.Date, n.Trigger)
	if err != nil {
		return err
	}
	return show(p, n.ShowID, n.JSON)
}

type CompleteSubDeadline struct {
	Service     *app.Service
	Project     string
	SubDeadline string
	Undo        bool
	ShowID      bool
	JSON        bool
}

func (n *CompleteSubDeadline) Do(ctx context.Context) error {
	if n.Service == nil {
		return fmt.Errorf("can not complete, %w", errNoService)
	}
	p, _, err := n.Service.CompleteSubDeadline(ctx, n.Project, n.SubDeadline, !n.Undo)
	if err != nil {
		return err
	}
	return show(p, n.ShowID, n.JSON)
}

type AddSubtask struct {
	Service     *app.Service
	Project     string
	SubDeadline string
	Title       string
	ShowID      bool
	JSON        bool
}

func (n *AddSubtask) Do(ctx context.Context) error {
	if n.Service == nil {
		return fmt.Errorf("can not add, %w", errNoService)
	}
	p, _, err := n.Service.AddSubtask(ctx, n.Project, n.SubDeadline, n.Title)
	if err != nil {
		return err
	}
	return show(p, n.ShowID, n.JSON)
}

type CompleteSubtask struct {
	Service     *app.Service
	Project     string
	SubDeadline string
	Subtask     string
	Undo        bool
	ShowID      bool
	JSON        bool
}

func (n *CompleteSubtask) Do(ctx context.Context) error {
	if n.Service == nil {
		return fmt.Errorf("can not complete, %w", errNoService)
	}
	p, err := n.Service.CompleteSubtask(ctx, n.Project, n.SubDeadline, n.Subtask, !n.Undo)
	if err != nil {
		return err
	}
	return show(p, n.ShowID, n.JSON)
}
