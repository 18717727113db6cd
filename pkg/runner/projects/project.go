package projects

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tableflip.dev/deadlines/pkg/app"
	"tableflip.dev/deadlines/pkg/printers"
	"tableflip.dev/deadlines/pkg/project"
)

var errNoService = errors.New("no service")

func show(p *project.Project, showID, asJSON bool) error {
	if asJSON {
		return printers.JSON(p)
	}
	pp := printers.PrettyPrint{ShowID: showID}
	pp.NewLine()
	pp.Project(p)
	return nil
}

type List struct {
	Service *app.Service
	ShowID  bool
	JSON    bool
}

func (n *List) Do(ctx context.Context) error {
	if n.Service == nil {
		return fmt.Errorf("can not list, %w", errNoService)
	}
	projects, err := n.Service.Projects(ctx)
	if err != nil {
		return err
	}
	if n.JSON {
		return printers.JSON(projects)
	}
	pp := printers.PrettyPrint{ShowID: n.ShowID}
	pp.NewLine()
	pp.Projects(projects...)
	return nil
}

type Show struct {
	Service  *app.Service
	Ref      string
	Calendar bool
	ShowID   bool
	JSON     bool
}

func (n *Show) Do(ctx context.Context) error {
	if n.Service == nil {
		return fmt.Errorf("can not show, %w", errNoService)
	}
	p, err := n.Service.Project(ctx, n.Ref)
	if err != nil {
		return err
	}
	if err := show(p, n.ShowID, n.JSON); err != nil {
		return err
	}
	if n.Calendar && !n.JSON {
		pp := printers.PrettyPrint{ShowID: n.ShowID}
		pp.Calendar(p)
	}
	return nil
}

// Create makes a new project, from a template when Template is set.
type Create struct {
	Service  *app.Service
	Title    string
	Template string
	Due      time.Time
	ShowID   bool
	JSON     bool
}

func (n *Create) Do(ctx context.Context) error {
	if n.Service == nil {
		return fmt.Errorf("can not create, %w", errNoService)
	}
	var (
		p   *project.Project
		err error
	)
	if n.Template != "" {
		p, err = n.Service.CreateProjectFromTemplate(ctx, n.Title, n.Template, n.Due)
	} else {
		p, err = n.Service.CreateProject(ctx, n.Title, n.Due)
	}
	if err != nil {
		return err
	}
	return show(p, n.ShowID, n.JSON)
}

// Deadline moves the final deadline and reschedules derived dates.
type Deadline struct {
	Service *app.Service
	Ref     string
	Due     time.Time
	ShowID  bool
	JSON    bool
}

func (n *Deadline) Do(ctx context.Context) error {
	if n.Service == nil {
		return fmt.Errorf("can not set deadline, %w", errNoService)
	}
	p, err := n.Service.SetFinalDeadline(ctx, n.Ref, n.Due)
	if err != nil {
		return err
	}
	return show(p, n.ShowID, n.JSON)
}

type Delete struct {
	Service *app.Service
	Ref     string
	JSON    bool
}

func (n *Delete) Do(ctx context.Context) error {
	if n.Service == nil {
		return fmt.Errorf("can not delete, %w", errNoService)
	}
	p, err := n.Service.DeleteProject(ctx, n.Ref)
	if err != nil {
		return err
	}
	if n.JSON {
		return printers.JSON(map[string]string{"deleted": p.ID})
	}
	fmt.Printf("deleted %q (%s)\n", p.Title, p.ID)
	return nil
}
