package templates

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"tableflip.dev/deadlines/pkg/app"
	"tableflip.dev/deadlines/pkg/printers"
	"tableflip.dev/deadlines/pkg/template"
)

type List struct {
	Service *app.Service
	ShowID  bool
	JSON    bool
}

func (n *List) Do(ctx context.Context) error {
	if n.Service == nil {
		return errors.New("can not list, no service")
	}
	templates, err := n.Service.Templates(ctx)
	if err != nil {
		return err
	}
	if n.JSON {
		return printers.JSON(templates)
	}
	pp := printers.PrettyPrint{ShowID: n.ShowID}
	pp.NewLine()
	pp.Templates(templates...)
	return nil
}

// Show prints one template, optionally in its hand-authored YAML form.
type Show struct {
	Service *app.Service
	Ref     string
	YAML    bool
	ShowID  bool
	JSON    bool
	Out     io.Writer
}

func (n *Show) Do(ctx context.Context) error {
	if n.Service == nil {
		return errors.New("can not show, no service")
	}
	t, err := n.Service.Template(ctx, n.Ref)
	if err != nil {
		return err
	}
	switch {
	case n.JSON:
		return printers.JSON(t)
	case n.YAML:
		b, err := template.EncodeYAML(*t)
		if err != nil {
			return err
		}
		out := n.Out
		if out == nil {
			out = os.Stdout
		}
		_, err = out.Write(b)
		return err
	}
	pp := printers.PrettyPrint{ShowID: n.ShowID}
	pp.NewLine()
	pp.Template(t)
	return nil
}

// Import reads YAML templates from Path, or In when Path is "-".
type Import struct {
	Service *app.Service
	Path    string
	In      io.Reader
	ShowID  bool
	JSON    bool
}

func (n *Import) Do(ctx context.Context) error {
	if n.Service == nil {
		return errors.New("can not import, no service")
	}
	var in io.Reader
	if n.Path == "" || n.Path == "-" {
		in = n.In
		if in == nil {
			in = os.Stdin
		}
	} else {
		f, err := os.Open(n.Path)
		if err != nil {
			return fmt.Errorf("open templates: %w", err)
		}
		defer f.Close()
		in = f
	}

	saved, err := n.Service.ImportTemplates(ctx, in)
	if err != nil {
		return err
	}
	if n.JSON {
		return printers.JSON(saved)
	}
	pp := printers.PrettyPrint{ShowID: n.ShowID}
	pp.NewLine()
	pp.Templates(saved...)
	return nil
}

type Delete struct {
	Service *app.Service
	Ref     string
	JSON    bool
}

func (n *Delete) Do(ctx context.Context) error {
	if n.Service == nil {
		return errors.New("can not delete, no service")
	}
	t, err := n.Service.DeleteTemplate(ctx, n.Ref)
	if err != nil {
		return err
	}
	if n.JSON {
		return printers.JSON(map[string]string{"deleted": t.ID})
	}
	fmt.Printf("deleted template %q (%s)\n", t.Name, t.ID)
	return nil
}
