package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"tableflip.dev/deadlines/pkg/engine"
	"tableflip.dev/deadlines/pkg/project"
	"tableflip.dev/deadlines/pkg/store"
	"tableflip.dev/deadlines/pkg/template"
)

// Service provides high-level operations for projects and templates.
// It wraps persistence and the date engine so the CLI and the MCP server
// share logic. Mutations are serialized.
type Service struct {
	Persistence store.Persistence
	// Log receives warnings about dropped references. Defaults to stderr.
	Log *log.Logger
	// Now defaults to time.Now.
	Now func() time.Time

	mu sync.Mutex
}

var (
	ErrNotFound  = errors.New("app: not found")
	ErrAmbiguous = errors.New("app: ambiguous reference")

	errNoPersistence = errors.New("app: no persistence configured")
)

func (s *Service) logger() *log.Logger {
	if s.Log != nil {
		return s.Log
	}
	return log.New(os.Stderr, "deadlines: ", 0)
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) warn(unresolved []engine.Unresolved) {
	for _, u := range unresolved {
		s.logger().Printf("warning: %s", u)
	}
}

func (s *Service) ready() error {
	if s.Persistence == nil {
		return errNoPersistence
	}
	return nil
}

// Watch subscribes to persistence change events.
func (s *Service) Watch(ctx context.Context) (<-chan store.Event, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.Persistence.Watch(ctx)
}

// Projects lists every project ordered by final deadline.
func (s *Service) Projects(ctx context.Context) ([]project.Project, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.Persistence.ListProjects(ctx), nil
}

// Project resolves ref to a project. ref may be a full id, a unique id
// prefix or a title.
func (s *Service) Project(ctx context.Context, ref string) (*project.Project, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.resolveProject(ctx, ref)
}

func (s *Service) resolveProject(ctx context.Context, ref string) (*project.Project, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("%w: project id required", ErrNotFound)
	}
	if p, err := s.Persistence.Project(ref); err == nil {
		return p, nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	all := s.Persistence.ListProjects(ctx)
	idx, err := match(len(all), ref, func(i int) (string, string) {
		return all[i].ID, all[i].Title
	})
	if err != nil {
		return nil, fmt.Errorf("project %q: %w", ref, err)
	}
	p := all[idx]
	return &p, nil
}

// Templates lists every stored template ordered by name.
func (s *Service) Templates(ctx context.Context) ([]template.Template, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.Persistence.ListTemplates(ctx), nil
}

// Template resolves ref to a template by id, unique id prefix or name.
func (s *Service) Template(ctx context.Context, ref string) (*template.Template, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.resolveTemplate(ctx, ref)
}

func (s *Service) resolveTemplate(ctx context.Context, ref string) (*template.Template, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("%w: template id required", ErrNotFound)
	}
	if t, err := s.Persistence.Template(ref); err == nil {
		return t, nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	all := s.Persistence.ListTemplates(ctx)
	idx, err := match(len(all), ref, func(i int) (string, string) {
		return all[i].ID, all[i].Name
	})
	if err != nil {
		return nil, fmt.Errorf("template %q: %w", ref, err)
	}
	t := all[idx]
	return &t, nil
}

// SaveTemplate validates and stores t.
func (s *Service) SaveTemplate(ctx context.Context, t template.Template) error {
	if err := s.ready(); err != nil {
		return err
	}
	if err := t.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Persistence.StoreTemplate(t)
}

// ImportTemplates reads YAML template documents from r and stores them.
// Nothing is stored unless every document is valid.
func (s *Service) ImportTemplates(ctx context.Context, r io.Reader) ([]template.Template, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	decoded, err := template.DecodeYAML(r)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]template.Template, 0, len(decoded))
	for _, t := range decoded {
		if err := s.Persistence.StoreTemplate(*t); err != nil {
			return out, err
		}
		out = append(out, *t)
	}
	return out, nil
}

// DeleteTemplate removes a template. Projects created from it keep their
// dates and simply stop following final-deadline changes.
func (s *Service) DeleteTemplate(ctx context.Context, ref string) (*template.Template, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.resolveTemplate(ctx, ref)
	if err != nil {
		return nil, err
	}
	if err := s.Persistence.DeleteTemplate(t.ID); err != nil {
		return nil, err
	}
	return t, nil
}

// CreateProject stores an empty project.
func (s *Service) CreateProject(ctx context.Context, title string, finalDeadline time.Time) (*project.Project, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if finalDeadline.IsZero() {
		return nil, errors.New("app: final deadline required")
	}
	p := project.New(title, finalDeadline)
	if err := p.Validate(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.Persistence.StoreProject(*p); err != nil {
		return nil, err
	}
	return p, nil
}

// CreateProjectFromTemplate instantiates the template against finalDeadline
// and stores the result together with its triggers.
func (s *Service) CreateProjectFromTemplate(ctx context.Context, title, templateRef string, finalDeadline time.Time) (*project.Project, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if finalDeadline.IsZero() {
		return nil, errors.New("app: final deadline required")
	}
	if strings.TrimSpace(title) == "" {
		return nil, project.ErrTitleRequired
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.resolveTemplate(ctx, templateRef)
	if err != nil {
		return nil, err
	}
	p, unresolved, err := engine.NewProject(title, *t, finalDeadline)
	if err != nil {
		return nil, err
	}
	s.warn(unresolved)
	if err := s.Persistence.StoreProject(*p); err != nil {
		return nil, err
	}
	return p, nil
}

// SetFinalDeadline moves a project's final deadline and recalculates every
// template-derived date. Manually added sub-deadlines keep their dates.
func (s *Service) SetFinalDeadline(ctx context.Context, ref string, finalDeadline time.Time) (*project.Project, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if finalDeadline.IsZero() {
		return nil, errors.New("app: final deadline required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.resolveProject(ctx, ref)
	if err != nil {
		return nil, err
	}

	var tmpl *template.Template
	if p.TemplateID != "" {
		tmpl, err = s.Persistence.Template(p.TemplateID)
		if errors.Is(err, store.ErrNotFound) {
			s.logger().Printf("warning: project %s: template %s not found; only the final deadline moves", p.ID, p.TemplateID)
			tmpl, err = nil, nil
		}
		if err != nil {
			return nil, err
		}
	}

	updated, err := engine.Recalculate(*p, finalDeadline, tmpl)
	if err != nil {
		return nil, err
	}
	if err := s.Persistence.StoreProject(updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteProject removes a project and its triggers.
func (s *Service) DeleteProject(ctx context.Context, ref string) (*project.Project, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.resolveProject(ctx, ref)
	if err != nil {
		return nil, err
	}
	if err := s.Persistence.DeleteProject(p.ID); err != nil {
		return nil, err
	}
	return p, nil
}

// update loads the project behind ref, applies fn and stores the result.
func (s *Service) update(ctx context.Context, ref string, fn func(p *project.Project) error) (*project.Project, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.resolveProject(ctx, ref)
	if err != nil {
		return nil, err
	}
	if err := fn(p); err != nil {
		return nil, err
	}
	if err := s.Persistence.StoreProject(*p); err != nil {
		return nil, err
	}
	return p, nil
}

// match finds the single item whose id equals ref, whose id starts with ref
// or whose label equals ref ignoring case.
func match(n int, ref string, at func(i int) (id, label string)) (int, error) {
	if ref == "" {
		return -1, ErrNotFound
	}
	for i := 0; i < n; i++ {
		if id, _ := at(i); id == ref {
			return i, nil
		}
	}
	found := -1
	for _, pred := range []func(id, label string) bool{
		func(id, _ string) bool { return strings.HasPrefix(id, ref) },
		func(_, label string) bool { return strings.EqualFold(strings.TrimSpace(label), ref) },
	} {
		for i := 0; i < n; i++ {
			if !pred(at(i)) {
				continue
			}
			if found >= 0 {
				return -1, ErrAmbiguous
			}
			found = i
		}
		if found >= 0 {
			return found, nil
		}
	}
	return -1, ErrNotFound
}
