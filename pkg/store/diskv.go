package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/peterbourgon/diskv/v3"

	"tableflip.dev/deadlines/pkg/project"
	"tableflip.dev/deadlines/pkg/settings"
	"tableflip.dev/deadlines/pkg/template"
)

// ErrNotFound is returned when a keyed record does not exist.
var ErrNotFound = errors.New("store: not found")

// Persistence defines the persistence contract for projects, templates and
// application settings.
type Persistence interface {
	ListProjects(ctx context.Context) []project.Project
	Project(id string) (*project.Project, error)
	StoreProject(p project.Project) error
	DeleteProject(id string) error

	ListTemplates(ctx context.Context) []template.Template
	Template(id string) (*template.Template, error)
	StoreTemplate(t template.Template) error
	DeleteTemplate(id string) error

	Settings() (settings.AppSettings, error)
	StoreSettings(s settings.AppSettings) error

	// Replace swaps the whole data set for snap. On failure the previous
	// data set is restored.
	Replace(ctx context.Context, snap Snapshot) error
	Watch(ctx context.Context) (<-chan Event, error)
}

// Snapshot is a full copy of the persisted data set.
type Snapshot struct {
	Projects  []project.Project
	Templates []template.Template
	Settings  settings.AppSettings
}

const (
	bucketProjects  = "projects"
	bucketTemplates = "templates"
	bucketSettings  = "settings"

	settingsKey = "settings:app"
	keySep      = ":"
)

// Load creates a Persistence backed by diskv using the provided config.
func Load(cfg Config) (Persistence, error) {
	if cfg == nil {
		var err error
		cfg, err = LoadConfig()
		if err != nil {
			return nil, err
		}
	}

	basePath := cfg.BasePath()
	if basePath == "" {
		return nil, errors.New("store: base path unknown")
	}
	return &persistence{d: diskv.New(diskv.Options{
		BasePath:          basePath,
		AdvancedTransform: keyToPathTransform,
		InverseTransform:  pathToKeyTransform,
		CacheSizeMax:      1024 * 1024, // 1MB
	}), basePath: basePath}, nil
}

type persistence struct {
	d        *diskv.Diskv
	basePath string
}

func (p *persistence) readJSON(key string, target interface{}) error {
	val, err := p.d.Read(key)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrNotFound
		}
		return err
	}
	return json.Unmarshal(val, target)
}

func (p *persistence) writeJSON(key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return p.d.Write(key, data)
}

func (p *persistence) erase(key string) error {
	if err := p.d.Erase(key); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (p *persistence) keys(ctx context.Context, bucket string) []string {
	var out []string
	for key := range p.d.KeysPrefix(bucket+keySep, ctx.Done()) {
		out = append(out, key)
	}
	return out
}

func (p *persistence) readProject(key string) (*project.Project, error) {
	pr := project.Project{}
	if err := p.readJSON(key, &pr); err != nil {
		return nil, err
	}
	pk := keyToPathTransform(key)
	pr.ID = pk.FileName
	normalizeProject(&pr)
	return &pr, nil
}

// normalizeProject repairs records written by older builds: nil slices and
// triggers without an owner.
func normalizeProject(pr *project.Project) {
	if pr.SubDeadlines == nil {
		pr.SubDeadlines = []project.SubDeadline{}
	}
	if pr.Triggers == nil {
		pr.Triggers = []project.Trigger{}
	}
	for i := range pr.SubDeadlines {
		if pr.SubDeadlines[i].Subtasks == nil {
			pr.SubDeadlines[i].Subtasks = []project.Subtask{}
		}
	}
	for i := range pr.Triggers {
		pr.Triggers[i].ProjectID = pr.ID
	}
	project.SortSubDeadlines(pr.SubDeadlines)
}

func (p *persistence) ListProjects(ctx context.Context) []project.Project {
	all := make([]project.Project, 0)
	for _, key := range p.keys(ctx, bucketProjects) {
		pr, err := p.readProject(key)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %s\n", key, err)
			continue
		}
		all = append(all, *pr)
	}
	sortProjects(all)
	return all
}

func (p *persistence) Project(id string) (*project.Project, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	return p.readProject(toKey(bucketProjects, id))
}

func (p *persistence) StoreProject(pr project.Project) error {
	if !validID(pr.ID) {
		return fmt.Errorf("store: invalid project id %q", pr.ID)
	}
	return p.writeJSON(toKey(bucketProjects, pr.ID), pr)
}

func (p *persistence) DeleteProject(id string) error {
	if !validID(id) {
		return ErrNotFound
	}
	return p.erase(toKey(bucketProjects, id))
}

func (p *persistence) ListTemplates(ctx context.Context) []template.Template {
	all := make([]template.Template, 0)
	for _, key := range p.keys(ctx, bucketTemplates) {
		t := template.Template{}
		if err := p.readJSON(key, &t); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %s\n", key, err)
			continue
		}
		t.ID = keyToPathTransform(key).FileName
		all = append(all, t)
	}
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].Name == all[j].Name {
			return all[i].ID < all[j].ID
		}
		return all[i].Name < all[j].Name
	})
	return all
}

func (p *persistence) Template(id string) (*template.Template, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	t := template.Template{}
	if err := p.readJSON(toKey(bucketTemplates, id), &t); err != nil {
		return nil, err
	}
	t.ID = id
	return &t, nil
}

func (p *persistence) StoreTemplate(t template.Template) error {
	if !validID(t.ID) {
		return fmt.Errorf("store: invalid template id %q", t.ID)
	}
	return p.writeJSON(toKey(bucketTemplates, t.ID), t)
}

func (p *persistence) DeleteTemplate(id string) error {
	if !validID(id) {
		return ErrNotFound
	}
	return p.erase(toKey(bucketTemplates, id))
}

func (p *persistence) Settings() (settings.AppSettings, error) {
	s := settings.Default()
	if err := p.readJSON(settingsKey, &s); err != nil {
		if errors.Is(err, ErrNotFound) {
			return settings.Default(), nil
		}
		return settings.Default(), err
	}
	return s.Normalize(), nil
}

func (p *persistence) StoreSettings(s settings.AppSettings) error {
	return p.writeJSON(settingsKey, s.Normalize())
}

func (p *persistence) snapshot(ctx context.Context) (Snapshot, error) {
	s, err := p.Settings()
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{
		Projects:  p.ListProjects(ctx),
		Templates: p.ListTemplates(ctx),
		Settings:  s,
	}, nil
}

func (p *persistence) Replace(ctx context.Context, snap Snapshot) error {
	prev, err := p.snapshot(ctx)
	if err != nil {
		return fmt.Errorf("store: snapshot before replace: %w", err)
	}
	if err := p.write(ctx, snap); err != nil {
		if rerr := p.write(ctx, prev); rerr != nil {
			return fmt.Errorf("store: replace failed (%v) and restore failed: %w", err, rerr)
		}
		return fmt.Errorf("store: replace: %w", err)
	}
	return nil
}

func (p *persistence) write(ctx context.Context, snap Snapshot) error {
	for _, bucket := range []string{bucketProjects, bucketTemplates} {
		for _, key := range p.keys(ctx, bucket) {
			if err := p.d.Erase(key); err != nil {
				return err
			}
		}
	}
	for _, t := range snap.Templates {
		if err := p.StoreTemplate(t); err != nil {
			return err
		}
	}
	for _, pr := range snap.Projects {
		if err := p.StoreProject(pr); err != nil {
			return err
		}
	}
	return p.StoreSettings(snap.Settings)
}

// sortProjects orders by final deadline, then title.
func sortProjects(projects []project.Project) {
	sort.SliceStable(projects, func(i, j int) bool {
		left := projects[i].FinalDeadlineDate
		right := projects[j].FinalDeadlineDate
		if left.Equal(right) {
			if projects[i].Title == projects[j].Title {
				return projects[i].ID < projects[j].ID
			}
			return projects[i].Title < projects[j].Title
		}
		return left.Before(right)
	})
}

func keyToPathTransform(s string) *diskv.PathKey {
	parts := strings.Split(s, keySep)
	return &diskv.PathKey{
		Path:     parts[:len(parts)-1],
		FileName: parts[len(parts)-1],
	}
}

func pathToKeyTransform(pathKey *diskv.PathKey) string {
	return strings.Join(append(append([]string{}, pathKey.Path...), pathKey.FileName), keySep)
}

// validID rejects ids that would escape their bucket directory.
func validID(id string) bool {
	if strings.TrimSpace(id) == "" || id == "." || id == ".." {
		return false
	}
	return !strings.ContainsAny(id, keySep+`/\`)
}

// toKey makes `bucket:id`
func toKey(bucket, id string) string {
	return bucket + keySep + id
}
