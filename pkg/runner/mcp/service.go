// Package mcp provides the Model Context Protocol server integration for
// deadlines.
package mcp

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"tableflip.dev/deadlines/pkg/app"
	"tableflip.dev/deadlines/pkg/project"
	"tableflip.dev/deadlines/pkg/store"
	"tableflip.dev/deadlines/pkg/template"
	"tableflip.dev/deadlines/pkg/timeutil"
)

// Service adapts the application service to transport-friendly values for
// the MCP server.
type Service struct {
	App *app.Service
}

// CreateProjectOptions captures the parameters used to create a project.
type CreateProjectOptions struct {
	Title         string
	FinalDeadline string
	Template      string
}

// ProjectSummary describes a project and basic aggregate metadata.
type ProjectSummary struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	FinalDeadline    string `json:"finalDeadline"`
	TemplateName     string `json:"templateName,omitempty"`
	SubDeadlineCount int    `json:"subDeadlineCount"`
	OpenCount        int    `json:"openCount"`
	TriggerCount     int    `json:"triggerCount"`
	ActiveTriggers   int    `json:"activeTriggers"`
	IsCompleted      bool   `json:"isCompleted"`
	NextDue          string `json:"nextDue,omitempty"`
	NextDueTitle     string `json:"nextDueTitle,omitempty"`
}

// ProjectDTO is a transport-friendly projection of a project.
type ProjectDTO struct {
	ID            string           `json:"id"`
	Title         string           `json:"title"`
	FinalDeadline string           `json:"finalDeadline"`
	TemplateID    string           `json:"templateID,omitempty"`
	TemplateName  string           `json:"templateName,omitempty"`
	IsCompleted   bool             `json:"isCompleted"`
	SubDeadlines  []SubDeadlineDTO `json:"subDeadlines"`
	Triggers      []TriggerDTO     `json:"triggers"`
}

// SubDeadlineDTO is a transport-friendly projection of a sub-deadline.
type SubDeadlineDTO struct {
	ID              string            `json:"id"`
	Title           string            `json:"title"`
	Date            string            `json:"date"`
	IsCompleted     bool              `json:"isCompleted"`
	Blocked         bool              `json:"blocked"`
	TriggerID       string            `json:"triggerID,omitempty"`
	TriggerName     string            `json:"triggerName,omitempty"`
	TemplateDerived bool              `json:"templateDerived"`
	Subtasks        []project.Subtask `json:"subtasks"`
}

// TriggerDTO is a transport-friendly projection of a trigger.
type TriggerDTO struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	IsActive       bool   `json:"isActive"`
	ActivationDate string `json:"activationDate,omitempty"`
	Date           string `json:"date,omitempty"`
}

// TemplateDTO is a transport-friendly projection of a template. Offsets use
// the compact form, for example "4w-before".
type TemplateDTO struct {
	ID           string                   `json:"id"`
	Name         string                   `json:"name"`
	Triggers     []TemplateTriggerDTO     `json:"triggers"`
	SubDeadlines []TemplateSubDeadlineDTO `json:"subDeadlines"`
}

type TemplateTriggerDTO struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Offset string `json:"offset"`
}

type TemplateSubDeadlineDTO struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Offset  string `json:"offset"`
	Trigger string `json:"trigger,omitempty"`
}

// UpcomingDTO is one row of the upcoming report.
type UpcomingDTO struct {
	ProjectID    string `json:"projectID"`
	ProjectTitle string `json:"projectTitle"`
	SubDeadlineDTO
	Overdue bool `json:"overdue"`
}

// NewService builds a service wrapper using the provided persistence layer.
// Warnings go to logger, or stderr when it is nil.
func NewService(p store.Persistence, logger *log.Logger) *Service {
	return &Service{App: &app.Service{Persistence: p, Log: logger}}
}

// formatTime renders v in RFC3339 in the local zone, so a date entered as
// "2025-03-31" reads back as that day.
func formatTime(v time.Time) string {
	return v.Local().Format(time.RFC3339)
}

func (s *Service) ready() error {
	if s.App == nil || s.App.Persistence == nil {
		return errors.New("persistence is not configured")
	}
	return nil
}

// ListProjects returns summaries for every project.
func (s *Service) ListProjects(ctx context.Context) ([]ProjectSummary, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	all, err := s.App.Projects(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]ProjectSummary, 0, len(all))
	for i := range all {
		out = append(out, toSummary(&all[i]))
	}
	return out, nil
}

// Project returns a single project by id, id prefix or title.
func (s *Service) Project(ctx context.Context, ref string) (*ProjectDTO, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	p, err := s.App.Project(ctx, ref)
	if err != nil {
		return nil, err
	}
	return toProjectDTO(p), nil
}

// ListTemplates returns every template.
func (s *Service) ListTemplates(ctx context.Context) ([]TemplateDTO, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	all, err := s.App.Templates(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]TemplateDTO, 0, len(all))
	for i := range all {
		out = append(out, toTemplateDTO(&all[i]))
	}
	return out, nil
}

// CreateProject creates an empty project, or one instantiated from a
// template when opts.Template is set.
func (s *Service) CreateProject(ctx context.Context, opts CreateProjectOptions) (*ProjectDTO, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(opts.Title) == "" {
		return nil, errors.New("title is required")
	}
	final, err := timeutil.ParseDate(opts.FinalDeadline, time.Local)
	if err != nil {
		return nil, err
	}
	var p *project.Project
	if strings.TrimSpace(opts.Template) != "" {
		p, err = s.App.CreateProjectFromTemplate(ctx, opts.Title, opts.Template, final)
	} else {
		p, err = s.App.CreateProject(ctx, opts.Title, final)
	}
	if err != nil {
		return nil, err
	}
	return toProjectDTO(p), nil
}

// SetFinalDeadline moves a project's final deadline.
func (s *Service) SetFinalDeadline(ctx context.Context, ref, date string) (*ProjectDTO, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	final, err := timeutil.ParseDate(date, time.Local)
	if err != nil {
		return nil, err
	}
	p, err := s.App.SetFinalDeadline(ctx, ref, final)
	if err != nil {
		return nil, err
	}
	return toProjectDTO(p), nil
}

// SetTrigger activates or deactivates a trigger.
func (s *Service) SetTrigger(ctx context.Context, ref, triggerRef string, active bool) (*ProjectDTO, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	var (
		p   *project.Project
		err error
	)
	if active {
		p, _, err = s.App.ActivateTrigger(ctx, ref, triggerRef)
	} else {
		p, _, err = s.App.DeactivateTrigger(ctx, ref, triggerRef)
	}
	if err != nil {
		return nil, err
	}
	return toProjectDTO(p), nil
}

// CompleteSubDeadline sets a sub-deadline's completion state.
func (s *Service) CompleteSubDeadline(ctx context.Context, ref, subRef string, done bool) (*ProjectDTO, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	p, _, err := s.App.CompleteSubDeadline(ctx, ref, subRef, done)
	if err != nil {
		return nil, err
	}
	return toProjectDTO(p), nil
}

// Upcoming lists open sub-deadlines due within window.
func (s *Service) Upcoming(ctx context.Context, window string) ([]UpcomingDTO, string, error) {
	if err := s.ready(); err != nil {
		return nil, "", err
	}
	dur, label, err := timeutil.ParseWindow(window)
	if err != nil {
		return nil, "", err
	}
	res, err := s.App.Upcoming(ctx, dur)
	if err != nil {
		return nil, "", err
	}
	out := make([]UpcomingDTO, 0, len(res.Items))
	for _, item := range res.Items {
		sd := toSubDeadlineDTO(item.SubDeadline, item.Blocked)
		sd.TriggerName = item.TriggerName
		out = append(out, UpcomingDTO{
			ProjectID:      item.ProjectID,
			ProjectTitle:   item.ProjectTitle,
			SubDeadlineDTO: sd,
			Overdue:        item.Overdue,
		})
	}
	return out, label, nil
}

func toSummary(p *project.Project) ProjectSummary {
	sum := ProjectSummary{
		ID:               p.ID,
		Title:            p.Title,
		FinalDeadline:    formatTime(p.FinalDeadlineDate),
		TemplateName:     p.TemplateName,
		SubDeadlineCount: len(p.SubDeadlines),
		TriggerCount:     len(p.Triggers),
		IsCompleted:      p.IsFullyCompleted(),
	}
	for _, sd := range p.SubDeadlines {
		if sd.IsCompleted {
			continue
		}
		sum.OpenCount++
		if sum.NextDue == "" {
			sum.NextDue = formatTime(sd.Date)
			sum.NextDueTitle = sd.Title
		}
	}
	for _, t := range p.Triggers {
		if t.IsActive {
			sum.ActiveTriggers++
		}
	}
	return sum
}

func toProjectDTO(p *project.Project) *ProjectDTO {
	dto := &ProjectDTO{
		ID:            p.ID,
		Title:         p.Title,
		FinalDeadline: formatTime(p.FinalDeadlineDate),
		TemplateID:    p.TemplateID,
		TemplateName:  p.TemplateName,
		IsCompleted:   p.IsFullyCompleted(),
		SubDeadlines:  make([]SubDeadlineDTO, 0, len(p.SubDeadlines)),
		Triggers:      make([]TriggerDTO, 0, len(p.Triggers)),
	}
	for _, sd := range p.SubDeadlines {
		item := toSubDeadlineDTO(sd, p.IsBlocked(sd))
		if t, ok := p.Trigger(sd.TriggerID); ok {
			item.TriggerName = t.Name
		}
		dto.SubDeadlines = append(dto.SubDeadlines, item)
	}
	for _, t := range p.Triggers {
		dto.Triggers = append(dto.Triggers, toTriggerDTO(t))
	}
	return dto
}

func toSubDeadlineDTO(sd project.SubDeadline, blocked bool) SubDeadlineDTO {
	subtasks := sd.Subtasks
	if subtasks == nil {
		subtasks = []project.Subtask{}
	}
	return SubDeadlineDTO{
		ID:              sd.ID,
		Title:           sd.Title,
		Date:            formatTime(sd.Date),
		IsCompleted:     sd.IsCompleted,
		Blocked:         blocked,
		TriggerID:       sd.TriggerID,
		TemplateDerived: sd.TemplateSubDeadlineID != "",
		Subtasks:        subtasks,
	}
}

func toTriggerDTO(t project.Trigger) TriggerDTO {
	dto := TriggerDTO{
		ID:       t.ID,
		Name:     t.Name,
		IsActive: t.IsActive,
	}
	if t.ActivationDate != nil {
		dto.ActivationDate = formatTime(*t.ActivationDate)
	}
	if t.Date != nil {
		dto.Date = formatTime(*t.Date)
	}
	return dto
}

func toTemplateDTO(t *template.Template) TemplateDTO {
	dto := TemplateDTO{
		ID:           t.ID,
		Name:         t.Name,
		Triggers:     make([]TemplateTriggerDTO, 0, len(t.TemplateTriggers)),
		SubDeadlines: make([]TemplateSubDeadlineDTO, 0, len(t.SubDeadlines)),
	}
	for _, tt := range t.TemplateTriggers {
		dto.Triggers = append(dto.Triggers, TemplateTriggerDTO{
			ID:     tt.ID,
			Name:   tt.Name,
			Offset: tt.Offset.String(),
		})
	}
	for _, sd := range t.SubDeadlines {
		item := TemplateSubDeadlineDTO{
			ID:     sd.ID,
			Title:  sd.Title,
			Offset: sd.Offset.String(),
		}
		if tt, ok := t.Trigger(sd.TemplateTriggerID); ok {
			item.Trigger = tt.Name
		}
		dto.SubDeadlines = append(dto.SubDeadlines, item)
	}
	return dto
}
