package app

import (
	"context"
	"sort"
	"time"

	"tableflip.dev/deadlines/pkg/project"
	"tableflip.dev/deadlines/pkg/timeutil"
)

// UpcomingItem is an open sub-deadline due before the end of the window.
type UpcomingItem struct {
	ProjectID    string              `json:"projectID"`
	ProjectTitle string              `json:"projectTitle"`
	SubDeadline  project.SubDeadline `json:"subDeadline"`
	// Blocked is set when the sub-deadline is gated by an inactive trigger.
	Blocked     bool   `json:"blocked"`
	TriggerName string `json:"triggerName,omitempty"`
	// Overdue is set when the date is before the start of the window.
	Overdue bool `json:"overdue"`
}

// UpcomingResult encapsulates the upcoming report for a time window.
type UpcomingResult struct {
	Since time.Time
	Until time.Time
	Items []UpcomingItem
}

// Upcoming returns incomplete sub-deadlines dated on or before now+window,
// including overdue ones, sorted by date. Final deadlines of projects with no
// open sub-deadlines are not listed.
func (s *Service) Upcoming(ctx context.Context, window time.Duration) (UpcomingResult, error) {
	if err := s.ready(); err != nil {
		return UpcomingResult{}, err
	}
	if window < 0 {
		window = -window
	}
	since := timeutil.StartOfDay(s.now())
	until := since.Add(window)

	items := make([]UpcomingItem, 0)
	for _, p := range s.Persistence.ListProjects(ctx) {
		for _, sd := range p.SubDeadlines {
			if sd.IsCompleted || sd.Date.After(until) {
				continue
			}
			item := UpcomingItem{
				ProjectID:    p.ID,
				ProjectTitle: p.Title,
				SubDeadline:  sd,
				Blocked:      p.IsBlocked(sd),
				Overdue:      sd.Date.Before(since),
			}
			if t, ok := p.Trigger(sd.TriggerID); ok {
				item.TriggerName = t.Name
			}
			items = append(items, item)
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		left, right := items[i].SubDeadline.Date, items[j].SubDeadline.Date
		if left.Equal(right) {
			return items[i].ProjectTitle < items[j].ProjectTitle
		}
		return left.Before(right)
	})

	return UpcomingResult{
		Since: since,
		Until: until,
		Items: items,
	}, nil
}
