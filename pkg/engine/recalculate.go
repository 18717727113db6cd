package engine

import (
	"time"

	"tableflip.dev/deadlines/pkg/project"
	"tableflip.dev/deadlines/pkg/template"
	"tableflip.dev/deadlines/pkg/timeutil"
)

// Recalculate returns a copy of p anchored to newFinal. When t is nil the
// deadline change is taken as-is. Otherwise every sub-deadline and trigger
// that still resolves to a definition in t is re-derived from newFinal;
// manual records and records whose definition has gone are left alone.
func Recalculate(p project.Project, newFinal time.Time, t *template.Template) (project.Project, error) {
	out := p.Clone()
	out.FinalDeadlineDate = newFinal
	if t == nil {
		return out, nil
	}

	for i := range out.SubDeadlines {
		sd := &out.SubDeadlines[i]
		tsd, ok := t.SubDeadline(sd.TemplateSubDeadlineID)
		if !ok {
			continue
		}
		date, err := timeutil.CalculateDate(newFinal, tsd.Offset)
		if err != nil {
			return project.Project{}, err
		}
		if !date.Equal(sd.Date) {
			sd.Date = date
		}
	}

	for i := range out.Triggers {
		trig := &out.Triggers[i]
		tt, ok := t.Trigger(trig.OriginatingTemplateTriggerID)
		if !ok {
			continue
		}
		date, err := timeutil.CalculateDate(newFinal, tt.Offset)
		if err != nil {
			return project.Project{}, err
		}
		if trig.Date == nil || !trig.Date.Equal(date) {
			trig.Date = &date
		}
	}

	project.SortSubDeadlines(out.SubDeadlines)
	return out, nil
}
