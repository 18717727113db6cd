package project

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2025, time.March, d, 0, 0, 0, 0, time.UTC)
}

func TestIsFullyCompleted(t *testing.T) {
	p := New("Video", day(31))
	assert.True(t, p.IsFullyCompleted(), "no sub-deadlines is vacuously complete")

	require.NoError(t, p.AddSubDeadline(NewSubDeadline("a", day(3))))
	require.NoError(t, p.AddSubDeadline(NewSubDeadline("b", day(10))))
	assert.False(t, p.IsFullyCompleted())

	for i := range p.SubDeadlines {
		p.SubDeadlines[i].IsCompleted = true
	}
	assert.True(t, p.IsFullyCompleted())
}

func TestSortSubDeadlinesIsStable(t *testing.T) {
	subs := []SubDeadline{
		{ID: "late", Date: day(20)},
		{ID: "tie-1", Date: day(5)},
		{ID: "early", Date: day(1)},
		{ID: "tie-2", Date: day(5)},
	}
	SortSubDeadlines(subs)

	var order []string
	for _, sd := range subs {
		order = append(order, sd.ID)
	}
	assert.Equal(t, []string{"early", "tie-1", "tie-2", "late"}, order)
}

func TestAddSubDeadlineRejectsForeignTrigger(t *testing.T) {
	p := New("Video", day(31))
	other := New("Other", day(31))
	foreign := other.AddTrigger(NewTrigger("Feedback", other.ID))

	sd := NewSubDeadline("Review", day(24))
	sd.TriggerID = foreign.ID
	err := p.AddSubDeadline(sd)
	assert.ErrorIs(t, err, ErrTriggerNotFound)
	assert.Empty(t, p.SubDeadlines)
}

func TestTriggerLifecycle(t *testing.T) {
	p := New("Video", day(31))
	trig := p.AddTrigger(NewTrigger("Client Feedback", "somewhere-else"))
	assert.Equal(t, p.ID, trig.ProjectID)

	sd := NewSubDeadline("Final Delivery", day(24))
	sd.TriggerID = trig.ID
	require.NoError(t, p.AddSubDeadline(sd))
	assert.True(t, p.IsBlocked(p.SubDeadlines[0]))

	tp, ok := p.Trigger(trig.ID)
	require.True(t, ok)
	tp.Activate(day(20))
	assert.False(t, p.IsBlocked(p.SubDeadlines[0]))
	require.NotNil(t, p.Triggers[0].ActivationDate)
	assert.Equal(t, day(20), *p.Triggers[0].ActivationDate)

	tp.Deactivate()
	assert.Nil(t, p.Triggers[0].ActivationDate)

	require.NoError(t, p.RemoveTrigger(trig.ID))
	assert.Empty(t, p.Triggers)
	assert.Empty(t, p.SubDeadlines[0].TriggerID)
	assert.ErrorIs(t, p.RemoveTrigger(trig.ID), ErrTriggerNotFound)
}

func TestValidate(t *testing.T) {
	p := New("Video", day(31))
	trig := p.AddTrigger(NewTrigger("Go", p.ID))
	sd := NewSubDeadline("Review", day(10))
	sd.TriggerID = trig.ID
	require.NoError(t, p.AddSubDeadline(sd))
	require.NoError(t, p.Validate())

	p.SubDeadlines[0].TriggerID = "dangling"
	assert.ErrorIs(t, p.Validate(), ErrTriggerNotFound)

	p.SubDeadlines[0].TriggerID = ""
	p.Triggers[0].ProjectID = "elsewhere"
	assert.Error(t, p.Validate())
}

func TestCloneIsDeep(t *testing.T) {
	p := New("Video", day(31))
	trig := p.AddTrigger(NewTrigger("Go", p.ID))
	sd := NewSubDeadline("Review", day(10))
	sd.AddSubtask("Notes")
	require.NoError(t, p.AddSubDeadline(sd))
	tp, _ := p.Trigger(trig.ID)
	tp.Activate(day(2))

	cp := p.Clone()
	cp.SubDeadlines[0].Subtasks[0].Title = "changed"
	*cp.Triggers[0].ActivationDate = day(9)

	assert.Equal(t, "Notes", p.SubDeadlines[0].Subtasks[0].Title)
	assert.Equal(t, day(2), *p.Triggers[0].ActivationDate)
}

func TestSubtasks(t *testing.T) {
	sd := NewSubDeadline("Review", day(10))
	a := sd.AddSubtask("a")
	sd.AddSubtask("b")
	require.NoError(t, sd.SetSubtaskCompleted(a.ID, true))
	done, total := sd.Progress()
	assert.Equal(t, 1, done)
	assert.Equal(t, 2, total)
	assert.ErrorIs(t, sd.SetSubtaskCompleted("nope", true), ErrSubtaskNotFound)
}
