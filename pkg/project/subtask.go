package project

import (
	"errors"
	"strings"

	"tableflip.dev/deadlines/pkg/ids"
)

var ErrSubtaskNotFound = errors.New("project: subtask not found")

// AddSubtask appends a new open subtask to sd.
func (sd *SubDeadline) AddSubtask(title string) Subtask {
	st := Subtask{ID: ids.New(), Title: strings.TrimSpace(title)}
	sd.Subtasks = append(sd.Subtasks, st)
	return st
}

// SetSubtaskCompleted updates a subtask's completion state.
func (sd *SubDeadline) SetSubtaskCompleted(id string, done bool) error {
	for i := range sd.Subtasks {
		if sd.Subtasks[i].ID == id {
			sd.Subtasks[i].IsCompleted = done
			return nil
		}
	}
	return ErrSubtaskNotFound
}

// Progress returns the number of completed subtasks and the total.
func (sd SubDeadline) Progress() (done, total int) {
	for _, st := range sd.Subtasks {
		if st.IsCompleted {
			done++
		}
	}
	return done, len(sd.Subtasks)
}
