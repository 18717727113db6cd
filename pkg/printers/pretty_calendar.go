package printers

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"

	"tableflip.dev/deadlines/pkg/project"
)

// Calendar prints a month grid for every month between the project's first
// sub-deadline and its final deadline. Days with open sub-deadlines are bold
// and the final deadline is red.
func (pp *PrettyPrint) Calendar(p *project.Project) {
	first := p.FinalDeadlineDate
	for _, sd := range p.SubDeadlines {
		if !sd.Date.IsZero() && sd.Date.Before(first) {
			first = sd.Date
		}
	}
	if first.IsZero() {
		return
	}
	then := time.Date(first.Local().Year(), first.Local().Month(), 1, 1, 0, 0, 0, time.Local)
	last := p.FinalDeadlineDate.Local()
	for monthIndex(then) <= monthIndex(last) {
		count := make([]int, DaysIn(then))
		final := 0
		for _, sd := range p.SubDeadlines {
			if !sd.IsCompleted && sameMonth(sd.Date, then) {
				count[sd.Date.Local().Day()-1]++
			}
		}
		if sameMonth(last, then) {
			final = last.Day()
		}
		pp.PrintMonthCount(then, count, final)
		then = NextMonth(then)
	}
}

func monthIndex(t time.Time) int {
	return t.Year()*12 + int(t.Month())
}

func sameMonth(t, then time.Time) bool {
	t = t.Local()
	return t.Year() == then.Year() && t.Month() == then.Month()
}

const width = len("11 12 13 14 15 16 17") // an example week

// PrintMonthCount prints one month; days with a non-zero count are bold and
// day final, when non-zero, is highlighted.
func (pp *PrettyPrint) PrintMonthCount(then time.Time, count []int, final int) {
	w := pp.out()
	d := StartDay(then)

	tf := color.New(color.FgWhite, color.Italic)

	m := then.Month().String()
	mid := (width - len(m)) / 2
	_, _ = tf.Fprintf(w, "%s%s%s\n", strings.Repeat(" ", mid), m, strings.Repeat(" ", width-mid-len(m)))

	days := DaysIn(then)

	// Pad out the start of the month.
	for i := time.Sunday; i < d; i++ {
		if i < d {
			_, _ = fmt.Fprint(w, "   ")
		}
	}

	l1 := color.New(color.Faint, color.FgWhite)
	l2 := color.New(color.Bold, color.FgHiWhite)
	l3 := color.New(color.Bold, color.FgRed)

	for i := 0; i < days; i++ {
		if i+1 == final {
			_, _ = l3.Fprintf(w, "%2d ", i+1)
		} else if i < len(count) {
			if count[i] == 0 {
				_, _ = l1.Fprintf(w, "%2d ", i+1)
			} else {
				_, _ = l2.Fprintf(w, "%2d ", i+1)
			}
		} else {
			_, _ = l1.Fprintf(w, "%2d ", i+1)
		}

		d++
		if d > time.Saturday {
			d = time.Sunday
			_, _ = fmt.Fprint(w, "\n")
		}
	}
	_, _ = fmt.Fprint(w, "\n\n")
}

// NextMonth, DaysIn and StartDay read the month in then's own location.
func NextMonth(then time.Time) time.Time {
	return time.Date(then.Year(), then.Month()+1, 1, 1, 0, 0, 0, then.Location())
}

func DaysIn(then time.Time) int {
	return time.Date(then.Year(), then.Month()+1, 0, 0, 0, 0, 0, then.Location()).Day()
}

func StartDay(then time.Time) time.Weekday {
	return time.Date(then.Year(), then.Month(), 1, 1, 0, 0, 0, then.Location()).Weekday()
}
