package options

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"tableflip.dev/deadlines/pkg/timeutil"
)

const (
	layoutISOShort = "1/2"
)

// DateOptions
type DateOptions struct {
	DateString string
}

func AddDateArgs(cmd *cobra.Command, o *DateOptions, name, usage string) {
	cmd.Flags().StringVar(&o.DateString, name, "",
		usage+` Example: --`+name+`="2025-03-31" or --`+name+`="3/31".`)
}

// GetDate parses the flag value. The short month/day form picks the next
// occurrence of that day.
func (o *DateOptions) GetDate() (time.Time, error) {
	return ParseDate(o.DateString, time.Now())
}

// ParseDate parses input relative to now; see DateOptions.GetDate.
func ParseDate(input string, now time.Time) (time.Time, error) {
	if input == "" {
		return time.Time{}, errors.New("date required")
	}
	t, err := timeutil.ParseDate(input, time.Local)
	if err == nil {
		return t, nil
	}
	short, serr := time.ParseInLocation(layoutISOShort, input, time.Local)
	if serr != nil {
		return time.Time{}, err
	}
	year := now.Year()
	// "1/3" typed on 12/5 means next January, not eleven months ago.
	if time.Date(year, short.Month(), short.Day(), 0, 0, 0, 0, time.Local).Before(timeutil.StartOfDay(now)) {
		year++
	}
	t = time.Date(year, short.Month(), short.Day(), 0, 0, 0, 0, time.Local)
	if t.Month() != short.Month() || t.Day() != short.Day() {
		return time.Time{}, fmt.Errorf("%s %d does not exist in %d", short.Month(), short.Day(), year)
	}
	return t, nil
}
