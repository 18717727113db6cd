package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"tableflip.dev/deadlines/pkg/app"
	"tableflip.dev/deadlines/pkg/printers"
	"tableflip.dev/deadlines/pkg/store"
	"tableflip.dev/deadlines/pkg/timeutil"
)

// Watch renders the upcoming report, then re-renders it after every change
// made to the store, by this process or any other, until ctx is done.
type Watch struct {
	Service *app.Service
	// Window is the upcoming look-ahead; empty means timeutil.DefaultWindow.
	Window string
	Out    io.Writer
}

func (n *Watch) Do(ctx context.Context) error {
	if n.Service == nil {
		return errors.New("can not watch, no service")
	}
	out := n.Out
	if out == nil {
		out = os.Stdout
	}
	window, label, err := timeutil.ParseWindow(n.Window)
	if err != nil {
		return err
	}
	events, err := n.Service.Watch(ctx)
	if err != nil {
		return err
	}
	if err := n.render(ctx, out, window, label); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			_, _ = fmt.Fprintln(out, Format(ev, time.Now()))
			if err := n.render(ctx, out, window, label); err != nil {
				fmt.Fprintf(os.Stderr, "watch: %v\n", err)
			}
		}
	}
}

func (n *Watch) render(ctx context.Context, out io.Writer, window time.Duration, label string) error {
	res, err := n.Service.Upcoming(ctx, window)
	if err != nil {
		return err
	}
	pp := printers.PrettyPrint{Out: out}
	pp.NewLine()
	pp.Upcoming(res, label)
	return nil
}

// Format renders ev as a single log line.
func Format(ev store.Event, at time.Time) string {
	line := fmt.Sprintf("%s  %s changed", at.Format("15:04:05"), ev.Type)
	if ev.ID != "" {
		line += " " + ev.ID
	}
	return line
}
