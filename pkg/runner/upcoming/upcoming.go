package upcoming

import (
	"context"
	"errors"

	"tableflip.dev/deadlines/pkg/app"
	"tableflip.dev/deadlines/pkg/printers"
	"tableflip.dev/deadlines/pkg/timeutil"
)

type Upcoming struct {
	Service *app.Service
	// Window is a look-ahead such as "2w"; empty means timeutil.DefaultWindow.
	Window string
	JSON   bool
}

type result struct {
	Window string             `json:"window"`
	Since  string             `json:"since"`
	Until  string             `json:"until"`
	Items  []app.UpcomingItem `json:"items"`
}

func (n *Upcoming) Do(ctx context.Context) error {
	if n.Service == nil {
		return errors.New("can not list upcoming, no service")
	}
	window, label, err := timeutil.ParseWindow(n.Window)
	if err != nil {
		return err
	}
	res, err := n.Service.Upcoming(ctx, window)
	if err != nil {
		return err
	}
	if n.JSON {
		return printers.JSON(result{
			Window: label,
			Since:  res.Since.Format(timeutil.LayoutISO),
			Until:  res.Until.Format(timeutil.LayoutISO),
			Items:  res.Items,
		})
	}
	pp := printers.PrettyPrint{}
	pp.NewLine()
	pp.Upcoming(res, label)
	return nil
}
