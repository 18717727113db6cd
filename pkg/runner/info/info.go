package info

import (
	"context"
	"fmt"
	"os"

	"tableflip.dev/deadlines/pkg/app"
	"tableflip.dev/deadlines/pkg/store"
)

type Info struct {
	Config  store.Config
	Service *app.Service
}

func (n *Info) Do(ctx context.Context) error {

	if override := os.Getenv("DEADLINES_CONFIG_PATH"); override != "" {
		fmt.Println("DEADLINES_CONFIG_PATH found on env, using ", override)
	} else {
		fmt.Println("DEADLINES_CONFIG_PATH env var not set")
	}

	if n.Config == nil {
		var err error
		n.Config, err = store.LoadConfig()
		if err != nil {
			return err
		}
	}

	fmt.Println("Config.path: ", n.Config.BasePath())
	fmt.Println("Config.upcoming.window: ", n.Config.UpcomingWindow())

	if n.Service == nil {
		return fmt.Errorf("failed to create service")
	}

	projects, err := n.Service.Projects(ctx)
	if err != nil {
		return err
	}
	templates, err := n.Service.Templates(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Projects:  %d\n", len(projects))
	fmt.Printf("Templates: %d\n", len(templates))
	return nil
}
