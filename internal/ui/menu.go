package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
)

type menuOption struct {
	title   string
	handler func() error
}

// ShowMenu displays the main menu and handles user input until Exit.
func ShowMenu(ctx context.Context, app *App) {
	exit := false
	menuOptions := []menuOption{
		{"Ingest today's archives (extract, rename, derive)", func() error { return app.Ingest(ctx) }},
		{"Derive products for all scenes", func() error { return app.Derive(ctx) }},
		{"Analyze flood extent, NDVI change and site suitability", func() error { return app.Analyze(ctx, "") }},
		{"View the list of available scenes", app.ListScenes},
		{"View the false color composite gallery", app.ListGallery},
		{"Exit the application", func() error { exit = true; return nil }},
	}

	for !exit {
		fmt.Fprintf(out, "%s===================%s\n", ColorBlue, ColorReset)
		for i, opt := range menuOptions {
			fmt.Fprintf(out, "%s%d. %s%s\n", ColorBlue, i+1, opt.title, ColorReset)
		}

		choice, err := ReadInt("Please enter your choice: ", 1, len(menuOptions))
		if errors.Is(err, io.EOF) || ctx.Err() != nil {
			break
		}
		if err != nil {
			PrintError(err.Error())
			continue
		}

		// Handlers print their own errors.
		_ = menuOptions[choice-1].handler()
	}
	fmt.Fprintln(out, "Exiting...")
}
