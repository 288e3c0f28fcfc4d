package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
)

const description = "Task reminder bot: browse class tasks, opt in to deadline reminders, and let admins publish tasks."

func main() {
	// .env values become visible to kong env tags and config.Load alike.
	_ = godotenv.Load()

	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("task-reminder-bot"),
		kong.Description(description),
		kong.UsageOnError(),
	)

	if err := ctx.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
