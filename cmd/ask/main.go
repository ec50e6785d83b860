package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/w-h-a/analyst"
	"github.com/w-h-a/analyst/config"
	"github.com/w-h-a/analyst/generator"
)

var cli struct {
	config.Config

	Provider string   `help:"Generator provider (azure-openai or gemini)" default:""`
	Query    []string `arg:"" help:"Question for the analyst"`
}

func main() {
	_ = godotenv.Load()

	_ = kong.Parse(&cli)

	logger := config.NewLogger(cli.LogLevel, cli.LogFormat)
	defer logger.Sync()

	provider, err := generator.ParseProvider(cli.Provider)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	svc := cli.Analyst(logger)

	result, err := svc.Run(context.Background(), analyst.Query{
		Text:     strings.Join(cli.Query, " "),
		Provider: provider,
	}, func(stage analyst.Stage) {
		fmt.Fprintln(os.Stderr, stage.Status())
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	fmt.Println(result.Message)
}
