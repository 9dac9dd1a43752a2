package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/markdownfeeds/internal"
	pkgconfig "github.com/starford/markdownfeeds/pkg/config"
)

type entryFunc func(ctx context.Context, opts ...internal.Option) error

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	configPath := cmd.String("config")

	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.Load(configPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cmd.Bool("verbose") {
		cfg.App.LogLevel = slog.LevelDebug
	}
	cfg.ResolvePaths(filepath.Dir(configPath))
	return cfg, nil
}

func action(entry entryFunc) func(context.Context, *cli.Command) error {
	return func(ctx context.Context, cmd *cli.Command) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		opts := []internal.Option{
			internal.WithConfig(cfg),
		}

		if err := entry(ctx, opts...); err != nil {
			return fmt.Errorf("%s: %w", cmd.Name, err)
		}
		return nil
	}
}

func commonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to config file",
			DefaultText: internal.DefaultConfigFile,
			Value:       internal.DefaultConfigFile,
			Sources:     cli.EnvVars("MARKDOWNFEEDS_CONFIG"),
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "Log every pipeline stage",
		},
	}
}

func main() {
	cmd := &cli.Command{
		Name:  "markdownfeeds",
		Usage: "Generate paginated JSON Feed and HTML pages from a directory of Markdown files",
		Commands: []*cli.Command{
			{
				Name:   "build",
				Usage:  "Generate every configured feed once",
				Flags:  commonFlags(),
				Action: action(internal.Build),
			},
			{
				Name:   "watch",
				Usage:  "Generate feeds and regenerate them when sources change",
				Flags:  commonFlags(),
				Action: action(internal.Watch),
			},
			{
				Name:   "serve",
				Usage:  "Watch sources and serve the generated feeds over HTTP",
				Flags:  commonFlags(),
				Action: action(internal.Serve),
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
