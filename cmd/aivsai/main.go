package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/BiBoyang/AIvsAI/internal/config"
	"github.com/BiBoyang/AIvsAI/internal/console"
	"github.com/BiBoyang/AIvsAI/internal/export"
	"github.com/BiBoyang/AIvsAI/internal/pair"
	"github.com/BiBoyang/AIvsAI/internal/provider"
	"github.com/BiBoyang/AIvsAI/internal/telemetry"
)

func main() {
	debug := flag.Bool("debug", false, "Enable debug logging")
	outDir := flag.String("out-dir", ".", "Directory under which conversations/ is created")
	overridesPath := flag.String("config", "", "Provider overrides YAML (default $HOME/.aivsai.yaml)")
	flag.Parse()

	if err := run(*debug, *outDir, *overridesPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(debug bool, outDir, overridesPath string) error {
	ctx := context.Background()

	tel, err := telemetry.Init(ctx, debug)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer tel.Shutdown()

	storePath, err := config.DefaultStorePath()
	if err != nil {
		return err
	}

	// Keys saved by earlier runs reach the environment here, so the
	// resolver skips its prompt.
	if _, statErr := os.Stat(storePath); statErr == nil {
		if loadErr := godotenv.Load(storePath); loadErr != nil {
			tel.Logger.Warn("failed to load credential store", "path", storePath, "error", loadErr)
		}
	}

	if overridesPath == "" {
		if home, homeErr := os.UserHomeDir(); homeErr == nil {
			overridesPath = filepath.Join(home, ".aivsai.yaml")
		}
	}
	overrides, err := config.LoadOverrides(overridesPath)
	if err != nil {
		return err
	}

	resolver := config.NewResolver(os.Stdin, os.Stdout, storePath, tel.Logger)

	answerer, err := resolver.Resolve(overrides.Answerer.Apply(config.Answerer()))
	if err != nil {
		return err
	}
	reviewer, err := resolver.Resolve(overrides.Reviewer.Apply(config.Reviewer()))
	if err != nil {
		return err
	}

	p := pair.New(
		answerer,
		reviewer,
		provider.NewClient(tel.Logger, tel.Tracer, tel.Meter),
		export.NewWriter(outDir),
		console.NewTermReader(os.Stdin),
		os.Stdout,
		tel.Logger,
	)
	return p.Run(ctx)
}
