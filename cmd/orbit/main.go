package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/orbitapp/orbit-cli/internal/client/cli"
	"github.com/orbitapp/orbit-cli/internal/client/config"
	"github.com/orbitapp/orbit-cli/internal/logging"
)

func main() {

	cfg := config.LoadConfig()
	logger := logging.NewTextLogger(os.Stderr, slog.LevelWarn)

	app, err := cli.NewApp(cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
		return
	}
	app.Run(context.Background())
}
