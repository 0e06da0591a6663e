package main

import (
	"context"
	"io"
	"log"
	"os"

	"github.com/dmitrijs2005/dreamcatcher/internal/buildinfo"
	"github.com/dmitrijs2005/dreamcatcher/internal/cli"
	"github.com/dmitrijs2005/dreamcatcher/internal/config"
	"github.com/dmitrijs2005/dreamcatcher/internal/logging"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		log.Fatalf("%v", err)
	}

	var w io.Writer = os.Stderr
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			log.Fatalf("error opening log file: %v", err)
		}
		defer f.Close()
		w = f
	}

	logger, err := logging.New(cfg.LogBackend, cfg.LogLevel, w)
	if err != nil {
		log.Fatalf("%v", err)
	}

	ctx := context.Background()

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Printf("%v", err)
		return
	}

	app.Run(ctx)

}
