// Command qviz-sim serves the reference simulator over HTTP.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"qviz/internal/buildinfo"
	"qviz/internal/config"
	"qviz/internal/logging"
	"qviz/services/simapi"
	"qviz/sim"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	addr := flag.String("addr", cfg.SimAddr, "Listen address.")
	seed := flag.Uint64("seed", 0, "Shot sampling seed (0 = time based).")
	dev := flag.Bool("dev", false, "Disable response compression.")
	flag.Parse()

	log := logging.New(os.Stderr, cfg.LogLevel, cfg.LogPretty)
	log.Info().Str("version", buildinfo.Short()).Msg("qviz-sim starting")

	var opts []sim.Option
	opts = append(opts, sim.WithLogger(log))
	if *seed != 0 {
		opts = append(opts, sim.WithSeed(*seed))
	}
	srv := simapi.New(simapi.Config{
		Addr:      *addr,
		Log:       log,
		Simulator: sim.New(opts...),
		DevMode:   *dev,
	})

	go func() {
		if err := srv.Start(); err != nil {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Shutdown failed")
	}
	log.Info().Msg("qviz-sim stopped")
}
