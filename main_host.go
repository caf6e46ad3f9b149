package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"qviz/app"
	"qviz/hal"
	"qviz/internal/buildinfo"
	"qviz/internal/config"
	"qviz/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	var (
		headless bool
		terminal bool
		hcfg     hal.HeadlessConfig
		acfg     = app.Config{Preset: cfg.Preset, SimURL: cfg.SimURL, Shots: cfg.Shots, StepMs: cfg.StepMs}
	)
	flag.BoolVar(&headless, "headless", false, "Run without a window.")
	flag.BoolVar(&terminal, "terminal", false, "Render into the terminal with half-block cells.")
	flag.IntVar(&hcfg.Hz, "hz", cfg.FPS, "Tick rate in headless and terminal mode.")
	flag.Uint64Var(&hcfg.Ticks, "ticks", 0, "Stop after N ticks in headless mode (0 = run forever).")
	flag.StringVar(&acfg.Preset, "preset", acfg.Preset, fmt.Sprintf("Start preset %v.", app.PresetNames()))
	flag.StringVar(&acfg.SimURL, "sim", acfg.SimURL, "Simulation API base URL (empty = in-process simulator).")
	flag.BoolVar(&acfg.Follow, "follow", false, "Mirror every result streamed by the simulation API.")
	flag.IntVar(&acfg.StepMs, "step-ms", acfg.StepMs, "Per-gate delay for circuit playback.")
	flag.Parse()

	var logOut io.Writer = os.Stderr
	if terminal {
		// The terminal host owns the screen.
		logOut = io.Discard
	}
	log := logging.New(logOut, cfg.LogLevel, cfg.LogPretty)
	acfg.Log = log
	hc := hal.HostConfig{Width: cfg.Width, Height: cfg.Height, Log: log}

	log.Info().Str("version", buildinfo.Short()).Str("preset", acfg.Preset).Msg("qviz starting")

	newApp := app.New(acfg)
	switch {
	case headless || terminal:
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		if terminal {
			err = hal.RunTerminal(ctx, hc, newApp, hal.TerminalConfig{Hz: hcfg.Hz})
		} else {
			err = hal.RunHeadless(ctx, hc, newApp, hcfg)
		}
		if errors.Is(err, context.Canceled) {
			err = nil
		}
	default:
		if err = hal.RunWindow(hc, newApp); errors.Is(err, hal.ErrNoWindow) {
			err = fmt.Errorf("%w; try -terminal or -headless", err)
		}
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
