package hal

import (
	"context"
	"fmt"
	"time"
)

// HeadlessConfig paces the headless host. Ticks == 0 runs until ctx ends.
type HeadlessConfig struct {
	Hz    int
	Ticks uint64
}

// RunHeadless drives the app from a ticker with nothing on screen. Frames
// are still presented, so the back buffer can be inspected by tests.
func RunHeadless(ctx context.Context, hc HostConfig, newApp AppFactory, cfg HeadlessConfig) error {
	hz := cfg.Hz
	if hz == 0 {
		hz = 60
	}
	if hz < 0 || hz > int(time.Second) {
		return fmt.Errorf("headless: hz %d out of range", cfg.Hz)
	}

	h := newHost(hc)
	step, err := newApp(h)
	if err != nil {
		return err
	}

	t := time.NewTicker(time.Second / time.Duration(hz))
	defer t.Stop()

	var n uint64
	defer func() {
		hc.Log.Debug().Uint64("ticks", n).Uint64("frames", h.fb.Presented()).Msg("headless host stopped")
	}()
	for ; cfg.Ticks == 0 || n < cfg.Ticks; n++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
		if stop, err := runStep(step); stop || err != nil {
			return err
		}
	}
	return nil
}
