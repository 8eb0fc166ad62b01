package ticker

import (
	"context"

	"github.com/plus3/bigby/app"
	"github.com/plus3/bigby/config"
	"go.uber.org/zap"
)

// RunApp starts a, ticks it every cfg.Interval until ctx is cancelled or a is
// stopped, and stops it on the way out. A startup failure is returned after
// the App has been stopped.
func RunApp(ctx context.Context, a *app.App, cfg config.TickerConfig) error {
	if err := a.Start(ctx); err != nil {
		_ = a.Stop()
		return err
	}

	t := New(a, cfg)
	t.Run(ctx, cfg.Interval, a.Done())
	_ = a.Stop()

	frames, fixed, dropped := t.Counters()
	a.Logger().Info("ticker finished",
		zap.Uint64("frames", frames),
		zap.Uint64("fixed_steps", fixed),
		zap.Uint64("dropped_steps", dropped),
	)
	return nil
}
