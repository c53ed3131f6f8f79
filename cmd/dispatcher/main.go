// Command dispatcher pops packages off the belt and loads each onto
// whichever truck currently occupies the dock, dead-lettering any package
// no truck could ever fit (spec section 4.3).
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ehrlich-b/dockyard/internal/belt"
	"github.com/ehrlich-b/dockyard/internal/config"
	"github.com/ehrlich-b/dockyard/internal/constants"
	"github.com/ehrlich-b/dockyard/internal/dock"
	"github.com/ehrlich-b/dockyard/internal/logging"
	"github.com/ehrlich-b/dockyard/internal/orchestrator"
	"github.com/ehrlich-b/dockyard/internal/sysv"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logging.Init("dispatcher", &logging.Config{Level: cfg.Logging.Level, ToConsole: cfg.Logging.ToConsole, ToFile: cfg.Logging.ToFile, Role: "dispatcher"})

	facade, err := sysv.New(sysv.Config{ShmKey: constants.SharedMemKey, SemKey: constants.SemaphoreKey, MsgKey: constants.MsgQueueKey})
	if err != nil {
		return err
	}
	state, err := facade.AttachShared()
	if err != nil {
		return err
	}
	if err := facade.AttachSemaphores(); err != nil {
		return err
	}
	if err := facade.AttachQueue(); err != nil {
		return err
	}

	b := belt.New(state, facade, nil)
	d := dock.New(state, facade, nil, nil)

	ctx, stop := orchestrator.WatchSignals(context.Background())
	defer stop()

	now := func() int64 { return time.Now().Unix() }

	for state.Running != 0 {
		pkg, err := b.Pop(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			logging.Default().Warn("pop failed", "error", err)
			continue
		}

		if err := d.RetryLoad(ctx, &pkg, now); err != nil {
			if err == dock.ErrDeadLettered {
				logging.Default().Info("package dead-lettered", "package_id", pkg.ID)
				continue
			}
			if ctx.Err() != nil {
				return nil
			}
			logging.Default().Warn("retry load failed", "package_id", pkg.ID, "error", err)
		}
	}
	return nil
}
