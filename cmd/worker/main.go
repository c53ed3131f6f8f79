// Command worker attaches to the simulation's shared memory and
// continuously produces packages onto the belt (spec section 3), sleeping
// a randomized think-time between each.
package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/ehrlich-b/dockyard/internal/belt"
	"github.com/ehrlich-b/dockyard/internal/config"
	"github.com/ehrlich-b/dockyard/internal/constants"
	"github.com/ehrlich-b/dockyard/internal/logging"
	"github.com/ehrlich-b/dockyard/internal/orchestrator"
	"github.com/ehrlich-b/dockyard/internal/sysv"
	"github.com/ehrlich-b/dockyard/internal/uapi"
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
	logging.Init("worker", &logging.Config{Level: cfg.Logging.Level, ToConsole: cfg.Logging.ToConsole, ToFile: cfg.Logging.ToFile})

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

	b := belt.New(state, facade, nil)
	ctx, stop := orchestrator.WatchSignals(context.Background())
	defer stop()

	pid := int32(os.Getpid())
	if !b.RegisterWorker(ctx, int32(cfg.Simulation.MaxWorkers)) {
		return fmt.Errorf("worker: could not register, pool at capacity")
	}
	defer b.UnregisterWorker(ctx)

	rng := rand.New(rand.NewSource(time.Now().UnixNano() ^ int64(pid)))

	for state.Running != 0 {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		pkg := makePackage(rng, pid)
		if err := b.Push(ctx, &pkg); err != nil {
			logging.Default().Warn("push failed", "error", err)
			continue
		}

		think := constants.WorkerThinkTimeMin + time.Duration(rng.Int63n(int64(constants.WorkerThinkTimeMax-constants.WorkerThinkTimeMin+1)))
		select {
		case <-time.After(think):
		case <-ctx.Done():
			return nil
		}
	}
	return nil
}

// makePackage builds a package with every field but ID populated; ID is
// assigned by Belt.Push itself, under belt.mutex, from the shared
// total_packages_created counter (spec section 4.2 step 3).
func makePackage(rng *rand.Rand, pid int32) uapi.Package {
	kind := uint8(rng.Intn(3))
	weight := constants.PackageMinWeight + rng.Float64()*(constants.PackageMaxWeight-constants.PackageMinWeight)
	volume := constants.PackageMinVolume + rng.Float64()*(constants.PackageMaxVolume-constants.PackageMinVolume)

	pkg := uapi.Package{
		Kind:      kind,
		Status:    uapi.StatusNormal,
		Weight:    weight,
		Volume:    volume,
		CreatedAt: time.Now().Unix(),
	}
	pkg.AppendAudit(uapi.AuditCreated, uapi.ActorWorker, pid, pkg.CreatedAt)
	return pkg
}
