// Command orchestrator creates the simulation's System V IPC resources,
// spawns one process per role, and tears everything down on shutdown
// (spec section 4.7).
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ehrlich-b/dockyard/internal/config"
	"github.com/ehrlich-b/dockyard/internal/constants"
	"github.com/ehrlich-b/dockyard/internal/logging"
	"github.com/ehrlich-b/dockyard/internal/orchestrator"
	"github.com/ehrlich-b/dockyard/internal/sysv"
)

func main() {
	root := &cobra.Command{
		Use:   "orchestrator",
		Short: "Create dockyard's IPC resources and spawn its role processes",
		RunE:  run,
	}
	root.Flags().String("workers-bin", "./worker", "path to the worker binary")
	root.Flags().String("dispatcher-bin", "./dispatcher", "path to the dispatcher binary")
	root.Flags().String("truck-bin", "./truck", "path to the truck binary")
	root.Flags().String("terminal-bin", "./terminal", "path to the terminal binary")
	root.Flags().String("beltmon-bin", "./beltmon", "path to the belt-monitor binary")
	root.Flags().String("express-bin", "./express", "path to the express binary")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logging.Init("orchestrator", &logging.Config{
		Level:     cfg.Logging.Level,
		ToConsole: cfg.Logging.ToConsole,
		ToFile:    cfg.Logging.ToFile,
		Role:      "orchestrator",
	})

	facade, err := sysv.New(sysv.Config{
		ShmKey:  constants.SharedMemKey,
		SemKey:  constants.SemaphoreKey,
		MsgKey:  constants.MsgQueueKey,
		ShmSize: 0,
	})
	if err != nil {
		return fmt.Errorf("build facade: %w", err)
	}

	orch := orchestrator.New(cfg, facade)
	state, err := orch.CreateResources()
	if err != nil {
		return fmt.Errorf("create resources: %w", err)
	}

	ctx, stop := orchestrator.WatchSignals(context.Background())
	defer stop()

	specs := []orchestrator.RoleSpec{
		{Name: "dispatcher", Path: mustFlag(cmd, "dispatcher-bin"), Count: 1},
		{Name: "express", Path: mustFlag(cmd, "express-bin"), Count: 1},
		{Name: "beltmon", Path: mustFlag(cmd, "beltmon-bin"), Count: 1},
		{Name: "truck", Path: mustFlag(cmd, "truck-bin"), Count: cfg.Simulation.Trucks},
		{Name: "worker", Path: mustFlag(cmd, "workers-bin"), Count: cfg.Simulation.Workers},
	}
	for _, spec := range specs {
		if err := orch.Spawn(ctx, spec); err != nil {
			logging.Default().Error("spawn failed", "role", spec.Name, "error", err)
		}
	}

	logging.Default().Info("orchestrator ready", "run_id", orch.RunID())
	orch.Wait(ctx)

	return orch.Shutdown(state)
}

func mustFlag(cmd *cobra.Command, name string) string {
	v, _ := cmd.Flags().GetString(name)
	return v
}
