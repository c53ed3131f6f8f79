// Command terminal is the interactive operator console: it logs a session
// into the shared user table, then hands stdin/stdout to
// internal/terminal's command loop, wiring vip/depart/stop to the express
// path, the dock, and a broadcast over the message queue (spec section
// 4.6).
package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/ehrlich-b/dockyard/internal/belt"
	"github.com/ehrlich-b/dockyard/internal/config"
	"github.com/ehrlich-b/dockyard/internal/constants"
	"github.com/ehrlich-b/dockyard/internal/dock"
	"github.com/ehrlich-b/dockyard/internal/express"
	"github.com/ehrlich-b/dockyard/internal/logging"
	"github.com/ehrlich-b/dockyard/internal/orchestrator"
	"github.com/ehrlich-b/dockyard/internal/role"
	"github.com/ehrlich-b/dockyard/internal/session"
	"github.com/ehrlich-b/dockyard/internal/sysv"
	"github.com/ehrlich-b/dockyard/internal/terminal"
	"github.com/ehrlich-b/dockyard/internal/uapi"
)

func main() {
	root := &cobra.Command{
		Use:   "terminal",
		Short: "Log into a dockyard session and issue operator commands",
		RunE:  run,
	}
	root.Flags().String("username", "", "session username (required)")
	root.Flags().String("role", "viewer", "session role: viewer, operator, org_admin, sys_admin")
	root.Flags().Int32("org-id", 0, "organization id this session belongs to")
	root.Flags().Int32("max-processes", 4, "per-session child process quota")
	_ = root.MarkFlagRequired("username")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logging.Init("terminal", &logging.Config{Level: cfg.Logging.Level, ToConsole: cfg.Logging.ToConsole, ToFile: cfg.Logging.ToFile, Role: "terminal"})

	username, _ := cmd.Flags().GetString("username")
	roleName, _ := cmd.Flags().GetString("role")
	orgID, _ := cmd.Flags().GetInt32("org-id")
	maxProcesses, _ := cmd.Flags().GetInt32("max-processes")

	roleMask := role.Parse(roleName)
	if roleMask == 0 {
		return fmt.Errorf("terminal: unrecognized role %q", roleName)
	}

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

	ctx, stop := orchestrator.WatchSignals(context.Background())
	defer stop()

	pid := int32(os.Getpid())
	sessions := session.New(state, facade, nil)
	if err := sessions.Login(ctx, username, pid, roleMask, orgID, maxProcesses); err != nil {
		return fmt.Errorf("terminal: login failed: %w", err)
	}
	defer func() { _ = sessions.Logout(context.Background(), pid) }()

	d := dock.New(state, facade, nil, nil)
	b := belt.New(state, facade, nil)
	ex := express.New(d, b, nil)

	handlers := terminal.Handlers{
		VIP:    vipHandler(ctx, facade, sessions, ex, pid, roleMask),
		Depart: departHandler(ctx, d),
		Stop:   stopHandler(ctx, state, facade, sessions),
	}

	t := terminal.New(os.Stdin, os.Stdout, roleMask, handlers)
	fmt.Fprintf(os.Stdout, "logged in as %s (%s); type 'help' for commands\n", username, roleMask)
	return t.ReadLoop(ctx)
}

// vipHandler implements the "vip" command (spec section 4.8): a single VIP
// package is addressed to the pid of the session named "System-Express"
// and sent EXPRESS_LOAD over the message queue - the terminal never loads
// the truck itself. "vip batch" stays a direct, synchronous call into
// internal/express so the operator sees the delivered count immediately;
// the wire protocol has no payload field to carry a batch size or a reply
// (see DESIGN.md).
func vipHandler(ctx context.Context, facade sysv.Facade, sessions *session.Registry, ex *express.Express, pid int32, roleMask role.Mask) func([]string) (string, error) {
	return func(args []string) (string, error) {
		if len(args) > 0 && args[0] == "batch" {
			delivered, err := ex.DeliverExpressBatch(ctx, pid, roleMask, func(i int) uapi.Package {
				return randomPackage()
			})
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("delivered %d express packages", len(delivered)), nil
		}

		if !roleMask.CanIssueVIP() {
			return "", fmt.Errorf("terminal: role %s cannot issue vip commands", roleMask)
		}

		expressPID, err := sessions.PIDOf(ctx, constants.SystemExpressUsername)
		if err != nil {
			return "", fmt.Errorf("terminal: express process offline: %w", err)
		}
		if err := facade.SendCommand(uapi.CommandMessage{RecipientTag: int64(expressPID), CommandID: constants.CmdExpressLoad}); err != nil {
			return "", fmt.Errorf("terminal: vip signal failed: %w", err)
		}
		return "vip package signaled to express", nil
	}
}

func departHandler(ctx context.Context, d *dock.Dock) func() (string, error) {
	return func() (string, error) {
		if err := d.ForceDeparture(ctx); err != nil {
			return "", err
		}
		return "forced the docked truck to depart", nil
	}
}

func stopHandler(ctx context.Context, state *uapi.SharedState, facade sysv.Facade, sessions *session.Registry) func() (string, error) {
	return func() (string, error) {
		state.Running = 0

		pids, err := sessions.ActivePIDs(ctx)
		if err != nil {
			return "", err
		}
		for _, pid := range pids {
			_ = facade.SendCommand(uapi.CommandMessage{RecipientTag: int64(pid), CommandID: constants.CmdEndWork})
		}
		return "simulation ending for all sessions (" + strconv.Itoa(len(pids)) + " notified)", nil
	}
}

// randomPackage leaves ID at zero; Express.DeliverExpressBatch assigns the
// real id from the belt-mutex-gated counter before loading it.
func randomPackage() uapi.Package {
	weight := constants.PackageMinWeight + rand.Float64()*(constants.PackageMaxWeight-constants.PackageMinWeight)
	volume := constants.PackageMinVolume + rand.Float64()*(constants.PackageMaxVolume-constants.PackageMinVolume)
	return uapi.Package{
		Kind:      uint8(rand.Intn(3)),
		Weight:    weight,
		Volume:    volume,
		CreatedAt: time.Now().Unix(),
	}
}
