// Package terminal implements the interactive operator console (spec
// section 4.6): a line-oriented command loop built on cobra. vip, depart
// and stop are cobra subcommands with their own argument parsing; help and
// exit/quit are handled before the line reaches cobra. Input is lower-cased
// first, so commands are case-insensitive.
package terminal

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/joeycumines/go-catrate"
	"github.com/spf13/cobra"

	"github.com/ehrlich-b/dockyard/internal/constants"
	"github.com/ehrlich-b/dockyard/internal/role"
)

// Commands a session may issue once logged in.
const (
	CmdVIP    = "vip"
	CmdDepart = "depart"
	CmdStop   = "stop"
	CmdHelp   = "help"
	CmdExit   = "exit"
)

// Handlers holds the callbacks Terminal dispatches to; each corresponds to
// one spec section 4.6 command.
type Handlers struct {
	VIP    func(args []string) (string, error)
	Depart func() (string, error)
	Stop   func() (string, error)
}

// Terminal reads lines from in, dispatches them through a cobra command
// tree, and writes results to out.
type Terminal struct {
	in      *bufio.Scanner
	out     io.Writer
	role    role.Mask
	handler Handlers
	limiter *catrate.Limiter
	root    *cobra.Command

	lastOutput string
	lastErr    error
}

// New builds a Terminal for a session with roleMask permissions, rate
// limiting repeated commands to 10/second so a pasted script can't flood
// the message queue.
func New(in io.Reader, out io.Writer, roleMask role.Mask, h Handlers) *Terminal {
	t := &Terminal{
		in:      bufio.NewScanner(in),
		out:     out,
		role:    roleMask,
		handler: h,
		limiter: catrate.NewLimiter(map[time.Duration]int{time.Second: 10}),
	}
	t.root = t.buildCommandTree()
	return t
}

func (t *Terminal) buildCommandTree() *cobra.Command {
	root := &cobra.Command{Use: "dockyard-terminal", SilenceUsage: true, SilenceErrors: true}

	vip := &cobra.Command{
		Use:   CmdVIP + " [batch]",
		Short: "Submit a VIP package, or a randomized VIP batch",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !t.role.CanIssueVIP() {
				return fmt.Errorf("terminal: role %s cannot issue vip commands", t.role)
			}
			out, err := t.handler.VIP(args)
			t.lastOutput = out
			return err
		},
	}

	depart := &cobra.Command{
		Use:   CmdDepart,
		Short: "Force the docked truck to depart early",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !t.role.CanForceDeparture() {
				return fmt.Errorf("terminal: role %s cannot force departure", t.role)
			}
			out, err := t.handler.Depart()
			t.lastOutput = out
			return err
		},
	}

	stop := &cobra.Command{
		Use:   CmdStop,
		Short: "End the simulation for every active session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !t.role.CanEndWork() {
				return fmt.Errorf("terminal: role %s cannot end work", t.role)
			}
			out, err := t.handler.Stop()
			t.lastOutput = out
			return err
		},
	}

	root.AddCommand(vip, depart, stop)
	return root
}

// ReadLoop blocks reading lines until ctx is canceled, in.Scan() returns
// false, or "exit"/"quit" is entered; it returns the reason it stopped.
func (t *Terminal) ReadLoop(ctx context.Context) error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		for t.in.Scan() {
			lines <- t.in.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				return io.EOF
			}
			if t.dispatchLine(line) {
				return nil
			}
		case <-time.After(constants.TerminalPollInterval):
		}
	}
}

// dispatchLine runs one command line, returning true if it was "exit" or
// "quit" (signaling ReadLoop to stop).
func (t *Terminal) dispatchLine(line string) bool {
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) == 0 {
		return false
	}
	switch fields[0] {
	case CmdExit, "quit":
		return true
	case CmdHelp:
		fmt.Fprintln(t.out, t.root.UsageString())
		return false
	}

	if _, ok := t.limiter.Allow("terminal-command"); !ok {
		fmt.Fprintln(t.out, "rate limit exceeded, slow down")
		return false
	}

	t.root.SetArgs(fields)
	if err := t.root.Execute(); err != nil {
		t.lastErr = err
		fmt.Fprintln(t.out, "error:", err)
		return false
	}
	if t.lastOutput != "" {
		fmt.Fprintln(t.out, t.lastOutput)
	}
	return false
}

// LastError returns the most recent command's error, if any - used by
// tests instead of scraping output text.
func (t *Terminal) LastError() error { return t.lastErr }
