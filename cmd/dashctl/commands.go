package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"creditboard/internal/dashboard/models"
	"creditboard/internal/dashboard/orchestrator"
	dErrors "creditboard/pkg/domain-errors"
)

const usage = `commands:
  customers         show the current screen again
  select <id>       load the dashboard for a customer
  viewer <type>     silky_internal | bank_partner | merchant
  tier <tier>       subscription tier filter (blank clears it)
  lender <id>       lender filter (blank clears it)
  generate          reload the dashboard for the selected customer
  refresh           reload the customer list
  help              show this help
  quit              exit
`

type verb string

const (
	verbCustomers verb = "customers"
	verbSelect    verb = "select"
	verbViewer    verb = "viewer"
	verbTier      verb = "tier"
	verbLender    verb = "lender"
	verbGenerate  verb = "generate"
	verbRefresh   verb = "refresh"
	verbHelp      verb = "help"
	verbQuit      verb = "quit"
)

var filterVerbs = map[verb]models.FilterField{
	verbViewer: models.FilterViewerType,
	verbTier:   models.FilterSubscriptionTier,
	verbLender: models.FilterLenderID,
}

type command struct {
	verb verb
	arg  string
}

// parseCommand reads one input line. Blank lines yield an empty verb.
func parseCommand(line string) (command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return command{}, nil
	}
	cmd := command{verb: verb(strings.ToLower(fields[0]))}
	if len(fields) > 2 {
		return command{}, dErrors.New(dErrors.CodeBadRequest, fmt.Sprintf("%s takes at most one argument", cmd.verb))
	}
	if len(fields) == 2 {
		cmd.arg = fields[1]
	}

	switch cmd.verb {
	case verbSelect:
		if cmd.arg == "" {
			return command{}, dErrors.New(dErrors.CodeBadRequest, "usage: select <id>")
		}
	case verbViewer, verbTier, verbLender:
	case verbCustomers, verbGenerate, verbRefresh, verbHelp, verbQuit:
		if cmd.arg != "" {
			return command{}, dErrors.New(dErrors.CodeBadRequest, fmt.Sprintf("%s takes no arguments", cmd.verb))
		}
	case "exit":
		cmd.verb = verbQuit
	default:
		return command{}, dErrors.New(dErrors.CodeBadRequest, fmt.Sprintf("unknown command %q, try help", fields[0]))
	}
	return cmd, nil
}

// shell feeds operator commands to an orchestrator. Dashboard loads run in
// the background so a new selection can overtake one still in flight.
type shell struct {
	orch   *orchestrator.Orchestrator
	redraw func(context.Context, models.Frame)
	out    io.Writer
}

// run reads commands until quit, end of input or ctx is done. At end of
// input pending loads are allowed to finish, so piped scripts see their
// results; quit abandons them.
func (s *shell) run(ctx context.Context, in io.Reader) error {
	ctx, cancel := context.WithCancel(ctx)
	var g errgroup.Group
	drain := false
	defer func() {
		if !drain {
			cancel()
		}
		_ = g.Wait()
		cancel()
	}()

	g.Go(func() error {
		s.orch.RefreshCustomers(ctx)
		return nil
	})

	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- sc.Err()
	}()

	for {
		var line string
		var ok bool
		select {
		case <-ctx.Done():
			return nil
		case line, ok = <-lines:
		}
		if !ok {
			drain = true
			select {
			case err := <-scanErr:
				return err
			default:
				return nil
			}
		}

		cmd, err := parseCommand(line)
		if err != nil {
			fmt.Fprintln(s.out, err)
			continue
		}
		if cmd.verb == verbQuit {
			return nil
		}
		s.dispatch(ctx, &g, cmd)
	}
}

func (s *shell) dispatch(ctx context.Context, g *errgroup.Group, cmd command) {
	switch cmd.verb {
	case "":
	case verbHelp:
		fmt.Fprint(s.out, usage)
	case verbCustomers:
		s.redraw(ctx, s.orch.Frame())
	case verbSelect:
		id := models.CustomerID(cmd.arg)
		g.Go(func() error {
			s.orch.SelectCustomer(ctx, id)
			return nil
		})
	case verbViewer, verbTier, verbLender:
		field := filterVerbs[cmd.verb]
		// Validate up front so the error is printed before the prompt returns.
		if _, err := models.NewDashboardQuery().With(field, cmd.arg); err != nil {
			fmt.Fprintln(s.out, err)
			return
		}
		g.Go(func() error {
			_ = s.orch.ChangeFilter(ctx, field, cmd.arg)
			return nil
		})
	case verbGenerate:
		g.Go(func() error {
			if !s.orch.Generate(ctx) {
				fmt.Fprintln(s.out, "select a customer first")
			}
			return nil
		})
	case verbRefresh:
		g.Go(func() error {
			s.orch.RefreshCustomers(ctx)
			return nil
		})
	}
}

// lockedWriter serialises writes from the renderer and the prompt.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
