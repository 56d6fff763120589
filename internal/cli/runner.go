package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"golang.org/x/term"

	"github.com/idilsaglam/adminpanel/internal/app"
	"github.com/idilsaglam/adminpanel/internal/config"
	"github.com/idilsaglam/adminpanel/internal/store"
	"github.com/idilsaglam/adminpanel/internal/tui"
	"github.com/idilsaglam/adminpanel/internal/ui"
)

// Options carry what main resolved before handing over.
type Options struct {
	Config config.Config
	Logger *slog.Logger

	// Store overrides the backend chosen by Config.Session.
	Store store.Store

	Stdin    io.Reader
	Out, Err io.Writer
	Getenv   func(string) string

	// IsTerminal and ReadPassword read the password without echo when
	// Stdin is a terminal.
	IsTerminal   func(fd uintptr) bool
	ReadPassword func(fd int) ([]byte, error)

	// Interactive is set when stdin is a terminal; no arguments then means tui.
	Interactive bool
	RunTUI      func(ctx context.Context, a *app.App) error
}

func (o *Options) defaults() {
	if o.Logger == nil {
		o.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if o.Stdin == nil {
		o.Stdin = os.Stdin
	}
	if o.Out == nil {
		o.Out = os.Stdout
	}
	if o.Err == nil {
		o.Err = os.Stderr
	}
	if o.Getenv == nil {
		o.Getenv = os.Getenv
	}
	if o.IsTerminal == nil {
		o.IsTerminal = isatty.IsTerminal
	}
	if o.ReadPassword == nil {
		o.ReadPassword = term.ReadPassword
	}
	if o.RunTUI == nil {
		o.RunTUI = tui.Run
	}
}

// Run dispatches subcommands and returns an exit code (0 ok, 1 error, 2 usage).
func Run(ctx context.Context, args []string, opt Options) int {
	opt.defaults()

	if len(args) == 0 {
		if !opt.Interactive {
			PrintHelp(opt.Err)
			return 2
		}
		args = []string{"tui"}
	}
	cmd, a := args[0], args[1:]

	switch cmd {
	case "help", "-h", "--help":
		PrintHelp(opt.Out)
		return 0
	}
	h, ok := commands[cmd]
	if !ok {
		ui.Fail(opt.Err, "unknown subcommand: "+cmd)
		fmt.Fprintln(opt.Err)
		PrintHelp(opt.Err)
		return 2
	}

	e, err := setup(ctx, opt)
	if err != nil {
		ui.Fail(opt.Err, err.Error())
		return 1
	}
	defer e.close()
	return h(ctx, e, a)
}

type handler func(ctx context.Context, e *env, args []string) int

var commands map[string]handler

func init() {
	commands = map[string]handler{
		"tui":       doTUI,
		"login":     doLogin,
		"register":  doRegister,
		"logout":    doLogout,
		"status":    doStatus,
		"whoami":    doWhoami,
		"dashboard": doDashboard,
		"users":     doUsers,
		"user":      doUser,
		"items":     doItems,
		"item":      doItem,
		"add":       doAdd,
		"update":    doUpdate,
		"rm":        doRemove,
		"search":    doSearch,
		"stats":     doStats,
		"ping":      doPing,
		"audit":     doAudit,
		"tag":       doTag,
		"tagged":    doTagged,
	}
}

func PrintHelp(w io.Writer) {
	fmt.Fprint(w, `adminpanel - terminal client for the admin REST API

Usage:
  adminpanel [--config file] [--theme name] [--ephemeral] <subcommand> [args]

Session:
  login <username> [--password p]       Log in and store the session
  register <username> <email> [--password p]
                                        Create an account
  logout                                Forget the stored session
  status                                Show backend, session source and user
  whoami                                Inspect the stored token

Browse:
  tui                                   Interactive panel (default on a terminal)
  dashboard                             User and item counts
  users                                 List users
  user <id>                             Show one user
  items                                 List items
  item <id>                             Show one item
  search <query> [--type users|items]   Search users and items
  stats [--refresh]                     Backend analytics
  ping                                  Check the API is reachable
  audit [--limit n]                     Recent changes, newest first
  tagged <tag-id>                       Items carrying a tag

Items:
  add <name> <price> [description...]           Add an item
  update <id> <name> <price> [description...]   Replace an item
  rm <id>                                       Delete an item
  tag <name...>                                 Create a tag

The password is read from --password, $ADMINPANEL_PASSWORD or one line of stdin.

Examples:
  adminpanel login admin
  adminpanel add "Desk lamp" 19.50 brass, dimmable
  adminpanel search lamp --type items
`)
}

// fail prints err and maps it to an exit code.
func (e *env) fail(err error) int {
	switch {
	case errors.Is(err, app.ErrNotLoggedIn):
		ui.Fail(e.err, "not logged in")
		ui.Hint(e.err, "Hint: run `adminpanel login <username>` first")
		return 2
	case errors.Is(err, app.ErrInvalidPrice), errors.Is(err, app.ErrEmptyTagName):
		ui.Fail(e.err, err.Error())
		return 2
	}
	ui.Fail(e.err, err.Error())
	return 1
}

func (e *env) usage(line string) int {
	ui.Fail(e.err, "usage: adminpanel "+line)
	return 2
}

// parseFlags lets flags appear anywhere among the positional arguments.
func parseFlags(fs *flag.FlagSet, args []string) ([]string, error) {
	var pos []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		args = fs.Args()
		if len(args) == 0 {
			return pos, nil
		}
		pos = append(pos, args[0])
		args = args[1:]
	}
}

func (e *env) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(e.err)
	return fs
}
