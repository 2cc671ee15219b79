// Package app wires the blogctl subcommands to the session, API client and views.
package app

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/debemdeboas/blogctl/internal/api"
	"github.com/debemdeboas/blogctl/internal/backup"
	"github.com/debemdeboas/blogctl/internal/config"
	"github.com/debemdeboas/blogctl/internal/db"
	"github.com/debemdeboas/blogctl/internal/debounce"
	"github.com/debemdeboas/blogctl/internal/notify"
	"github.com/debemdeboas/blogctl/internal/session"
	"github.com/debemdeboas/blogctl/internal/store"
	"github.com/debemdeboas/blogctl/internal/theme"
	"github.com/debemdeboas/blogctl/internal/view"
	"github.com/rs/zerolog"
)

var appLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	appLogger = l
}

var ErrUsage = errors.New("usage")

// Options replace the process defaults, mostly for tests.
type Options struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer

	HTTPClient *http.Client
	Clock      debounce.Clock
	// Password overrides how passwords are read.
	Password func() (string, error)
	Uploader backup.Uploader
}

type App struct {
	cfg      *config.Config
	database *db.SQLite
	session  *session.Store
	client   *api.Client
	renderer *view.Renderer
	notifier *termNotifier

	rawIn    io.Reader
	in       *bufio.Scanner
	out      io.Writer
	password func() (string, error)
	clock    debounce.Clock
	uploader backup.Uploader

	sub    *notify.Subscriber[session.Event]
	authed atomic.Bool
	wg     sync.WaitGroup
}

// New opens the local store and builds the client. Close releases both.
func New(cfg *config.Config, opts Options) (*App, error) {
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Err == nil {
		opts.Err = os.Stderr
	}

	database := db.NewSQLite(cfg.Store.Path)
	if err := database.InitDB(); err != nil {
		return nil, fmt.Errorf(config.ErrInitializeDatabaseFmt, err)
	}
	kv, err := store.NewSQLiteStore(database)
	if err != nil {
		database.Close()
		return nil, err
	}

	th := theme.New(cfg.Theme.Default)
	a := &App{
		cfg:      cfg,
		database: database,
		session:  session.New(kv),
		renderer: view.NewRenderer(th, cfg.Content.ExcerptLength, theme.DefaultSyntaxStyle(th.Name)),
		rawIn:    opts.In,
		in:       bufio.NewScanner(opts.In),
		out:      opts.Out,
		password: opts.Password,
		clock:    opts.Clock,
		uploader: opts.Uploader,
	}
	a.notifier = &termNotifier{w: opts.Err, r: a.renderer}

	a.client = api.NewClient(cfg.API.BaseURL, opts.HTTPClient, a.session,
		api.WithUserAgent(cfg.API.UserAgent),
		api.WithTimeout(cfg.APITimeout()),
		api.WithUnauthorizedHandler(a.expire),
	)

	a.watchSession()
	return a, nil
}

func (a *App) Close() error {
	a.session.Unsubscribe(a.sub)
	a.wg.Wait()
	return a.database.Close()
}

// expire runs when the service rejects the stored token.
func (a *App) expire() {
	if err := a.session.Expire(); err != nil {
		appLogger.Error().Err(err).Msg("Failed to clear expired session")
	}
	a.notifier.Error(config.MsgSessionExpired, api.ErrUnauthorized)
}

// watchSession keeps the authenticated flag in step with the stored session.
func (a *App) watchSession() {
	a.sub = a.session.Subscribe(16)
	a.authed.Store(a.session.IsAuthenticated())

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		for ev := range a.sub.C {
			if ev.Key != config.KeyToken && ev.Key != config.KeyIsAuthenticated {
				continue
			}
			now := a.session.IsAuthenticated()
			if was := a.authed.Swap(now); was != now {
				appLogger.Debug().Bool("authenticated", now).Str("key", ev.Key).Msg("Session changed")
			}
		}
	}()
}

// Authenticated is the last state derived from session events.
func (a *App) Authenticated() bool {
	return a.authed.Load()
}

type command struct {
	usage string
	run   func(a *App, ctx context.Context, args []string) error
}

var commands = map[string]command{
	"signup":  {"signup <username> <email>", (*App).signup},
	"login":   {"login <email>", (*App).login},
	"logout":  {"logout", (*App).logout},
	"whoami":  {"whoami", (*App).whoami},
	"list":    {"list", (*App).list},
	"drafts":  {"drafts", (*App).drafts},
	"mine":    {"mine", (*App).mine},
	"show":    {"show <id> [--source]", (*App).show},
	"delete":  {"delete <id> [--yes]", (*App).delete},
	"publish": {"publish <id>", (*App).publishDraft},
	"edit":    {"edit [id]", (*App).edit},
	"backup":  {"backup [--force]", (*App).backup},
}

var commandOrder = []string{"signup", "login", "logout", "whoami", "list", "drafts", "mine", "show", "delete", "publish", "edit", "backup"}

// Run executes one subcommand.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		a.usage()
		if len(args) == 0 {
			return ErrUsage
		}
		return nil
	}

	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(a.out, "unknown command %q\n", args[0])
		a.usage()
		return ErrUsage
	}

	appLogger.Debug().Str("command", args[0]).Msg("Running command")
	err := cmd.run(a, ctx, args[1:])
	if errors.Is(err, ErrUsage) {
		fmt.Fprintln(a.out, "usage: blogctl "+cmd.usage)
	}
	return err
}

func (a *App) usage() {
	fmt.Fprintln(a.out, a.renderer.Theme.Title.Render("blogctl")+" - write and read posts from the terminal")
	for _, name := range commandOrder {
		fmt.Fprintln(a.out, "  blogctl "+commands[name].usage)
	}
}

// parseFlags accepts flags before or after positional arguments.
func parseFlags(fs *flag.FlagSet, args []string) ([]string, error) {
	var flags, positional []string
	for _, arg := range args {
		if strings.HasPrefix(arg, "-") {
			flags = append(flags, arg)
		} else {
			positional = append(positional, arg)
		}
	}
	fs.SetOutput(io.Discard)
	if err := fs.Parse(flags); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUsage, err)
	}
	return positional, nil
}

func (a *App) readLine() (string, error) {
	if !a.in.Scan() {
		if err := a.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(a.in.Text()), nil
}

func (a *App) prompt(label string) (string, error) {
	fmt.Fprint(a.out, a.renderer.Theme.Prompt.Render(label))
	return a.readLine()
}

// report tells the user why an operation failed.
func (a *App) report(err error, fallback string) {
	switch {
	case errors.Is(err, api.ErrAuthRequired):
		a.notifier.Error(config.MsgLoginRequired, err)
	case errors.Is(err, api.ErrUnauthorized):
		// expire already told the user.
	default:
		var apiErr *api.Error
		if errors.As(err, &apiErr) {
			a.notifier.Error(apiErr.Message, err)
			return
		}
		a.notifier.Error(fallback, err)
	}
}

type termNotifier struct {
	mu sync.Mutex
	w  io.Writer
	r  *view.Renderer
}

func (n *termNotifier) Info(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	fmt.Fprintln(n.w, n.r.Notice(msg, nil))
}

func (n *termNotifier) Error(msg string, err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	fmt.Fprintln(n.w, n.r.Notice(msg, err))
	if err != nil {
		appLogger.Debug().Err(err).Msg(msg)
	}
}
