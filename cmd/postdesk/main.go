// ABOUTME: Terminal console for the post-generation service
// ABOUTME: Holds the session, walks the route table, and runs the admin workflow

package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/joho/godotenv"

	"github.com/2389/postdesk/internal/api"
	"github.com/2389/postdesk/internal/config"
	"github.com/2389/postdesk/internal/console"
	"github.com/2389/postdesk/internal/generate"
	"github.com/2389/postdesk/internal/guard"
	"github.com/2389/postdesk/internal/session"
	"github.com/2389/postdesk/internal/state"
)

const banner = `
                     _      _           _
  _ __   ___  ___ | |_ __| | ___  ___| | __
 | '_ \ / _ \/ __|| __/ _' |/ _ \/ __| |/ /
 | |_) | (_) \__ \| || (_| |  __/\__ \   <
 | .__/ \___/|___/ \__\__,_|\___||___/_|\_\
 |_|
`

// app wires the console's components for one CLI invocation.
type app struct {
	cfg      *config.Config
	states   *state.SQLiteStore
	sessions *session.Store
	client   *api.Client
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	// Optional .env next to the working directory; missing files are fine.
	_ = godotenv.Load()

	cmd := os.Args[1]
	args := os.Args[2:]

	if cmd == "help" || cmd == "-h" || cmd == "--help" {
		printUsage()
		return
	}

	a, err := newApp()
	if err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
	defer a.states.Close()

	ctx := context.Background()
	if err := a.sessions.Initialize(ctx); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}

	switch cmd {
	case "login":
		err = a.cmdLogin(ctx, args)
	case "signup":
		err = a.cmdSignup(ctx, args)
	case "logout":
		err = a.cmdLogout(ctx)
	case "whoami":
		err = a.cmdWhoami()
	case "open":
		err = a.cmdOpen(args)
	case "generate":
		err = a.cmdGenerate(ctx, args)
	case "admin":
		err = a.cmdAdmin(ctx, args)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

func newApp() (*app, error) {
	cfg, err := config.LoadOrDefault(config.DefaultPath())
	if err != nil {
		return nil, err
	}

	slog.SetDefault(newLogger(cfg.Logging))

	states, err := state.NewSQLiteStore(cfg.State.Path)
	if err != nil {
		return nil, err
	}

	sessions := session.NewStore(states)
	client := api.New(cfg.Backend.URL, sessions)

	return &app{
		cfg:      cfg,
		states:   states,
		sessions: sessions,
		client:   client,
	}, nil
}

func newLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}

func printUsage() {
	cyan := color.New(color.FgCyan)
	yellow := color.New(color.FgYellow)

	cyan.Print(banner)
	fmt.Println()
	fmt.Println("Usage: postdesk <command> [args]")
	fmt.Println()
	yellow.Println("Commands:")
	fmt.Println("  login <username>             Log in and establish a session")
	fmt.Println("  signup <username>            Create an account and establish a session")
	fmt.Println("  logout                       Clear the session")
	fmt.Println("  whoami                       Show the current session")
	fmt.Println("  open <path>                  Evaluate the route guard for a path")
	fmt.Println("  generate [file]              Submit article text (stdin if no file)")
	fmt.Println("  admin users                  Fetch and print the user roster")
	fmt.Println("  admin enable <user> [-m N]   Grant access expiring N minutes from now")
	fmt.Println("  admin extend <user> [-m N]   Extend or replace an expiry window")
	fmt.Println("  admin rate-limit <N>         Set the global req/min ceiling")
	fmt.Println("  admin stats                  Fetch the server's request stats")
	fmt.Println("  admin audit                  List the local audit trail")
	fmt.Println()
	yellow.Println("Environment:")
	fmt.Println("  POSTDESK_CONFIG        Config file path (default ~/.config/postdesk/config.yaml)")
	fmt.Println("  POSTDESK_BACKEND_URL   Backend origin when no config file exists")
	fmt.Println()
	yellow.Println("Examples:")
	fmt.Println("  export POSTDESK_BACKEND_URL=\"https://api.example.com\"")
	fmt.Println("  postdesk signup alice")
	fmt.Println("  postdesk admin enable alice -m 1440")
	fmt.Println("  cat article.txt | postdesk generate")
	fmt.Println()
}

// promptPassword reads a password line from stdin.
func promptPassword() (string, error) {
	fmt.Print("Password: ")
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// landing prints where the session lands after authentication, mirroring the
// root-path resolution of the route guard.
func landing(role session.Role) {
	outcome, err := guard.Resolve(role, guard.PathRoot)
	if err != nil {
		return
	}
	if outcome.Action == guard.ActionRedirect {
		fmt.Printf("Landing page: %s\n", outcome.Target)
	}
}

func (a *app) cmdLogin(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: postdesk login <username>")
	}
	username := args[0]

	password, err := promptPassword()
	if err != nil {
		return err
	}

	credential, err := a.client.Login(ctx, username, password)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	if err := a.sessions.Login(ctx, credential); err != nil {
		return err
	}

	sess := a.sessions.Current()
	color.Green("Logged in as %s (%s)", username, sess.Role)
	landing(sess.Role)
	return nil
}

func (a *app) cmdSignup(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: postdesk signup <username>")
	}
	username := args[0]

	password, err := promptPassword()
	if err != nil {
		return err
	}

	credential, err := a.client.Signup(ctx, username, password)
	if err != nil {
		return fmt.Errorf("signup failed: %w", err)
	}

	if err := a.sessions.Login(ctx, credential); err != nil {
		return err
	}

	sess := a.sessions.Current()
	color.Green("Account created, logged in as %s (%s)", username, sess.Role)
	fmt.Println("An admin must enable your access before you can generate posts.")
	landing(sess.Role)
	return nil
}

func (a *app) cmdLogout(ctx context.Context) error {
	if err := a.sessions.Logout(ctx); err != nil {
		return err
	}
	color.Green("Logged out")
	return nil
}

func (a *app) cmdWhoami() error {
	sess := a.sessions.Current()

	cyan := color.New(color.FgCyan)
	fmt.Println()
	cyan.Println("  Session")
	cyan.Println("  -------")
	fmt.Printf("  Role:           %s\n", sess.Role)
	if sess.Authenticated() {
		fmt.Printf("  Credential:     %s\n", truncate(sess.Credential, 24))
	} else {
		fmt.Printf("  Credential:     (none)\n")
	}
	fmt.Println()
	return nil
}

func (a *app) cmdOpen(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: postdesk open <path>")
	}
	path := args[0]

	sess := a.sessions.Current()
	outcome, err := guard.Resolve(sess.Role, path)
	if err != nil {
		return err
	}

	switch outcome.Action {
	case guard.ActionRender:
		color.Green("%s: render (%s)", path, sess.Role)
	case guard.ActionRedirect:
		color.Yellow("%s: redirect to %s (%s)", path, outcome.Target, sess.Role)
	}
	return nil
}

func (a *app) cmdGenerate(ctx context.Context, args []string) error {
	sess := a.sessions.Current()
	if outcome, err := guard.Resolve(sess.Role, guard.PathGenerate); err != nil {
		return err
	} else if outcome.Action == guard.ActionRedirect {
		return fmt.Errorf("not signed in (redirect to %s)", outcome.Target)
	}

	asHTML := false
	var file string
	for _, arg := range args {
		if arg == "--html" {
			asHTML = true
			continue
		}
		file = arg
	}

	var article []byte
	var err error
	if file != "" {
		article, err = os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("reading article: %w", err)
		}
	} else {
		article, err = io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("reading article from stdin: %w", err)
		}
	}

	gen := generate.New(a.client)
	post, err := gen.Submit(ctx, strings.TrimSpace(string(article)))
	if err != nil {
		return err
	}

	if asHTML {
		html, err := generate.RenderHTML(post)
		if err != nil {
			return err
		}
		fmt.Println(html)
		return nil
	}

	cyan := color.New(color.FgCyan)
	fmt.Println()
	cyan.Println("  Generated Post")
	cyan.Println("  --------------")
	fmt.Println(post)
	fmt.Println()
	return nil
}

// requireAdminView applies the advisory client-side gate for the admin
// console. The server is the real enforcement point; this only mirrors the
// redirect a browser user would see.
func (a *app) requireAdminView() error {
	outcome, err := guard.Resolve(a.sessions.Current().Role, guard.PathAdminHome)
	if err != nil {
		return err
	}
	if outcome.Action == guard.ActionRedirect {
		return fmt.Errorf("admin console unavailable (redirect to %s)", outcome.Target)
	}
	return nil
}

func (a *app) cmdAdmin(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: postdesk admin <users|enable|extend|rate-limit|stats|audit>")
	}
	subcmd := args[0]
	args = args[1:]

	// The audit trail is local; it needs no session at all.
	if subcmd == "audit" {
		return a.cmdAdminAudit(ctx)
	}

	if err := a.requireAdminView(); err != nil {
		return err
	}

	c := console.New(a.client, a.states)

	switch subcmd {
	case "users", "list":
		return a.cmdAdminUsers(ctx, c)
	case "enable":
		return a.cmdAdminGrant(ctx, c, args, true)
	case "extend":
		return a.cmdAdminGrant(ctx, c, args, false)
	case "rate-limit":
		return a.cmdAdminRateLimit(ctx, c, args)
	case "stats":
		return a.cmdAdminStats(ctx, c)
	default:
		return fmt.Errorf("unknown admin subcommand: %s", subcmd)
	}
}

func (a *app) cmdAdminUsers(ctx context.Context, c *console.Console) error {
	roster, err := c.FetchRoster(ctx)
	if err != nil {
		return err
	}

	cyan := color.New(color.FgCyan)
	fmt.Println()
	cyan.Println("  Registered Users")
	cyan.Println("  ----------------")

	if len(roster) == 0 {
		fmt.Println("  (no users)")
		fmt.Println()
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  USERNAME\tROLE\tALLOWED\tEXPIRES\tDRAFT (MIN)")
	fmt.Fprintln(w, "  --------\t----\t-------\t-------\t-----------")

	for _, u := range roster {
		allowed := "no"
		if u.Allowed {
			allowed = "yes"
		}
		expires := u.AccessExpiresAt
		if expires == "" {
			expires = "-"
		}
		fmt.Fprintf(w, "  %s\t%s\t%s\t%s\t%d\n",
			u.Username, u.Role, allowed, expires, c.Draft(u.Username))
	}
	w.Flush()
	fmt.Println()
	return nil
}

// cmdAdminGrant handles both enable and extend; they share flags and the
// refresh-after-success policy.
func (a *app) cmdAdminGrant(ctx context.Context, c *console.Console, args []string, enable bool) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: postdesk admin enable|extend <username> [-m minutes]")
	}
	username := args[0]

	// Zero means "no flag given": the console falls back to the row's draft
	// or the 7-day default.
	minutes := 0
	for i := 1; i < len(args); i++ {
		switch args[i] {
		case "--minutes", "-m":
			if i+1 < len(args) {
				n, err := strconv.Atoi(args[i+1])
				if err != nil || n <= 0 {
					return fmt.Errorf("minutes must be a positive integer, got %q", args[i+1])
				}
				minutes = n
				i++
			}
		default:
			return fmt.Errorf("unknown flag: %s", args[i])
		}
	}

	// Seed drafts from the current roster before submitting.
	if _, err := c.FetchRoster(ctx); err != nil {
		return err
	}

	var msg string
	var err error
	if enable {
		msg, err = c.EnableAccess(ctx, username, minutes)
	} else {
		msg, err = c.ExtendAccess(ctx, username, minutes)
	}
	if err != nil {
		return err
	}

	color.Green("%s", msg)
	return a.cmdAdminUsers(ctx, c)
}

func (a *app) cmdAdminRateLimit(ctx context.Context, c *console.Console, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: postdesk admin rate-limit <requests-per-minute>")
	}

	limit, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("rate limit must be a positive integer, got %q", args[0])
	}

	msg, err := c.SetGlobalRateLimit(ctx, limit)
	if err != nil {
		return err
	}

	color.Green("%s", msg)
	return nil
}

func (a *app) cmdAdminStats(ctx context.Context, c *console.Console) error {
	stats, err := c.FetchStats(ctx)
	if err != nil {
		return err
	}

	cyan := color.New(color.FgCyan)
	fmt.Println()
	cyan.Println("  Request Stats")
	cyan.Println("  -------------")

	if len(stats) == 0 {
		fmt.Println("  (no requests logged)")
		fmt.Println()
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  USERNAME\tTIMESTAMP")
	fmt.Fprintln(w, "  --------\t---------")
	for _, s := range stats {
		fmt.Fprintf(w, "  %s\t%s\n", s.Username, s.Timestamp.Format("Jan 02 15:04:05"))
	}
	w.Flush()
	fmt.Println()
	return nil
}

func (a *app) cmdAdminAudit(ctx context.Context) error {
	entries, err := a.states.ListAudit(ctx, 100)
	if err != nil {
		return err
	}

	cyan := color.New(color.FgCyan)
	fmt.Println()
	cyan.Println("  Local Audit Trail")
	cyan.Println("  -----------------")

	if len(entries) == 0 {
		fmt.Println("  (no entries)")
		fmt.Println()
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  WHEN\tACTION\tTARGET\tDETAIL")
	fmt.Fprintln(w, "  ----\t------\t------\t------")
	for _, e := range entries {
		target := e.Target
		if target == "" {
			target = "-"
		}
		fmt.Fprintf(w, "  %s\t%s\t%s\t%s\n",
			e.CreatedAt.Format("Jan 02 15:04"), e.Action, target, e.Detail)
	}
	w.Flush()
	fmt.Println()
	return nil
}

// truncate shortens a string for table display.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
