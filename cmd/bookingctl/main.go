// bookingctl is the command line client of the booking backend. It keeps the
// programmer's session token in a local file so a login survives between runs,
// and uses it to mint anonymous form links for concerts, artists and contracts.
//
//	bookingctl login --email programmer@example.com --password ...
//	bookingctl status
//	bookingctl link concert42
//	bookingctl check concert42-1718000000000-xy9f2ab3c1
//	bookingctl logout
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/jrsteele09/go-booking-auth/internal/config"
	"github.com/jrsteele09/go-booking-auth/link"
	"github.com/jrsteele09/go-booking-auth/session"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	zerolog.SetGlobalLevel(zerolog.WarnLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, config.New(), os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type cli struct {
	cfg   config.Config
	guard *session.Guard
	out   io.Writer
}

func run(ctx context.Context, cfg config.Config, args []string, out io.Writer) error {
	var verbose bool
	flagSet := pflag.NewFlagSet("bookingctl", pflag.ContinueOnError)
	flagSet.SetOutput(out)
	flagSet.SetInterspersed(false)
	flagSet.BoolVarP(&verbose, "verbose", "v", false, "log session diagnostics to stderr")
	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			printHelp(out, flagSet)
			return nil
		}
		return err
	}
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	rest := flagSet.Args()
	if len(rest) == 0 {
		printHelp(out, flagSet)
		return errors.New("no command given")
	}

	guard, err := session.NewGuard(
		session.NewFileTokenStore(cfg.GetTokenFile()),
		session.NewHTTPAuthenticator(cfg.GetLoginURL(), &http.Client{Timeout: cfg.GetLoginTimeout()}),
		session.WithClockSkew(cfg.GetClockSkew()),
	)
	if err != nil {
		return err
	}
	guard.Initialize(ctx)

	c := &cli{cfg: cfg, guard: guard, out: out}
	command, commandArgs := rest[0], rest[1:]
	switch command {
	case "login":
		return c.login(ctx, commandArgs)
	case "logout":
		guard.Logout(ctx)
		fmt.Fprintln(out, "logged out")
		return nil
	case "status":
		return c.status()
	case "link":
		return c.link(ctx, commandArgs)
	case "check":
		return c.check(commandArgs)
	default:
		printHelp(out, flagSet)
		return errors.Errorf("unknown command %q", command)
	}
}

func (c *cli) login(ctx context.Context, args []string) error {
	var req session.LoginRequest
	flagSet := pflag.NewFlagSet("login", pflag.ContinueOnError)
	flagSet.SetOutput(c.out)
	flagSet.StringVar(&req.Email, "email", "", "account email")
	flagSet.StringVar(&req.Password, "password", os.Getenv("BOOKING_PASSWORD"), "account password (default $BOOKING_PASSWORD)")
	if err := flagSet.Parse(args); err != nil {
		return err
	}

	if err := c.guard.Login(ctx, req); err != nil {
		return err
	}
	identity := c.guard.State().Identity
	fmt.Fprintf(c.out, "logged in as %s <%s>\n", identity.Name, identity.Email)
	return nil
}

func (c *cli) status() error {
	state := c.guard.State()
	if !state.Authenticated {
		fmt.Fprintln(c.out, "not logged in")
		return nil
	}
	fmt.Fprintf(c.out, "logged in as %s <%s> (%s)\n", state.Identity.Name, state.Identity.Email, state.Identity.UserID)
	if len(state.Identity.Roles) > 0 {
		fmt.Fprintf(c.out, "roles: %s\n", strings.Join(state.Identity.Roles, ", "))
	}
	return nil
}

type createdLink struct {
	link.FormToken
	URL string `json:"url"`
}

func (c *cli) link(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: bookingctl link <entity-id>")
	}
	if !c.guard.State().Authenticated {
		return errors.New("not logged in, run bookingctl login first")
	}

	body, err := json.Marshal(map[string]string{"entityId": args[0]})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.GetBaseURL()+"/api/links", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	client := c.guard.Credentials().Client(http.DefaultTransport)
	client.Timeout = c.cfg.GetLoginTimeout()
	resp, err := client.Do(req)
	if err != nil {
		return errors.Wrap(err, "create link")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		// the backend no longer accepts the token, so the local session is stale
		c.guard.Logout(ctx)
		return errors.New("session rejected by the server, please log in again")
	}
	if resp.StatusCode != http.StatusCreated {
		return errors.Errorf("create link: unexpected status %d", resp.StatusCode)
	}

	var created createdLink
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return errors.Wrap(err, "decode link")
	}
	fmt.Fprintln(c.out, created.URL)
	return nil
}

func (c *cli) check(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: bookingctl check <token>")
	}
	if !link.Validate(args[0]) {
		return errors.Errorf("%q is not a valid link token", args[0])
	}
	entityID, _ := link.Parse(args[0])
	fmt.Fprintf(c.out, "valid link for %s\n", entityID)
	return nil
}

func printHelp(out io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprintln(out, "usage: bookingctl [flags] <login|logout|status|link|check> [args]")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "flags:")
	fmt.Fprint(out, flagSet.FlagUsages())
}
