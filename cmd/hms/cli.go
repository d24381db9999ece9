package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/jrsteele09/go-hospital-client/internal/config"
	apperrors "github.com/jrsteele09/go-hospital-client/internal/errors"
	"github.com/jrsteele09/go-hospital-client/users"
	"github.com/spf13/cobra"
)

// cli holds the streams and the lazily built app for one invocation.
type cli struct {
	configFile string

	in     *bufio.Reader
	out    io.Writer
	errOut io.Writer

	app *app
}

func run(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) int {
	c := &cli{in: bufio.NewReader(in), out: out, errOut: errOut}
	defer c.close()

	root := c.rootCmd()
	root.SetArgs(args)
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)
	if err := root.ExecuteContext(ctx); err != nil {
		present(errOut, err)
		return 1
	}
	return 0
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "hms",
		Short:         "Hospital management client",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&c.configFile, "config", "", "config file (yaml, json, toml or env)")

	root.AddCommand(
		c.loginCmd(),
		c.registerCmd(),
		c.logoutCmd(),
		c.whoamiCmd(),
		c.profileCmd(),
		c.doctorsCmd(),
		c.patientsCmd(),
		c.appointmentsCmd(),
		c.recordsCmd(),
		c.chatCmd(),
		c.adminCmd(),
		c.versionCmd(),
	)
	return root
}

func (c *cli) loadConfig() (config.Config, error) {
	return config.Load(c.configFile)
}

// open builds the app on first use.
func (c *cli) open(ctx context.Context) (*app, error) {
	if c.app != nil {
		return c.app, nil
	}
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	a, err := newApp(ctx, cfg, c.errOut)
	if err != nil {
		return nil, err
	}
	c.app = a
	return a, nil
}

func (c *cli) close() {
	if c.app != nil {
		c.app.close()
		c.app = nil
	}
}

// session opens the app and requires a logged in user holding one of roles.
// No roles means any role.
func (c *cli) session(ctx context.Context, roles ...users.RoleType) (*app, users.User, error) {
	a, err := c.open(ctx)
	if err != nil {
		return nil, users.User{}, err
	}
	sess, ok := a.sessions.Current()
	if !ok {
		return nil, users.User{}, apperrors.ErrNoSession
	}
	if len(roles) > 0 && !slices.Contains(roles, sess.User.Role) {
		return nil, users.User{}, fmt.Errorf("[hms] %s: %w", sess.User.Role, apperrors.ErrForbiddenRole)
	}
	return a, sess.User, nil
}

// prompt reads one line, writing label to errOut first.
func (c *cli) prompt(label string) (string, error) {
	fmt.Fprint(c.errOut, label)
	line, err := c.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// valueOrPrompt returns v, asking for it when empty. Closed input leaves the
// value empty for validation to report.
func (c *cli) valueOrPrompt(v, label string) (string, error) {
	if v != "" {
		return v, nil
	}
	line, err := c.prompt(label)
	if errors.Is(err, io.EOF) {
		return "", nil
	}
	return line, err
}

func (c *cli) table(header ...string) *tabwriter.Writer {
	w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(header, "\t"))
	return w
}

func row(w io.Writer, cols ...any) {
	parts := make([]string, len(cols))
	for i, v := range cols {
		parts[i] = fmt.Sprint(v)
	}
	fmt.Fprintln(w, strings.Join(parts, "\t"))
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return id, nil
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
