package main

import (
	"fmt"
	"time"

	"github.com/jrsteele09/go-hospital-client/auth"
	"github.com/jrsteele09/go-hospital-client/token"
	"github.com/jrsteele09/go-hospital-client/users"
	"github.com/spf13/cobra"
)

func (c *cli) loginCmd() *cobra.Command {
	var params auth.LoginParameters
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and keep the session for later commands",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			if params.Email, err = c.valueOrPrompt(params.Email, "Email: "); err != nil {
				return err
			}
			if params.Password, err = c.valueOrPrompt(params.Password, "Password: "); err != nil {
				return err
			}
			user, _, err := a.auth.Login(cmd.Context(), params)
			if err != nil {
				return err
			}
			c.welcome(user)
			return nil
		},
	}
	cmd.Flags().StringVar(&params.Email, "email", "", "account email")
	cmd.Flags().StringVar(&params.Password, "password", "", "account password (prompted when omitted)")
	return cmd
}

func (c *cli) registerCmd() *cobra.Command {
	var params auth.RegisterParameters
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a patient account and log in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			if params.FullName, err = c.valueOrPrompt(params.FullName, "Full name: "); err != nil {
				return err
			}
			if params.Email, err = c.valueOrPrompt(params.Email, "Email: "); err != nil {
				return err
			}
			if params.Password, err = c.valueOrPrompt(params.Password, "Password: "); err != nil {
				return err
			}
			user, pair, err := a.auth.Register(cmd.Context(), params)
			if err != nil {
				return err
			}
			if pair.Message != "" {
				fmt.Fprintln(c.out, pair.Message)
			}
			c.welcome(user)
			return nil
		},
	}
	cmd.Flags().StringVar(&params.FullName, "name", "", "full name")
	cmd.Flags().StringVar(&params.Email, "email", "", "account email")
	cmd.Flags().StringVar(&params.Password, "password", "", "account password (prompted when omitted)")
	return cmd
}

func (c *cli) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			a.auth.Logout()
			fmt.Fprintln(c.out, "Logged out.")
			return nil
		},
	}
}

func (c *cli) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the session user and their menu",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, _, err := c.session(cmd.Context())
			if err != nil {
				return err
			}
			sess, _ := a.sessions.Current()
			fmt.Fprintf(c.out, "%s <%s>\n", sess.User.DisplayName(), sess.User.Email)
			fmt.Fprintf(c.out, "role:    %s\n", sess.User.Role)
			if claims, err := token.Decode(sess.Token); err == nil {
				fmt.Fprintf(c.out, "expires: %s (%s left)\n", claims.ExpiresAt.Local().Format(time.DateTime),
					claims.Remaining(time.Now()).Round(time.Minute))
			}
			c.menu(sess.User.Role)
			return nil
		},
	}
}

func (c *cli) welcome(user *users.User) {
	fmt.Fprintf(c.out, "Welcome, %s (%s).\n", user.DisplayName(), user.Role)
	c.menu(user.Role)
}

func (c *cli) menu(role users.RoleType) {
	fmt.Fprintln(c.out, "menu:")
	for _, item := range users.Navigation(role) {
		fmt.Fprintf(c.out, "  %-14s %s\n", item.Key, item.Label)
	}
}
