package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/zatekoja/woundtrack/internal/app"
	"github.com/zatekoja/woundtrack/internal/domain/entities"
)

func (c *cli) loginCmd() *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "login <email-or-username>",
		Short: "Sign in and store the session locally",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := readPassword(cmd, password)
			if err != nil {
				return err
			}
			return c.withApp(cmd, func(ctx context.Context, a *app.App) error {
				s, err := a.Auth.Login(ctx, args[0], pw)
				if err != nil {
					return err
				}
				return c.printSession(cmd, s)
			})
		},
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password (default: $WOUNDTRACK_PASSWORD or prompt)")
	return cmd
}

func (c *cli) registerCmd() *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "register <username> <email>",
		Short: "Create an account and sign in",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := readPassword(cmd, password)
			if err != nil {
				return err
			}
			return c.withApp(cmd, func(ctx context.Context, a *app.App) error {
				s, err := a.Auth.Register(ctx, args[0], args[1], pw)
				if err != nil {
					return err
				}
				return c.printSession(cmd, s)
			})
		},
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password (default: $WOUNDTRACK_PASSWORD or prompt)")
	return cmd
}

func (c *cli) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd, func(ctx context.Context, a *app.App) error {
				if err := a.Auth.Logout(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
				return nil
			})
		},
	}
}

func (c *cli) whoamiCmd() *cobra.Command {
	var remote bool
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd, func(ctx context.Context, a *app.App) error {
				if remote {
					user, err := a.Auth.Profile(ctx)
					if err != nil {
						return err
					}
					if c.jsonOut {
						return c.printJSON(cmd.OutOrStdout(), user)
					}
					printUser(cmd.OutOrStdout(), user)
					return nil
				}
				s, err := a.Auth.Current(ctx)
				if err != nil {
					return err
				}
				return c.printSession(cmd, s)
			})
		},
	}
	cmd.Flags().BoolVar(&remote, "remote", false, "Fetch the profile from the content API")
	return cmd
}

func (c *cli) printSession(cmd *cobra.Command, s *entities.Session) error {
	if c.jsonOut {
		return c.printJSON(cmd.OutOrStdout(), struct {
			User      entities.User `json:"user"`
			ExpiresAt *time.Time    `json:"expires_at,omitempty"`
		}{s.User, s.ExpiresAt})
	}
	printUser(cmd.OutOrStdout(), &s.User)
	if s.ExpiresAt != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "Session expires %s\n", s.ExpiresAt.Local().Format("2006-01-02 15:04"))
	}
	return nil
}
