package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/zatekoja/woundtrack/internal/app"
	"github.com/zatekoja/woundtrack/internal/infrastructure/observability"
	"github.com/zatekoja/woundtrack/pkg/config"
	"github.com/zatekoja/woundtrack/pkg/secrets"
)

// appFactory builds the application for a single command invocation.
type appFactory func(ctx context.Context) (*app.App, error)

func defaultAppFactory(ctx context.Context) (*app.App, error) {
	if _, err := secrets.ApplyVaultSecrets(ctx, secrets.LoadVaultConfigFromEnv(), secrets.ProcessEnv); err != nil {
		return nil, fmt.Errorf("failed to load secrets from Vault: %w", err)
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return app.New(ctx, cfg, app.Options{})
}

type cli struct {
	newApp  appFactory
	jsonOut bool
	verbose bool
}

func newRootCmd(factory appFactory) *cobra.Command {
	c := &cli{newApp: factory}

	root := &cobra.Command{
		Use:           "woundtrack",
		Short:         "Photograph a wound, classify it and find care nearby",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			observability.InitLoggerTo(cmd.ErrOrStderr(), "woundtrack-cli", "development")
			level := zerolog.WarnLevel
			if c.verbose {
				level = zerolog.DebugLevel
			}
			zerolog.SetGlobalLevel(level)
		},
	}
	root.PersistentFlags().BoolVar(&c.jsonOut, "json", false, "Print results as JSON")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Log debug output to stderr")

	root.AddCommand(
		c.loginCmd(),
		c.registerCmd(),
		c.logoutCmd(),
		c.whoamiCmd(),
		c.predictCmd(),
		c.historyCmd(),
		c.hospitalsCmd(),
		c.locationCmd(),
		c.healthCmd(),
	)
	return root
}

// withApp runs fn against a freshly built application and closes it after.
func (c *cli) withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := c.newApp(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()
	return fn(ctx, a)
}

func (c *cli) printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func readPassword(cmd *cobra.Command, flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if env := os.Getenv("WOUNDTRACK_PASSWORD"); env != "" {
		return env, nil
	}
	fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
	var password string
	if _, err := fmt.Fscanln(cmd.InOrStdin(), &password); err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return password, nil
}
