// Package cli provides the notepost command line: the web server and the
// administrative init-db command.
package cli

import (
	"fmt"
	"io"
	"os"

	"notepost/config"
	"notepost/pkg/logger"

	"github.com/spf13/cobra"
)

const (
	ExitSuccess = 0
	ExitFailure = 1
)

// CLI holds the command-line interface state.
type CLI struct {
	rootCmd *cobra.Command
	cfg     *config.Config

	// Global flags
	profile string
}

// New creates a new CLI instance.
func New() *CLI {
	c := &CLI{}
	c.rootCmd = c.newRootCmd()
	return c
}

// SetArgs overrides os.Args[1:], for tests.
func (c *CLI) SetArgs(args []string) { c.rootCmd.SetArgs(args) }

// SetOutput redirects command output, for tests.
func (c *CLI) SetOutput(w io.Writer) {
	c.rootCmd.SetOut(w)
	c.rootCmd.SetErr(w)
}

// Execute runs the CLI and returns the process exit code.
func (c *CLI) Execute() int {
	defer logger.Sync()
	if err := c.rootCmd.Execute(); err != nil {
		fmt.Fprintln(c.rootCmd.ErrOrStderr(), "Error:", err)
		return ExitFailure
	}
	return ExitSuccess
}

func (c *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notepost",
		Short: "A tiny single-table note board",
		Long: `notepost serves a list of short entries. Anyone can read them;
the configured admin can post and delete them after logging in.

Settings come from the environment (or a .env file): SECRET_KEY, DATABASE,
FLASKR_USERNAME, FLASKR_PASSWORD and the profile in FLASKR_ENV.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.initConfig()
		},
	}

	cmd.PersistentFlags().StringVar(&c.profile, "env", "", "configuration profile: development, testing, production or default")

	cmd.AddCommand(c.newServeCmd())
	cmd.AddCommand(c.newInitDBCmd())

	return cmd
}

func (c *CLI) initConfig() error {
	if !config.LoadDotEnv() {
		logger.Sugar.Debug("No .env file found, using environment variables from OS")
	}
	cfg, err := config.Load(c.profile)
	if err != nil {
		return err
	}
	c.cfg = cfg
	logger.Init(cfg.LogLevel)
	if os.Getenv(config.EnvSecretKey) == "" && cfg.Profile != config.Production && !cfg.Testing {
		logger.Sugar.Warn("SECRET_KEY is not set; sessions are signed with the development key")
	}
	return nil
}
