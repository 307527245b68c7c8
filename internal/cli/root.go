package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"deskbridge/internal/app"
	"deskbridge/internal/config"
	"deskbridge/internal/infrastructure/logging"
	"deskbridge/internal/output"
	"deskbridge/internal/types"
)

// AppFactory builds the App that commands run against
type AppFactory func(cfg *config.Config, logger logging.Logger) *app.App

// Env carries the process environment for the command tree
type Env struct {
	Stdout  io.Writer
	Stderr  io.Writer
	NewApp  AppFactory
	Version string
}

type rootOptions struct {
	format     string
	pretty     bool
	configPath string
	logLevel   string
}

// NewRootCommand builds the bridgectl command tree
func NewRootCommand(env Env) *cobra.Command {
	if env.Stdout == nil {
		env.Stdout = os.Stdout
	}
	if env.Stderr == nil {
		env.Stderr = os.Stderr
	}
	if env.NewApp == nil {
		env.NewApp = app.NewApp
	}

	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "bridgectl",
		Short:         "Run deskbridge host commands from a terminal",
		Long:          "bridgectl runs the same commands the deskbridge UI invokes and prints the result envelope.",
		Version:       env.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(env.Stdout)
	root.SetErr(env.Stderr)

	root.PersistentFlags().StringVar(&opts.format, "format", "json", "Output format: json or yaml")
	root.PersistentFlags().BoolVar(&opts.pretty, "pretty", false, "Indent JSON output")
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "Config file (default: "+config.DefaultPath()+")")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Override the configured log level")
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		_, err := output.ParseFormat(opts.format)
		return err
	}

	s := &session{env: env, opts: opts}
	root.AddCommand(
		newClassifyCommand(s),
		newSelectionCommand(s),
		newRequestCommand(s),
		newServeCommand(s),
	)
	return root
}

// session lazily loads configuration and the App for one invocation
type session struct {
	env    Env
	opts   *rootOptions
	cfg    *config.Config
	logger logging.Logger
	app    *app.App
}

func (s *session) load() (*app.App, error) {
	if s.app != nil {
		return s.app, nil
	}
	path := s.opts.configPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if s.opts.logLevel != "" {
		cfg.Logging.Level = s.opts.logLevel
	}
	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return nil, err
	}

	// logs go to stderr so stdout carries only the result
	s.cfg = cfg
	s.logger = logging.NewLogger(level, s.env.Stderr)
	s.app = s.env.NewApp(cfg, s.logger)
	return s.app, nil
}

// print writes the envelope and turns a failure envelope into a non-zero exit
func (s *session) print(res types.Result) error {
	format, err := output.ParseFormat(s.opts.format)
	if err != nil {
		return err
	}
	if err := output.Print(s.env.Stdout, format, res, s.opts.pretty); err != nil {
		return err
	}
	if !res.OK() {
		return &FailureError{Msg: res.Msg}
	}
	return nil
}

// FailureError reports that a command printed a failure envelope
type FailureError struct {
	Msg string
}

func (e *FailureError) Error() string {
	return fmt.Sprintf("command failed: %s", e.Msg)
}
