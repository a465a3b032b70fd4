// Package cmd is the copyroles command line. Each subcommand runs one
// interactive workflow and reports its failure as a process exit status.
package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alma-tools/copyroles/pkg/config"
	"github.com/alma-tools/copyroles/pkg/copyroles"
	"github.com/alma-tools/copyroles/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type streams struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer
}

// rootOptions are the flags shared by every subcommand
type rootOptions struct {
	baseURL string
	envFile string
	verbose bool
}

func newRootCmd(s streams) *cobra.Command {
	opts := &rootOptions{}
	rootCmd := &cobra.Command{
		Use:           "copyroles",
		Short:         "Copy Alma user roles between users and environments",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetIn(s.in)
	rootCmd.SetOut(s.out)
	rootCmd.SetErr(s.errOut)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.baseURL, "base-url", "", "Alma API base url, overrides "+config.BaseURLEnv)
	flags.StringVar(&opts.envFile, "env-file", ".env", "dotenv file to read configuration from")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log every Alma request to stderr")

	rootCmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return errors.NewUsage(err)
	})

	rootCmd.AddCommand(newCopyRolesCmd(opts, s))
	rootCmd.AddCommand(newCopyUserCmd(opts, s))
	return rootCmd
}

// newWorkflow loads the configuration for a single run and wires the
// workflow to the terminal
func (o *rootOptions) newWorkflow(s streams) (*copyroles.Workflow, error) {
	builder := (&config.DefaultConfigurationBuilder{}).WithDotEnv(o.envFile)
	if o.baseURL != "" {
		builder = builder.WithVal(config.BaseURLEnv, o.baseURL)
	}
	cfg, err := config.New(builder)
	if err != nil {
		return nil, err
	}

	logger := logrus.New()
	logger.SetOutput(s.errOut)
	logger.SetFormatter(&logrus.TextFormatter{DisableColors: true})
	logger.SetLevel(cfg.Level())
	if o.verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	return copyroles.NewWorkflow(copyroles.NewWorkflowInput{
		Config:   cfg,
		Prompter: copyroles.NewTerminal(s.in, s.out),
		Logger:   logger,
	}), nil
}

// usageArgs reports positional argument errors as usage errors
func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(c *cobra.Command, args []string) error {
		if err := validate(c, args); err != nil {
			return errors.NewUsage(err)
		}
		return nil
	}
}

// finish turns a workflow result into the command's error. Outcomes other
// than Failed end the run successfully.
func finish(_ copyroles.Outcome, err error) error {
	if err == nil {
		return nil
	}
	var statusErr *errors.StatusError
	if !errors.As(err, &statusErr) {
		return errors.NewTransport("terminal error", err)
	}
	return err
}

func run(args []string, s streams) int {
	rootCmd := newRootCmd(s)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	if err == nil {
		return errors.ExitSuccess
	}

	// cobra reports unknown commands and missing required flags as plain errors
	var statusErr *errors.StatusError
	if !errors.As(err, &statusErr) {
		err = errors.NewUsage(err)
	}
	fmt.Fprintf(s.errOut, "Error: %s\n", strings.ReplaceAll(err.Error(), "\n", " "))
	return errors.ExitCodeForError(err)
}

// Execute runs the command line against the process streams and returns the
// exit status
func Execute() int {
	return run(os.Args[1:], streams{
		in:     os.Stdin,
		out:    os.Stdout,
		errOut: os.Stderr,
	})
}
