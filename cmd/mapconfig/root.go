package main

import (
	"fmt"
	"os"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/zerologr"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	version = "dev"

	flagVerbose int
	flagQuiet   bool
)

var rootCmd = &cobra.Command{
	Use:           "mapconfig",
	Short:         "Check and normalize struct-mapper mapping files",
	SilenceUsage:  true,
	SilenceErrors: true,
	Version:       version,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().CountVarP(&flagVerbose, "verbose", "v", "log verbosity, repeat for more")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "log errors only")
}

// newLogger builds the console logger of a command run.
func newLogger(cmd *cobra.Command) logr.Logger {
	zerologr.NameFieldName = "logger"
	zerologr.NameSeparator = "/"
	zerologr.SetMaxV(flagVerbose)

	level := zerolog.InfoLevel
	if flagQuiet {
		level = zerolog.ErrorLevel
	}

	output := zerolog.ConsoleWriter{Out: cmd.ErrOrStderr(), TimeFormat: time.RFC3339}
	zl := zerolog.New(output).Level(level).With().Timestamp().Logger()

	return zerologr.New(&zl).WithName("mapconfig")
}
