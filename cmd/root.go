package cmd

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/vinquery/nhtsavin/cmd/decode"
	"github.com/vinquery/nhtsavin/cmd/version"
	"github.com/vinquery/nhtsavin/pkg/shared/config"
	"github.com/vinquery/nhtsavin/pkg/shared/errors"
	"github.com/vinquery/nhtsavin/pkg/shared/logger"
)

var (
	cfgFile   string
	AppConfig *config.Config
	Logger    hclog.Logger
	rootCmd   = &cobra.Command{
		Use:                   "nhtsavin [command]",
		SilenceUsage:          true,
		SilenceErrors:         true,
		DisableFlagsInUseLine: true,
		Short:                 "nhtsavin decodes VINs with the NHTSA vPIC API.",
		Long: `nhtsavin decodes a Vehicle Identification Number with the NHTSA vPIC decodevin
endpoint and prints the decoded vehicle record.`,
		PersistentPreRunE: initConfig,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to the YAML configuration file (defaults are used when omitted).")
	rootCmd.AddCommand(decode.DecodeCmd)
	rootCmd.AddCommand(version.NewVersionCmd())
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)

		var cmdErr *errors.CommandError
		if stderrors.As(err, &cmdErr) {
			return cmdErr.ExitCode
		}
		return 1
	}
	return 0
}

func initConfig(cmd *cobra.Command, args []string) error {
	var err error

	AppConfig, err = config.LoadConfig(cfgFile)
	if err != nil {
		return errors.NewCommandError(fmt.Errorf("initializing config file failed: %w", err), 1)
	}
	if err := config.ValidateConfig(AppConfig); err != nil {
		return errors.NewCommandError(err, 1)
	}

	Logger = logger.NewLogger(AppConfig, "nhtsavin")
	decode.Init(AppConfig, Logger.Named("decode"))
	return nil
}
