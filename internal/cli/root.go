package cli

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose  bool
	Format   string // "json" | "text"
	Database string
	Caller   string // acting address for mutating commands
}

// envConfig supplies flag defaults from the environment.
type envConfig struct {
	Database string `env:"STARSEEDS_DB"`
	Format   string `env:"STARSEEDS_FORMAT" envDefault:"text"`
	Caller   string `env:"STARSEEDS_CALLER"`
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the starseeds CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	defaults := envConfig{}
	if err := env.Parse(&defaults); err != nil {
		defaults = envConfig{Format: "text"}
	}

	cmd := &cobra.Command{
		Use:   "starseeds",
		Short: "StarSeeds token ledger",
		Long:  "A configurable fungible-token ledger with tax, deflation, and per-holder cap overlays.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", defaults.Format, "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", defaults.Database, "path to SQLite database")
	cmd.PersistentFlags().StringVar(&opts.Caller, "as", defaults.Caller, "acting address for mutating commands")

	cmd.AddCommand(NewDeployCommand(opts))
	cmd.AddCommand(NewTransferCommand(opts))
	cmd.AddCommand(NewApproveCommand(opts))
	cmd.AddCommand(NewMintCommand(opts))
	cmd.AddCommand(NewBurnCommand(opts))
	cmd.AddCommand(NewSetTaxCommand(opts))
	cmd.AddCommand(NewSetDeflationCommand(opts))
	cmd.AddCommand(NewSetDocURICommand(opts))
	cmd.AddCommand(NewRaiseCapCommand(opts))
	cmd.AddCommand(NewTransferOwnershipCommand(opts))
	cmd.AddCommand(NewRenounceOwnershipCommand(opts))
	cmd.AddCommand(NewBalanceCommand(opts))
	cmd.AddCommand(NewAllowanceCommand(opts))
	cmd.AddCommand(NewInfoCommand(opts))
	cmd.AddCommand(NewTraceCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
