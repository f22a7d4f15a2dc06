package cli

import (
	"github.com/spf13/cobra"

	"github.com/baydroid/StarSeeds-Contracts/internal/deploy"
	"github.com/baydroid/StarSeeds-Contracts/internal/token"
)

// NewDeployCommand creates the deploy command.
func NewDeployCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deploy <descriptor.cue>",
		Short: "Deploy a token from a CUE descriptor",
		Long: `Deploy a token into an empty database from a CUE deployment descriptor.

The descriptor names the token, its initial supply and decimals, the owner,
and the capability configuration (mintable, burnable, document URI, per-holder
cap, tax, deflation). The acting address is the deployer; when it differs from
the configured owner, ownership is handed over as part of the deployment.

Example:
  starseeds deploy --db ./star.db --as 0xaaaa... ./starseeds.cue`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDeploy(cmd, rootOpts, args[0])
		},
	}
	return cmd
}

func runDeploy(cmd *cobra.Command, opts *RootOptions, descriptorPath string) error {
	configureLogging(opts.Verbose)
	f := newFormatter(cmd, opts)

	deployer, err := callerAddress(opts)
	if err != nil {
		return err
	}

	params, err := deploy.CompileFile(descriptorPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to compile descriptor", err)
	}

	l, err := openLedger(opts)
	if err != nil {
		return err
	}
	defer closeQuietly(l)

	tok, err := token.Deploy(cmd.Context(), l, deployer, params, nil)
	if err != nil {
		return reportDomainError(f, err)
	}

	supply, err := tok.TotalSupply(cmd.Context())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read supply", err)
	}

	return f.Success(map[string]any{
		"name":         tok.Config().Name(),
		"symbol":       tok.Config().Symbol(),
		"owner":        tok.Owner().String(),
		"total_supply": supply.Dec(),
	})
}
