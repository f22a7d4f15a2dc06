package cli

import (
	"github.com/spf13/cobra"
)

// NewApproveCommand creates the approve command.
func NewApproveCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "approve <spender> <amount>",
		Short: "Approve a spender allowance",
		Long: `Set the allowance a spender may move out of the acting address's balance.

Approvals overwrite: the new allowance replaces any previous one.

Example:
  starseeds approve --db ./star.db --as 0xaaaa... 0xcccc... 1500`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApprove(cmd, rootOpts, args[0], args[1])
		},
	}
	return cmd
}

func runApprove(cmd *cobra.Command, opts *RootOptions, spenderArg, amountArg string) error {
	configureLogging(opts.Verbose)
	f := newFormatter(cmd, opts)

	caller, err := callerAddress(opts)
	if err != nil {
		return err
	}
	spender, err := parseAddressArg(spenderArg)
	if err != nil {
		return err
	}
	amount, err := parseAmountArg(amountArg)
	if err != nil {
		return err
	}

	tok, l, err := openToken(cmd, opts)
	if err != nil {
		return err
	}
	defer closeQuietly(l)

	if err := tok.Approve(cmd.Context(), caller, spender, amount); err != nil {
		return reportDomainError(f, err)
	}

	return f.Success(map[string]any{
		"owner":     caller.String(),
		"spender":   spender.String(),
		"allowance": amount.Dec(),
	})
}

// NewMintCommand creates the mint command.
func NewMintCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mint <to> <amount>",
		Short: "Mint new tokens (owner only)",
		Long: `Mint new tokens to a recipient, growing total supply.

Requires the mintable capability and an owner acting address. Mints are
never taxed or deflated; the per-holder cap applies to the full amount.

Example:
  starseeds mint --db ./star.db --as 0xaaaa... 0xbbbb... 500`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMint(cmd, rootOpts, args[0], args[1])
		},
	}
	return cmd
}

func runMint(cmd *cobra.Command, opts *RootOptions, toArg, amountArg string) error {
	configureLogging(opts.Verbose)
	f := newFormatter(cmd, opts)

	caller, err := callerAddress(opts)
	if err != nil {
		return err
	}
	to, err := parseAddressArg(toArg)
	if err != nil {
		return err
	}
	amount, err := parseAmountArg(amountArg)
	if err != nil {
		return err
	}

	tok, l, err := openToken(cmd, opts)
	if err != nil {
		return err
	}
	defer closeQuietly(l)

	if err := tok.Mint(cmd.Context(), caller, to, amount); err != nil {
		return reportDomainError(f, err)
	}

	supply, err := tok.TotalSupply(cmd.Context())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read supply", err)
	}

	return f.Success(map[string]any{
		"to":           to.String(),
		"amount":       amount.Dec(),
		"total_supply": supply.Dec(),
	})
}

// NewBurnCommand creates the burn command.
func NewBurnCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "burn <amount>",
		Short: "Burn tokens from the acting address (owner only)",
		Long: `Burn tokens from the acting address's balance, shrinking total supply.

Requires the burnable capability and an owner acting address.

Example:
  starseeds burn --db ./star.db --as 0xaaaa... 300`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBurn(cmd, rootOpts, args[0])
		},
	}
	return cmd
}

func runBurn(cmd *cobra.Command, opts *RootOptions, amountArg string) error {
	configureLogging(opts.Verbose)
	f := newFormatter(cmd, opts)

	caller, err := callerAddress(opts)
	if err != nil {
		return err
	}
	amount, err := parseAmountArg(amountArg)
	if err != nil {
		return err
	}

	tok, l, err := openToken(cmd, opts)
	if err != nil {
		return err
	}
	defer closeQuietly(l)

	if err := tok.Burn(cmd.Context(), caller, amount); err != nil {
		return reportDomainError(f, err)
	}

	supply, err := tok.TotalSupply(cmd.Context())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read supply", err)
	}

	return f.Success(map[string]any{
		"burned":       amount.Dec(),
		"total_supply": supply.Dec(),
	})
}
