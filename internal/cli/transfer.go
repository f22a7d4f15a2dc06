package cli

import (
	"github.com/spf13/cobra"
)

// TransferOptions holds flags for the transfer command.
type TransferOptions struct {
	*RootOptions
	From string // holder for delegated transfers
}

// NewTransferCommand creates the transfer command.
func NewTransferCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TransferOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "transfer <to> <amount>",
		Short: "Transfer tokens",
		Long: `Transfer tokens from the acting address to a recipient.

With --from, the acting address spends its allowance to move tokens out of
the holder's balance instead; the allowance is reduced by the full requested
amount. Tax and deflation deductions apply either way.

Example:
  starseeds transfer --db ./star.db --as 0xaaaa... 0xbbbb... 1000
  starseeds transfer --db ./star.db --as 0xcccc... --from 0xaaaa... 0xbbbb... 1000`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTransfer(cmd, opts, args[0], args[1])
		},
	}

	cmd.Flags().StringVar(&opts.From, "from", "", "holder address for a delegated transfer")

	return cmd
}

func runTransfer(cmd *cobra.Command, opts *TransferOptions, toArg, amountArg string) error {
	configureLogging(opts.Verbose)
	f := newFormatter(cmd, opts.RootOptions)

	caller, err := callerAddress(opts.RootOptions)
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

	tok, l, err := openToken(cmd, opts.RootOptions)
	if err != nil {
		return err
	}
	defer closeQuietly(l)

	if opts.From != "" {
		from, ferr := parseAddressArg(opts.From)
		if ferr != nil {
			return ferr
		}
		if err := tok.TransferFrom(cmd.Context(), caller, from, to, amount); err != nil {
			return reportDomainError(f, err)
		}
	} else {
		if err := tok.Transfer(cmd.Context(), caller, to, amount); err != nil {
			return reportDomainError(f, err)
		}
	}

	balance, err := tok.BalanceOf(cmd.Context(), to)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read balance", err)
	}

	return f.Success(map[string]any{
		"to":      to.String(),
		"amount":  amount.Dec(),
		"balance": balance.Dec(),
	})
}
