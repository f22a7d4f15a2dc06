package cli

import (
	"strconv"

	"github.com/spf13/cobra"
)

// NewSetTaxCommand creates the set-tax command.
func NewSetTaxCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set-tax <address> <bps>",
		Short: "Update the transfer tax configuration (owner only)",
		Long: `Update the tax sink address and rate in basis points.

Requires the taxable capability and an owner acting address. The rate is
bounded at 5000 bps (50%).

Example:
  starseeds set-tax --db ./star.db --as 0xaaaa... 0xdddd... 250`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSetTax(cmd, rootOpts, args[0], args[1])
		},
	}
	return cmd
}

func runSetTax(cmd *cobra.Command, opts *RootOptions, addrArg, bpsArg string) error {
	configureLogging(opts.Verbose)
	f := newFormatter(cmd, opts)

	caller, err := callerAddress(opts)
	if err != nil {
		return err
	}
	taxAddr, err := parseAddressArg(addrArg)
	if err != nil {
		return err
	}
	bps, err := parseBPSArg(bpsArg)
	if err != nil {
		return err
	}

	tok, l, err := openToken(cmd, opts)
	if err != nil {
		return err
	}
	defer closeQuietly(l)

	if err := tok.SetTaxConfig(cmd.Context(), caller, taxAddr, bps); err != nil {
		return reportDomainError(f, err)
	}

	return f.Success(map[string]any{
		"tax_address": taxAddr.String(),
		"tax_bps":     bps,
	})
}

// NewSetDeflationCommand creates the set-deflation command.
func NewSetDeflationCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set-deflation <bps>",
		Short: "Update the deflation rate (owner only)",
		Long: `Update the burn-on-transfer rate in basis points.

Requires the deflationary capability and an owner acting address. The rate
is bounded at 5000 bps (50%).

Example:
  starseeds set-deflation --db ./star.db --as 0xaaaa... 100`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSetDeflation(cmd, rootOpts, args[0])
		},
	}
	return cmd
}

func runSetDeflation(cmd *cobra.Command, opts *RootOptions, bpsArg string) error {
	configureLogging(opts.Verbose)
	f := newFormatter(cmd, opts)

	caller, err := callerAddress(opts)
	if err != nil {
		return err
	}
	bps, err := parseBPSArg(bpsArg)
	if err != nil {
		return err
	}

	tok, l, err := openToken(cmd, opts)
	if err != nil {
		return err
	}
	defer closeQuietly(l)

	if err := tok.SetDeflationConfig(cmd.Context(), caller, bps); err != nil {
		return reportDomainError(f, err)
	}

	return f.Success(map[string]any{
		"deflation_bps": bps,
	})
}

// NewSetDocURICommand creates the set-doc-uri command.
func NewSetDocURICommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set-doc-uri <uri>",
		Short: "Update the document URI (owner only)",
		Long: `Update the token's document URI.

Requires the document URI capability and an owner acting address.

Example:
  starseeds set-doc-uri --db ./star.db --as 0xaaaa... https://example.com/v2.pdf`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSetDocURI(cmd, rootOpts, args[0])
		},
	}
	return cmd
}

func runSetDocURI(cmd *cobra.Command, opts *RootOptions, uri string) error {
	configureLogging(opts.Verbose)
	f := newFormatter(cmd, opts)

	caller, err := callerAddress(opts)
	if err != nil {
		return err
	}

	tok, l, err := openToken(cmd, opts)
	if err != nil {
		return err
	}
	defer closeQuietly(l)

	if err := tok.SetDocumentURI(cmd.Context(), caller, uri); err != nil {
		return reportDomainError(f, err)
	}

	return f.Success(map[string]any{
		"document_uri": uri,
	})
}

// NewRaiseCapCommand creates the raise-cap command.
func NewRaiseCapCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "raise-cap <amount>",
		Short: "Raise the per-holder balance cap (owner only)",
		Long: `Raise the per-holder balance cap to a strictly greater value.

Requires the max token amount capability and an owner acting address. The
cap only ever loosens; lowering it is not possible.

Example:
  starseeds raise-cap --db ./star.db --as 0xaaaa... 20000`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRaiseCap(cmd, rootOpts, args[0])
		},
	}
	return cmd
}

func runRaiseCap(cmd *cobra.Command, opts *RootOptions, amountArg string) error {
	configureLogging(opts.Verbose)
	f := newFormatter(cmd, opts)

	caller, err := callerAddress(opts)
	if err != nil {
		return err
	}
	newCap, err := parseAmountArg(amountArg)
	if err != nil {
		return err
	}

	tok, l, err := openToken(cmd, opts)
	if err != nil {
		return err
	}
	defer closeQuietly(l)

	if err := tok.RaiseCap(cmd.Context(), caller, newCap); err != nil {
		return reportDomainError(f, err)
	}

	return f.Success(map[string]any{
		"max_per_address": newCap.Dec(),
	})
}

func parseBPSArg(arg string) (uint64, error) {
	bps, err := strconv.ParseUint(arg, 10, 64)
	if err != nil {
		return 0, WrapExitError(ExitCommandError, "invalid bps: must be a non-negative integer", err)
	}
	return bps, nil
}
