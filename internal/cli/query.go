package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// NewBalanceCommand creates the balance command.
func NewBalanceCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "balance <address>",
		Short: "Show an account balance",
		Long: `Show the balance of an account. Accounts that never held tokens
report zero.

Example:
  starseeds balance --db ./star.db 0xbbbb...`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBalance(cmd, rootOpts, args[0])
		},
	}
	return cmd
}

func runBalance(cmd *cobra.Command, opts *RootOptions, addrArg string) error {
	configureLogging(opts.Verbose)
	f := newFormatter(cmd, opts)

	addr, err := parseAddressArg(addrArg)
	if err != nil {
		return err
	}

	tok, l, err := openToken(cmd, opts)
	if err != nil {
		return err
	}
	defer closeQuietly(l)

	balance, err := tok.BalanceOf(cmd.Context(), addr)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read balance", err)
	}

	if opts.Format == "json" {
		return f.Success(map[string]any{
			"address": addr.String(),
			"balance": balance.Dec(),
		})
	}
	return f.Success(balance.Dec())
}

// NewAllowanceCommand creates the allowance command.
func NewAllowanceCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "allowance <owner> <spender>",
		Short:         "Show a spender allowance",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAllowance(cmd, rootOpts, args[0], args[1])
		},
	}
	return cmd
}

func runAllowance(cmd *cobra.Command, opts *RootOptions, ownerArg, spenderArg string) error {
	configureLogging(opts.Verbose)
	f := newFormatter(cmd, opts)

	owner, err := parseAddressArg(ownerArg)
	if err != nil {
		return err
	}
	spender, err := parseAddressArg(spenderArg)
	if err != nil {
		return err
	}

	tok, l, err := openToken(cmd, opts)
	if err != nil {
		return err
	}
	defer closeQuietly(l)

	allowance, err := tok.Allowance(cmd.Context(), owner, spender)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read allowance", err)
	}

	if opts.Format == "json" {
		return f.Success(map[string]any{
			"owner":     owner.String(),
			"spender":   spender.String(),
			"allowance": allowance.Dec(),
		})
	}
	return f.Success(allowance.Dec())
}

// NewInfoCommand creates the info command.
func NewInfoCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "info",
		Short:         "Show token configuration and state",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(cmd, rootOpts)
		},
	}
	return cmd
}

func runInfo(cmd *cobra.Command, opts *RootOptions) error {
	configureLogging(opts.Verbose)
	f := newFormatter(cmd, opts)

	tok, l, err := openToken(cmd, opts)
	if err != nil {
		return err
	}
	defer closeQuietly(l)

	supply, err := tok.TotalSupply(cmd.Context())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read supply", err)
	}

	cfg := tok.Config()
	info := map[string]any{
		"name":         cfg.Name(),
		"symbol":       cfg.Symbol(),
		"decimals":     cfg.Decimals(),
		"owner":        tok.Owner().String(),
		"total_supply": supply.Dec(),
		"mintable":     cfg.Mintable(),
		"burnable":     cfg.Burnable(),
	}
	if cfg.MaxAmountSet() {
		info["max_per_address"] = tok.MaxPerAddress().Dec()
	}
	if cfg.Taxable() {
		taxAddr, taxBPS := tok.TaxConfig()
		info["tax_address"] = taxAddr.String()
		info["tax_bps"] = taxBPS
	}
	if cfg.Deflationary() {
		info["deflation_bps"] = tok.DeflationBPS()
	}
	if cfg.DocumentURIAllowed() {
		info["document_uri"] = tok.DocumentURI()
	}

	if opts.Format == "json" {
		return f.Success(info)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s)\n", cfg.Name(), cfg.Symbol())
	fmt.Fprintf(&b, "  decimals:     %d\n", cfg.Decimals())
	fmt.Fprintf(&b, "  owner:        %s\n", tok.Owner())
	fmt.Fprintf(&b, "  total supply: %s\n", supply.Dec())
	fmt.Fprintf(&b, "  mintable:     %t\n", cfg.Mintable())
	fmt.Fprintf(&b, "  burnable:     %t\n", cfg.Burnable())
	if cfg.MaxAmountSet() {
		fmt.Fprintf(&b, "  cap:          %s\n", tok.MaxPerAddress().Dec())
	}
	if cfg.Taxable() {
		taxAddr, taxBPS := tok.TaxConfig()
		fmt.Fprintf(&b, "  tax:          %d bps to %s\n", taxBPS, taxAddr)
	}
	if cfg.Deflationary() {
		fmt.Fprintf(&b, "  deflation:    %d bps\n", tok.DeflationBPS())
	}
	if cfg.DocumentURIAllowed() {
		fmt.Fprintf(&b, "  document:     %s\n", tok.DocumentURI())
	}
	return f.Success(strings.TrimRight(b.String(), "\n"))
}
