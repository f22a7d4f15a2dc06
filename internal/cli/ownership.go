package cli

import (
	"github.com/spf13/cobra"
)

// NewTransferOwnershipCommand creates the transfer-ownership command.
func NewTransferOwnershipCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transfer-ownership <new-owner>",
		Short: "Hand the token to a new owner",
		Long: `Transfer ownership to another address.

Only the current owner may do this. The previous owner loses all privileged
operations immediately.

Example:
  starseeds transfer-ownership --db ./star.db --as 0xaaaa... 0xbbbb...`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTransferOwnership(cmd, rootOpts, args[0])
		},
	}
	return cmd
}

func runTransferOwnership(cmd *cobra.Command, opts *RootOptions, newOwnerArg string) error {
	configureLogging(opts.Verbose)
	f := newFormatter(cmd, opts)

	caller, err := callerAddress(opts)
	if err != nil {
		return err
	}
	newOwner, err := parseAddressArg(newOwnerArg)
	if err != nil {
		return err
	}

	tok, l, err := openToken(cmd, opts)
	if err != nil {
		return err
	}
	defer closeQuietly(l)

	if err := tok.TransferOwnership(cmd.Context(), caller, newOwner); err != nil {
		return reportDomainError(f, err)
	}

	return f.Success(map[string]any{
		"owner": newOwner.String(),
	})
}

// NewRenounceOwnershipCommand creates the renounce-ownership command.
func NewRenounceOwnershipCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "renounce-ownership",
		Short: "Permanently give up ownership",
		Long: `Renounce ownership of the token.

The owner becomes the zero address and every privileged operation fails
from then on. This cannot be undone.

Example:
  starseeds renounce-ownership --db ./star.db --as 0xaaaa...`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRenounceOwnership(cmd, rootOpts)
		},
	}
	return cmd
}

func runRenounceOwnership(cmd *cobra.Command, opts *RootOptions) error {
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

	if err := tok.RenounceOwnership(cmd.Context(), caller); err != nil {
		return reportDomainError(f, err)
	}

	return f.Success(map[string]any{
		"owner": tok.Owner().String(),
	})
}
