package cli

import (
	"errors"
	"log/slog"
	"os"

	"github.com/holiman/uint256"
	"github.com/spf13/cobra"

	"github.com/baydroid/StarSeeds-Contracts/internal/ledger"
	"github.com/baydroid/StarSeeds-Contracts/internal/token"
)

// configureLogging installs the global slog handler. Logs go to stderr so
// JSON output on stdout stays parseable.
func configureLogging(verbose bool) {
	logLevel := slog.LevelWarn
	if verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}

// newFormatter builds the output formatter for a command invocation.
func newFormatter(cmd *cobra.Command, opts *RootOptions) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}

// openLedger opens the database named by --db (or STARSEEDS_DB).
func openLedger(opts *RootOptions) (*ledger.Ledger, error) {
	if opts.Database == "" {
		return nil, NewExitError(ExitCommandError, "no database: set --db or STARSEEDS_DB")
	}
	l, err := ledger.Open(opts.Database)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return l, nil
}

// openToken opens the ledger and loads the deployed token from it.
func openToken(cmd *cobra.Command, opts *RootOptions) (*token.Token, *ledger.Ledger, error) {
	l, err := openLedger(opts)
	if err != nil {
		return nil, nil, err
	}
	tok, err := token.Open(cmd.Context(), l, nil)
	if err != nil {
		_ = l.Close()
		return nil, nil, WrapExitError(ExitCommandError, "failed to load token", err)
	}
	return tok, l, nil
}

// callerAddress resolves the acting address from --as (or STARSEEDS_CALLER).
func callerAddress(opts *RootOptions) (token.Address, error) {
	if opts.Caller == "" {
		return token.ZeroAddress, NewExitError(ExitCommandError,
			"no acting address: set --as or STARSEEDS_CALLER")
	}
	addr, err := token.ParseAddress(opts.Caller)
	if err != nil {
		return token.ZeroAddress, WrapExitError(ExitCommandError, "invalid acting address", err)
	}
	return addr, nil
}

// parseAddressArg parses a positional address argument.
func parseAddressArg(arg string) (token.Address, error) {
	addr, err := token.ParseAddress(arg)
	if err != nil {
		return token.ZeroAddress, WrapExitError(ExitCommandError, "invalid address", err)
	}
	return addr, nil
}

// parseAmountArg parses a positional decimal amount argument.
func parseAmountArg(arg string) (*uint256.Int, error) {
	amount := new(uint256.Int)
	if err := amount.SetFromDecimal(arg); err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid amount: must be a decimal integer", err)
	}
	return amount, nil
}

// reportDomainError renders a token or ledger failure and converts it to a
// failure exit code. Non-domain errors pass through unchanged.
func reportDomainError(f *OutputFormatter, err error) error {
	var te *token.Error
	if errors.As(err, &te) {
		_ = f.Error(string(te.Code), te.Message, nil)
		return WrapExitError(ExitFailure, string(te.Code), err)
	}
	var le *ledger.Error
	if errors.As(err, &le) {
		_ = f.Error(string(le.Code), le.Message, nil)
		return WrapExitError(ExitFailure, string(le.Code), err)
	}
	return err
}

// closeQuietly closes the ledger, logging any failure.
func closeQuietly(l *ledger.Ledger) {
	if err := l.Close(); err != nil {
		slog.Error("error closing database", "error", err)
	}
}
