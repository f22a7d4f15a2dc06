package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Kind  string
	Limit int
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Show the event journal",
		Long: `Show the journal of committed operations in sequence order.

Every successful mutating operation appends exactly one event (deployment
may append two). Failed operations leave no trace.

Example:
  starseeds trace --db ./star.db
  starseeds trace --db ./star.db --kind transfer --limit 20`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Kind, "kind", "", "only show events of this kind")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "only show the last N events (0 = all)")

	return cmd
}

func runTrace(cmd *cobra.Command, opts *TraceOptions) error {
	configureLogging(opts.Verbose)
	f := newFormatter(cmd, opts.RootOptions)

	tok, l, err := openToken(cmd, opts.RootOptions)
	if err != nil {
		return err
	}
	defer closeQuietly(l)

	events, err := tok.Journal(cmd.Context())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read journal", err)
	}

	if opts.Kind != "" {
		filtered := events[:0]
		for _, ev := range events {
			if string(ev.Kind) == opts.Kind {
				filtered = append(filtered, ev)
			}
		}
		events = filtered
	}
	if opts.Limit > 0 && len(events) > opts.Limit {
		events = events[len(events)-opts.Limit:]
	}

	if opts.Format == "json" {
		out := make([]map[string]any, 0, len(events))
		for _, ev := range events {
			out = append(out, map[string]any{
				"seq":    ev.Seq,
				"op_id":  ev.OpID,
				"kind":   ev.Kind,
				"fields": ev.Fields,
			})
		}
		return f.Success(out)
	}

	var b strings.Builder
	for _, ev := range events {
		fmt.Fprintf(&b, "%d\t%s\t%s\t%s\n", ev.Seq, ev.Kind, ev.OpID, formatFields(ev.Fields))
	}
	return f.Success(strings.TrimRight(b.String(), "\n"))
}

// formatFields renders event fields as sorted key=value pairs.
func formatFields(fields map[string]any) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, fields[k]))
	}
	return strings.Join(parts, " ")
}
