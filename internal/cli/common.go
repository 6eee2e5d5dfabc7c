package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/i474232898/meteou/internal/app"
	"github.com/i474232898/meteou/internal/output"
)

func outputFormat(cmd *cobra.Command) (output.Format, error) {
	raw, _ := cmd.Flags().GetString("format")
	return output.ParseFormat(raw)
}

// writeResult renders data as an envelope for json/yaml, or calls table for
// the human format.
func writeResult(cmd *cobra.Command, data any, table func() string) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}
	if format == output.FormatTable {
		return output.WriteOutput(cmd.OutOrStdout(), table())
	}

	env := output.BuildEnvelope(cmd.CommandPath(), data, nil, nil)
	text, err := output.RenderPayload(env, format)
	if err != nil {
		return err
	}
	return output.WriteOutput(cmd.OutOrStdout(), text)
}

// fail reports err as a user message and returns the exit code carrier.
func fail(cmd *cobra.Command, err error) error {
	msg := app.MessageFor(err)

	format, ferr := outputFormat(cmd)
	if ferr != nil || format == output.FormatTable {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", msg.Kind, msg.Text)
		if msg.Retry {
			_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "Run the command again to retry.")
		}
		return &exitError{code: 1}
	}

	env := output.BuildEnvelope(cmd.CommandPath(), nil, nil, map[string]any{
		"kind":    string(msg.Kind),
		"message": msg.Text,
		"retry":   msg.Retry,
		"detail":  err.Error(),
	})
	text, rerr := output.RenderPayload(env, format)
	if rerr != nil {
		return rerr
	}
	if werr := output.WriteOutput(cmd.OutOrStdout(), text); werr != nil {
		return werr
	}
	return &exitError{code: 1}
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
