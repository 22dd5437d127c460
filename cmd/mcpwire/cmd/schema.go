package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ggoodman/mcp-wire/jsonrpc"
)

func newSchemaCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "schema [variant]",
		Short:     "print the JSON Schema of one or all message variants",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"request", "notification", "response", "error_response"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var v any = jsonrpc.Schemas()
			if len(args) == 1 {
				variant, ok := jsonrpc.ParseVariant(args[0])
				if !ok {
					return fmt.Errorf("unknown variant %q", args[0])
				}
				v = jsonrpc.Schema(variant)
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(v)
		},
	}
}
