package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/frankonly/upstamp/crypto"
	"github.com/frankonly/upstamp/source"
)

func newHashCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "hash FILE|HASH...",
		Short: "Print the leaf hash of files or hashes",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formats, err := parseFormats(format)
			if err != nil {
				return err
			}

			for _, arg := range args {
				leaf, err := source.Leaf(arg)
				if err != nil {
					return err
				}

				values := make([]string, 0, len(formats))
				for _, f := range formats {
					value, err := crypto.Render(leaf, f)
					if err != nil {
						return err
					}
					values = append(values, value)
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", strings.Join(values, " "), arg)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", string(crypto.FormatHex), "rendering: hex, dec, bin or all")
	return cmd
}
