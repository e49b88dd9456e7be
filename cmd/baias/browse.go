package main

import (
	"github.com/spf13/cobra"

	"baias/internal/platform/config"
)

func newBrowseCmd() *cobra.Command {
	var (
		remote remoteFlags
		path   pathFlags
	)
	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Show the pickers and the selected bay's items",
		Example: `  baias browse
  baias browse --sector "Região E" --model "Honda HR-V" --typecode 3GN --type 3M6XMF7 --bay "Baia 01"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, err := remote.open(cmd.Context(), "")
			if err != nil {
				return err
			}
			if err := path.apply(ws.Selection()); err != nil {
				return err
			}
			return ws.Selection().Render(cmd.OutOrStdout())
		},
	}
	remote.bind(cmd, config.ClientFromEnv())
	path.bind(cmd)
	return cmd
}
