package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"baias/internal/catalog/models"
	"baias/internal/platform/config"
	"baias/internal/workspace"
)

func newEditCmd() *cobra.Command {
	var (
		remote   remoteFlags
		path     pathFlags
		password string
	)
	cfg := config.ClientFromEnv()
	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Change the catalog as admin",
		Long: "Log in, apply one change at the selected path and push the whole catalog.\n" +
			"The password comes from --password or BAIAS_ADMIN_PASSWORD.",
	}
	remote.bind(cmd, cfg)
	path.bind(cmd)
	cmd.PersistentFlags().StringVar(&password, "password", cfg.Password, "admin password")

	// run wraps one workspace edit with login, selection and rendering.
	run := func(edit func(ctx context.Context, ws *workspace.Workspace, args []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			if password == "" {
				return errors.New("admin password required: set --password or BAIAS_ADMIN_PASSWORD")
			}
			ctx := cmd.Context()
			ws, err := remote.open(ctx, password)
			if err != nil {
				return err
			}
			if err := path.apply(ws.Selection()); err != nil {
				return err
			}
			if err := edit(ctx, ws, args); err != nil {
				return err
			}
			return ws.Selection().Render(cmd.OutOrStdout())
		}
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "add-item LABEL",
			Short: "Add an item to the selected bay",
			Args:  cobra.ExactArgs(1),
			RunE: run(func(ctx context.Context, ws *workspace.Workspace, args []string) error {
				return ws.AddItem(ctx, args[0])
			}),
		},
		&cobra.Command{
			Use:   "remove-item LABEL",
			Short: "Remove an item from the selected bay",
			Args:  cobra.ExactArgs(1),
			RunE: run(func(ctx context.Context, ws *workspace.Workspace, args []string) error {
				return ws.RemoveItem(ctx, args[0])
			}),
		},
		&cobra.Command{
			Use:   "add LEVEL NAME",
			Short: "Add a sector, model, typecode, type or bay under the selection",
			Args:  cobra.ExactArgs(2),
			RunE: run(func(ctx context.Context, ws *workspace.Workspace, args []string) error {
				lvl, err := models.ParseLevel(args[0])
				if err != nil {
					return err
				}
				return ws.AddNode(ctx, lvl, args[1])
			}),
		},
		&cobra.Command{
			Use:   "rename LEVEL NEW_NAME",
			Short: "Rename the selected node at LEVEL",
			Args:  cobra.ExactArgs(2),
			RunE: run(func(ctx context.Context, ws *workspace.Workspace, args []string) error {
				lvl, err := models.ParseLevel(args[0])
				if err != nil {
					return err
				}
				return ws.RenameNode(ctx, lvl, args[1])
			}),
		},
		&cobra.Command{
			Use:   "delete LEVEL",
			Short: "Delete the selected node at LEVEL and everything beneath it",
			Args:  cobra.ExactArgs(1),
			RunE: run(func(ctx context.Context, ws *workspace.Workspace, args []string) error {
				lvl, err := models.ParseLevel(args[0])
				if err != nil {
					return err
				}
				return ws.DeleteNode(ctx, lvl)
			}),
		},
	)
	return cmd
}
